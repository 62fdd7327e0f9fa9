// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/cookbook/internal/auth"
	"github.com/hitoshi/cookbook/internal/config"
	"github.com/hitoshi/cookbook/internal/database"
	"github.com/hitoshi/cookbook/internal/handler"
	"github.com/hitoshi/cookbook/internal/logger"
	"github.com/hitoshi/cookbook/internal/metrics"
	"github.com/hitoshi/cookbook/internal/middleware"
	"github.com/hitoshi/cookbook/internal/recipe"
	"github.com/hitoshi/cookbook/internal/reference"
	"github.com/hitoshi/cookbook/internal/repository"
	"github.com/hitoshi/cookbook/internal/security"
	"github.com/hitoshi/cookbook/internal/seed"
	"github.com/hitoshi/cookbook/internal/storage"
	"github.com/hitoshi/cookbook/internal/subscription"
	"github.com/hitoshi/cookbook/internal/user"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 設定読み込み前にログを使えるようにする
	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandSeed:
		return runSeed(cfg, args[1:])
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	tokenRepo := repository.NewPostgresTokenRepo(db)
	tagRepo := repository.NewPostgresTagRepo(db)
	ingredientRepo := repository.NewPostgresIngredientRepo(db)
	recipeRepo := repository.NewPostgresRecipeRepo(db)
	subRepo := repository.NewPostgresSubscriptionRepo(db)
	favoriteRepo := repository.NewPostgresFavoriteRepo(db)
	cartRepo := repository.NewPostgresShoppingCartRepo(db)
	shoppingListRepo := repository.NewPostgresShoppingListRepo(db)

	// 3. 画像ストアの初期化
	var imageStore storage.ImageStore
	var imageLoader handler.ImageLoader
	if cfg.ImageStore == "s3" {
		s3Store, err := storage.NewS3ImageStore(context.Background(), storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3Key,
			SecretKey: cfg.S3Secret,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize S3 image store: %w", err)
		}
		imageStore = s3Store
	} else {
		pgStore := storage.NewPostgresImageStore(db, cfg.BaseURL)
		imageStore = pgStore
		imageLoader = pgStore
	}

	// 4. ドメインサービスの初期化
	sanitizer := security.NewContentSanitizer()

	authService := auth.NewService(userRepo, tokenRepo)
	userService := user.NewService(userRepo, subRepo, tokenRepo, sanitizer)
	subService := subscription.NewService(subRepo, userRepo, recipeRepo, cfg.RecipesPreviewLimit)
	refService := reference.NewService(tagRepo, ingredientRepo, sanitizer)
	recipeService := recipe.NewService(
		recipeRepo, tagRepo, ingredientRepo, userRepo, subRepo,
		favoriteRepo, cartRepo, imageStore, sanitizer, cfg.Limits,
	)
	shoppingListService := recipe.NewShoppingListService(shoppingListRepo, userRepo)

	// 5. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth),
	)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		Authenticator:     authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,

		AuthService:         authService,
		UserService:         userService,
		SubscriptionService: subService,
		ReferenceService:    refService,
		RecipeService:       recipeService,
		ShoppingListService: shoppingListService,

		ImageLoader: imageLoader,

		Logger:    slog.Default(),
		Collector: collector,
		Gatherer:  registry,
		DB:        db,

		BaseURL:  cfg.BaseURL,
		PageSize: cfg.PageSize,
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runSeed は参照データ（材料・タグ）のフィクスチャ投入を実行する。
// フィクスチャパスは引数で指定し、省略時はfixtures/seed.tomlを使う。
// 投入は冪等で、既存データはスキップされる。
func runSeed(cfg *config.Config, args []string) error {
	path := "fixtures/seed.toml"
	if len(args) > 0 {
		path = args[0]
	}

	fixture, err := seed.LoadFixture(path)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	seeder := seed.NewSeeder(
		repository.NewPostgresIngredientRepo(db),
		repository.NewPostgresTagRepo(db),
		slog.Default(),
	)
	return seeder.Run(context.Background(), fixture)
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}

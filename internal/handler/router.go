package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/cookbook/internal/metrics"
	"github.com/hitoshi/cookbook/internal/middleware"
	"github.com/hitoshi/cookbook/internal/model"
)

// HealthPinger はヘルスチェックのための接続確認インターフェース。
// sql.DBの部分集合として定義する。
type HealthPinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Authenticator     middleware.Authenticator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// サービス
	AuthService         AuthServiceInterface
	UserService         UserServiceInterface
	SubscriptionService SubscriptionServiceInterface
	ReferenceService    ReferenceServiceInterface
	RecipeService       RecipeServiceInterface
	ShoppingListService ShoppingListServiceInterface

	// 画像配信（データベースストア構成のみ。S3構成ではnil）
	ImageLoader ImageLoader

	// 観測
	Logger    *slog.Logger
	Collector metrics.MetricsCollector
	Gatherer  prometheus.Gatherer
	DB        HealthPinger

	// ページング
	BaseURL  string
	PageSize int
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成した
// chi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → Metrics → OptionalAuth/Auth → Logging → RateLimit
//
// 公開の読み取りルートはOptionalAuthで閲覧者を解決し、
// 書き込みルートはAuthで認証を必須にする。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(metrics.NewHTTPMiddleware(deps.Collector))

	authHandler := NewAuthHandler(deps.AuthService, deps.Collector)
	userHandler := NewUserHandler(deps.UserService, deps.SubscriptionService, deps.BaseURL, deps.PageSize)
	refHandler := NewReferenceHandler(deps.ReferenceService)
	recipeHandler := NewRecipeHandler(deps.RecipeService, deps.ShoppingListService, deps.Collector, deps.BaseURL, deps.PageSize)

	requireAuth := middleware.NewAuthMiddleware(deps.Authenticator)
	optionalAuth := middleware.NewOptionalAuthMiddleware(deps.Authenticator)
	logging := middleware.NewLoggingMiddleware(deps.Logger)
	generalLimit := deps.RateLimiter.GeneralMiddleware()
	authLimit := deps.RateLimiter.AuthMiddleware()

	// --- 運用エンドポイント ---

	r.Get("/health", healthHandler(deps.DB))
	r.Handle("/metrics", metrics.Handler(deps.Gatherer))

	// --- 画像配信（データベースストア構成のみ）---

	if deps.ImageLoader != nil {
		mediaHandler := NewMediaHandler(deps.ImageLoader)
		r.Get("/media/{key}", mediaHandler.Serve)
	}

	// --- 認証エンドポイント ---
	// ログイン試行はIP単位の専用レート制限をかける

	r.Group(func(r chi.Router) {
		r.Use(logging)
		r.With(authLimit).Post("/api/auth/token/login", authHandler.Login)
		r.With(requireAuth).Post("/api/auth/token/logout", authHandler.Logout)
		r.With(authLimit).Post("/api/users", userHandler.Register)
	})

	// --- 公開の読み取りルート ---
	// 匿名でも閲覧でき、トークンがあれば閲覧者スコープのフラグを解決する

	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Use(logging)
		r.Use(generalLimit)

		r.Get("/api/tags", refHandler.ListTags)
		r.Get("/api/tags/{id}", refHandler.GetTag)
		r.Get("/api/ingredients", refHandler.ListIngredients)
		r.Get("/api/ingredients/{id}", refHandler.GetIngredient)

		r.Get("/api/recipes", recipeHandler.List)
		r.Get("/api/recipes/{id}", recipeHandler.Get)

		r.Get("/api/users", userHandler.List)
		r.Get("/api/users/{id}", userHandler.Get)
	})

	// --- 認証が必要なルート ---

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(logging)
		r.Use(generalLimit)

		// ユーザー管理
		r.Get("/api/users/me", userHandler.Me)
		r.Delete("/api/users/me", userHandler.Withdraw)
		r.Post("/api/users/set_password", userHandler.SetPassword)

		// フォロー管理
		r.Get("/api/users/subscriptions", userHandler.Subscriptions)
		r.Post("/api/users/{id}/subscribe", userHandler.Subscribe)
		r.Delete("/api/users/{id}/subscribe", userHandler.Unsubscribe)

		// レシピ管理
		r.Post("/api/recipes", recipeHandler.Create)
		r.Patch("/api/recipes/{id}", recipeHandler.Update)
		r.Delete("/api/recipes/{id}", recipeHandler.Delete)

		// お気に入り・買い物リスト（同一ハンドラーをマーク種別で共有）
		r.Post("/api/recipes/{id}/favorite", recipeHandler.AddMark(model.MarkFavorite))
		r.Delete("/api/recipes/{id}/favorite", recipeHandler.RemoveMark(model.MarkFavorite))
		r.Post("/api/recipes/{id}/shopping_cart", recipeHandler.AddMark(model.MarkShoppingCart))
		r.Delete("/api/recipes/{id}/shopping_cart", recipeHandler.RemoveMark(model.MarkShoppingCart))

		r.Get("/api/recipes/download_shopping_cart", recipeHandler.DownloadShoppingCart)

		// 参照データ管理（管理者のみ。権限判定はサービス層で行う）
		r.Post("/api/tags", refHandler.CreateTag)
		r.Patch("/api/tags/{id}", refHandler.UpdateTag)
		r.Delete("/api/tags/{id}", refHandler.DeleteTag)
		r.Post("/api/ingredients", refHandler.CreateIngredient)
		r.Patch("/api/ingredients/{id}", refHandler.UpdateIngredient)
		r.Delete("/api/ingredients/{id}", refHandler.DeleteIngredient)
	})

	return r
}

// healthHandler はデータベース接続を確認して200/503を返す。
func healthHandler(db HealthPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

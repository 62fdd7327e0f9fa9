// Package config はアプリケーション全体の設定を提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Limits はレシピ入力値の数値境界を保持する。
// 調理時間と材料数量の両方に同じ境界を適用する。
// バリデーション層へ明示的に渡され、グローバル参照はしない。
type Limits struct {
	MinAmount int
	MaxAmount int
}

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Server
	ServerPort string
	BaseURL    string

	// Validation bounds
	Limits Limits

	// Pagination
	PageSize            int
	RecipesPreviewLimit int

	// Rate Limit（req/min/クライアント）
	RateLimitGeneral int
	RateLimitAuth    int

	// Image storage: "postgres" または "s3"
	ImageStore string

	// S3（ImageStore=s3 の場合のみ必須）
	S3Region   string
	S3Bucket   string
	S3Endpoint string
	S3Key      string
	S3Secret   string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.Limits.MinAmount = getEnvInt("MIN_COOKING_TIME_AND_AMOUNT", 1)
	cfg.Limits.MaxAmount = getEnvInt("MAX_COOKING_TIME_AND_AMOUNT", 32000)
	cfg.PageSize = getEnvInt("PAGE_SIZE", 6)
	cfg.RecipesPreviewLimit = getEnvInt("RECIPES_PREVIEW_LIMIT", 3)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 10)
	cfg.ImageStore = getEnvString("IMAGE_STORE", "postgres")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	if cfg.Limits.MinAmount < 1 || cfg.Limits.MinAmount > cfg.Limits.MaxAmount {
		return nil, fmt.Errorf("invalid validation bounds: min=%d max=%d",
			cfg.Limits.MinAmount, cfg.Limits.MaxAmount)
	}

	switch cfg.ImageStore {
	case "postgres":
		// 追加設定不要
	case "s3":
		cfg.S3Region = os.Getenv("S3_REGION")
		cfg.S3Bucket = os.Getenv("S3_BUCKET")
		cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
		cfg.S3Key = os.Getenv("S3_KEY")
		cfg.S3Secret = os.Getenv("S3_SECRET")

		var s3missing []string
		if cfg.S3Region == "" {
			s3missing = append(s3missing, "S3_REGION")
		}
		if cfg.S3Bucket == "" {
			s3missing = append(s3missing, "S3_BUCKET")
		}
		if cfg.S3Key == "" {
			s3missing = append(s3missing, "S3_KEY")
		}
		if cfg.S3Secret == "" {
			s3missing = append(s3missing, "S3_SECRET")
		}
		if len(s3missing) > 0 {
			return nil, fmt.Errorf("IMAGE_STORE=s3 requires environment variables: %v", s3missing)
		}
	default:
		return nil, fmt.Errorf("unknown IMAGE_STORE: %q (must be \"postgres\" or \"s3\")", cfg.ImageStore)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

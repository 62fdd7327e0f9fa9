// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/cookbook/internal/model"
)

const tokenScheme = "Token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// tokenKeyContextKey はリクエストコンテキストにトークンキーを格納するためのキー。
// ログアウト時に失効対象のトークンを特定するために使用する。
var tokenKeyContextKey = contextKey("token_key")

// Authenticator はトークンキーからユーザーを解決するインターフェース。
// auth.Serviceの部分集合として定義する。
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*model.User, error)
}

// tokenFromHeader はAuthorizationヘッダから "Token <key>" 形式の
// トークンキーを取り出す。形式不正の場合は空文字列を返す。
func tokenFromHeader(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, key, ok := strings.Cut(header, " ")
	if !ok || scheme != tokenScheme {
		return ""
	}
	return strings.TrimSpace(key)
}

// NewAuthMiddleware はAuthorizationヘッダのトークンを検証し、
// 認証済みユーザーをリクエストコンテキストに注入するミドルウェアを返す。
// トークンがない・無効なリクエストには401 Unauthorizedを返す。
func NewAuthMiddleware(authenticator Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := tokenFromHeader(r)
			if key == "" {
				WriteAPIError(w, model.NewUnauthorizedError())
				return
			}

			u, err := authenticator.Authenticate(r.Context(), key)
			if err != nil {
				if apiErr, ok := err.(*model.APIError); ok {
					WriteAPIError(w, apiErr)
					return
				}
				slog.Error("failed to authenticate token",
					slog.String("error", err.Error()),
				)
				WriteAPIError(w, model.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, u)
			ctx = context.WithValue(ctx, tokenKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewOptionalAuthMiddleware はトークンがあれば検証してユーザーを注入し、
// なければ匿名のままリクエストを通すミドルウェアを返す。
// 公開の読み取りエンドポイントで閲覧者スコープのフラグを解決するために使う。
// 無効なトークンは匿名として扱う。
func NewOptionalAuthMiddleware(authenticator Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := tokenFromHeader(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			u, err := authenticator.Authenticate(r.Context(), key)
			if err != nil || u == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, u)
			ctx = context.WithValue(ctx, tokenKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	u, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || u == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return u, nil
}

// OptionalUserFromContext はリクエストコンテキストから認証済みユーザーを
// 取得する。匿名リクエストではnilを返す。
func OptionalUserFromContext(ctx context.Context) *model.User {
	u, ok := ctx.Value(userContextKey).(*model.User)
	if !ok {
		return nil
	}
	return u
}

// TokenKeyFromContext はリクエストコンテキストからトークンキーを取得する。
func TokenKeyFromContext(ctx context.Context) (string, error) {
	key, ok := ctx.Value(tokenKeyContextKey).(string)
	if !ok || key == "" {
		return "", fmt.Errorf("token key not found in context")
	}
	return key, nil
}

// ContextWithUser はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// ContextWithTokenKey はコンテキストにトークンキーを注入する。
func ContextWithTokenKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, tokenKeyContextKey, key)
}

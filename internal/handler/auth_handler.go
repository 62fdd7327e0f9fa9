package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/cookbook/internal/metrics"
	"github.com/hitoshi/cookbook/internal/middleware"
	"github.com/hitoshi/cookbook/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login はメールアドレスとパスワードを検証し、新しいトークンを発行する。
	Login(ctx context.Context, email, password string) (*model.AuthToken, error)
	// Logout は指定キーのトークンを失効させる。
	Logout(ctx context.Context, key string) error
}

// AuthHandler はトークン認証のHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	collector metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, collector metrics.MetricsCollector) *AuthHandler {
	return &AuthHandler{service: service, collector: collector}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse はログインレスポンス。
type loginResponse struct {
	AuthToken string `json:"auth_token"`
}

// Login はトークンを発行する。
// POST /api/auth/token/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidCredentialsError())
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.collector.RecordLogin(false)
		handleServiceError(w, err)
		return
	}

	h.collector.RecordLogin(true)
	writeJSON(w, http.StatusOK, loginResponse{AuthToken: token.Key})
}

// Logout は現在のトークンを失効させる。
// POST /api/auth/token/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	key, err := middleware.TokenKeyFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Logout(r.Context(), key); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

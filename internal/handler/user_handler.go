package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/cookbook/internal/middleware"
	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/subscription"
	"github.com/hitoshi/cookbook/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, input user.RegisterInput) (*user.Profile, error)
	// GetProfile は指定ユーザーのプロフィールを返す。
	GetProfile(ctx context.Context, viewerID *int64, userID int64) (*user.Profile, error)
	// List はユーザー一覧をページ指定で返す。
	List(ctx context.Context, viewerID *int64, limit, offset int) ([]*user.Profile, int, error)
	// SetPassword はパスワードを変更する。
	SetPassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
	// Withdraw はユーザーを退会させる。
	Withdraw(ctx context.Context, userID int64) error
}

// SubscriptionServiceInterface はフォロー関連のハンドラーが必要とする
// サービスインターフェース。
type SubscriptionServiceInterface interface {
	// Subscribe はフォローを開始する。
	Subscribe(ctx context.Context, userID, authorID int64) (*subscription.AuthorView, error)
	// Unsubscribe はフォローを解除する。
	Unsubscribe(ctx context.Context, userID, authorID int64) error
	// List はフォロー中の投稿者一覧を返す。
	List(ctx context.Context, userID int64, limit, offset int) ([]*subscription.AuthorView, int, error)
}

// UserHandler はユーザー管理・フォロー管理のHTTPハンドラー。
type UserHandler struct {
	service    UserServiceInterface
	subService SubscriptionServiceInterface
	baseURL    string
	pageSize   int
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, subService SubscriptionServiceInterface, baseURL string, pageSize int) *UserHandler {
	return &UserHandler{
		service:    service,
		subService: subService,
		baseURL:    baseURL,
		pageSize:   pageSize,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// setPasswordRequest はパスワード変更リクエストのボディ。
type setPasswordRequest struct {
	NewPassword     string `json:"new_password"`
	CurrentPassword string `json:"current_password"`
}

// viewerIDFrom はリクエストコンテキストから閲覧者のユーザーIDを取り出す。
// 匿名閲覧ではnilを返す。
func viewerIDFrom(r *http.Request) *int64 {
	u := middleware.OptionalUserFromContext(r.Context())
	if u == nil {
		return nil
	}
	return &u.ID
}

// Register は新規ユーザー登録を処理する。
// POST /api/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "email、username、passwordは必須です。",
			Category: "validation",
			Action:   "必須フィールドをすべて指定してください。",
		})
		return
	}

	profile, err := h.service.Register(r.Context(), user.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(profile))
}

// List はユーザー一覧を返す。
// GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r, h.pageSize)

	profiles, total, err := h.service.List(r.Context(), viewerIDFrom(r), p.Limit, p.Offset())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]userResponse, len(profiles))
	for i, profile := range profiles {
		results[i] = toUserResponse(profile)
	}
	writeJSON(w, http.StatusOK, newPageResponse(h.baseURL, r, p, total, results))
}

// Get は指定ユーザーのプロフィールを返す。
// GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeInvalidIDParam(w)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), viewerIDFrom(r), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(profile))
}

// Me は認証済みユーザー自身のプロフィールを返す。
// GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	profile, err := h.service.GetProfile(r.Context(), &u.ID, u.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(profile))
}

// SetPassword はパスワード変更を処理する。
// POST /api/users/set_password
func (h *UserHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req setPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if req.NewPassword == "" || req.CurrentPassword == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "new_passwordとcurrent_passwordは必須です。",
			Category: "validation",
			Action:   "両方のパスワードを指定してください。",
		})
		return
	}

	if err := h.service.SetPassword(r.Context(), u.ID, req.CurrentPassword, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Withdraw は認証済みユーザーを退会させる。
// DELETE /api/users/me
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Withdraw(r.Context(), u.ID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Subscribe はフォロー開始を処理する。
// POST /api/users/{id}/subscribe
func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	authorID, err := idParam(r)
	if err != nil {
		writeInvalidIDParam(w)
		return
	}

	view, err := h.subService.Subscribe(r.Context(), u.ID, authorID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAuthorResponse(view))
}

// Unsubscribe はフォロー解除を処理する。
// DELETE /api/users/{id}/subscribe
func (h *UserHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	authorID, err := idParam(r)
	if err != nil {
		writeInvalidIDParam(w)
		return
	}

	if err := h.subService.Unsubscribe(r.Context(), u.ID, authorID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Subscriptions はフォロー中の投稿者一覧を返す。
// GET /api/users/subscriptions
func (h *UserHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	p := parsePagination(r, h.pageSize)
	views, total, err := h.subService.List(r.Context(), u.ID, p.Limit, p.Offset())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]authorResponse, len(views))
	for i, view := range views {
		results[i] = toAuthorResponse(view)
	}
	writeJSON(w, http.StatusOK, newPageResponse(h.baseURL, r, p, total, results))
}

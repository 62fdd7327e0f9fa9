package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/recipe"
	"github.com/hitoshi/cookbook/internal/subscription"
	"github.com/hitoshi/cookbook/internal/user"
)

// --- モック定義 ---

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	registerFn    func(ctx context.Context, input user.RegisterInput) (*user.Profile, error)
	getProfileFn  func(ctx context.Context, viewerID *int64, userID int64) (*user.Profile, error)
	listFn        func(ctx context.Context, viewerID *int64, limit, offset int) ([]*user.Profile, int, error)
	setPasswordFn func(ctx context.Context, userID int64, currentPassword, newPassword string) error
	withdrawFn    func(ctx context.Context, userID int64) error
}

func (m *mockUserService) Register(ctx context.Context, input user.RegisterInput) (*user.Profile, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, input)
	}
	return nil, nil
}
func (m *mockUserService) GetProfile(ctx context.Context, viewerID *int64, userID int64) (*user.Profile, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, viewerID, userID)
	}
	return &user.Profile{ID: userID}, nil
}
func (m *mockUserService) List(ctx context.Context, viewerID *int64, limit, offset int) ([]*user.Profile, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, viewerID, limit, offset)
	}
	return nil, 0, nil
}
func (m *mockUserService) SetPassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if m.setPasswordFn != nil {
		return m.setPasswordFn(ctx, userID, currentPassword, newPassword)
	}
	return nil
}
func (m *mockUserService) Withdraw(ctx context.Context, userID int64) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

// mockSubscriptionService はSubscriptionServiceInterfaceのモック実装。
type mockSubscriptionService struct {
	subscribeFn   func(ctx context.Context, userID, authorID int64) (*subscription.AuthorView, error)
	unsubscribeFn func(ctx context.Context, userID, authorID int64) error
	listFn        func(ctx context.Context, userID int64, limit, offset int) ([]*subscription.AuthorView, int, error)
}

func (m *mockSubscriptionService) Subscribe(ctx context.Context, userID, authorID int64) (*subscription.AuthorView, error) {
	if m.subscribeFn != nil {
		return m.subscribeFn(ctx, userID, authorID)
	}
	return nil, nil
}
func (m *mockSubscriptionService) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	if m.unsubscribeFn != nil {
		return m.unsubscribeFn(ctx, userID, authorID)
	}
	return nil
}
func (m *mockSubscriptionService) List(ctx context.Context, userID int64, limit, offset int) ([]*subscription.AuthorView, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit, offset)
	}
	return nil, 0, nil
}

func newTestUserHandler(svc *mockUserService, sub *mockSubscriptionService) *UserHandler {
	return NewUserHandler(svc, sub, "http://localhost:8080", 6)
}

// --- POST /api/users テスト ---

func TestUserHandler_Register_Success(t *testing.T) {
	var gotInput user.RegisterInput
	svc := &mockUserService{
		registerFn: func(ctx context.Context, input user.RegisterInput) (*user.Profile, error) {
			gotInput = input
			return &user.Profile{ID: 42, Email: input.Email, Username: input.Username}, nil
		},
	}
	h := newTestUserHandler(svc, &mockSubscriptionService{})

	body := `{"email": "hitoshi@example.com", "username": "hitoshi", "first_name": "仁", "last_name": "市川", "password": "secret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if gotInput.Email != "hitoshi@example.com" || gotInput.Username != "hitoshi" {
		t.Errorf("unexpected input: %+v", gotInput)
	}
	var resp userResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 42 {
		t.Errorf("id = %d, want 42", resp.ID)
	}
	if resp.IsSubscribed {
		t.Error("expected is_subscribed to be false")
	}
}

func TestUserHandler_Register_MissingFields(t *testing.T) {
	registerCalled := false
	svc := &mockUserService{
		registerFn: func(ctx context.Context, input user.RegisterInput) (*user.Profile, error) {
			registerCalled = true
			return nil, nil
		},
	}
	h := newTestUserHandler(svc, &mockSubscriptionService{})

	body := `{"email": "hitoshi@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if registerCalled {
		t.Error("expected service Register not to be called")
	}
}

func TestUserHandler_Register_DuplicateEmail(t *testing.T) {
	svc := &mockUserService{
		registerFn: func(ctx context.Context, input user.RegisterInput) (*user.Profile, error) {
			return nil, model.NewDuplicateEmailError()
		},
	}
	h := newTestUserHandler(svc, &mockSubscriptionService{})

	body := `{"email": "hitoshi@example.com", "username": "hitoshi", "password": "secret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- GET /api/users テスト ---

func TestUserHandler_List_Success(t *testing.T) {
	svc := &mockUserService{
		listFn: func(ctx context.Context, viewerID *int64, limit, offset int) ([]*user.Profile, int, error) {
			return []*user.Profile{{ID: 1, Username: "alice"}}, 1, nil
		},
	}
	h := newTestUserHandler(svc, &mockSubscriptionService{})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp struct {
		Count   int            `json:"count"`
		Results []userResponse `json:"results"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Results) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

// --- GET /api/users/me テスト ---

func TestUserHandler_Me(t *testing.T) {
	svc := &mockUserService{
		getProfileFn: func(ctx context.Context, viewerID *int64, userID int64) (*user.Profile, error) {
			if viewerID == nil || *viewerID != 3 || userID != 3 {
				t.Errorf("viewerID, userID = %v, %d, want 3, 3", viewerID, userID)
			}
			return &user.Profile{ID: userID, Username: "hitoshi"}, nil
		},
	}
	h := newTestUserHandler(svc, &mockSubscriptionService{})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), &model.User{ID: 3})
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestUserHandler_Me_NoUser(t *testing.T) {
	h := newTestUserHandler(&mockUserService{}, &mockSubscriptionService{})

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// --- POST /api/users/set_password テスト ---

func TestUserHandler_SetPassword_Success(t *testing.T) {
	svc := &mockUserService{
		setPasswordFn: func(ctx context.Context, userID int64, currentPassword, newPassword string) error {
			if currentPassword != "current" || newPassword != "next" {
				t.Errorf("passwords = %q, %q", currentPassword, newPassword)
			}
			return nil
		},
	}
	h := newTestUserHandler(svc, &mockSubscriptionService{})

	body := `{"current_password": "current", "new_password": "next"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/users/set_password", bytes.NewBufferString(body)), &model.User{ID: 3})
	w := httptest.NewRecorder()
	h.SetPassword(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d: %s", w.Code, http.StatusNoContent, w.Body.String())
	}
}

func TestUserHandler_SetPassword_WrongCurrent(t *testing.T) {
	svc := &mockUserService{
		setPasswordFn: func(ctx context.Context, userID int64, currentPassword, newPassword string) error {
			return model.NewInvalidPasswordError()
		},
	}
	h := newTestUserHandler(svc, &mockSubscriptionService{})

	body := `{"current_password": "wrong", "new_password": "next"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/users/set_password", bytes.NewBufferString(body)), &model.User{ID: 3})
	w := httptest.NewRecorder()
	h.SetPassword(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- DELETE /api/users/me テスト ---

func TestUserHandler_Withdraw(t *testing.T) {
	var withdrawnID int64
	svc := &mockUserService{
		withdrawFn: func(ctx context.Context, userID int64) error {
			withdrawnID = userID
			return nil
		},
	}
	h := newTestUserHandler(svc, &mockSubscriptionService{})

	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/users/me", nil), &model.User{ID: 3})
	w := httptest.NewRecorder()
	h.Withdraw(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if withdrawnID != 3 {
		t.Errorf("withdrawnID = %d, want 3", withdrawnID)
	}
}

// --- フォロー関連テスト ---

func TestUserHandler_Subscribe_Success(t *testing.T) {
	sub := &mockSubscriptionService{
		subscribeFn: func(ctx context.Context, userID, authorID int64) (*subscription.AuthorView, error) {
			if userID != 3 || authorID != 7 {
				t.Errorf("userID, authorID = %d, %d, want 3, 7", userID, authorID)
			}
			return &subscription.AuthorView{
				Profile:      &user.Profile{ID: authorID, Username: "author", IsSubscribed: true},
				Recipes:      []*recipe.ShortView{{ID: 1, Name: "カレー"}},
				RecipesCount: 5,
			}, nil
		},
	}
	h := newTestUserHandler(&mockUserService{}, sub)

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/users/7/subscribe", nil), &model.User{ID: 3})
	req = withIDParam(req, "7")
	w := httptest.NewRecorder()
	h.Subscribe(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	var resp authorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.IsSubscribed {
		t.Error("expected is_subscribed to be true")
	}
	if resp.RecipesCount != 5 || len(resp.Recipes) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestUserHandler_Subscribe_Self(t *testing.T) {
	sub := &mockSubscriptionService{
		subscribeFn: func(ctx context.Context, userID, authorID int64) (*subscription.AuthorView, error) {
			return nil, model.NewSelfSubscribeError()
		},
	}
	h := newTestUserHandler(&mockUserService{}, sub)

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/users/3/subscribe", nil), &model.User{ID: 3})
	req = withIDParam(req, "3")
	w := httptest.NewRecorder()
	h.Subscribe(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUserHandler_Unsubscribe_Success(t *testing.T) {
	sub := &mockSubscriptionService{
		unsubscribeFn: func(ctx context.Context, userID, authorID int64) error {
			return nil
		},
	}
	h := newTestUserHandler(&mockUserService{}, sub)

	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/users/7/subscribe", nil), &model.User{ID: 3})
	req = withIDParam(req, "7")
	w := httptest.NewRecorder()
	h.Unsubscribe(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestUserHandler_Unsubscribe_NotSubscribed(t *testing.T) {
	sub := &mockSubscriptionService{
		unsubscribeFn: func(ctx context.Context, userID, authorID int64) error {
			return model.NewSubscriptionNotFoundError()
		},
	}
	h := newTestUserHandler(&mockUserService{}, sub)

	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/users/7/subscribe", nil), &model.User{ID: 3})
	req = withIDParam(req, "7")
	w := httptest.NewRecorder()
	h.Unsubscribe(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUserHandler_Subscriptions(t *testing.T) {
	sub := &mockSubscriptionService{
		listFn: func(ctx context.Context, userID int64, limit, offset int) ([]*subscription.AuthorView, int, error) {
			return []*subscription.AuthorView{
				{Profile: &user.Profile{ID: 7, Username: "author", IsSubscribed: true}},
			}, 1, nil
		},
	}
	h := newTestUserHandler(&mockUserService{}, sub)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/users/subscriptions", nil), &model.User{ID: 3})
	w := httptest.NewRecorder()
	h.Subscriptions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp struct {
		Count   int              `json:"count"`
		Results []authorResponse `json:"results"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Results) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

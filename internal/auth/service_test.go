package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/cookbook/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn    func(ctx context.Context, id int64) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}
func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) Count(ctx context.Context) (int, error)             { return 0, nil }
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return nil
}
func (m *mockUserRepo) DeleteByID(ctx context.Context, id int64) error { return nil }

type mockTokenRepo struct {
	createFn      func(ctx context.Context, token *model.AuthToken) error
	findByKeyFn   func(ctx context.Context, key string) (*model.AuthToken, error)
	deleteByKeyFn func(ctx context.Context, key string) error
}

func (m *mockTokenRepo) Create(ctx context.Context, token *model.AuthToken) error {
	if m.createFn != nil {
		return m.createFn(ctx, token)
	}
	return nil
}
func (m *mockTokenRepo) FindByKey(ctx context.Context, key string) (*model.AuthToken, error) {
	if m.findByKeyFn != nil {
		return m.findByKeyFn(ctx, key)
	}
	return nil, nil
}
func (m *mockTokenRepo) DeleteByKey(ctx context.Context, key string) error {
	if m.deleteByKeyFn != nil {
		return m.deleteByKeyFn(ctx, key)
	}
	return nil
}
func (m *mockTokenRepo) DeleteByUserID(ctx context.Context, userID int64) error { return nil }

// assertAPIErrorCode はエラーが指定コードのAPIErrorであることを検証する。
func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != code {
		t.Errorf("expected code %s, got %s", code, apiErr.Code)
	}
}

// --- テスト ---

// TestService_Login は正しい認証情報でトークンが発行されることを検証する。
func TestService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 3, Email: email, PasswordHash: string(hash)}, nil
		},
	}
	var created *model.AuthToken
	tokenRepo := &mockTokenRepo{
		createFn: func(ctx context.Context, token *model.AuthToken) error {
			created = token
			return nil
		},
	}

	svc := NewService(userRepo, tokenRepo)
	token, err := svc.Login(context.Background(), "hitoshi@example.com", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token.Key == "" {
		t.Error("expected non-empty token key")
	}
	if token.UserID != 3 {
		t.Errorf("expected user ID 3, got %d", token.UserID)
	}
	if created == nil || created.Key != token.Key {
		t.Error("expected token to be persisted")
	}
}

// TestService_Login_IssuesDistinctKeys はログインのたびに
// 異なるトークンキーが発行されることを検証する。
func TestService_Login_IssuesDistinctKeys(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 3, PasswordHash: string(hash)}, nil
		},
	}

	svc := NewService(userRepo, &mockTokenRepo{})
	first, err := svc.Login(context.Background(), "hitoshi@example.com", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	second, err := svc.Login(context.Background(), "hitoshi@example.com", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if first.Key == second.Key {
		t.Error("expected distinct token keys per login")
	}
}

// TestService_Login_WrongPassword はパスワード不一致がエラーになることを検証する。
func TestService_Login_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 3, PasswordHash: string(hash)}, nil
		},
	}

	svc := NewService(userRepo, &mockTokenRepo{})
	_, err = svc.Login(context.Background(), "hitoshi@example.com", "wrong")
	assertAPIErrorCode(t, err, model.ErrCodeInvalidCredentials)
}

// TestService_Login_UnknownEmail は未登録メールアドレスが
// パスワード不一致と同一のエラーになることを検証する。
func TestService_Login_UnknownEmail(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockTokenRepo{})
	_, err := svc.Login(context.Background(), "nobody@example.com", "secret")
	assertAPIErrorCode(t, err, model.ErrCodeInvalidCredentials)
}

// TestService_Logout はトークンが失効されることを検証する。
func TestService_Logout(t *testing.T) {
	var deletedKey string
	tokenRepo := &mockTokenRepo{
		deleteByKeyFn: func(ctx context.Context, key string) error {
			deletedKey = key
			return nil
		},
	}

	svc := NewService(&mockUserRepo{}, tokenRepo)
	if err := svc.Logout(context.Background(), "token-key"); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if deletedKey != "token-key" {
		t.Errorf("expected token-key to be deleted, got %q", deletedKey)
	}
}

// TestService_Authenticate はトークンキーからユーザーが解決されることを検証する。
func TestService_Authenticate(t *testing.T) {
	tokenRepo := &mockTokenRepo{
		findByKeyFn: func(ctx context.Context, key string) (*model.AuthToken, error) {
			return &model.AuthToken{Key: key, UserID: 3}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "hitoshi"}, nil
		},
	}

	svc := NewService(userRepo, tokenRepo)
	u, err := svc.Authenticate(context.Background(), "token-key")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if u.ID != 3 || u.Username != "hitoshi" {
		t.Errorf("unexpected user: %+v", u)
	}
}

// TestService_Authenticate_InvalidToken は無効なトークンが
// 未認証エラーになることを検証する。
func TestService_Authenticate_InvalidToken(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockTokenRepo{})
	_, err := svc.Authenticate(context.Background(), "unknown-key")
	assertAPIErrorCode(t, err, model.ErrCodeUnauthorized)
}

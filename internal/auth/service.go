// Package auth はトークン認証のドメインロジックを提供する。
//
// 認証はAuthorizationヘッダの "Token <key>" 形式で行い、
// トークンキーはログイン時にUUIDで発行してデータベースに保存する。
package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/repository"
)

// Service は認証のサービス層。
// ログインによるトークン発行とログアウトによる失効を提供する。
type Service struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository) *Service {
	return &Service{userRepo: userRepo, tokenRepo: tokenRepo}
}

// Login はメールアドレスとパスワードを検証し、新しいトークンを発行する。
// ユーザー不存在とパスワード不一致は区別せず同一のAPIErrorを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*model.AuthToken, error) {
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	token := &model.AuthToken{
		Key:    uuid.NewString(),
		UserID: u.ID,
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}
	return token, nil
}

// Logout は指定キーのトークンを失効させる。
func (s *Service) Logout(ctx context.Context, key string) error {
	if err := s.tokenRepo.DeleteByKey(ctx, key); err != nil {
		return fmt.Errorf("トークンの失効に失敗しました: %w", err)
	}
	return nil
}

// Authenticate はトークンキーからユーザーを解決する。
// トークンが無効な場合はAPIError（未認証）を返す。
func (s *Service) Authenticate(ctx context.Context, key string) (*model.User, error) {
	token, err := s.tokenRepo.FindByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("トークンの取得に失敗しました: %w", err)
	}
	if token == nil {
		return nil, model.NewUnauthorizedError()
	}

	u, err := s.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewUnauthorizedError()
	}
	return u, nil
}

// Package user はユーザー登録・プロフィール管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/repository"
	"github.com/hitoshi/cookbook/internal/security"
)

// Profile はユーザーのプロフィール表示。
// IsSubscribedは閲覧者がこのユーザーをフォローしているかを表し、
// 匿名閲覧では常にfalseになる。
type Profile struct {
	ID           int64
	Email        string
	Username     string
	FirstName    string
	LastName     string
	IsSubscribed bool
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Service はユーザー管理のサービス層。
// 登録、プロフィール取得、パスワード変更、退会のビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	subRepo   repository.SubscriptionRepository
	tokenRepo repository.TokenRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	subRepo repository.SubscriptionRepository,
	tokenRepo repository.TokenRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		userRepo:  userRepo,
		subRepo:   subRepo,
		tokenRepo: tokenRepo,
		sanitizer: sanitizer,
	}
}

// Register は新規ユーザーを登録し、プロフィールを返す。
// パスワードはbcryptでハッシュ化して保存する。
// email/usernameの重複はAPIErrorとして返る。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	u := &model.User{
		Email:        input.Email,
		Username:     s.sanitizer.SanitizeText(input.Username),
		FirstName:    s.sanitizer.SanitizeText(input.FirstName),
		LastName:     s.sanitizer.SanitizeText(input.LastName),
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	return profileOf(u, false), nil
}

// GetProfile は指定ユーザーのプロフィールを返す。
// viewerIDが非nilの場合、フォロー状態を解決する。
func (s *Service) GetProfile(ctx context.Context, viewerID *int64, userID int64) (*Profile, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	subscribed, err := s.isSubscribed(ctx, viewerID, userID)
	if err != nil {
		return nil, err
	}
	return profileOf(u, subscribed), nil
}

// List はユーザー一覧をID昇順でページ指定で返す。総数も返す。
func (s *Service) List(ctx context.Context, viewerID *int64, limit, offset int) ([]*Profile, int, error) {
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("ユーザー数の取得に失敗しました: %w", err)
	}

	profiles := make([]*Profile, len(users))
	for i, u := range users {
		subscribed, err := s.isSubscribed(ctx, viewerID, u.ID)
		if err != nil {
			return nil, 0, err
		}
		profiles[i] = profileOf(u, subscribed)
	}
	return profiles, total, nil
}

// SetPassword は現在のパスワードを検証してから新しいパスワードに変更する。
// 現在のパスワード不一致はAPIErrorとして返る。
func (s *Service) SetPassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return model.NewUserNotFoundError(userID)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return model.NewInvalidPasswordError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("パスワードの更新に失敗しました: %w", err)
	}
	return nil
}

// Withdraw はユーザーを退会させる。
// 所有レシピと全結合行はデータベース側でCASCADE削除される。
func (s *Service) Withdraw(ctx context.Context, userID int64) error {
	// トークンもCASCADE対象だが、削除順の揺れを避けるため先に無効化する
	if err := s.tokenRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("トークンの無効化に失敗しました: %w", err)
	}
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}
	return nil
}

// isSubscribed は閲覧者がtargetIDをフォローしているかを返す。
// 匿名閲覧（viewerIDがnil）では常にfalse。
func (s *Service) isSubscribed(ctx context.Context, viewerID *int64, targetID int64) (bool, error) {
	if viewerID == nil || *viewerID == targetID {
		return false, nil
	}
	subscribed, err := s.subRepo.Exists(ctx, *viewerID, targetID)
	if err != nil {
		return false, fmt.Errorf("フォロー状態の取得に失敗しました: %w", err)
	}
	return subscribed, nil
}

func profileOf(u *model.User, subscribed bool) *Profile {
	return &Profile{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// Package subscription はフォロー管理のドメインロジックを提供する。
package subscription

import (
	"context"
	"fmt"

	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/recipe"
	"github.com/hitoshi/cookbook/internal/repository"
	"github.com/hitoshi/cookbook/internal/user"
)

// AuthorView はフォロー中の投稿者の表示。
// プロフィールに加えて、最新レシピのプレビューとレシピ総数を含む。
type AuthorView struct {
	Profile      *user.Profile
	Recipes      []*recipe.ShortView
	RecipesCount int
}

// Service はフォロー管理のサービス層。
// フォロー・フォロー解除・フォロー一覧のビジネスロジックを提供する。
type Service struct {
	subRepo      repository.SubscriptionRepository
	userRepo     repository.UserRepository
	recipeRepo   repository.RecipeRepository
	previewLimit int
}

// NewService はServiceの新しいインスタンスを生成する。
// previewLimitはフォロー一覧に含めるレシピプレビューの最大件数。
func NewService(
	subRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	recipeRepo repository.RecipeRepository,
	previewLimit int,
) *Service {
	return &Service{
		subRepo:      subRepo,
		userRepo:     userRepo,
		recipeRepo:   recipeRepo,
		previewLimit: previewLimit,
	}
}

// Subscribe はユーザーが指定投稿者のフォローを開始し、投稿者の表示を返す。
// 自分自身へのフォローと重複フォローはAPIErrorとして返る。
func (s *Service) Subscribe(ctx context.Context, userID, authorID int64) (*AuthorView, error) {
	if userID == authorID {
		return nil, model.NewSelfSubscribeError()
	}

	author, err := s.userRepo.FindByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("投稿者の取得に失敗しました: %w", err)
	}
	if author == nil {
		return nil, model.NewUserNotFoundError(authorID)
	}

	exists, err := s.subRepo.Exists(ctx, userID, authorID)
	if err != nil {
		return nil, fmt.Errorf("フォロー状態の取得に失敗しました: %w", err)
	}
	if exists {
		return nil, model.NewDuplicateSubscribeError()
	}

	// 同時フォローの競合は一意制約がAPIErrorとして返す
	sub := &model.Subscription{UserID: userID, AuthorID: authorID}
	if err := s.subRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	return s.buildAuthorView(ctx, author)
}

// Unsubscribe はフォローを解除する。
// フォローしていない投稿者の解除はAPIError（フォロー関係未検出）を返す。
func (s *Service) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	author, err := s.userRepo.FindByID(ctx, authorID)
	if err != nil {
		return fmt.Errorf("投稿者の取得に失敗しました: %w", err)
	}
	if author == nil {
		return model.NewUserNotFoundError(authorID)
	}

	deleted, err := s.subRepo.DeleteByUserAndAuthor(ctx, userID, authorID)
	if err != nil {
		return fmt.Errorf("フォローの解除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewSubscriptionNotFoundError()
	}
	return nil
}

// List はフォロー中の投稿者一覧をフォロー日時昇順で返す。総数も返す。
func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]*AuthorView, int, error) {
	authors, err := s.subRepo.ListAuthorsByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("フォロー中の投稿者の取得に失敗しました: %w", err)
	}
	total, err := s.subRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("フォロー数の取得に失敗しました: %w", err)
	}

	views := make([]*AuthorView, len(authors))
	for i, author := range authors {
		view, err := s.buildAuthorView(ctx, author)
		if err != nil {
			return nil, 0, err
		}
		views[i] = view
	}
	return views, total, nil
}

// buildAuthorView はフォロー済みの投稿者の表示を組み立てる。
// フォロー一覧・フォロー直後の応答にのみ使うため、IsSubscribedは常にtrue。
func (s *Service) buildAuthorView(ctx context.Context, author *model.User) (*AuthorView, error) {
	recipes, err := s.recipeRepo.ListByAuthorID(ctx, author.ID, s.previewLimit)
	if err != nil {
		return nil, fmt.Errorf("投稿者のレシピ取得に失敗しました: %w", err)
	}
	count, err := s.recipeRepo.CountByAuthorID(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("投稿者のレシピ数の取得に失敗しました: %w", err)
	}

	return &AuthorView{
		Profile: &user.Profile{
			ID:           author.ID,
			Email:        author.Email,
			Username:     author.Username,
			FirstName:    author.FirstName,
			LastName:     author.LastName,
			IsSubscribed: true,
		},
		Recipes:      recipe.ShortViews(recipes),
		RecipesCount: count,
	}, nil
}

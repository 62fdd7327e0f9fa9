package recipe

import (
	"context"
	"fmt"

	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/repository"
)

// markRepoFor はマーク種別に対応するリポジトリを返す。
// お気に入りと買い物リストは同一スキーマの対テーブルなので、
// 追加・削除のロジックを1つの実装で共有する。
func (s *Service) markRepoFor(kind model.MarkKind) repository.RecipeMarkRepository {
	if kind == model.MarkShoppingCart {
		return s.cartRepo
	}
	return s.favoriteRepo
}

// AddMark はレシピをお気に入りまたは買い物リストに追加し、短縮表現を返す。
// 追加済みの場合はAPIError（重複追加）を返す。
func (s *Service) AddMark(ctx context.Context, userID, recipeID int64, kind model.MarkKind) (*ShortView, error) {
	r, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if r == nil {
		return nil, model.NewRecipeNotFoundError(recipeID)
	}

	repo := s.markRepoFor(kind)
	exists, err := repo.Exists(ctx, userID, recipeID)
	if err != nil {
		return nil, fmt.Errorf("マーク状態の取得に失敗しました: %w", err)
	}
	if exists {
		return nil, model.NewAlreadyMarkedError(kind)
	}

	// 同時追加の競合は一意制約がAPIErrorとして返す
	if err := repo.Create(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	return shortViewOf(r), nil
}

// RemoveMark はレシピをお気に入りまたは買い物リストから削除する。
// 未追加のレシピの削除は追加側の重複と対称に、APIError（未追加）を返す。
func (s *Service) RemoveMark(ctx context.Context, userID, recipeID int64, kind model.MarkKind) error {
	r, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if r == nil {
		return model.NewRecipeNotFoundError(recipeID)
	}

	deleted, err := s.markRepoFor(kind).Delete(ctx, userID, recipeID)
	if err != nil {
		return fmt.Errorf("マークの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewNotMarkedError(kind, r.Name)
	}
	return nil
}

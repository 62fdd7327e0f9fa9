package recipe

import (
	"context"
	"fmt"
	"strings"

	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/repository"
)

// ShoppingListService は買い物リストのテキスト生成を提供する。
// 買い物リスト内の全レシピの材料を(名前, 単位)で集約し、
// ダウンロード用のプレーンテキストに整形する。
type ShoppingListService struct {
	listRepo repository.ShoppingListRepository
	userRepo repository.UserRepository
}

// NewShoppingListService はShoppingListServiceの新しいインスタンスを生成する。
func NewShoppingListService(
	listRepo repository.ShoppingListRepository,
	userRepo repository.UserRepository,
) *ShoppingListService {
	return &ShoppingListService{listRepo: listRepo, userRepo: userRepo}
}

// Render は集約済みの買い物リストをテキストに整形して返す。
// 戻り値はダウンロード時のファイル名とテキスト本文。
// 各行は「材料名 - 数量, 単位」の形式で、材料名の昇順に並ぶ。
// リストが空の場合は見出しのみのテキストを返す。
func (s *ShoppingListService) Render(ctx context.Context, userID int64) (filename, content string, err error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return "", "", model.NewUserNotFoundError(userID)
	}

	rows, err := s.listRepo.SumByUserID(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("買い物リストの集計に失敗しました: %w", err)
	}

	var b strings.Builder
	b.WriteString("買い物リスト\n\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "%s - %d, %s\n", row.Name, row.Amount, row.MeasurementUnit)
	}

	return u.Username + "_shopping_list.txt", b.String(), nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/cookbook/internal/model"
)

// PostgresRecipeMarkRepo はお気に入り・買い物リストの両方を扱うマークリポジトリ。
// 対象テーブル名で切り替える。両テーブルは (user_id, recipe_id) の同一スキーマを持つ。
type PostgresRecipeMarkRepo struct {
	db         *sql.DB
	table      string
	constraint string
	kind       model.MarkKind
}

// NewPostgresFavoriteRepo はお気に入りテーブルを対象とするマークリポジトリを生成する。
func NewPostgresFavoriteRepo(db *sql.DB) *PostgresRecipeMarkRepo {
	return &PostgresRecipeMarkRepo{
		db:         db,
		table:      "favorites",
		constraint: "unique_favorite",
		kind:       model.MarkFavorite,
	}
}

// NewPostgresShoppingCartRepo は買い物リストテーブルを対象とするマークリポジトリを生成する。
func NewPostgresShoppingCartRepo(db *sql.DB) *PostgresRecipeMarkRepo {
	return &PostgresRecipeMarkRepo{
		db:         db,
		table:      "shopping_carts",
		constraint: "unique_shopping_cart",
		kind:       model.MarkShoppingCart,
	}
}

// Kind はこのリポジトリが扱うマーク種別を返す。
func (r *PostgresRecipeMarkRepo) Kind() model.MarkKind {
	return r.kind
}

// Exists はユーザーが指定レシピをマーク済みかを返す。
func (r *PostgresRecipeMarkRepo) Exists(ctx context.Context, userID, recipeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+r.table+` WHERE user_id = $1 AND recipe_id = $2)`,
		userID, recipeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("マーク状態の確認に失敗しました: %w", err)
	}
	return exists, nil
}

// Create はマーク行を登録する。既存の場合はAPIErrorを返す。
func (r *PostgresRecipeMarkRepo) Create(ctx context.Context, userID, recipeID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO `+r.table+` (user_id, recipe_id) VALUES ($1, $2)`,
		userID, recipeID,
	)
	if err != nil {
		if uniqueViolation(err, r.constraint) {
			return model.NewAlreadyMarkedError(r.kind)
		}
		return fmt.Errorf("マークの登録に失敗しました: %w", err)
	}
	return nil
}

// Delete はマーク行を削除し、行が存在したかどうかを返す。
func (r *PostgresRecipeMarkRepo) Delete(ctx context.Context, userID, recipeID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM `+r.table+` WHERE user_id = $1 AND recipe_id = $2`,
		userID, recipeID,
	)
	if err != nil {
		return false, fmt.Errorf("マークの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ RecipeMarkRepository = (*PostgresRecipeMarkRepo)(nil)

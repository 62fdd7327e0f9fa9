package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresShoppingListRepo はPostgreSQLを使用した買い物リスト集計リポジトリ。
type PostgresShoppingListRepo struct {
	db *sql.DB
}

// NewPostgresShoppingListRepo はPostgresShoppingListRepoを生成する。
func NewPostgresShoppingListRepo(db *sql.DB) *PostgresShoppingListRepo {
	return &PostgresShoppingListRepo{db: db}
}

// SumByUserID は買い物リスト内の全レシピの材料を(名前, 単位)で集約し、
// 数量を合算して名前昇順で返す。リストが空の場合は空スライスを返す。
func (r *PostgresShoppingListRepo) SumByUserID(ctx context.Context, userID int64) ([]ShoppingListRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT i.name, i.measurement_unit, SUM(ri.amount) AS total
		 FROM shopping_carts sc
		 JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE sc.user_id = $1
		 GROUP BY i.name, i.measurement_unit
		 ORDER BY i.name ASC, i.measurement_unit ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("買い物リストの集計に失敗しました: %w", err)
	}
	defer rows.Close()

	var list []ShoppingListRow
	for rows.Next() {
		var row ShoppingListRow
		if err := rows.Scan(&row.Name, &row.MeasurementUnit, &row.Amount); err != nil {
			return nil, fmt.Errorf("集計行の読み取りに失敗しました: %w", err)
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("買い物リストの走査に失敗しました: %w", err)
	}
	return list, nil
}

// compile-time interface check
var _ ShoppingListRepository = (*PostgresShoppingListRepo)(nil)

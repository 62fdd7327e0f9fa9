package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/cookbook/internal/model"
)

// PostgresIngredientRepo はPostgreSQLを使用した材料リポジトリ。
type PostgresIngredientRepo struct {
	db *sql.DB
}

// NewPostgresIngredientRepo はPostgresIngredientRepoを生成する。
func NewPostgresIngredientRepo(db *sql.DB) *PostgresIngredientRepo {
	return &PostgresIngredientRepo{db: db}
}

// List は材料一覧をID昇順で返す。
// namePrefixが非空の場合は名前の前方一致で絞り込む。
func (r *PostgresIngredientRepo) List(ctx context.Context, namePrefix string) ([]*model.Ingredient, error) {
	query := `SELECT id, name, measurement_unit FROM ingredients`
	args := []any{}
	if namePrefix != "" {
		// LIKEのメタ文字をエスケープして前方一致検索にする
		query += ` WHERE name LIKE $1 || '%'`
		args = append(args, escapeLike(namePrefix))
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("材料一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var ingredients []*model.Ingredient
	for rows.Next() {
		ing := &model.Ingredient{}
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("材料行の読み取りに失敗しました: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("材料一覧の走査に失敗しました: %w", err)
	}
	return ingredients, nil
}

// FindByID は指定IDの材料を取得する。見つからない場合はnilを返す。
func (r *PostgresIngredientRepo) FindByID(ctx context.Context, id int64) (*model.Ingredient, error) {
	ing := &model.Ingredient{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE id = $1`,
		id,
	).Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("材料の取得に失敗しました: %w", err)
	}
	return ing, nil
}

// FindByIDs は指定ID群の材料を返す。存在しないIDは結果に含まれない。
func (r *PostgresIngredientRepo) FindByIDs(ctx context.Context, ids []int64) ([]*model.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE id = ANY($1) ORDER BY id ASC`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("材料群の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var ingredients []*model.Ingredient
	for rows.Next() {
		ing := &model.Ingredient{}
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("材料行の読み取りに失敗しました: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("材料群の走査に失敗しました: %w", err)
	}
	return ingredients, nil
}

// FindByNameAndUnit は名前と計量単位の組で材料を検索する。見つからない場合はnilを返す。
func (r *PostgresIngredientRepo) FindByNameAndUnit(ctx context.Context, name, unit string) (*model.Ingredient, error) {
	ing := &model.Ingredient{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE name = $1 AND measurement_unit = $2`,
		name, unit,
	).Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("材料の検索に失敗しました: %w", err)
	}
	return ing, nil
}

// Create は材料を作成し、採番されたIDをフィールドに設定する。
func (r *PostgresIngredientRepo) Create(ctx context.Context, ing *model.Ingredient) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO ingredients (name, measurement_unit) VALUES ($1, $2) RETURNING id`,
		ing.Name, ing.MeasurementUnit,
	).Scan(&ing.ID)
	if err != nil {
		return fmt.Errorf("材料の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は材料を更新する。
func (r *PostgresIngredientRepo) Update(ctx context.Context, ing *model.Ingredient) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE ingredients SET name = $2, measurement_unit = $3 WHERE id = $1`,
		ing.ID, ing.Name, ing.MeasurementUnit,
	)
	if err != nil {
		return fmt.Errorf("材料の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("材料が見つかりません: %d", ing.ID)
	}
	return nil
}

// Delete は指定IDの材料を削除する。
func (r *PostgresIngredientRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM ingredients WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("材料の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("材料が見つかりません: %d", id)
	}
	return nil
}

// compile-time interface check
var _ IngredientRepository = (*PostgresIngredientRepo)(nil)

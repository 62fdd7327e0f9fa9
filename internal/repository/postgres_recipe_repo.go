package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/cookbook/internal/model"
)

// PostgresRecipeRepo はPostgreSQLを使用したレシピリポジトリ。
// タグ集合・材料集合を置換する書き込みは単一トランザクションで行い、
// 途中失敗時に部分的な置換が見えないことを保証する。
type PostgresRecipeRepo struct {
	db *sql.DB
}

// NewPostgresRecipeRepo はPostgresRecipeRepoを生成する。
func NewPostgresRecipeRepo(db *sql.DB) *PostgresRecipeRepo {
	return &PostgresRecipeRepo{db: db}
}

const recipeColumns = `id, author_id, name, image_url, text, cooking_time, pub_date`

func scanRecipe(row interface{ Scan(...any) error }) (*model.Recipe, error) {
	recipe := &model.Recipe{}
	err := row.Scan(
		&recipe.ID, &recipe.AuthorID, &recipe.Name, &recipe.ImageURL,
		&recipe.Text, &recipe.CookingTime, &recipe.PubDate,
	)
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// FindByID は指定IDのレシピを取得する。見つからない場合はnilを返す。
func (r *PostgresRecipeRepo) FindByID(ctx context.Context, id int64) (*model.Recipe, error) {
	recipe, err := scanRecipe(r.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	return recipe, nil
}

// buildFilter はRecipeFilterからWHERE句と引数リストを構築する。
// 閲覧者スコープの条件はEXISTSサブクエリで表現する。
func buildFilter(filter RecipeFilter) (string, []any) {
	var conds []string
	var args []any

	next := func() string { return fmt.Sprintf("$%d", len(args)+1) }

	if filter.AuthorID != nil {
		conds = append(conds, `r.author_id = `+next())
		args = append(args, *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM recipe_tags rt
			JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.slug = ANY(`+next()+`))`)
		args = append(args, pq.Array(filter.TagSlugs))
	}
	if filter.FavoritedBy != nil {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM favorites f
			WHERE f.recipe_id = r.id AND f.user_id = `+next()+`)`)
		args = append(args, *filter.FavoritedBy)
	}
	if filter.InCartOf != nil {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM shopping_carts sc
			WHERE sc.recipe_id = r.id AND sc.user_id = `+next()+`)`)
		args = append(args, *filter.InCartOf)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, " AND "), args
}

// List はフィルタ適用済みのレシピ一覧を公開日時降順で返す。
func (r *PostgresRecipeRepo) List(ctx context.Context, filter RecipeFilter, limit, offset int) ([]*model.Recipe, error) {
	where, args := buildFilter(filter)
	query := `SELECT r.id, r.author_id, r.name, r.image_url, r.text, r.cooking_time, r.pub_date
		 FROM recipes r` + where +
		fmt.Sprintf(` ORDER BY r.pub_date DESC, r.id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("レシピ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectRecipes(rows)
}

// Count はフィルタ適用済みのレシピ数を返す。
func (r *PostgresRecipeRepo) Count(ctx context.Context, filter RecipeFilter) (int, error) {
	where, args := buildFilter(filter)
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes r`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("レシピ数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// ListByAuthorID は指定投稿者のレシピを公開日時降順で最大limit件返す。
func (r *PostgresRecipeRepo) ListByAuthorID(ctx context.Context, authorID int64, limit int) ([]*model.Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes
		 WHERE author_id = $1 ORDER BY pub_date DESC, id DESC LIMIT $2`,
		authorID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("投稿者のレシピ取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectRecipes(rows)
}

// CountByAuthorID は指定投稿者のレシピ総数を返す。
func (r *PostgresRecipeRepo) CountByAuthorID(ctx context.Context, authorID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes WHERE author_id = $1`,
		authorID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("投稿者のレシピ数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// Create はレシピ本体・タグ関連・材料行を同一トランザクションで作成する。
func (r *PostgresRecipeRepo) Create(ctx context.Context, recipe *model.Recipe, tagIDs []int64, ingredients []model.RecipeIngredient) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO recipes (author_id, name, image_url, text, cooking_time)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, pub_date`,
		recipe.AuthorID, recipe.Name, recipe.ImageURL, recipe.Text, recipe.CookingTime,
	).Scan(&recipe.ID, &recipe.PubDate)
	if err != nil {
		return fmt.Errorf("レシピの作成に失敗しました: %w", err)
	}

	if err := insertRecipeTags(ctx, tx, recipe.ID, tagIDs); err != nil {
		return err
	}
	if err := insertRecipeIngredients(ctx, tx, recipe.ID, ingredients); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Update はレシピのスカラー列を更新し、指定があればタグ・材料集合を全置換する。
// すべて同一トランザクションで行う。
func (r *PostgresRecipeRepo) Update(ctx context.Context, recipe *model.Recipe, tagIDs []int64, replaceTags bool, ingredients []model.RecipeIngredient, replaceIngredients bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE recipes SET name = $2, image_url = $3, text = $4, cooking_time = $5
		 WHERE id = $1`,
		recipe.ID, recipe.Name, recipe.ImageURL, recipe.Text, recipe.CookingTime,
	)
	if err != nil {
		return fmt.Errorf("レシピの更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("レシピが見つかりません: %d", recipe.ID)
	}

	if replaceTags {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM recipe_tags WHERE recipe_id = $1`, recipe.ID,
		); err != nil {
			return fmt.Errorf("タグ関連の削除に失敗しました: %w", err)
		}
		if err := insertRecipeTags(ctx, tx, recipe.ID, tagIDs); err != nil {
			return err
		}
	}

	if replaceIngredients {
		// 全削除してから再挿入する（マージではなく置換）
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipe.ID,
		); err != nil {
			return fmt.Errorf("材料行の削除に失敗しました: %w", err)
		}
		if err := insertRecipeIngredients(ctx, tx, recipe.ID, ingredients); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete は指定IDのレシピを削除する。結合行はCASCADE削除される。
func (r *PostgresRecipeRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM recipes WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("レシピの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("レシピが見つかりません: %d", id)
	}
	return nil
}

// ListIngredients は指定レシピの材料を名前・単位を解決して返す。
func (r *PostgresRecipeRepo) ListIngredients(ctx context.Context, recipeID int64) ([]model.IngredientInRecipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT i.id, i.name, i.measurement_unit, ri.amount
		 FROM recipe_ingredients ri
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE ri.recipe_id = $1
		 ORDER BY ri.id ASC`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("レシピの材料取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var ingredients []model.IngredientInRecipe
	for rows.Next() {
		var ing model.IngredientInRecipe
		if err := rows.Scan(&ing.IngredientID, &ing.Name, &ing.MeasurementUnit, &ing.Amount); err != nil {
			return nil, fmt.Errorf("材料行の読み取りに失敗しました: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("レシピの材料の走査に失敗しました: %w", err)
	}
	return ingredients, nil
}

// insertRecipeTags はタグ関連行を一括挿入する。
func insertRecipeTags(ctx context.Context, tx *sql.Tx, recipeID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ($1, $2)`,
			recipeID, tagID,
		); err != nil {
			return fmt.Errorf("タグ関連の挿入に失敗しました: %w", err)
		}
	}
	return nil
}

// insertRecipeIngredients は材料行を一括挿入する。
// (recipe, ingredient) の一意制約違反はAPIErrorに変換する。
func insertRecipeIngredients(ctx context.Context, tx *sql.Tx, recipeID int64, ingredients []model.RecipeIngredient) error {
	if len(ingredients) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("recipe_ingredients", "recipe_id", "ingredient_id", "amount"))
	if err != nil {
		return fmt.Errorf("材料行の一括挿入準備に失敗しました: %w", err)
	}

	for _, ing := range ingredients {
		if _, err := stmt.ExecContext(ctx, recipeID, ing.IngredientID, ing.Amount); err != nil {
			stmt.Close()
			return fmt.Errorf("材料行の挿入に失敗しました: %w", err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		if uniqueViolation(err, "unique_recipe_ingredient") {
			return fmt.Errorf("材料行が重複しています: %w", err)
		}
		return fmt.Errorf("材料行の一括挿入に失敗しました: %w", err)
	}
	return stmt.Close()
}

func collectRecipes(rows *sql.Rows) ([]*model.Recipe, error) {
	var recipes []*model.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("レシピ行の読み取りに失敗しました: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("レシピ一覧の走査に失敗しました: %w", err)
	}
	return recipes, nil
}

// compile-time interface check
var _ RecipeRepository = (*PostgresRecipeRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/cookbook/internal/model"
)

// PostgresTagRepo はPostgreSQLを使用したタグリポジトリ。
type PostgresTagRepo struct {
	db *sql.DB
}

// NewPostgresTagRepo はPostgresTagRepoを生成する。
func NewPostgresTagRepo(db *sql.DB) *PostgresTagRepo {
	return &PostgresTagRepo{db: db}
}

// List はタグ一覧を名前昇順で返す。
func (r *PostgresTagRepo) List(ctx context.Context) ([]*model.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, color, slug FROM tags ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("タグ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// FindByID は指定IDのタグを取得する。見つからない場合はnilを返す。
func (r *PostgresTagRepo) FindByID(ctx context.Context, id int64) (*model.Tag, error) {
	tag := &model.Tag{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, color, slug FROM tags WHERE id = $1`,
		id,
	).Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Slug)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("タグの取得に失敗しました: %w", err)
	}
	return tag, nil
}

// FindByIDs は指定ID群のタグを返す。存在しないIDは結果に含まれない。
func (r *PostgresTagRepo) FindByIDs(ctx context.Context, ids []int64) ([]*model.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, color, slug FROM tags WHERE id = ANY($1) ORDER BY id ASC`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("タグ群の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// FindBySlug はslugでタグを検索する。見つからない場合はnilを返す。
func (r *PostgresTagRepo) FindBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	tag := &model.Tag{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, color, slug FROM tags WHERE slug = $1`,
		slug,
	).Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Slug)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("タグの検索に失敗しました: %w", err)
	}
	return tag, nil
}

// ListByRecipeID は指定レシピに付与されたタグを返す。
func (r *PostgresTagRepo) ListByRecipeID(ctx context.Context, recipeID int64) ([]*model.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.color, t.slug
		 FROM tags t
		 JOIN recipe_tags rt ON rt.tag_id = t.id
		 WHERE rt.recipe_id = $1
		 ORDER BY t.id ASC`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("レシピのタグ取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// Create はタグを作成し、採番されたIDをフィールドに設定する。
func (r *PostgresTagRepo) Create(ctx context.Context, tag *model.Tag) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tags (name, color, slug) VALUES ($1, $2, $3) RETURNING id`,
		tag.Name, tag.Color, tag.Slug,
	).Scan(&tag.ID)
	if err != nil {
		return fmt.Errorf("タグの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はタグを更新する。
func (r *PostgresTagRepo) Update(ctx context.Context, tag *model.Tag) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tags SET name = $2, color = $3, slug = $4 WHERE id = $1`,
		tag.ID, tag.Name, tag.Color, tag.Slug,
	)
	if err != nil {
		return fmt.Errorf("タグの更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("タグが見つかりません: %d", tag.ID)
	}
	return nil
}

// Delete は指定IDのタグを削除する。
func (r *PostgresTagRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tags WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("タグの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("タグが見つかりません: %d", id)
	}
	return nil
}

func scanTags(rows *sql.Rows) ([]*model.Tag, error) {
	var tags []*model.Tag
	for rows.Next() {
		tag := &model.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Slug); err != nil {
			return nil, fmt.Errorf("タグ行の読み取りに失敗しました: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("タグ一覧の走査に失敗しました: %w", err)
	}
	return tags, nil
}

// compile-time interface check
var _ TagRepository = (*PostgresTagRepo)(nil)

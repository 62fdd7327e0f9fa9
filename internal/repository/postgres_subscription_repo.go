package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/cookbook/internal/model"
)

// PostgresSubscriptionRepo はPostgreSQLを使用したフォロー関係リポジトリ。
type PostgresSubscriptionRepo struct {
	db *sql.DB
}

// NewPostgresSubscriptionRepo はPostgresSubscriptionRepoを生成する。
func NewPostgresSubscriptionRepo(db *sql.DB) *PostgresSubscriptionRepo {
	return &PostgresSubscriptionRepo{db: db}
}

// Exists は(user, author)のフォロー関係が存在するかを返す。
func (r *PostgresSubscriptionRepo) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM subscriptions WHERE user_id = $1 AND author_id = $2)`,
		userID, authorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("フォロー状態の確認に失敗しました: %w", err)
	}
	return exists, nil
}

// Create はフォロー関係を作成し、採番されたIDをフィールドに設定する。
// 既存の場合はAPIErrorを返す。
func (r *PostgresSubscriptionRepo) Create(ctx context.Context, sub *model.Subscription) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO subscriptions (user_id, author_id) VALUES ($1, $2)
		 RETURNING id, created_at`,
		sub.UserID, sub.AuthorID,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		if uniqueViolation(err, "unique_subscription") {
			return model.NewDuplicateSubscribeError()
		}
		return fmt.Errorf("フォローの登録に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserAndAuthor は(user, author)のフォロー関係を削除し、行が存在したかどうかを返す。
func (r *PostgresSubscriptionRepo) DeleteByUserAndAuthor(ctx context.Context, userID, authorID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE user_id = $1 AND author_id = $2`,
		userID, authorID,
	)
	if err != nil {
		return false, fmt.Errorf("フォローの解除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("解除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// ListAuthorsByUserID はユーザーがフォロー中の投稿者をフォロー日時昇順で返す。
func (r *PostgresSubscriptionRepo) ListAuthorsByUserID(ctx context.Context, userID int64, limit, offset int) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.username, u.first_name, u.last_name,
		        u.password_hash, u.is_admin, u.created_at, u.updated_at
		 FROM subscriptions s
		 JOIN users u ON u.id = s.author_id
		 WHERE s.user_id = $1
		 ORDER BY s.created_at ASC, s.id ASC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("フォロー中の投稿者取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var authors []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("投稿者行の読み取りに失敗しました: %w", err)
		}
		authors = append(authors, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("フォロー中の投稿者の走査に失敗しました: %w", err)
	}
	return authors, nil
}

// CountByUserID はユーザーのフォロー数を返す。
func (r *PostgresSubscriptionRepo) CountByUserID(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("フォロー数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ SubscriptionRepository = (*PostgresSubscriptionRepo)(nil)

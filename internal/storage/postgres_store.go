package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PostgresImageStore は画像をrecipe_imagesテーブルに保存し、
// /media/{key} で自前配信するための画像ストア。
// 外部オブジェクトストレージなしの単一バイナリ構成向け。
type PostgresImageStore struct {
	db      *sql.DB
	baseURL string
}

// NewPostgresImageStore はPostgresImageStoreを生成する。
// baseURLは公開URLの組み立てに使用する（末尾スラッシュなし）。
func NewPostgresImageStore(db *sql.DB, baseURL string) *PostgresImageStore {
	return &PostgresImageStore{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

// recipe_imagesテーブルに対するSQL。列名はマイグレーションのDDLと
// 一致していなければならない。
const (
	insertImageSQL = `INSERT INTO recipe_images (key, mime, data) VALUES ($1, $2, $3)`
	selectImageSQL = `SELECT mime, data FROM recipe_images WHERE key = $1`
)

// Save は画像を保存し、公開URLを返す。キーはUUIDで採番する。
func (s *PostgresImageStore) Save(ctx context.Context, img *Image) (string, error) {
	key := uuid.NewString() + extensionFor(img.ContentType)
	_, err := s.db.ExecContext(ctx, insertImageSQL, key, img.ContentType, img.Data)
	if err != nil {
		return "", fmt.Errorf("画像の保存に失敗しました: %w", err)
	}
	return s.baseURL + "/media/" + key, nil
}

// Load は指定キーの画像を取得する。見つからない場合はnilを返す。
func (s *PostgresImageStore) Load(ctx context.Context, key string) (*Image, error) {
	img := &Image{}
	err := s.db.QueryRowContext(ctx, selectImageSQL, key).Scan(&img.ContentType, &img.Data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("画像の取得に失敗しました: %w", err)
	}
	return img, nil
}

// compile-time interface check
var _ ImageStore = (*PostgresImageStore)(nil)

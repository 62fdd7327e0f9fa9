package storage

import "context"

// ImageStore はレシピ画像の保存先を抽象化する。
// Save は保存した画像の公開URLを返す。
type ImageStore interface {
	Save(ctx context.Context, img *Image) (string, error)
}

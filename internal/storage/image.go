// Package storage はレシピ画像の保存と配信を提供する。
package storage

import (
	"encoding/base64"
	"strings"

	"github.com/hitoshi/cookbook/internal/model"
)

// Image はデコード済みのレシピ画像を表す。
type Image struct {
	Data        []byte
	ContentType string
}

// 受け付ける画像形式と拡張子の対応。
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// maxImageBytes はデコード後の画像サイズの上限。
const maxImageBytes = 5 << 20

// ParseDataURL は "data:image/png;base64,...." 形式の文字列をデコードする。
// 形式不正・非対応のContent-Type・サイズ超過はAPIErrorを返す。
func ParseDataURL(s string) (*Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, model.NewInvalidImageError("data URL形式ではありません")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, model.NewInvalidImageError("base64ペイロードがありません")
	}
	contentType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" {
		return nil, model.NewInvalidImageError("base64エンコードではありません")
	}
	if _, ok := imageExtensions[contentType]; !ok {
		return nil, model.NewInvalidImageError("非対応の画像形式です: " + contentType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, model.NewInvalidImageError("base64のデコードに失敗しました")
	}
	if len(data) == 0 {
		return nil, model.NewInvalidImageError("画像データが空です")
	}
	if len(data) > maxImageBytes {
		return nil, model.NewInvalidImageError("画像サイズが上限を超えています")
	}

	return &Image{Data: data, ContentType: contentType}, nil
}

// extensionFor はContent-Typeに対応するファイル拡張子を返す。
func extensionFor(contentType string) string {
	if ext, ok := imageExtensions[contentType]; ok {
		return ext
	}
	return ".bin"
}

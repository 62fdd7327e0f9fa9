package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/storage"
)

// ImageLoader は保存済み画像の読み取りインターフェース。
// storage.PostgresImageStoreの部分集合として定義する。
type ImageLoader interface {
	Load(ctx context.Context, key string) (*storage.Image, error)
}

// MediaHandler はデータベース保存の画像を配信するHTTPハンドラー。
// S3ストア構成ではオブジェクトストレージが直接配信するため使わない。
type MediaHandler struct {
	loader ImageLoader
}

// NewMediaHandler はMediaHandlerを生成する。
func NewMediaHandler(loader ImageLoader) *MediaHandler {
	return &MediaHandler{loader: loader}
}

// Serve は指定キーの画像を返す。
// GET /media/{key}
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		http.NotFound(w, r)
		return
	}

	img, err := h.loader.Load(r.Context(), key)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if img == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, &model.APIError{
			Code:     "IMAGE_NOT_FOUND",
			Message:  "指定された画像が見つかりません。",
			Category: "validation",
			Action:   "画像URLを確認してください。",
		})
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/cookbook/internal/middleware"
	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/reference"
)

// ReferenceServiceInterface は参照データハンドラーが必要とする
// サービスインターフェース。
type ReferenceServiceInterface interface {
	// ListTags は全タグを返す。
	ListTags(ctx context.Context) ([]*model.Tag, error)
	// GetTag は指定IDのタグを返す。
	GetTag(ctx context.Context, id int64) (*model.Tag, error)
	// CreateTag はタグを作成する。管理者のみ実行できる。
	CreateTag(ctx context.Context, actor *model.User, input reference.TagInput) (*model.Tag, error)
	// UpdateTag はタグを部分更新する。管理者のみ実行できる。
	UpdateTag(ctx context.Context, actor *model.User, id int64, input reference.TagUpdateInput) (*model.Tag, error)
	// DeleteTag はタグを削除する。管理者のみ実行できる。
	DeleteTag(ctx context.Context, actor *model.User, id int64) error
	// ListIngredients は材料一覧を返す。namePrefixで前方一致絞り込みする。
	ListIngredients(ctx context.Context, namePrefix string) ([]*model.Ingredient, error)
	// GetIngredient は指定IDの材料を返す。
	GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error)
	// CreateIngredient は材料を作成する。管理者のみ実行できる。
	CreateIngredient(ctx context.Context, actor *model.User, input reference.IngredientInput) (*model.Ingredient, error)
	// UpdateIngredient は材料を部分更新する。管理者のみ実行できる。
	UpdateIngredient(ctx context.Context, actor *model.User, id int64, input reference.IngredientUpdateInput) (*model.Ingredient, error)
	// DeleteIngredient は材料を削除する。管理者のみ実行できる。
	DeleteIngredient(ctx context.Context, actor *model.User, id int64) error
}

// createTagRequest はタグ作成リクエストのボディ。
type createTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// updateTagRequest はタグ部分更新リクエストのボディ。
// 省略されたフィールドは変更しない。
type updateTagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Slug  *string `json:"slug"`
}

// createIngredientRequest は材料作成リクエストのボディ。
type createIngredientRequest struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// updateIngredientRequest は材料部分更新リクエストのボディ。
type updateIngredientRequest struct {
	Name            *string `json:"name"`
	MeasurementUnit *string `json:"measurement_unit"`
}

// ReferenceHandler はタグ・材料参照データのHTTPハンドラー。
// 一覧はページングせず全件を配列で返す。書き込みは管理者専用。
type ReferenceHandler struct {
	service ReferenceServiceInterface
}

// NewReferenceHandler はReferenceHandlerを生成する。
func NewReferenceHandler(service ReferenceServiceInterface) *ReferenceHandler {
	return &ReferenceHandler{service: service}
}

// ListTags はタグ一覧を返す。
// GET /api/tags
func (h *ReferenceHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTagResponses(tags))
}

// GetTag はタグ詳細を返す。
// GET /api/tags/{id}
func (h *ReferenceHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeInvalidIDParam(w)
		return
	}

	tag, err := h.service.GetTag(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTagResponse(tag))
}

// CreateTag はタグ作成を処理する。
// POST /api/tags
func (h *ReferenceHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	tag, err := h.service.CreateTag(r.Context(), u, reference.TagInput{
		Name:  req.Name,
		Color: req.Color,
		Slug:  req.Slug,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTagResponse(tag))
}

// UpdateTag はタグの部分更新を処理する。
// PATCH /api/tags/{id}
func (h *ReferenceHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	id, err := idParam(r)
	if err != nil {
		writeInvalidIDParam(w)
		return
	}

	var req updateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	tag, err := h.service.UpdateTag(r.Context(), u, id, reference.TagUpdateInput{
		Name:  req.Name,
		Color: req.Color,
		Slug:  req.Slug,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTagResponse(tag))
}

// DeleteTag はタグ削除を処理する。
// DELETE /api/tags/{id}
func (h *ReferenceHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	id, err := idParam(r)
	if err != nil {
		writeInvalidIDParam(w)
		return
	}

	if err := h.service.DeleteTag(r.Context(), u, id); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListIngredients は材料一覧を返す。
// GET /api/ingredients?name=prefix
func (h *ReferenceHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.service.ListIngredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]ingredientResponse, len(ingredients))
	for i, ing := range ingredients {
		results[i] = toIngredientResponse(ing)
	}
	writeJSON(w, http.StatusOK, results)
}

// GetIngredient は材料詳細を返す。
// GET /api/ingredients/{id}
func (h *ReferenceHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeInvalidIDParam(w)
		return
	}

	ingredient, err := h.service.GetIngredient(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIngredientResponse(ingredient))
}

// CreateIngredient は材料作成を処理する。
// POST /api/ingredients
func (h *ReferenceHandler) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	ingredient, err := h.service.CreateIngredient(r.Context(), u, reference.IngredientInput{
		Name:            req.Name,
		MeasurementUnit: req.MeasurementUnit,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIngredientResponse(ingredient))
}

// UpdateIngredient は材料の部分更新を処理する。
// PATCH /api/ingredients/{id}
func (h *ReferenceHandler) UpdateIngredient(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	id, err := idParam(r)
	if err != nil {
		writeInvalidIDParam(w)
		return
	}

	var req updateIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	ingredient, err := h.service.UpdateIngredient(r.Context(), u, id, reference.IngredientUpdateInput{
		Name:            req.Name,
		MeasurementUnit: req.MeasurementUnit,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIngredientResponse(ingredient))
}

// DeleteIngredient は材料削除を処理する。
// DELETE /api/ingredients/{id}
func (h *ReferenceHandler) DeleteIngredient(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	id, err := idParam(r)
	if err != nil {
		writeInvalidIDParam(w)
		return
	}

	if err := h.service.DeleteIngredient(r.Context(), u, id); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

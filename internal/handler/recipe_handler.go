package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hitoshi/cookbook/internal/metrics"
	"github.com/hitoshi/cookbook/internal/middleware"
	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/recipe"
)

// RecipeServiceInterface はレシピハンドラーが必要とするサービスインターフェース。
type RecipeServiceInterface interface {
	// Get は指定IDのレシピの読み取り表現を返す。
	Get(ctx context.Context, viewerID *int64, recipeID int64) (*recipe.View, error)
	// List はフィルタ適用済みのレシピ一覧を返す。
	List(ctx context.Context, viewerID *int64, filter recipe.Filter, limit, offset int) ([]*recipe.View, int, error)
	// Create は新規レシピを作成する。
	Create(ctx context.Context, authorID int64, input recipe.CreateInput) (*recipe.View, error)
	// Update はレシピを部分更新する。
	Update(ctx context.Context, actor *model.User, recipeID int64, input recipe.UpdateInput) (*recipe.View, error)
	// Delete はレシピを削除する。
	Delete(ctx context.Context, actor *model.User, recipeID int64) error
	// AddMark はレシピをお気に入り/買い物リストに追加する。
	AddMark(ctx context.Context, userID, recipeID int64, kind model.MarkKind) (*recipe.ShortView, error)
	// RemoveMark はレシピをお気に入り/買い物リストから削除する。
	RemoveMark(ctx context.Context, userID, recipeID int64, kind model.MarkKind) error
}

// ShoppingListServiceInterface は買い物リストダウンロードが必要とする
// サービスインターフェース。
type ShoppingListServiceInterface interface {
	// Render は集約済みの買い物リストをテキストに整形して返す。
	Render(ctx context.Context, userID int64) (filename, content string, err error)
}

// RecipeHandler はレシピ管理のHTTPハンドラー。
type RecipeHandler struct {
	service      RecipeServiceInterface
	shoppingList ShoppingListServiceInterface
	collector    metrics.MetricsCollector
	baseURL      string
	pageSize     int
}

// NewRecipeHandler はRecipeHandlerを生成する。
func NewRecipeHandler(
	service RecipeServiceInterface,
	shoppingList ShoppingListServiceInterface,
	collector metrics.MetricsCollector,
	baseURL string,
	pageSize int,
) *RecipeHandler {
	return &RecipeHandler{
		service:      service,
		shoppingList: shoppingList,
		collector:    collector,
		baseURL:      baseURL,
		pageSize:     pageSize,
	}
}

// recipeIngredientRequest はレシピ入力の材料1行。
type recipeIngredientRequest struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// createRecipeRequest はレシピ作成リクエストのボディ。
type createRecipeRequest struct {
	Ingredients []recipeIngredientRequest `json:"ingredients"`
	Tags        []int64                   `json:"tags"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
}

// updateRecipeRequest はレシピ更新リクエストのボディ。
// nilのフィールドは変更しない。
type updateRecipeRequest struct {
	Ingredients *[]recipeIngredientRequest `json:"ingredients"`
	Tags        *[]int64                   `json:"tags"`
	Image       *string                    `json:"image"`
	Name        *string                    `json:"name"`
	Text        *string                    `json:"text"`
	CookingTime *int                       `json:"cooking_time"`
}

func toIngredientAmounts(reqs []recipeIngredientRequest) []recipe.IngredientAmount {
	out := make([]recipe.IngredientAmount, len(reqs))
	for i, r := range reqs {
		out[i] = recipe.IngredientAmount{IngredientID: r.ID, Amount: r.Amount}
	}
	return out
}

// parseRecipeFilter はクエリパラメータからレシピの絞り込み条件を組み立てる。
// author・tags・is_favorited・is_in_shopping_cartに対応する。
func parseRecipeFilter(r *http.Request) recipe.Filter {
	q := r.URL.Query()
	filter := recipe.Filter{
		TagSlugs:      q["tags"],
		OnlyFavorited: q.Get("is_favorited") == "1",
		OnlyInCart:    q.Get("is_in_shopping_cart") == "1",
	}
	if raw := q.Get("author"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filter.AuthorID = &id
		}
	}
	return filter
}

// List はレシピ一覧を返す。
// GET /api/recipes
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r, h.pageSize)

	views, total, err := h.service.List(r.Context(), viewerIDFrom(r), parseRecipeFilter(r), p.Limit, p.Offset())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]recipeResponse, len(views))
	for i, view := range views {
		results[i] = toRecipeResponse(view)
	}
	writeJSON(w, http.StatusOK, newPageResponse(h.baseURL, r, p, total, results))
}

// Get はレシピ詳細を返す。
// GET /api/recipes/{id}
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeInvalidIDParam(w)
		return
	}

	view, err := h.service.Get(r.Context(), viewerIDFrom(r), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecipeResponse(view))
}

// Create はレシピ作成を処理する。作成者は認証済みユーザーから注入する。
// POST /api/recipes
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if req.Name == "" || req.Image == "" || len(req.Ingredients) == 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "name、image、ingredientsは必須です。",
			Category: "validation",
			Action:   "必須フィールドをすべて指定してください。",
		})
		return
	}

	view, err := h.service.Create(r.Context(), u.ID, recipe.CreateInput{
		Name:         req.Name,
		Text:         req.Text,
		ImageDataURL: req.Image,
		CookingTime:  req.CookingTime,
		TagIDs:       req.Tags,
		Ingredients:  toIngredientAmounts(req.Ingredients),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordRecipeCreated()
	writeJSON(w, http.StatusCreated, toRecipeResponse(view))
}

// Update はレシピの部分更新を処理する。
// PATCH /api/recipes/{id}
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req updateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	input := recipe.UpdateInput{
		Name:         req.Name,
		Text:         req.Text,
		ImageDataURL: req.Image,
		CookingTime:  req.CookingTime,
		TagIDs:       req.Tags,
	}
	if req.Ingredients != nil {
		amounts := toIngredientAmounts(*req.Ingredients)
		input.Ingredients = &amounts
	}

	view, err := h.service.Update(r.Context(), u, id, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecipeResponse(view))
}

// Delete はレシピ削除を処理する。
// DELETE /api/recipes/{id}
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.Delete(r.Context(), u, id); err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordRecipeDeleted()
	w.WriteHeader(http.StatusNoContent)
}

// AddMark はお気に入り/買い物リストへの追加を処理するハンドラーを返す。
// お気に入りと買い物リストで同じ実装を共有し、マーク種別だけを変える。
// POST /api/recipes/{id}/favorite, POST /api/recipes/{id}/shopping_cart
func (h *RecipeHandler) AddMark(kind model.MarkKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		view, err := h.service.AddMark(r.Context(), u.ID, id, kind)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		h.collector.RecordMarkAdded(string(kind))
		writeJSON(w, http.StatusCreated, toShortRecipeResponse(view))
	}
}

// RemoveMark はお気に入り/買い物リストからの削除を処理するハンドラーを返す。
// DELETE /api/recipes/{id}/favorite, DELETE /api/recipes/{id}/shopping_cart
func (h *RecipeHandler) RemoveMark(kind model.MarkKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		if err := h.service.RemoveMark(r.Context(), u.ID, id, kind); err != nil {
			handleServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DownloadShoppingCart は集約済み買い物リストをテキスト添付で返す。
// GET /api/recipes/download_shopping_cart
func (h *RecipeHandler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	filename, content, err := h.shoppingList.Render(r.Context(), u.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordShoppingListDownload()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}

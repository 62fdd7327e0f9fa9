// Package handler はHTTP APIのハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/cookbook/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// 検証違反と状態の衝突（重複追加・未追加の削除）はすべて400を返す。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodePermissionDenied:
		return http.StatusForbidden
	case model.ErrCodeUserNotFound, model.ErrCodeRecipeNotFound,
		model.ErrCodeTagNotFound, model.ErrCodeIngredientNotFound:
		return http.StatusNotFound
	case model.ErrCodeSelfSubscribe, model.ErrCodeDuplicateSubscribe,
		model.ErrCodeSubscriptionNotFound, model.ErrCodeDuplicateIngredient,
		model.ErrCodeInvalidCookingTime, model.ErrCodeInvalidAmount,
		model.ErrCodeAlreadyMarked, model.ErrCodeNotMarked,
		model.ErrCodeDuplicateEmail, model.ErrCodeDuplicateUsername,
		model.ErrCodeInvalidPassword, model.ErrCodeInvalidImage,
		model.ErrCodeDuplicateTag, model.ErrCodeDuplicateUnit,
		model.ErrCodeInvalidReference:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeInvalidRequestBody はリクエストボディ解析失敗のレスポンスを書き込む。
func writeInvalidRequestBody(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// idParam はURLパスの{id}パラメータをint64として取り出す。
func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id parameter: %q", raw)
	}
	return id, nil
}

// writeInvalidIDParam はIDパラメータ不正のレスポンスを書き込む。
func writeInvalidIDParam(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_ID",
		Message:  "IDの形式が正しくありません。",
		Category: "validation",
		Action:   "IDは正の整数で指定してください。",
	})
}

// Pagination はページ指定の解析結果。
type Pagination struct {
	Page  int
	Limit int
}

// Offset はSQLのOFFSET値を返す。
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// parsePagination はクエリパラメータpage・limitを解析する。
// 不正値・未指定はデフォルトに丸める。
func parsePagination(r *http.Request, defaultLimit int) Pagination {
	p := Pagination{Page: 1, Limit: defaultLimit}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Page = v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			p.Limit = v
		}
	}
	return p
}

// pageResponse は一覧APIのページ付きレスポンスの包み。
type pageResponse struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// newPageResponse はページ付きレスポンスを組み立てる。
// next/previousは該当ページがない場合にnullになる。
// リクエストのクエリ（authorやtagsなどの絞り込み）はリンクに引き継ぎ、
// pageとlimitだけを差し替える。
func newPageResponse(baseURL string, r *http.Request, p Pagination, count int, results any) pageResponse {
	resp := pageResponse{Count: count, Results: results}

	pageURL := func(page int) *string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(p.Limit))
		u := baseURL + r.URL.Path + "?" + q.Encode()
		return &u
	}
	if p.Offset()+p.Limit < count {
		resp.Next = pageURL(p.Page + 1)
	}
	if p.Page > 1 {
		resp.Previous = pageURL(p.Page - 1)
	}
	return resp
}

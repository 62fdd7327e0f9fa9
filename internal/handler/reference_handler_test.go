package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/reference"
)

// --- モック定義 ---

// mockReferenceService はReferenceServiceInterfaceのモック実装。
type mockReferenceService struct {
	listTagsFn         func(ctx context.Context) ([]*model.Tag, error)
	getTagFn           func(ctx context.Context, id int64) (*model.Tag, error)
	createTagFn        func(ctx context.Context, actor *model.User, input reference.TagInput) (*model.Tag, error)
	updateTagFn        func(ctx context.Context, actor *model.User, id int64, input reference.TagUpdateInput) (*model.Tag, error)
	deleteTagFn        func(ctx context.Context, actor *model.User, id int64) error
	listIngredientsFn  func(ctx context.Context, namePrefix string) ([]*model.Ingredient, error)
	getIngredientFn    func(ctx context.Context, id int64) (*model.Ingredient, error)
	createIngredientFn func(ctx context.Context, actor *model.User, input reference.IngredientInput) (*model.Ingredient, error)
	updateIngredientFn func(ctx context.Context, actor *model.User, id int64, input reference.IngredientUpdateInput) (*model.Ingredient, error)
	deleteIngredientFn func(ctx context.Context, actor *model.User, id int64) error
}

func (m *mockReferenceService) ListTags(ctx context.Context) ([]*model.Tag, error) {
	if m.listTagsFn != nil {
		return m.listTagsFn(ctx)
	}
	return nil, nil
}
func (m *mockReferenceService) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	if m.getTagFn != nil {
		return m.getTagFn(ctx, id)
	}
	return nil, nil
}
func (m *mockReferenceService) ListIngredients(ctx context.Context, namePrefix string) ([]*model.Ingredient, error) {
	if m.listIngredientsFn != nil {
		return m.listIngredientsFn(ctx, namePrefix)
	}
	return nil, nil
}
func (m *mockReferenceService) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	if m.getIngredientFn != nil {
		return m.getIngredientFn(ctx, id)
	}
	return nil, nil
}
func (m *mockReferenceService) CreateTag(ctx context.Context, actor *model.User, input reference.TagInput) (*model.Tag, error) {
	if m.createTagFn != nil {
		return m.createTagFn(ctx, actor, input)
	}
	return nil, nil
}
func (m *mockReferenceService) UpdateTag(ctx context.Context, actor *model.User, id int64, input reference.TagUpdateInput) (*model.Tag, error) {
	if m.updateTagFn != nil {
		return m.updateTagFn(ctx, actor, id, input)
	}
	return nil, nil
}
func (m *mockReferenceService) DeleteTag(ctx context.Context, actor *model.User, id int64) error {
	if m.deleteTagFn != nil {
		return m.deleteTagFn(ctx, actor, id)
	}
	return nil
}
func (m *mockReferenceService) CreateIngredient(ctx context.Context, actor *model.User, input reference.IngredientInput) (*model.Ingredient, error) {
	if m.createIngredientFn != nil {
		return m.createIngredientFn(ctx, actor, input)
	}
	return nil, nil
}
func (m *mockReferenceService) UpdateIngredient(ctx context.Context, actor *model.User, id int64, input reference.IngredientUpdateInput) (*model.Ingredient, error) {
	if m.updateIngredientFn != nil {
		return m.updateIngredientFn(ctx, actor, id, input)
	}
	return nil, nil
}
func (m *mockReferenceService) DeleteIngredient(ctx context.Context, actor *model.User, id int64) error {
	if m.deleteIngredientFn != nil {
		return m.deleteIngredientFn(ctx, actor, id)
	}
	return nil
}

// --- テスト ---

func TestReferenceHandler_ListTags(t *testing.T) {
	svc := &mockReferenceService{
		listTagsFn: func(ctx context.Context) ([]*model.Tag, error) {
			return []*model.Tag{
				{ID: 1, Name: "朝食", Color: "#E26C2D", Slug: "breakfast"},
				{ID: 2, Name: "夕食", Color: "#8775D2", Slug: "dinner"},
			}, nil
		},
	}
	h := NewReferenceHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/tags", nil)
	w := httptest.NewRecorder()
	h.ListTags(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp []tagResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(resp))
	}
	if resp[0].Slug != "breakfast" || resp[1].Slug != "dinner" {
		t.Errorf("unexpected tags: %+v", resp)
	}
}

func TestReferenceHandler_GetTag_NotFound(t *testing.T) {
	svc := &mockReferenceService{
		getTagFn: func(ctx context.Context, id int64) (*model.Tag, error) {
			return nil, model.NewTagNotFoundError(id)
		},
	}
	h := NewReferenceHandler(svc)

	req := withIDParam(httptest.NewRequest(http.MethodGet, "/api/tags/999", nil), "999")
	w := httptest.NewRecorder()
	h.GetTag(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestReferenceHandler_ListIngredients_NameFilter(t *testing.T) {
	var gotPrefix string
	svc := &mockReferenceService{
		listIngredientsFn: func(ctx context.Context, namePrefix string) ([]*model.Ingredient, error) {
			gotPrefix = namePrefix
			return []*model.Ingredient{{ID: 1, Name: "じゃがいも", MeasurementUnit: "個"}}, nil
		},
	}
	h := NewReferenceHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/ingredients?name=%E3%81%98%E3%82%83", nil)
	w := httptest.NewRecorder()
	h.ListIngredients(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotPrefix != "じゃ" {
		t.Errorf("namePrefix = %q, want じゃ", gotPrefix)
	}
	var resp []ingredientResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].MeasurementUnit != "個" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestReferenceHandler_GetIngredient(t *testing.T) {
	svc := &mockReferenceService{
		getIngredientFn: func(ctx context.Context, id int64) (*model.Ingredient, error) {
			return &model.Ingredient{ID: id, Name: "塩", MeasurementUnit: "g"}, nil
		},
	}
	h := NewReferenceHandler(svc)

	req := withIDParam(httptest.NewRequest(http.MethodGet, "/api/ingredients/5", nil), "5")
	w := httptest.NewRecorder()
	h.GetIngredient(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp ingredientResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 5 || resp.Name != "塩" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestReferenceHandler_CreateTag_Success(t *testing.T) {
	var gotActor *model.User
	var gotInput reference.TagInput
	svc := &mockReferenceService{
		createTagFn: func(ctx context.Context, actor *model.User, input reference.TagInput) (*model.Tag, error) {
			gotActor = actor
			gotInput = input
			return &model.Tag{ID: 10, Name: input.Name, Color: input.Color, Slug: input.Slug}, nil
		},
	}
	h := NewReferenceHandler(svc)

	body := `{"name": "デザート", "color": "#49B64E", "slug": "dessert"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/tags", bytes.NewBufferString(body)), &model.User{ID: 1, IsAdmin: true})
	w := httptest.NewRecorder()
	h.CreateTag(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if gotActor == nil || gotActor.ID != 1 {
		t.Errorf("actor = %+v, want ID 1", gotActor)
	}
	if gotInput.Slug != "dessert" {
		t.Errorf("input.Slug = %q, want %q", gotInput.Slug, "dessert")
	}
	var resp tagResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 10 {
		t.Errorf("resp.ID = %d, want 10", resp.ID)
	}
}

func TestReferenceHandler_CreateTag_PermissionDenied(t *testing.T) {
	svc := &mockReferenceService{
		createTagFn: func(ctx context.Context, actor *model.User, input reference.TagInput) (*model.Tag, error) {
			return nil, model.NewPermissionDeniedError()
		},
	}
	h := NewReferenceHandler(svc)

	body := `{"name": "デザート", "color": "#49B64E", "slug": "dessert"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/tags", bytes.NewBufferString(body)), &model.User{ID: 2})
	w := httptest.NewRecorder()
	h.CreateTag(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestReferenceHandler_CreateTag_NoUser(t *testing.T) {
	called := false
	svc := &mockReferenceService{
		createTagFn: func(ctx context.Context, actor *model.User, input reference.TagInput) (*model.Tag, error) {
			called = true
			return nil, nil
		},
	}
	h := NewReferenceHandler(svc)

	body := `{"name": "デザート", "color": "#49B64E", "slug": "dessert"}`
	req := httptest.NewRequest(http.MethodPost, "/api/tags", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.CreateTag(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if called {
		t.Error("CreateTag should not be called without user")
	}
}

func TestReferenceHandler_UpdateTag_PartialBody(t *testing.T) {
	var gotInput reference.TagUpdateInput
	svc := &mockReferenceService{
		updateTagFn: func(ctx context.Context, actor *model.User, id int64, input reference.TagUpdateInput) (*model.Tag, error) {
			gotInput = input
			return &model.Tag{ID: id, Name: "朝食", Color: "#E26C2D", Slug: *input.Slug}, nil
		},
	}
	h := NewReferenceHandler(svc)

	body := `{"slug": "brunch"}`
	req := withUser(httptest.NewRequest(http.MethodPatch, "/api/tags/5", bytes.NewBufferString(body)), &model.User{ID: 1, IsAdmin: true})
	req = withIDParam(req, "5")
	w := httptest.NewRecorder()
	h.UpdateTag(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if gotInput.Slug == nil || *gotInput.Slug != "brunch" {
		t.Errorf("input.Slug = %v, want brunch", gotInput.Slug)
	}
	if gotInput.Name != nil || gotInput.Color != nil {
		t.Errorf("omitted fields should be nil: %+v", gotInput)
	}
}

func TestReferenceHandler_DeleteTag_Success(t *testing.T) {
	var gotID int64
	svc := &mockReferenceService{
		deleteTagFn: func(ctx context.Context, actor *model.User, id int64) error {
			gotID = id
			return nil
		},
	}
	h := NewReferenceHandler(svc)

	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/tags/5", nil), &model.User{ID: 1, IsAdmin: true})
	req = withIDParam(req, "5")
	w := httptest.NewRecorder()
	h.DeleteTag(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if gotID != 5 {
		t.Errorf("id = %d, want 5", gotID)
	}
}

func TestReferenceHandler_CreateIngredient_Duplicate(t *testing.T) {
	svc := &mockReferenceService{
		createIngredientFn: func(ctx context.Context, actor *model.User, input reference.IngredientInput) (*model.Ingredient, error) {
			return nil, model.NewDuplicateUnitError(input.Name, input.MeasurementUnit)
		},
	}
	h := NewReferenceHandler(svc)

	body := `{"name": "じゃがいも", "measurement_unit": "個"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/ingredients", bytes.NewBufferString(body)), &model.User{ID: 1, IsAdmin: true})
	w := httptest.NewRecorder()
	h.CreateIngredient(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	var resp apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeDuplicateUnit {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeDuplicateUnit)
	}
}

func TestReferenceHandler_UpdateIngredient_InvalidID(t *testing.T) {
	called := false
	svc := &mockReferenceService{
		updateIngredientFn: func(ctx context.Context, actor *model.User, id int64, input reference.IngredientUpdateInput) (*model.Ingredient, error) {
			called = true
			return nil, nil
		},
	}
	h := NewReferenceHandler(svc)

	body := `{"name": "じゃがいも"}`
	req := withUser(httptest.NewRequest(http.MethodPatch, "/api/ingredients/abc", bytes.NewBufferString(body)), &model.User{ID: 1, IsAdmin: true})
	req = withIDParam(req, "abc")
	w := httptest.NewRecorder()
	h.UpdateIngredient(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if called {
		t.Error("UpdateIngredient should not be called for invalid id")
	}
}

func TestReferenceHandler_DeleteIngredient_NotFound(t *testing.T) {
	svc := &mockReferenceService{
		deleteIngredientFn: func(ctx context.Context, actor *model.User, id int64) error {
			return model.NewIngredientNotFoundError(id)
		},
	}
	h := NewReferenceHandler(svc)

	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/ingredients/404", nil), &model.User{ID: 1, IsAdmin: true})
	req = withIDParam(req, "404")
	w := httptest.NewRecorder()
	h.DeleteIngredient(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

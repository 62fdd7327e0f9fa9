package recipe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/cookbook/internal/model"
)

// withRecipe は指定レシピを返すfindByIDFnをフィクスチャに設定する。
func (f *serviceFixture) withRecipe(r *model.Recipe) *serviceFixture {
	f.recipeRepo.findByIDFn = func(ctx context.Context, id int64) (*model.Recipe, error) {
		if r != nil && r.ID == id {
			return r, nil
		}
		return nil, nil
	}
	return f
}

// TestService_AddMark はお気に入り追加が短縮表現を返すことを検証する。
func TestService_AddMark(t *testing.T) {
	f := newServiceFixture().withRecipe(&model.Recipe{ID: 1, Name: "カレー", ImageURL: "http://localhost:8080/media/a.png", CookingTime: 30})

	var createdUserID, createdRecipeID int64
	f.favoriteRepo.createFn = func(ctx context.Context, userID, recipeID int64) error {
		createdUserID = userID
		createdRecipeID = recipeID
		return nil
	}

	svc := f.build()
	view, err := svc.AddMark(context.Background(), 3, 1, model.MarkFavorite)
	if err != nil {
		t.Fatalf("AddMark returned error: %v", err)
	}
	if view.ID != 1 || view.Name != "カレー" || view.CookingTime != 30 {
		t.Errorf("unexpected short view: %+v", view)
	}
	if createdUserID != 3 || createdRecipeID != 1 {
		t.Errorf("expected pair (3, 1), got (%d, %d)", createdUserID, createdRecipeID)
	}
}

// TestService_AddMark_DispatchesByKind はマーク種別ごとに対応する
// リポジトリが選ばれることを検証する。
func TestService_AddMark_DispatchesByKind(t *testing.T) {
	f := newServiceFixture().withRecipe(&model.Recipe{ID: 1, Name: "カレー"})

	favoriteCreated := false
	cartCreated := false
	f.favoriteRepo.createFn = func(ctx context.Context, userID, recipeID int64) error {
		favoriteCreated = true
		return nil
	}
	f.cartRepo.createFn = func(ctx context.Context, userID, recipeID int64) error {
		cartCreated = true
		return nil
	}

	svc := f.build()
	if _, err := svc.AddMark(context.Background(), 3, 1, model.MarkShoppingCart); err != nil {
		t.Fatalf("AddMark returned error: %v", err)
	}
	if favoriteCreated {
		t.Error("expected favorite repo not to be used for shopping cart mark")
	}
	if !cartCreated {
		t.Error("expected shopping cart repo to be used")
	}
}

// TestService_AddMark_AlreadyMarked は追加済みレシピの再追加が
// エラーになることを検証する。
func TestService_AddMark_AlreadyMarked(t *testing.T) {
	f := newServiceFixture().withRecipe(&model.Recipe{ID: 1, Name: "カレー"})
	f.favoriteRepo.existsFn = func(ctx context.Context, userID, recipeID int64) (bool, error) {
		return true, nil
	}
	createCalled := false
	f.favoriteRepo.createFn = func(ctx context.Context, userID, recipeID int64) error {
		createCalled = true
		return nil
	}

	svc := f.build()
	_, err := svc.AddMark(context.Background(), 3, 1, model.MarkFavorite)
	assertAPIErrorCode(t, err, model.ErrCodeAlreadyMarked)
	if createCalled {
		t.Error("expected repository Create not to be called")
	}
}

// TestService_AddMark_RecipeNotFound は存在しないレシピへの追加が
// エラーになることを検証する。
func TestService_AddMark_RecipeNotFound(t *testing.T) {
	f := newServiceFixture()
	svc := f.build()

	_, err := svc.AddMark(context.Background(), 3, 999, model.MarkFavorite)
	assertAPIErrorCode(t, err, model.ErrCodeRecipeNotFound)
}

// TestService_RemoveMark は追加済みマークの削除が成功することを検証する。
func TestService_RemoveMark(t *testing.T) {
	f := newServiceFixture().withRecipe(&model.Recipe{ID: 1, Name: "カレー"})
	deleted := false
	f.cartRepo.deleteFn = func(ctx context.Context, userID, recipeID int64) (bool, error) {
		deleted = true
		return true, nil
	}

	svc := f.build()
	if err := svc.RemoveMark(context.Background(), 3, 1, model.MarkShoppingCart); err != nil {
		t.Fatalf("RemoveMark returned error: %v", err)
	}
	if !deleted {
		t.Error("expected repository Delete to be called")
	}
}

// TestService_RemoveMark_NotMarked は未追加レシピの削除が
// レシピ名つきのエラーになることを検証する。
func TestService_RemoveMark_NotMarked(t *testing.T) {
	f := newServiceFixture().withRecipe(&model.Recipe{ID: 1, Name: "肉じゃが"})

	svc := f.build()
	err := svc.RemoveMark(context.Background(), 3, 1, model.MarkFavorite)
	assertAPIErrorCode(t, err, model.ErrCodeNotMarked)

	var apiErr *model.APIError
	errors.As(err, &apiErr)
	if !strings.Contains(apiErr.Message, "肉じゃが") {
		t.Errorf("expected message to contain recipe name, got %q", apiErr.Message)
	}
}

// TestService_RemoveMark_RecipeNotFound は存在しないレシピからの削除が
// エラーになることを検証する。
func TestService_RemoveMark_RecipeNotFound(t *testing.T) {
	f := newServiceFixture()
	svc := f.build()

	err := svc.RemoveMark(context.Background(), 3, 999, model.MarkShoppingCart)
	assertAPIErrorCode(t, err, model.ErrCodeRecipeNotFound)
}

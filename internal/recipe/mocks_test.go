package recipe

import (
	"context"

	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/repository"
	"github.com/hitoshi/cookbook/internal/storage"
)

// --- モック ---

type mockRecipeRepo struct {
	findByIDFn        func(ctx context.Context, id int64) (*model.Recipe, error)
	listFn            func(ctx context.Context, filter repository.RecipeFilter, limit, offset int) ([]*model.Recipe, error)
	countFn           func(ctx context.Context, filter repository.RecipeFilter) (int, error)
	createFn          func(ctx context.Context, recipe *model.Recipe, tagIDs []int64, ingredients []model.RecipeIngredient) error
	updateFn          func(ctx context.Context, recipe *model.Recipe, tagIDs []int64, replaceTags bool, ingredients []model.RecipeIngredient, replaceIngredients bool) error
	deleteFn          func(ctx context.Context, id int64) error
	listIngredientsFn func(ctx context.Context, recipeID int64) ([]model.IngredientInRecipe, error)
}

func (m *mockRecipeRepo) FindByID(ctx context.Context, id int64) (*model.Recipe, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockRecipeRepo) List(ctx context.Context, filter repository.RecipeFilter, limit, offset int) ([]*model.Recipe, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter, limit, offset)
	}
	return nil, nil
}
func (m *mockRecipeRepo) Count(ctx context.Context, filter repository.RecipeFilter) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, filter)
	}
	return 0, nil
}
func (m *mockRecipeRepo) ListByAuthorID(ctx context.Context, authorID int64, limit int) ([]*model.Recipe, error) {
	return nil, nil
}
func (m *mockRecipeRepo) CountByAuthorID(ctx context.Context, authorID int64) (int, error) {
	return 0, nil
}
func (m *mockRecipeRepo) Create(ctx context.Context, recipe *model.Recipe, tagIDs []int64, ingredients []model.RecipeIngredient) error {
	if m.createFn != nil {
		return m.createFn(ctx, recipe, tagIDs, ingredients)
	}
	recipe.ID = 1
	return nil
}
func (m *mockRecipeRepo) Update(ctx context.Context, recipe *model.Recipe, tagIDs []int64, replaceTags bool, ingredients []model.RecipeIngredient, replaceIngredients bool) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, recipe, tagIDs, replaceTags, ingredients, replaceIngredients)
	}
	return nil
}
func (m *mockRecipeRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
func (m *mockRecipeRepo) ListIngredients(ctx context.Context, recipeID int64) ([]model.IngredientInRecipe, error) {
	if m.listIngredientsFn != nil {
		return m.listIngredientsFn(ctx, recipeID)
	}
	return nil, nil
}

type mockTagRepo struct {
	findByIDsFn      func(ctx context.Context, ids []int64) ([]*model.Tag, error)
	listByRecipeIDFn func(ctx context.Context, recipeID int64) ([]*model.Tag, error)
}

func (m *mockTagRepo) List(ctx context.Context) ([]*model.Tag, error) { return nil, nil }
func (m *mockTagRepo) FindByID(ctx context.Context, id int64) (*model.Tag, error) {
	return nil, nil
}
func (m *mockTagRepo) FindByIDs(ctx context.Context, ids []int64) ([]*model.Tag, error) {
	if m.findByIDsFn != nil {
		return m.findByIDsFn(ctx, ids)
	}
	tags := make([]*model.Tag, len(ids))
	for i, id := range ids {
		tags[i] = &model.Tag{ID: id}
	}
	return tags, nil
}
func (m *mockTagRepo) FindBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	return nil, nil
}
func (m *mockTagRepo) ListByRecipeID(ctx context.Context, recipeID int64) ([]*model.Tag, error) {
	if m.listByRecipeIDFn != nil {
		return m.listByRecipeIDFn(ctx, recipeID)
	}
	return nil, nil
}
func (m *mockTagRepo) Create(ctx context.Context, tag *model.Tag) error { return nil }
func (m *mockTagRepo) Update(ctx context.Context, tag *model.Tag) error { return nil }
func (m *mockTagRepo) Delete(ctx context.Context, id int64) error       { return nil }

type mockIngredientRepo struct {
	findByIDsFn func(ctx context.Context, ids []int64) ([]*model.Ingredient, error)
}

func (m *mockIngredientRepo) List(ctx context.Context, namePrefix string) ([]*model.Ingredient, error) {
	return nil, nil
}
func (m *mockIngredientRepo) FindByID(ctx context.Context, id int64) (*model.Ingredient, error) {
	return nil, nil
}
func (m *mockIngredientRepo) FindByIDs(ctx context.Context, ids []int64) ([]*model.Ingredient, error) {
	return m.findByIDsFn(ctx, ids)
}
func (m *mockIngredientRepo) FindByNameAndUnit(ctx context.Context, name, unit string) (*model.Ingredient, error) {
	return nil, nil
}
func (m *mockIngredientRepo) Create(ctx context.Context, ingredient *model.Ingredient) error {
	return nil
}
func (m *mockIngredientRepo) Update(ctx context.Context, ingredient *model.Ingredient) error {
	return nil
}
func (m *mockIngredientRepo) Delete(ctx context.Context, id int64) error { return nil }

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.User{ID: id, Username: "author"}, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) Count(ctx context.Context) (int, error)             { return 0, nil }
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return nil
}
func (m *mockUserRepo) DeleteByID(ctx context.Context, id int64) error { return nil }

type mockSubRepo struct {
	existsFn func(ctx context.Context, userID, authorID int64) (bool, error)
}

func (m *mockSubRepo) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID, authorID)
	}
	return false, nil
}
func (m *mockSubRepo) Create(ctx context.Context, sub *model.Subscription) error { return nil }
func (m *mockSubRepo) DeleteByUserAndAuthor(ctx context.Context, userID, authorID int64) (bool, error) {
	return false, nil
}
func (m *mockSubRepo) ListAuthorsByUserID(ctx context.Context, userID int64, limit, offset int) ([]*model.User, error) {
	return nil, nil
}
func (m *mockSubRepo) CountByUserID(ctx context.Context, userID int64) (int, error) {
	return 0, nil
}

type mockMarkRepo struct {
	existsFn func(ctx context.Context, userID, recipeID int64) (bool, error)
	createFn func(ctx context.Context, userID, recipeID int64) error
	deleteFn func(ctx context.Context, userID, recipeID int64) (bool, error)
}

func (m *mockMarkRepo) Exists(ctx context.Context, userID, recipeID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID, recipeID)
	}
	return false, nil
}
func (m *mockMarkRepo) Create(ctx context.Context, userID, recipeID int64) error {
	if m.createFn != nil {
		return m.createFn(ctx, userID, recipeID)
	}
	return nil
}
func (m *mockMarkRepo) Delete(ctx context.Context, userID, recipeID int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, recipeID)
	}
	return false, nil
}

type mockShoppingListRepo struct {
	sumByUserIDFn func(ctx context.Context, userID int64) ([]repository.ShoppingListRow, error)
}

func (m *mockShoppingListRepo) SumByUserID(ctx context.Context, userID int64) ([]repository.ShoppingListRow, error) {
	return m.sumByUserIDFn(ctx, userID)
}

type fakeImageStore struct {
	saveFn func(ctx context.Context, img *storage.Image) (string, error)
	saved  int
}

func (f *fakeImageStore) Save(ctx context.Context, img *storage.Image) (string, error) {
	f.saved++
	if f.saveFn != nil {
		return f.saveFn(ctx, img)
	}
	return "http://localhost:8080/media/test.png", nil
}

package handler

import (
	"time"

	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/recipe"
	"github.com/hitoshi/cookbook/internal/subscription"
	"github.com/hitoshi/cookbook/internal/user"
)

// userResponse はユーザープロフィールのAPIレスポンス。
type userResponse struct {
	Email        string `json:"email"`
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func toUserResponse(p *user.Profile) userResponse {
	return userResponse{
		Email:        p.Email,
		ID:           p.ID,
		Username:     p.Username,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		IsSubscribed: p.IsSubscribed,
	}
}

// tagResponse はタグのAPIレスポンス。
type tagResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

func toTagResponse(t *model.Tag) tagResponse {
	return tagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func toTagResponses(tags []*model.Tag) []tagResponse {
	out := make([]tagResponse, len(tags))
	for i, t := range tags {
		out[i] = toTagResponse(t)
	}
	return out
}

// ingredientResponse は材料参照データのAPIレスポンス。
type ingredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func toIngredientResponse(i *model.Ingredient) ingredientResponse {
	return ingredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

// recipeIngredientResponse はレシピ内の材料（数量付き）のAPIレスポンス。
type recipeIngredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// recipeResponse はレシピのAPIレスポンス。
// 一覧・詳細・作成・更新のすべてで同じ形を返す。
type recipeResponse struct {
	ID               int64                      `json:"id"`
	Tags             []tagResponse              `json:"tags"`
	Author           userResponse               `json:"author"`
	Ingredients      []recipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	PubDate          time.Time                  `json:"pub_date"`
}

func toRecipeResponse(v *recipe.View) recipeResponse {
	ingredients := make([]recipeIngredientResponse, len(v.Ingredients))
	for i, ing := range v.Ingredients {
		ingredients[i] = recipeIngredientResponse{
			ID:              ing.IngredientID,
			Name:            ing.Name,
			MeasurementUnit: ing.MeasurementUnit,
			Amount:          ing.Amount,
		}
	}
	return recipeResponse{
		ID:               v.ID,
		Tags:             toTagResponses(v.Tags),
		Author:           toUserResponse(v.Author),
		Ingredients:      ingredients,
		IsFavorited:      v.IsFavorited,
		IsInShoppingCart: v.IsInShoppingCart,
		Name:             v.Name,
		Image:            v.ImageURL,
		Text:             v.Text,
		CookingTime:      v.CookingTime,
		PubDate:          v.PubDate,
	}
}

// shortRecipeResponse はレシピの短縮表現のAPIレスポンス。
// お気に入り・買い物リスト追加の応答とフォロー一覧のプレビューに使う。
type shortRecipeResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func toShortRecipeResponse(v *recipe.ShortView) shortRecipeResponse {
	return shortRecipeResponse{
		ID:          v.ID,
		Name:        v.Name,
		Image:       v.ImageURL,
		CookingTime: v.CookingTime,
	}
}

// authorResponse はフォロー中の投稿者のAPIレスポンス。
// プロフィールに加えて最新レシピのプレビューとレシピ総数を含む。
type authorResponse struct {
	userResponse
	Recipes      []shortRecipeResponse `json:"recipes"`
	RecipesCount int                   `json:"recipes_count"`
}

func toAuthorResponse(v *subscription.AuthorView) authorResponse {
	recipes := make([]shortRecipeResponse, len(v.Recipes))
	for i, r := range v.Recipes {
		recipes[i] = toShortRecipeResponse(r)
	}
	return authorResponse{
		userResponse: toUserResponse(v.Profile),
		Recipes:      recipes,
		RecipesCount: v.RecipesCount,
	}
}

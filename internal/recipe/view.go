// Package recipe はレシピ管理のドメインロジックを提供する。
package recipe

import (
	"time"

	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/user"
)

// View はレシピの読み取り表現。
// 一覧・詳細・作成・更新のすべての応答がこの形に揃う。
// IsFavoritedとIsInShoppingCartは閲覧者にスコープされ、
// 匿名閲覧では常にfalseになる。
type View struct {
	ID               int64
	Author           *user.Profile
	Tags             []*model.Tag
	Ingredients      []model.IngredientInRecipe
	IsFavorited      bool
	IsInShoppingCart bool
	Name             string
	ImageURL         string
	Text             string
	CookingTime      int
	PubDate          time.Time
}

// ShortView はレシピの短縮表現。
// お気に入り・買い物リスト追加の応答とフォロー一覧のプレビューに使用する。
type ShortView struct {
	ID          int64
	Name        string
	ImageURL    string
	CookingTime int
}

// shortViewOf はレシピから短縮表現を組み立てる。
func shortViewOf(r *model.Recipe) *ShortView {
	return &ShortView{
		ID:          r.ID,
		Name:        r.Name,
		ImageURL:    r.ImageURL,
		CookingTime: r.CookingTime,
	}
}

// ShortViews は複数レシピの短縮表現を組み立てる。
func ShortViews(recipes []*model.Recipe) []*ShortView {
	views := make([]*ShortView, len(recipes))
	for i, r := range recipes {
		views[i] = shortViewOf(r)
	}
	return views
}

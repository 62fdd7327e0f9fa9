// Package model はドメインモデルを定義する。
package model

import "time"

// Recipe はユーザーが投稿したレシピを表す。
// 一覧は公開日時の降順で返す。
type Recipe struct {
	ID          int64
	AuthorID    int64
	Name        string
	ImageURL    string
	Text        string
	CookingTime int
	PubDate     time.Time
}

// RecipeIngredient はレシピと材料の結合行を表す。
// (recipe, ingredient) の組は一意で、数量を保持する。
type RecipeIngredient struct {
	ID           int64
	RecipeID     int64
	IngredientID int64
	Amount       int
}

// IngredientInRecipe は結合を解決した材料行を表す。
// レシピ詳細表示と買い物リスト集計で使用する。
type IngredientInRecipe struct {
	IngredientID    int64
	Name            string
	MeasurementUnit string
	Amount          int
}

// MarkKind はレシピに対するユーザーのマーク種別を表す。
// お気に入りと買い物リストは同一のトグル経路を共有する。
type MarkKind string

const (
	// MarkFavorite はお気に入りマーク。
	MarkFavorite MarkKind = "favorite"
	// MarkShoppingCart は買い物リストマーク。
	MarkShoppingCart MarkKind = "shopping_cart"
)

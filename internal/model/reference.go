// Package model はドメインモデルを定義する。
package model

// Ingredient は材料の参照データを表す。名前と計量単位を保持する。
type Ingredient struct {
	ID              int64
	Name            string
	MeasurementUnit string
}

// Tag はレシピ分類用のタグを表す。name / color / slug はそれぞれ一意。
type Tag struct {
	ID    int64
	Name  string
	Color string
	Slug  string
}

// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/cookbook/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List はID昇順のユーザー一覧をページ指定で返す。
	List(ctx context.Context, limit, offset int) ([]*model.User, error)

	// Count は全ユーザー数を返す。
	Count(ctx context.Context) (int, error)

	// Create はユーザーを作成し、採番されたIDをフィールドに設定する。
	// email/usernameの一意制約違反はAPIErrorに変換して返す。
	Create(ctx context.Context, user *model.User) error

	// UpdatePassword はパスワードハッシュを更新する。
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 所有レシピと全結合行（favorites, shopping_carts, subscriptions,
	// auth_tokens）はCASCADE削除される。
	DeleteByID(ctx context.Context, id int64) error
}

// TokenRepository は認証トークンの永続化インターフェース。
type TokenRepository interface {
	// Create はトークンを作成する。
	Create(ctx context.Context, token *model.AuthToken) error
	// FindByKey は指定キーのトークンを取得する。見つからない場合はnilを返す。
	FindByKey(ctx context.Context, key string) (*model.AuthToken, error)
	// DeleteByKey は指定キーのトークンを削除する。
	DeleteByKey(ctx context.Context, key string) error
	// DeleteByUserID は指定ユーザーの全トークンを削除する。
	DeleteByUserID(ctx context.Context, userID int64) error
}

// IngredientRepository は材料参照データの永続化インターフェース。
type IngredientRepository interface {
	// List は材料一覧をID昇順で返す。
	// namePrefixが非空の場合は名前の前方一致で絞り込む。
	List(ctx context.Context, namePrefix string) ([]*model.Ingredient, error)

	// FindByID は指定IDの材料を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Ingredient, error)

	// FindByIDs は指定ID群の材料を返す。存在しないIDは結果に含まれない。
	FindByIDs(ctx context.Context, ids []int64) ([]*model.Ingredient, error)

	// FindByNameAndUnit は名前と計量単位の組で材料を検索する。
	// 見つからない場合はnilを返す（シードの冪等化に使用する）。
	FindByNameAndUnit(ctx context.Context, name, unit string) (*model.Ingredient, error)

	// Create は材料を作成し、採番されたIDをフィールドに設定する。
	Create(ctx context.Context, ingredient *model.Ingredient) error

	// Update は材料を更新する。
	Update(ctx context.Context, ingredient *model.Ingredient) error

	// Delete は指定IDの材料を削除する。
	Delete(ctx context.Context, id int64) error
}

// TagRepository はタグ参照データの永続化インターフェース。
type TagRepository interface {
	// List はタグ一覧を名前昇順で返す。
	List(ctx context.Context) ([]*model.Tag, error)

	// FindByID は指定IDのタグを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Tag, error)

	// FindByIDs は指定ID群のタグを返す。存在しないIDは結果に含まれない。
	FindByIDs(ctx context.Context, ids []int64) ([]*model.Tag, error)

	// FindBySlug はslugでタグを検索する。見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.Tag, error)

	// ListByRecipeID は指定レシピに付与されたタグを返す。
	ListByRecipeID(ctx context.Context, recipeID int64) ([]*model.Tag, error)

	// Create はタグを作成し、採番されたIDをフィールドに設定する。
	Create(ctx context.Context, tag *model.Tag) error

	// Update はタグを更新する。
	Update(ctx context.Context, tag *model.Tag) error

	// Delete は指定IDのタグを削除する。
	Delete(ctx context.Context, id int64) error
}

// RecipeFilter はレシピ一覧の絞り込み条件を表す。
// FavoritedByとInCartOfは閲覧者にスコープされた存在条件。
type RecipeFilter struct {
	AuthorID    *int64
	TagSlugs    []string
	FavoritedBy *int64
	InCartOf    *int64
}

// RecipeRepository はレシピデータの永続化インターフェース。
// 複数行に及ぶ書き込み（タグ集合・材料集合の置換）は
// 単一トランザクションで行う。
type RecipeRepository interface {
	// FindByID は指定IDのレシピを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Recipe, error)

	// List はフィルタ適用済みのレシピ一覧を公開日時降順で返す。
	List(ctx context.Context, filter RecipeFilter, limit, offset int) ([]*model.Recipe, error)

	// Count はフィルタ適用済みのレシピ数を返す。
	Count(ctx context.Context, filter RecipeFilter) (int, error)

	// ListByAuthorID は指定投稿者のレシピを公開日時降順で最大limit件返す。
	ListByAuthorID(ctx context.Context, authorID int64, limit int) ([]*model.Recipe, error)

	// CountByAuthorID は指定投稿者のレシピ総数を返す。
	CountByAuthorID(ctx context.Context, authorID int64) (int, error)

	// Create はレシピ本体・タグ関連・材料行を同一トランザクションで作成する。
	// 採番されたIDをrecipe.IDに設定する。
	Create(ctx context.Context, recipe *model.Recipe, tagIDs []int64, ingredients []model.RecipeIngredient) error

	// Update はレシピのスカラー列を更新する。
	// replaceTagsがtrueの場合はタグ関連を全置換し、
	// replaceIngredientsがtrueの場合は材料行を全削除して再挿入する。
	// すべて同一トランザクションで行う。
	Update(ctx context.Context, recipe *model.Recipe, tagIDs []int64, replaceTags bool, ingredients []model.RecipeIngredient, replaceIngredients bool) error

	// Delete は指定IDのレシピを削除する。結合行はCASCADE削除される。
	Delete(ctx context.Context, id int64) error

	// ListIngredients は指定レシピの材料を名前・単位を解決して返す。
	ListIngredients(ctx context.Context, recipeID int64) ([]model.IngredientInRecipe, error)
}

// SubscriptionRepository はフォロー関係の永続化インターフェース。
type SubscriptionRepository interface {
	// Exists は(user, author)のフォロー関係が存在するかを返す。
	Exists(ctx context.Context, userID, authorID int64) (bool, error)

	// Create はフォロー関係を作成する。
	// 一意制約違反はAPIError（フォロー重複）に変換して返す。
	Create(ctx context.Context, sub *model.Subscription) error

	// DeleteByUserAndAuthor は(user, author)のフォロー関係を削除する。
	// 削除された場合はtrueを返す。
	DeleteByUserAndAuthor(ctx context.Context, userID, authorID int64) (bool, error)

	// ListAuthorsByUserID は指定ユーザーがフォロー中の投稿者を
	// フォロー日時昇順でページ指定で返す。
	ListAuthorsByUserID(ctx context.Context, userID int64, limit, offset int) ([]*model.User, error)

	// CountByUserID は指定ユーザーのフォロー数を返す。
	CountByUserID(ctx context.Context, userID int64) (int, error)
}

// RecipeMarkRepository はお気に入り/買い物リストの(user, recipe)対の
// 永続化インターフェース。2つのマーク種別で同一実装を共有する。
type RecipeMarkRepository interface {
	// Exists は(user, recipe)の対が存在するかを返す。
	Exists(ctx context.Context, userID, recipeID int64) (bool, error)

	// Create は(user, recipe)の対を作成する。
	// 一意制約違反はAPIError（マーク重複）に変換して返す。
	Create(ctx context.Context, userID, recipeID int64) error

	// Delete は(user, recipe)の対を削除する。削除された場合はtrueを返す。
	Delete(ctx context.Context, userID, recipeID int64) (bool, error)
}

// ShoppingListRow は買い物リストの集計行を表す。
// (材料名, 計量単位)ごとに数量を合算した結果。
type ShoppingListRow struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// ShoppingListRepository は買い物リストの集計インターフェース。
type ShoppingListRepository interface {
	// SumByUserID は指定ユーザーの買い物リスト内の全レシピの材料を
	// (名前, 単位)で集約し、数量を合算して名前昇順で返す。
	SumByUserID(ctx context.Context, userID int64) ([]ShoppingListRow, error)
}

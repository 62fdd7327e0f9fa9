// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, recipe, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodePermissionDenied     = "PERMISSION_DENIED"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeRecipeNotFound       = "RECIPE_NOT_FOUND"
	ErrCodeTagNotFound          = "TAG_NOT_FOUND"
	ErrCodeIngredientNotFound   = "INGREDIENT_NOT_FOUND"
	ErrCodeSubscriptionNotFound = "SUBSCRIPTION_NOT_FOUND"
	ErrCodeSelfSubscribe        = "SELF_SUBSCRIBE"
	ErrCodeDuplicateSubscribe   = "DUPLICATE_SUBSCRIPTION"
	ErrCodeDuplicateIngredient  = "DUPLICATE_INGREDIENT"
	ErrCodeInvalidCookingTime   = "INVALID_COOKING_TIME"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeAlreadyMarked        = "ALREADY_MARKED"
	ErrCodeNotMarked            = "NOT_MARKED"
	ErrCodeDuplicateEmail       = "DUPLICATE_EMAIL"
	ErrCodeDuplicateUsername    = "DUPLICATE_USERNAME"
	ErrCodeInvalidPassword      = "INVALID_PASSWORD"
	ErrCodeInvalidImage         = "INVALID_IMAGE"
	ErrCodeDuplicateTag         = "DUPLICATE_TAG"
	ErrCodeDuplicateUnit        = "DUPLICATE_INGREDIENT_UNIT"
	ErrCodeInvalidReference     = "INVALID_REFERENCE"
)

// markKindLabel はマーク種別の表示名を返す。
func markKindLabel(kind MarkKind) string {
	if kind == MarkShoppingCart {
		return "買い物リスト"
	}
	return "お気に入り"
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "トークンを添えて再度リクエストしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewPermissionDeniedError は権限不足エラーを生成する。
func NewPermissionDeniedError() *APIError {
	return &APIError{
		Code:     ErrCodePermissionDenied,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "レシピの作者または管理者のみが実行できます。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(userID int64) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %d", userID),
		Category: "validation",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewRecipeNotFoundError はレシピ未検出エラーを生成する。
func NewRecipeNotFoundError(recipeID int64) *APIError {
	return &APIError{
		Code:     ErrCodeRecipeNotFound,
		Message:  fmt.Sprintf("指定されたレシピが見つかりません: %d", recipeID),
		Category: "recipe",
		Action:   "レシピIDを確認してください。",
	}
}

// NewTagNotFoundError はタグ未検出エラーを生成する。
func NewTagNotFoundError(tagID int64) *APIError {
	return &APIError{
		Code:     ErrCodeTagNotFound,
		Message:  fmt.Sprintf("指定されたタグが見つかりません: %d", tagID),
		Category: "validation",
		Action:   "タグIDを確認してください。",
	}
}

// NewIngredientNotFoundError は材料未検出エラーを生成する。
func NewIngredientNotFoundError(ingredientID int64) *APIError {
	return &APIError{
		Code:     ErrCodeIngredientNotFound,
		Message:  fmt.Sprintf("指定された材料が見つかりません: %d", ingredientID),
		Category: "validation",
		Action:   "材料IDを確認してください。",
	}
}

// NewSubscriptionNotFoundError はフォロー関係未検出エラーを生成する。
func NewSubscriptionNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeSubscriptionNotFound,
		Message:  "このユーザーをフォローしていません。",
		Category: "validation",
		Action:   "フォロー中のユーザーに対してのみ解除できます。",
	}
}

// NewSelfSubscribeError は自己フォローエラーを生成する。
func NewSelfSubscribeError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfSubscribe,
		Message:  "自分自身をフォローすることはできません。",
		Category: "validation",
		Action:   "他のユーザーを指定してください。",
	}
}

// NewDuplicateSubscribeError はフォロー重複エラーを生成する。
func NewDuplicateSubscribeError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateSubscribe,
		Message:  "このユーザーは既にフォローしています。",
		Category: "validation",
		Action:   "フォロー一覧を確認してください。",
	}
}

// NewDuplicateIngredientError は材料重複エラーを生成する。
// 重複した材料は解決済みの名前で示す。
func NewDuplicateIngredientError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateIngredient,
		Message:  fmt.Sprintf("材料「%s」が複数回指定されています。", name),
		Category: "validation",
		Action:   "同じ材料は1回だけ指定し、数量をまとめてください。",
	}
}

// NewInvalidCookingTimeError は調理時間の境界違反エラーを生成する。
func NewInvalidCookingTimeError(value, min, max int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCookingTime,
		Message:  fmt.Sprintf("調理時間が範囲外です: %d（%d〜%d分で指定してください）", value, min, max),
		Category: "validation",
		Action:   fmt.Sprintf("調理時間は%d分から%d分の範囲で指定してください。", min, max),
	}
}

// NewInvalidAmountError は材料数量の境界違反エラーを生成する。
func NewInvalidAmountError(ingredientID int64, value, min, max int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAmount,
		Message:  fmt.Sprintf("材料 %d の数量が範囲外です: %d（%d〜%dで指定してください）", ingredientID, value, min, max),
		Category: "validation",
		Action:   fmt.Sprintf("数量は%dから%dの範囲で指定してください。", min, max),
	}
}

// NewAlreadyMarkedError はお気に入り/買い物リストへの重複追加エラーを生成する。
func NewAlreadyMarkedError(kind MarkKind) *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyMarked,
		Message:  fmt.Sprintf("このレシピは既に%sに追加されています。", markKindLabel(kind)),
		Category: "recipe",
		Action:   fmt.Sprintf("%sを確認してください。", markKindLabel(kind)),
	}
}

// NewNotMarkedError はお気に入り/買い物リストに未追加のレシピを
// 削除しようとした場合のエラーを生成する。
func NewNotMarkedError(kind MarkKind, recipeName string) *APIError {
	return &APIError{
		Code:     ErrCodeNotMarked,
		Message:  fmt.Sprintf("レシピ「%s」は%sに追加されていません。", recipeName, markKindLabel(kind)),
		Category: "recipe",
		Action:   fmt.Sprintf("%sに追加済みのレシピのみ削除できます。", markKindLabel(kind)),
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewDuplicateUsernameError はユーザー名重複エラーを生成する。
func NewDuplicateUsernameError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUsername,
		Message:  "このユーザー名は既に使用されています。",
		Category: "validation",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewInvalidPasswordError は現在のパスワード不一致エラーを生成する。
func NewInvalidPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPassword,
		Message:  "現在のパスワードが正しくありません。",
		Category: "auth",
		Action:   "現在のパスワードを確認して再度お試しください。",
	}
}

// NewDuplicateTagError はタグのslug重複エラーを生成する。
func NewDuplicateTagError(slug string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateTag,
		Message:  fmt.Sprintf("slug「%s」のタグは既に存在します。", slug),
		Category: "validation",
		Action:   "別のslugを指定してください。",
	}
}

// NewDuplicateUnitError は材料の名前・計量単位の組の重複エラーを生成する。
func NewDuplicateUnitError(name, unit string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUnit,
		Message:  fmt.Sprintf("材料「%s（%s）」は既に登録されています。", name, unit),
		Category: "validation",
		Action:   "既存の材料を利用するか、別の計量単位を指定してください。",
	}
}

// NewInvalidReferenceError は参照データの検証エラーを生成する。
func NewInvalidReferenceError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidReference,
		Message:  fmt.Sprintf("参照データの内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewInvalidImageError は画像デコード失敗エラーを生成する。
func NewInvalidImageError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImage,
		Message:  fmt.Sprintf("画像データを読み取れません: %s", reason),
		Category: "validation",
		Action:   "base64エンコードされたdata URL形式（data:image/...;base64,...）で送信してください。",
	}
}

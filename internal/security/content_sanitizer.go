// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はユーザー投稿のテキスト（レシピの作り方、名前など）を
// サニタイズし、XSS攻撃などのセキュリティリスクから閲覧者を保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグのみを通過させる。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はユーザー投稿コンテンツのサニタイズ機能の
// インターフェースを定義する。レシピの保存前に使用される。
type ContentSanitizerService interface {
	// SanitizeText はプレーンテキストフィールド（レシピ名など）から
	// 全てのHTMLタグを除去する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string

	// SanitizeRichText はレシピの作り方のような整形テキストから
	// 危険なタグを除去する。許可タグ（p, br, ul, ol, li, strong, em）のみを
	// 通過させ、script, iframe, styleタグおよびon*イベント属性を除去する。
	SanitizeRichText(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	strict *bluemonday.Policy
	rich   *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 初期化時に2つのポリシーを構築する:
//   - strict: 全タグ除去（レシピ名・ユーザー名などの単一行フィールド向け）
//   - rich: p, br, ul, ol, li, strong, em のみ許可（作り方本文向け）
func NewContentSanitizer() *contentSanitizer {
	rich := bluemonday.NewPolicy()
	rich.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em",
	)

	return &contentSanitizer{
		strict: bluemonday.StrictPolicy(),
		rich:   rich,
	}
}

// SanitizeText は全てのHTMLタグを除去したテキストを返す。
func (s *contentSanitizer) SanitizeText(raw string) string {
	return s.strict.Sanitize(raw)
}

// SanitizeRichText は許可タグのみを残したテキストを返す。
func (s *contentSanitizer) SanitizeRichText(raw string) string {
	return s.rich.Sanitize(raw)
}

// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュを保持し、APIレスポンスには含めない。
type User struct {
	ID           int64
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthToken はトークン認証の発行済みトークンを表す。
// Keyをそのまま Authorization: Token <key> ヘッダで提示する。
type AuthToken struct {
	Key       string
	UserID    int64
	CreatedAt time.Time
}

// Subscription はユーザー（フォロワー）と投稿者のフォロー関係を表す。
// (user, author) の組は一意。自己フォローはバリデーション層で拒否する。
type Subscription struct {
	ID        int64
	UserID    int64
	AuthorID  int64
	CreatedAt time.Time
}

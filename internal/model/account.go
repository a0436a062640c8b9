// Package model はドメインモデルを定義する。
package model

import "time"

// Account はサービス利用アカウントを表す。
// Usernameはprofilesテーブルから読み取り時に結合されるキャッシュ値。
type Account struct {
	ID                string
	Email             string
	PasswordHash      string
	Username          string
	EmailConfirmed    bool
	ConfirmationToken *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Profile はアカウントの公開プロフィール（一意なユーザー名）を表す。
// ユーザー名は小文字・空白なしに正規化された状態で保存される。
type Profile struct {
	ID        string
	AccountID string
	Username  string
	CreatedAt time.Time
}

// AuthSession はアカウントのログインセッションを表す。
// ドメインのSession（製品使用ログ）とは別物。
type AuthSession struct {
	ID        string
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/munchboxd/munchboxd/internal/model"
)

// AccountRepository はアカウントデータの永続化インターフェース。
type AccountRepository interface {
	// FindByID は指定IDのアカウントをプロフィールのユーザー名付きで取得する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Account, error)

	// FindByEmail は指定メールアドレスのアカウントをユーザー名付きで取得する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Account, error)

	// CreateWithProfile はアカウントとプロフィールを同一トランザクションで作成する。
	// メールアドレス・ユーザー名の一意制約違反はErrEmailTaken / ErrUsernameTakenを返す。
	CreateWithProfile(ctx context.Context, account *model.Account, profile *model.Profile) error

	// ConfirmByToken は確認トークンに一致するアカウントのメール確認を完了する。
	// トークンに一致する行がない場合はfalseを返す。
	ConfirmByToken(ctx context.Context, token string) (bool, error)
}

// ProfileRepository はプロフィールデータの永続化インターフェース。
type ProfileRepository interface {
	// UsernameTaken は指定ユーザー名がすでに使用されているかを返す。
	// サインアップ前の事前チェック用の点検索（権威はDBの一意制約）。
	UsernameTaken(ctx context.Context, username string) (bool, error)
}

// AuthSessionRepository は認証セッションデータの永続化インターフェース。
type AuthSessionRepository interface {
	// Create は認証セッションを作成する。
	Create(ctx context.Context, session *model.AuthSession) error
	// FindByID は指定IDの認証セッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.AuthSession, error)
	// DeleteByID は指定IDの認証セッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByAccountID は指定アカウントの全認証セッションを削除する。
	DeleteByAccountID(ctx context.Context, accountID string) error
}

// SessionRepository は製品使用セッション（ドメインのSession）の永続化インターフェース。
// 作成のみ可能で、更新・削除は提供しない。
type SessionRepository interface {
	// Insert はセッション行を作成する。
	Insert(ctx context.Context, session *model.Session) error
	// CountOrphans はマンチーを持たないセッション行の件数を返す。
	CountOrphans(ctx context.Context) (int, error)
}

// MunchieRepository はマンチーデータの永続化インターフェース。
type MunchieRepository interface {
	// Insert はマンチー行を作成する。session.IDが先に存在している必要がある。
	Insert(ctx context.Context, munchie *model.Munchie) error

	// ListFeed は全マンチーを親セッション・プロフィールと3方向JOINし、
	// 作成日時降順のフィードレコード列として返す。0件の場合は空スライスを返す。
	ListFeed(ctx context.Context) ([]model.FeedRecord, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

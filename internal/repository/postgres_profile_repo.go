package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// UsernameTaken は指定ユーザー名がすでに使用されているかを返す。
// サインアップ前の助言的チェックであり、同時作成の競合までは防げない。
// 最終的な一意性はprofiles.usernameの一意制約が保証する。
func (r *PostgresProfileRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE username = $1)`,
		username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/munchboxd/munchboxd/internal/model"
)

// PostgresAccountRepo はPostgreSQLを使用したアカウントリポジトリ。
type PostgresAccountRepo struct {
	db *sql.DB
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

// FindByID は指定IDのアカウントをプロフィールのユーザー名付きで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	account := &model.Account{}
	err := r.db.QueryRowContext(ctx,
		`SELECT a.id, a.email, a.password_hash, a.email_confirmed, a.confirmation_token,
		        a.created_at, a.updated_at, p.username
		 FROM accounts a
		 JOIN profiles p ON p.account_id = a.id
		 WHERE a.id = $1`,
		id,
	).Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.EmailConfirmed,
		&account.ConfirmationToken, &account.CreatedAt, &account.UpdatedAt, &account.Username,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account by ID: %w", err)
	}

	return account, nil
}

// FindByEmail は指定メールアドレスのアカウントをユーザー名付きで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	account := &model.Account{}
	err := r.db.QueryRowContext(ctx,
		`SELECT a.id, a.email, a.password_hash, a.email_confirmed, a.confirmation_token,
		        a.created_at, a.updated_at, p.username
		 FROM accounts a
		 JOIN profiles p ON p.account_id = a.id
		 WHERE a.email = $1`,
		email,
	).Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.EmailConfirmed,
		&account.ConfirmationToken, &account.CreatedAt, &account.UpdatedAt, &account.Username,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}

	return account, nil
}

// CreateWithProfile はアカウントとプロフィールを同一トランザクションで作成する。
// メールアドレス・ユーザー名の一意制約違反はErrEmailTaken / ErrUsernameTakenを返す。
func (r *PostgresAccountRepo) CreateWithProfile(ctx context.Context, account *model.Account, profile *model.Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// アカウントを作成
	_, err = tx.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, email_confirmed, confirmation_token, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		account.ID, account.Email, account.PasswordHash, account.EmailConfirmed,
		account.ConfirmationToken, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	// プロフィールを作成
	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (id, account_id, username, created_at)
		 VALUES ($1, $2, $3, $4)`,
		profile.ID, profile.AccountID, profile.Username, profile.CreatedAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ConfirmByToken は確認トークンに一致するアカウントのメール確認を完了する。
// トークンに一致する行がない場合はfalseを返す。
func (r *PostgresAccountRepo) ConfirmByToken(ctx context.Context, token string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts
		 SET email_confirmed = TRUE, confirmation_token = NULL, updated_at = now()
		 WHERE confirmation_token = $1`,
		token,
	)
	if err != nil {
		return false, fmt.Errorf("failed to confirm account: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ AccountRepository = (*PostgresAccountRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/munchboxd/munchboxd/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用した製品使用セッションリポジトリ。
// セッション行は作成のみで、この層から更新・削除されることはない。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Insert はセッション行を作成する。
// 任意項目（strain_name, brand）はnilのままNULLとして保存される。
func (r *PostgresSessionRepo) Insert(ctx context.Context, session *model.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, strain_name, product_type, brand, high_rating, account_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		session.ID, session.StrainName, string(session.ProductType), session.Brand,
		session.HighRating, session.AccountID, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// CountOrphans はマンチーを持たないセッション行の件数を返す。
// 第2段階（マンチー挿入）の失敗で残った孤児行の観測用で、削除はしない。
func (r *PostgresSessionRepo) CountOrphans(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions s
		 WHERE NOT EXISTS (SELECT 1 FROM munchies m WHERE m.session_id = s.id)`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orphan sessions: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)

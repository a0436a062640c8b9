package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/munchboxd/munchboxd/internal/model"
)

// PostgresMunchieRepo はPostgreSQLを使用したマンチーリポジトリ。
type PostgresMunchieRepo struct {
	db *sql.DB
}

// NewPostgresMunchieRepo はPostgresMunchieRepoを生成する。
func NewPostgresMunchieRepo(db *sql.DB) *PostgresMunchieRepo {
	return &PostgresMunchieRepo{db: db}
}

// Insert はマンチー行を作成する。
// session_idのFK制約により、親セッションが先に存在している必要がある。
func (r *PostgresMunchieRepo) Insert(ctx context.Context, munchie *model.Munchie) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO munchies (id, session_id, food_name, source_type, rating, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		munchie.ID, munchie.SessionID, munchie.FoodName, string(munchie.SourceType),
		munchie.Rating, munchie.Description, munchie.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert munchie: %w", err)
	}
	return nil
}

// ListFeed は全マンチーをセッション・プロフィールと3方向JOINし、
// 作成日時降順のフィードレコード列として返す。0件の場合は空スライスを返す。
// NULL列はこの境界で明示的な型に変換され、未定義値を上位層に伝播させない。
func (r *PostgresMunchieRepo) ListFeed(ctx context.Context) ([]model.FeedRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT
			m.id, m.session_id, m.food_name, COALESCE(m.source_type, ''),
			COALESCE(m.rating, 0), m.description, m.created_at,
			s.strain_name, COALESCE(s.product_type, ''), s.account_id,
			p.username
		 FROM munchies m
		 JOIN sessions s ON m.session_id = s.id
		 JOIN profiles p ON p.account_id = s.account_id
		 ORDER BY m.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	defer rows.Close()

	records := make([]model.FeedRecord, 0)
	for rows.Next() {
		var rec model.FeedRecord
		var sourceType, productType string
		if err := rows.Scan(
			&rec.MunchieID, &rec.SessionID, &rec.FoodName, &sourceType,
			&rec.Rating, &rec.Description, &rec.CreatedAt,
			&rec.StrainName, &productType, &rec.AccountID,
			&rec.Username,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feed record: %w", err)
		}
		rec.SourceType = model.SourceType(sourceType)
		rec.ProductType = model.ProductType(productType)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feed records: %w", err)
	}
	return records, nil
}

// compile-time interface check
var _ MunchieRepository = (*PostgresMunchieRepo)(nil)

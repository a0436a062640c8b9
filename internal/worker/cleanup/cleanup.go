// Package cleanup は期限切れ認証セッションの自動削除ジョブを提供する。
// 併せて孤児セッション（マンチーを持たないセッション）を集計し、
// メトリクスとして公開する。孤児セッションは削除・補償の対象ではない。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// OrphanCounter は孤児セッションの件数取得を抽象化するインターフェース。
type OrphanCounter interface {
	CountOrphans(ctx context.Context) (int, error)
}

// OrphanGaugeSetter は孤児セッション数をメトリクスとして記録するインターフェース。
type OrphanGaugeSetter interface {
	SetOrphanSessions(count int)
}

// CleanupJob は期限切れ認証セッションの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	db       Executor
	sessions OrphanCounter
	logger   *slog.Logger
	metrics  OrphanGaugeSetter
}

// NewCleanupJob は新しいCleanupJobを生成する。
// metricsはnilでもよい（その場合は孤児セッション数を記録しない）。
func NewCleanupJob(db Executor, sessions OrphanCounter, logger *slog.Logger, metrics OrphanGaugeSetter) *CleanupJob {
	return &CleanupJob{
		db:       db,
		sessions: sessions,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run は期限切れ認証セッションを削除し、孤児セッション数を集計する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	result, err := j.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE expires_at <= now()`)
	if err != nil {
		j.logger.Error("認証セッションクリーンアップの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("認証セッションクリーンアップの実行に失敗: %w", err)
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("削除件数の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}

	// 孤児セッションの集計。マンチーの挿入に失敗したセッションは
	// そのまま残す仕様のため、削除せず件数だけ観測する。
	orphanCount, err := j.sessions.CountOrphans(ctx)
	if err != nil {
		j.logger.Error("孤児セッションの集計に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("孤児セッションの集計に失敗: %w", err)
	}

	if j.metrics != nil {
		j.metrics.SetOrphanSessions(orphanCount)
	}

	duration := time.Since(start)
	j.logger.Info("クリーンアップジョブが完了しました",
		slog.Int64("deleted_auth_sessions", deletedCount),
		slog.Int("orphan_sessions", orphanCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Package logbook はログ（セッション＋マンチー）の2段階書き込みワークフローと
// フィード読み込みのドメインロジックを提供する。
package logbook

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/munchboxd/munchboxd/internal/metrics"
	"github.com/munchboxd/munchboxd/internal/model"
	"github.com/munchboxd/munchboxd/internal/repository"
	"github.com/munchboxd/munchboxd/internal/security"
)

// SessionInput はセッション（製品使用イベント）のフォーム入力。
type SessionInput struct {
	StrainName  string
	ProductType string
	Brand       string
	HighRating  int
}

// MunchieInput はマンチー（食事イベント）のフォーム入力。
type MunchieInput struct {
	FoodName    string
	SourceType  string
	Rating      int
	Description string
}

// Service はログ記録のサービス層。
// 2段階書き込み（セッション→マンチー）は非アトミックであり、
// 第2段階の失敗でセッション行が孤児として残ることを許容する。
type Service struct {
	accounts  repository.AccountRepository
	sessions  repository.SessionRepository
	munchies  repository.MunchieRepository
	sanitizer security.TextSanitizerService
	recorder  metrics.Recorder
}

// NewService はServiceを生成する。
func NewService(
	accounts repository.AccountRepository,
	sessions repository.SessionRepository,
	munchies repository.MunchieRepository,
	sanitizer security.TextSanitizerService,
	recorder metrics.Recorder,
) *Service {
	return &Service{
		accounts:  accounts,
		sessions:  sessions,
		munchies:  munchies,
		sanitizer: sanitizer,
		recorder:  recorder,
	}
}

// LogCombo はセッションとマンチーを順に作成し、フィードレコードを合成して返す。
//
// 手順:
//  1. セッション行をINSERT。失敗した場合はSESSION_SAVE_FAILEDを返し、以降は何もしない。
//  2. セッションIDを参照するマンチー行をINSERT。失敗した場合は
//     MUNCHIE_SAVE_FAILEDを返す。第1段階のセッション行は補償削除せず孤児として残す。
//  3. 両方成功したら、ストアを再取得せずに呼び出し入力とアカウントの
//     キャッシュ済みユーザー名からフィードレコードをローカル合成する。
//
// マンチーはセッションへのFK参照を持つため、この順序は必須。
func (s *Service) LogCombo(ctx context.Context, accountID string, sin SessionInput, min MunchieInput) (*model.FeedRecord, error) {
	start := time.Now()

	if err := validateInputs(sin, min); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return nil, model.NewAccountNotFoundError()
	}

	now := time.Now()

	// 1. セッション行の作成
	session := &model.Session{
		ID:          uuid.New().String(),
		StrainName:  normalize(sin.StrainName),
		ProductType: model.ProductType(sin.ProductType),
		Brand:       normalize(sin.Brand),
		HighRating:  sin.HighRating,
		AccountID:   account.ID,
		CreatedAt:   now,
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		slog.Error("session insert failed",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
		if s.recorder != nil {
			s.recorder.RecordSessionSaveFailure()
		}
		return nil, model.NewSessionSaveFailedError()
	}

	// 2. マンチー行の作成
	description := min.Description
	if s.sanitizer != nil {
		description = s.sanitizer.Sanitize(description)
	}
	munchie := &model.Munchie{
		ID:          uuid.New().String(),
		SessionID:   session.ID,
		FoodName:    normalize(min.FoodName),
		SourceType:  model.SourceType(min.SourceType),
		Rating:      min.Rating,
		Description: normalize(description),
		CreatedAt:   now,
	}
	if err := s.munchies.Insert(ctx, munchie); err != nil {
		// セッション行は孤児としてコミット済みのまま残る
		slog.Error("munchie insert failed, session row orphaned",
			slog.String("account_id", account.ID),
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
		if s.recorder != nil {
			s.recorder.RecordMunchieSaveFailure()
		}
		return nil, model.NewMunchieSaveFailedError()
	}

	// 3. フィードレコードのローカル合成（再取得しない）
	record := &model.FeedRecord{
		MunchieID:   munchie.ID,
		SessionID:   session.ID,
		FoodName:    munchie.FoodName,
		SourceType:  munchie.SourceType,
		Rating:      munchie.Rating,
		Description: munchie.Description,
		CreatedAt:   munchie.CreatedAt,
		StrainName:  session.StrainName,
		ProductType: session.ProductType,
		AccountID:   account.ID,
		Username:    account.Username,
	}

	if s.recorder != nil {
		s.recorder.RecordLogSuccess()
		s.recorder.RecordLogLatency(time.Since(start))
	}

	slog.Info("log combo created",
		slog.String("account_id", account.ID),
		slog.String("session_id", session.ID),
		slog.String("munchie_id", munchie.ID),
	)

	return record, nil
}

// LoadFeed は全ユーザーのフィードレコードを新しい順で返す。
// レコードが存在しない場合はエラーではなく空スライスを返す。
func (s *Service) LoadFeed(ctx context.Context) ([]model.FeedRecord, error) {
	records, err := s.munchies.ListFeed(ctx)
	if err != nil {
		slog.Error("feed load failed", slog.String("error", err.Error()))
		if s.recorder != nil {
			s.recorder.RecordFeedLoadFailure()
		}
		return nil, model.NewFeedLoadFailedError()
	}
	if s.recorder != nil {
		s.recorder.RecordFeedLoad()
	}
	return records, nil
}

// validateInputs はフォーム入力の列挙と評価値を検証する。
func validateInputs(sin SessionInput, min MunchieInput) error {
	if !model.ProductType(sin.ProductType).Valid() {
		return model.NewInvalidLogInputError(fmt.Sprintf("不明な製品種別: %q", sin.ProductType))
	}
	if !model.SourceType(min.SourceType).Valid() {
		return model.NewInvalidLogInputError(fmt.Sprintf("不明な入手元種別: %q", min.SourceType))
	}
	if sin.HighRating < 1 || sin.HighRating > 5 {
		return model.NewInvalidLogInputError(fmt.Sprintf("high_ratingが範囲外: %d", sin.HighRating))
	}
	if min.Rating < 1 || min.Rating > 5 {
		return model.NewInvalidLogInputError(fmt.Sprintf("ratingが範囲外: %d", min.Rating))
	}
	return nil
}

// normalize は空・空白のみの入力をnil（NULL保存）に正規化する。
func normalize(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

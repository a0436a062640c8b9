// Package auth はメール・パスワード認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/munchboxd/munchboxd/internal/model"
	"github.com/munchboxd/munchboxd/internal/repository"
)

// minPasswordLength はパスワードの最小文字数。
const minPasswordLength = 6

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge            int  // セッション有効期間（秒）
	RequireEmailConfirmation bool // サインアップ後にメール確認を要求するか
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	accounts     repository.AccountRepository
	profiles     repository.ProfileRepository
	authSessions repository.AuthSessionRepository
	config       ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	authSessions repository.AuthSessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		accounts:     accounts,
		profiles:     profiles,
		authSessions: authSessions,
		config:       config,
	}
}

// SignUp は新規アカウントを作成する。
// ユーザー名は小文字・空白なしに正規化し、アカウント作成前に重複を
// 助言的にチェックする（最終的な一意性はDBの一意制約が保証する）。
// 戻り値のconfirmationRequiredがtrueの場合、メール確認が完了するまで
// ログインできない。
func (s *Service) SignUp(ctx context.Context, email, password, username string) (account *model.Account, confirmationRequired bool, err error) {
	email = strings.TrimSpace(email)
	username = NormalizeUsername(username)

	if err := validateSignUp(email, password, username); err != nil {
		return nil, false, err
	}

	// 1. ユーザー名の事前チェック（プロバイダ呼び出し前に短絡する）
	taken, err := s.profiles.UsernameTaken(ctx, username)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, false, model.NewUsernameTakenError()
	}

	// 2. パスワードハッシュの生成
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	// 3. アカウントとプロフィールを同一トランザクションで作成
	now := time.Now()
	newAccount := &model.Account{
		ID:             uuid.New().String(),
		Email:          email,
		PasswordHash:   string(hash),
		Username:       username,
		EmailConfirmed: !s.config.RequireEmailConfirmation,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if s.config.RequireEmailConfirmation {
		token, err := generateToken(16)
		if err != nil {
			return nil, false, fmt.Errorf("failed to generate confirmation token: %w", err)
		}
		newAccount.ConfirmationToken = &token
	}

	profile := &model.Profile{
		ID:        uuid.New().String(),
		AccountID: newAccount.ID,
		Username:  username,
		CreatedAt: now,
	}

	if err := s.accounts.CreateWithProfile(ctx, newAccount, profile); err != nil {
		// 事前チェックをすり抜けた競合は一意制約違反として現れる
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, false, model.NewUsernameTakenError()
		}
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, false, model.NewEmailTakenError()
		}
		return nil, false, fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("new account created",
		slog.String("account_id", newAccount.ID),
		slog.String("username", username),
		slog.Bool("confirmation_required", s.config.RequireEmailConfirmation),
	)

	return newAccount, s.config.RequireEmailConfirmation, nil
}

// SignIn はメールアドレスとパスワードで認証し、セッションを発行する。
// メール未登録とパスワード不一致のエラーは区別しない。
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.AuthSession, *model.Account, error) {
	email = strings.TrimSpace(email)

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if s.config.RequireEmailConfirmation && !account.EmailConfirmed {
		return nil, nil, model.NewEmailNotConfirmedError()
	}

	session, err := s.createSession(ctx, account.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("account signed in", slog.String("account_id", account.ID))
	return session, account, nil
}

// SignOut はセッションを破棄する。ベストエフォートであり、
// ストレージ側の失敗はログに記録するだけで呼び出し側には常に成功として扱わせる。
func (s *Service) SignOut(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := s.authSessions.DeleteByID(ctx, sessionID); err != nil {
		slog.Error("failed to delete auth session on sign out",
			slog.String("error", err.Error()),
		)
		return
	}
	slog.Info("account signed out", slog.String("session_id", sessionID))
}

// CurrentAccount はセッションIDから現在のアカウントを取得する。
// 有効なセッションが存在しない場合は(nil, nil)を返す。
func (s *Service) CurrentAccount(ctx context.Context, sessionID string) (*model.Account, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.authSessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find auth session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	account, err := s.accounts.FindByID(ctx, session.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// ConfirmEmail は確認トークンでメール確認を完了する。
// トークンが無効な場合はfalseを返す。
func (s *Service) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	confirmed, err := s.accounts.ConfirmByToken(ctx, token)
	if err != nil {
		return false, fmt.Errorf("failed to confirm email: %w", err)
	}
	if confirmed {
		slog.Info("email confirmed")
	}
	return confirmed, nil
}

// UsernameTaken は正規化済みユーザー名の重複を点検索する。
// 助言的チェック用で、同時作成の競合までは防げない。
func (s *Service) UsernameTaken(ctx context.Context, username string) (bool, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return false, nil
	}
	return s.profiles.UsernameTaken(ctx, username)
}

// createSession は認証セッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, accountID string) (*model.AuthSession, error) {
	sessionID, err := generateToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.AuthSession{
		ID:        sessionID,
		AccountID: accountID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.authSessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// NormalizeUsername はユーザー名を小文字化し、空白をすべて除去する。
func NormalizeUsername(username string) string {
	return strings.Join(strings.Fields(strings.ToLower(username)), "")
}

// validateSignUp はサインアップ入力を検証する。
func validateSignUp(email, password, username string) error {
	if email == "" || !strings.Contains(email, "@") {
		return model.NewInvalidSignUpError("メールアドレスの形式が正しくありません")
	}
	if len(password) < minPasswordLength {
		return model.NewInvalidSignUpError(fmt.Sprintf("パスワードは%d文字以上で指定してください", minPasswordLength))
	}
	if username == "" {
		return model.NewInvalidSignUpError("ユーザー名を指定してください")
	}
	return nil
}

// generateToken は暗号的に安全なランダムトークンを16進文字列で生成する。
func generateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

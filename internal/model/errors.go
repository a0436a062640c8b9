// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, logbook, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeUsernameTaken      = "USERNAME_TAKEN"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailNotConfirmed  = "EMAIL_NOT_CONFIRMED"
	ErrCodeInvalidSignUp      = "INVALID_SIGNUP"
	ErrCodeInvalidLogInput    = "INVALID_LOG_INPUT"
	ErrCodeSessionSaveFailed  = "SESSION_SAVE_FAILED"
	ErrCodeMunchieSaveFailed  = "MUNCHIE_SAVE_FAILED"
	ErrCodeFeedLoadFailed     = "FEED_LOAD_FAILED"
	ErrCodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
// サインアップ前の事前チェックで使用される（権威はDBの一意制約）。
func NewUsernameTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  "このユーザー名はすでに使われています。",
		Category: "auth",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスはすでに登録されています。",
		Category: "auth",
		Action:   "ログインするか、別のメールアドレスを指定してください。",
	}
}

// NewInvalidCredentialsError は認証情報不正エラーを生成する。
// メール未登録とパスワード不一致は区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEmailNotConfirmedError はメール未確認エラーを生成する。
func NewEmailNotConfirmedError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailNotConfirmed,
		Message:  "メールアドレスがまだ確認されていません。",
		Category: "auth",
		Action:   "受信トレイの確認メールのリンクを開いてからログインしてください。",
	}
}

// NewInvalidSignUpError はサインアップ入力不正エラーを生成する。
func NewInvalidSignUpError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSignUp,
		Message:  fmt.Sprintf("サインアップ内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を修正して再度お試しください。",
	}
}

// NewInvalidLogInputError はログ入力不正エラーを生成する。
func NewInvalidLogInputError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidLogInput,
		Message:  fmt.Sprintf("ログの入力内容が不正です: %s", reason),
		Category: "validation",
		Action:   "評価は1〜5、種別は選択肢の中から指定してください。",
	}
}

// NewSessionSaveFailedError はセッション保存失敗エラー（書き込み第1段階）を生成する。
func NewSessionSaveFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionSaveFailed,
		Message:  "セッションの保存に失敗しました。",
		Category: "logbook",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewMunchieSaveFailedError はマンチー保存失敗エラー（書き込み第2段階）を生成する。
// 第1段階で作成されたセッション行は孤児としてそのまま残る。
func NewMunchieSaveFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeMunchieSaveFailed,
		Message:  "マンチーの保存に失敗しました。",
		Category: "logbook",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewFeedLoadFailedError はフィード読み込み失敗エラーを生成する。
func NewFeedLoadFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeFeedLoadFailed,
		Message:  "フィードの読み込みに失敗しました。",
		Category: "logbook",
		Action:   "表示中のデータはそのまま利用できます。しばらく待ってから再読み込みしてください。",
	}
}

// NewAccountNotFoundError はアカウント未検出エラーを生成する。
func NewAccountNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeAccountNotFound,
		Message:  "アカウントが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

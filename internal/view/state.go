// Package view はUI状態を明示的な状態構造体として保持する。
//
// 元のSPAがコンポーネント内に分散させていた可変状態を、遷移メソッドを持つ
// 1つの値に集約したもの。ワイヤ表現への変換はhandler層のレスポンス型が担う。
package view

import "github.com/munchboxd/munchboxd/internal/model"

// Tab はナビゲーションタブの列挙を表す。
type Tab string

const (
	// TabDashboard はダッシュボード（フォーム＋直近ログ）。
	TabDashboard Tab = "dashboard"
	// TabNew はログ記録フォーム単体。
	TabNew Tab = "new"
	// TabMunchies は自分のログ一覧。
	TabMunchies Tab = "munchies"
	// TabFeed は全ユーザーの公開フィード。
	TabFeed Tab = "feed"
)

// Valid は有効なタブかどうかを返す。
func (t Tab) Valid() bool {
	switch t {
	case TabDashboard, TabNew, TabMunchies, TabFeed:
		return true
	}
	return false
}

// Message はユーザー向けの一時的なフィードバックを表す。
type Message struct {
	Text    string
	IsError bool
}

// FormState はログ記録フォームの入力値を保持する。
type FormState struct {
	Strain      string
	ProductType string
	Brand       string
	HighRating  int
	FoodName    string
	SourceType  string
	Rating      int
	Description string
}

// DefaultForm はフォームの初期値を返す。
func DefaultForm() FormState {
	return FormState{
		ProductType: string(model.ProductTypePreroll),
		HighRating:  4,
		SourceType:  string(model.SourceTypeHomemade),
		Rating:      5,
	}
}

// AccountInfo は状態に保持するアカウントの表示用サブセット。
type AccountInfo struct {
	ID       string
	Email    string
	Username string
}

// State はアプリケーションのUI状態を表す。
// Recordsはストアの返却順（新しい順）を保ち、書き込み成功時には先頭に追記される。
type State struct {
	ActiveTab Tab
	Account   *AccountInfo
	Records   []model.FeedRecord
	Form      FormState
	Saving    bool
	Message   *Message
}

// NewState は認証済みアカウントの初期状態を生成する。
// accountがnilの場合は未認証状態を表す。
func NewState(account *AccountInfo) *State {
	return &State{
		ActiveTab: TabDashboard,
		Account:   account,
		Records:   []model.FeedRecord{},
		Form:      DefaultForm(),
	}
}

// SetTab はアクティブタブを切り替える。無効なタブは無視する。
func (s *State) SetTab(tab Tab) {
	if !tab.Valid() {
		return
	}
	s.ActiveTab = tab
	s.Message = nil
}

// BeginSave は保存中フラグを立て、前回のメッセージを消す。
// UIはこのフラグで送信操作を無効化するが、これは助言的であり排他は保証しない。
func (s *State) BeginSave() {
	s.Saving = true
	s.Message = nil
}

// FinishSave は保存中フラグを下ろす。
func (s *State) FinishSave() {
	s.Saving = false
}

// ApplyLoaded は読み込んだフィードレコード列で全体を置き換える。
func (s *State) ApplyLoaded(records []model.FeedRecord) {
	if records == nil {
		records = []model.FeedRecord{}
	}
	s.Records = records
}

// ApplyLoadFailed は読み込み失敗を反映する。
// 表示済みのレコードは消さずに残す（stale-but-available）。
func (s *State) ApplyLoadFailed(text string) {
	s.Message = &Message{Text: text, IsError: true}
}

// ApplyLogged は書き込み成功を反映する。
// 新しいレコードを先頭に追記し（全件再読み込みなしで新着順を維持）、
// フォームを初期値に戻す。
func (s *State) ApplyLogged(record model.FeedRecord) {
	s.Records = append([]model.FeedRecord{record}, s.Records...)
	s.Form = DefaultForm()
	s.Message = &Message{Text: "セッションを保存しました", IsError: false}
}

// ApplyError は失敗メッセージを反映する。
func (s *State) ApplyError(text string) {
	s.Message = &Message{Text: text, IsError: true}
}

// ApplySignOut はサインアウトを反映する。
// レコード列を空にし、アクティブタブをダッシュボードに戻す。
func (s *State) ApplySignOut() {
	s.Account = nil
	s.Records = []model.FeedRecord{}
	s.ActiveTab = TabDashboard
	s.Form = DefaultForm()
	s.Saving = false
	s.Message = nil
}

// MyRecords は全レコード列から現在アカウント所有分を抽出して返す。
// 毎回再計算し、別キャッシュは持たない（読み込み・追記と常に整合する）。
func (s *State) MyRecords() []model.FeedRecord {
	if s.Account == nil {
		return []model.FeedRecord{}
	}
	mine := make([]model.FeedRecord, 0)
	for _, rec := range s.Records {
		if rec.AccountID == s.Account.ID {
			mine = append(mine, rec)
		}
	}
	return mine
}

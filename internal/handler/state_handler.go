package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/munchboxd/munchboxd/internal/middleware"
	"github.com/munchboxd/munchboxd/internal/model"
	"github.com/munchboxd/munchboxd/internal/view"
)

// AccountFinder はアカウント取得のためのインターフェース。
// 状態ブートストラップで現在アカウントの表示情報を解決するために使用する。
type AccountFinder interface {
	FindByID(ctx context.Context, id string) (*model.Account, error)
}

// StateHandler はUI状態ブートストラップのHTTPハンドラー。
// 認証済みアカウントの初期状態（アクティブタブ、フォーム初期値、
// フィードレコード列）を1レスポンスで返す。
type StateHandler struct {
	accounts AccountFinder
	logbook  LogbookServiceInterface
}

// NewStateHandler はStateHandlerを生成する。
func NewStateHandler(accounts AccountFinder, logbook LogbookServiceInterface) *StateHandler {
	return &StateHandler{
		accounts: accounts,
		logbook:  logbook,
	}
}

// formResponse はフォーム状態のAPIレスポンス。
type formResponse struct {
	Strain      string `json:"strain"`
	ProductType string `json:"product_type"`
	Brand       string `json:"brand"`
	HighRating  int    `json:"high_rating"`
	FoodName    string `json:"food_name"`
	SourceType  string `json:"source_type"`
	Rating      int    `json:"rating"`
	Description string `json:"description"`
}

// messageResponse はユーザー向けメッセージのAPIレスポンス。
type messageResponse struct {
	Text    string `json:"text"`
	IsError bool   `json:"is_error"`
}

// stateResponse はUI状態のAPIレスポンス。
type stateResponse struct {
	ActiveTab string               `json:"active_tab"`
	Account   *accountResponse     `json:"account"`
	Records   []feedRecordResponse `json:"records"`
	MyRecords []feedRecordResponse `json:"my_records"`
	Form      formResponse         `json:"form"`
	Saving    bool                 `json:"saving"`
	Message   *messageResponse     `json:"message"`
}

// State は認証済みアカウントの初期UI状態を返す。
// フィードの読み込みに失敗しても状態自体は返す（レコード空＋エラーメッセージ）。
// GET /api/state
func (h *StateHandler) State(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	account, err := h.accounts.FindByID(r.Context(), accountID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if account == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewAccountNotFoundError())
		return
	}

	state := view.NewState(&view.AccountInfo{
		ID:       account.ID,
		Email:    account.Email,
		Username: account.Username,
	})

	records, err := h.logbook.LoadFeed(r.Context())
	if err != nil {
		var apiErr *model.APIError
		text := "フィードの読み込みに失敗しました。"
		if errors.As(err, &apiErr) {
			text = apiErr.Message
		}
		state.ApplyLoadFailed(text)
	} else {
		state.ApplyLoaded(records)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toStateResponse(state))
}

// toStateResponse はUI状態をAPIレスポンスに変換する。
func toStateResponse(state *view.State) stateResponse {
	resp := stateResponse{
		ActiveTab: string(state.ActiveTab),
		Records:   make([]feedRecordResponse, 0, len(state.Records)),
		MyRecords: make([]feedRecordResponse, 0),
		Form: formResponse{
			Strain:      state.Form.Strain,
			ProductType: state.Form.ProductType,
			Brand:       state.Form.Brand,
			HighRating:  state.Form.HighRating,
			FoodName:    state.Form.FoodName,
			SourceType:  state.Form.SourceType,
			Rating:      state.Form.Rating,
			Description: state.Form.Description,
		},
		Saving: state.Saving,
	}

	if state.Account != nil {
		resp.Account = &accountResponse{
			ID:       state.Account.ID,
			Email:    state.Account.Email,
			Username: state.Account.Username,
		}
	}
	if state.Message != nil {
		resp.Message = &messageResponse{
			Text:    state.Message.Text,
			IsError: state.Message.IsError,
		}
	}

	for _, rec := range state.Records {
		resp.Records = append(resp.Records, toFeedRecordResponse(rec))
	}
	for _, rec := range state.MyRecords() {
		resp.MyRecords = append(resp.MyRecords, toFeedRecordResponse(rec))
	}

	return resp
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/munchboxd/munchboxd/internal/logbook"
	"github.com/munchboxd/munchboxd/internal/middleware"
	"github.com/munchboxd/munchboxd/internal/model"
)

// LogbookServiceInterface はログブックハンドラーが必要とするサービスインターフェース。
type LogbookServiceInterface interface {
	// LogCombo はセッションとマンチーを2段階で記録する。
	LogCombo(ctx context.Context, accountID string, sin logbook.SessionInput, min logbook.MunchieInput) (*model.FeedRecord, error)
	// LoadFeed は全アカウントのフィードレコードを新着順で返す。
	LoadFeed(ctx context.Context) ([]model.FeedRecord, error)
}

// LogbookHandler はログ記録とフィード閲覧のHTTPハンドラー。
type LogbookHandler struct {
	service LogbookServiceInterface
}

// NewLogbookHandler はLogbookHandlerを生成する。
func NewLogbookHandler(service LogbookServiceInterface) *LogbookHandler {
	return &LogbookHandler{service: service}
}

// createLogRequest はログ作成リクエストのボディ。
// セッション入力とマンチー入力を1つのフォームとして受け取る。
type createLogRequest struct {
	StrainName  string `json:"strain_name"`
	ProductType string `json:"product_type"`
	Brand       string `json:"brand"`
	HighRating  int    `json:"high_rating"`
	FoodName    string `json:"food_name"`
	SourceType  string `json:"source_type"`
	Rating      int    `json:"rating"`
	Description string `json:"description"`
}

// feedRecordResponse はフィードレコードのAPIレスポンス。
type feedRecordResponse struct {
	MunchieID   string  `json:"munchie_id"`
	SessionID   string  `json:"session_id"`
	FoodName    *string `json:"food_name"`
	SourceType  string  `json:"source_type"`
	Rating      int     `json:"rating"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
	StrainName  *string `json:"strain_name"`
	ProductType string  `json:"product_type"`
	AccountID   string  `json:"account_id"`
	Username    string  `json:"username"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// CreateLog はセッションとマンチーのペアを記録する。
// POST /api/logs
func (h *LogbookHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	record, err := h.service.LogCombo(r.Context(), accountID,
		logbook.SessionInput{
			StrainName:  req.StrainName,
			ProductType: req.ProductType,
			Brand:       req.Brand,
			HighRating:  req.HighRating,
		},
		logbook.MunchieInput{
			FoodName:    req.FoodName,
			SourceType:  req.SourceType,
			Rating:      req.Rating,
			Description: req.Description,
		},
	)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toFeedRecordResponse(*record))
}

// Feed は全アカウントのフィードを新着順で返す。
// GET /api/feed
func (h *LogbookHandler) Feed(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.LoadFeed(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// レコードが0件でもnullではなく空配列を返す
	resp := make([]feedRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toFeedRecordResponse(rec))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// toFeedRecordResponse はフィードレコードをAPIレスポンスに変換する。
func toFeedRecordResponse(rec model.FeedRecord) feedRecordResponse {
	return feedRecordResponse{
		MunchieID:   rec.MunchieID,
		SessionID:   rec.SessionID,
		FoodName:    rec.FoodName,
		SourceType:  string(rec.SourceType),
		Rating:      rec.Rating,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
		StrainName:  rec.StrainName,
		ProductType: string(rec.ProductType),
		AccountID:   rec.AccountID,
		Username:    rec.Username,
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, internalError())
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidRequest, model.ErrCodeInvalidSignUp, model.ErrCodeInvalidLogInput:
		return http.StatusBadRequest
	case model.ErrCodeUsernameTaken, model.ErrCodeEmailTaken:
		return http.StatusConflict
	case model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeEmailNotConfirmed:
		return http.StatusForbidden
	case model.ErrCodeAccountNotFound:
		return http.StatusNotFound
	case model.ErrCodeSessionSaveFailed, model.ErrCodeMunchieSaveFailed, model.ErrCodeFeedLoadFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// invalidRequestError はリクエストボディ解析失敗の統一エラーを返す。
func invalidRequestError() *model.APIError {
	return &model.APIError{
		Code:     model.ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// internalError は内部サーバーエラーの統一エラーを返す。
func internalError() *model.APIError {
	return &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/munchboxd/munchboxd/internal/logbook"
	"github.com/munchboxd/munchboxd/internal/middleware"
	"github.com/munchboxd/munchboxd/internal/model"
)

type mockSessionFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.AuthSession, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.AuthSession, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) Ping() error { return m.err }

func validSessionFinder() *mockSessionFinder {
	return &mockSessionFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.AuthSession, error) {
			if id == "valid-session" {
				return &model.AuthSession{
					ID:        id,
					AccountID: "acct-1",
					ExpiresAt: time.Now().Add(time.Hour),
				}, nil
			}
			return nil, nil
		},
	}
}

func newTestRouter(t *testing.T, deps *RouterDeps) http.Handler {
	t.Helper()
	if deps.SessionFinder == nil {
		deps.SessionFinder = validSessionFinder()
	}
	if deps.HealthChecker == nil {
		deps.HealthChecker = &mockHealthChecker{}
	}
	if deps.RateLimiter == nil {
		deps.RateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
		t.Cleanup(deps.RateLimiter.Stop)
	}
	if deps.AuthService == nil {
		deps.AuthService = &mockAuthService{}
	}
	if deps.LogbookService == nil {
		deps.LogbookService = &mockLogbookService{}
	}
	if deps.AccountFinder == nil {
		deps.AccountFinder = aliceFinder()
	}
	deps.CORSAllowedOrigin = "http://localhost:3000"
	return NewRouter(deps)
}

// --- テスト ---

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, &RouterDeps{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_Health_DBDown_Returns503(t *testing.T) {
	router := newTestRouter(t, &RouterDeps{
		HealthChecker: &mockHealthChecker{err: context.DeadlineExceeded},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

// 認証が必要なルートはCookieなしで401を返す。
func TestRouter_AuthedRoutes_RequireSession(t *testing.T) {
	router := newTestRouter(t, &RouterDeps{})

	targets := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/logs"},
		{http.MethodGet, "/api/feed"},
		{http.MethodGet, "/api/state"},
	}

	for _, tgt := range targets {
		req := httptest.NewRequest(tgt.method, tgt.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want %d", tgt.method, tgt.path, w.Code, http.StatusUnauthorized)
		}
	}
}

// 有効なセッションCookie付きのリクエストはハンドラーに到達する。
func TestRouter_AuthedRoute_WithValidSession(t *testing.T) {
	router := newTestRouter(t, &RouterDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

// 認証ルートはセッションミドルウェアの外にあり、Cookieなしでも到達できる。
func TestRouter_AuthRoutes_NoSessionRequired(t *testing.T) {
	router := newTestRouter(t, &RouterDeps{
		AuthService: &mockAuthService{
			usernameTakenFn: func(ctx context.Context, username string) (bool, error) {
				return false, nil
			},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/username-taken?username=alice", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

// ログ作成はバーストを超えると429を返す。
func TestRouter_LogCreation_RateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(1000, 2))
	t.Cleanup(limiter.Stop)

	created := 0
	router := newTestRouter(t, &RouterDeps{
		RateLimiter: limiter,
		LogbookService: &mockLogbookService{
			logComboFn: func(ctx context.Context, accountID string, sin logbook.SessionInput, min logbook.MunchieInput) (*model.FeedRecord, error) {
				created++
				rec := sampleFeedRecord()
				return &rec, nil
			},
		},
	})

	body := `{"product_type":"Flower","high_rating":4,"source_type":"Homemade","rating":5}`
	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/logs", strings.NewReader(body))
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	if statuses[0] != http.StatusCreated || statuses[1] != http.StatusCreated {
		t.Errorf("最初の2リクエストは成功すべき: %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("3番目のリクエストは429であるべき: %v", statuses)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}
}

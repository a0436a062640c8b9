package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newLimitedRateLimiter(t *testing.T, generalBurst, logCreateBurst int) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001), // 補充をほぼ止めてバーストだけで検証する
		GeneralBurst:    generalBurst,
		LogCreateRate:   rate.Limit(0.001),
		LogCreateBurst:  logCreateBurst,
		CleanupInterval: time.Minute,
	})
	t.Cleanup(rl.Stop)
	return rl
}

func rateLimitedRequest(accountID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	return req.WithContext(ContextWithAccountID(req.Context(), accountID))
}

func TestRateLimiter_General_AllowsWithinBurst(t *testing.T) {
	rl := newLimitedRateLimiter(t, 2, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := rl.GeneralMiddleware()(next)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, rateLimitedRequest("acct-1"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	// バースト超過
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, rateLimitedRequest("acct-1"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429レスポンスにRetry-Afterヘッダーがない")
	}
}

// レート制限はアカウントごとに独立している。
func TestRateLimiter_General_PerAccount(t *testing.T) {
	rl := newLimitedRateLimiter(t, 1, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := rl.GeneralMiddleware()(next)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, rateLimitedRequest("acct-1"))
	if w.Code != http.StatusOK {
		t.Fatalf("acct-1 first request: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, rateLimitedRequest("acct-1"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("acct-1 second request: status = %d, want 429", w.Code)
	}

	// 別アカウントには影響しない
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, rateLimitedRequest("acct-2"))
	if w.Code != http.StatusOK {
		t.Errorf("acct-2 first request: status = %d, want 200", w.Code)
	}
}

// ログ作成のレート制限はAPI全般とは独立に動作する。
func TestRateLimiter_LogCreation_IndependentOfGeneral(t *testing.T) {
	rl := newLimitedRateLimiter(t, 10, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	logHandler := rl.LogCreationMiddleware()(next)

	w := httptest.NewRecorder()
	logHandler.ServeHTTP(w, rateLimitedRequest("acct-1"))
	if w.Code != http.StatusCreated {
		t.Fatalf("first log request: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	logHandler.ServeHTTP(w, rateLimitedRequest("acct-1"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second log request: status = %d, want 429", w.Code)
	}

	// API全般のミドルウェアはまだ許可する
	generalHandler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	w = httptest.NewRecorder()
	generalHandler.ServeHTTP(w, rateLimitedRequest("acct-1"))
	if w.Code != http.StatusOK {
		t.Errorf("general request: status = %d, want 200", w.Code)
	}
}

// コンテキストにアカウントIDがないリクエストは401を返す。
func TestRateLimiter_General_MissingAccountID(t *testing.T) {
	rl := newLimitedRateLimiter(t, 1, 1)
	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRateLimiter_LimiterCounts(t *testing.T) {
	rl := newLimitedRateLimiter(t, 5, 5)
	generalHandler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, id := range []string{"acct-1", "acct-2", "acct-1"} {
		generalHandler.ServeHTTP(httptest.NewRecorder(), rateLimitedRequest(id))
	}

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount = %d, want 2", got)
	}
	if got := rl.LogCreateLimiterCount(); got != 0 {
		t.Errorf("LogCreateLimiterCount = %d, want 0", got)
	}
}

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestAllow_BurstThenDeny(t *testing.T) {
	limiter := New(Config{
		RequestsPerMinute: 60,
		BurstSize:         5,
		CleanupInterval:   time.Minute,
	})
	defer limiter.Stop()

	key := "203.0.113.9"

	for i := 0; i < 5; i++ {
		if !limiter.Allow(key) {
			t.Errorf("request %d should be allowed (within burst)", i)
		}
	}
	if limiter.Allow(key) {
		t.Error("request after burst should be denied")
	}

	// One token replenishes per second at 60/min.
	time.Sleep(time.Second)
	if !limiter.Allow(key) {
		t.Error("request after waiting should be allowed")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	limiter := New(Config{
		RequestsPerMinute: 60,
		BurstSize:         3,
		CleanupInterval:   time.Minute,
	})
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		limiter.Allow("203.0.113.9")
	}
	if limiter.Allow("203.0.113.9") {
		t.Error("exhausted client should be limited")
	}
	// A different client has its own bucket.
	if !limiter.Allow("198.51.100.4") {
		t.Error("fresh client should not be limited")
	}
}

func TestAllow_TokenReplenishment(t *testing.T) {
	limiter := New(Config{
		RequestsPerMinute: 600, // 10 per second
		BurstSize:         1,
		CleanupInterval:   time.Minute,
	})
	defer limiter.Stop()

	key := "operator"
	if !limiter.Allow(key) {
		t.Error("first request should be allowed")
	}
	if limiter.Allow(key) {
		t.Error("second immediate request should be denied")
	}

	time.Sleep(110 * time.Millisecond)
	if !limiter.Allow(key) {
		t.Error("request after replenishment should be allowed")
	}
}

func newTestRouter(limiter *Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limiter.Middleware())
	router.POST("/v1/pricing/calculate", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pricing": gin.H{}})
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	return router
}

func TestMiddleware_Returns429WithRetryHint(t *testing.T) {
	limiter := New(Config{
		RequestsPerMinute: 60,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
	})
	defer limiter.Stop()
	router := newTestRouter(limiter)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/pricing/calculate", nil)
		router.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	body := last.Body.String()
	if !strings.Contains(body, "rate_limit_exceeded") || !strings.Contains(body, "retry_after") {
		t.Errorf("unexpected 429 body: %s", body)
	}
}

func TestMiddleware_HealthEndpointsExempt(t *testing.T) {
	limiter := New(Config{
		RequestsPerMinute: 60,
		BurstSize:         1,
		CleanupInterval:   time.Minute,
		ExemptPaths:       []string{"/healthz"},
	})
	defer limiter.Stop()
	router := newTestRouter(limiter)

	// Exhaust the bucket on the API route.
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/pricing/calculate", nil))
	}

	// Health checks keep answering regardless.
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("health check %d status = %d, want 200", i, w.Code)
		}
	}
}

func TestMiddleware_BearerTokensGetOwnBuckets(t *testing.T) {
	limiter := New(Config{
		RequestsPerMinute: 60,
		BurstSize:         1,
		CleanupInterval:   time.Minute,
	})
	defer limiter.Stop()
	router := newTestRouter(limiter)

	send := func(token string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/pricing/calculate", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		router.ServeHTTP(w, req)
		return w.Code
	}

	// Two operator tokens from the same address are tracked separately.
	if code := send("sk_ops_alpha_0000000000"); code != http.StatusOK {
		t.Fatalf("first token status = %d, want 200", code)
	}
	if code := send("sk_ops_alpha_0000000000"); code != http.StatusTooManyRequests {
		t.Fatalf("repeat token status = %d, want 429", code)
	}
	if code := send("sk_ops_beta_11111111111"); code != http.StatusOK {
		t.Fatalf("second token status = %d, want 200", code)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RequestsPerMinute != 60 || cfg.BurstSize != 10 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.CleanupInterval != time.Minute {
		t.Errorf("cleanup interval = %v, want 1m", cfg.CleanupInterval)
	}
}

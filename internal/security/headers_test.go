package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newHeadersRouter(middleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware...)
	router.POST("/v1/pricing/calculate", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pricing": gin.H{}})
	})
	router.GET("/v1/alerts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"alerts": []string{}, "count": 0})
	})
	return router
}

func TestHeadersMiddleware_APIResponses(t *testing.T) {
	router := newHeadersRouter(HeadersMiddleware())

	req := httptest.NewRequest(http.MethodPost, "/v1/pricing/calculate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"X-XSS-Protection":       "1; mode=block",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, expected := range want {
		if got := w.Header().Get(header); got != expected {
			t.Errorf("%s = %q, want %q", header, got, expected)
		}
	}

	csp := w.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "default-src 'none'") {
		t.Errorf("CSP should deny document sources for a JSON API, got %q", csp)
	}
	if !strings.Contains(csp, "ws:") || !strings.Contains(csp, "wss:") {
		t.Errorf("CSP must allow the websocket alert feed, got %q", csp)
	}
}

func TestCORSMiddleware_Origins(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		requestOrigin  string
		expectHeader   bool
	}{
		{
			name:           "operator console origin",
			allowedOrigins: []string{"https://ops.mindhaven.example"},
			requestOrigin:  "https://ops.mindhaven.example",
			expectHeader:   true,
		},
		{
			name:           "wildcard allows any origin",
			allowedOrigins: []string{"*"},
			requestOrigin:  "https://anything.example",
			expectHeader:   true,
		},
		{
			name:           "unknown origin gets no header",
			allowedOrigins: []string{"https://ops.mindhaven.example"},
			requestOrigin:  "https://evil.example",
			expectHeader:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newHeadersRouter(CORSMiddleware(tc.allowedOrigins))

			req := httptest.NewRequest(http.MethodGet, "/v1/alerts", nil)
			req.Header.Set("Origin", tc.requestOrigin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			hasHeader := w.Header().Get("Access-Control-Allow-Origin") != ""
			if hasHeader != tc.expectHeader {
				t.Errorf("CORS header present = %v, want %v", hasHeader, tc.expectHeader)
			}
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	router := newHeadersRouter(CORSMiddleware([]string{"*"}))

	req := httptest.NewRequest(http.MethodOptions, "/v1/pricing/calculate", nil)
	req.Header.Set("Origin", "https://ops.mindhaven.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if methods := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(methods, "POST") {
		t.Errorf("Access-Control-Allow-Methods = %q, must include POST", methods)
	}
	if headers := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(headers, "X-Request-ID") {
		t.Errorf("Access-Control-Allow-Headers = %q, must include X-Request-ID", headers)
	}
}

func TestCORSMiddleware_NoCredentialsWithWildcard(t *testing.T) {
	router := newHeadersRouter(CORSMiddleware([]string{"*"}))

	req := httptest.NewRequest(http.MethodGet, "/v1/alerts", nil)
	req.Header.Set("Origin", "https://ops.mindhaven.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("wildcard origins must not allow credentials")
	}

	// A pinned origin does get credentials.
	router = newHeadersRouter(CORSMiddleware([]string{"https://ops.mindhaven.example"}))
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/alerts", nil)
	req.Header.Set("Origin", "https://ops.mindhaven.example")
	router.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("pinned origin should allow credentials")
	}
}

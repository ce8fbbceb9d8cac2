package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mindhaven/trustengine/internal/security"
)

// Config holds the configuration for connecting to the trust engine.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8080"
	APIKey string // Optional bearer token for protected deployments
}

// EngineClient is a pure HTTP client for the trust engine API.
type EngineClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewEngineClient creates a new client for the trust engine. The base
// URL is validated up front so a misconfigured endpoint fails at startup
// rather than on the first tool call.
func NewEngineClient(cfg Config) (*EngineClient, error) {
	if err := security.ValidateAPIBaseURL(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", cfg.APIURL, err)
	}
	return &EngineClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// apiError represents an error response from the engine.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doRequest makes an HTTP request to the engine and returns the response body.
func (c *EngineClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// GetTrustScore returns the trust record for a user.
func (c *EngineClient) GetTrustScore(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/trust/"+url.PathEscape(userID), nil, nil)
}

// CalculatePrice runs one pricing calculation.
func (c *EngineClient) CalculatePrice(ctx context.Context, basePrice float64, country, userID, vatNumber string, isBusiness bool) (json.RawMessage, error) {
	body := map[string]any{
		"base_price":   basePrice,
		"country_code": country,
		"enable_ppp":   true,
		"is_business":  isBusiness,
		"vat_number":   vatNumber,
		"user_id":      userID,
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/pricing/calculate", nil, body)
}

// RunFraudScan triggers a batch fraud scan and returns its summary.
func (c *EngineClient) RunFraudScan(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodPost, "/v1/fraud/scan", nil, nil)
}

// ListAlerts returns pending alerts, or one user's alerts.
func (c *EngineClient) ListAlerts(ctx context.Context, userID string, limit int) (json.RawMessage, error) {
	q := url.Values{}
	if userID != "" {
		q.Set("user_id", userID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.doRequest(ctx, http.MethodGet, "/v1/alerts", q, nil)
}

// DismissAlert marks a pending alert resolved.
func (c *EngineClient) DismissAlert(ctx context.Context, alertID string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodPost, "/v1/alerts/"+url.PathEscape(alertID)+"/dismiss", nil, nil)
}

// DetectRegion runs region detection for a user.
func (c *EngineClient) DetectRegion(ctx context.Context, userID string) (json.RawMessage, error) {
	body := map[string]any{"user_id": userID}
	return c.doRequest(ctx, http.MethodPost, "/v1/region/detect", nil, body)
}

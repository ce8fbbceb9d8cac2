package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *EngineClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *EngineClient) *Handlers {
	return &Handlers{client: client}
}

// HandleGetTrustScore returns a user's trust record.
func (h *Handlers) HandleGetTrustScore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	raw, err := h.client.GetTrustScore(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get trust score: %v", err)), nil
	}

	text, err := formatTrustScore(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse trust record: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleCalculatePrice runs one pricing calculation.
func (h *Handlers) HandleCalculatePrice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	basePrice := req.GetFloat("base_price", 0)
	if basePrice <= 0 {
		return mcp.NewToolResultError("base_price must be a positive number"), nil
	}
	country := req.GetString("country", "")
	if country == "" {
		return mcp.NewToolResultError("country is required"), nil
	}
	userID := req.GetString("user_id", "")
	vatNumber := req.GetString("vat_number", "")
	isBusiness := req.GetBool("is_business", false)

	raw, err := h.client.CalculatePrice(ctx, basePrice, country, userID, vatNumber, isBusiness)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Pricing failed: %v", err)), nil
	}

	text, err := formatPricing(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse pricing result: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleRunFraudScan triggers an immediate scan.
func (h *Handlers) HandleRunFraudScan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.RunFraudScan(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Fraud scan failed: %v", err)), nil
	}

	text, err := formatScanSummary(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse scan summary: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleListAlerts lists pending or per-user alerts.
func (h *Handlers) HandleListAlerts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	limit := req.GetInt("limit", 50)

	raw, err := h.client.ListAlerts(ctx, userID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list alerts: %v", err)), nil
	}

	text, err := formatAlertList(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse alerts: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleDismissAlert resolves one pending alert.
func (h *Handlers) HandleDismissAlert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	alertID := req.GetString("alert_id", "")
	if alertID == "" {
		return mcp.NewToolResultError("alert_id is required"), nil
	}

	if _, err := h.client.DismissAlert(ctx, alertID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Dismiss failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Alert %s dismissed.\n"+
			"If the underlying condition persists, the next fraud scan will raise it again.",
		alertID)), nil
}

// HandleDetectRegion runs region detection for a user.
func (h *Handlers) HandleDetectRegion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	raw, err := h.client.DetectRegion(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Region detection failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(raw)), nil
}

// --- Formatting helpers ---

func formatTrustScore(raw json.RawMessage) (string, error) {
	var resp struct {
		Trust map[string]any `json:"trust"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	m := resp.Trust
	if m == nil {
		if err := json.Unmarshal(raw, &m); err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	sb.WriteString("Trust Record:\n")
	if v := getString(m, "userId", "user_id"); v != "" {
		sb.WriteString(fmt.Sprintf("  User: %s\n", v))
	}
	if v := getString(m, "level"); v != "" {
		sb.WriteString(fmt.Sprintf("  Level: %s\n", v))
	}
	if v, ok := getFloat(m, "confidence"); ok {
		sb.WriteString(fmt.Sprintf("  Confidence: %.3f\n", v))
	}
	if v, ok := getFloat(m, "verificationCount", "verification_count"); ok {
		sb.WriteString(fmt.Sprintf("  Verifications: %.0f\n", v))
	}
	if v, ok := getFloat(m, "availableDiscountPercent", "available_discount_percent"); ok {
		sb.WriteString(fmt.Sprintf("  Max regional discount: %.0f%%\n", v))
	}
	return sb.String(), nil
}

func formatPricing(raw json.RawMessage) (string, error) {
	var resp struct {
		Pricing map[string]any `json:"pricing"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	m := resp.Pricing
	if m == nil {
		return "", fmt.Errorf("unexpected pricing response format")
	}

	currency := getString(m, "currency")
	var sb strings.Builder
	sb.WriteString("Pricing Breakdown:\n")
	if v, ok := getFloat(m, "basePrice"); ok {
		sb.WriteString(fmt.Sprintf("  Base price: %.2f\n", v))
	}
	if v := getString(m, "countryCode"); v != "" {
		sb.WriteString(fmt.Sprintf("  Country: %s\n", v))
	}
	if v := getString(m, "trustLevel"); v != "" {
		sb.WriteString(fmt.Sprintf("  Trust level: %s\n", v))
	}
	if v, ok := getFloat(m, "finalMultiplier"); ok {
		sb.WriteString(fmt.Sprintf("  Effective multiplier: %.3f\n", v))
	}
	if v, ok := getFloat(m, "subtotal"); ok {
		sb.WriteString(fmt.Sprintf("  Subtotal: %.2f %s\n", v, currency))
	}
	if v, ok := getFloat(m, "vatAmount"); ok && v > 0 {
		rate, _ := getFloat(m, "vatRate")
		sb.WriteString(fmt.Sprintf("  VAT (%.1f%%): %.2f %s\n", rate*100, v, currency))
	}
	if rc, ok := m["reverseCharge"].(bool); ok && rc {
		sb.WriteString("  VAT: reverse charge (customer accounts for tax)\n")
	}
	if v, ok := getFloat(m, "finalPrice"); ok {
		sb.WriteString(fmt.Sprintf("  Final price: %.2f %s\n", v, currency))
	}
	return sb.String(), nil
}

func formatScanSummary(raw json.RawMessage) (string, error) {
	var resp struct {
		Scan map[string]any `json:"scan"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	m := resp.Scan
	if m == nil {
		return "", fmt.Errorf("unexpected scan response format")
	}

	var sb strings.Builder
	sb.WriteString("Fraud Scan Completed:\n")
	if v := getString(m, "scanId"); v != "" {
		sb.WriteString(fmt.Sprintf("  Scan ID: %s\n", v))
	}
	if v, ok := getFloat(m, "alertsGenerated"); ok {
		sb.WriteString(fmt.Sprintf("  Alerts generated: %.0f\n", v))
	}
	if v, ok := getFloat(m, "locationMismatches"); ok && v > 0 {
		sb.WriteString(fmt.Sprintf("  Location mismatches: %.0f\n", v))
	}
	if v, ok := getFloat(m, "rapidLocationChanges"); ok && v > 0 {
		sb.WriteString(fmt.Sprintf("  Rapid location changes: %.0f\n", v))
	}
	if v, ok := getFloat(m, "signupVolumeAlerts"); ok && v > 0 {
		sb.WriteString(fmt.Sprintf("  Signup volume alerts: %.0f\n", v))
	}
	if v, ok := getFloat(m, "lowTrustAlerts"); ok && v > 0 {
		sb.WriteString(fmt.Sprintf("  Low trust alerts: %.0f\n", v))
	}
	if failed, ok := m["insertFailed"].(bool); ok && failed {
		sb.WriteString("  WARNING: alert batch insert failed; alerts will be regenerated next scan\n")
	}
	if v, ok := getFloat(m, "durationMs"); ok {
		sb.WriteString(fmt.Sprintf("  Duration: %.0fms\n", v))
	}
	return sb.String(), nil
}

func formatAlertList(raw json.RawMessage) (string, error) {
	var resp struct {
		Alerts []map[string]any `json:"alerts"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("unexpected alerts response format")
	}

	if len(resp.Alerts) == 0 {
		return "No alerts found.", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d alert(s):\n\n", len(resp.Alerts)))
	for i, a := range resp.Alerts {
		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1,
			strings.ToUpper(getString(a, "severity")), getString(a, "alertType")))
		sb.WriteString(fmt.Sprintf("   ID: %s | User: %s | Status: %s\n",
			getString(a, "id"), getString(a, "userId"), getString(a, "status")))
		if desc := getString(a, "description"); desc != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", desc))
		}
		if i < len(resp.Alerts)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func formatJSON(raw json.RawMessage) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return string(raw)
	}
	return pretty.String()
}

// getString extracts a string value from a map, trying multiple key names.
func getString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("%g", f)
			}
		}
	}
	return ""
}

// getFloat extracts a float64 value from a map, trying multiple key names.
func getFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f, ok := v.(float64); ok {
				return f, true
			}
		}
	}
	return 0, false
}

package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the trust engine MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolGetTrustScore = mcp.NewTool("get_trust_score",
	mcp.WithDescription(
		"Look up a user's trust record on the pricing engine. "+
			"Returns the trust level (new/building/trusted/suspicious/blocked), "+
			"confidence score, verification count, and the maximum regional "+
			"discount this user is currently eligible for."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The platform user ID to look up")),
)

var ToolCalculatePrice = mcp.NewTool("calculate_price",
	mcp.WithDescription(
		"Calculate the regional price for a user. Applies the country's "+
			"purchasing-power discount gated by the user's trust level, plus "+
			"VAT. Returns the full breakdown: multipliers, subtotal, tax, and "+
			"final price in the local currency."),
	mcp.WithNumber("base_price",
		mcp.Required(),
		mcp.Description("Base price in the platform currency (e.g. 100)")),
	mcp.WithString("country",
		mcp.Required(),
		mcp.Description("ISO 3166-1 alpha-2 country code (e.g. 'BR')")),
	mcp.WithString("user_id",
		mcp.Description("User whose trust level gates the discount; omit for an anonymous quote")),
	mcp.WithString("vat_number",
		mcp.Description("Business VAT number for reverse-charge treatment")),
	mcp.WithBoolean("is_business",
		mcp.Description("Whether this is a B2B purchase")),
)

var ToolRunFraudScan = mcp.NewTool("run_fraud_scan",
	mcp.WithDescription(
		"Trigger an immediate batch fraud scan instead of waiting for the "+
			"scheduled run. Returns the scan summary: how many alerts each "+
			"check generated and whether the batch insert succeeded."),
)

var ToolListAlerts = mcp.NewTool("list_alerts",
	mcp.WithDescription(
		"List pending fraud alerts for operator review, newest first. "+
			"Pass a user_id to see all alerts for one user instead."),
	mcp.WithString("user_id",
		mcp.Description("Filter to one user's alerts ('system' for platform-wide alerts)")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of alerts to return (default 50)")),
)

var ToolDismissAlert = mcp.NewTool("dismiss_alert",
	mcp.WithDescription(
		"Dismiss a pending fraud alert after review. Dismissal is final: "+
			"a resolved alert cannot be reopened, but the next scan will "+
			"regenerate it if the condition persists."),
	mcp.WithString("alert_id",
		mcp.Required(),
		mcp.Description("The alert ID from list_alerts (e.g. 'alert_1a2b...')")),
)

var ToolDetectRegion = mcp.NewTool("detect_region",
	mcp.WithDescription(
		"Run region detection for a user, creating their trust record if "+
			"this is first contact. Returns the effective country, currency, "+
			"trust level, and available discount."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The platform user ID")),
)

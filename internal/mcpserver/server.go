// Package mcpserver exposes the trust engine to operator assistants via
// the Model Context Protocol. Tools are thin wrappers over the HTTP API
// so the MCP process needs no database access of its own.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all trust engine tools registered.
func NewMCPServer(cfg Config) (*server.MCPServer, error) {
	client, err := NewEngineClient(cfg)
	if err != nil {
		return nil, err
	}
	s := server.NewMCPServer("trustengine", "1.0.0")
	h := NewHandlers(client)

	s.AddTool(ToolGetTrustScore, h.HandleGetTrustScore)
	s.AddTool(ToolCalculatePrice, h.HandleCalculatePrice)
	s.AddTool(ToolRunFraudScan, h.HandleRunFraudScan)
	s.AddTool(ToolListAlerts, h.HandleListAlerts)
	s.AddTool(ToolDismissAlert, h.HandleDismissAlert)
	s.AddTool(ToolDetectRegion, h.HandleDetectRegion)

	return s, nil
}

// Trustengine MCP Server - Exposes engine operations as MCP tools for LLMs
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mindhaven/trustengine/internal/mcpserver"
)

func main() {
	cfg := mcpserver.Config{
		APIURL: envOrDefault("TRUSTENGINE_API_URL", "http://localhost:8080"),
		APIKey: os.Getenv("TRUSTENGINE_API_KEY"),
	}

	s, err := mcpserver.NewMCPServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "MCP server setup error: %v\n", err)
		os.Exit(1)
	}
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

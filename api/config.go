// Package api provides the relay's HTTP server: the Telegram webhook,
// health check and conversation history inspection.
package api

import "net/http"

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// WebhookSecret, when set, must match the secret token header of every
	// webhook request.
	WebhookSecret string

	// Inspect mounts the history inspection API at /v1/history.
	Inspect bool

	// MCPHandler is mounted at /mcp when non-nil.
	MCPHandler http.Handler

	// APIToken is the bearer token required by the inspection and MCP
	// routes. It must be set when either is enabled.
	APIToken string
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	recentTurnsToolName    = "recent_turns"
	recentTurnsDescription = "List the most recent recorded turns of a user's conversation with the relay, oldest first."

	defaultRecentTurnsLimit = 10
)

// RecentTurnsInput represents the input arguments for the recent_turns tool.
type RecentTurnsInput struct {
	UserID string `json:"user_id" jsonschema:"the user whose turns to list"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of turns to return (default: 10)"`
}

// Turn is one recorded turn.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// RecentTurnsOutput represents the output of the recent_turns tool.
type RecentTurnsOutput struct {
	UserID string `json:"user_id"`
	Turns  []Turn `json:"turns"`
	Count  int    `json:"count"`
}

// handleRecentTurns lists a user's recent turns.
func (s *Server) handleRecentTurns(ctx context.Context, _ *mcp.CallToolRequest, input RecentTurnsInput) (*mcp.CallToolResult, RecentTurnsOutput, error) {
	if input.UserID == "" {
		return errorResult("user_id is required"), RecentTurnsOutput{}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultRecentTurnsLimit
	}

	turns, err := s.config.History.Recent(ctx, input.UserID, limit)
	if err != nil {
		s.config.Logger.Error("MCP recent_turns failed", "user_id", input.UserID, "error", err)
		return errorResult(fmt.Sprintf("Failed to load turns: %v", err)), RecentTurnsOutput{}, nil
	}

	output := RecentTurnsOutput{
		UserID: input.UserID,
		Turns:  make([]Turn, 0, len(turns)),
	}
	for _, t := range turns {
		output.Turns = append(output.Turns, Turn{
			Role:      string(t.Role),
			Content:   t.Content,
			Timestamp: t.Timestamp,
		})
	}
	output.Count = len(output.Turns)

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize turns: %v", err)), RecentTurnsOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

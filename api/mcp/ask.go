package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/relay/pkg/utils"
)

var (
	askToolName    = "ask"
	askDescription = "Ask the relay a question. It searches the web, considers the user's recent conversation, answers with a reasoning model and records the exchange in the user's history."
)

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Message string `json:"message" jsonschema:"the question to answer"`
	UserID  string `json:"user_id" jsonschema:"identifies whose conversation history is used and extended"`
}

// AskOutput represents the output of the ask tool.
type AskOutput struct {
	Reply          string `json:"reply"`
	Model          string `json:"model,omitempty"`
	SearchDegraded bool   `json:"search_degraded"`
}

// handleAsk processes an ask request.
func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	logger := s.config.Logger

	if input.Message == "" || input.UserID == "" {
		return errorResult("message and user_id are required"), AskOutput{}, nil
	}

	logger.Debug("MCP ask request",
		"user_id", input.UserID,
		"message", utils.Truncate(input.Message, 80),
	)

	answer, err := s.config.Asker.Ask(ctx, input.Message, input.UserID)
	if err != nil {
		logger.Error("MCP ask failed", "user_id", input.UserID, "error", err)
		return errorResult(fmt.Sprintf("Failed to answer: %v", err)), AskOutput{}, nil
	}

	output := AskOutput{
		Reply:          answer.Reply,
		Model:          answer.Model,
		SearchDegraded: answer.SearchErr != nil,
	}

	// Tools returning structured content also return it serialized in a
	// TextContent block for older clients.
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize answer: %v", err)), AskOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

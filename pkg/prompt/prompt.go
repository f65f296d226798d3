// Package prompt assembles what the reasoning model sees: the system prompt,
// recent conversation context, the current query and web search results.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/papercomputeco/relay/pkg/storage"
)

const (
	// NoHistoryMarker stands in for the context of a user without turns.
	NoHistoryMarker = "No prior conversation."

	// DefaultContextTurns is how many recent turns are shown to the model.
	DefaultContextTurns = 3
)

// DefaultSystemPrompt instructs the model to answer in four labelled steps.
const DefaultSystemPrompt = `You are an expert assistant that follows a structured process to answer questions.
You have access to the previous conversation so your answers stay coherent and personal.

1. ANALYSIS:
   - Analyze the user's question and the conversation context
   - Identify the key points to answer

2. RESEARCH:
   - Review the web search results provided
   - Identify the relevant information
   - Relate it to earlier conversation when useful

3. SYNTHESIS:
   - Combine your knowledge with the information found
   - Organize the ideas logically
   - Stay consistent with earlier answers

4. ANSWER:
   - Give a clear, structured answer
   - Include references when relevant
   - Keep a professional but friendly tone

Response format:
-------------------
💭 Analysis: [Brief analysis of the question and context]

🔍 Relevant information: [Key points found]

📝 Answer: [Main answer]

🔗 Sources: [Relevant sources, if any]`

// Builder renders a user's recent turns as plain text context.
type Builder struct {
	store storage.Driver
	turns int
}

// NewBuilder creates a Builder reading the last turns from store. A
// non-positive turns falls back to DefaultContextTurns.
func NewBuilder(store storage.Driver, turns int) *Builder {
	if turns <= 0 {
		turns = DefaultContextTurns
	}
	return &Builder{store: store, turns: turns}
}

// ContextFor returns the user's recent turns oldest first, one
// "<Role>: <content>" line each, or NoHistoryMarker when there are none.
func (b *Builder) ContextFor(ctx context.Context, userID string) (string, error) {
	turns, err := b.store.Recent(ctx, userID, b.turns)
	if err != nil {
		return "", fmt.Errorf("load recent turns: %w", err)
	}
	return RenderTurns(turns), nil
}

// RenderTurns formats turns as context lines.
func RenderTurns(turns []*storage.Turn) string {
	if len(turns) == 0 {
		return NoHistoryMarker
	}

	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, RoleLabel(t.Role)+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

// RoleLabel is the speaker label shown to the model for role.
func RoleLabel(role storage.Role) string {
	switch role {
	case storage.RoleUser:
		return "User"
	case storage.RoleAssistant:
		return "Assistant"
	case storage.RoleSystem:
		return "System"
	default:
		return string(role)
	}
}

// UserPayload embeds the prior context, the current query and the search
// results into the single user message sent to the model.
func UserPayload(conversation, query, searchResults string) string {
	return fmt.Sprintf("Previous context:\n%s\n\nCurrent query: %s\n\nWeb search results:\n%s",
		conversation, query, searchResults)
}

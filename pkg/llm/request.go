package llm

// ChatRequest is a provider-agnostic chat completion request.
type ChatRequest struct {
	// Model identifier as the upstream expects it (e.g. "microsoft/mai-ds-r1:free")
	Model string `json:"model"`

	// System prompt. Providers that take it as a message prepend it.
	System string `json:"system,omitempty"`

	// Conversation messages, excluding the system prompt
	Messages []Message `json:"messages"`

	// Sampling parameters
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

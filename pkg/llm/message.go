package llm

// Message is a single chat message. Content is stored as content blocks so
// providers with block-structured APIs map onto it directly.
type Message struct {
	Role    string         `json:"role"` // "system", "user", "assistant"
	Content []ContentBlock `json:"content"`
}

// ContentBlock is one piece of message content.
type ContentBlock struct {
	Type string `json:"type"` // "text"
	Text string `json:"text,omitempty"`
}

// NewTextMessage creates a simple text message with the given role and content.
func NewTextMessage(role, text string) Message {
	return Message{
		Role: role,
		Content: []ContentBlock{
			{Type: "text", Text: text},
		},
	}
}

// GetText returns the concatenated text content from all text blocks in the message.
func (m *Message) GetText() string {
	var result string
	for _, block := range m.Content {
		if block.Type == "text" {
			result += block.Text
		}
	}
	return result
}

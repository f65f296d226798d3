package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/storage"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnRecorded is emitted after the outcome of a query has been
	// written to the history store.
	EventTypeTurnRecorded = "relay.turn.recorded"
)

// Outcome is how a query ended.
type Outcome string

const (
	OutcomeAnswered        Outcome = "answered"
	OutcomeReasoningFailed Outcome = "reasoning_failed"
)

// TurnRecordedEvent is a transport-neutral event payload for the turns
// recorded by one query.
type TurnRecordedEvent struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	EventID       string         `json:"event_id"`
	EmittedAt     time.Time      `json:"emitted_at"`
	Source        EventSource    `json:"source"`
	UserID        string         `json:"user_id"`
	Outcome       Outcome        `json:"outcome"`
	Turns         []storage.Turn `json:"turns"`
	Usage         *llm.Usage     `json:"usage,omitempty"`
	DurationMs    int64          `json:"duration_ms"`

	// SearchDegraded is set when a search failure was replaced by the
	// no-results marker.
	SearchDegraded bool `json:"search_degraded"`
}

// EventSource identifies what produced the turns.
type EventSource struct {
	Service  string `json:"service"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

// NewTurnRecordedEvent returns an event with the envelope fields populated.
func NewTurnRecordedEvent(userID string, outcome Outcome, turns []storage.Turn) *TurnRecordedEvent {
	return &TurnRecordedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnRecorded,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        EventSource{Service: "relay"},
		UserID:        userID,
		Outcome:       outcome,
		Turns:         turns,
	}
}

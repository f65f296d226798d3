package eventstream_test

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/eventstream"
	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/storage"
)

var _ = Describe("Event", func() {
	It("marshals TurnRecordedEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		event := eventstream.TurnRecordedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeTurnRecorded,
			EventID:       "evt_123",
			EmittedAt:     now,
			Source: eventstream.EventSource{
				Service:  "relay",
				Provider: "openrouter",
				Model:    "microsoft/mai-ds-r1:free",
			},
			UserID:  "42",
			Outcome: eventstream.OutcomeAnswered,
			Turns: []storage.Turn{
				{UserID: "42", Role: storage.RoleUser, Content: "capital of France?", Timestamp: now},
				{UserID: "42", Role: storage.RoleAssistant, Content: "📝 Respuesta: Paris.", Timestamp: now},
			},
			Usage:      &llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
			DurationMs: 1200,
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("source"))
		Expect(got).To(HaveKeyWithValue("user_id", "42"))
		Expect(got).To(HaveKeyWithValue("outcome", "answered"))
		Expect(got).To(HaveKey("turns"))
		Expect(got).To(HaveKey("usage"))
		Expect(got).To(HaveKeyWithValue("search_degraded", false))
	})

	It("populates the envelope in NewTurnRecordedEvent", func() {
		event := eventstream.NewTurnRecordedEvent("7", eventstream.OutcomeReasoningFailed, nil)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal(eventstream.EventTypeTurnRecorded))
		_, err := uuid.Parse(event.EventID)
		Expect(err).NotTo(HaveOccurred())
		Expect(event.EmittedAt).To(BeTemporally("~", time.Now(), time.Minute))
		Expect(event.Source.Service).To(Equal("relay"))
		Expect(event.UserID).To(Equal("7"))
		Expect(event.Outcome).To(Equal(eventstream.OutcomeReasoningFailed))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeTurnRecorded).To(Equal("relay.turn.recorded"))
	})

	It("provides ErrNilTurnEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilTurnEvent).NotTo(BeNil())
		Expect(eventstream.ErrNilTurnEvent).To(MatchError("nil turn event"))
	})
})

package anthropic_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/llm/provider"
	"github.com/papercomputeco/relay/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/relay/pkg/logger"
)

var _ = Describe("Anthropic Provider", func() {
	var (
		server   *httptest.Server
		handler  http.HandlerFunc
		p        provider.Provider
		captured map[string]any
		path     string
		calls    atomic.Int32
	)

	BeforeEach(func() {
		captured = nil
		calls.Store(0)
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"id": "msg_1",
				"type": "message",
				"role": "assistant",
				"model": "claude-sonnet-4-5",
				"content": [{"type": "text", "text": "📝 Respuesta: Paris."}],
				"stop_reason": "end_turn",
				"usage": {"input_tokens": 20, "output_tokens": 6}
			}`))
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			path = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&captured)
			handler(w, r)
		}))

		var err error
		p, err = anthropic.New(anthropic.Config{
			APIKey:  "sk-ant-test",
			BaseURL: server.URL,
			Logger:  logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	request := func() *llm.ChatRequest {
		return &llm.ChatRequest{
			Model:       "claude-sonnet-4-5",
			System:      "be helpful",
			Messages:    []llm.Message{llm.NewTextMessage("user", "capital of France?")},
			MaxTokens:   1500,
			Temperature: 0.7,
		}
	}

	It("requires an api key", func() {
		_, err := anthropic.New(anthropic.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("reports its name", func() {
		Expect(p.Name()).To(Equal("anthropic"))
	})

	It("posts to the messages endpoint with the system prompt as a top-level field", func() {
		_, err := p.Complete(context.Background(), request())
		Expect(err).NotTo(HaveOccurred())

		Expect(path).To(Equal("/v1/messages"))
		Expect(captured["model"]).To(Equal("claude-sonnet-4-5"))
		Expect(captured["max_tokens"]).To(BeNumerically("==", 1500))
		Expect(captured["temperature"]).To(BeNumerically("==", 0.7))
		Expect(captured).To(HaveKey("system"))

		messages, ok := captured["messages"].([]any)
		Expect(ok).To(BeTrue())
		Expect(messages).To(HaveLen(1))
		Expect(messages[0]).To(HaveKeyWithValue("role", "user"))
	})

	It("parses text content and usage", func() {
		resp, err := p.Complete(context.Background(), request())
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Message.GetText()).To(Equal("📝 Respuesta: Paris."))
		Expect(resp.StopReason).To(Equal("end_turn"))
		Expect(resp.Usage.PromptTokens).To(Equal(20))
		Expect(resp.Usage.CompletionTokens).To(Equal(6))
		Expect(resp.Usage.TotalTokens).To(Equal(26))
	})

	It("returns a single-attempt upstream error with the body", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
		}

		_, err := p.Complete(context.Background(), request())
		var upstream *llm.UpstreamError
		Expect(errors.As(err, &upstream)).To(BeTrue())
		Expect(upstream.Provider).To(Equal("anthropic"))
		Expect(upstream.StatusCode).To(Equal(http.StatusServiceUnavailable))
		Expect(upstream.Body).To(ContainSubstring("Overloaded"))
		Expect(calls.Load()).To(Equal(int32(1)))
	})
})

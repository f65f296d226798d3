package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/api"
	"github.com/papercomputeco/relay/pkg/agent"
	"github.com/papercomputeco/relay/pkg/llm/provider"
	"github.com/papercomputeco/relay/pkg/logger"
	"github.com/papercomputeco/relay/pkg/search"
	"github.com/papercomputeco/relay/pkg/storage"
	"github.com/papercomputeco/relay/pkg/storage/inmemory"
	"github.com/papercomputeco/relay/pkg/telegram"
	testutils "github.com/papercomputeco/relay/pkg/utils/test"
)

const updateJSON = `{"update_id":1,"message":{"message_id":7,"chat":{"id":42,"type":"private"},"text":"What is the capital of France?"}}`

var _ = Describe("Server", func() {
	var (
		ctx      context.Context
		store    storage.Driver
		searcher *testutils.MockSearcher
		backend  *testutils.MockProvider
		sender   *testutils.MockSender
		config   api.Config
	)

	newServer := func() *api.Server {
		orch, err := agent.New(agent.Config{
			Searcher: searcher,
			Reasoner: provider.NewClient(backend, provider.Params{Model: "test-model", Temperature: 0.7, MaxTokens: 1500}),
			Store:    store,
			Logger:   logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())

		server, err := api.NewServer(config, orch, store, sender, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		return server
	}

	do := func(server *api.Server, req *http.Request) (*http.Response, []byte) {
		resp, err := server.App().Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp, body
	}

	postUpdate := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.NewDriver()
		searcher = testutils.NewMockSearcher(search.Result{Title: "Paris", Link: "https://en.wikipedia.org/wiki/Paris"})
		backend = testutils.NewMockProvider("📝 Answer: Paris.")
		sender = testutils.NewMockSender()
		config = api.Config{ListenAddr: ":0"}
	})

	Describe("NewServer", func() {
		It("requires its collaborators", func() {
			_, err := api.NewServer(config, nil, store, sender, nil)
			Expect(err).To(MatchError(ContainSubstring("asker")))
		})
	})

	Describe("GET /ping", func() {
		It("returns pong", func() {
			resp, body := do(newServer(), httptest.NewRequest(http.MethodGet, "/ping", nil))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(string(body)).To(Equal(`"pong"`))
		})
	})

	Describe("POST /", func() {
		It("answers the message and relays the reply to the chat", func() {
			resp, body := do(newServer(), postUpdate(updateJSON))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var out api.WebhookResponse
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out.OK).To(BeTrue())

			Expect(sender.Sent()).To(Equal([]testutils.SentMessage{
				{ChatID: 42, Text: "📝 Answer: Paris."},
			}))
			Expect(searcher.Queries).To(ConsistOf("What is the capital of France?"))

			turns, err := store.Recent(ctx, "42", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].Role).To(Equal(storage.RoleUser))
			Expect(turns[1].Role).To(Equal(storage.RoleAssistant))
		})

		It("rejects an update without text", func() {
			resp, _ := do(newServer(), postUpdate(`{"update_id":1,"message":{"message_id":7,"chat":{"id":42}}}`))
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(sender.Sent()).To(BeEmpty())
		})

		It("rejects an update without a chat", func() {
			resp, _ := do(newServer(), postUpdate(`{"update_id":1,"message":{"message_id":7,"text":"hi"}}`))
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(sender.Sent()).To(BeEmpty())
		})

		It("rejects malformed JSON", func() {
			resp, body := do(newServer(), postUpdate(`{not json`))
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(string(body)).To(ContainSubstring("invalid update payload"))
		})

		It("sends an apology and fails when the store is unavailable", func() {
			store = testutils.NewFailingDriver(errors.New("disk gone"))
			resp, body := do(newServer(), postUpdate(updateJSON))
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(string(body)).NotTo(ContainSubstring("disk gone"))
			Expect(sender.Sent()).To(Equal([]testutils.SentMessage{
				{ChatID: 42, Text: api.ApologyMessage},
			}))
		})

		It("fails when the reply cannot be delivered", func() {
			sender.Err = &telegram.DeliveryError{Method: "sendMessage", StatusCode: 403, Description: "Forbidden: bot was blocked by the user"}
			resp, body := do(newServer(), postUpdate(updateJSON))
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(string(body)).To(ContainSubstring("failed to deliver reply"))
		})

		Context("with a webhook secret", func() {
			BeforeEach(func() {
				config.WebhookSecret = "s3cret"
			})

			It("rejects requests without the secret header", func() {
				resp, _ := do(newServer(), postUpdate(updateJSON))
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				Expect(searcher.Queries).To(BeEmpty())
			})

			It("accepts requests carrying the secret header", func() {
				req := postUpdate(updateJSON)
				req.Header.Set(telegram.SecretTokenHeader, "s3cret")
				resp, _ := do(newServer(), req)
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
			})
		})
	})

	Describe("GET /v1/history/:user_id", func() {
		const token = "inspect-token"

		get := func(path string) *http.Request {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			return req
		}

		BeforeEach(func() {
			config.Inspect = true
			config.APIToken = token
			for _, content := range []string{"one", "two", "three"} {
				_, err := store.Record(ctx, "42", storage.RoleUser, content)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("returns recent turns oldest first", func() {
			resp, body := do(newServer(), get("/v1/history/42?limit=2"))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var out api.HistoryResponse
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out.UserID).To(Equal("42"))
			Expect(out.Count).To(Equal(2))
			Expect(out.Turns[0].Content).To(Equal("two"))
			Expect(out.Turns[1].Content).To(Equal("three"))
		})

		It("returns an empty list for an unknown user", func() {
			resp, body := do(newServer(), get("/v1/history/nobody"))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var out api.HistoryResponse
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out.Turns).To(BeEmpty())
			Expect(out.Count).To(BeZero())
		})

		It("rejects an invalid limit", func() {
			resp, _ := do(newServer(), get("/v1/history/42?limit=zero"))
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("reports an unavailable store", func() {
			store = testutils.NewFailingDriver(errors.New("disk gone"))
			resp, _ := do(newServer(), get("/v1/history/42"))
			Expect(resp.StatusCode).To(Equal(http.StatusServiceUnavailable))
		})

		Context("without a valid API token", func() {
			It("rejects a request with no Authorization header", func() {
				req := httptest.NewRequest(http.MethodGet, "/v1/history/42", nil)
				req.Header.Set("Origin", "https://evil.example")
				resp, body := do(newServer(), req)

				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(BeEmpty())
				Expect(string(body)).NotTo(ContainSubstring("two"))
			})

			It("rejects a wrong token", func() {
				req := httptest.NewRequest(http.MethodGet, "/v1/history/42", nil)
				req.Header.Set("Authorization", "Bearer guess")
				resp, body := do(newServer(), req)

				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				var out api.ErrorResponse
				Expect(json.Unmarshal(body, &out)).To(Succeed())
				Expect(out.Error).To(Equal("missing or invalid API token"))
			})

			It("ignores the webhook secret as a credential", func() {
				config.WebhookSecret = "s3cret"
				req := httptest.NewRequest(http.MethodGet, "/v1/history/42", nil)
				req.Header.Set(telegram.SecretTokenHeader, "s3cret")
				resp, _ := do(newServer(), req)
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			})
		})

		Context("when inspection is disabled", func() {
			BeforeEach(func() {
				config.Inspect = false
			})

			It("does not serve history even with the token", func() {
				resp, _ := do(newServer(), get("/v1/history/42"))
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			})
		})

		It("cannot be enabled without an API token", func() {
			config.APIToken = ""
			orch, err := agent.New(agent.Config{
				Searcher: searcher,
				Reasoner: provider.NewClient(backend, provider.Params{Model: "test-model"}),
				Store:    store,
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = api.NewServer(config, orch, store, sender, nil)
			Expect(err).To(MatchError(ContainSubstring("API token")))
		})
	})

	Describe("/mcp", func() {
		teapot := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})

		BeforeEach(func() {
			config.MCPHandler = teapot
			config.APIToken = "mcp-token"
		})

		It("mounts the configured handler behind the API token", func() {
			req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}"))
			req.Header.Set("Authorization", "Bearer mcp-token")
			resp, _ := do(newServer(), req)
			Expect(resp.StatusCode).To(Equal(http.StatusTeapot))
		})

		It("rejects unauthenticated tool calls", func() {
			resp, _ := do(newServer(), httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}")))
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(backend.Requests).To(BeEmpty())
		})
	})
})

// Package agent answers a user's message: it searches the web, pulls the
// user's recent conversation, asks the reasoning model and records the
// exchange.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/papercomputeco/relay/pkg/agent/worker"
	"github.com/papercomputeco/relay/pkg/eventstream"
	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/llm/provider"
	"github.com/papercomputeco/relay/pkg/prompt"
	"github.com/papercomputeco/relay/pkg/search"
	"github.com/papercomputeco/relay/pkg/storage"
	"github.com/papercomputeco/relay/pkg/utils"
)

// SystemTurnPrefix starts the system turn recorded when reasoning fails.
const SystemTurnPrefix = "reasoning upstream error: "

// Config wires an Orchestrator to its collaborators.
type Config struct {
	Searcher search.Searcher
	Reasoner *provider.Client
	Store    storage.Driver

	// ContextTurns is how many recent turns the model sees. Defaults to 3.
	ContextTurns int

	// SystemPrompt defaults to prompt.DefaultSystemPrompt.
	SystemPrompt string

	// StrictSearch fails Ask on a search failure instead of continuing
	// with the no-results marker.
	StrictSearch bool

	// Events is optional; when set every recorded outcome is enqueued.
	Events *worker.Pool

	Logger *slog.Logger
}

// Answer is a successful reply.
type Answer struct {
	Reply string
	Model string
	Usage *llm.Usage

	// SearchErr is the search failure that was replaced by the no-results
	// marker, if any.
	SearchErr error

	Duration time.Duration
}

// Orchestrator runs the relay pipeline for one message at a time. It is
// safe for concurrent use; turns of concurrent requests for the same user
// may interleave.
type Orchestrator struct {
	searcher     search.Searcher
	reasoner     *provider.Client
	store        storage.Driver
	builder      *prompt.Builder
	systemPrompt string
	strictSearch bool
	events       *worker.Pool
	logger       *slog.Logger
}

// New validates cfg and creates an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	switch {
	case cfg.Searcher == nil:
		return nil, errors.New("agent: searcher is required")
	case cfg.Reasoner == nil:
		return nil, errors.New("agent: reasoner is required")
	case cfg.Store == nil:
		return nil, errors.New("agent: store is required")
	}

	o := &Orchestrator{
		searcher:     cfg.Searcher,
		reasoner:     cfg.Reasoner,
		store:        cfg.Store,
		builder:      prompt.NewBuilder(cfg.Store, cfg.ContextTurns),
		systemPrompt: cfg.SystemPrompt,
		strictSearch: cfg.StrictSearch,
		events:       cfg.Events,
		logger:       cfg.Logger,
	}
	if o.systemPrompt == "" {
		o.systemPrompt = prompt.DefaultSystemPrompt
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return o, nil
}

// Ask answers message for userID.
//
// On success the user message and the reply are recorded, in that order.
// When the reasoning call fails a single system turn describing the failure
// is recorded and the reasoning error is returned. History store failures
// are always returned.
func (o *Orchestrator) Ask(ctx context.Context, message, userID string) (*Answer, error) {
	if userID == "" {
		return nil, storage.ErrEmptyUserID
	}

	start := time.Now()
	log := o.logger.With("user_id", userID)

	var (
		results   []search.Result
		searchErr error
		history   string
		ctxErr    error
		wg        conc.WaitGroup
	)
	wg.Go(func() {
		results, searchErr = o.searcher.Search(ctx, message)
	})
	wg.Go(func() {
		history, ctxErr = o.builder.ContextFor(ctx, userID)
	})
	wg.Wait()

	if ctxErr != nil {
		log.Error("loading conversation context failed", "error", ctxErr)
		return nil, fmt.Errorf("build context: %w", ctxErr)
	}

	answer := &Answer{}
	searchText := search.Format(results)
	if searchErr != nil {
		if o.strictSearch {
			log.Error("web search failed", "error", searchErr)
			return nil, fmt.Errorf("web search: %w", searchErr)
		}
		log.Warn("web search failed, continuing without results", "error", searchErr)
		answer.SearchErr = searchErr
		searchText = search.NoResultsMarker
	}

	log.Debug("asking reasoning model",
		"query", utils.Truncate(message, 80),
		"results", len(results),
		"provider", o.reasoner.Name(),
	)

	// Writes must land even if the caller goes away mid-request.
	recordCtx := context.WithoutCancel(ctx)

	resp, err := o.reasoner.Chat(ctx, o.systemPrompt, prompt.UserPayload(history, message, searchText))
	if err != nil {
		log.Error("reasoning call failed", "error", err)
		reasonErr := fmt.Errorf("reasoning: %w", err)

		turn, recErr := o.store.Record(recordCtx, userID, storage.RoleSystem, SystemTurnPrefix+err.Error())
		if recErr != nil {
			log.Error("recording system turn failed", "error", recErr)
			return nil, errors.Join(reasonErr, fmt.Errorf("record system turn: %w", recErr))
		}

		o.publish(userID, eventstream.OutcomeReasoningFailed, []storage.Turn{*turn}, nil, answer.SearchErr != nil, start)
		return nil, reasonErr
	}

	answer.Reply = resp.Message.GetText()
	answer.Model = resp.Model
	answer.Usage = resp.Usage

	userTurn, err := o.store.Record(recordCtx, userID, storage.RoleUser, message)
	if err != nil {
		log.Error("recording user turn failed", "error", err)
		return nil, fmt.Errorf("record user turn: %w", err)
	}
	assistantTurn, err := o.store.Record(recordCtx, userID, storage.RoleAssistant, answer.Reply)
	if err != nil {
		log.Error("recording assistant turn failed", "error", err)
		return nil, fmt.Errorf("record assistant turn: %w", err)
	}

	answer.Duration = time.Since(start)
	log.Info("answered",
		"model", answer.Model,
		"duration", answer.Duration,
		"search_degraded", answer.SearchErr != nil,
	)

	o.publish(userID, eventstream.OutcomeAnswered, []storage.Turn{*userTurn, *assistantTurn}, answer.Usage, answer.SearchErr != nil, start)
	return answer, nil
}

// Recent returns the user's newest limit turns, oldest first.
func (o *Orchestrator) Recent(ctx context.Context, userID string, limit int) ([]*storage.Turn, error) {
	return o.store.Recent(ctx, userID, limit)
}

// Reasoner returns the reasoning client, whose params may be swapped at
// runtime.
func (o *Orchestrator) Reasoner() *provider.Client {
	return o.reasoner
}

func (o *Orchestrator) publish(userID string, outcome eventstream.Outcome, turns []storage.Turn, usage *llm.Usage, degraded bool, start time.Time) {
	if o.events == nil {
		return
	}

	event := eventstream.NewTurnRecordedEvent(userID, outcome, turns)
	event.Source.Provider = o.reasoner.Name()
	event.Source.Model = o.reasoner.Params().Model
	event.Usage = usage
	event.DurationMs = time.Since(start).Milliseconds()
	event.SearchDegraded = degraded

	o.events.Enqueue(worker.Job{Event: event})
}

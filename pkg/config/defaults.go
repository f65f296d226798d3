package config

import "time"

const (
	defaultListen = ":8000"

	defaultTelegramAPIBase = "https://api.telegram.org"

	defaultSearchEndpoint   = "https://serpapi.com/search"
	defaultSearchEngine     = "google"
	defaultSearchNumResults = 3

	defaultReasoningProvider    = "openrouter"
	defaultReasoningEndpoint    = "https://openrouter.ai/api/v1/chat/completions"
	defaultReasoningModel       = "microsoft/mai-ds-r1:free"
	defaultReasoningTemperature = 0.7
	defaultReasoningMaxTokens   = 1500

	defaultUpstreamTimeout = 30 * time.Second

	defaultHistoryCap          = 10
	defaultHistoryContextTurns = 3

	defaultEventsProvider = "none"
	defaultEventsBrokers  = "localhost:9092"
	defaultEventsTopic    = "relay.turns"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen: defaultListen,
		},
		Telegram: TelegramConfig{
			APIBase: defaultTelegramAPIBase,
		},
		Search: SearchConfig{
			Endpoint:   defaultSearchEndpoint,
			Engine:     defaultSearchEngine,
			NumResults: defaultSearchNumResults,
		},
		Reasoning: ReasoningConfig{
			Provider:    defaultReasoningProvider,
			Endpoint:    defaultReasoningEndpoint,
			Model:       defaultReasoningModel,
			Temperature: defaultReasoningTemperature,
			MaxTokens:   defaultReasoningMaxTokens,
		},
		Upstream: UpstreamConfig{
			Timeout: defaultUpstreamTimeout.String(),
		},
		History: HistoryConfig{
			Cap:          defaultHistoryCap,
			ContextTurns: defaultHistoryContextTurns,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Brokers:  defaultEventsBrokers,
			Topic:    defaultEventsTopic,
		},
	}
}

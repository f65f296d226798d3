package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config is the relay configuration. The TOML layout mirrors config.toml in
// the .relay/ directory. Secret fields are read from the environment or
// credentials.toml and are not exposed through `relay config set`.
type Config struct {
	Version   int             `toml:"version"`
	Server    ServerConfig    `toml:"server"`
	Telegram  TelegramConfig  `toml:"telegram"`
	Search    SearchConfig    `toml:"search"`
	Reasoning ReasoningConfig `toml:"reasoning"`
	Upstream  UpstreamConfig  `toml:"upstream"`
	Storage   StorageConfig   `toml:"storage"`
	History   HistoryConfig   `toml:"history"`
	Events    EventsConfig    `toml:"events"`
}

// ServerConfig holds the webhook server settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`
	MCP    bool   `toml:"mcp,omitempty"`

	// Inspect mounts the history inspection API.
	Inspect bool `toml:"inspect,omitempty"`

	// APIToken is the bearer token for the inspection and MCP routes.
	APIToken string `toml:"api_token,omitempty"`
}

// TelegramConfig holds the Bot API settings.
type TelegramConfig struct {
	Token         string `toml:"token,omitempty"`
	APIBase       string `toml:"api_base,omitempty"`
	WebhookURL    string `toml:"webhook_url,omitempty"`
	WebhookSecret string `toml:"webhook_secret,omitempty"`
}

// SearchConfig holds the web search upstream settings. When Strict is set a
// failed search aborts the request instead of degrading to "no results".
type SearchConfig struct {
	APIKey     string `toml:"api_key,omitempty"`
	Endpoint   string `toml:"endpoint,omitempty"`
	Engine     string `toml:"engine,omitempty"`
	NumResults uint   `toml:"num_results,omitempty"`
	Strict     bool   `toml:"strict,omitempty"`
}

// ReasoningConfig holds the language model upstream settings.
type ReasoningConfig struct {
	Provider     string  `toml:"provider,omitempty"`
	APIKey       string  `toml:"api_key,omitempty"`
	Endpoint     string  `toml:"endpoint,omitempty"`
	Model        string  `toml:"model,omitempty"`
	Temperature  float64 `toml:"temperature,omitempty"`
	MaxTokens    uint    `toml:"max_tokens,omitempty"`
	SystemPrompt string  `toml:"system_prompt,omitempty"`
}

// UpstreamConfig bounds every outbound HTTP call.
type UpstreamConfig struct {
	Timeout string `toml:"timeout,omitempty"`
}

// StorageConfig selects the history store. DatabaseURL wins over SQLitePath;
// with neither set history is kept in memory.
type StorageConfig struct {
	DatabaseURL string `toml:"database_url,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
}

// HistoryConfig holds the retention and context window sizes.
type HistoryConfig struct {
	Cap          uint `toml:"cap,omitempty"`
	ContextTurns uint `toml:"context_turns,omitempty"`
}

// EventsConfig holds the turn event publisher settings.
type EventsConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// UpstreamTimeout parses Upstream.Timeout, falling back to the default.
func (c *Config) UpstreamTimeout() time.Duration {
	d, err := time.ParseDuration(c.Upstream.Timeout)
	if err != nil || d <= 0 {
		return defaultUpstreamTimeout
	}
	return d
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

// configKeys is the authoritative map of all user-settable config keys.
// Secrets are deliberately absent; see `relay auth`.
var configKeys = map[string]configKeyInfo{
	"server.listen":           stringKey(func(c *Config) *string { return &c.Server.Listen }),
	"server.mcp":              boolKey("server.mcp", func(c *Config) *bool { return &c.Server.MCP }),
	"server.inspect":          boolKey("server.inspect", func(c *Config) *bool { return &c.Server.Inspect }),
	"telegram.api_base":       stringKey(func(c *Config) *string { return &c.Telegram.APIBase }),
	"telegram.webhook_url":    stringKey(func(c *Config) *string { return &c.Telegram.WebhookURL }),
	"search.endpoint":         stringKey(func(c *Config) *string { return &c.Search.Endpoint }),
	"search.engine":           stringKey(func(c *Config) *string { return &c.Search.Engine }),
	"search.num_results":      uintKey("search.num_results", func(c *Config) *uint { return &c.Search.NumResults }),
	"search.strict":           boolKey("search.strict", func(c *Config) *bool { return &c.Search.Strict }),
	"reasoning.provider":      stringKey(func(c *Config) *string { return &c.Reasoning.Provider }),
	"reasoning.endpoint":      stringKey(func(c *Config) *string { return &c.Reasoning.Endpoint }),
	"reasoning.model":         stringKey(func(c *Config) *string { return &c.Reasoning.Model }),
	"reasoning.max_tokens":    uintKey("reasoning.max_tokens", func(c *Config) *uint { return &c.Reasoning.MaxTokens }),
	"reasoning.system_prompt": stringKey(func(c *Config) *string { return &c.Reasoning.SystemPrompt }),
	"reasoning.temperature": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Reasoning.Temperature, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for reasoning.temperature: %w", err)
			}
			c.Reasoning.Temperature = f
			return nil
		},
	},
	"upstream.timeout": {
		get: func(c *Config) string { return c.Upstream.Timeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for upstream.timeout: %w", err)
			}
			c.Upstream.Timeout = v
			return nil
		},
	},
	"storage.database_url":  stringKey(func(c *Config) *string { return &c.Storage.DatabaseURL }),
	"storage.sqlite_path":   stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"history.cap":           uintKey("history.cap", func(c *Config) *uint { return &c.History.Cap }),
	"history.context_turns": uintKey("history.context_turns", func(c *Config) *uint { return &c.History.ContextTurns }),
	"events.provider":       stringKey(func(c *Config) *string { return &c.Events.Provider }),
	"events.brokers":        stringKey(func(c *Config) *string { return &c.Events.Brokers }),
	"events.topic":          stringKey(func(c *Config) *string { return &c.Events.Topic }),
}

// orderedKeys follows the TOML section layout for `relay config list`.
var orderedKeys = []string{
	"server.listen",
	"server.mcp",
	"server.inspect",
	"telegram.api_base",
	"telegram.webhook_url",
	"search.endpoint",
	"search.engine",
	"search.num_results",
	"search.strict",
	"reasoning.provider",
	"reasoning.endpoint",
	"reasoning.model",
	"reasoning.temperature",
	"reasoning.max_tokens",
	"reasoning.system_prompt",
	"upstream.timeout",
	"storage.database_url",
	"storage.sqlite_path",
	"history.cap",
	"history.context_turns",
	"events.provider",
	"events.brokers",
	"events.topic",
}

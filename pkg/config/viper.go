package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/relay/pkg/dotdir"
)

const envPrefix = "RELAY"

// envAliases binds the deployment environment names used by hosted
// instances of the bot alongside the RELAY_ prefixed names.
var envAliases = map[string][]string{
	"telegram.token":        {"TELEGRAM_BOT_TOKEN"},
	"telegram.webhook_url":  {"WEBHOOK_URL"},
	"search.api_key":        {"SERPAPI_API_KEY"},
	"storage.database_url":  {"DATABASE_URL"},
	"deploy.host":           {"HOST"},
	"deploy.port":           {"PORT"},
	"deploy.render":         {"RENDER"},
	"deploy.render_service": {"RENDER_SERVICE_NAME"},
}

// InitViper creates and returns a configured *viper.Viper.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (RELAY_SERVER_LISTEN, TELEGRAM_BOT_TOKEN, etc.).
//     The reasoning key is read from the variable matching reasoning.provider.
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	target, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, aliases := range envAliases {
		names := append([]string{envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	return v, nil
}

// FromViper materialises a Config from v, applying the deployment
// conventions for HOST/PORT and Render-hosted webhook URLs.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		Server: ServerConfig{
			Listen:   v.GetString("server.listen"),
			MCP:      v.GetBool("server.mcp"),
			Inspect:  v.GetBool("server.inspect"),
			APIToken: v.GetString("server.api_token"),
		},
		Telegram: TelegramConfig{
			Token:         v.GetString("telegram.token"),
			APIBase:       v.GetString("telegram.api_base"),
			WebhookURL:    v.GetString("telegram.webhook_url"),
			WebhookSecret: v.GetString("telegram.webhook_secret"),
		},
		Search: SearchConfig{
			APIKey:     v.GetString("search.api_key"),
			Endpoint:   v.GetString("search.endpoint"),
			Engine:     v.GetString("search.engine"),
			NumResults: v.GetUint("search.num_results"),
			Strict:     v.GetBool("search.strict"),
		},
		Reasoning: ReasoningConfig{
			Provider:     v.GetString("reasoning.provider"),
			Endpoint:     v.GetString("reasoning.endpoint"),
			Model:        v.GetString("reasoning.model"),
			Temperature:  v.GetFloat64("reasoning.temperature"),
			MaxTokens:    v.GetUint("reasoning.max_tokens"),
			SystemPrompt: v.GetString("reasoning.system_prompt"),
		},
		Upstream: UpstreamConfig{
			Timeout: v.GetString("upstream.timeout"),
		},
		Storage: StorageConfig{
			DatabaseURL: v.GetString("storage.database_url"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
		},
		History: HistoryConfig{
			Cap:          v.GetUint("history.cap"),
			ContextTurns: v.GetUint("history.context_turns"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  v.GetString("events.brokers"),
			Topic:    v.GetString("events.topic"),
		},
	}

	cfg.Reasoning.APIKey = reasoningAPIKey(v, cfg.Reasoning.Provider)

	host, port := v.GetString("deploy.host"), v.GetString("deploy.port")
	if cfg.Server.Listen == defaultListen && (host != "" || port != "") {
		if host == "" {
			host = "0.0.0.0"
		}
		if port == "" {
			port = "8000"
		}
		cfg.Server.Listen = net.JoinHostPort(host, port)
	}

	if cfg.Telegram.WebhookURL == "" && v.GetBool("deploy.render") {
		if service := v.GetString("deploy.render_service"); service != "" {
			cfg.Telegram.WebhookURL = "https://" + service + ".onrender.com"
		}
	}

	applyDefaults(cfg)

	return cfg
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.mcp", d.Server.MCP)
	v.SetDefault("server.inspect", d.Server.Inspect)

	v.SetDefault("telegram.api_base", d.Telegram.APIBase)

	v.SetDefault("search.endpoint", d.Search.Endpoint)
	v.SetDefault("search.engine", d.Search.Engine)
	v.SetDefault("search.num_results", d.Search.NumResults)
	v.SetDefault("search.strict", d.Search.Strict)

	v.SetDefault("reasoning.provider", d.Reasoning.Provider)
	v.SetDefault("reasoning.endpoint", d.Reasoning.Endpoint)
	v.SetDefault("reasoning.model", d.Reasoning.Model)
	v.SetDefault("reasoning.temperature", d.Reasoning.Temperature)
	v.SetDefault("reasoning.max_tokens", d.Reasoning.MaxTokens)

	v.SetDefault("upstream.timeout", d.Upstream.Timeout)

	v.SetDefault("storage.database_url", d.Storage.DatabaseURL)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)

	v.SetDefault("history.cap", d.History.Cap)
	v.SetDefault("history.context_turns", d.History.ContextTurns)

	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
}

package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --model
// on both "relay serve" and "relay ask").
type Flag struct {
	// Name is the long flag name (e.g. "model").
	Name string

	// Shorthand is the one-letter short flag (e.g. "m"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "reasoning.model").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag, AddBoolFlag
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen         = "listen"
	FlagMCP            = "mcp"
	FlagInspect        = "inspect"
	FlagWebhookURL     = "webhook-url"
	FlagSQLite         = "sqlite"
	FlagDatabaseURL    = "database-url"
	FlagProvider       = "provider"
	FlagModel          = "model"
	FlagMaxTokens      = "max-tokens"
	FlagStrictSearch   = "strict-search"
	FlagEventsProvider = "events-provider"
	FlagEventsBrokers  = "events-brokers"
	FlagHistoryCap     = "history-cap"
)

// RelayFlags is the registry shared by every relay subcommand.
var RelayFlags = FlagSet{
	FlagListen:         {Name: "listen", Shorthand: "l", ViperKey: "server.listen", Description: "Address for the webhook server to listen on"},
	FlagMCP:            {Name: "mcp", ViperKey: "server.mcp", Description: "Expose the MCP tool endpoint at /mcp (requires server.api_token)"},
	FlagInspect:        {Name: "inspect", ViperKey: "server.inspect", Description: "Expose the history inspection API at /v1/history (requires server.api_token)"},
	FlagWebhookURL:     {Name: "webhook-url", ViperKey: "telegram.webhook_url", Description: "Public URL registered with Telegram as the webhook"},
	FlagSQLite:         {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to a sqlite database for conversation history"},
	FlagDatabaseURL:    {Name: "database-url", ViperKey: "storage.database_url", Description: "Database URL for conversation history (postgres:// or sqlite://)"},
	FlagProvider:       {Name: "provider", Shorthand: "p", ViperKey: "reasoning.provider", Description: "Reasoning provider (openrouter, openai, anthropic)"},
	FlagModel:          {Name: "model", Shorthand: "m", ViperKey: "reasoning.model", Description: "Model identifier sent to the reasoning provider"},
	FlagMaxTokens:      {Name: "max-tokens", ViperKey: "reasoning.max_tokens", Description: "Maximum output tokens per reply"},
	FlagStrictSearch:   {Name: "strict-search", ViperKey: "search.strict", Description: "Fail the request when web search fails instead of continuing without results"},
	FlagEventsProvider: {Name: "events-provider", ViperKey: "events.provider", Description: "Turn event publisher (none, kafka)"},
	FlagEventsBrokers:  {Name: "events-brokers", ViperKey: "events.brokers", Description: "Comma separated kafka brokers"},
	FlagHistoryCap:     {Name: "history-cap", ViperKey: "history.cap", Description: "Turns retained per user"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultViper().GetBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaultViper() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}

func defaultString(viperKey string) string {
	return defaultViper().GetString(viperKey)
}

func defaultUint(viperKey string) uint {
	return defaultViper().GetUint(viperKey)
}

package config

// Requirement names a group of settings a command cannot run without.
type Requirement int

const (
	RequireTelegram Requirement = iota
	RequireSearch
	RequireReasoning

	// RequireAPIToken guards the inspection and MCP routes.
	RequireAPIToken
)

// Validate returns a *MissingError for the first required setting that is
// empty.
func (c *Config) Validate(reqs ...Requirement) error {
	for _, req := range reqs {
		switch req {
		case RequireTelegram:
			if c.Telegram.Token == "" {
				return &MissingError{Key: "telegram.token", EnvVars: []string{"RELAY_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN"}}
			}
		case RequireSearch:
			if c.Search.APIKey == "" {
				return &MissingError{Key: "search.api_key", EnvVars: []string{"RELAY_SEARCH_API_KEY", "SERPAPI_API_KEY"}}
			}
		case RequireReasoning:
			if c.Reasoning.APIKey == "" {
				return &MissingError{Key: "reasoning.api_key", EnvVars: []string{reasoningOverrideEnvVar, reasoningEnvVar(c.Reasoning.Provider)}}
			}
		case RequireAPIToken:
			if c.Server.APIToken == "" {
				return &MissingError{Key: "server.api_token", EnvVars: []string{"RELAY_SERVER_API_TOKEN"}}
			}
		}
	}
	return nil
}

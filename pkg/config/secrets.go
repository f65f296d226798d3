package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// reasoningOverrideEnvVar sets the reasoning key for any provider.
const reasoningOverrideEnvVar = envPrefix + "_REASONING_API_KEY"

// reasoningEnvVar is the deployment variable holding the key for provider.
func reasoningEnvVar(provider string) string {
	if provider == "anthropic" {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENROUTER_API_KEY"
}

// reasoningCredential is the credentials.toml service for provider.
func reasoningCredential(provider string) string {
	if provider == "anthropic" {
		return "anthropic"
	}
	return "openrouter"
}

// reasoningAPIKey resolves the reasoning key for provider. Only the
// variable belonging to provider is consulted, so a key issued for one
// upstream is never sent to another.
func reasoningAPIKey(v *viper.Viper, provider string) string {
	if os.Getenv(reasoningOverrideEnvVar) == "" {
		if key := os.Getenv(reasoningEnvVar(provider)); key != "" {
			return key
		}
	}
	return v.GetString("reasoning.api_key")
}

// SecretSource looks up a stored secret by service name. credentials.Manager
// satisfies it.
type SecretSource interface {
	GetKey(service string) (string, error)
}

// ApplySecrets fills empty secrets from src. Services follow the names used
// by `relay auth`.
func (c *Config) ApplySecrets(src SecretSource) error {
	fill := func(dst *string, service string) error {
		if *dst != "" {
			return nil
		}
		key, err := src.GetKey(service)
		if err != nil {
			return fmt.Errorf("reading %s credential: %w", service, err)
		}
		*dst = key
		return nil
	}

	if err := fill(&c.Telegram.Token, "telegram"); err != nil {
		return err
	}
	if err := fill(&c.Search.APIKey, "serpapi"); err != nil {
		return err
	}
	return fill(&c.Reasoning.APIKey, reasoningCredential(c.Reasoning.Provider))
}

// Package bootstrap turns resolved configuration into the relay's runtime
// components. It is shared by every command that runs the pipeline.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/relay/pkg/config"
	"github.com/papercomputeco/relay/pkg/credentials"
	"github.com/papercomputeco/relay/pkg/llm/provider"
	"github.com/papercomputeco/relay/pkg/search/serpapi"
	"github.com/papercomputeco/relay/pkg/storage"
	storageutils "github.com/papercomputeco/relay/pkg/storage/utils"
	"github.com/papercomputeco/relay/pkg/telegram"
)

// LoadConfig resolves configuration for cmd. flagKeys names the registry
// flags cmd registered; they are bound above env and config.toml. Secrets
// still empty afterwards are read from credentials.toml.
func LoadConfig(cmd *cobra.Command, flagKeys []string) (*viper.Viper, *config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.RelayFlags, flagKeys)

	cfg := config.FromViper(v)

	creds, err := credentials.NewManager(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading credentials: %w", err)
	}
	if err := cfg.ApplySecrets(creds); err != nil {
		return nil, nil, err
	}

	return v, cfg, nil
}

// ReasoningParams returns the per-request model parameters in cfg.
func ReasoningParams(cfg *config.Config) provider.Params {
	return provider.Params{
		Model:       cfg.Reasoning.Model,
		Temperature: cfg.Reasoning.Temperature,
		MaxTokens:   int(cfg.Reasoning.MaxTokens),
	}
}

// NewReasoner creates the reasoning client for the configured provider.
func NewReasoner(cfg *config.Config, logger *slog.Logger) (*provider.Client, error) {
	p, err := provider.New(cfg.Reasoning.Provider, provider.Options{
		APIKey:   cfg.Reasoning.APIKey,
		Endpoint: cfg.Reasoning.Endpoint,
		Timeout:  cfg.UpstreamTimeout(),
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating reasoning provider: %w", err)
	}
	return provider.NewClient(p, ReasoningParams(cfg)), nil
}

// NewSearcher creates the web search client.
func NewSearcher(cfg *config.Config, logger *slog.Logger) (*serpapi.Client, error) {
	return serpapi.New(serpapi.Config{
		APIKey:     cfg.Search.APIKey,
		Endpoint:   cfg.Search.Endpoint,
		Engine:     cfg.Search.Engine,
		NumResults: int(cfg.Search.NumResults),
		Timeout:    cfg.UpstreamTimeout(),
		Logger:     logger,
	})
}

// NewStore opens the configured history store.
func NewStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Driver, error) {
	driver, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{
		DatabaseURL: cfg.Storage.DatabaseURL,
		SQLitePath:  cfg.Storage.SQLitePath,
		Retention:   int(cfg.History.Cap),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening history store: %w", err)
	}
	return driver, nil
}

// NewTelegram creates the Bot API client.
func NewTelegram(cfg *config.Config, logger *slog.Logger) (*telegram.Client, error) {
	return telegram.New(telegram.Config{
		Token:   cfg.Telegram.Token,
		APIBase: cfg.Telegram.APIBase,
		Timeout: cfg.UpstreamTimeout(),
		Logger:  logger,
	})
}

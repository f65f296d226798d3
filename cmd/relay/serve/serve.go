// Package servecmder provides the serve command that runs the webhook server.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/relay/api"
	"github.com/papercomputeco/relay/api/mcp"
	"github.com/papercomputeco/relay/cmd/relay/bootstrap"
	"github.com/papercomputeco/relay/pkg/agent"
	"github.com/papercomputeco/relay/pkg/agent/worker"
	"github.com/papercomputeco/relay/pkg/config"
	eventstreamutils "github.com/papercomputeco/relay/pkg/eventstream/utils"
	"github.com/papercomputeco/relay/pkg/llm/provider"
	"github.com/papercomputeco/relay/pkg/logger"
	"github.com/papercomputeco/relay/pkg/telegram"
)

type ServeCommander struct {
	debug   bool
	json    bool
	logFile string

	listen         string
	mcp            bool
	inspect        bool
	webhookURL     string
	sqlitePath     string
	databaseURL    string
	providerType   string
	model          string
	maxTokens      uint
	strictSearch   bool
	eventsProvider string
	eventsBrokers  string
	historyCap     uint

	logger *slog.Logger
}

const serveLongDesc string = `Run the relay webhook server.

The server accepts Telegram updates on POST /, answers each message with a
web search and the reasoning model, and posts the reply back to the chat.
When a webhook URL is configured it is registered with Telegram on startup.

Changes to reasoning.model, reasoning.temperature and reasoning.max_tokens
in config.toml are applied without a restart.`

const serveShortDesc string = "Run the relay webhook server"

var serveFlags = []string{
	config.FlagListen,
	config.FlagMCP,
	config.FlagInspect,
	config.FlagWebhookURL,
	config.FlagSQLite,
	config.FlagDatabaseURL,
	config.FlagProvider,
	config.FlagModel,
	config.FlagMaxTokens,
	config.FlagStrictSearch,
	config.FlagEventsProvider,
	config.FlagEventsBrokers,
	config.FlagHistoryCap,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			v, cfg, err := bootstrap.LoadConfig(cmd, serveFlags)
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), v, cfg)
		},
	}

	cmd.Flags().BoolVar(&cmder.json, "json", false, "Log JSON records instead of pretty output")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append log records to this file")

	config.AddStringFlag(cmd, config.RelayFlags, config.FlagListen, &cmder.listen)
	config.AddBoolFlag(cmd, config.RelayFlags, config.FlagMCP, &cmder.mcp)
	config.AddBoolFlag(cmd, config.RelayFlags, config.FlagInspect, &cmder.inspect)
	config.AddStringFlag(cmd, config.RelayFlags, config.FlagWebhookURL, &cmder.webhookURL)
	config.AddStringFlag(cmd, config.RelayFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.RelayFlags, config.FlagDatabaseURL, &cmder.databaseURL)
	config.AddStringFlag(cmd, config.RelayFlags, config.FlagProvider, &cmder.providerType)
	config.AddStringFlag(cmd, config.RelayFlags, config.FlagModel, &cmder.model)
	config.AddUintFlag(cmd, config.RelayFlags, config.FlagMaxTokens, &cmder.maxTokens)
	config.AddBoolFlag(cmd, config.RelayFlags, config.FlagStrictSearch, &cmder.strictSearch)
	config.AddStringFlag(cmd, config.RelayFlags, config.FlagEventsProvider, &cmder.eventsProvider)
	config.AddStringFlag(cmd, config.RelayFlags, config.FlagEventsBrokers, &cmder.eventsBrokers)
	config.AddUintFlag(cmd, config.RelayFlags, config.FlagHistoryCap, &cmder.historyCap)

	return cmd
}

func (c *ServeCommander) run(ctx context.Context, v *viper.Viper, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	closeLog, err := c.initLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	reqs := []config.Requirement{config.RequireTelegram, config.RequireSearch, config.RequireReasoning}
	if cfg.Server.MCP || cfg.Server.Inspect {
		reqs = append(reqs, config.RequireAPIToken)
	}
	if err := cfg.Validate(reqs...); err != nil {
		c.logger.Error("configuration incomplete", "error", err)
		return err
	}

	store, err := bootstrap.NewStore(ctx, cfg, c.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		Provider: cfg.Events.Provider,
		Brokers:  cfg.Events.Brokers,
		Topic:    cfg.Events.Topic,
		Logger:   c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer publisher.Close()

	pool, err := worker.NewPool(&worker.Config{
		Publisher: publisher,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating event worker pool: %w", err)
	}
	defer pool.Close()

	searcher, err := bootstrap.NewSearcher(cfg, c.logger)
	if err != nil {
		return err
	}

	reasoner, err := bootstrap.NewReasoner(cfg, c.logger)
	if err != nil {
		return err
	}

	bot, err := bootstrap.NewTelegram(cfg, c.logger)
	if err != nil {
		return err
	}

	orch, err := agent.New(agent.Config{
		Searcher:     searcher,
		Reasoner:     reasoner,
		Store:        store,
		ContextTurns: int(cfg.History.ContextTurns),
		SystemPrompt: cfg.Reasoning.SystemPrompt,
		StrictSearch: cfg.Search.Strict,
		Events:       pool,
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating orchestrator: %w", err)
	}

	apiConfig := api.Config{
		ListenAddr:    cfg.Server.Listen,
		WebhookSecret: cfg.Telegram.WebhookSecret,
		Inspect:       cfg.Server.Inspect,
		APIToken:      cfg.Server.APIToken,
	}
	if cfg.Server.MCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Asker:   orch,
			History: store,
			Logger:  c.logger,
		})
		if err != nil {
			return fmt.Errorf("creating MCP server: %w", err)
		}
		apiConfig.MCPHandler = mcpServer.Handler()
	}

	server, err := api.NewServer(apiConfig, orch, store, bot, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.registerWebhook(ctx, bot, cfg)
	c.watchConfig(v, reasoner)

	c.logger.Info("relay ready",
		"listen", cfg.Server.Listen,
		"provider", reasoner.Name(),
		"model", reasoner.Params().Model,
		"events", cfg.Events.Provider,
		"mcp", cfg.Server.MCP,
		"inspect", cfg.Server.Inspect,
	)

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		c.logger.Warn("API server shutdown", "error", err)
	}
	return nil
}

// initLogger logs to stdout and, when --log-file is set, to that file too.
func (c *ServeCommander) initLogger() (func(), error) {
	stdout := logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(c.json),
		logger.WithPretty(!c.json),
	)

	if c.logFile == "" {
		c.logger = stdout
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	file := logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
		logger.WithWriter(f),
	)
	c.logger = logger.Multi(stdout, file)

	return func() { _ = f.Close() }, nil
}

// registerWebhook points Telegram at this server. Failures are logged and
// the server keeps running so the webhook can be fixed with `relay webhook set`.
func (c *ServeCommander) registerWebhook(ctx context.Context, bot *telegram.Client, cfg *config.Config) {
	if cfg.Telegram.WebhookURL == "" {
		c.logger.Warn("no webhook URL configured; Telegram will not deliver updates until one is registered")
		return
	}

	url := WebhookEndpoint(cfg.Telegram.WebhookURL)
	if err := bot.SetWebhook(ctx, url, cfg.Telegram.WebhookSecret); err != nil {
		var derr *telegram.DeliveryError
		if errors.As(err, &derr) {
			c.logger.Error("webhook registration rejected", "url", url, "status", derr.StatusCode, "description", derr.Description)
			return
		}
		c.logger.Error("webhook registration failed", "url", url, "error", err)
		return
	}
	c.logger.Info("webhook registered", "url", url)
}

// watchConfig applies reasoning parameter edits in config.toml to the live
// client.
func (c *ServeCommander) watchConfig(v *viper.Viper, reasoner *provider.Client) {
	if v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		next := bootstrap.ReasoningParams(config.FromViper(v))
		prev := reasoner.Params()
		if next == prev {
			return
		}
		reasoner.SetParams(next)
		c.logger.Info("reasoning parameters reloaded",
			"file", e.Name,
			"model", next.Model,
			"temperature", next.Temperature,
			"max_tokens", next.MaxTokens,
		)
	})
	v.WatchConfig()
}

// WebhookEndpoint returns the URL Telegram posts updates to for a public
// base URL.
func WebhookEndpoint(base string) string {
	return strings.TrimRight(base, "/") + "/"
}

// Package askcmder provides the ask command, which runs the relay pipeline
// once from the terminal.
package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/relay/cmd/relay/bootstrap"
	"github.com/papercomputeco/relay/pkg/agent"
	"github.com/papercomputeco/relay/pkg/cliui"
	"github.com/papercomputeco/relay/pkg/config"
	"github.com/papercomputeco/relay/pkg/logger"
)

const askLongDesc string = `Ask a question through the relay pipeline.

The question is searched on the web, combined with the recent conversation
for --user, and answered by the reasoning model. The reply is rendered as
markdown. Turns are recorded in the configured history store, so repeated
asks with the same --user and a durable store share context with the bot.

Examples:
  relay ask "What is the capital of France?"
  relay ask --user 12345 "And its population?"
  relay ask --raw "Summarise today's Go release notes"`

const askShortDesc string = "Ask a question through the relay pipeline"

const defaultUser = "cli"

var askFlags = []string{
	config.FlagSQLite,
	config.FlagDatabaseURL,
	config.FlagProvider,
	config.FlagModel,
	config.FlagMaxTokens,
	config.FlagStrictSearch,
}

type askCommander struct {
	user         string
	raw          bool
	debug        bool
	sqlitePath   string
	databaseURL  string
	providerType string
	model        string
	maxTokens    uint
	strictSearch bool
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			_, cfg, err := bootstrap.LoadConfig(cmd, askFlags)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cmder.run(ctx, cmd.OutOrStdout(), cfg, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.user, "user", "u", defaultUser, "Conversation to ask in (a Telegram chat id for bot conversations)")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the reply without markdown rendering")

	config.AddStringFlag(cmd, config.RelayFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.RelayFlags, config.FlagDatabaseURL, &cmder.databaseURL)
	config.AddStringFlag(cmd, config.RelayFlags, config.FlagProvider, &cmder.providerType)
	config.AddStringFlag(cmd, config.RelayFlags, config.FlagModel, &cmder.model)
	config.AddUintFlag(cmd, config.RelayFlags, config.FlagMaxTokens, &cmder.maxTokens)
	config.AddBoolFlag(cmd, config.RelayFlags, config.FlagStrictSearch, &cmder.strictSearch)

	return cmd
}

func (c *askCommander) run(ctx context.Context, out io.Writer, cfg *config.Config, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return errors.New("message cannot be empty")
	}

	if err := cfg.Validate(config.RequireSearch, config.RequireReasoning); err != nil {
		return err
	}

	log := logger.Nop()
	if c.debug {
		log = logger.New(logger.WithDebug(true), logger.WithPretty(true), logger.WithWriter(os.Stderr))
	}

	store, err := bootstrap.NewStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	searcher, err := bootstrap.NewSearcher(cfg, log)
	if err != nil {
		return err
	}
	reasoner, err := bootstrap.NewReasoner(cfg, log)
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
		Logger:       log,
	})
	if err != nil {
		return err
	}

	var answer *agent.Answer
	step := fmt.Sprintf("Asking %s", cliui.NameStyle.Render(reasoner.Params().Model))
	fmt.Fprintln(out)
	err = cliui.Step(out, step, func() error {
		var askErr error
		answer, askErr = orch.Ask(ctx, message, c.user)
		return askErr
	})
	if err != nil {
		return err
	}

	if answer.SearchErr != nil {
		fmt.Fprintf(out, "  %s %s\n", cliui.WarnStyle.Render("!"),
			cliui.DimStyle.Render("web search failed; answered without search results"))
	}

	return RenderAnswer(out, answer, c.raw)
}

// RenderAnswer writes the reply and a usage footer to out.
func RenderAnswer(out io.Writer, answer *agent.Answer, raw bool) error {
	reply := answer.Reply
	if !raw {
		rendered, err := cliui.RenderMarkdown(reply)
		if err == nil {
			reply = rendered
		}
	}
	fmt.Fprintln(out, reply)

	footer := answer.Model
	if answer.Usage != nil {
		footer = fmt.Sprintf("%s · %d tokens", footer, answer.Usage.TotalTokens)
	}
	if footer != "" {
		fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render(footer))
	}
	return nil
}

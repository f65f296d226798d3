// Package historycmder provides the history command for reading recorded
// conversation turns.
package historycmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/relay/cmd/relay/bootstrap"
	"github.com/papercomputeco/relay/cmd/relay/sqlitepath"
	"github.com/papercomputeco/relay/pkg/cliui"
	"github.com/papercomputeco/relay/pkg/config"
	"github.com/papercomputeco/relay/pkg/logger"
	"github.com/papercomputeco/relay/pkg/prompt"
	"github.com/papercomputeco/relay/pkg/storage"
)

const historyLongDesc string = `Show the recorded turns of a conversation.

Turns are read from the durable history store: the configured database URL,
or a sqlite database found via --sqlite, storage.sqlite_path or the default
.relay/relay.sqlite locations. For Telegram conversations the user id is
the chat id.

Examples:
  relay history 12345
  relay history 12345 --limit 4
  relay history cli --json`

const historyShortDesc string = "Show recorded conversation turns"

const defaultLimit = 10

var historyFlags = []string{
	config.FlagSQLite,
	config.FlagDatabaseURL,
}

type historyCommander struct {
	limit       int
	json        bool
	sqlitePath  string
	databaseURL string
}

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history <user_id>",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := bootstrap.LoadConfig(cmd, historyFlags)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cmder.run(ctx, cmd.OutOrStdout(), cfg, args[0])
		},
	}

	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", defaultLimit, "Maximum number of turns to show")
	cmd.Flags().BoolVar(&cmder.json, "json", false, "Print turns as JSON")

	config.AddStringFlag(cmd, config.RelayFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.RelayFlags, config.FlagDatabaseURL, &cmder.databaseURL)

	return cmd
}

func (c *historyCommander) run(ctx context.Context, out io.Writer, cfg *config.Config, userID string) error {
	if c.limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", c.limit)
	}

	if cfg.Storage.DatabaseURL == "" {
		path, err := sqlitepath.ResolveSQLitePath(cfg.Storage.SQLitePath)
		if err != nil {
			return err
		}
		cfg.Storage.SQLitePath = path
	}

	store, err := bootstrap.NewStore(ctx, cfg, logger.Nop())
	if err != nil {
		return err
	}
	defer store.Close()

	turns, err := store.Recent(ctx, userID, c.limit)
	if err != nil {
		return err
	}

	if c.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(turns)
	}

	return RenderTurns(out, userID, turns)
}

// RenderTurns prints turns oldest first.
func RenderTurns(out io.Writer, userID string, turns []*storage.Turn) error {
	fmt.Fprintf(out, "\n  %s %s\n\n",
		cliui.HeaderStyle.Render("Conversation"),
		cliui.NameStyle.Render(userID),
	)

	if len(turns) == 0 {
		fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render(prompt.NoHistoryMarker))
		return nil
	}

	for _, t := range turns {
		label := prompt.RoleLabel(t.Role)
		if t.Role == storage.RoleSystem {
			label = cliui.WarnStyle.Render(label)
		} else {
			label = cliui.KeyStyle.Render(label)
		}
		fmt.Fprintf(out, "  %s %s\n", label, cliui.DimStyle.Render(t.Timestamp.Local().Format("2006-01-02 15:04:05")))
		fmt.Fprintf(out, "  %s\n\n", cliui.ValueStyle.Render(t.Content))
	}

	return nil
}

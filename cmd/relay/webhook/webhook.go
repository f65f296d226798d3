// Package webhookcmder provides the webhook command for managing the bot's
// Telegram webhook registration.
package webhookcmder

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/relay/cmd/relay/bootstrap"
	servecmder "github.com/papercomputeco/relay/cmd/relay/serve"
	"github.com/papercomputeco/relay/pkg/cliui"
	"github.com/papercomputeco/relay/pkg/config"
	"github.com/papercomputeco/relay/pkg/logger"
	"github.com/papercomputeco/relay/pkg/telegram"
)

const webhookLongDesc string = `Manage the Telegram webhook for the bot.

Telegram delivers updates by POSTing to the registered webhook URL. relay
serve registers telegram.webhook_url on startup; these commands manage the
registration by hand.

Examples:
  relay webhook set https://relay.example.com
  relay webhook info
  relay webhook delete --drop-pending`

const webhookShortDesc string = "Manage the Telegram webhook"

func NewWebhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: webhookShortDesc,
		Long:  webhookLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newInfoCmd())

	return cmd
}

func newSetCmd() *cobra.Command {
	var webhookURL string

	cmd := &cobra.Command{
		Use:   "set [url]",
		Short: "Register the webhook URL with Telegram",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, bot, err := loadBot(cmd, []string{config.FlagWebhookURL})
			if err != nil {
				return err
			}

			base := cfg.Telegram.WebhookURL
			if len(args) == 1 {
				base = args[0]
			}
			if strings.TrimSpace(base) == "" {
				return &config.MissingError{Key: "telegram.webhook_url", EnvVars: []string{"RELAY_TELEGRAM_WEBHOOK_URL", "WEBHOOK_URL"}}
			}

			url := servecmder.WebhookEndpoint(base)
			return cliui.Step(cmd.OutOrStdout(), "Registering "+url, func() error {
				return bot.SetWebhook(commandContext(cmd), url, cfg.Telegram.WebhookSecret)
			})
		},
	}

	config.AddStringFlag(cmd, config.RelayFlags, config.FlagWebhookURL, &webhookURL)

	return cmd
}

func newDeleteCmd() *cobra.Command {
	var dropPending bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, bot, err := loadBot(cmd, nil)
			if err != nil {
				return err
			}
			return cliui.Step(cmd.OutOrStdout(), "Deleting webhook", func() error {
				return bot.DeleteWebhook(commandContext(cmd), dropPending)
			})
		},
	}

	cmd.Flags().BoolVar(&dropPending, "drop-pending", false, "Drop updates Telegram has queued for the bot")

	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the current webhook registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, bot, err := loadBot(cmd, nil)
			if err != nil {
				return err
			}
			info, err := bot.GetWebhookInfo(commandContext(cmd))
			if err != nil {
				return err
			}
			return RenderInfo(cmd.OutOrStdout(), info)
		},
	}
}

// RenderInfo prints a webhook registration.
func RenderInfo(out io.Writer, info *telegram.WebhookInfo) error {
	url := info.URL
	if url == "" {
		url = "<not set>"
	}

	fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render("Webhook"))
	fmt.Fprintf(out, "  %s  %s\n", cliui.KeyStyle.Render("url            "), cliui.ValueStyle.Render(url))
	fmt.Fprintf(out, "  %s  %d\n", cliui.KeyStyle.Render("pending updates"), info.PendingUpdateCount)
	if info.LastErrorMessage != "" {
		at := time.Unix(info.LastErrorDate, 0).Local().Format(time.RFC3339)
		fmt.Fprintf(out, "  %s  %s %s\n",
			cliui.KeyStyle.Render("last error     "),
			cliui.WarnStyle.Render(info.LastErrorMessage),
			cliui.DimStyle.Render("("+at+")"),
		)
	}
	fmt.Fprintln(out)
	return nil
}

func loadBot(cmd *cobra.Command, flagKeys []string) (*config.Config, *telegram.Client, error) {
	_, cfg, err := bootstrap.LoadConfig(cmd, flagKeys)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(config.RequireTelegram); err != nil {
		return nil, nil, err
	}
	bot, err := bootstrap.NewTelegram(cfg, logger.Nop())
	if err != nil {
		return nil, nil, err
	}
	return cfg, bot, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

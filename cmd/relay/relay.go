// Package relaycmder is the relay root command.
package relaycmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/relay/cmd/relay/ask"
	authcmder "github.com/papercomputeco/relay/cmd/relay/auth"
	configcmder "github.com/papercomputeco/relay/cmd/relay/config"
	historycmder "github.com/papercomputeco/relay/cmd/relay/history"
	servecmder "github.com/papercomputeco/relay/cmd/relay/serve"
	webhookcmder "github.com/papercomputeco/relay/cmd/relay/webhook"
	versioncmder "github.com/papercomputeco/relay/cmd/version"
)

const relayLongDesc string = `Relay answers Telegram messages with web search and a language model.

Each incoming message is searched on the web, combined with the last few
turns of that chat's conversation and sent to the reasoning model. The reply
is posted back to the chat and both turns are recorded.

Run the bot:
  relay serve                  Run the webhook server
  relay webhook set            Register the webhook with Telegram

Use it locally:
  relay ask "question"         Run the pipeline once and print the reply
  relay history <user_id>      Show recorded turns`

const relayShortDesc string = "Relay - search-augmented Telegram assistant"

func NewRelayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "relay",
		Short:         relayShortDesc,
		Long:          relayLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .relay/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(webhookcmder.NewWebhookCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}

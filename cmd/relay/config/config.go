// Package configcmder provides the config command for managing persistent
// relay configuration stored in the .relay/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent relay configuration.

Configuration is stored as config.toml in the .relay/ directory and provides
default values for command flags. CLI flags and environment variables always
take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  server.listen, server.mcp, server.inspect,
  telegram.api_base, telegram.webhook_url,
  search.endpoint, search.engine, search.num_results, search.strict,
  reasoning.provider, reasoning.endpoint, reasoning.model,
  reasoning.temperature, reasoning.max_tokens, reasoning.system_prompt,
  upstream.timeout, storage.database_url, storage.sqlite_path,
  history.cap, history.context_turns,
  events.provider, events.brokers, events.topic

Secrets are not config keys; store them with relay auth or the environment.

Use subcommands to get, set, or list configuration values:
  relay config set <key> <value>    Set a configuration value
  relay config get <key>            Get a configuration value
  relay config list                 List all configuration values

Examples:
  relay config set reasoning.model openai/gpt-4o-mini
  relay config set history.cap 20
  relay config get reasoning.model
  relay config list`

const configShortDesc string = "Manage persistent relay configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

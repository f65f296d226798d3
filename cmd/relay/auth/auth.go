// Package authcmder provides the auth command for storing upstream secrets.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/relay/pkg/cliui"
	"github.com/papercomputeco/relay/pkg/credentials"
)

const authLongDesc string = `Store secrets for the relay's upstream services.

Secrets are stored in credentials.toml in the .relay/ directory with 0600
permissions. They are used whenever the matching environment variable and
config value are empty, so a bot can run without exporting tokens.

Supported services: telegram, serpapi, openrouter, anthropic

Examples:
  relay auth telegram               Prompt for the bot token
  relay auth serpapi                Prompt for the SerpAPI key
  relay auth --list                 List stored credentials
  relay auth --remove openrouter    Remove the stored OpenRouter key
  echo $KEY | relay auth serpapi    Pipe the secret from stdin`

const authShortDesc string = "Store secrets for upstream services"

func NewAuthCmd() *cobra.Command {
	var listFlag bool
	var removeFlag string

	cmd := &cobra.Command{
		Use:   "auth [service]",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			out := cmd.OutOrStdout()

			switch {
			case listFlag:
				return runList(out, configDir)
			case removeFlag != "":
				return runRemove(out, removeFlag, configDir)
			default:
				if len(args) == 0 {
					return fmt.Errorf("service argument required\n\nSupported services: %s",
						strings.Join(credentials.SupportedServices(), ", "))
				}
				return runAuth(cmd.InOrStdin(), out, args[0], configDir)
			}
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return credentials.SupportedServices(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&listFlag, "list", false, "List stored credentials")
	cmd.Flags().StringVar(&removeFlag, "remove", "", "Remove stored credentials for a service")

	return cmd
}

func runAuth(in io.Reader, out io.Writer, service, configDir string) error {
	service = strings.ToLower(strings.TrimSpace(service))

	if !credentials.IsSupportedService(service) {
		return fmt.Errorf("unsupported service: %q\n\nSupported services: %s",
			service, strings.Join(credentials.SupportedServices(), ", "))
	}

	secret, err := readSecret(in, out, service)
	if err != nil {
		return err
	}

	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("secret cannot be empty")
	}

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetKey(service, secret); err != nil {
		return err
	}

	envVar := credentials.EnvVarForService(service)
	fmt.Fprintf(out, "\n  %s Stored %s credentials %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(service),
		cliui.DimStyle.Render("(used when "+envVar+" is unset)"),
	)

	if service == credentials.Telegram && !strings.Contains(secret, ":") {
		fmt.Fprintf(out, "\n  %s Bot tokens look like 123456:ABC-DEF...; check the value from @BotFather.\n",
			cliui.WarnStyle.Render("!"))
	}

	fmt.Fprintln(out)
	return nil
}

func runList(out io.Writer, configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	services, err := mgr.ListServices()
	if err != nil {
		return err
	}

	if len(services) == 0 {
		fmt.Fprintf(out, "\n  %s No stored credentials.\n", cliui.DimStyle.Render("●"))
		fmt.Fprintf(out, "  Use 'relay auth <service>' to store credentials.\n")
		fmt.Fprintf(out, "  Supported services: %s\n\n", strings.Join(credentials.SupportedServices(), ", "))
		return nil
	}

	fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render("Stored credentials"))
	for _, s := range services {
		envVar := credentials.EnvVarForService(s)
		if envVar != "" {
			fmt.Fprintf(out, "  %s  %s  %s\n",
				cliui.SuccessMark,
				cliui.NameStyle.Render(s),
				cliui.DimStyle.Render("→ "+envVar),
			)
		} else {
			fmt.Fprintf(out, "  %s  %s\n", cliui.SuccessMark, cliui.NameStyle.Render(s))
		}
	}
	fmt.Fprintln(out)

	return nil
}

func runRemove(out io.Writer, service, configDir string) error {
	service = strings.ToLower(strings.TrimSpace(service))

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveKey(service); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s Removed %s credentials.\n\n", cliui.SuccessMark, cliui.NameStyle.Render(service))

	return nil
}

// readSecret reads the first line of in when it is not a terminal, and
// prompts with hidden input otherwise.
func readSecret(in io.Reader, out io.Writer, service string) (string, error) {
	f, isFile := in.(*os.File)
	if isFile && term.IsTerminal(int(f.Fd())) {
		envVar := credentials.EnvVarForService(service)
		fmt.Fprintf(out, "Enter secret for %s (%s): ", service, envVar)

		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out) // newline after hidden input
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return string(secret), nil
	}

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}

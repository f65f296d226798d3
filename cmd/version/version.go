// Package versioncmder provides the version command.
package versioncmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/relay/pkg/cliui"
	"github.com/papercomputeco/relay/pkg/utils"
)

type versionCommander struct {
	short bool
}

func NewVersionCmd() *cobra.Command {
	cmder := &versionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the relay version",
		Long:  "Print the relay version, the commit it was built from and the User-Agent sent to upstream services.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&cmder.short, "short", false, "Print only the version number")

	return cmd
}

func (c *versionCommander) run(out io.Writer) error {
	if c.short {
		_, err := fmt.Fprintln(out, utils.Version)
		return err
	}

	fmt.Fprintf(out, "%s %s\n", cliui.NameStyle.Render("relay"), utils.Version)
	fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("commit    "), utils.Sha)
	fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("built     "), utils.Buildtime)
	fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("user agent"), utils.UserAgent())
	return nil
}

package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) installCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "install <atlas>",
		Short:   "Install an atlas from the latest version available online",
		Example: "  bgatlas install allen_mouse_25um",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return a.manager.Install(cmd.Context(), name, a.printer.Progress("downloading "+name))
		},
	}
}

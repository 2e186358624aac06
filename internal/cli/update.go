package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) updateCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "update <atlas>",
		Short: "Update an atlas to the latest version available online",
		Long: `Update replaces the local copy of an atlas with the latest version available
online. Nothing is downloaded when the atlas is already at the latest version,
unless --force is given.`,
		Example: "  bgatlas update allen_mouse_25um --force",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return a.manager.Update(cmd.Context(), name, force, a.printer.Progress("downloading "+name))
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Re-download even when the atlas is up to date")

	return cmd
}

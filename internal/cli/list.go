package cli

import (
	"github.com/LSeu-Open/bg-atlasapi/internal/atlas"
	"github.com/spf13/cobra"
)

func (a *app) listCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List installed atlases",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summaries, err := a.manager.List(cmd.Context(), remote)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				rows = append(rows, []string{s.Name, s.LocalVersion.String(), s.RemoteVersion.String(), listStatus(s, remote)})
			}
			a.printer.Table([]string{"NAME", "LOCAL", "LATEST", "STATUS"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&remote, "remote", "r", false, "Compare with the remote repository and include atlases available for download")

	return cmd
}

func listStatus(s atlas.Summary, remote bool) string {
	switch {
	case !s.Installed:
		return ""
	case !remote:
		return "installed"
	case s.UpToDate():
		return "up to date"
	default:
		return "outdated"
	}
}

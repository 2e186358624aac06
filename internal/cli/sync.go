package cli

import (
	"log/slog"

	"github.com/LSeu-Open/bg-atlasapi/internal/config"
	"github.com/spf13/cobra"
)

func (a *app) syncCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Install every atlas listed in the config file",
		Long: `Sync installs every atlas listed under "atlases" in the config file. When
"auto_update" is set, installed atlases are also updated to the latest version.

With --watch the config file is watched and the sync runs again after every change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			err := a.manager.Sync(ctx, a.cfg)
			a.printRegistry()
			if !watch {
				return err
			}
			if err != nil {
				slog.Error("Failed to sync atlases", "error", err)
			}

			watcher, err := config.NewWatcher(a.configPath, func(cfg *config.Config, err error) {
				if err != nil {
					slog.Error("Failed to reload config", "error", err)
					return
				}
				if err := a.manager.Sync(ctx, cfg); err != nil {
					slog.Error("Failed to sync atlases", "error", err)
				}
				a.printRegistry()
			})
			if err != nil {
				return err
			}
			defer watcher.Close()

			slog.Info("Watching config file", "path", a.configPath)
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and sync again when the config file changes")

	return cmd
}

func (a *app) printRegistry() {
	instances := a.manager.Registry().List()
	rows := make([][]string, 0, len(instances))
	for _, i := range instances {
		rows = append(rows, []string{i.Name, i.Version, string(i.Status), i.Error})
	}
	a.printer.Table([]string{"NAME", "VERSION", "STATUS", "ERROR"}, rows)
}

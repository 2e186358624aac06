package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/LSeu-Open/bg-atlasapi/internal/atlas"
	"github.com/LSeu-Open/bg-atlasapi/internal/config"
	"github.com/LSeu-Open/bg-atlasapi/internal/console"
	"github.com/LSeu-Open/bg-atlasapi/internal/env"
	"github.com/LSeu-Open/bg-atlasapi/internal/envvar"
	"github.com/LSeu-Open/bg-atlasapi/internal/logger"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X github.com/LSeu-Open/bg-atlasapi/internal/cli.Version=...".
var Version = "dev"

type app struct {
	out        io.Writer
	errOut     io.Writer
	configPath string
	logLevel   string
	noColor    bool

	cfg     *config.Config
	printer *console.Printer
	manager *atlas.Manager
}

// Option configures the command tree.
type Option func(*app)

// WithOutput redirects user output and logs.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *app) {
		a.out = out
		a.errOut = errOut
	}
}

// New builds the bgatlas command tree.
func New(opts ...Option) *cobra.Command {
	a := &app{
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}

	defaultConfig := config.DefaultConfigFile()
	if p := os.Getenv(envvar.BgatlasConfig); p != "" {
		defaultConfig = p
	}

	root := &cobra.Command{
		Use:   "bgatlas",
		Short: "Install and update BrainGlobe reference atlases",
		Long: `bgatlas manages the local copies of BrainGlobe reference atlases.

Atlases are downloaded from the remote atlas repository into the atlas home
(~/.brainglobe by default). Installed atlases can be checked against the latest
published version and replaced when outdated.`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", defaultConfig, "Path to config file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable styled output")

	root.AddCommand(
		a.installCmd(),
		a.updateCmd(),
		a.listCmd(),
		a.syncCmd(),
		a.configCmd(),
	)

	return root
}

// setup loads the config and wires logging and the atlas manager.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	slog.SetDefault(logger.New(env.FromEnv(),
		logger.WithConsole(a.errOut),
		logger.WithLevel(logger.ParseLevel(cfg.Log.Level)),
		logger.WithLogToFile(cfg.Log.File != ""),
		logger.WithLogFile(cfg.Log.File),
	))

	var printerOpts []console.Option
	if a.noColor || os.Getenv("NO_COLOR") != "" {
		printerOpts = append(printerOpts, console.WithPlain())
	}
	a.printer = console.NewPrinter(a.out, printerOpts...)

	remote := atlas.NewRemote(
		atlas.WithBaseURL(cfg.Remote.BaseURL),
		atlas.WithTimeout(cfg.Remote.Timeout),
	)
	catalog := atlas.NewOsCatalog(remote, cfg.Storage.AtlasDir, cfg.Storage.DownloadDir)
	a.manager = atlas.NewManager(catalog, catalog.Store().Fs(), a.printer)

	slog.Debug("Configuration loaded", "config", a.configPath, "atlas_dir", cfg.Storage.AtlasDir, "remote", cfg.Remote.BaseURL)
	return nil
}

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/ploog"
	"github.com/aretw0/ploog/internal/platform"
	"github.com/aretw0/ploog/pkg/core"
)

var (
	verbose    bool
	serve      bool
	console    bool
	watch      bool
	altSlug    bool
	addr       string
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ploog SOURCES OUTPUT",
	Short: "Static site generator for TOML front matter and Markdown",
	Long: `Ploog renders every file in SOURCES into an HTML page under OUTPUT.
A file may open with a TOML block between two --- lines holding its title
and slug; without one both are taken from the file name.

With --watch the site is regenerated whenever a source is saved, and
--serve / --console expose the output and an authoring console over HTTP.`,
	Version:       strings.TrimSpace(ploog.Version),
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ploog:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.Flags()
	flags.BoolVarP(&serve, "serve", "s", false, "Serve the generated site under /preview/")
	flags.BoolVarP(&console, "console", "c", false, "Serve the authoring console under /console/")
	flags.BoolVarP(&watch, "watch", "w", false, "Regenerate whenever a source is saved")
	flags.BoolVarP(&altSlug, "altslug", "a", false, "Write slug.html instead of slug/index.html")
	flags.StringVar(&addr, "addr", "", "HTTP listen address (default "+core.DefaultAddr+")")
	flags.StringVar(&configPath, "config", "", "Path to "+platform.ConfigFileName+" (default: looked up from the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func run(cmd *cobra.Command, args []string) error {
	if err := platform.LoadEnv(".env"); err != nil {
		return err
	}

	fc, err := loadConfigFile()
	if err != nil {
		return err
	}

	level, err := platform.LogLevel(verbose, fc, nil)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := platform.Resolve(core.Config{
		SourcePath: args[0],
		OutputPath: args[1],
		Watch:      watch,
		Serve:      serve,
		Console:    console,
		FlatLayout: altSlug,
		Addr:       addr,
	}, fc, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return ploog.Run(ctx, cfg, ploog.WithLogger(logger))
}

// loadConfigFile reads --config, or ploog.yaml found upwards from the working
// directory. Only an explicit --config is required to exist.
func loadConfigFile() (platform.FileConfig, error) {
	path := configPath
	if path == "" {
		found, err := platform.FindConfig(".")
		if errors.Is(err, platform.ErrConfigNotFound) {
			return platform.FileConfig{}, nil
		}
		if err != nil {
			return platform.FileConfig{}, err
		}
		path = found
	}
	return platform.ReadConfigFile(path)
}

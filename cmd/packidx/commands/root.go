// Package commands implements the packidx CLI commands.
package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/packidx/cmd"
	"github.com/thoreinstein/packidx/internal/config"
	pkerrors "github.com/thoreinstein/packidx/internal/errors"
	"github.com/thoreinstein/packidx/internal/logging"
	"github.com/thoreinstein/packidx/internal/paths"
)

// EnvDebug raises the log level when no -v flag is given: 1 or true for
// debug, 2 for trace.
const EnvDebug = "PACKIDX_DEBUG"

var (
	verbosity    int
	quiet        bool
	logFormat    string
	logFile      string
	configPath   string
	catalogPaths []string
)

// appConfig is the configuration loaded by PersistentPreRunE.
var appConfig *config.Config

func init() {
	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&verbosity, "verbose", "v", "increase verbosity level (e.g., -v, -vv, -vvv)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	pf.StringVar(&logFormat, "log-format", "text", "log format: text, json")
	pf.StringVar(&logFile, "log-file", "", "also write logs to this file in JSON format")
	pf.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/packidx/config.yaml)")
	pf.StringSliceVar(&catalogPaths, "catalog", nil, "snapshot files or directories, overriding catalog_paths")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("packidx version {{.Version}}\n")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "packidx",
	Short: "Query a registry of device support packs",
	Long: `packidx loads pack snapshots, builds the device hierarchy they declare
(vendor, family, sub-family, device, variant, processor) and answers
questions about it: which pack version is in use, where a device lives,
what a project's device selection resolves to and which packs are missing.

Packs are read from the snapshot files and directories listed under
catalog_paths in the config file, or given with --catalog.`,
	Example: `  # List the packs in use
  packidx packs list

  # Show the device hierarchy of one vendor
  packidx devices tree --vendor STMicroelectronics

  # Resolve a device with its processor
  packidx resolve STM32H745XI --attr Pname=CM7`,
	PersistentPreRunE: func(c *cobra.Command, _ []string) error {
		if err := setupLogging(c); err != nil {
			return err
		}
		if skipsConfig(c) {
			return nil
		}
		return loadConfig()
	},
	RunE: func(c *cobra.Command, _ []string) error {
		return c.Help()
	},
}

func skipsConfig(c *cobra.Command) bool {
	for cur := c; cur != nil; cur = cur.Parent() {
		if cur == configEditCmd {
			return true
		}
		switch cur.Name() {
		case "help", "version", "gen-doc", "completion", "doctor", "backup", cobra.ShellCompRequestCmd:
			return true
		}
	}
	return false
}

func loadConfig() error {
	config.Init()
	cfg, err := config.Load(configPath)
	if err != nil {
		return pkerrors.NewConfigError(err)
	}
	if len(catalogPaths) > 0 {
		cfg.CatalogPaths = catalogPaths
	}
	appConfig = cfg
	slog.Debug("configuration loaded", "file", config.FileUsed(), "catalog_paths", cfg.CatalogPaths)
	return nil
}

// setupLogging configures the default logger from the verbosity flags and
// stores it in the command context.
func setupLogging(c *cobra.Command) error {
	if quiet && verbosity > 0 {
		return pkerrors.NewUserError(errors.New("--quiet and --verbose are mutually exclusive"), "Use only one of -q and -v")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity
		if v == 0 {
			switch os.Getenv(EnvDebug) {
			case "1", "true":
				v = 2
			case "2":
				v = 3
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{Level: level}
	var primary slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primary = slog.NewJSONHandler(c.ErrOrStderr(), opts)
	case logging.FormatText:
		primary = logging.NewHandler(c.ErrOrStderr(), opts)
	default:
		return pkerrors.NewUserError(errors.Newf("unknown log format %q", logFormat), "Use --log-format text or json")
	}

	handler := primary
	if logFile != "" {
		f, err := openLogFile(logFile)
		if err != nil {
			return pkerrors.NewUserError(err, "Check the --log-file path")
		}
		handler = logging.NewMultiHandler(primary, slog.NewJSONHandler(f, opts))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c.SetContext(logging.NewContext(ctx, logger))
	return nil
}

// openLogFile opens path for appending. A bare file name goes to the log
// directory under the XDG cache home.
func openLogFile(path string) (*os.File, error) {
	if filepath.Base(path) == path {
		if err := paths.EnsureDir(paths.LogDir(), 0); err != nil {
			return nil, errors.Wrap(err, "creating log directory")
		}
		path = filepath.Join(paths.LogDir(), path)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, errors.Wrap(err, "opening log file")
	}
	return f, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/packidx/internal/config"
	"github.com/thoreinstein/packidx/internal/editor"
	pkerrors "github.com/thoreinstein/packidx/internal/errors"
	"github.com/thoreinstein/packidx/internal/paths"
	"github.com/thoreinstein/packidx/pkg/fileutil"
)

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
	RunE: func(c *cobra.Command, _ []string) error {
		return c.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration after defaults and environment overrides",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return runConfigShow(c.OutOrStdout(), appConfig)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		path := config.FileUsed()
		if path == "" {
			path = "(none, using defaults)"
		}
		fmt.Fprintln(c.OutOrStdout(), path)
		return nil
	},
}

func runConfigShow(w io.Writer, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.Default()
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrap(enc.Close(), "encoding config")
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in your editor",
	Long: `Open the config file in $PACKIDX_EDITOR, $EDITOR or $VISUAL. A missing
file is created with the defaults first. The file is validated after the
editor exits.`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		streams := editor.Streams{In: c.InOrStdin(), Out: c.OutOrStdout(), Err: c.ErrOrStderr()}
		open := func(ctx context.Context, path string) error {
			return editor.Open(ctx, path, streams)
		}
		return runConfigEdit(c.Context(), c.OutOrStdout(), editTarget(), open)
	},
}

// editTarget returns --config, else config.yaml in $PACKIDX_CONFIG_DIR, else
// the default config path.
func editTarget() string {
	if configPath != "" {
		return configPath
	}
	if dir := os.Getenv(config.EnvConfigDir); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return paths.DefaultConfigPath()
}

func runConfigEdit(ctx context.Context, w io.Writer, path string, open func(context.Context, string) error) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
			return pkerrors.NewSystemError(errors.Wrap(err, "creating config directory"), "")
		}
		if err := fileutil.AtomicWriteYAML(path, config.Default(), 0o600); err != nil {
			return pkerrors.NewSystemError(err, "")
		}
		fmt.Fprintf(w, "Created %s\n", path)
	}

	if err := open(ctx, path); err != nil {
		return pkerrors.NewSystemError(err, "Set PACKIDX_EDITOR or EDITOR to an installed editor")
	}

	config.Init()
	if _, err := config.Load(path); err != nil {
		return pkerrors.NewConfigError(err)
	}
	fmt.Fprintf(w, "%s is valid\n", path)
	return nil
}

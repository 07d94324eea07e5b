package commands

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/packidx/internal/attr"
	pkerrors "github.com/thoreinstein/packidx/internal/errors"
	"github.com/thoreinstein/packidx/internal/logging"
	"github.com/thoreinstein/packidx/internal/pack"
	"github.com/thoreinstein/packidx/internal/registry"
	"github.com/thoreinstein/packidx/internal/resolve"
)

var missingInstallWith string

func init() {
	missingCmd.Flags().StringVar(&missingInstallWith, "install-with", "",
		"command run once per missing pack with the pack id appended, e.g. \"cpackget add\"")
	rootCmd.AddCommand(missingCmd)
}

var missingCmd = &cobra.Command{
	Use:   "missing <pack-id>...",
	Short: "Report referenced packs that are not installed",
	Long: `Check the packs a project references. A reference without version
("ARM.CMSIS") is satisfied by any installed or generated version of the
family. Packs that are neither installed nor generated are listed, and with
--install-with handed to an external installer.`,
	Example: `  packidx missing ARM.CMSIS.5.9.0 Keil.STM32F4xx_DFP
  packidx missing ARM.CMSIS --install-with "cpackget add"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		reg, err := loadRegistry(c.Context(), appConfig)
		if err != nil {
			return err
		}
		var installer resolve.Installer
		if missingInstallWith != "" {
			installer = newCommandInstaller(c.Context(), missingInstallWith, c.ErrOrStderr())
		}
		return runMissing(c.Context(), c.OutOrStdout(), reg, args, installer)
	},
}

func runMissing(ctx context.Context, w io.Writer, reg *registry.Registry, ids []string, installer resolve.Installer) error {
	refs := make([]resolve.PackRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, resolve.ParsePackRef(id))
	}

	missing := resolve.MissingPacks(reg.Packs(), refs, installer)
	if len(missing) == 0 {
		fmt.Fprintln(w, "All referenced packs are installed.")
		return nil
	}
	for _, ref := range missing {
		fmt.Fprintln(w, ref.ID())
	}

	if installer == nil {
		return pkerrors.NewUserError(
			errors.Newf("%d pack(s) missing", len(missing)),
			"Install them with your pack manager or rerun with --install-with")
	}
	if err := resolve.InstallMissing(ctx, installer, missing); err != nil {
		return pkerrors.NewSystemError(err, "Check the installer output above")
	}
	return nil
}

// commandInstaller runs an external command per pack.
type commandInstaller struct {
	ctx    context.Context
	argv   []string
	stderr io.Writer
}

func newCommandInstaller(ctx context.Context, command string, stderr io.Writer) *commandInstaller {
	return &commandInstaller{ctx: ctx, argv: strings.Fields(command), stderr: stderr}
}

// IsProcessing implements resolve.Installer. Commands run synchronously.
func (i *commandInstaller) IsProcessing(attr.Attributes) bool { return false }

// InstallPack implements resolve.Installer.
func (i *commandInstaller) InstallPack(a attr.Attributes) error {
	if len(i.argv) == 0 {
		return errors.New("empty installer command")
	}
	id := pack.ConstructID(a)
	args := append(append([]string(nil), i.argv[1:]...), id)
	cmd := exec.CommandContext(i.ctx, i.argv[0], args...)
	cmd.Stdout = i.stderr
	cmd.Stderr = i.stderr

	logging.FromContext(i.ctx).Info("installing pack", "pack", id, "command", i.argv[0])
	return errors.Wrapf(cmd.Run(), "running %s", i.argv[0])
}

package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/packidx/internal/backup"
	"github.com/thoreinstein/packidx/internal/catalog"
	pkerrors "github.com/thoreinstein/packidx/internal/errors"
	"github.com/thoreinstein/packidx/internal/pack"
	"github.com/thoreinstein/packidx/internal/registry"
)

var (
	exportForce bool
	exportAll   bool
)

func init() {
	exportCmd.Flags().BoolVarP(&exportForce, "force", "f", false, "overwrite an existing file")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "export every pack, ignoring the filter")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the filtered packs to a snapshot file",
	Long: `Write the packs selected by the configured filter to a snapshot file.
The format follows the extension: .yaml, .yml or .toml. With --force an
existing file is backed up before it is overwritten; see "packidx backup".`,
	Example: `  packidx export packs.yaml
  packidx export --all --force everything.toml`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		reg, err := loadRegistry(c.Context(), appConfig)
		if err != nil {
			return err
		}
		return runExport(c.OutOrStdout(), reg, args[0], exportAll, exportForce, backup.NewManager())
	},
}

func runExport(w io.Writer, reg *registry.Registry, path string, all, force bool, backups *backup.Manager) error {
	if _, err := catalog.FormatOf(path); err != nil {
		return pkerrors.NewUserError(err, "Use a .yaml, .yml or .toml file name")
	}

	var packs []*pack.Pack
	if all {
		packs = reg.Packs().All()
	} else {
		for _, id := range reg.TreePackIDs() {
			packs = append(packs, reg.Packs().Pack(id))
		}
	}

	save := catalog.SaveNew
	if force {
		save = catalog.Save
		if backups != nil {
			manifest, err := backups.Backup(path)
			if err != nil {
				return pkerrors.NewSystemError(err, "Run without --force or choose another file")
			}
			if manifest != nil {
				fmt.Fprintf(w, "Backed up %s as %s\n", path, manifest.ID)
			}
		}
	}
	if err := save(path, packs); err != nil {
		return pkerrors.NewSystemError(err, "Use --force to overwrite an existing file")
	}
	fmt.Fprintf(w, "Exported %d pack(s) to %s\n", len(packs), path)
	return nil
}

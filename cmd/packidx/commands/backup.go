package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/packidx/internal/backup"
	pkerrors "github.com/thoreinstein/packidx/internal/errors"
)

func init() {
	backupCmd.AddCommand(backupListCmd, backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Inspect and restore snapshot backups",
	Long: `Snapshot files overwritten by "packidx export --force" are backed up
first. The newest backups of each file are kept.`,
	RunE: func(c *cobra.Command, _ []string) error {
		return c.Help()
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List the backups of a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return runBackupList(c.OutOrStdout(), backup.NewManager(), args[0])
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file> [backup-id]",
	Short: "Restore a snapshot file from a backup",
	Long:  `Restore a snapshot file. Without a backup id the newest backup is used.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(c *cobra.Command, args []string) error {
		id := ""
		if len(args) == 2 {
			id = args[1]
		}
		return runBackupRestore(c.OutOrStdout(), backup.NewManager(), args[0], id)
	},
}

func runBackupList(w io.Writer, m *backup.Manager, path string) error {
	all, err := m.List(path)
	if errors.Is(err, backup.ErrNoBackupsFound) {
		fmt.Fprintf(w, "No backups of %s.\n", path)
		return nil
	}
	if err != nil {
		return pkerrors.NewSystemError(err, "")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSIZE\t")
	for _, b := range all {
		fmt.Fprintf(tw, "%s\t%s\t%d\t\n", b.ID, b.CreatedAt.Local().Format("2006-01-02 15:04:05"), b.Size)
	}
	return errors.Wrap(tw.Flush(), "writing output")
}

func runBackupRestore(w io.Writer, m *backup.Manager, path, id string) error {
	manifest, err := m.Restore(path, id)
	switch {
	case errors.Is(err, backup.ErrNoBackupsFound):
		return pkerrors.NewUserError(err, "Run: packidx backup list "+path)
	case errors.Is(err, backup.ErrBackupCorrupted):
		return pkerrors.NewSystemError(err, "Pick another backup id")
	case err != nil:
		return pkerrors.NewUserError(err, "Run: packidx backup list "+path)
	}
	fmt.Fprintf(w, "Restored %s from backup %s\n", path, manifest.ID)
	return nil
}

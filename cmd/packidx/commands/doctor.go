package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/packidx/internal/config"
	"github.com/thoreinstein/packidx/internal/doctor"
	pkerrors "github.com/thoreinstein/packidx/internal/errors"
	"github.com/thoreinstein/packidx/internal/logging"
)

var (
	doctorJSON bool
	doctorAll  bool
	doctorFix  bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorAll, "all", false, "show passed and informational checks too")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "reset loose catalog file permissions")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and catalog problems",
	Long: `Run diagnostic checks on the config file, the snapshot files on the
catalog paths and the registry built from them.

Exit codes:
  0 - no errors or warnings
  1 - warnings present, no errors
  2 - errors present`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return runDoctor(c.Context(), c.OutOrStdout(), doctorJSON, doctorAll, doctorFix)
	},
}

// doctorChecks loads the configuration without failing on it so that a
// broken config file becomes a check result.
func doctorChecks() []doctor.Check {
	config.Init()
	cfg, loadErr := config.Load(configPath)
	if loadErr != nil {
		cfg = config.Default()
	}
	if len(catalogPaths) > 0 {
		cfg.CatalogPaths = catalogPaths
	}
	dirs, err := cfg.CatalogDirs()
	if err != nil {
		dirs = cfg.CatalogPaths
	}
	return []doctor.Check{
		doctor.NewConfigCheck(config.FileUsed(), loadErr),
		doctor.NewCatalogCheck(dirs),
		doctor.NewPermissionCheck(dirs),
		doctor.NewRegistryCheck(cfg),
	}
}

func runDoctor(ctx context.Context, w io.Writer, asJSON, all, fix bool) error {
	runner := doctor.NewRunner(doctor.WithLogger(logging.FromContext(ctx)))
	runner.AddCheck(doctorChecks()...)

	report := runner.Run(ctx)
	if fix {
		for _, res := range runner.Fix() {
			if res.Error != nil {
				fmt.Fprintf(w, "%s %s: %v\n", color.RedString("✗"), res.Path, res.Error)
				continue
			}
			fmt.Fprintf(w, "%s %s: %s\n", color.GreenString("✓"), res.Path, res.Description)
		}
	}

	var err error
	if asJSON {
		err = writeDoctorJSON(w, report)
	} else {
		writeDoctorText(w, report, all)
	}
	if err != nil {
		return err
	}

	switch {
	case report.HasErrors():
		return pkerrors.NewExitError(errors.Newf("doctor found %d error(s)", report.Summary.Errors), pkerrors.ExitSystem)
	case report.HasWarnings():
		return pkerrors.NewExitError(errors.Newf("doctor found %d warning(s)", report.Summary.Warnings), pkerrors.ExitUser)
	}
	return nil
}

func writeDoctorJSON(w io.Writer, report *doctor.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(report), "encoding report")
}

func writeDoctorText(w io.Writer, report *doctor.Report, all bool) {
	shown := false
	for _, res := range report.Results {
		problem := res.Status == doctor.SeverityError || res.Status == doctor.SeverityWarning
		if !all && !problem {
			continue
		}
		shown = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(res.Status), res.Category, res.Name, res.Message)
		if res.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", res.FixHint)
		}
	}
	if shown {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	}
	return "?"
}

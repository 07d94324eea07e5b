package doctor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/thoreinstein/packidx/internal/catalog"
	"github.com/thoreinstein/packidx/internal/config"
	"github.com/thoreinstein/packidx/internal/devtree"
	"github.com/thoreinstein/packidx/internal/filter"
	"github.com/thoreinstein/packidx/internal/logging"
	"github.com/thoreinstein/packidx/internal/pack"
	"github.com/thoreinstein/packidx/internal/paths"
	"github.com/thoreinstein/packidx/internal/registry"
)

// ConfigCheck reports on the config file the CLI loaded.
type ConfigCheck struct {
	path    string
	loadErr error
}

var _ Check = (*ConfigCheck)(nil)

// NewConfigCheck creates a check for the config file at path, which failed
// to load with loadErr if that is non-nil. An empty path means no file was
// found.
func NewConfigCheck(path string, loadErr error) *ConfigCheck {
	return &ConfigCheck{path: path, loadErr: loadErr}
}

// Name implements Check.
func (c *ConfigCheck) Name() string { return "config-file" }

// Category implements Check.
func (c *ConfigCheck) Category() string { return "config" }

// Run implements Check.
func (c *ConfigCheck) Run(context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category()}
	switch {
	case c.loadErr != nil:
		res.Status = SeverityError
		res.Message = "config cannot be used: " + c.loadErr.Error()
		res.FixHint = "Fix the file or point --config at a valid one"
		if c.path != "" {
			res.Details = map[string]any{"file": c.path}
		}
	case c.path == "":
		res.Status = SeverityInfo
		res.Message = "no config file found, using defaults"
		res.Details = map[string]any{"searched": paths.ConfigDir()}
	default:
		res.Status = SeverityPass
		res.Message = "loaded " + c.path
	}
	return res
}

// CatalogCheck reads every snapshot file on the catalog paths.
type CatalogCheck struct {
	paths []string
}

var _ Check = (*CatalogCheck)(nil)

// NewCatalogCheck creates a check over the given snapshot files and
// directories.
func NewCatalogCheck(catalogPaths []string) *CatalogCheck {
	return &CatalogCheck{paths: catalogPaths}
}

// Name implements Check.
func (c *CatalogCheck) Name() string { return "catalog-files" }

// Category implements Check.
func (c *CatalogCheck) Category() string { return "catalog" }

// Run implements Check.
func (c *CatalogCheck) Run(ctx context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category()}

	var missing, broken []string
	files, packs := 0, 0
	for _, p := range c.paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			missing = append(missing, p)
			continue
		}
		found, err := catalog.Files(ctx, p)
		if err != nil {
			broken = append(broken, fmt.Sprintf("%s: %v", p, err))
			continue
		}
		for _, f := range found {
			files++
			loaded, err := catalog.LoadFile(f)
			if err != nil {
				broken = append(broken, fmt.Sprintf("%s: %v", f, err))
				continue
			}
			packs += len(loaded)
		}
	}

	switch {
	case len(broken) > 0:
		res.Status = SeverityError
		res.Message = fmt.Sprintf("%d snapshot file(s) cannot be read", len(broken))
		res.Details = map[string]any{"files": broken}
		res.FixHint = "Fix or remove the listed files"
	case files == 0:
		res.Status = SeverityWarning
		res.Message = "no snapshot files found"
		res.Details = map[string]any{"paths": c.paths}
		res.FixHint = "Add snapshot files to a catalog path or pass --catalog"
	case len(missing) > 0:
		res.Status = SeverityInfo
		res.Message = fmt.Sprintf("%d snapshot file(s), %d pack(s); %d catalog path(s) missing", files, packs, len(missing))
		res.Details = map[string]any{"missing": missing}
	default:
		res.Status = SeverityPass
		res.Message = fmt.Sprintf("%d snapshot file(s), %d pack(s)", files, packs)
	}
	return res
}

// PermissionCheck flags catalog files and directories that are writable by
// others or not readable.
type PermissionCheck struct {
	PermissionFixer
	paths []string
}

var _ Check = (*PermissionCheck)(nil)

// NewPermissionCheck creates a permission check over the catalog paths.
func NewPermissionCheck(catalogPaths []string) *PermissionCheck {
	return &PermissionCheck{paths: catalogPaths}
}

// Name implements Check.
func (c *PermissionCheck) Name() string { return "catalog-permissions" }

// Category implements Check.
func (c *PermissionCheck) Category() string { return "filesystem" }

// Run implements Check.
func (c *PermissionCheck) Run(ctx context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category()}
	if runtime.GOOS == "windows" {
		res.Status = SeverityInfo
		res.Message = "permission check skipped on windows"
		return res
	}

	var issues []pathIssue
	checked := 0
	for _, root := range c.paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				issues = append(issues, pathIssue{Path: path, Problem: err.Error()})
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			checked++
			if issue, ok := inspect(path, info); ok {
				issues = append(issues, issue)
			}
			return nil
		})
		if err != nil {
			issues = append(issues, pathIssue{Path: root, Problem: err.Error()})
		}
	}
	c.issues = issues

	switch {
	case len(issues) == 0:
		res.Status = SeverityPass
		res.Message = fmt.Sprintf("%d catalog path(s) checked", checked)
	case c.CountFixable() < len(issues):
		res.Status = SeverityError
		res.Message = fmt.Sprintf("%d catalog path(s) with problems", len(issues))
	default:
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("%d catalog path(s) writable by others", len(issues))
	}
	if len(issues) > 0 {
		lines := make([]string, 0, len(issues))
		for _, issue := range issues {
			lines = append(lines, issue.Path+": "+issue.Problem)
		}
		res.Details = map[string]any{"issues": lines}
		res.Fixable = c.CanFix()
		if res.Fixable {
			res.FixHint = "Run: packidx doctor --fix"
		}
	}
	return res
}

func inspect(path string, info fs.FileInfo) (pathIssue, bool) {
	perm := info.Mode().Perm()
	if info.IsDir() {
		if perm&^secureDirPerm != 0 {
			return pathIssue{Path: path, Dir: true, Perm: perm, Fixable: true,
				Problem: fmt.Sprintf("directory mode %04o, want at most %04o", perm, secureDirPerm)}, true
		}
		return pathIssue{}, false
	}
	if _, err := catalog.FormatOf(path); err != nil {
		return pathIssue{}, false
	}
	f, err := os.Open(path)
	if err != nil {
		return pathIssue{Path: path, Perm: perm, Problem: "file is not readable"}, true
	}
	f.Close()
	if perm&^secureFilePerm != 0 {
		return pathIssue{Path: path, Perm: perm, Fixable: true,
			Problem: fmt.Sprintf("file mode %04o, want at most %04o", perm, secureFilePerm)}, true
	}
	return pathIssue{}, false
}

// RegistryCheck builds the registry the CLI would use and reports pack
// problems that loading alone does not reveal.
type RegistryCheck struct {
	cfg *config.Config
}

var _ Check = (*RegistryCheck)(nil)

// NewRegistryCheck creates a registry check for cfg.
func NewRegistryCheck(cfg *config.Config) *RegistryCheck {
	return &RegistryCheck{cfg: cfg}
}

// Name implements Check.
func (c *RegistryCheck) Name() string { return "pack-registry" }

// Category implements Check.
func (c *RegistryCheck) Category() string { return "packs" }

// Run implements Check.
func (c *RegistryCheck) Run(ctx context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category()}
	cfg := c.cfg
	if cfg == nil {
		cfg = config.Default()
	}

	f, err := filter.New(cfg.Filter)
	if err != nil {
		res.Status = SeverityError
		res.Message = "filter cannot be used: " + err.Error()
		return res
	}
	dirs, err := cfg.CatalogDirs()
	if err != nil {
		res.Status = SeverityError
		res.Message = "catalog paths cannot be resolved: " + err.Error()
		return res
	}
	// Unreadable files are reported by CatalogCheck.
	packs, _ := catalog.Load(ctx, dirs, catalog.WithLogger(logging.NewDiscard()))
	if len(packs) == 0 {
		res.Status = SeverityInfo
		res.Message = "no packs to check"
		return res
	}

	reg := registry.New(registry.WithVendors(cfg.Vendors()), registry.WithFilter(f))
	reg.Refresh(packs)

	var problems, broken []string
	for _, p := range reg.Packs().All() {
		if p.State() == pack.StateError {
			broken = append(broken, p.ID())
		}
	}
	if len(broken) > 0 {
		problems = append(problems, fmt.Sprintf("%d pack(s) in error state", len(broken)))
	}
	if dups := len(packs) - len(reg.Packs().All()); dups > 0 {
		problems = append(problems, fmt.Sprintf("%d duplicate pack version(s) ignored", dups))
	}
	if len(reg.TreePackIDs()) == 0 {
		problems = append(problems, "filter leaves the device tree empty")
	}

	var uninstalled []string
	for _, fam := range reg.Packs().Families() {
		if p := fam.Pack(); p != nil && !p.Installed() {
			uninstalled = append(uninstalled, fam.ID())
		}
	}
	devices := countDevices(reg.Tree())
	families := reg.Packs().ChildCount()

	res.Details = map[string]any{"packs": len(reg.Packs().All()), "families": families, "devices": devices}
	if len(uninstalled) > 0 {
		res.Details["families_not_installed"] = uninstalled
	}
	if len(broken) > 0 {
		res.Details["error_state"] = broken
	}

	if len(problems) > 0 {
		res.Status = SeverityWarning
		res.Message = strings.Join(problems, "; ")
		res.FixHint = "Keep each pack version in one snapshot file and check the filter settings"
		return res
	}
	res.Status = SeverityPass
	res.Message = fmt.Sprintf("%d pack(s) in %d families, %d device(s)", len(reg.Packs().All()), families, devices)
	return res
}

func countDevices(root *devtree.Node) int {
	n := 0
	root.Walk(func(cur *devtree.Node) bool {
		if cur.IsDevice() {
			n++
		}
		return true
	})
	return n
}

package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used under every XDG base directory.
const AppName = "packidx"

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// DefaultDirPerm is the permission for newly created directories.
const DefaultDirPerm = 0o700

// EnsureDir creates path and its parents. A zero perm means DefaultDirPerm.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ResolveHome returns the user's home directory.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ExpandHome replaces a leading "~" with the home directory. Other paths
// are returned cleaned.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return filepath.Clean(path), nil
	}
	home, err := ResolveHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}

// ConfigHome returns the XDG config home directory.
func ConfigHome() string { return xdg.ConfigHome }

// DataHome returns the XDG data home directory.
func DataHome() string { return xdg.DataHome }

// CacheHome returns the XDG cache home directory.
func CacheHome() string { return xdg.CacheHome }

// ConfigDir returns <ConfigHome>/packidx.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// DefaultConfigPath returns <ConfigHome>/packidx/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// CatalogDir returns the default directory scanned for catalog snapshots:
// <DataHome>/packidx/packs.
func CatalogDir() string {
	return filepath.Join(DataHome(), AppName, "packs")
}

// BackupDir returns <DataHome>/packidx/backups, where snapshot files are
// copied before they are overwritten.
func BackupDir() string {
	return filepath.Join(DataHome(), AppName, "backups")
}

// LogDir returns <CacheHome>/packidx/logs, used when --log-file is given a
// bare file name.
func LogDir() string {
	return filepath.Join(CacheHome(), AppName, "logs")
}

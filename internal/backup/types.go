package backup

import (
	"io/fs"
	"time"

	"github.com/cockroachdb/errors"
)

// ManifestVersion is the manifest format version.
const ManifestVersion = 1

// DefaultRetentionCount is the number of backups kept per file.
const DefaultRetentionCount = 5

const (
	manifestName = "manifest.yaml"
	idLayout     = "20060102T150405.000000"
)

var (
	// ErrNoBackupsFound indicates that a file has no backups.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates that a backup copy no longer matches the
	// hash recorded in its manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")
)

// Manifest describes one backup.
type Manifest struct {
	Version   int         `yaml:"version"`
	ID        string      `yaml:"id"`
	CreatedAt time.Time   `yaml:"created_at"`
	Original  string      `yaml:"original"`
	SHA256    string      `yaml:"sha256"`
	Size      int64       `yaml:"size"`
	Mode      fs.FileMode `yaml:"mode"`
}

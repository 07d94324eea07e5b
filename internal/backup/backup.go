package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/packidx/internal/paths"
	"github.com/thoreinstein/packidx/pkg/fileutil"
)

// Manager creates, lists and restores backups.
type Manager struct {
	rootDir   string
	retention int
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the backup root.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		m.rootDir = dir
	}
}

// WithRetentionCount sets how many backups are kept per file.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retention = n
		}
	}
}

// WithClock replaces time.Now for backup ids.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a Manager rooted at paths.BackupDir unless
// WithBackupDir says otherwise.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:   paths.BackupDir(),
		retention: DefaultRetentionCount,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Backup copies the file at path into a new backup and prunes old ones. It
// returns a nil manifest without error when path does not exist.
func (m *Manager) Backup(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", abs)
	}
	if info.IsDir() {
		return nil, errors.Newf("%s is a directory", abs)
	}

	created := m.now().UTC()
	id := created.Format(idLayout)
	dir := filepath.Join(m.fileDir(abs), id)
	if err := paths.EnsureDir(dir, 0); err != nil {
		return nil, errors.Wrap(err, "creating backup directory")
	}

	hash, size, err := copyFile(abs, filepath.Join(dir, filepath.Base(abs)))
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	manifest := &Manifest{
		Version:   ManifestVersion,
		ID:        id,
		CreatedAt: created,
		Original:  abs,
		SHA256:    hash,
		Size:      size,
		Mode:      info.Mode().Perm(),
	}
	if err := fileutil.AtomicWriteYAML(filepath.Join(dir, manifestName), manifest, 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, errors.Wrap(err, "writing manifest")
	}

	if err := m.Prune(abs, m.retention); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}
	return manifest, nil
}

// List returns the backups of the file at path, newest first.
func (m *Manager) List(path string) ([]Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}
	entries, err := os.ReadDir(m.fileDir(abs))
	if os.IsNotExist(err) {
		return nil, errors.WithDetailf(ErrNoBackupsFound, "file %s", abs)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading backup directory")
	}

	var out []Manifest
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		manifest, err := m.Get(abs, e.Name())
		if err != nil {
			continue
		}
		out = append(out, *manifest)
	}
	if len(out) == 0 {
		return nil, errors.WithDetailf(ErrNoBackupsFound, "file %s", abs)
	}
	slices.SortFunc(out, func(a, b Manifest) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Get reads the manifest of one backup.
func (m *Manager) Get(path, id string) (*Manifest, error) {
	if id == "" {
		return nil, errors.New("backup id is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}
	data, err := fileutil.ReadFileWithLimit(filepath.Join(m.fileDir(abs), id, manifestName))
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest of backup %s", id)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrapf(err, "parsing manifest of backup %s", id)
	}
	return &manifest, nil
}

// Restore writes backup id back to path after verifying its hash. An empty
// id restores the newest backup.
func (m *Manager) Restore(path, id string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}
	if id == "" {
		all, err := m.List(abs)
		if err != nil {
			return nil, err
		}
		id = all[0].ID
	}
	manifest, err := m.Get(abs, id)
	if err != nil {
		return nil, err
	}

	copyPath := filepath.Join(m.fileDir(abs), id, filepath.Base(abs))
	data, err := fileutil.ReadFileWithLimit(copyPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading backup %s", id)
	}
	if sum := sha256.Sum256(data); hex.EncodeToString(sum[:]) != manifest.SHA256 {
		return nil, errors.WithDetailf(ErrBackupCorrupted, "backup %s of %s", id, abs)
	}

	mode := manifest.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := fileutil.AtomicWriteFile(abs, data, mode); err != nil {
		return nil, errors.Wrapf(err, "restoring %s", abs)
	}
	return manifest, nil
}

// Prune removes all but the newest keep backups of the file at path.
func (m *Manager) Prune(path string, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}
	all, err := m.List(path)
	if errors.Is(err, ErrNoBackupsFound) {
		return nil
	}
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(path)
	for _, old := range all[min(keep, len(all)):] {
		if err := os.RemoveAll(filepath.Join(m.fileDir(abs), old.ID)); err != nil {
			return errors.Wrapf(err, "removing backup %s", old.ID)
		}
	}
	return nil
}

// fileDir returns the directory holding the backups of abs.
func (m *Manager) fileDir(abs string) string {
	sum := sha256.Sum256([]byte(abs))
	name := strings.ReplaceAll(filepath.Base(abs), string(filepath.Separator), "_")
	return filepath.Join(m.rootDir, name+"-"+hex.EncodeToString(sum[:4]))
}

// copyFile copies src to dst and returns the SHA-256 and size of the copy.
func copyFile(src, dst string) (string, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating backup copy")
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(out, h), in)
	if err != nil {
		out.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}
	if err := out.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing backup copy")
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	t := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithBackupDir(t.TempDir()), WithClock(tickingClock())}, opts...)
	return NewManager(opts...)
}

func TestBackup_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	file := filepath.Join(t.TempDir(), "packs.yaml")
	require.NoError(t, os.WriteFile(file, []byte("packs: []\n"), 0o640))

	manifest, err := m.Backup(file)
	require.NoError(t, err)
	require.NotNil(t, manifest)
	assert.Equal(t, "20261018T100001.000000", manifest.ID)
	assert.Equal(t, file, manifest.Original)
	assert.Equal(t, int64(len("packs: []\n")), manifest.Size)
	assert.Len(t, manifest.SHA256, 64)

	require.NoError(t, os.WriteFile(file, []byte("packs: [broken"), 0o640))

	restored, err := m.Restore(file, "")
	require.NoError(t, err)
	assert.Equal(t, manifest.ID, restored.ID)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "packs: []\n", string(data))
}

func TestBackup_MissingFile(t *testing.T) {
	m := newTestManager(t)

	manifest, err := m.Backup(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Nil(t, manifest)

	_, err = m.List(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, ErrNoBackupsFound))
}

func TestBackup_Retention(t *testing.T) {
	m := newTestManager(t, WithRetentionCount(2))
	file := filepath.Join(t.TempDir(), "packs.toml")

	for i := range 4 {
		require.NoError(t, os.WriteFile(file, []byte{byte('a' + i)}, 0o644))
		_, err := m.Backup(file)
		require.NoError(t, err)
	}

	all, err := m.List(file)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "20261018T100004.000000", all[0].ID, "newest first")
	assert.Equal(t, "20261018T100003.000000", all[1].ID)

	_, err = m.Restore(file, all[1].ID)
	require.NoError(t, err)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "c", string(data))
}

func TestBackup_SameNameDifferentDirs(t *testing.T) {
	m := newTestManager(t)
	a := filepath.Join(t.TempDir(), "packs.yaml")
	b := filepath.Join(t.TempDir(), "packs.yaml")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0o644))

	_, err := m.Backup(a)
	require.NoError(t, err)
	_, err = m.Backup(b)
	require.NoError(t, err)

	listA, err := m.List(a)
	require.NoError(t, err)
	listB, err := m.List(b)
	require.NoError(t, err)
	assert.Len(t, listA, 1)
	assert.Len(t, listB, 1)
	assert.NotEqual(t, listA[0].SHA256, listB[0].SHA256)
}

func TestRestore_Corrupted(t *testing.T) {
	root := t.TempDir()
	m := newTestManager(t, WithBackupDir(root))
	file := filepath.Join(t.TempDir(), "packs.yaml")
	require.NoError(t, os.WriteFile(file, []byte("original"), 0o644))

	manifest, err := m.Backup(file)
	require.NoError(t, err)

	abs, err := filepath.Abs(file)
	require.NoError(t, err)
	copyPath := filepath.Join(m.fileDir(abs), manifest.ID, "packs.yaml")
	require.NoError(t, os.WriteFile(copyPath, []byte("tampered"), 0o600))

	_, err = m.Restore(file, manifest.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackupCorrupted))

	_, err = m.Restore(file, "19990101T000000.000000")
	require.Error(t, err)
}

func TestPrune_RejectsNegative(t *testing.T) {
	m := newTestManager(t)
	require.Error(t, m.Prune("x", -1))
	require.NoError(t, m.Prune(filepath.Join(t.TempDir(), "none.yaml"), 1))
}

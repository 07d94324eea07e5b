package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/packidx/internal/backup"
	"github.com/thoreinstein/packidx/internal/catalog"
	pkerrors "github.com/thoreinstein/packidx/internal/errors"
)

func TestExport(t *testing.T) {
	reg := testRegistry(t)
	path := filepath.Join(t.TempDir(), "out.toml")
	backups := backup.NewManager(backup.WithBackupDir(t.TempDir()))

	var buf bytes.Buffer
	require.NoError(t, runExport(&buf, reg, path, false, false, backups))
	assert.Equal(t, "Exported 3 pack(s) to "+path+"\n", buf.String())

	packs, err := catalog.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, packs, 3)

	err = runExport(&buf, reg, path, false, false, backups)
	require.Error(t, err, "existing file without --force")
	assert.Equal(t, pkerrors.ExitSystem, pkerrors.ExitCode(err))

	buf.Reset()
	require.NoError(t, runExport(&buf, reg, path, true, true, backups))
	assert.Contains(t, buf.String(), "Backed up "+path+" as ")
	assert.Contains(t, buf.String(), "Exported 3 pack(s)")

	saved, err := backups.List(path)
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestExport_BadExtension(t *testing.T) {
	reg := testRegistry(t)

	err := runExport(&bytes.Buffer{}, reg, filepath.Join(t.TempDir(), "out.json"), false, false, nil)
	require.Error(t, err)
	assert.Equal(t, pkerrors.ExitUser, pkerrors.ExitCode(err))
}

package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/packidx/cmd"
	"github.com/thoreinstein/packidx/internal/config"
	pkerrors "github.com/thoreinstein/packidx/internal/errors"
)

func TestConfigShow(t *testing.T) {
	cfg := config.Default()
	cfg.CatalogPaths = []string{"/srv/packs"}
	cfg.Filter.Excluded = []string{"ARM.CMSIS"}

	var buf bytes.Buffer
	require.NoError(t, runConfigShow(&buf, cfg))
	out := buf.String()
	assert.Contains(t, out, "version: 1\n")
	assert.Contains(t, out, "- /srv/packs")
	assert.Contains(t, out, "- ARM.CMSIS")

	buf.Reset()
	require.NoError(t, runConfigShow(&buf, nil))
	assert.Contains(t, buf.String(), "version: 1\n")
}

func TestWriteVersion(t *testing.T) {
	var buf bytes.Buffer
	writeVersion(&buf)
	assert.Contains(t, buf.String(), "packidx version "+cmd.Version+"\n")
	assert.Contains(t, buf.String(), "commit:  "+cmd.Commit)
}

func TestConfigEdit(t *testing.T) {
	resetGlobals(t)
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	var opened []string
	keep := func(_ context.Context, p string) error {
		opened = append(opened, p)
		return nil
	}

	var buf bytes.Buffer
	require.NoError(t, runConfigEdit(context.Background(), &buf, path, keep))
	assert.Equal(t, []string{path}, opened)
	assert.Contains(t, buf.String(), "Created "+path)
	assert.Contains(t, buf.String(), path+" is valid")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	breakIt := func(_ context.Context, p string) error {
		return os.WriteFile(p, []byte("version: 7\n"), 0o600)
	}
	buf.Reset()
	err = runConfigEdit(context.Background(), &buf, path, breakIt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkerrors.ErrInvalidConfig))
	assert.NotContains(t, buf.String(), "Created")

	failing := func(context.Context, string) error { return errors.New("no editor") }
	err = runConfigEdit(context.Background(), &buf, path, failing)
	assert.Equal(t, pkerrors.ExitSystem, pkerrors.ExitCode(err))
}

func TestEditTarget(t *testing.T) {
	resetGlobals(t)
	isolateConfig(t)

	configPath = "/tmp/explicit.yaml"
	assert.Equal(t, "/tmp/explicit.yaml", editTarget())

	configPath = ""
	t.Setenv(config.EnvConfigDir, "/etc/packidx")
	assert.Equal(t, filepath.Join("/etc/packidx", "config.yaml"), editTarget())
}

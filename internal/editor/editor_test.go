package editor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		name   string
		own    string
		editor string
		visual string
		want   []string
	}{
		{name: "own variable wins", own: "hx", editor: "nvim", visual: "code", want: []string{"hx"}},
		{name: "editor", editor: "nvim", visual: "code", want: []string{"nvim"}},
		{name: "visual", visual: "code --wait", want: []string{"code", "--wait"}},
		{name: "blank is unset", editor: "   ", visual: "emacs", want: []string{"emacs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvEditor, tt.own)
			t.Setenv("EDITOR", tt.editor)
			t.Setenv("VISUAL", tt.visual)
			assert.Equal(t, tt.want, Command())
		})
	}
}

func TestCommand_Fallback(t *testing.T) {
	t.Setenv(EnvEditor, "")
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	want := []string{"vi"}
	if _, err := exec.LookPath("nano"); err == nil {
		want = []string{"nano"}
	}
	assert.Equal(t, want, Command())
}

func TestOpen(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as editor")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-editor")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$1 $2\" > \"$2\"\n"), 0o755))
	target := filepath.Join(dir, "config.yaml")

	t.Setenv(EnvEditor, script+" --flag")
	var out bytes.Buffer
	require.NoError(t, Open(context.Background(), target, Streams{Out: &out, Err: &out}))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "--flag "+target+"\n", string(data))

	t.Setenv(EnvEditor, filepath.Join(dir, "missing-editor"))
	require.Error(t, Open(context.Background(), target, Streams{}))
}

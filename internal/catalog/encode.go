package catalog

import (
	"bytes"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/packidx/internal/pack"
	"github.com/thoreinstein/packidx/pkg/fileutil"
)

// SnapshotOf converts packs into their snapshot form, keeping their order.
func SnapshotOf(packs []*pack.Pack) Snapshot {
	snap := Snapshot{Packs: make([]PackEntry, 0, len(packs))}
	for _, p := range packs {
		if p != nil {
			snap.Packs = append(snap.Packs, entryFor(p))
		}
	}
	return snap
}

// Encode renders packs in the given format.
func Encode(packs []*pack.Pack, format Format) ([]byte, error) {
	snap := SnapshotOf(packs)
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return nil, errors.Wrap(err, "encoding YAML snapshot")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "encoding YAML snapshot")
		}
		return buf.Bytes(), nil
	case FormatTOML:
		data, err := toml.Marshal(snap)
		if err != nil {
			return nil, errors.Wrap(err, "encoding TOML snapshot")
		}
		return data, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", format)
}

// Save writes packs atomically to path in the format its extension names.
func Save(path string, packs []*pack.Pack) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	snap := SnapshotOf(packs)
	if format == FormatTOML {
		return fileutil.AtomicWriteTOML(path, snap, 0o644)
	}
	return fileutil.AtomicWriteYAML(path, snap, 0o644)
}

// SaveNew is Save for a file that must not exist yet.
func SaveNew(path string, packs []*pack.Pack) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Newf("%s already exists", path)
	}
	return Save(path, packs)
}

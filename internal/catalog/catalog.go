// Package catalog reads and writes pack snapshots: plain YAML or TOML files
// listing packs with their nested device declarations.
//
// A snapshot is an index format for the CLI and for tests. Files are decoded
// leniently: a pack without vendor, name or version is skipped with a
// warning, a declaration with an empty name or unknown level is skipped
// (with its sub-declarations) at debug level. Only a file that does not parse
// at all is an error.
package catalog

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/packidx/internal/attr"
	pkerrors "github.com/thoreinstein/packidx/internal/errors"
	"github.com/thoreinstein/packidx/internal/logging"
	"github.com/thoreinstein/packidx/internal/pack"
	"github.com/thoreinstein/packidx/pkg/fileutil"
)

// Format is a snapshot encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnsupportedFormat is returned for a file extension that is not a
// snapshot format.
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

// FormatOf derives the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "%s", path)
}

// Option configures loading.
type Option func(*loader)

// WithLogger sets the logger that reports skipped entries.
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

type loader struct {
	logger *slog.Logger
}

func newLoader(opts []Option) *loader {
	l := &loader{logger: logging.NewDiscard()}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Decode parses a snapshot. source names the data in log lines and becomes
// the file name of packs that do not declare one.
func Decode(data []byte, format Format, source string, opts ...Option) ([]*pack.Pack, error) {
	var snap Snapshot
	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&snap)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&snap)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", format)
	}
	if err != nil {
		return nil, errors.WithDetailf(
			errors.Mark(errors.Wrapf(err, "decoding %s", source), pkerrors.ErrInvalidSnapshot),
			"format: %s", format)
	}
	return newLoader(opts).packs(snap, source), nil
}

// LoadFile reads one snapshot file.
func LoadFile(path string, opts ...Option) ([]*pack.Pack, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading snapshot %s", path)
	}
	return Decode(data, format, path, opts...)
}

// Files lists the snapshot files below dir in lexical path order. Files
// with other extensions are ignored and a missing dir yields none.
func Files(ctx context.Context, dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ferr := FormatOf(path); ferr == nil {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", dir)
	}
	slices.Sort(files)
	return files, nil
}

// LoadDir reads every snapshot file Files finds below dir. A missing dir
// holds no packs.
func LoadDir(ctx context.Context, dir string, opts ...Option) ([]*pack.Pack, error) {
	l := newLoader(opts)
	files, err := Files(ctx, dir)
	if err != nil {
		return nil, err
	}
	if files == nil {
		l.logger.Debug("no snapshot files", "dir", dir)
	}

	var out []*pack.Pack
	for _, f := range files {
		packs, err := LoadFile(f, opts...)
		if err != nil {
			return out, err
		}
		l.logger.Debug("loaded snapshot", "file", f, "packs", len(packs))
		out = append(out, packs...)
	}
	return out, nil
}

// Load reads each path as a directory or a single file. It keeps going past
// broken files and returns the packs it could read together with every error.
func Load(ctx context.Context, paths []string, opts ...Option) ([]*pack.Pack, error) {
	var out []*pack.Pack
	var errs []error
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return out, errors.Wrap(err, "loading catalog")
		}

		var packs []*pack.Pack
		var err error
		if info, statErr := os.Stat(p); statErr == nil && !info.IsDir() {
			packs, err = LoadFile(p, opts...)
		} else {
			packs, err = LoadDir(ctx, p, opts...)
		}
		out = append(out, packs...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	switch len(errs) {
	case 0:
		return out, nil
	case 1:
		return out, errs[0]
	}
	return out, errors.Join(errs...)
}

func (l *loader) packs(snap Snapshot, source string) []*pack.Pack {
	var out []*pack.Pack
	for i, e := range snap.Packs {
		if strings.TrimSpace(e.Vendor) == "" || strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Version) == "" {
			l.logger.Warn("skipping pack without vendor, name or version",
				"source", source, "index", i, "vendor", e.Vendor, "name", e.Name, "version", e.Version)
			continue
		}

		state := pack.StateAvailable
		if e.State != "" {
			parsed, err := pack.ParseState(e.State)
			if err != nil {
				l.logger.Warn("unknown pack state", "source", source, "pack", e.Vendor+"."+e.Name, "state", e.State)
				parsed = pack.StateError
			}
			state = parsed
		}

		info := e.info(state, source)
		specs := l.specs(e.Devices, info.Vendor+"."+info.Name+"."+info.Version)
		out = append(out, pack.New(info, specs...))
	}
	return out
}

func (l *loader) specs(entries []DeviceEntry, packID string) []pack.DeviceSpec {
	var out []pack.DeviceSpec
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		level := pack.ParseLevel(e.Level)
		if name == "" || !level.Declarable() {
			l.logger.Debug("skipping device declaration", "pack", packID, "name", e.Name, "level", e.Level)
			continue
		}

		spec := pack.DeviceSpec{
			Name:        name,
			Level:       level,
			Vendor:      e.Vendor,
			Description: e.Description,
			URL:         e.URL,
			Attributes:  attr.Attributes(e.Attributes).Clone(),
			Devices:     l.specs(e.Devices, packID),
		}
		for _, p := range e.Processors {
			spec.Processors = append(spec.Processors, pack.Processor{
				Name:       p.Name,
				Attributes: attr.Attributes(p.Attributes).Clone(),
			})
		}
		for _, m := range e.Memories {
			spec.Memories = append(spec.Memories, pack.Memory(m))
		}
		out = append(out, spec)
	}
	return out
}

package config

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/packidx/internal/filter"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates a schema version other than CurrentVersion.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrConflictingFilter indicates a family that is both excluded and use-latest.
	ErrConflictingFilter = errors.New("family is both excluded and use_latest")
)

// Validate checks a Config. It returns every problem found, or nil.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != CurrentVersion {
		errs = append(errs, errors.Wrapf(ErrUnsupportedVersion, "%d", cfg.Version))
	}

	for i, p := range cfg.CatalogPaths {
		if err := validatePath(p); err != nil {
			errs = append(errs, &PathError{Field: "catalog_paths", Index: i, Path: p, Err: err})
		}
	}

	excluded := make(map[string]bool, len(cfg.Filter.Excluded))
	for _, id := range cfg.Filter.Excluded {
		excluded[strings.ToLower(id)] = true
	}
	for _, id := range cfg.Filter.UseLatest {
		if excluded[strings.ToLower(id)] {
			errs = append(errs, errors.Wrapf(ErrConflictingFilter, "%s", id))
		}
	}

	if pred := strings.TrimSpace(cfg.Filter.Predicate); pred != "" {
		if _, err := filter.Compile(pred); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

// validatePath checks that a path is syntactically usable. It does not check
// existence: a missing catalog directory is simply empty.
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" || strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	if cleaned := filepath.Clean(path); cleaned == "." {
		return ErrInvalidPath
	}
	return nil
}

// PathError represents an error for one entry of a path list.
type PathError struct {
	Field string
	Index int
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + "[" + strconv.Itoa(e.Index) + "]: " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}

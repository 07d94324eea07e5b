// Package filter turns the filter section of the configuration into a
// pack.Filter. Individual packs are selected by an expr-lang predicate such
// as
//
//	installed || (vendor == "ARM" && versionAtLeast(version, "5.9.0"))
package filter

import (
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/thoreinstein/packidx/internal/compare"
	"github.com/thoreinstein/packidx/internal/logging"
	"github.com/thoreinstein/packidx/internal/pack"
)

// ErrInvalidPredicate marks a predicate that does not compile.
var ErrInvalidPredicate = errors.New("invalid filter predicate")

// Config is the user-facing filter definition.
type Config struct {
	// AllLatest reduces every family to its effective pack.
	AllLatest bool `mapstructure:"all_latest" yaml:"all_latest"`
	// Excluded lists family ids left out entirely.
	Excluded []string `mapstructure:"excluded" yaml:"excluded"`
	// UseLatest lists family ids reduced to their effective pack.
	UseLatest []string `mapstructure:"use_latest" yaml:"use_latest"`
	// Predicate is an expr expression evaluated against Env.
	Predicate string `mapstructure:"predicate" yaml:"predicate"`
}

// Env is the environment a predicate is evaluated against.
type Env struct {
	ID        string `expr:"id"`
	Family    string `expr:"family"`
	Vendor    string `expr:"vendor"`
	Name      string `expr:"name"`
	Version   string `expr:"version"`
	State     string `expr:"state"`
	Installed bool   `expr:"installed"`
}

// EnvFor builds the predicate environment of p.
func EnvFor(p *pack.Pack) Env {
	return Env{
		ID:        p.ID(),
		Family:    p.FamilyID(),
		Vendor:    p.Vendor(),
		Name:      p.Name(),
		Version:   p.Version(),
		State:     p.State().String(),
		Installed: p.Installed(),
	}
}

// Option configures a Filter.
type Option func(*Filter)

// WithLogger sets the logger used to report predicate runtime errors.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Filter implements pack.Filter.
type Filter struct {
	allLatest bool
	excluded  map[string]struct{}
	useLatest map[string]struct{}
	predicate string
	program   *vm.Program
	logger    *slog.Logger
}

var _ pack.Filter = (*Filter)(nil)

// New compiles cfg. An empty predicate lets every pack pass.
func New(cfg Config, opts ...Option) (*Filter, error) {
	f := &Filter{
		allLatest: cfg.AllLatest,
		excluded:  idSet(cfg.Excluded),
		useLatest: idSet(cfg.UseLatest),
		predicate: strings.TrimSpace(cfg.Predicate),
		logger:    logging.NewDiscard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	if f.predicate != "" {
		program, err := Compile(f.predicate)
		if err != nil {
			return nil, err
		}
		f.program = program
	}
	return f, nil
}

// Compile compiles a predicate expression. It is exported so configuration
// validation can check predicates without building a filter.
func Compile(predicate string) (*vm.Program, error) {
	program, err := expr.Compile(predicate,
		expr.Env(Env{}),
		expr.AsBool(),
		expr.Function("versionAtLeast", versionAtLeast, new(func(string, string) bool)),
	)
	if err != nil {
		return nil, errors.WithDetailf(
			errors.Mark(errors.Wrap(err, "compile filter predicate"), ErrInvalidPredicate),
			"predicate: %s", predicate)
	}
	return program, nil
}

func versionAtLeast(params ...any) (any, error) {
	v, _ := params[0].(string)
	minimum, _ := params[1].(string)
	return compare.Version(v, minimum) >= 0, nil
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			set[strings.ToLower(id)] = struct{}{}
		}
	}
	return set
}

// UseAllLatest implements pack.Filter.
func (f *Filter) UseAllLatest() bool { return f.allLatest }

// Excluded implements pack.Filter. Family ids compare case-insensitively.
func (f *Filter) Excluded(familyID string) bool {
	_, ok := f.excluded[strings.ToLower(familyID)]
	return ok
}

// UseLatest implements pack.Filter.
func (f *Filter) UseLatest(familyID string) bool {
	_, ok := f.useLatest[strings.ToLower(familyID)]
	return ok
}

// Passes implements pack.Filter. A predicate that fails at runtime rejects
// the pack.
func (f *Filter) Passes(p *pack.Pack) bool {
	if f.program == nil {
		return true
	}
	out, err := expr.Run(f.program, EnvFor(p))
	if err != nil {
		f.logger.Warn("filter predicate failed", "pack", p.ID(), "predicate", f.predicate, "error", err)
		return false
	}
	ok, _ := out.(bool)
	return ok
}

package doctor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thoreinstein/packidx/internal/logging"
)

// Check is one diagnostic.
type Check interface {
	// Name returns the unique identifier of the check.
	Name() string

	// Category groups related checks, e.g. "config" or "catalog".
	Category() string

	// Run executes the check.
	Run(ctx context.Context) *CheckResult
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used to trace check execution.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner executes checks in registration order.
type Runner struct {
	checks []Check
	logger *slog.Logger
}

// NewRunner creates a runner without checks.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{logger: logging.NewDiscard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddCheck registers checks with the runner.
func (r *Runner) AddCheck(checks ...Check) {
	r.checks = append(r.checks, checks...)
}

// Run executes every check and returns the report. A cancelled ctx stops
// the run; the report then holds the checks that completed.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{
		Timestamp: time.Now().UTC(),
		Results:   make([]*CheckResult, 0, len(r.checks)),
	}
	for _, check := range r.checks {
		if ctx.Err() != nil {
			r.logger.Debug("doctor run cancelled", "remaining", len(r.checks)-len(report.Results))
			break
		}
		result := check.Run(ctx)
		if result == nil {
			continue
		}
		if result.Name == "" {
			result.Name = check.Name()
		}
		if result.Category == "" {
			result.Category = check.Category()
		}
		r.logger.Debug("check finished", "check", result.Name, "status", result.Status)
		report.Results = append(report.Results, result)
		report.Summary.add(result.Status)
	}
	return report
}

// Fix runs the fixes of every check that has something to fix. Call it
// after Run.
func (r *Runner) Fix() []FixResult {
	var out []FixResult
	for _, check := range r.checks {
		f, ok := check.(Fixer)
		if !ok || !f.CanFix() {
			continue
		}
		results := f.Fix()
		for _, res := range results {
			r.logger.Info("fix applied", "check", check.Name(), "path", res.Path, "fixed", res.Fixed)
		}
		out = append(out, results...)
	}
	return out
}

// Report aggregates the results of one run.
type Report struct {
	Timestamp time.Time      `json:"timestamp"`
	Results   []*CheckResult `json:"results"`
	Summary   Summary        `json:"summary"`
}

// HasErrors reports whether any check failed with SeverityError.
func (r *Report) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasWarnings reports whether any check ended with SeverityWarning.
func (r *Report) HasWarnings() bool {
	return r.Summary.Warnings > 0
}

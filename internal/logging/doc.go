// Package logging provides structured logging for the packidx CLI using slog.
//
// Loggers write either colorized text (when attached to a terminal) or JSON.
// The registry, device tree and resolver packages accept a *slog.Logger via
// functional options and default to [NewDiscard], so library use stays silent
// unless a caller opts in.
//
// # Levels
//
// In addition to the slog levels the package defines [LevelTrace], used for
// per-device tree mutations. [LevelFromVerbosity] maps the CLI's -v count to
// a level:
//
//	0 -> Warn, 1 -> Info, 2 -> Debug, 3+ -> Trace
//
// # Context
//
// Commands carry their logger in the context:
//
//	ctx = logging.NewContext(ctx, logger)
//	logging.FromContext(ctx).Debug("loaded catalog", "packs", n)
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
package logging

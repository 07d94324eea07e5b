// Package errors holds the exit-code conventions of the packidx CLI.
//
// Sentinel errors are built with github.com/cockroachdb/errors so callers can
// wrap them freely and still test with [errors.Is]:
//
//	if errors.Is(err, pkerrors.ErrNotFound) {
//	    // unknown pack or device
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): command completed successfully
//   - ExitUser (1): bad input, configuration or an unknown pack or device
//   - ExitSystem (2): I/O, permissions or a failed installer
//
// [ExitError] attaches a code and an optional suggestion; main prints the
// suggestion and exits with [ExitCode].
package errors

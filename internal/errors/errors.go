package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Exit codes returned by the packidx binary.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (bad arguments, configuration,
	// unknown packs or devices).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, permissions, a pack
	// installer that failed).
	ExitSystem = 2
)

// Sentinel errors for common failure conditions.
var (
	// ErrNotFound indicates the requested pack or device is unknown.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidSnapshot indicates a catalog snapshot file could not be read.
	ErrInvalidSnapshot = errors.New("invalid catalog snapshot")

	// ErrAmbiguous indicates a lookup matched more than one device.
	ErrAmbiguous = errors.New("ambiguous selection")
)

// ExitError carries an exit code and an optional suggestion up to main.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable hint for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: suggestion}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitSystem, Suggestion: suggestion}
}

// NewConfigError creates an ExitError for a configuration problem.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        errors.Mark(err, ErrInvalidConfig),
		Code:       ExitUser,
		Suggestion: "Check the file given by --config or found in PACKIDX_CONFIG_DIR",
	}
}

// Error returns the message of the underlying error.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps err to a process exit code. Errors that are not an
// ExitError map to ExitSystem, except the user-facing sentinels.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.IsAny(err, ErrNotFound, ErrInvalidConfig, ErrInvalidSnapshot, ErrAmbiguous) {
		return ExitUser
	}
	return ExitSystem
}

// SuggestionOf returns the suggestion attached anywhere in err's chain.
func SuggestionOf(err error) string {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Suggestion
	}
	return ""
}

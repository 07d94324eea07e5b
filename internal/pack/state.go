package pack

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// State is the installation lifecycle stage of a pack. States are ordered:
// a higher state is stronger and wins every tie-break.
type State int

// Pack states from weakest to strongest.
const (
	StateError State = iota
	StateAvailable
	StateDownloadable
	StateDownloaded
	StateGenerated
	StateInstalled
)

// ErrUnknownState indicates a state name that does not map to a State.
var ErrUnknownState = errors.New("unknown pack state")

var stateNames = map[State]string{
	StateError:        "error",
	StateAvailable:    "available",
	StateDownloadable: "downloadable",
	StateDownloaded:   "downloaded",
	StateGenerated:    "generated",
	StateInstalled:    "installed",
}

// String returns the lowercase state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseState parses a state name case-insensitively.
func ParseState(name string) (State, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return StateError, errors.WithDetailf(ErrUnknownState, "state %q", name)
}

// Stronger reports whether s wins a tie-break against other.
func (s State) Stronger(other State) bool {
	return s > other
}

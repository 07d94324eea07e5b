// Package attr provides the key-value attribute sets attached to device
// declarations, processors and project selections, along with the merge and
// matching rules used when resolving a device.
package attr

import (
	"maps"
	"path"
	"slices"
	"strconv"
	"strings"
)

// Standard device attribute keys.
const (
	Dname      = "Dname"
	Dvariant   = "Dvariant"
	Dvendor    = "Dvendor"
	Dfamily    = "Dfamily"
	DsubFamily = "DsubFamily"
	Dcore      = "Dcore"
	Dclock     = "Dclock"
	Dfpu       = "Dfpu"
	Dendian    = "Dendian"
	Pname      = "Pname"
)

// Attributes is a set of named string attributes.
// A nil Attributes is valid and empty for all read operations.
type Attributes map[string]string

// Get returns the value for key, or "" if absent.
func (a Attributes) Get(key string) string {
	return a[key]
}

// GetOr returns the value for key, or def if absent.
func (a Attributes) GetOr(key, def string) string {
	if v, ok := a[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is present.
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Empty reports whether the set carries no attributes.
func (a Attributes) Empty() bool {
	return len(a) == 0
}

// Clone returns an independent copy. Cloning nil yields an empty, non-nil set.
func (a Attributes) Clone() Attributes {
	c := make(Attributes, len(a))
	maps.Copy(c, a)
	return c
}

// Keys returns the attribute names in sorted order.
func (a Attributes) Keys() []string {
	return slices.Sorted(maps.Keys(a))
}

// Merge copies the attributes of other that are not yet present.
// Existing values always win.
func (a Attributes) Merge(other Attributes) {
	for k, v := range other {
		if _, ok := a[k]; !ok {
			a[k] = v
		}
	}
}

// MatchesCommon reports whether every key present in both sets carries a
// matching value. Values match when they are equal or when either value is a
// wildcard pattern that matches the other one.
func (a Attributes) MatchesCommon(other Attributes) bool {
	for k, v := range a {
		ov, ok := other[k]
		if !ok {
			continue
		}
		if !valuesMatch(v, ov) {
			return false
		}
	}
	return true
}

// Int64 parses the value for key as an integer. Decimal and 0x-prefixed
// hexadecimal values are accepted; anything else yields def.
func (a Attributes) Int64(key string, def int64) int64 {
	v := strings.TrimSpace(a[key])
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 0, 64)
	if err != nil {
		return def
	}
	return n
}

func valuesMatch(a, b string) bool {
	if a == b {
		return true
	}
	if hasWildcard(a) {
		if ok, err := path.Match(a, b); err == nil && ok {
			return true
		}
	}
	if hasWildcard(b) {
		if ok, err := path.Match(b, a); err == nil && ok {
			return true
		}
	}
	return false
}

func hasWildcard(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

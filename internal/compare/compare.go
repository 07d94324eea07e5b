// Package compare provides the orderings used by the pack registry and the
// device tree: a case-insensitive alphanumeric ordering for names and a
// version-aware ordering for pack versions and pack identifiers.
package compare

import (
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
)

// Alnum compares a and b case-insensitively, treating runs of digits as
// numbers so that "Device2" sorts before "Device10".
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func Alnum(a, b string) int {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		if unicode.IsDigit(ra[i]) && unicode.IsDigit(rb[j]) {
			ei := digitRunEnd(ra, i)
			ej := digitRunEnd(rb, j)
			if c := compareNumeric(string(ra[i:ei]), string(rb[j:ej])); c != 0 {
				return c
			}
			i, j = ei, ej
			continue
		}
		if ra[i] != rb[j] {
			if ra[i] < rb[j] {
				return -1
			}
			return 1
		}
		i++
		j++
	}

	switch {
	case len(ra)-i < len(rb)-j:
		return -1
	case len(ra)-i > len(rb)-j:
		return 1
	}
	return 0
}

// Version compares two version strings in ascending order.
//
// Both values are parsed as semantic versions first. When either side is not
// a valid semantic version (pack identifiers such as "ARM.CMSIS.5.9.0" are
// not), the strings are compared segment by segment: numeric segments by
// value, everything else lexically. Equal segment sequences fall back to a
// plain string comparison so the ordering stays total.
func Version(a, b string) int {
	if a == b {
		return 0
	}

	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		if c := va.Compare(vb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	}

	sa := splitSegments(a)
	sb := splitSegments(b)
	for k := 0; k < len(sa) && k < len(sb); k++ {
		if c := compareSegment(sa[k], sb[k]); c != 0 {
			return c
		}
	}
	switch {
	case len(sa) < len(sb):
		return -1
	case len(sa) > len(sb):
		return 1
	}
	return strings.Compare(a, b)
}

// VersionDesc orders versions newest first.
func VersionDesc(a, b string) int {
	return Version(b, a)
}

func digitRunEnd(r []rune, start int) int {
	end := start
	for end < len(r) && unicode.IsDigit(r[end]) {
		end++
	}
	return end
}

// compareNumeric compares two digit strings by value without overflowing.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func splitSegments(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '-' || r == '+' || r == '_'
	})
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func compareSegment(a, b string) int {
	numA, numB := isNumeric(a), isNumeric(b)
	switch {
	case numA && numB:
		return compareNumeric(a, b)
	case numA:
		// release segments sort above textual ones ("1.0.0" > "1.0.dev")
		return 1
	case numB:
		return -1
	}
	return Alnum(a, b)
}

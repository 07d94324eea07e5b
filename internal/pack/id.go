package pack

import (
	"strings"

	"github.com/thoreinstein/packidx/internal/attr"
)

// Pack reference attribute keys, as carried by project pack references.
const (
	AttrVendor  = "vendor"
	AttrName    = "name"
	AttrVersion = "version"
)

// FamilyFromID returns the family part ("Vendor.Name") of a pack id.
// An id without a version is returned unchanged.
func FamilyFromID(id string) string {
	if i := secondDot(id); i >= 0 {
		return id[:i]
	}
	return id
}

// VersionFromID returns the version part of a pack id, or "" if the id
// carries no version.
func VersionFromID(id string) string {
	if i := secondDot(id); i >= 0 {
		return id[i+1:]
	}
	return ""
}

// FamilyID joins a vendor and a pack name into a family id.
func FamilyID(vendor, name string) string {
	return vendor + "." + name
}

// ConstructID builds a pack id from pack reference attributes. The version
// is omitted when the attributes do not carry one.
func ConstructID(a attr.Attributes) string {
	id := FamilyID(a.Get(AttrVendor), a.Get(AttrName))
	if v := a.Get(AttrVersion); v != "" {
		id += "." + v
	}
	return id
}

func secondDot(id string) int {
	first := strings.IndexByte(id, '.')
	if first < 0 {
		return -1
	}
	second := strings.IndexByte(id[first+1:], '.')
	if second < 0 {
		return -1
	}
	return first + 1 + second
}

package pack

import "strings"

// Level is a depth in the device hierarchy. Levels strictly increase from
// the root of the device tree to any leaf.
type Level int

// Device hierarchy levels.
const (
	LevelUnknown Level = iota
	LevelRoot
	LevelVendor
	LevelFamily
	LevelSubFamily
	LevelGroup
	LevelDevice
	LevelVariant
	LevelProcessor
)

var levelNames = [...]string{
	LevelUnknown:   "unknown",
	LevelRoot:      "root",
	LevelVendor:    "vendor",
	LevelFamily:    "family",
	LevelSubFamily: "subfamily",
	LevelGroup:     "group",
	LevelDevice:    "device",
	LevelVariant:   "variant",
	LevelProcessor: "processor",
}

// String returns the lowercase level name.
func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return levelNames[LevelUnknown]
	}
	return levelNames[l]
}

// ParseLevel maps a level name to a Level. Unrecognized names yield
// LevelUnknown; "sub-family" and "subFamily" are accepted spellings.
func ParseLevel(name string) Level {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "-", "")
	for l, n := range levelNames {
		if n == name {
			return Level(l)
		}
	}
	return LevelUnknown
}

// Declarable reports whether a pack may declare an element at this level.
// Vendor and processor nodes are synthesized by the device tree.
func (l Level) Declarable() bool {
	return l >= LevelFamily && l <= LevelVariant
}

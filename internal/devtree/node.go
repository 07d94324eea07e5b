package devtree

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/thoreinstein/packidx/internal/attr"
	"github.com/thoreinstein/packidx/internal/compare"
	"github.com/thoreinstein/packidx/internal/ordered"
	"github.com/thoreinstein/packidx/internal/pack"
)

// Node is one element of the device tree.
type Node struct {
	name  string
	level pack.Level

	// parent does not own the node; the parent's children map does. It is
	// cleared when the node is detached.
	parent   *Node
	children *ordered.Map[*Node]

	// entries holds the contributing declarations keyed by pack id,
	// newest version first.
	entries *ordered.Map[*pack.Device]

	// names holds the device names registered on this node or below it.
	// selfNamed is set when this node registered its own name.
	names     map[string]struct{}
	selfNamed bool

	settings *settings
}

var _ ordered.Children[*Node] = (*Node)(nil)

func newNode(name string, level pack.Level, parent *Node, s *settings) *Node {
	return &Node{
		name:     name,
		level:    level,
		parent:   parent,
		children: ordered.New[*Node](compare.Alnum),
		entries:  ordered.New[*pack.Device](compare.VersionDesc),
		names:    make(map[string]struct{}),
		settings: s,
	}
}

// Name returns the node name. Processor leaves and single-core devices with a
// named processor are called "device:processor".
func (n *Node) Name() string { return n.name }

// Level returns the hierarchy level of the node.
func (n *Node) Level() pack.Level { return n.level }

// Parent returns the enclosing node, or nil for the root and detached nodes.
func (n *Node) Parent() *Node { return n.parent }

// Root returns the top of the tree n belongs to.
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Child returns the child with the given name. Names compare
// case-insensitively.
func (n *Node) Child(name string) (*Node, bool) {
	return n.children.Get(name)
}

// Children returns the children in alphanumeric order.
func (n *Node) Children() []*Node {
	return n.children.Values()
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return n.children.Len()
}

// Walk visits n and its descendants depth first, children in order. It stops
// as soon as fn returns false and reports whether the walk completed.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children.All() {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Devices returns the contributing declarations, newest pack version first.
func (n *Node) Devices() []*pack.Device {
	return n.entries.Values()
}

// Device returns the declaration to use: the first one from an installed
// pack, else the one from the newest pack.
func (n *Node) Device() *pack.Device {
	for _, d := range n.entries.All() {
		if d.Pack().Installed() {
			return d
		}
	}
	_, d, ok := n.entries.First()
	if !ok {
		return nil
	}
	return d
}

// IsDevice reports whether n is a selectable device: a leaf at Device level
// or below that has a declaration.
func (n *Node) IsDevice() bool {
	return n.level >= pack.LevelDevice && n.children.Len() == 0 && n.Device() != nil
}

// ProcessorName returns the part of the name after the first ':' or "".
func (n *Node) ProcessorName() string {
	if _, proc, ok := strings.Cut(n.name, ":"); ok {
		return proc
	}
	return ""
}

// EffectiveAttributes returns the effective attributes of Device() for this
// node's processor, or nil if the node has no declaration.
func (n *Node) EffectiveAttributes() attr.Attributes {
	d := n.Device()
	if d == nil {
		return nil
	}
	return d.EffectiveAttributes(n.ProcessorName())
}

// DeviceNames returns the names of all devices and variants at or below n,
// sorted.
func (n *Node) DeviceNames() []string {
	out := make([]string, 0, len(n.names))
	for name := range n.names {
		out = append(out, name)
	}
	slices.SortFunc(out, compare.Alnum)
	return out
}

// HasDeviceName reports whether a device or variant called name exists at or
// below n.
func (n *Node) HasDeviceName(name string) bool {
	_, ok := n.names[name]
	return ok
}

// AllPackIDs returns the family ids of every pack contributing to n or its
// descendants, sorted.
func (n *Node) AllPackIDs() []string {
	set := make(map[string]struct{})
	n.Walk(func(cur *Node) bool {
		for id := range cur.entries.All() {
			set[pack.FamilyFromID(id)] = struct{}{}
		}
		return true
	})
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.SortFunc(out, compare.Alnum)
	return out
}

// VendorNode returns the vendor-level node n belongs to, or nil for the root.
func (n *Node) VendorNode() *Node {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.level == pack.LevelVendor {
			return cur
		}
	}
	return nil
}

// VendorNodeFor returns the vendor node for the given vendor spelling.
func (n *Node) VendorNodeFor(vendorName string) *Node {
	root := n.Root()
	child, ok := root.children.Get(root.settings.vendors.OfficialVendorName(vendorName))
	if !ok {
		return nil
	}
	return child
}

// VendorName returns the name of the vendor node n belongs to.
func (n *Node) VendorName() string {
	if v := n.VendorNode(); v != nil {
		return v.name
	}
	return ""
}

// Description returns the description of Device(), falling back to the
// nearest ancestor that has one.
func (n *Node) Description() string {
	for cur := n; cur != nil; cur = cur.parent {
		if d := cur.Device(); d != nil && d.Description() != "" {
			return d.Description()
		}
	}
	return ""
}

// URL returns the documentation URL of Device(), falling back to the nearest
// ancestor that has one.
func (n *Node) URL() string {
	for cur := n; cur != nil; cur = cur.parent {
		if d := cur.Device(); d != nil && d.URL() != "" {
			return d.URL()
		}
	}
	return ""
}

func (n *Node) logger() *slog.Logger {
	return n.settings.logger
}

func (n *Node) String() string {
	return n.level.String() + " " + n.name
}

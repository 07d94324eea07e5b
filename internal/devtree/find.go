package devtree

import (
	"strings"

	"github.com/thoreinstein/packidx/internal/attr"
	"github.com/thoreinstein/packidx/internal/pack"
)

// FindItem searches n and its descendants for a node called name.
//
// At the root a non-empty vendor restricts the search to that vendor's
// subtree. Children are searched before grandchildren, in alphanumeric
// order, and the first match wins. With onlyDevice set, matches at SubFamily
// level or above are skipped.
//
// A name containing '*' that matches a child literally yields the child's
// parent: such names denote a group of devices rather than one of them.
func (n *Node) FindItem(name, vendorName string, onlyDevice bool) *Node {
	if n.level == pack.LevelRoot && vendorName != "" {
		official := n.settings.vendors.OfficialVendorName(vendorName)
		v, ok := n.children.Get(official)
		if !ok {
			return nil
		}
		return v.FindItem(name, official, onlyDevice)
	}

	if c, ok := n.children.Get(name); ok {
		switch {
		case !onlyDevice && strings.Contains(name, "*"):
			return c.parent
		case !onlyDevice || deepEnough(c):
			return c
		}
	}

	for _, c := range n.children.All() {
		if found := c.FindItem(name, vendorName, onlyDevice); found != nil && (!onlyDevice || deepEnough(found)) {
			return found
		}
	}
	return nil
}

func deepEnough(n *Node) bool {
	return n.level > pack.LevelSubFamily
}

// FindByAttributes finds the device named by Dvariant, else Dname, of the
// given vendor. When Pname is set the "name:processor" node is tried first.
func (n *Node) FindByAttributes(a attr.Attributes) *Node {
	name := a.Get(attr.Dvariant)
	if name == "" {
		name = a.Get(attr.Dname)
	}
	if name == "" {
		return nil
	}
	vendorName := a.Get(attr.Dvendor)
	if proc := a.Get(attr.Pname); proc != "" {
		if found := n.FindItem(name+":"+proc, vendorName, true); found != nil {
			return found
		}
	}
	return n.FindItem(name, vendorName, true)
}

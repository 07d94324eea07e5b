package devtree

import (
	"context"
	"strings"

	"github.com/thoreinstein/packidx/internal/compare"
	"github.com/thoreinstein/packidx/internal/logging"
	"github.com/thoreinstein/packidx/internal/pack"
)

// AddDevices adds every device declaration of p.
func (n *Node) AddDevices(p *pack.Pack) {
	if p == nil {
		return
	}
	for _, d := range p.Devices() {
		n.AddDevice(d)
	}
}

// AddDevice places d and its sub-declarations in the tree below n. Invalid
// declarations are skipped.
func (n *Node) AddDevice(d *pack.Device) {
	if !n.accept(d) {
		return
	}
	n.addDevice(d)
}

// RemoveDevices removes every device declaration of p.
func (n *Node) RemoveDevices(p *pack.Pack) {
	if p == nil {
		return
	}
	for _, d := range p.Devices() {
		n.RemoveDevice(d)
	}
}

// RemoveDevice removes d and its sub-declarations, pruning nodes that are
// left without declarations and children.
func (n *Node) RemoveDevice(d *pack.Device) {
	if !n.accept(d) {
		return
	}
	n.removeDevice(d)
}

func (n *Node) accept(d *pack.Device) bool {
	if d == nil || d.Pack() == nil {
		return false
	}
	if !d.Valid() {
		n.logger().Debug("skipping invalid device declaration",
			"pack", d.Pack().ID(), "name", d.Name(), "level", d.Level())
		return false
	}
	return true
}

func (n *Node) addDevice(d *pack.Device) {
	level := d.Level()

	switch {
	case n.level == level || n.level == pack.LevelProcessor:
		n.putEntry(d)
		n.rename()
		if n.level == pack.LevelProcessor {
			return
		}
		subs := validDevices(d)
		for _, sub := range subs {
			n.addDevice(sub)
		}
		if len(subs) == 0 && level >= pack.LevelDevice && d.ProcessorCount() > 1 {
			for _, proc := range d.Processors() {
				n.child(d.Name()+":"+proc.Name, pack.LevelProcessor).addDevice(d)
			}
		}
		n.syncSelfName()

	case n.level == pack.LevelRoot:
		name := n.vendorName(d)
		if name == "" {
			n.logger().Debug("skipping device declaration without vendor",
				"pack", d.Pack().ID(), "name", d.Name())
			return
		}
		v := n.child(name, pack.LevelVendor)
		v.addDevice(d)
		v.rename()

	case n.level > level:
		n.logger().Debug("declaration level above node level",
			"node", n.name, "name", d.Name(), "level", level)

	default:
		n.child(childName(d), level).addDevice(d)
	}
}

func (n *Node) removeDevice(d *pack.Device) {
	level := d.Level()

	switch {
	case n.level == level || n.level == pack.LevelProcessor:
		n.entries.Delete(d.Pack().ID())
		if n.level != pack.LevelProcessor {
			subs := validDevices(d)
			for _, sub := range subs {
				n.removeDevice(sub)
			}
			if len(subs) == 0 && level >= pack.LevelDevice && d.ProcessorCount() > 1 {
				for _, proc := range d.Processors() {
					if c, ok := n.children.Get(d.Name() + ":" + proc.Name); ok {
						c.removeDevice(d)
					}
				}
			}
		}
		n.syncSelfName()
		n.rename()
		n.prune()

	case n.level == pack.LevelRoot:
		name := n.vendorName(d)
		if name == "" {
			return
		}
		if c, ok := n.children.Get(name); ok {
			c.removeDevice(d)
			if c.parent != nil {
				c.rename()
			}
		}

	case n.level > level:
		return

	default:
		if c, ok := n.children.Get(childName(d)); ok {
			c.removeDevice(d)
		}
	}
}

// putEntry registers d under its pack id. On an id collision the declaration
// from the pack with the stronger state wins.
func (n *Node) putEntry(d *pack.Device) {
	id := d.Pack().ID()
	if cur, ok := n.entries.Get(id); ok && !d.Pack().State().Stronger(cur.Pack().State()) {
		return
	}
	n.entries.Set(id, d)
	n.logger().Log(context.Background(), logging.LevelTrace, "device entry added", "node", n.name, "pack", id)
}

// child returns the child called name, creating it at level if needed.
func (n *Node) child(name string, level pack.Level) *Node {
	if c, ok := n.children.Get(name); ok {
		return c
	}
	c := newNode(name, level, n, n.settings)
	n.children.Set(name, c)
	return c
}

func (n *Node) vendorName(d *pack.Device) string {
	return n.settings.vendors.OfficialVendorName(d.Vendor())
}

// childName is the node name for d: its own name, suffixed with ":processor"
// for a device-level declaration with exactly one named processor.
func childName(d *pack.Device) string {
	if d.Level() < pack.LevelDevice {
		return d.Name()
	}
	procs := d.Processors()
	if len(procs) == 1 && procs[0].Name != "" {
		return d.Name() + ":" + procs[0].Name
	}
	return d.Name()
}

func validDevices(d *pack.Device) []*pack.Device {
	var out []*pack.Device
	for _, sub := range d.Devices() {
		if sub.Valid() {
			out = append(out, sub)
		}
	}
	return out
}

// selfNaming reports whether n contributes its own name to the device names:
// variants always do, devices while some declaration has no sub-declarations.
func (n *Node) selfNaming() bool {
	switch n.level {
	case pack.LevelVariant:
		return n.entries.Len() > 0
	case pack.LevelDevice:
		for _, d := range n.entries.All() {
			if len(validDevices(d)) == 0 {
				return true
			}
		}
	}
	return false
}

// syncSelfName registers or drops n's own name to match selfNaming.
func (n *Node) syncSelfName() {
	switch want := n.selfNaming(); {
	case want && !n.selfNamed:
		n.registerName()
	case !want && n.selfNamed:
		n.selfNamed = false
		n.dropNames([]string{n.name})
	}
}

// spelling returns the name n gets from its current declarations: the
// smallest of the spellings they use. Vendor nodes take the spelling from the
// declarations of their children. It returns "" when nothing backs n.
func (n *Node) spelling() string {
	var best string
	consider := func(s string) {
		if s != "" && (best == "" || strings.Compare(s, best) < 0) {
			best = s
		}
	}

	switch n.level {
	case pack.LevelRoot:
	case pack.LevelVendor:
		for _, c := range n.children.All() {
			for _, d := range c.entries.All() {
				consider(n.vendorName(d))
			}
		}
	case pack.LevelProcessor:
		proc := n.ProcessorName()
		for _, d := range n.entries.All() {
			for _, p := range d.Processors() {
				if compare.Alnum(p.Name, proc) == 0 {
					consider(d.Name() + ":" + p.Name)
				}
			}
		}
	default:
		for _, d := range n.entries.All() {
			consider(childName(d))
		}
	}
	return best
}

// rename gives n the spelling of its current declarations.
func (n *Node) rename() {
	name := n.spelling()
	if name == "" || name == n.name {
		return
	}

	named := n.selfNamed
	if named {
		n.selfNamed = false
		n.dropNames([]string{n.name})
	}
	if n.parent != nil {
		n.parent.children.Delete(n.name)
		n.name = name
		n.parent.children.Set(name, n)
	} else {
		n.name = name
	}
	if named {
		n.registerName()
	}
}

// registerName adds n's own name to n and every ancestor.
func (n *Node) registerName() {
	n.selfNamed = true
	for cur := n; cur != nil; cur = cur.parent {
		cur.names[n.name] = struct{}{}
	}
}

// carries reports whether name is still provided by n itself or a child.
func (n *Node) carries(name string) bool {
	if n.selfNamed && n.name == name {
		return true
	}
	for _, c := range n.children.All() {
		if _, ok := c.names[name]; ok {
			return true
		}
	}
	return false
}

// prune detaches n if it has neither declarations nor children, then
// continues with the former parent. The root is never detached.
func (n *Node) prune() {
	if n.entries.Len() > 0 {
		return
	}
	n.selfNamed = false
	n.dropNames(n.namesCopy())
	if n.parent == nil || n.children.Len() > 0 {
		return
	}

	parent := n.parent
	parent.children.Delete(n.name)
	n.parent = nil
	n.logger().Log(context.Background(), logging.LevelTrace, "node pruned", "node", n.name, "level", n.level)

	if parent.level != pack.LevelRoot {
		parent.prune()
	}
}

// dropNames removes the given names from n and its ancestors unless some
// node on the way still carries them.
func (n *Node) dropNames(names []string) {
	for cur := n; cur != nil && len(names) > 0; cur = cur.parent {
		kept := names[:0]
		for _, name := range names {
			if cur.carries(name) {
				continue
			}
			delete(cur.names, name)
			kept = append(kept, name)
		}
		names = kept
	}
}

func (n *Node) namesCopy() []string {
	out := make([]string, 0, len(n.names))
	for name := range n.names {
		out = append(out, name)
	}
	return out
}

// Package resolve turns a node of the device tree into the concrete device a
// project uses, and reports which referenced packs are missing.
package resolve

import (
	"strings"

	"github.com/thoreinstein/packidx/internal/attr"
	"github.com/thoreinstein/packidx/internal/devtree"
	"github.com/thoreinstein/packidx/internal/pack"
)

// Evaluation is the outcome of checking a resolved device against a project.
type Evaluation int

// Evaluation results.
const (
	Undefined Evaluation = iota
	Match
	Mismatch
	Missing
	Unavailable
)

func (e Evaluation) String() string {
	switch e {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	case Missing:
		return "missing"
	case Unavailable:
		return "unavailable"
	}
	return "undefined"
}

// Device is a device selection: the chosen declaration, the processor and the
// attributes recorded for the project.
type Device struct {
	name      string
	entry     *pack.Device
	processor string
	// hasProcessor is false for a multi-core device selected without a
	// processor.
	hasProcessor bool
	attrs        attr.Attributes
	eval         Evaluation

	vendorNode *devtree.Node
}

// New resolves node. When saved is empty the effective attributes of the
// node's declaration are copied; otherwise saved is kept as is. A processor
// name comes from a "name:processor" node name, from a saved Pname, or is ""
// for a single-core device.
func New(node *devtree.Node, saved attr.Attributes) *Device {
	d := &Device{attrs: saved.Clone()}
	if node == nil {
		return d
	}

	d.name = node.Name()
	d.entry = node.Device()
	d.vendorNode = node.VendorNode()
	switch {
	case strings.Contains(d.name, ":"):
		d.processor, d.hasProcessor = node.ProcessorName(), true
	case d.entry == nil || d.entry.ProcessorCount() == 1:
		d.hasProcessor = true
	}
	if p := d.attrs.Get(attr.Pname); p != "" {
		d.processor, d.hasProcessor = p, true
	}

	if d.entry != nil && d.attrs.Empty() {
		d.attrs.Merge(d.entry.EffectiveAttributes(""))
		if d.hasProcessor {
			if d.processor != "" {
				d.attrs[attr.Pname] = d.processor
			}
			if proc, ok := d.entry.Processor(d.processor); ok {
				d.attrs.Merge(proc.Attributes)
			}
		}
	}
	return d
}

// Name returns the node name the device was resolved from.
func (d *Device) Name() string { return d.name }

// Entry returns the chosen declaration, or nil if the node had none.
func (d *Device) Entry() *pack.Device { return d.entry }

// Pack returns the pack of the chosen declaration.
func (d *Device) Pack() *pack.Pack {
	if d.entry == nil {
		return nil
	}
	return d.entry.Pack()
}

// ProcessorName returns the selected processor and whether one is selected.
func (d *Device) ProcessorName() (string, bool) {
	return d.processor, d.hasProcessor
}

// Attributes returns a copy of the recorded attributes.
func (d *Device) Attributes() attr.Attributes { return d.attrs.Clone() }

// Evaluation returns the result of the last Evaluate call.
func (d *Device) Evaluation() Evaluation { return d.eval }

// Evaluate checks the device against the attributes stored in a project and
// records the result. Dvendor is compared through the tree's vendor
// normalizer, so "NXP:11" and "Freescale" select the same vendor.
func (d *Device) Evaluate(project attr.Attributes) Evaluation {
	rest := project.Clone()
	delete(rest, attr.Dvendor)

	switch {
	case d.entry == nil:
		d.eval = Missing
	case !d.attrs.MatchesCommon(rest) || !d.sameVendor(project.Get(attr.Dvendor)):
		d.eval = Mismatch
	case !usable(d.entry.Pack().State()):
		d.eval = Unavailable
	default:
		d.eval = Match
	}
	return d.eval
}

func (d *Device) sameVendor(raw string) bool {
	if raw == "" || d.vendorNode == nil {
		return true
	}
	return d.vendorNode.VendorNodeFor(raw) == d.vendorNode
}

func usable(s pack.State) bool {
	return s == pack.StateInstalled || s == pack.StateGenerated
}

// Resolve finds the device described by selection (Dname or Dvariant, Dvendor
// and optionally Pname) and evaluates it against selection.
func Resolve(tree *devtree.Node, selection attr.Attributes) (*Device, bool) {
	if tree == nil {
		return nil, false
	}
	node := tree.FindByAttributes(selection)
	if node == nil {
		return nil, false
	}
	d := New(node, nil)
	d.Evaluate(selection)
	return d, true
}

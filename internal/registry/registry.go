// Package registry keeps the pack collection and the device tree in step.
//
// Every pack goes into the collection. The device tree receives the packs
// selected by the configured filter, or all packs when there is none. After
// each mutation the tree holds exactly the devices that a full rebuild over
// the same packs would produce.
package registry

import (
	"log/slog"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/packidx/internal/devtree"
	"github.com/thoreinstein/packidx/internal/logging"
	"github.com/thoreinstein/packidx/internal/pack"
	"github.com/thoreinstein/packidx/internal/vendor"
)

var (
	// ErrPackNotFound indicates a pack id unknown to the registry.
	ErrPackNotFound = errors.New("pack not found")
	// ErrDuplicatePack indicates an attempt to install a registered version.
	ErrDuplicatePack = errors.New("pack already registered")
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger passed on to the collection and the tree.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithVendors sets the vendor normalizer of the device tree.
func WithVendors(n vendor.Normalizer) Option {
	return func(r *Registry) {
		if n != nil {
			r.vendors = n
		}
	}
}

// WithFilter restricts the device tree to the packs selected by f.
func WithFilter(f pack.Filter) Option {
	return func(r *Registry) {
		r.filter = f
	}
}

// Registry owns a pack collection and the device tree built from it. It
// expects a single writer.
type Registry struct {
	logger  *slog.Logger
	vendors vendor.Normalizer
	filter  pack.Filter

	packs  *pack.Collection
	tree   *devtree.Node
	inTree map[string]*pack.Pack
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger:  logging.NewDiscard(),
		vendors: vendor.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.reset(nil)
	return r
}

// Packs returns the pack collection.
func (r *Registry) Packs() *pack.Collection { return r.packs }

// Tree returns the root of the device tree.
func (r *Registry) Tree() *devtree.Node { return r.tree }

// Install registers p and adds its devices to the tree if the filter selects
// it. Installing a version may also swap which version of its family the
// filter selects.
func (r *Registry) Install(p *pack.Pack) error {
	if p == nil {
		return errors.New("install: nil pack")
	}
	if !r.packs.Add(p) {
		return errors.WithDetailf(ErrDuplicatePack, "pack %s", p.ID())
	}
	r.logger.Debug("pack registered", "pack", p.ID(), "state", p.State())
	r.sync()
	return nil
}

// Remove unregisters the pack with the given id and removes its devices
// from the tree. A family id without version removes the family's effective
// pack.
func (r *Registry) Remove(id string) error {
	p := r.packs.Pack(id)
	if p == nil {
		return errors.WithDetailf(ErrPackNotFound, "pack %s", id)
	}
	r.packs.Remove(p.ID())
	r.logger.Debug("pack removed", "pack", p.ID())
	r.sync()
	return nil
}

// Refresh replaces the registry content with packs and rebuilds the tree.
// Duplicate versions keep the first occurrence.
func (r *Registry) Refresh(packs []*pack.Pack) {
	r.reset(packs)
	r.logger.Info("registry refreshed", "packs", len(r.packs.All()), "tree_packs", len(r.inTree))
}

func (r *Registry) reset(packs []*pack.Pack) {
	r.packs = pack.NewCollection(pack.WithLogger(r.logger))
	for _, p := range packs {
		r.packs.Add(p)
	}
	selected := r.treePacks()
	r.tree = devtree.CreateTree(selected, r.treeOptions()...)
	r.inTree = make(map[string]*pack.Pack, len(selected))
	for _, p := range selected {
		r.inTree[p.ID()] = p
	}
}

func (r *Registry) treeOptions() []devtree.Option {
	return []devtree.Option{devtree.WithVendors(r.vendors), devtree.WithLogger(r.logger)}
}

// treePacks returns the packs whose devices belong in the tree.
func (r *Registry) treePacks() []*pack.Pack {
	if r.filter == nil {
		return r.packs.All()
	}
	return r.packs.FilteredPacks(r.filter)
}

// TreePackIDs returns the ids of the packs currently in the tree, sorted.
func (r *Registry) TreePackIDs() []string {
	ids := make([]string, 0, len(r.inTree))
	for id := range r.inTree {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// sync brings the tree in line with treePacks by removing and adding the
// difference.
func (r *Registry) sync() {
	selected := r.treePacks()
	want := make(map[string]*pack.Pack, len(selected))
	for _, p := range selected {
		want[p.ID()] = p
	}

	for id, p := range r.inTree {
		if w, ok := want[id]; !ok || w != p {
			r.tree.RemoveDevices(p)
			delete(r.inTree, id)
		}
	}
	for _, p := range selected {
		if _, ok := r.inTree[p.ID()]; !ok {
			r.tree.AddDevices(p)
			r.inTree[p.ID()] = p
		}
	}
}

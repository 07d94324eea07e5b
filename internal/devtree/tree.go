// Package devtree builds the device hierarchy shown to users from the device
// declarations of many packs.
//
// The tree is organised by level: Root, Vendor, Family, SubFamily, Device,
// Variant and, for multi-core devices, one Processor leaf per core. Each node
// keeps the declarations that contributed to it, keyed by pack id, so the
// same device declared by several pack versions appears once. Removing a
// pack's declarations prunes nodes left without declarations and children.
//
// A tree expects a single writer; concurrent reads are safe only while no
// mutation is running.
package devtree

import (
	"log/slog"

	"github.com/thoreinstein/packidx/internal/logging"
	"github.com/thoreinstein/packidx/internal/pack"
	"github.com/thoreinstein/packidx/internal/vendor"
)

// RootName is the display name of the root node.
const RootName = "All Devices"

// Option configures a tree.
type Option func(*settings)

type settings struct {
	vendors vendor.Normalizer
	logger  *slog.Logger
}

// WithVendors sets the normalizer used to route declarations to vendor nodes.
func WithVendors(n vendor.Normalizer) Option {
	return func(s *settings) {
		if n != nil {
			s.vendors = n
		}
	}
}

// WithLogger sets the logger for skipped declarations and tree mutations.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewRoot creates an empty tree.
func NewRoot(opts ...Option) *Node {
	s := &settings{
		vendors: vendor.Default(),
		logger:  logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return newNode(RootName, pack.LevelRoot, nil, s)
}

// CreateTree creates a tree holding the devices of every pack.
func CreateTree(packs []*pack.Pack, opts ...Option) *Node {
	root := NewRoot(opts...)
	for _, p := range packs {
		root.AddDevices(p)
	}
	return root
}

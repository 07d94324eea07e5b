package pack

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/thoreinstein/packidx/internal/compare"
	"github.com/thoreinstein/packidx/internal/logging"
	"github.com/thoreinstein/packidx/internal/ordered"
)

// Filter selects which packs of a collection take part in a query.
type Filter interface {
	// UseAllLatest reports whether the filter reduces to "one pack per family".
	UseAllLatest() bool
	// Excluded reports whether the family is skipped entirely.
	Excluded(familyID string) bool
	// UseLatest reports whether only the family's effective pack is used.
	UseLatest(familyID string) bool
	// Passes reports whether an individual pack is used.
	Passes(p *Pack) bool
}

// Option configures a Collection.
type Option func(*Collection)

// WithLogger sets the logger used to report ignored input.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Collection holds all pack families keyed by family id.
//
// A collection expects a single writer. LatestPackIDs is the only method that
// may be called concurrently with mutations; all other reads must happen
// after the last write.
type Collection struct {
	families *ordered.Map[*Family]
	logger   *slog.Logger

	// mu guards generation and the latest-id cell, and is held while the
	// family map changes so LatestPackIDs never observes a partial update.
	mu         sync.Mutex
	generation uint64
	latestGen  uint64
	latestIDs  []string
}

var _ ordered.Children[*Family] = (*Collection)(nil)

// NewCollection creates an empty collection.
func NewCollection(opts ...Option) *Collection {
	c := &Collection{
		families: ordered.New[*Family](compare.Alnum),
		logger:   logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add routes p into its family, creating the family if needed. It returns
// false if p is nil or its version is already registered.
func (c *Collection) Add(p *Pack) bool {
	if p == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.families.Get(p.FamilyID())
	if !ok {
		f = newFamily(p.FamilyID())
		c.families.Set(f.ID(), f)
	}
	if !f.add(p) {
		c.logger.Debug("ignoring duplicate pack version", "pack", p.ID())
		return false
	}
	c.generation++
	return true
}

// Remove deletes the pack with the given id. Removing the last version of a
// family removes the family.
func (c *Collection) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.families.Get(FamilyFromID(id))
	if !ok || !f.remove(VersionFromID(id)) {
		return false
	}
	if f.Len() == 0 {
		c.families.Delete(f.ID())
	}
	c.generation++
	return true
}

// RemoveFamily deletes a family with all its versions.
func (c *Collection) RemoveFamily(familyID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.families.Delete(familyID) {
		return false
	}
	c.generation++
	return true
}

// Pack looks a pack up by id. An id without version resolves to the family's
// effective pack.
func (c *Collection) Pack(id string) *Pack {
	f, ok := c.families.Get(FamilyFromID(id))
	if !ok {
		return nil
	}
	version := VersionFromID(id)
	if version == "" {
		return f.Pack()
	}
	return f.Version(version)
}

// Family returns the family with the given id.
func (c *Collection) Family(familyID string) (*Family, bool) {
	return c.families.Get(familyID)
}

// Families returns all families in id order.
func (c *Collection) Families() []*Family {
	return c.families.Values()
}

// Child implements ordered.Children.
func (c *Collection) Child(familyID string) (*Family, bool) {
	return c.Family(familyID)
}

// Children implements ordered.Children.
func (c *Collection) Children() []*Family {
	return c.Families()
}

// ChildCount implements ordered.Children.
func (c *Collection) ChildCount() int {
	return c.families.Len()
}

// All returns every pack of every family.
func (c *Collection) All() []*Pack {
	var out []*Pack
	for _, f := range c.families.All() {
		out = append(out, f.All()...)
	}
	return out
}

// Packs returns, per family, the installed packs and the family's newest
// pack. Superseded versions that are not installed are left out.
func (c *Collection) Packs() []*Pack {
	var out []*Pack
	for _, f := range c.families.All() {
		out = append(out, f.Packs()...)
	}
	return out
}

// FilteredPacks applies filter family by family: excluded families are
// skipped, use-latest families contribute their effective pack, and every
// other pack must pass the filter's predicate. A nil filter, or one that
// uses all latest packs, yields one effective pack per family.
func (c *Collection) FilteredPacks(filter Filter) []*Pack {
	if filter == nil || filter.UseAllLatest() {
		return c.LatestPacks()
	}

	var out []*Pack
	for _, f := range c.families.All() {
		switch {
		case filter.Excluded(f.ID()):
			continue
		case filter.UseLatest(f.ID()):
			if p := f.Pack(); p != nil {
				out = append(out, p)
			}
		default:
			for _, p := range f.All() {
				if filter.Passes(p) {
					out = append(out, p)
				}
			}
		}
	}
	return out
}

// LatestPacks returns the effective pack of every family.
func (c *Collection) LatestPacks() []*Pack {
	var out []*Pack
	for _, f := range c.families.All() {
		if p := f.Pack(); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// LatestPackIDs returns the ids of every family's effective pack, sorted.
// The set is computed on first read after a mutation and cached; callers
// receive their own copy.
func (c *Collection) LatestPackIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.latestIDs == nil || c.latestGen != c.generation {
		ids := make([]string, 0, c.families.Len())
		for _, f := range c.families.All() {
			if id := f.PackID(); id != "" {
				ids = append(ids, id)
			}
		}
		slices.SortFunc(ids, compare.Alnum)
		c.latestIDs = ids
		c.latestGen = c.generation
	}
	return slices.Clone(c.latestIDs)
}

// IsLatestID reports whether id names the effective pack of its family.
func (c *Collection) IsLatestID(id string) bool {
	return slices.Contains(c.LatestPackIDs(), id)
}

// PacksByFamilyID returns the family's installed and newest packs, or nil
// if the family is unknown.
func (c *Collection) PacksByFamilyID(familyID string) []*Pack {
	f, ok := c.families.Get(familyID)
	if !ok {
		return nil
	}
	return f.Packs()
}

// PackByFileName scans all families for the pack read from fileName.
func (c *Collection) PackByFileName(fileName string) *Pack {
	for _, f := range c.families.All() {
		if p := f.PackByFileName(fileName); p != nil {
			return p
		}
	}
	return nil
}

package pack

import (
	"github.com/thoreinstein/packidx/internal/compare"
	"github.com/thoreinstein/packidx/internal/ordered"
)

// Family holds every known version of one pack family, newest first.
type Family struct {
	id    string
	packs *ordered.Map[*Pack]
}

// newFamily creates an empty family. Families are only changed through their
// Collection.
func newFamily(id string) *Family {
	return &Family{
		id:    id,
		packs: ordered.New[*Pack](compare.VersionDesc),
	}
}

// ID returns the family id.
func (f *Family) ID() string { return f.id }

// Len returns the number of versions in the family.
func (f *Family) Len() int { return f.packs.Len() }

// add inserts p keeping the version order. It returns false and leaves the
// family unchanged if a pack of the same version is already present.
func (f *Family) add(p *Pack) bool {
	if p == nil || f.packs.Has(p.Version()) {
		return false
	}
	f.packs.Set(p.Version(), p)
	return true
}

// remove deletes the pack with the given version.
func (f *Family) remove(version string) bool {
	return f.packs.Delete(version)
}

// Pack returns the pack to use: the newest installed pack if any, else the
// newest pack overall.
func (f *Family) Pack() *Pack {
	for _, p := range f.packs.All() {
		if p.Installed() {
			return p
		}
	}
	return f.Newest()
}

// Newest returns the highest version regardless of state.
func (f *Family) Newest() *Pack {
	_, p, ok := f.packs.First()
	if !ok {
		return nil
	}
	return p
}

// Version returns the pack with exactly the given version.
func (f *Family) Version(version string) *Pack {
	p, _ := f.packs.Get(version)
	return p
}

// Packs returns the installed packs plus the newest pack when that one is
// not installed itself, newest first.
func (f *Family) Packs() []*Pack {
	var out []*Pack
	newest := f.Newest()
	if newest != nil && !newest.Installed() {
		out = append(out, newest)
	}
	for _, p := range f.packs.All() {
		if p.Installed() {
			out = append(out, p)
		}
	}
	return out
}

// All returns every version, newest first.
func (f *Family) All() []*Pack {
	return f.packs.Values()
}

// PackByFileName returns the pack read from the given description file.
func (f *Family) PackByFileName(fileName string) *Pack {
	if fileName == "" {
		return nil
	}
	for _, p := range f.packs.All() {
		if p.FileName() == fileName {
			return p
		}
	}
	return nil
}

// PackID returns the id of the pack to use, or "" for an empty family.
func (f *Family) PackID() string {
	if p := f.Pack(); p != nil {
		return p.ID()
	}
	return ""
}

package resolve

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/packidx/internal/attr"
	"github.com/thoreinstein/packidx/internal/pack"
)

// Installer installs packs on request. It is implemented outside this
// module, e.g. by a pack manager with a download queue.
type Installer interface {
	// IsProcessing reports whether the pack is already being installed.
	IsProcessing(pack attr.Attributes) bool
	// InstallPack requests installation of the pack.
	InstallPack(pack attr.Attributes) error
}

// PackRef is a pack referenced by a project. An empty Version refers to the
// family's effective pack.
type PackRef struct {
	FamilyID string
	Version  string
}

// ParsePackRef splits a pack id into family and version.
func ParsePackRef(id string) PackRef {
	return PackRef{FamilyID: pack.FamilyFromID(id), Version: pack.VersionFromID(id)}
}

// ID returns the pack id, or the family id when no version is set.
func (r PackRef) ID() string {
	if r.Version == "" {
		return r.FamilyID
	}
	return r.FamilyID + "." + r.Version
}

// Attributes returns the pack attributes handed to an Installer.
func (r PackRef) Attributes() attr.Attributes {
	a := attr.Attributes{}
	vendorName, name, _ := strings.Cut(r.FamilyID, ".")
	a[pack.AttrVendor] = vendorName
	a[pack.AttrName] = name
	if r.Version != "" {
		a[pack.AttrVersion] = r.Version
	}
	return a
}

// HasInstalled reports whether the referenced pack is present and installed
// or generated. A reference without version is satisfied by any such version
// of the family.
func HasInstalled(packs *pack.Collection, ref PackRef) bool {
	if packs == nil {
		return false
	}
	if ref.Version != "" {
		p := packs.Pack(ref.ID())
		return p != nil && usable(p.State())
	}
	f, ok := packs.Family(ref.FamilyID)
	if !ok {
		return false
	}
	for _, p := range f.All() {
		if usable(p.State()) {
			return true
		}
	}
	return false
}

// MissingPacks returns the references that are neither installed nor
// currently being installed. A nil installer is treated as idle.
func MissingPacks(packs *pack.Collection, refs []PackRef, installer Installer) []PackRef {
	var out []PackRef
	for _, ref := range refs {
		if installer != nil && installer.IsProcessing(ref.Attributes()) {
			continue
		}
		if HasInstalled(packs, ref) {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// InstallMissing requests installation of every ref. It stops early when ctx
// is done and returns all installer errors joined.
func InstallMissing(ctx context.Context, installer Installer, refs []PackRef) error {
	if installer == nil {
		return errors.New("no pack installer configured")
	}
	var errs []error
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, errors.Wrap(err, "install interrupted"))
			break
		}
		if err := installer.InstallPack(ref.Attributes()); err != nil {
			errs = append(errs, errors.Wrapf(err, "install %s", ref.ID()))
		}
	}
	return errors.Join(errs...)
}

// Package pack models versioned software packs and groups them into families
// and collections.
//
// A [Pack] is immutable once created with [New]. Every version of one family
// id lives in a [Family], ordered newest first. All families live in a
// [Collection], ordered by family id. The collection answers "which pack
// should be used" queries: installed packs win over newer ones that are only
// available for download.
package pack

// Info describes a pack's identity and lifecycle state.
type Info struct {
	Vendor      string
	Name        string
	Version     string
	State       State
	FileName    string
	Description string
	URL         string
}

// Pack is a versioned, vendor-published bundle of device declarations.
type Pack struct {
	info    Info
	devices []*Device
}

// New creates a pack and binds the given device declarations to it.
func New(info Info, devices ...DeviceSpec) *Pack {
	p := &Pack{info: info}
	for _, spec := range devices {
		p.devices = append(p.devices, newDevice(spec, p, nil))
	}
	return p
}

// ID returns the pack identity, "Vendor.Name.Version".
func (p *Pack) ID() string {
	return p.FamilyID() + "." + p.info.Version
}

// FamilyID returns the family identity, "Vendor.Name".
func (p *Pack) FamilyID() string {
	return FamilyID(p.info.Vendor, p.info.Name)
}

// Name returns the pack name without vendor and version.
func (p *Pack) Name() string { return p.info.Name }

// Vendor returns the pack vendor.
func (p *Pack) Vendor() string { return p.info.Vendor }

// Version returns the pack version.
func (p *Pack) Version() string { return p.info.Version }

// State returns the installation state.
func (p *Pack) State() State { return p.info.State }

// Installed reports whether the pack is installed.
func (p *Pack) Installed() bool { return p.info.State == StateInstalled }

// FileName returns the path of the description file the pack was read from.
func (p *Pack) FileName() string { return p.info.FileName }

// Description returns the pack description.
func (p *Pack) Description() string { return p.info.Description }

// URL returns the pack download URL.
func (p *Pack) URL() string { return p.info.URL }

// Info returns a copy of the pack's identity and state.
func (p *Pack) Info() Info { return p.info }

// Devices returns the pack's top-level device declarations.
func (p *Pack) Devices() []*Device {
	out := make([]*Device, len(p.devices))
	copy(out, p.devices)
	return out
}

// String returns the pack id.
func (p *Pack) String() string {
	return p.ID()
}

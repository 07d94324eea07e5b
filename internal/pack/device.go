package pack

import (
	"strings"

	"github.com/thoreinstein/packidx/internal/attr"
)

// DeviceSpec is the input form of a device declaration handed to New.
type DeviceSpec struct {
	Name        string
	Level       Level
	Vendor      string
	Description string
	URL         string
	Attributes  attr.Attributes
	Processors  []Processor
	Memories    []Memory
	Devices     []DeviceSpec
}

// Processor is one processor of a device. A single-core device usually
// declares one processor with an empty name.
type Processor struct {
	Name       string
	Attributes attr.Attributes
}

// Memory is a memory region declared for a device.
type Memory struct {
	Name      string
	Access    string
	Start     uint64
	Size      uint64
	Processor string
	Default   bool
	Startup   bool
}

// IsRAM reports whether the region is writable memory.
func (m Memory) IsRAM() bool {
	if m.Access != "" {
		return strings.ContainsRune(strings.ToLower(m.Access), 'w')
	}
	name := strings.ToUpper(m.Name)
	return strings.HasPrefix(name, "IRAM") || strings.HasPrefix(name, "RAM")
}

// IsROM reports whether the region is read-only or executable memory.
func (m Memory) IsROM() bool {
	if m.Access != "" {
		access := strings.ToLower(m.Access)
		return !strings.ContainsRune(access, 'w') && strings.ContainsAny(access, "rx")
	}
	name := strings.ToUpper(m.Name)
	return strings.HasPrefix(name, "IROM") || strings.HasPrefix(name, "ROM")
}

// Device is one pack's declaration of an element of the device hierarchy.
// Sub-declarations inherit vendor, attributes, processors and memories from
// their enclosing declaration; the nearer declaration always wins.
type Device struct {
	name        string
	level       Level
	vendor      string
	description string
	url         string
	attributes  attr.Attributes
	processors  []Processor
	memories    []Memory
	devices     []*Device

	parent *Device
	pack   *Pack
}

func newDevice(spec DeviceSpec, p *Pack, parent *Device) *Device {
	d := &Device{
		name:        strings.TrimSpace(spec.Name),
		level:       spec.Level,
		vendor:      spec.Vendor,
		description: spec.Description,
		url:         spec.URL,
		attributes:  spec.Attributes.Clone(),
		memories:    append([]Memory(nil), spec.Memories...),
		parent:      parent,
		pack:        p,
	}
	for _, proc := range spec.Processors {
		d.processors = append(d.processors, Processor{
			Name:       proc.Name,
			Attributes: proc.Attributes.Clone(),
		})
	}
	for _, sub := range spec.Devices {
		d.devices = append(d.devices, newDevice(sub, p, d))
	}
	return d
}

// Spec returns the declaration as it was given to New, without inherited
// values.
func (d *Device) Spec() DeviceSpec {
	spec := DeviceSpec{
		Name:        d.name,
		Level:       d.level,
		Vendor:      d.vendor,
		Description: d.description,
		URL:         d.url,
		Attributes:  d.attributes.Clone(),
		Memories:    append([]Memory(nil), d.memories...),
	}
	for _, p := range d.processors {
		spec.Processors = append(spec.Processors, Processor{Name: p.Name, Attributes: p.Attributes.Clone()})
	}
	for _, sub := range d.devices {
		spec.Devices = append(spec.Devices, sub.Spec())
	}
	return spec
}

// Name returns the declared name.
func (d *Device) Name() string { return d.name }

// Level returns the declared hierarchy level.
func (d *Device) Level() Level { return d.level }

// Pack returns the owning pack.
func (d *Device) Pack() *Pack { return d.pack }

// Parent returns the enclosing declaration, or nil for a top-level one.
func (d *Device) Parent() *Device { return d.parent }

// Devices returns the sub-declarations.
func (d *Device) Devices() []*Device {
	out := make([]*Device, len(d.devices))
	copy(out, d.devices)
	return out
}

// Valid reports whether the declaration has a name and a declarable level.
func (d *Device) Valid() bool {
	return d.name != "" && d.level.Declarable()
}

// Vendor returns the declared vendor, inherited from enclosing declarations
// and finally from the pack.
func (d *Device) Vendor() string {
	for cur := d; cur != nil; cur = cur.parent {
		if cur.vendor != "" {
			return cur.vendor
		}
		if v := cur.attributes.Get(attr.Dvendor); v != "" {
			return v
		}
	}
	if d.pack != nil {
		return d.pack.Vendor()
	}
	return ""
}

// Description returns the description declared on this element only.
func (d *Device) Description() string { return d.description }

// EffectiveDescription returns the nearest non-empty description.
func (d *Device) EffectiveDescription() string {
	for cur := d; cur != nil; cur = cur.parent {
		if cur.description != "" {
			return cur.description
		}
	}
	return ""
}

// URL returns the nearest non-empty documentation URL.
func (d *Device) URL() string {
	for cur := d; cur != nil; cur = cur.parent {
		if cur.url != "" {
			return cur.url
		}
	}
	return ""
}

// Processors returns the effective processors: the declaration's own ones
// completed with inherited attributes, plus named processors declared only on
// an enclosing element.
func (d *Device) Processors() []Processor {
	var inherited []Processor
	if d.parent != nil {
		inherited = d.parent.Processors()
	}
	if len(d.processors) == 0 {
		return inherited
	}

	out := make([]Processor, 0, len(d.processors)+len(inherited))
	own := make(map[string]bool, len(d.processors))
	for _, p := range d.processors {
		merged := Processor{Name: p.Name, Attributes: p.Attributes.Clone()}
		if base, ok := findProcessor(inherited, p.Name); ok {
			merged.Attributes.Merge(base.Attributes)
		}
		own[p.Name] = true
		out = append(out, merged)
	}
	if own[""] {
		return out
	}
	for _, p := range inherited {
		if p.Name != "" && !own[p.Name] {
			out = append(out, p)
		}
	}
	return out
}

// ProcessorCount returns the number of effective processors.
func (d *Device) ProcessorCount() int {
	return len(d.Processors())
}

// Processor returns the effective processor with the given name. An empty
// name selects the only processor of a single-core device.
func (d *Device) Processor(name string) (Processor, bool) {
	return findProcessor(d.Processors(), name)
}

func findProcessor(procs []Processor, name string) (Processor, bool) {
	for _, p := range procs {
		if p.Name == name {
			return p, true
		}
	}
	if name == "" && len(procs) == 1 {
		return procs[0], true
	}
	return Processor{}, false
}

// Memories returns the effective memory regions visible to the processor;
// an empty processor name selects all regions. Regions redeclared on a nearer
// element shadow inherited ones of the same name.
func (d *Device) Memories(processor string) []Memory {
	var out []Memory
	seen := make(map[string]bool)
	for cur := d; cur != nil; cur = cur.parent {
		for _, m := range cur.memories {
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			if processor != "" && m.Processor != "" && m.Processor != processor {
				continue
			}
			out = append(out, m)
		}
	}
	return out
}

// EffectiveAttributes returns the attributes of this declaration merged with
// those of every enclosing declaration, the level names of the hierarchy
// (Dfamily, DsubFamily, Dname, Dvariant), the vendor and, when one is
// selected, the processor's attributes.
func (d *Device) EffectiveAttributes(processor string) attr.Attributes {
	out := attr.Attributes{}
	for cur := d; cur != nil; cur = cur.parent {
		out.Merge(cur.attributes)
		if key := levelKey(cur.level); key != "" && !out.Has(key) {
			out[key] = cur.name
		}
	}
	if v := d.Vendor(); v != "" && !out.Has(attr.Dvendor) {
		out[attr.Dvendor] = v
	}
	if p, ok := d.Processor(processor); ok {
		out.Merge(p.Attributes)
	}
	return out
}

func levelKey(l Level) string {
	switch l {
	case LevelFamily:
		return attr.Dfamily
	case LevelSubFamily:
		return attr.DsubFamily
	case LevelDevice:
		return attr.Dname
	case LevelVariant:
		return attr.Dvariant
	}
	return ""
}

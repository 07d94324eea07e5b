package catalog

import (
	"github.com/thoreinstein/packidx/internal/attr"
	"github.com/thoreinstein/packidx/internal/pack"
)

// Snapshot is the on-disk form of a set of packs.
type Snapshot struct {
	Packs []PackEntry `yaml:"packs" toml:"packs"`
}

// PackEntry is one pack of a snapshot.
type PackEntry struct {
	Vendor      string        `yaml:"vendor" toml:"vendor"`
	Name        string        `yaml:"name" toml:"name"`
	Version     string        `yaml:"version" toml:"version"`
	State       string        `yaml:"state,omitempty" toml:"state,omitempty"`
	File        string        `yaml:"file,omitempty" toml:"file,omitempty"`
	Description string        `yaml:"description,omitempty" toml:"description,omitempty"`
	URL         string        `yaml:"url,omitempty" toml:"url,omitempty"`
	Devices     []DeviceEntry `yaml:"devices,omitempty" toml:"devices,omitempty"`
}

// DeviceEntry is one device declaration, nested like the hierarchy it
// describes.
type DeviceEntry struct {
	Name        string            `yaml:"name" toml:"name"`
	Level       string            `yaml:"level" toml:"level"`
	Vendor      string            `yaml:"vendor,omitempty" toml:"vendor,omitempty"`
	Description string            `yaml:"description,omitempty" toml:"description,omitempty"`
	URL         string            `yaml:"url,omitempty" toml:"url,omitempty"`
	Attributes  map[string]string `yaml:"attributes,omitempty" toml:"attributes,omitempty"`
	Processors  []ProcessorEntry  `yaml:"processors,omitempty" toml:"processors,omitempty"`
	Memories    []MemoryEntry     `yaml:"memories,omitempty" toml:"memories,omitempty"`
	Devices     []DeviceEntry     `yaml:"devices,omitempty" toml:"devices,omitempty"`
}

// ProcessorEntry is one processor of a device declaration.
type ProcessorEntry struct {
	Name       string            `yaml:"name,omitempty" toml:"name,omitempty"`
	Attributes map[string]string `yaml:"attributes,omitempty" toml:"attributes,omitempty"`
}

// MemoryEntry is one memory region of a device declaration.
type MemoryEntry struct {
	Name      string `yaml:"name" toml:"name"`
	Access    string `yaml:"access,omitempty" toml:"access,omitempty"`
	Start     uint64 `yaml:"start" toml:"start"`
	Size      uint64 `yaml:"size" toml:"size"`
	Processor string `yaml:"processor,omitempty" toml:"processor,omitempty"`
	Default   bool   `yaml:"default,omitempty" toml:"default,omitempty"`
	Startup   bool   `yaml:"startup,omitempty" toml:"startup,omitempty"`
}

func (e PackEntry) info(state pack.State, fallbackFile string) pack.Info {
	file := e.File
	if file == "" {
		file = fallbackFile
	}
	return pack.Info{
		Vendor:      e.Vendor,
		Name:        e.Name,
		Version:     e.Version,
		State:       state,
		FileName:    file,
		Description: e.Description,
		URL:         e.URL,
	}
}

// entryFor converts a pack back into its snapshot form.
func entryFor(p *pack.Pack) PackEntry {
	info := p.Info()
	e := PackEntry{
		Vendor:      info.Vendor,
		Name:        info.Name,
		Version:     info.Version,
		State:       info.State.String(),
		File:        info.FileName,
		Description: info.Description,
		URL:         info.URL,
	}
	for _, d := range p.Devices() {
		e.Devices = append(e.Devices, deviceEntryFor(d.Spec()))
	}
	return e
}

func deviceEntryFor(spec pack.DeviceSpec) DeviceEntry {
	e := DeviceEntry{
		Name:        spec.Name,
		Level:       spec.Level.String(),
		Vendor:      spec.Vendor,
		Description: spec.Description,
		URL:         spec.URL,
		Attributes:  plain(spec.Attributes),
	}
	for _, p := range spec.Processors {
		e.Processors = append(e.Processors, ProcessorEntry{Name: p.Name, Attributes: plain(p.Attributes)})
	}
	for _, m := range spec.Memories {
		e.Memories = append(e.Memories, MemoryEntry(m))
	}
	for _, sub := range spec.Devices {
		e.Devices = append(e.Devices, deviceEntryFor(sub))
	}
	return e
}

func plain(a attr.Attributes) map[string]string {
	if len(a) == 0 {
		return nil
	}
	return map[string]string(a.Clone())
}

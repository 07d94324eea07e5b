package resolve

import (
	"math"
	"strconv"
	"strings"

	"github.com/thoreinstein/packidx/internal/attr"
)

// Summary describes the device in one line, e.g.
// "ARM Cortex-M4 168 MHz, 192 kB RAM, 1 MB ROM". Without a selected
// processor every core is listed.
func (d *Device) Summary() string {
	var parts []string
	switch {
	case d.hasProcessor:
		parts = append(parts, coreSummary(d.attrs.Get(attr.Dcore), d.ClockSummary()))
	case d.entry != nil:
		for _, p := range d.entry.Processors() {
			eff := d.entry.EffectiveAttributes(p.Name)
			parts = append(parts, coreSummary(eff.Get(attr.Dcore), scaledClock(eff.Get(attr.Dclock))))
		}
	}
	if mem := d.MemorySummary(); mem != "" {
		parts = append(parts, mem)
	}
	return strings.Join(parts, ", ")
}

func coreSummary(core, clock string) string {
	s := "ARM " + core
	if clock != "" {
		s += " " + clock
	}
	return s
}

// ClockSummary returns the scaled Dclock value, or "" if it is unset.
func (d *Device) ClockSummary() string {
	return scaledClock(d.attrs.Get(attr.Dclock))
}

// MemorySummary returns the summed RAM and ROM sizes visible to the selected
// processor, e.g. "192 kB RAM, 1 MB ROM".
func (d *Device) MemorySummary() string {
	if d.entry == nil {
		return ""
	}
	var ram, rom uint64
	for _, m := range d.entry.Memories(d.processor) {
		switch {
		case m.Size == 0:
		case m.IsRAM():
			ram += m.Size
		case m.IsROM():
			rom += m.Size
		}
	}

	var parts []string
	if ram > 0 {
		parts = append(parts, MemorySize(ram)+" RAM")
	}
	if rom > 0 {
		parts = append(parts, MemorySize(rom)+" ROM")
	}
	return strings.Join(parts, ", ")
}

// MemorySize formats a byte count with binary prefixes: Bytes, kB, MB, GB.
func MemorySize(n uint64) string {
	switch {
	case n >= 1<<30:
		return scaled(float64(n), 1<<30) + " GB"
	case n >= 1<<20:
		return scaled(float64(n), 1<<20) + " MB"
	case n >= 1<<10:
		return scaled(float64(n), 1<<10) + " kB"
	}
	return strconv.FormatUint(n, 10) + " Bytes"
}

// ClockFrequency formats a frequency in Hz as Hz, kHz or MHz.
func ClockFrequency(hz int64) string {
	switch {
	case hz >= 1_000_000:
		return scaled(float64(hz), 1_000_000) + " MHz"
	case hz >= 1_000:
		return scaled(float64(hz), 1_000) + " kHz"
	}
	return strconv.FormatInt(hz, 10) + " Hz"
}

func scaledClock(value string) string {
	hz := attr.Attributes{attr.Dclock: value}.Int64(attr.Dclock, 0)
	if hz <= 0 {
		return ""
	}
	return ClockFrequency(hz)
}

func scaled(v, unit float64) string {
	return strconv.FormatFloat(math.Round(v/unit*1000)/1000, 'f', -1, 64)
}

package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/packidx/internal/attr"
)

func familyPack() *Pack {
	return New(Info{Vendor: "Keil", Name: "STM32F4xx_DFP", Version: "2.14.0", State: StateInstalled},
		DeviceSpec{
			Name:        "STM32F4",
			Level:       LevelFamily,
			Vendor:      "STMicroelectronics:13",
			Description: "STM32F4 family",
			Attributes:  attr.Attributes{attr.Dcore: "Cortex-M4", attr.Dfpu: "SP_FPU"},
			Processors:  []Processor{{Attributes: attr.Attributes{attr.Dclock: "168000000"}}},
			Memories:    []Memory{{Name: "IROM1", Access: "rx", Size: 0x100000}},
			Devices: []DeviceSpec{{
				Name:     "STM32F407",
				Level:    LevelSubFamily,
				URL:      "https://example.com/f407",
				Memories: []Memory{{Name: "IRAM1", Access: "rwx", Size: 0x20000}},
				Devices: []DeviceSpec{{
					Name:       "STM32F407VG",
					Level:      LevelDevice,
					Processors: []Processor{{Attributes: attr.Attributes{attr.Dclock: "180000000"}}},
				}},
			}},
		},
	)
}

func TestDevice_Inheritance(t *testing.T) {
	p := familyPack()
	require.Len(t, p.Devices(), 1)
	family := p.Devices()[0]
	sub := family.Devices()[0]
	dev := sub.Devices()[0]

	assert.Same(t, p, dev.Pack())
	assert.Same(t, sub, dev.Parent())
	assert.Equal(t, "STMicroelectronics:13", dev.Vendor())
	assert.Equal(t, "STM32F4 family", dev.EffectiveDescription())
	assert.Empty(t, dev.Description())
	assert.Equal(t, "https://example.com/f407", dev.URL())

	eff := dev.EffectiveAttributes("")
	assert.Equal(t, "Cortex-M4", eff.Get(attr.Dcore))
	assert.Equal(t, "180000000", eff.Get(attr.Dclock), "nearer processor declaration wins")
	assert.Equal(t, "STM32F407VG", eff.Get(attr.Dname))
	assert.Equal(t, "STM32F407", eff.Get(attr.DsubFamily))
	assert.Equal(t, "STM32F4", eff.Get(attr.Dfamily))
	assert.Equal(t, "STMicroelectronics:13", eff.Get(attr.Dvendor))

	assert.Equal(t, 1, dev.ProcessorCount())
	mems := dev.Memories("")
	require.Len(t, mems, 2)
	assert.Equal(t, "IRAM1", mems[0].Name)
	assert.Equal(t, "IROM1", mems[1].Name)
}

func TestDevice_MultiCoreProcessors(t *testing.T) {
	p := New(Info{Vendor: "V", Name: "P", Version: "1.0.0"},
		DeviceSpec{
			Name:  "Dual",
			Level: LevelFamily,
			Processors: []Processor{
				{Name: "cm7", Attributes: attr.Attributes{attr.Dcore: "Cortex-M7"}},
				{Name: "cm4", Attributes: attr.Attributes{attr.Dcore: "Cortex-M4"}},
			},
			Devices: []DeviceSpec{{
				Name:       "DualX",
				Level:      LevelDevice,
				Processors: []Processor{{Name: "cm7", Attributes: attr.Attributes{attr.Dclock: "480000000"}}},
				Memories: []Memory{
					{Name: "RAM_D1", Access: "rw", Size: 1024, Processor: "cm7"},
					{Name: "RAM_D2", Access: "rw", Size: 2048, Processor: "cm4"},
				},
			}},
		},
	)
	dev := p.Devices()[0].Devices()[0]

	procs := dev.Processors()
	require.Len(t, procs, 2)
	assert.Equal(t, "cm7", procs[0].Name)
	assert.Equal(t, "Cortex-M7", procs[0].Attributes.Get(attr.Dcore))
	assert.Equal(t, "480000000", procs[0].Attributes.Get(attr.Dclock))
	assert.Equal(t, "cm4", procs[1].Name)

	_, ok := dev.Processor("")
	assert.False(t, ok, "no implicit processor on a multi-core device")

	cm4 := dev.EffectiveAttributes("cm4")
	assert.Equal(t, "Cortex-M4", cm4.Get(attr.Dcore))

	mems := dev.Memories("cm4")
	require.Len(t, mems, 1)
	assert.Equal(t, "RAM_D2", mems[0].Name)
}

func TestMemory_Kind(t *testing.T) {
	tests := []struct {
		mem Memory
		ram bool
		rom bool
	}{
		{Memory{Name: "IROM1"}, false, true},
		{Memory{Name: "IRAM2"}, true, false},
		{Memory{Name: "Flash", Access: "rx"}, false, true},
		{Memory{Name: "SRAM", Access: "rwx"}, true, false},
		{Memory{Name: "Periph", Access: "p"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.mem.Name, func(t *testing.T) {
			assert.Equal(t, tt.ram, tt.mem.IsRAM())
			assert.Equal(t, tt.rom, tt.mem.IsROM())
		})
	}
}

func TestDevice_Valid(t *testing.T) {
	p := New(Info{Vendor: "V", Name: "P", Version: "1"},
		DeviceSpec{Name: "  ", Level: LevelDevice},
		DeviceSpec{Name: "Ok", Level: LevelDevice},
		DeviceSpec{Name: "NoLevel"},
	)
	devs := p.Devices()
	assert.False(t, devs[0].Valid())
	assert.True(t, devs[1].Valid())
	assert.False(t, devs[2].Valid())
	assert.Equal(t, "V", devs[1].Vendor(), "vendor falls back to the pack")
}

func TestDevice_SpecRoundTrip(t *testing.T) {
	p := familyPack()
	spec := p.Devices()[0].Spec()

	assert.Equal(t, "STMicroelectronics:13", spec.Vendor)
	require.Len(t, spec.Devices, 1)
	assert.Empty(t, spec.Devices[0].Vendor, "inherited vendor is not copied")

	again := New(p.Info(), spec)
	assert.Equal(t, spec, again.Devices()[0].Spec())
}

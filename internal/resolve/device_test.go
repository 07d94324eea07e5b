package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/packidx/internal/attr"
	"github.com/thoreinstein/packidx/internal/devtree"
	"github.com/thoreinstein/packidx/internal/pack"
)

func stm32(state pack.State) *pack.Pack {
	return pack.New(pack.Info{Vendor: "Keil", Name: "STM32F4xx_DFP", Version: "2.14.0", State: state},
		pack.DeviceSpec{
			Name:       "STM32F4",
			Level:      pack.LevelFamily,
			Vendor:     "STMicroelectronics:13",
			Attributes: attr.Attributes{attr.Dcore: "Cortex-M4", attr.Dfpu: "SP_FPU"},
			Processors: []pack.Processor{{Attributes: attr.Attributes{attr.Dclock: "168000000"}}},
			Memories: []pack.Memory{
				{Name: "IROM1", Access: "rx", Size: 0x100000},
				{Name: "IRAM1", Access: "rwx", Size: 0x20000},
				{Name: "IRAM2", Access: "rwx", Size: 0x10000},
				{Name: "Reserved", Access: "rw", Size: 0},
			},
			Devices: []pack.DeviceSpec{{Name: "STM32F407VG", Level: pack.LevelDevice}},
		},
	)
}

func dual() *pack.Pack {
	return pack.New(pack.Info{Vendor: "Keil", Name: "STM32H7xx_DFP", Version: "3.0.0", State: pack.StateInstalled},
		pack.DeviceSpec{
			Name:   "STM32H7",
			Level:  pack.LevelFamily,
			Vendor: "STMicroelectronics:13",
			Devices: []pack.DeviceSpec{{
				Name:  "STM32H745",
				Level: pack.LevelDevice,
				Processors: []pack.Processor{
					{Name: "CM7", Attributes: attr.Attributes{attr.Dcore: "Cortex-M7", attr.Dclock: "480000000"}},
					{Name: "CM4", Attributes: attr.Attributes{attr.Dcore: "Cortex-M4", attr.Dclock: "240000000"}},
				},
				Memories: []pack.Memory{
					{Name: "FLASH", Access: "rx", Size: 0x200000},
					{Name: "DTCM", Access: "rw", Size: 0x20000, Processor: "CM7"},
					{Name: "SRAM3", Access: "rw", Size: 0x8000, Processor: "CM4"},
				},
			}},
		},
	)
}

func TestNew_SingleCore(t *testing.T) {
	root := devtree.CreateTree([]*pack.Pack{stm32(pack.StateInstalled)})
	node := root.FindItem("STM32F407VG", "", true)
	require.NotNil(t, node)

	d := New(node, nil)
	assert.Equal(t, "STM32F407VG", d.Name())
	assert.Equal(t, "Keil.STM32F4xx_DFP.2.14.0", d.Pack().ID())
	require.NotNil(t, d.Entry())

	proc, ok := d.ProcessorName()
	assert.True(t, ok)
	assert.Empty(t, proc)

	a := d.Attributes()
	assert.Equal(t, "Cortex-M4", a.Get(attr.Dcore))
	assert.Equal(t, "168000000", a.Get(attr.Dclock))
	assert.Equal(t, "STM32F407VG", a.Get(attr.Dname))
	assert.False(t, a.Has(attr.Pname))

	assert.Equal(t, "168 MHz", d.ClockSummary())
	assert.Equal(t, "192 kB RAM, 1 MB ROM", d.MemorySummary())
	assert.Equal(t, "ARM Cortex-M4 168 MHz, 192 kB RAM, 1 MB ROM", d.Summary())
	assert.Equal(t, Undefined, d.Evaluation())
}

func TestNew_MultiCore(t *testing.T) {
	root := devtree.CreateTree([]*pack.Pack{dual()})

	whole := New(root.FindItem("STM32H745", "", true), nil)
	_, ok := whole.ProcessorName()
	assert.False(t, ok, "no processor selected on a multi-core device")
	assert.Equal(t, "ARM Cortex-M7 480 MHz, ARM Cortex-M4 240 MHz, 160 kB RAM, 2 MB ROM", whole.Summary())

	cm4 := New(root.FindItem("STM32H745:CM4", "", true), nil)
	proc, ok := cm4.ProcessorName()
	require.True(t, ok)
	assert.Equal(t, "CM4", proc)
	assert.Equal(t, "CM4", cm4.Attributes().Get(attr.Pname))
	assert.Equal(t, "Cortex-M4", cm4.Attributes().Get(attr.Dcore))
	assert.Equal(t, "ARM Cortex-M4 240 MHz, 32 kB RAM, 2 MB ROM", cm4.Summary())
}

func TestNew_SavedAttributesWin(t *testing.T) {
	root := devtree.CreateTree([]*pack.Pack{dual()})
	saved := attr.Attributes{attr.Dname: "STM32H745", attr.Dcore: "Cortex-M7", attr.Pname: "CM7"}

	d := New(root.FindItem("STM32H745", "", true), saved)
	assert.Equal(t, saved, d.Attributes())
	proc, ok := d.ProcessorName()
	assert.True(t, ok)
	assert.Equal(t, "CM7", proc)

	saved[attr.Dcore] = "changed"
	assert.Equal(t, "Cortex-M7", d.Attributes().Get(attr.Dcore), "saved attributes are copied")
}

func TestEvaluate(t *testing.T) {
	installed := devtree.CreateTree([]*pack.Pack{stm32(pack.StateInstalled)})
	available := devtree.CreateTree([]*pack.Pack{stm32(pack.StateAvailable)})

	tests := []struct {
		name    string
		tree    *devtree.Node
		project attr.Attributes
		want    Evaluation
	}{
		{"match", installed, attr.Attributes{attr.Dname: "STM32F407VG", attr.Dvendor: "STMicroelectronics:13"}, Match},
		{"vendor alias", installed, attr.Attributes{attr.Dname: "STM32F407VG", attr.Dvendor: "ST"}, Match},
		{"other vendor", installed, attr.Attributes{attr.Dname: "STM32F407VG", attr.Dvendor: "NXP"}, Mismatch},
		{"core differs", installed, attr.Attributes{attr.Dname: "STM32F407VG", attr.Dcore: "Cortex-M7"}, Mismatch},
		{"pack not installed", available, attr.Attributes{attr.Dname: "STM32F407VG"}, Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.tree.FindItem("STM32F407VG", "", true), nil)
			assert.Equal(t, tt.want, d.Evaluate(tt.project))
			assert.Equal(t, tt.want, d.Evaluation())
			assert.Equal(t, tt.want.String(), d.Evaluation().String())
		})
	}

	missing := New(nil, nil)
	assert.Equal(t, Missing, missing.Evaluate(attr.Attributes{attr.Dname: "X"}))
	assert.Nil(t, missing.Pack())
	assert.Empty(t, missing.Summary())
}

func TestResolve(t *testing.T) {
	root := devtree.CreateTree([]*pack.Pack{stm32(pack.StateInstalled), dual()})

	d, ok := Resolve(root, attr.Attributes{attr.Dname: "STM32H745", attr.Pname: "CM7", attr.Dvendor: "STMicroelectronics"})
	require.True(t, ok)
	assert.Equal(t, "STM32H745:CM7", d.Name())
	assert.Equal(t, Match, d.Evaluation())

	_, ok = Resolve(root, attr.Attributes{attr.Dname: "STM32F999"})
	assert.False(t, ok)
	_, ok = Resolve(nil, attr.Attributes{attr.Dname: "STM32H745"})
	assert.False(t, ok)
}

func TestFormatting(t *testing.T) {
	clocks := []struct {
		hz   int64
		want string
	}{
		{168_000_000, "168 MHz"},
		{12_500_000, "12.5 MHz"},
		{32_768, "32.768 kHz"},
		{999, "999 Hz"},
	}
	for _, tt := range clocks {
		assert.Equal(t, tt.want, ClockFrequency(tt.hz))
	}

	sizes := []struct {
		n    uint64
		want string
	}{
		{512, "512 Bytes"},
		{1024, "1 kB"},
		{0x30000, "192 kB"},
		{1536 * 1024, "1.5 MB"},
		{2 << 30, "2 GB"},
	}
	for _, tt := range sizes {
		assert.Equal(t, tt.want, MemorySize(tt.n))
	}

	assert.Empty(t, scaledClock(""))
	assert.Empty(t, scaledClock("fast"))
	assert.Equal(t, "8 MHz", scaledClock("0x7A1200"))
}

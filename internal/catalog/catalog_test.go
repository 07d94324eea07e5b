package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/packidx/internal/attr"
	pkerrors "github.com/thoreinstein/packidx/internal/errors"
	"github.com/thoreinstein/packidx/internal/logging"
	"github.com/thoreinstein/packidx/internal/pack"
)

const yamlSnapshot = `packs:
  - vendor: Keil
    name: STM32F4xx_DFP
    version: 2.14.0
    state: installed
    description: STM32F4 device support
    devices:
      - name: STM32F4
        level: family
        vendor: STMicroelectronics:13
        attributes:
          Dcore: Cortex-M4
        processors:
          - attributes:
              Dclock: "168000000"
        memories:
          - name: IROM1
            access: rx
            start: 0x08000000
            size: 0x100000
            default: true
        devices:
          - name: STM32F407VG
            level: device
          - name: ""
            level: device
          - name: Board
            level: board
  - vendor: Keil
    name: NoVersion
  - vendor: Acme
    name: Broken
    version: 1.0.0
    state: sideways
`

const tomlSnapshot = `[[packs]]
vendor = "Keil"
name = "STM32F4xx_DFP"
version = "2.14.0"
state = "installed"

[[packs.devices]]
name = "STM32F4"
level = "family"
vendor = "STMicroelectronics:13"

[packs.devices.attributes]
Dcore = "Cortex-M4"

[[packs.devices.memories]]
name = "IROM1"
access = "rx"
start = 0x08000000
size = 0x100000

[[packs.devices.devices]]
name = "STM32F407VG"
level = "device"
`

func TestDecode_YAML(t *testing.T) {
	packs, err := Decode([]byte(yamlSnapshot), FormatYAML, "snap.yaml", WithLogger(logging.ForTest(t)))
	require.NoError(t, err)
	require.Len(t, packs, 2, "pack without version is skipped")

	p := packs[0]
	assert.Equal(t, "Keil.STM32F4xx_DFP.2.14.0", p.ID())
	assert.Equal(t, pack.StateInstalled, p.State())
	assert.Equal(t, "snap.yaml", p.FileName())
	assert.Equal(t, "STM32F4 device support", p.Description())

	require.Len(t, p.Devices(), 1)
	family := p.Devices()[0]
	assert.Equal(t, pack.LevelFamily, family.Level())
	require.Len(t, family.Devices(), 1, "declarations without name or with unknown level are skipped")

	dev := family.Devices()[0]
	eff := dev.EffectiveAttributes("")
	assert.Equal(t, "Cortex-M4", eff.Get(attr.Dcore))
	assert.Equal(t, "168000000", eff.Get(attr.Dclock))
	mems := dev.Memories("")
	require.Len(t, mems, 1)
	assert.Equal(t, uint64(0x08000000), mems[0].Start)
	assert.Equal(t, uint64(0x100000), mems[0].Size)
	assert.True(t, mems[0].Default)

	assert.Equal(t, pack.StateError, packs[1].State(), "unknown state maps to error")
}

func TestDecode_TOML(t *testing.T) {
	packs, err := Decode([]byte(tomlSnapshot), FormatTOML, "snap.toml")
	require.NoError(t, err)
	require.Len(t, packs, 1)

	family := packs[0].Devices()[0]
	assert.Equal(t, "STMicroelectronics:13", family.Vendor())
	require.Len(t, family.Devices(), 1)
	assert.Equal(t, "STM32F407VG", family.Devices()[0].Name())
}

func TestDecode_Empty(t *testing.T) {
	packs, err := Decode(nil, FormatYAML, "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, packs)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"yaml syntax", "packs: [", FormatYAML},
		{"yaml unknown field", "packs:\n  - vendor: A\n    colour: red\n", FormatYAML},
		{"toml syntax", "[[packs]\n", FormatTOML},
		{"toml unknown field", "[[packs]]\ncolour = \"red\"\n", FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.format, tt.name)
			require.Error(t, err)
			assert.True(t, errors.Is(err, pkerrors.ErrInvalidSnapshot), "got %v", err)
		})
	}

	_, err := Decode(nil, Format("json"), "x")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestEncode_RoundTrip(t *testing.T) {
	packs, err := Decode([]byte(yamlSnapshot), FormatYAML, "snap.yaml")
	require.NoError(t, err)

	for _, format := range []Format{FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(packs, format)
			require.NoError(t, err)

			again, err := Decode(data, format, "other")
			require.NoError(t, err)
			assert.Equal(t, SnapshotOf(packs), SnapshotOf(again))
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.toml"), tomlSnapshot)
	writeFile(t, filepath.Join(dir, "a", "arm.yml"), "packs:\n  - {vendor: ARM, name: CMSIS, version: 5.9.0}\n")
	writeFile(t, filepath.Join(dir, "README.md"), "# not a snapshot")

	packs, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, packs, 2)
	assert.Equal(t, "ARM.CMSIS.5.9.0", packs[0].ID())
	assert.Equal(t, filepath.Join(dir, "a", "arm.yml"), packs[0].FileName())
	assert.Equal(t, "Keil.STM32F4xx_DFP.2.14.0", packs[1].ID())

	packs, err = LoadDir(context.Background(), filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, packs)

	files, err := Files(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a", "arm.yml"), filepath.Join(dir, "b.toml")}, files)
}

func TestLoad_KeepsGoodFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	writeFile(t, good, "packs:\n  - {vendor: ARM, name: CMSIS, version: 5.9.0}\n")
	badDir := filepath.Join(dir, "bad")
	writeFile(t, filepath.Join(badDir, "bad.yaml"), "packs: [")

	packs, err := Load(context.Background(), []string{good, badDir})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkerrors.ErrInvalidSnapshot))
	require.Len(t, packs, 1)
	assert.Equal(t, "ARM.CMSIS.5.9.0", packs[0].ID())
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, []string{t.TempDir()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSave(t *testing.T) {
	packs, err := Decode([]byte(tomlSnapshot), FormatTOML, "snap.toml")
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"out.yaml", "out.toml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, packs))

		back, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, SnapshotOf(packs), SnapshotOf(back))
	}

	require.Error(t, SaveNew(filepath.Join(dir, "out.yaml"), packs))
	require.Error(t, Save(filepath.Join(dir, "out.json"), packs))
}

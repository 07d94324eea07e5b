package registry

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/packidx/internal/devtree"
	"github.com/thoreinstein/packidx/internal/logging"
	"github.com/thoreinstein/packidx/internal/pack"
)

func dfp(name, version string, state pack.State, devices ...string) *pack.Pack {
	var specs []pack.DeviceSpec
	for _, d := range devices {
		specs = append(specs, pack.DeviceSpec{Name: d, Level: pack.LevelDevice})
	}
	return pack.New(pack.Info{Vendor: "VendorA", Name: name, Version: version, State: state},
		pack.DeviceSpec{Name: name + "_Family", Level: pack.LevelFamily, Devices: specs})
}

func render(root *devtree.Node) string {
	var b strings.Builder
	root.Walk(func(n *devtree.Node) bool {
		var ids []string
		for _, d := range n.Devices() {
			ids = append(ids, d.Pack().ID())
		}
		fmt.Fprintf(&b, "%s/%s %v %v\n", n.Level(), n.Name(), ids, n.DeviceNames())
		return true
	})
	return b.String()
}

type latestOnly struct{}

func (latestOnly) UseAllLatest() bool     { return false }
func (latestOnly) Excluded(string) bool   { return false }
func (latestOnly) UseLatest(string) bool  { return true }
func (latestOnly) Passes(*pack.Pack) bool { return true }

func TestInstallRemove(t *testing.T) {
	r := New(WithLogger(logging.ForTest(t)))
	a := dfp("Device", "1.0.0", pack.StateInstalled, "MCU42")
	b := dfp("Device", "1.2.0", pack.StateAvailable, "MCU42", "MCU43")

	require.NoError(t, r.Install(a))
	require.NoError(t, r.Install(b))
	assert.Equal(t, []string{"VendorA.Device.1.0.0", "VendorA.Device.1.2.0"}, r.TreePackIDs())
	assert.Same(t, a, r.Packs().Pack("VendorA.Device"))

	mcu := r.Tree().FindItem("MCU42", "", true)
	require.NotNil(t, mcu)
	assert.Len(t, mcu.Devices(), 2)

	err := r.Install(dfp("Device", "1.0.0", pack.StateAvailable))
	require.ErrorIs(t, err, ErrDuplicatePack)
	require.Error(t, r.Install(nil))

	require.NoError(t, r.Remove("VendorA.Device.1.2.0"))
	assert.Nil(t, r.Tree().FindItem("MCU43", "", true))
	assert.NotNil(t, r.Tree().FindItem("MCU42", "", true))

	require.NoError(t, r.Remove("VendorA.Device"))
	assert.Equal(t, 0, r.Tree().ChildCount())
	assert.Empty(t, r.Packs().All())

	err = r.Remove("VendorA.Device.9.9.9")
	require.ErrorIs(t, err, ErrPackNotFound)
}

func TestIncrementalMatchesRefresh(t *testing.T) {
	packs := []*pack.Pack{
		dfp("Device", "1.0.0", pack.StateInstalled, "MCU42"),
		dfp("Device", "1.2.0", pack.StateAvailable, "MCU42", "MCU43"),
		dfp("Other", "2.0.0", pack.StateAvailable, "MCU42", "MCU99"),
	}

	tests := []struct {
		name string
		opts []Option
	}{
		{"no filter", nil},
		{"latest only", []Option{WithFilter(latestOnly{})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			incremental := New(tt.opts...)
			for _, p := range packs {
				require.NoError(t, incremental.Install(p))
			}
			extra := dfp("Extra", "1.0.0", pack.StateInstalled, "MCU7")
			require.NoError(t, incremental.Install(extra))
			require.NoError(t, incremental.Remove(extra.ID()))

			full := New(tt.opts...)
			full.Refresh(packs)

			assert.Equal(t, render(full.Tree()), render(incremental.Tree()))
			assert.Equal(t, full.TreePackIDs(), incremental.TreePackIDs())
		})
	}
}

func TestFilterSwapsVersions(t *testing.T) {
	r := New(WithFilter(latestOnly{}))
	old := dfp("Device", "1.0.0", pack.StateAvailable, "MCU42")
	newer := dfp("Device", "1.2.0", pack.StateAvailable, "MCU42", "MCU43")

	require.NoError(t, r.Install(old))
	assert.Equal(t, []string{"VendorA.Device.1.0.0"}, r.TreePackIDs())

	require.NoError(t, r.Install(newer))
	assert.Equal(t, []string{"VendorA.Device.1.2.0"}, r.TreePackIDs())
	assert.NotNil(t, r.Tree().FindItem("MCU43", "", true))
	assert.Len(t, r.Tree().FindItem("MCU42", "", true).Devices(), 1)
	assert.Len(t, r.Packs().All(), 2, "the collection keeps every version")
}

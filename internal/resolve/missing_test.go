package resolve

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/packidx/internal/attr"
	"github.com/thoreinstein/packidx/internal/pack"
)

type stubInstaller struct {
	processing map[string]bool
	fail       map[string]bool
	installed  []string
}

func (s *stubInstaller) IsProcessing(a attr.Attributes) bool {
	return s.processing[pack.ConstructID(a)]
}

func (s *stubInstaller) InstallPack(a attr.Attributes) error {
	id := pack.ConstructID(a)
	if s.fail[id] {
		return errors.New("download failed")
	}
	s.installed = append(s.installed, id)
	return nil
}

func collection() *pack.Collection {
	c := pack.NewCollection()
	c.Add(pack.New(pack.Info{Vendor: "V", Name: "A", Version: "1.0.0", State: pack.StateInstalled}))
	c.Add(pack.New(pack.Info{Vendor: "V", Name: "B", Version: "2.0.0", State: pack.StateAvailable}))
	c.Add(pack.New(pack.Info{Vendor: "V", Name: "C", Version: "1.0.0", State: pack.StateGenerated}))
	return c
}

func TestPackRef(t *testing.T) {
	ref := ParsePackRef("ARM.CMSIS.5.9.0")
	assert.Equal(t, PackRef{FamilyID: "ARM.CMSIS", Version: "5.9.0"}, ref)
	assert.Equal(t, "ARM.CMSIS.5.9.0", ref.ID())
	assert.Equal(t, attr.Attributes{"vendor": "ARM", "name": "CMSIS", "version": "5.9.0"}, ref.Attributes())

	family := ParsePackRef("ARM.CMSIS")
	assert.Equal(t, "ARM.CMSIS", family.ID())
	assert.False(t, family.Attributes().Has(pack.AttrVersion))
}

func TestHasInstalled(t *testing.T) {
	c := collection()
	assert.True(t, HasInstalled(c, ParsePackRef("V.A")))
	assert.True(t, HasInstalled(c, ParsePackRef("V.A.1.0.0")))
	assert.False(t, HasInstalled(c, ParsePackRef("V.B.2.0.0")))
	assert.True(t, HasInstalled(c, ParsePackRef("V.C.1.0.0")), "generated counts as installed")
	assert.False(t, HasInstalled(c, ParsePackRef("V.D.1.0.0")))
	assert.False(t, HasInstalled(nil, ParsePackRef("V.A")))
	assert.False(t, HasInstalled(c, ParsePackRef("V.B")))
	assert.False(t, HasInstalled(c, ParsePackRef("V.Z")))
}

func TestHasInstalled_AnyVersionOfFamily(t *testing.T) {
	c := collection()
	c.Add(pack.New(pack.Info{Vendor: "V", Name: "C", Version: "2.0.0", State: pack.StateAvailable}))
	require.Equal(t, "2.0.0", c.Pack("V.C").Version())

	assert.True(t, HasInstalled(c, ParsePackRef("V.C")), "older generated version satisfies a versionless reference")
	assert.False(t, HasInstalled(c, ParsePackRef("V.C.2.0.0")))
	assert.Empty(t, MissingPacks(c, []PackRef{ParsePackRef("V.C")}, nil))
}

func TestMissingPacks(t *testing.T) {
	refs := []PackRef{
		ParsePackRef("V.A"),
		ParsePackRef("V.B.2.0.0"),
		ParsePackRef("V.C.1.0.0"),
		ParsePackRef("V.D.1.0.0"),
		ParsePackRef("V.E.1.0.0"),
	}
	installer := &stubInstaller{processing: map[string]bool{"V.E.1.0.0": true}}

	missing := MissingPacks(collection(), refs, installer)
	assert.Equal(t, []PackRef{ParsePackRef("V.B.2.0.0"), ParsePackRef("V.D.1.0.0")}, missing)

	assert.Len(t, MissingPacks(collection(), refs, nil), 3)
}

func TestInstallMissing(t *testing.T) {
	refs := []PackRef{ParsePackRef("V.B.2.0.0"), ParsePackRef("V.D.1.0.0"), ParsePackRef("V.F.1.0.0")}

	installer := &stubInstaller{fail: map[string]bool{"V.D.1.0.0": true}}
	err := InstallMissing(t.Context(), installer, refs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "install V.D.1.0.0")
	assert.Equal(t, []string{"V.B.2.0.0", "V.F.1.0.0"}, installer.installed)

	installer = &stubInstaller{}
	require.NoError(t, InstallMissing(t.Context(), installer, refs))
	assert.Len(t, installer.installed, 3)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	installer = &stubInstaller{}
	err = InstallMissing(ctx, installer, refs)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, installer.installed)

	require.Error(t, InstallMissing(t.Context(), nil, refs))
}

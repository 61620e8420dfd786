package cml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

func load(t *testing.T, name string) *chemistry.Model {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	m, err := NewConverter().ImportString(string(data))
	require.NoError(t, err)
	return m
}

func roundTrip(t *testing.T, m *chemistry.Model) *chemistry.Model {
	t.Helper()
	c := NewConverter()
	out, err := c.ExportString(m)
	require.NoError(t, err)
	back, err := c.ImportString(out)
	require.NoError(t, err)
	return back
}

type counts struct{ molecules, atoms, bonds, rings int }

func countsOf(m *chemistry.Model) counts {
	return counts{len(m.AllMolecules()), len(m.AllAtoms()), len(m.AllBonds()), m.TotalRingCount()}
}

func TestImport_Benzene(t *testing.T) {
	m := load(t, "benzene.xml")
	require.Len(t, m.Molecules(), 1)
	mol := m.Molecules()[0]
	assert.Equal(t, counts{1, 6, 6, 1}, countsOf(m))
	assert.Len(t, mol.Names, 3)
	assert.Len(t, mol.Formulas, 2)
	assert.Equal(t, "benzene", mol.Names[0].Value)
	assert.Equal(t, "chebi:Name", mol.Names[0].DictRef)
	assert.Equal(t, "C 6 H 6", mol.Formulas[1].Concise)
	assert.Empty(t, m.AllWarnings())
	assert.Empty(t, m.CheckIntegrity())

	for _, id := range []string{"b1", "b3", "b5"} {
		b, ok := mol.Bond(id)
		require.True(t, ok)
		assert.Equal(t, chemistry.OrderDouble, b.Order)
		d, err := mol.BondPlacement(id)
		require.NoError(t, err)
		assert.NotEqual(t, chemistry.DirectionNone, d, id)
	}
}

func TestImport_RingScenarios(t *testing.T) {
	tests := []struct {
		file          string
		atoms, bonds  int
		rings, sorted int
		names         int
	}{
		{"testosterone.xml", 25, 28, 4, 4, 4},
		{"copper_phthalocyanine.xml", 57, 68, 12, 12, 1},
		{"phthalocyanine.xml", 58, 66, 9, 8, 1},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			m := load(t, tt.file)
			check := func(stage string) {
				require.Len(t, m.Molecules(), 1, stage)
				mol := m.Molecules()[0]
				assert.Len(t, m.AllAtoms(), tt.atoms, stage)
				assert.Len(t, m.AllBonds(), tt.bonds, stage)
				assert.Len(t, mol.Rings(), tt.rings, stage)
				assert.Len(t, mol.SortRingsForPlacement(), tt.sorted, stage)
				assert.Len(t, mol.Names, tt.names, stage)
			}
			check("import")
			m.Refresh()
			check("refresh")

			back := roundTrip(t, m)
			assert.Equal(t, countsOf(m), countsOf(back))
		})
	}
}

func TestImport_TestosteroneFormula(t *testing.T) {
	m := load(t, "testosterone.xml")
	mol := m.Molecules()[0]
	assert.Len(t, mol.Formulas, 2)
	// Only the drawn hydrogens are counted; the fixture carries no implicit
	// hydrogen counts.
	assert.Equal(t, "C 19 H 4 O 2", mol.ConciseFormula())
}

func TestImport_Nested(t *testing.T) {
	m := load(t, "nested.xml")
	m.Refresh()

	assertShape := func(m *chemistry.Model) {
		t.Helper()
		require.Len(t, m.Molecules(), 1)
		top := m.Molecules()[0]
		assert.Len(t, top.Children(), 4)
		assert.Equal(t, 0, top.AtomCount())

		second := top.Children()[1]
		assert.Empty(t, second.Children())
		assert.Equal(t, 6, second.AtomCount())

		first := top.Children()[0]
		require.Len(t, first.Children(), 1)
		assert.Equal(t, 0, first.AtomCount())
		grand := first.Children()[0]
		assert.Empty(t, grand.Children())
		assert.Equal(t, 6, grand.AtomCount())
	}
	assertShape(m)

	back := roundTrip(t, m)
	back.Refresh()
	assertShape(back)
	assert.Equal(t, countsOf(m), countsOf(back))

	got, err := back.GetFromPath("/m0/m1/m5/a53")
	require.NoError(t, err)
	require.NotNil(t, got.Atom)
	assert.Equal(t, "C", got.Atom.Element.String())

	na, ok := back.Atom("a41")
	require.True(t, ok)
	assert.Equal(t, 1, na.Charge())
}

func TestRoundTrip_PreservesAttributes(t *testing.T) {
	doc := `<cml:cml xmlns:cml="http://www.xml-cml.org/schema" xmlns:c4w="http://www.chem4word.com/cml">
  <cml:molecule id="m1">
    <cml:atomArray>
      <cml:atom id="a1" elementType="C" x2="0" y2="0" hydrogenCount="2" />
      <cml:atom id="a2" elementType="C" x2="1.5" y2="0" isotopeNumber="13" />
      <cml:atom id="a3" elementType="N" x2="2" y2="1" formalCharge="1" />
      <cml:atom id="a4" elementType="Ph" x2="-1" y2="1" />
    </cml:atomArray>
    <cml:bondArray>
      <cml:bond id="b1" atomRefs2="a1 a2" order="2" c4w:placement="Anticlockwise" />
      <cml:bond id="b2" atomRefs2="a2 a3" order="1"><cml:bondStereo>W</cml:bondStereo></cml:bond>
      <cml:bond id="b3" atomRefs2="a1 a4" order="S" />
    </cml:bondArray>
    <cml:propertyList>
      <cml:property dictRef="CAS"><cml:scalar>0-00-0</cml:scalar></cml:property>
    </cml:propertyList>
  </cml:molecule>
</cml:cml>`
	c := NewConverter()
	m, err := c.ImportString(doc)
	require.NoError(t, err)
	assert.Empty(t, m.AllWarnings())

	back := roundTrip(t, m)
	a1, _ := back.Atom("a1")
	require.NotNil(t, a1.HydrogenCount)
	assert.Equal(t, 2, *a1.HydrogenCount)
	assert.Nil(t, a1.FormalCharge)
	a2, _ := back.Atom("a2")
	require.NotNil(t, a2.IsotopeNumber)
	assert.Equal(t, 13, *a2.IsotopeNumber)
	assert.Equal(t, 1.5, a2.Position().X)
	a3, _ := back.Atom("a3")
	assert.Equal(t, 1, a3.Charge())
	a4, _ := back.Atom("a4")
	_, isGroup := a4.Element.Group()
	assert.True(t, isGroup)

	b1, _ := back.Bond("b1")
	assert.Equal(t, chemistry.OrderDouble, b1.Order)
	require.NotNil(t, b1.ExplicitPlacement)
	assert.Equal(t, chemistry.DirectionAnticlockwise, *b1.ExplicitPlacement)
	b2, _ := back.Bond("b2")
	assert.Equal(t, chemistry.StereoWedge, b2.Stereo)
	assert.Nil(t, b2.ExplicitPlacement)

	mol := back.Molecules()[0]
	assert.Equal(t, []chemistry.Property{{Key: "CAS", Value: "0-00-0"}}, mol.Properties)
}

func TestExport_Layout(t *testing.T) {
	m := load(t, "benzene.xml")
	out, err := NewConverter().ExportString(m)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `xmlns:cml="`+NamespaceCML+`"`)
	assert.Contains(t, out, `xmlns:c4w="`+NamespaceC4W+`"`)
	assert.Contains(t, out, `<cml:atom id="a1" elementType="C" x2="0" y2="1"></cml:atom>`)
	assert.Contains(t, out, `<cml:bond id="b1" atomRefs2="a1 a2" order="D"></cml:bond>`)
	assert.NotContains(t, out, "placement")

	flat, err := NewConverter(WithIndent(false)).ExportString(m)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(flat, "\n"))
}

func TestExport_DisplayScale(t *testing.T) {
	m := load(t, "benzene.xml")
	m.RescaleForDisplay(false)
	back := roundTrip(t, m)
	assert.InDelta(t, m.MeanBondLength(), back.MeanBondLength(), 1e-9)
	assert.InDelta(t, 2, back.MeanBondLength(), 1e-3)
}

func TestImport_Fallbacks(t *testing.T) {
	doc := `<cml xmlns="http://www.xml-cml.org/schema">
  <molecule id="m1">
    <atomArray>
      <atom id="a1" elementType="Xx" x2="0" y2="0" />
      <atom id="a2" elementType="O" x2="oops" y2="1" formalCharge="plus" />
      <atom elementType="N" x2="2" y2="0" />
      <atom id="a1" elementType="S" x2="3" y2="0" />
      <atom id="a5" x3="4" y3="1" />
    </atomArray>
    <bondArray>
      <bond id="b1" atomRefs2="a1 a2" order="quadruple" />
      <bond id="b1" atomRefs2="a2 a5" order="1" c4w:placement="sideways" xmlns:c4w="http://www.chem4word.com/cml" />
      <bond id="b3" atomRefs2="a1 a1" />
    </bondArray>
  </molecule>
</cml>`
	core, logs := observer.New(zap.WarnLevel)
	c := NewConverter(WithLogger(logging.NewLoggerFromCore(core)))
	m, err := c.ImportString(doc)
	require.NoError(t, err)

	mol := m.Molecules()[0]
	assert.Equal(t, 5, mol.AtomCount())
	assert.Equal(t, 2, mol.BondCount())

	a1, _ := mol.Atom("a1")
	assert.Equal(t, "C", a1.Element.String())
	a2, _ := mol.Atom("a2")
	assert.Equal(t, 0.0, a2.Position().X)
	assert.Nil(t, a2.FormalCharge)
	a5, _ := mol.Atom("a5")
	assert.Equal(t, 4.0, a5.Position().X)
	assert.Equal(t, "C", a5.Element.String())

	b1, _ := mol.Bond("b1")
	assert.Equal(t, chemistry.OrderOther, b1.Order)
	assert.Zero(t, b1.Order.Value())

	joined := strings.Join(mol.Warnings, "\n")
	for _, want := range []string{
		`unknown elementType "Xx"`,
		`invalid x2 "oops"`,
		`invalid formalCharge "plus"`,
		"duplicate atom id a1 renamed",
		"only 3D coordinates",
		"no elementType",
		`unknown order "quadruple"`,
		`unknown placement "sideways"`,
		"duplicate bond id b1 renamed",
		"bond b3 skipped",
	} {
		assert.Contains(t, joined, want)
	}
	assert.Equal(t, len(mol.Warnings), logs.Len())
	assert.Empty(t, m.CheckIntegrity())
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `<cml><molecule id="m1">`},
		{"empty", ``},
		{"wrong root", `<html/>`},
		{"unresolved ref", `<cml><molecule id="m1"><atomArray><atom id="a1" elementType="C" x2="0" y2="0"/></atomArray>
			<bondArray><bond id="b1" atomRefs2="a1 a9" order="1"/></bondArray></molecule></cml>`},
		{"single ref", `<cml><molecule id="m1"><atomArray><atom id="a1" elementType="C" x2="0" y2="0"/></atomArray>
			<bondArray><bond id="b1" atomRefs2="a1" order="1"/></bondArray></molecule></cml>`},
		{"ref into sibling", `<cml><molecule id="m1"><atomArray><atom id="a1" elementType="C" x2="0" y2="0"/></atomArray></molecule>
			<molecule id="m2"><atomArray><atom id="a2" elementType="C" x2="1" y2="0"/></atomArray>
			<bondArray><bond id="b1" atomRefs2="a1 a2"/></bondArray></molecule></cml>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewConverter().ImportString(tt.doc)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, errors.IsFormat(err), err.Error())
		})
	}
}

func TestImport_BareMoleculeRootAndGeneratedIDs(t *testing.T) {
	doc := `<molecule><atomArray><atom elementType="C" x2="0" y2="0"/><atom elementType="O" x2="1" y2="0"/></atomArray>
		<name>carbon monoxide</name><molecule><atomArray><atom elementType="He" x2="5" y2="5"/></atomArray></molecule></molecule>`
	m, err := NewConverter().ImportString(doc)
	require.NoError(t, err)
	require.Len(t, m.Molecules(), 1)
	top := m.Molecules()[0]
	assert.NotEmpty(t, top.ID)
	assert.Equal(t, 2, top.AtomCount())
	assert.Len(t, top.Children(), 1)
	assert.Equal(t, "carbon monoxide", top.Names[0].Value)
	for _, a := range m.AllAtoms() {
		assert.NotEmpty(t, a.ID)
	}
	assert.Empty(t, m.AllWarnings())
}

func TestImport_DuplicateMoleculeID(t *testing.T) {
	doc := `<cml><molecule id="m1"/><molecule id="m1"/></cml>`
	m, err := NewConverter().ImportString(doc)
	require.NoError(t, err)
	mols := m.Molecules()
	require.Len(t, mols, 2)
	assert.NotEqual(t, mols[0].ID, mols[1].ID)
	assert.Contains(t, mols[1].Warnings[0], "duplicate molecule id m1")
}

func TestImport_ModelOptions(t *testing.T) {
	var changes []chemistry.Change
	obs := chemistry.ObserverFunc(func(c chemistry.Change) { changes = append(changes, c) })
	c := NewConverter(WithModelOptions(chemistry.WithObserver(obs)))
	_, err := c.ImportString(`<cml><molecule id="m1"><atomArray><atom id="a1" elementType="C" x2="0" y2="0"/></atomArray></molecule></cml>`)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, chemistry.MoleculeAdded, changes[0].Kind)
	assert.Equal(t, chemistry.AtomAdded, changes[1].Kind)
}

func TestExport_NilModel(t *testing.T) {
	_, err := NewConverter().ExportString(nil)
	assert.Error(t, err)
}

//Personal.AI order the ending

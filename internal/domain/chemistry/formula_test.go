package chemistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemGraph/internal/domain/element"
	"github.com/turtacn/ChemGraph/internal/domain/geometry"
)

func ethanol(t *testing.T) (*Model, *Molecule) {
	t.Helper()
	m := NewModel()
	mol, _ := m.AddMolecule("m1")
	addAtoms(t, mol, atomSpec{"c1", "C", 0, 0}, atomSpec{"c2", "C", 1, 0}, atomSpec{"o1", "O", 1.5, 0.87})
	addBond(t, mol, "", "c1", "c2", OrderSingle)
	addBond(t, mol, "", "c2", "o1", OrderSingle)
	for id, h := range map[string]int{"c1": 3, "c2": 2, "o1": 1} {
		a, ok := mol.Atom(id)
		require.True(t, ok)
		a.HydrogenCount = IntPtr(h)
	}
	return m, mol
}

func TestConciseFormula_ImplicitHydrogens(t *testing.T) {
	m, mol := ethanol(t)
	assert.Equal(t, map[string]int{"C": 2, "H": 6, "O": 1}, mol.Composition())
	assert.Equal(t, "C 2 H 6 O 1", mol.ConciseFormula())
	assert.InDelta(t, 46.069, mol.MolecularWeight(), 1e-3)
	assert.Equal(t, "C 2 H 6 O 1", m.ConciseFormula())

	// Drawing the hydroxyl hydrogen does not count it twice.
	addAtoms(t, mol, atomSpec{"h1", "H", 2.5, 0.87})
	addBond(t, mol, "", "o1", "h1", OrderSingle)
	assert.Equal(t, "C 2 H 6 O 1", mol.ConciseFormula())
}

func TestConciseFormula_NoHydrogenCount(t *testing.T) {
	_, mol := benzeneModel(t)
	assert.Equal(t, map[string]int{"C": 6}, mol.Composition())
	assert.Equal(t, "C 6", mol.ConciseFormula())
}

func TestConciseFormula_ChargedComponents(t *testing.T) {
	m := NewModel()
	na, _ := m.AddMolecule("m1")
	addAtoms(t, na, atomSpec{"a1", "Na", 0, 0})
	cl, _ := m.AddMolecule("m2")
	addAtoms(t, cl, atomSpec{"a2", "Cl", 3, 0})
	a1, _ := na.Atom("a1")
	a1.FormalCharge = IntPtr(1)
	a2, _ := cl.Atom("a2")
	a2.FormalCharge = IntPtr(-1)

	assert.Equal(t, "Na 1 1 . Cl 1 -1", m.ConciseFormula())
	assert.Equal(t, 0, na.Charge()+cl.Charge())
	assert.InDelta(t, 58.44, m.MolecularWeight(), 1e-2)
}

func TestConciseFormula_RepeatedComponents(t *testing.T) {
	m := NewModel()
	for i, x := range []float64{0, 5} {
		mol, _ := m.AddMolecule("")
		o := NewAtom("", element.MustElement("O"), geometry.Pt(x, 0))
		o.HydrogenCount = IntPtr(2)
		require.NoError(t, mol.AddAtom(o), i)
	}
	ion, _ := m.AddMolecule("")
	addAtoms(t, ion, atomSpec{"k", "K", 9, 0})

	assert.Equal(t, "2 H 2 O 1 . K 1", m.ConciseFormula())
	assert.Equal(t, "", NewModel().ConciseFormula())
}

func TestComposition_ExpandsFunctionalGroups(t *testing.T) {
	m := NewModel()
	mol, _ := m.AddMolecule("m1")
	ph, ok := element.LookupGroup("Ph")
	require.True(t, ok)
	require.NoError(t, mol.AddAtom(NewAtom("g1", element.FromGroup(ph), geometry.Pt(0, 0))))
	addAtoms(t, mol, atomSpec{"o1", "O", 1, 0})
	addBond(t, mol, "", "g1", "o1", OrderSingle)
	o, _ := mol.Atom("o1")
	o.HydrogenCount = IntPtr(1)

	assert.Equal(t, "C 6 H 6 O 1", mol.ConciseFormula())
}

//Personal.AI order the ending

package chemistry

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemGraph/internal/domain/element"
	"github.com/turtacn/ChemGraph/internal/domain/geometry"
)

type atomSpec struct {
	id   string
	sym  string
	x, y float64
}

func addAtoms(t *testing.T, mol *Molecule, atoms ...atomSpec) {
	t.Helper()
	for _, s := range atoms {
		require.NoError(t, mol.AddAtom(NewAtom(s.id, element.MustElement(s.sym), geometry.Pt(s.x, s.y))))
	}
}

func addBond(t *testing.T, mol *Molecule, id, start, end string, o BondOrder) *Bond {
	t.Helper()
	b := NewBond(id, start, end, o)
	require.NoError(t, mol.AddBond(b))
	return b
}

// addRing adds an n-membered carbon ring of the given radius centred on
// (cx, cy); atoms are <prefix>a1.., bonds <prefix>b1... The first atom sits
// at angle 0 and the ring runs anticlockwise. Every other bond is double when
// alternate is set.
func addRing(t *testing.T, mol *Molecule, prefix string, n int, radius, cx, cy float64, alternate bool) {
	t.Helper()
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		addAtoms(t, mol, atomSpec{fmt.Sprintf("%sa%d", prefix, i+1), "C", cx + radius*math.Cos(a), cy + radius*math.Sin(a)})
	}
	for i := 0; i < n; i++ {
		o := OrderSingle
		if alternate && i%2 == 0 {
			o = OrderDouble
		}
		addBond(t, mol, fmt.Sprintf("%sb%d", prefix, i+1),
			fmt.Sprintf("%sa%d", prefix, i+1), fmt.Sprintf("%sa%d", prefix, (i+1)%n+1), o)
	}
}

// benzeneModel returns one molecule "m1" holding a unit-radius benzene ring
// a1..a6 / b1..b6 with b1, b3, b5 double.
func benzeneModel(t *testing.T, opts ...Option) (*Model, *Molecule) {
	t.Helper()
	m := NewModel(opts...)
	mol, err := m.AddMolecule("m1")
	require.NoError(t, err)
	addRing(t, mol, "", 6, 1, 0, 0, true)
	return m, mol
}

type recorder struct{ changes []Change }

func (r *recorder) ModelChanged(c Change) { r.changes = append(r.changes, c) }

func (r *recorder) kinds() []ChangeKind {
	out := make([]ChangeKind, len(r.changes))
	for i, c := range r.changes {
		out[i] = c.Kind
	}
	return out
}

//Personal.AI order the ending

package chemistry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemGraph/internal/domain/geometry"
)

func ringSizes(rings []*Ring) []int {
	out := make([]int, len(rings))
	for i, r := range rings {
		out[i] = r.Size()
	}
	return out
}

func TestRings_Benzene(t *testing.T) {
	_, mol := benzeneModel(t)
	rings := mol.Rings()
	require.Len(t, rings, 1)

	r := rings[0]
	assert.Equal(t, 6, r.Size())
	assert.Equal(t, 1, r.Priority)
	assert.Equal(t, []string{"a1", "a2", "a3", "a4", "a5", "a6"}, r.AtomIDs())
	assert.Equal(t, []string{"b1", "b2", "b3", "b4", "b5", "b6"}, r.BondIDs())
	assert.True(t, r.Contains("a4"))
	assert.False(t, r.Contains("a7"))
	assert.True(t, r.ContainsBond("b6"))

	c, ok := r.Centroid()
	require.True(t, ok)
	assert.True(t, c.Equal(geometry.Pt(0, 0)))
	assert.Len(t, mol.SortRingsForPlacement(), 1)
	assert.True(t, mol.IsCyclic("b2"))
}

func naphthalene(t *testing.T) *Molecule {
	t.Helper()
	m := NewModel()
	mol, _ := m.AddMolecule("m1")
	addRing(t, mol, "", 6, 1, 0, 0, false)
	h := math.Sqrt(3) / 2
	addAtoms(t, mol,
		atomSpec{"a7", "C", 2, 0},
		atomSpec{"a8", "C", 2.5, h},
		atomSpec{"a9", "C", 2, 2 * h},
		atomSpec{"a10", "C", 1, 2 * h},
	)
	addBond(t, mol, "b7", "a1", "a7", OrderSingle)
	addBond(t, mol, "b8", "a7", "a8", OrderSingle)
	addBond(t, mol, "b9", "a8", "a9", OrderSingle)
	addBond(t, mol, "b10", "a9", "a10", OrderSingle)
	addBond(t, mol, "b11", "a10", "a2", OrderSingle)
	return mol
}

func TestRings_FusedKeepsBothSixRings(t *testing.T) {
	mol := naphthalene(t)
	rings := mol.Rings()
	require.Len(t, rings, 2)
	assert.Equal(t, []int{6, 6}, ringSizes(rings))

	// "a1","a10",... sorts before "a1","a2",... so the second ring leads.
	assert.True(t, rings[0].Contains("a7"))
	assert.Equal(t, 1, rings[0].Priority)
	assert.Equal(t, 2, rings[1].Priority)

	// The shared bond belongs to both rings.
	assert.Len(t, mol.RingsOfBond("b1"), 2)
	assert.Len(t, mol.RingsOfBond("b8"), 1)
}

func TestRings_Bridged(t *testing.T) {
	m := NewModel()
	mol, _ := m.AddMolecule("m1")
	addAtoms(t, mol,
		atomSpec{"c1", "C", 0, 0}, atomSpec{"c2", "C", 1, -1}, atomSpec{"c3", "C", 2, -1},
		atomSpec{"c4", "C", 3, 0}, atomSpec{"c5", "C", 2, 1}, atomSpec{"c6", "C", 1, 1},
		atomSpec{"c7", "C", 1.5, 0.2},
	)
	for _, p := range [][2]string{{"c1", "c2"}, {"c2", "c3"}, {"c3", "c4"}, {"c4", "c5"}, {"c5", "c6"}, {"c6", "c1"}, {"c1", "c7"}, {"c7", "c4"}} {
		addBond(t, mol, "", p[0], p[1], OrderSingle)
	}
	assert.Equal(t, []int{5, 5}, ringSizes(mol.Rings()))
}

func TestRings_CubaneHasFiveIndependentFaces(t *testing.T) {
	m := NewModel()
	mol, _ := m.AddMolecule("m1")
	addAtoms(t, mol,
		atomSpec{"a1", "C", 0, 0}, atomSpec{"a2", "C", 2, 0}, atomSpec{"a3", "C", 2, 2}, atomSpec{"a4", "C", 0, 2},
		atomSpec{"a5", "C", 0.6, 0.5}, atomSpec{"a6", "C", 2.6, 0.5}, atomSpec{"a7", "C", 2.6, 2.5}, atomSpec{"a8", "C", 0.6, 2.5},
	)
	edges := [][2]string{
		{"a1", "a2"}, {"a2", "a3"}, {"a3", "a4"}, {"a4", "a1"},
		{"a5", "a6"}, {"a6", "a7"}, {"a7", "a8"}, {"a8", "a5"},
		{"a1", "a5"}, {"a2", "a6"}, {"a3", "a7"}, {"a4", "a8"},
	}
	for _, e := range edges {
		addBond(t, mol, "", e[0], e[1], OrderSingle)
	}
	assert.Equal(t, []int{4, 4, 4, 4, 4}, ringSizes(mol.Rings()))
}

func TestRings_CountMatchesCyclomaticNumberAcrossComponents(t *testing.T) {
	m := NewModel()
	mol, _ := m.AddMolecule("m1")
	addRing(t, mol, "p", 6, 1, 0, 0, false)
	addRing(t, mol, "q", 5, 1, 5, 0, false)
	addAtoms(t, mol, atomSpec{"tail", "O", 7, 0})
	addBond(t, mol, "tb", "qa1", "tail", OrderSingle)

	rings := mol.Rings()
	assert.Equal(t, mol.BondCount()-mol.AtomCount()+len(mol.ConnectedComponents()), len(rings))
	assert.Equal(t, []int{5, 6}, ringSizes(rings))
}

func TestRings_CacheLifecycle(t *testing.T) {
	_, mol := benzeneModel(t)
	first := mol.Rings()
	require.Len(t, first, 1)

	// Moving atoms keeps topology.
	require.NoError(t, mol.MoveAtom("a1", geometry.Pt(1.1, 0)))
	assert.Same(t, first[0], mol.Rings()[0])

	// Structural mutation recomputes.
	require.NoError(t, mol.RemoveBond("b3"))
	assert.Empty(t, mol.Rings())
	addBond(t, mol, "b3", "a3", "a4", OrderDouble)
	require.Len(t, mol.Rings(), 1)
	assert.NotSame(t, first[0], mol.Rings()[0])
}

func TestRings_DegenerateCentroid(t *testing.T) {
	m := NewModel()
	mol, _ := m.AddMolecule("m1")
	addAtoms(t, mol, atomSpec{"a1", "C", 0, 0}, atomSpec{"a2", "C", 1, 0}, atomSpec{"a3", "C", 2, 0})
	addBond(t, mol, "b1", "a1", "a2", OrderSingle)
	addBond(t, mol, "b2", "a2", "a3", OrderSingle)
	addBond(t, mol, "b3", "a3", "a1", OrderSingle)

	rings := mol.Rings()
	require.Len(t, rings, 1)
	_, ok := rings[0].Centroid()
	assert.False(t, ok)
	assert.Len(t, mol.SortRingsForPlacement(), 1, "a flat ring encloses nothing")
}

// squareWithCentre is a 4-ring a1..a4 around an atom a5 bonded to a1.
func squareWithCentre(t *testing.T, opts ...Option) *Molecule {
	t.Helper()
	m := NewModel(opts...)
	mol, _ := m.AddMolecule("m1")
	addAtoms(t, mol,
		atomSpec{"a1", "C", -1, -1}, atomSpec{"a2", "C", 1, -1},
		atomSpec{"a3", "C", 1, 1}, atomSpec{"a4", "C", -1, 1},
		atomSpec{"a5", "H", 0, 0},
	)
	addBond(t, mol, "b1", "a1", "a2", OrderDouble)
	addBond(t, mol, "b2", "a2", "a3", OrderSingle)
	addBond(t, mol, "b3", "a3", "a4", OrderSingle)
	addBond(t, mol, "b4", "a4", "a1", OrderSingle)
	addBond(t, mol, "b5", "a1", "a5", OrderSingle)
	return mol
}

func TestSortRingsForPlacement_ExcludesRingsEnclosingForeignAtoms(t *testing.T) {
	mol := squareWithCentre(t)
	assert.Len(t, mol.Rings(), 1)
	assert.Empty(t, mol.SortRingsForPlacement())
	assert.LessOrEqual(t, len(mol.SortRingsForPlacement()), len(mol.Rings()))
	assert.Empty(t, mol.Warnings, "a single exclusion is expected for macrocycles")

	// Moving the enclosed atom outside brings the ring back.
	require.NoError(t, mol.MoveAtom("a5", geometry.Pt(-2, -2)))
	assert.Len(t, mol.SortRingsForPlacement(), 1)
}

func TestSortRingsForPlacement_WarnsAboveThreshold(t *testing.T) {
	mol := squareWithCentre(t, WithRingExclusionWarning(0))
	assert.Empty(t, mol.SortRingsForPlacement())
	require.Len(t, mol.Warnings, 1)
	assert.Contains(t, mol.Warnings[0], "1 rings enclose")

	// Recomputing does not duplicate the warning.
	require.NoError(t, mol.MoveAtom("a5", geometry.Pt(0.1, 0)))
	mol.SortRingsForPlacement()
	assert.Len(t, mol.Warnings, 1)
}

//Personal.AI order the ending

package chemistry

import (
	"github.com/turtacn/ChemGraph/internal/domain/geometry"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

// placementOffset is how far the test points are displaced from the end
// atom when deciding an acyclic bond's side.
const placementOffset = 3.0

// BondPlacement returns the side on which the second line of a double bond
// is drawn: the explicit placement when set, otherwise the computed one.
// Bonds of any other order report DirectionNone. The computed value is cached
// on the bond until connectivity or geometry changes.
func (m *Molecule) BondPlacement(bondID string) (BondDirection, error) {
	b, ok := m.bonds[bondID]
	if !ok {
		return DirectionNone, errors.Reference("bond not found").WithDetailf("%s in %s", bondID, m.Path())
	}
	if b.Order != OrderDouble {
		return DirectionNone, nil
	}
	if b.ExplicitPlacement != nil {
		return *b.ExplicitPlacement, nil
	}
	if b.implicit != nil {
		return *b.implicit, nil
	}
	d, err := m.implicitPlacement(b)
	if err != nil {
		return DirectionNone, err
	}
	b.implicit = &d
	return d, nil
}

// ImplicitPlacement is the computed side regardless of an explicit
// override. Cached like BondPlacement.
func (m *Molecule) ImplicitPlacement(bondID string) (BondDirection, error) {
	b, ok := m.bonds[bondID]
	if !ok {
		return DirectionNone, errors.Reference("bond not found").WithDetailf("%s in %s", bondID, m.Path())
	}
	if b.implicit != nil {
		return *b.implicit, nil
	}
	d, err := m.implicitPlacement(b)
	if err != nil {
		return DirectionNone, err
	}
	b.implicit = &d
	return d, nil
}

func (m *Molecule) implicitPlacement(b *Bond) (BondDirection, error) {
	start, end := m.atoms[b.start], m.atoms[b.end]
	bondVec := start.position.Sub(end.position)
	if bondVec.Length() < geometry.Epsilon {
		return DirectionNone, errors.Geometry("bond has zero length").WithDetailf("%s/%s", m.Path(), b.ID)
	}

	if m.IsCyclic(b.ID) {
		for _, r := range m.SortRingsForPlacement() {
			if !r.Contains(b.start) || !r.Contains(b.end) {
				continue
			}
			c, ok := r.Centroid()
			if !ok {
				return DirectionNone, nil
			}
			mid := geometry.Midpoint(start.position, end.position)
			return BondDirection(geometry.Sign(geometry.Cross(c.Sub(mid), bondVec))), nil
		}
		return DirectionNone, nil
	}

	startLigands := m.ligands(b.start, b.end)
	endLigands := m.ligands(b.end, b.start)
	if len(startLigands) == 0 || len(endLigands) == 0 {
		return DirectionNone, nil
	}
	if len(startLigands) > 2 || len(endLigands) > 2 {
		return DirectionNone, nil
	}
	if len(startLigands) == 2 && len(endLigands) == 2 {
		return DirectionNone, nil
	}

	startNonH := nonHydrogen(startLigands)
	endNonH := nonHydrogen(endLigands)
	switch {
	case len(startNonH) == 1 && len(endNonH) == 1:
		_, cis, err := geometry.SegmentsIntersect(
			end.position, startNonH[0].position,
			start.position, endNonH[0].position,
		)
		if err != nil {
			return DirectionNone, err
		}
		if !cis {
			return DirectionNone, nil
		}
		return m.sideOf(end, bondVec, startNonH[0])
	case len(startNonH) == 1:
		return m.sideOf(end, bondVec, startNonH[0])
	case len(endNonH) == 1:
		return m.sideOf(end, bondVec, endNonH[0])
	}
	// No end has a single heavy ligand to lean towards.
	return DirectionNone, nil
}

// sideOf displaces the end atom both ways along the bond normal and returns
// the side of the displaced point closer to ligand.
func (m *Molecule) sideOf(end *Atom, bondVec geometry.Vector, ligand *Atom) (BondDirection, error) {
	if ligand.position.Equal(end.position) {
		return DirectionNone, errors.Geometry("ligand coincides with bond end").
			WithDetailf("%s at %s", ligand.ID, m.Path())
	}
	n, err := bondVec.Perpendicular().Normalize()
	if err != nil {
		return DirectionNone, err
	}
	n = n.Scale(placementOffset)
	plus := end.position.Add(n)
	minus := end.position.Add(n.Neg())
	toward := n
	if geometry.Distance(minus, ligand.position) < geometry.Distance(plus, ligand.position) {
		toward = n.Neg()
	}
	return BondDirection(geometry.Sign(geometry.Cross(toward, bondVec))), nil
}

// ligands returns the neighbours of atomID other than exclude.
func (m *Molecule) ligands(atomID, exclude string) []*Atom {
	var out []*Atom
	for _, a := range m.Neighbours(atomID) {
		if a.ID != exclude {
			out = append(out, a)
		}
	}
	return out
}

func nonHydrogen(atoms []*Atom) []*Atom {
	var out []*Atom
	for _, a := range atoms {
		if !a.IsHydrogen() {
			out = append(out, a)
		}
	}
	return out
}

//Personal.AI order the ending

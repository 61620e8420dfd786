package chemistry

import (
	"github.com/turtacn/ChemGraph/internal/domain/element"
	"github.com/turtacn/ChemGraph/internal/domain/geometry"
)

// Atom is a vertex of the molecular graph. Once added to a Molecule its
// position must be changed through Molecule.MoveAtom (or Model.MoveAtom) so
// that cached geometry is invalidated.
type Atom struct {
	ID      string
	Element element.Symbol

	// Optional attributes; nil means "not specified".
	FormalCharge  *int
	HydrogenCount *int
	IsotopeNumber *int

	position geometry.Point
}

// NewAtom builds a detached atom. An empty id is allocated when the atom is
// added to a molecule.
func NewAtom(id string, sym element.Symbol, pos geometry.Point) *Atom {
	return &Atom{ID: id, Element: sym, position: pos}
}

// Position returns the atom coordinates in the model's current scale state.
func (a *Atom) Position() geometry.Point { return a.position }

// Charge returns the formal charge, 0 when unspecified.
func (a *Atom) Charge() int {
	if a.FormalCharge == nil {
		return 0
	}
	return *a.FormalCharge
}

// IsHydrogen reports whether the atom is the element H.
func (a *Atom) IsHydrogen() bool { return a.Element.IsHydrogen() }

func (a *Atom) clone() *Atom {
	c := *a
	c.FormalCharge = cloneInt(a.FormalCharge)
	c.HydrogenCount = cloneInt(a.HydrogenCount)
	c.IsotopeNumber = cloneInt(a.IsotopeNumber)
	return &c
}

// IntPtr returns a pointer to n; convenience for optional atom fields.
func IntPtr(n int) *int { return &n }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

//Personal.AI order the ending

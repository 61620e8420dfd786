package chemistry

import (
	"strconv"
	"strings"

	"github.com/turtacn/ChemGraph/internal/domain/element"
)

// Composition counts elements over m's subtree. Functional groups are
// expanded; an atom's hydrogen count adds implicit hydrogens beyond the
// explicit H neighbours already drawn.
func (m *Molecule) Composition() map[string]int {
	counts := map[string]int{}
	for _, mol := range m.collectMolecules(nil) {
		for _, a := range mol.Atoms() {
			for sym, n := range a.Element.Composition() {
				counts[sym] += n
			}
			counts["H"] += mol.implicitHydrogens(a)
		}
	}
	if counts["H"] == 0 {
		delete(counts, "H")
	}
	return counts
}

func (m *Molecule) implicitHydrogens(a *Atom) int {
	if a.HydrogenCount == nil {
		return 0
	}
	explicit := 0
	for _, n := range m.Neighbours(a.ID) {
		if n.IsHydrogen() {
			explicit++
		}
	}
	if extra := *a.HydrogenCount - explicit; extra > 0 {
		return extra
	}
	return 0
}

// Charge sums the formal charges of m's subtree.
func (m *Molecule) Charge() int {
	q := 0
	for _, a := range m.AllAtoms() {
		q += a.Charge()
	}
	return q
}

// ConciseFormula renders the subtree composition in Hill order, e.g.
// "C 19 H 18 N 3 1" for a monocation.
func (m *Molecule) ConciseFormula() string {
	return element.HillFormula(m.Composition(), m.Charge())
}

// MolecularWeight sums the atomic weights of m's subtree, implicit
// hydrogens included.
func (m *Molecule) MolecularWeight() float64 {
	h, _ := element.LookupElement("H")
	var w float64
	for _, mol := range m.collectMolecules(nil) {
		for _, a := range mol.Atoms() {
			w += a.Element.AtomicWeight()
			w += float64(mol.implicitHydrogens(a)) * h.AtomicWeight
		}
	}
	return w
}

// ConciseFormula joins the formulas of the top-level molecules with " . ";
// identical components are written once with a count prefix.
func (m *Model) ConciseFormula() string {
	var order []string
	counts := map[string]int{}
	for _, mol := range m.Molecules() {
		f := mol.ConciseFormula()
		if f == "" {
			continue
		}
		if counts[f] == 0 {
			order = append(order, f)
		}
		counts[f]++
	}
	parts := make([]string, 0, len(order))
	for _, f := range order {
		if counts[f] > 1 {
			parts = append(parts, strconv.Itoa(counts[f])+" "+f)
			continue
		}
		parts = append(parts, f)
	}
	return strings.Join(parts, " . ")
}

// MolecularWeight sums the weights of every top-level molecule.
func (m *Model) MolecularWeight() float64 {
	var w float64
	for _, mol := range m.Molecules() {
		w += mol.MolecularWeight()
	}
	return w
}

//Personal.AI order the ending

package chemistry

import (
	"fmt"

	"github.com/turtacn/ChemGraph/internal/domain/geometry"
)

// RepositionAll shifts every atom by (-dx, -dy).
func (m *Model) RepositionAll(dx, dy float64) {
	for _, mol := range m.Molecules() {
		mol.RepositionAll(dx, dy)
	}
	m.arena.bbox = nil
}

// ScaleToAverageBondLength scales all coordinates about the origin so that
// the mean bond length becomes newLength. A model without bonds is left
// alone.
func (m *Model) ScaleToAverageBondLength(newLength float64) {
	if len(m.AllBonds()) == 0 {
		return
	}
	mean := m.MeanBondLength()
	if mean <= 0 || newLength <= 0 {
		return
	}
	f := newLength / mean
	for _, mol := range m.AllMolecules() {
		for _, a := range mol.atoms {
			a.position = a.position.Scale(f)
		}
		mol.invalidateGeometry()
	}
	m.arena.bbox = nil
}

// RescaleForDisplay moves a native model into display units: bonds become
// ScaleFactorForDisplay times longer (a bondless model gets the pseudo bond
// length). With reposition set the drawing is shifted so its bounding box
// starts at the origin. A model already in display units is untouched.
func (m *Model) RescaleForDisplay(reposition bool) {
	if m.ScaledForDisplay {
		return
	}
	newLength := SingleAtomPseudoBondLength * ScaleFactorForDisplay
	if mean := m.MeanBondLength(); mean > 0 {
		newLength = mean * ScaleFactorForDisplay
	}
	m.ScaleToAverageBondLength(newLength)
	m.ScaledForDisplay = true
	m.DisplayBondLength = newLength
	if reposition {
		bb := m.BoundingBox()
		if !bb.IsEmpty() {
			m.RepositionAll(bb.Min.X, bb.Min.Y)
		}
	}
	m.arena.notify(Rescaled, "/", fmt.Sprintf("display bond length %.2f", newLength))
}

// RescaleForNative undoes RescaleForDisplay's scaling. A model already in
// native units is untouched.
func (m *Model) RescaleForNative() {
	if !m.ScaledForDisplay {
		return
	}
	newLength := SingleAtomPseudoBondLength / ScaleFactorForDisplay
	if mean := m.MeanBondLength(); mean > 0 {
		newLength = mean / ScaleFactorForDisplay
	}
	m.ScaleToAverageBondLength(newLength)
	m.ScaledForDisplay = false
	m.arena.notify(Rescaled, "/", "native")
}

// Translate moves every atom by v.
func (m *Model) Translate(v geometry.Vector) {
	m.RepositionAll(-v.X, -v.Y)
}

//Personal.AI order the ending

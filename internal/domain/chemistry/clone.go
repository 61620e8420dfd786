package chemistry

import (
	"github.com/google/uuid"
)

// Clone returns a deep copy of the model that keeps every id. Observers are
// not carried over. The copy is checked with CheckIntegrity; problems found
// are recorded in its GeneralErrors.
func (m *Model) Clone() *Model {
	out := m.duplicate(func(id string) string { return id })
	for k := range m.arena.issued {
		if _, ok := out.arena.issued[k]; !ok {
			out.arena.issued[k] = nil
		}
	}
	for k, v := range m.arena.counters {
		out.arena.counters[k] = v
	}
	out.GeneralErrors = append(out.GeneralErrors, out.CheckIntegrity()...)
	return out
}

// Copy returns a deep copy in which every molecule, atom and bond has a
// fresh UUID id, so the result can be merged into another model without
// collisions.
func (m *Model) Copy() *Model {
	return m.duplicate(func(string) string { return uuid.NewString() })
}

func (m *Model) duplicate(rename func(string) string) *Model {
	out := NewModel()
	out.arena.exclusionWarnAbove = m.arena.exclusionWarnAbove
	out.ScaledForDisplay = m.ScaledForDisplay
	out.DisplayBondLength = m.DisplayBondLength
	out.GeneralErrors = append([]string(nil), m.GeneralErrors...)
	for _, mol := range m.Molecules() {
		dst, err := out.AddMolecule(rename(mol.ID))
		if err != nil {
			out.AddGeneralError(err.Error())
			continue
		}
		copyMoleculeInto(mol, dst, rename, out)
	}
	return out
}

func copyMoleculeInto(src, dst *Molecule, rename func(string) string, out *Model) {
	dst.Names = append([]ChemicalName(nil), src.Names...)
	dst.Formulas = append([]Formula(nil), src.Formulas...)
	dst.Properties = append([]Property(nil), src.Properties...)
	dst.Warnings = append([]string(nil), src.Warnings...)
	dst.Errors = append([]string(nil), src.Errors...)

	ids := make(map[string]string, len(src.atoms))
	for _, a := range src.Atoms() {
		c := a.clone()
		c.ID = rename(a.ID)
		if err := dst.AddAtom(c); err != nil {
			out.AddGeneralError(err.Error())
			continue
		}
		ids[a.ID] = c.ID
	}
	for _, b := range src.Bonds() {
		c := b.clone()
		c.ID = rename(b.ID)
		c.start, c.end = ids[b.start], ids[b.end]
		if err := dst.AddBond(c); err != nil {
			out.AddGeneralError(err.Error())
		}
	}
	for _, child := range src.Children() {
		cdst, err := dst.AddChild(rename(child.ID))
		if err != nil {
			out.AddGeneralError(err.Error())
			continue
		}
		copyMoleculeInto(child, cdst, rename, out)
	}
}

//Personal.AI order the ending

package chemistry

import (
	"github.com/turtacn/ChemGraph/internal/domain/geometry"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

// ChemicalName is one name of a molecule, e.g. an IUPAC name or a trivial
// name. DictRef identifies the naming convention.
type ChemicalName struct {
	ID      string `json:"id,omitempty"`
	DictRef string `json:"dict_ref,omitempty"`
	Value   string `json:"value"`
}

// Formula is a formula annotation as carried by the source document.
type Formula struct {
	ID         string `json:"id,omitempty"`
	Convention string `json:"convention,omitempty"`
	Inline     string `json:"inline,omitempty"`
	Concise    string `json:"concise,omitempty"`
}

// Property is a free key/value annotation, e.g. an SD-file data item that is
// neither a name nor a formula.
type Property struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Molecule is a named subgraph. A molecule with atoms and no children is a
// leaf component; one with children and no atoms is a grouping.
type Molecule struct {
	ID         string
	Names      []ChemicalName
	Formulas   []Formula
	Properties []Property
	Warnings   []string
	Errors     []string

	a *arena

	atoms     map[string]*Atom
	atomOrder []string
	bonds     map[string]*Bond
	bondOrder []string
	adjacency map[string][]string // atom id -> incident bond ids
	children  []string

	rings       []*Ring
	ringsValid  bool
	sorted      []*Ring
	sortedValid bool
	bbox        *geometry.Rect
}

func newMolecule(id string, a *arena) *Molecule {
	return &Molecule{
		ID:        id,
		a:         a,
		atoms:     map[string]*Atom{},
		bonds:     map[string]*Bond{},
		adjacency: map[string][]string{},
	}
}

// Path is the slash separated chain of ancestor ids ending with this
// molecule's id.
func (m *Molecule) Path() string { return m.a.moleculePath(m.ID) }

// Parent returns the containing molecule, nil at the top level.
func (m *Molecule) Parent() *Molecule {
	return m.a.molecules[m.a.parent[m.ID]]
}

// IsLeaf reports a molecule without children.
func (m *Molecule) IsLeaf() bool { return len(m.children) == 0 }

// IsGrouping reports a molecule with children and no atoms of its own.
func (m *Molecule) IsGrouping() bool { return len(m.atoms) == 0 && len(m.children) > 0 }

// ─────────────────────────────────────────────────────────────────────────────
// Children
// ─────────────────────────────────────────────────────────────────────────────

// Children returns the direct child molecules in insertion order.
func (m *Molecule) Children() []*Molecule {
	out := make([]*Molecule, 0, len(m.children))
	for _, id := range m.children {
		out = append(out, m.a.molecules[id])
	}
	return out
}

// Child returns the direct child with the given id.
func (m *Molecule) Child(id string) (*Molecule, bool) {
	if m.a.parent[id] != m.ID {
		return nil, false
	}
	c, ok := m.a.molecules[id]
	return c, ok
}

// AddChild creates an empty child molecule. An empty id is allocated.
func (m *Molecule) AddChild(id string) (*Molecule, error) {
	c := newMolecule("", m.a)
	id, err := m.a.claim(id, prefixMolecule, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	m.a.molecules[id] = c
	m.a.parent[id] = m.ID
	m.children = append(m.children, id)
	m.a.invalidateBBox(m.ID)
	m.a.notify(MoleculeAdded, c.Path(), "")
	return c, nil
}

// AdoptChild moves an existing molecule of the same model under m. Adopting
// m itself or one of its ancestors is a ValidationError.
func (m *Molecule) AdoptChild(id string) error {
	return m.a.reparent(id, m.ID)
}

// RemoveChild detaches the direct child id and its subtree.
func (m *Molecule) RemoveChild(id string) error {
	if _, ok := m.Child(id); !ok {
		return errors.Reference("child molecule not found").WithDetailf("%s in %s", id, m.Path())
	}
	c := m.a.molecules[id]
	path := c.Path()
	m.children = removeString(m.children, id)
	m.a.drop(c)
	m.a.invalidateBBox(m.ID)
	m.a.notify(MoleculeRemoved, path, "")
	return nil
}

func (m *Molecule) collectMolecules(into []*Molecule) []*Molecule {
	into = append(into, m)
	for _, c := range m.Children() {
		into = c.collectMolecules(into)
	}
	return into
}

// Descendants lists the subtree below m, depth-first.
func (m *Molecule) Descendants() []*Molecule {
	all := m.collectMolecules(nil)
	return all[1:]
}

// ─────────────────────────────────────────────────────────────────────────────
// Atoms
// ─────────────────────────────────────────────────────────────────────────────

// Atoms returns this molecule's own atoms (not its children's) in insertion
// order.
func (m *Molecule) Atoms() []*Atom {
	out := make([]*Atom, 0, len(m.atomOrder))
	for _, id := range m.atomOrder {
		out = append(out, m.atoms[id])
	}
	return out
}

// AllAtoms returns the atoms of m and its descendants.
func (m *Molecule) AllAtoms() []*Atom {
	var out []*Atom
	for _, mol := range m.collectMolecules(nil) {
		out = append(out, mol.Atoms()...)
	}
	return out
}

// AllBonds returns the bonds of m and its descendants.
func (m *Molecule) AllBonds() []*Bond {
	var out []*Bond
	for _, mol := range m.collectMolecules(nil) {
		out = append(out, mol.Bonds()...)
	}
	return out
}

// Atom returns the atom with the given id if it belongs to m.
func (m *Molecule) Atom(id string) (*Atom, bool) {
	a, ok := m.atoms[id]
	return a, ok
}

// AtomCount is the number of m's own atoms.
func (m *Molecule) AtomCount() int { return len(m.atoms) }

// AddAtom attaches atom to m. An empty atom.ID is allocated; an id already
// used in the model is a ValidationError.
func (m *Molecule) AddAtom(atom *Atom) error {
	if atom == nil {
		return errors.Validation("nil atom")
	}
	id, err := m.a.claim(atom.ID, prefixAtom, atom)
	if err != nil {
		return err
	}
	atom.ID = id
	m.atoms[id] = atom
	m.atomOrder = append(m.atomOrder, id)
	m.a.atomOwner[id] = m.ID
	m.invalidateStructure()
	m.a.notify(AtomAdded, m.Path()+"/"+id, "")
	return nil
}

// RemoveAtom detaches the atom and every bond incident to it. A bond in
// another molecule still referencing the atom is a ReferenceError and nothing
// is removed.
func (m *Molecule) RemoveAtom(id string) error {
	if _, ok := m.atoms[id]; !ok {
		return errors.Reference("atom not found").WithDetailf("%s in %s", id, m.Path())
	}
	for bid, owner := range m.a.bondOwner {
		if owner == m.ID {
			continue
		}
		if b, ok := m.a.molecules[owner].bonds[bid]; ok && b.Touches(id) {
			return errors.Reference("atom is referenced from another molecule").
				WithDetailf("bond %s in %s", bid, m.a.moleculePath(owner))
		}
	}
	for _, bid := range append([]string(nil), m.adjacency[id]...) {
		m.detachBond(bid)
	}
	path := m.Path() + "/" + id
	delete(m.atoms, id)
	delete(m.adjacency, id)
	delete(m.a.atomOwner, id)
	m.atomOrder = removeString(m.atomOrder, id)
	m.invalidateStructure()
	m.a.notify(AtomRemoved, path, "")
	return nil
}

// MoveAtom sets the position of one of m's atoms.
func (m *Molecule) MoveAtom(id string, p geometry.Point) error {
	a, ok := m.atoms[id]
	if !ok {
		return errors.Reference("atom not found").WithDetailf("%s in %s", id, m.Path())
	}
	a.position = p
	m.invalidateGeometry()
	m.a.notify(AtomMoved, m.Path()+"/"+id, "")
	return nil
}

// UpdateAtom applies fn to an attached atom (element, charge, hydrogens) and
// clears the placement cache, which depends on ligand elements. fn must not
// change the id or position.
func (m *Molecule) UpdateAtom(id string, fn func(*Atom)) error {
	a, ok := m.atoms[id]
	if !ok {
		return errors.Reference("atom not found").WithDetailf("%s in %s", id, m.Path())
	}
	pos := a.position
	fn(a)
	a.ID, a.position = id, pos
	m.clearPlacements()
	m.a.notify(AtomUpdated, m.Path()+"/"+id, "")
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bonds
// ─────────────────────────────────────────────────────────────────────────────

// Bonds returns m's own bonds in insertion order.
func (m *Molecule) Bonds() []*Bond {
	out := make([]*Bond, 0, len(m.bondOrder))
	for _, id := range m.bondOrder {
		out = append(out, m.bonds[id])
	}
	return out
}

// Bond returns the bond with the given id if it belongs to m.
func (m *Molecule) Bond(id string) (*Bond, bool) {
	b, ok := m.bonds[id]
	return b, ok
}

// BondCount is the number of m's own bonds.
func (m *Molecule) BondCount() int { return len(m.bonds) }

// AddBond attaches bond to m. Both endpoints must already be atoms of m, be
// distinct and not already bonded to each other; the id must be unused.
// Violations are ValidationErrors.
func (m *Molecule) AddBond(bond *Bond) error {
	if bond == nil {
		return errors.Validation("nil bond")
	}
	if _, ok := m.atoms[bond.start]; !ok {
		return errors.Validation("bond start atom is not in molecule").
			WithDetailf("bond %s start %s in %s", bond.ID, bond.start, m.Path())
	}
	if _, ok := m.atoms[bond.end]; !ok {
		return errors.Validation("bond end atom is not in molecule").
			WithDetailf("bond %s end %s in %s", bond.ID, bond.end, m.Path())
	}
	if bond.start == bond.end {
		return errors.Validation("bond joins an atom to itself").WithDetail(bond.start)
	}
	if existing := m.BondBetween(bond.start, bond.end); existing != nil {
		return errors.Validation("atoms are already bonded").
			WithDetailf("%s-%s by %s", bond.start, bond.end, existing.ID)
	}
	id, err := m.a.claim(bond.ID, prefixBond, bond)
	if err != nil {
		return err
	}
	bond.ID = id
	bond.implicit = nil
	m.bonds[id] = bond
	m.bondOrder = append(m.bondOrder, id)
	m.adjacency[bond.start] = append(m.adjacency[bond.start], id)
	m.adjacency[bond.end] = append(m.adjacency[bond.end], id)
	m.a.bondOwner[id] = m.ID
	m.invalidateStructure()
	m.a.notify(BondAdded, m.Path()+"/"+id, "")
	return nil
}

// RemoveBond detaches the bond.
func (m *Molecule) RemoveBond(id string) error {
	if _, ok := m.bonds[id]; !ok {
		return errors.Reference("bond not found").WithDetailf("%s in %s", id, m.Path())
	}
	path := m.Path() + "/" + id
	m.detachBond(id)
	m.invalidateStructure()
	m.a.notify(BondRemoved, path, "")
	return nil
}

func (m *Molecule) detachBond(id string) {
	b := m.bonds[id]
	m.adjacency[b.start] = removeString(m.adjacency[b.start], id)
	m.adjacency[b.end] = removeString(m.adjacency[b.end], id)
	delete(m.bonds, id)
	delete(m.a.bondOwner, id)
	m.bondOrder = removeString(m.bondOrder, id)
}

// BondsOf returns the bonds incident to atomID.
func (m *Molecule) BondsOf(atomID string) []*Bond {
	ids := m.adjacency[atomID]
	out := make([]*Bond, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.bonds[id])
	}
	return out
}

// Neighbours returns the atoms bonded to atomID.
func (m *Molecule) Neighbours(atomID string) []*Atom {
	ids := m.adjacency[atomID]
	out := make([]*Atom, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.atoms[m.bonds[id].Other(atomID)])
	}
	return out
}

// BondBetween returns the bond joining a and b, or nil.
func (m *Molecule) BondBetween(a, b string) *Bond {
	for _, id := range m.adjacency[a] {
		if bd := m.bonds[id]; bd.Other(a) == b {
			return bd
		}
	}
	return nil
}

// BondLength is the distance between the bond's endpoints.
func (m *Molecule) BondLength(b *Bond) float64 {
	return geometry.Distance(m.atoms[b.start].position, m.atoms[b.end].position)
}

// SetExplicitPlacement overrides (or, with nil, clears the override of) the
// placement side of a bond.
func (m *Molecule) SetExplicitPlacement(bondID string, d *BondDirection) error {
	b, ok := m.bonds[bondID]
	if !ok {
		return errors.Reference("bond not found").WithDetailf("%s in %s", bondID, m.Path())
	}
	if d == nil {
		b.ExplicitPlacement = nil
	} else {
		v := *d
		b.ExplicitPlacement = &v
	}
	m.a.notify(PlacementChanged, m.Path()+"/"+bondID, "")
	return nil
}

// SetOrder changes a bond's order and clears its cached placement.
func (m *Molecule) SetOrder(bondID string, o BondOrder) error {
	b, ok := m.bonds[bondID]
	if !ok {
		return errors.Reference("bond not found").WithDetailf("%s in %s", bondID, m.Path())
	}
	b.Order = o
	b.implicit = nil
	m.a.notify(BondUpdated, m.Path()+"/"+bondID, "")
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Geometry
// ─────────────────────────────────────────────────────────────────────────────

// BoundingBox covers the atoms of m and its descendants. Cached.
func (m *Molecule) BoundingBox() geometry.Rect {
	if m.bbox != nil {
		return *m.bbox
	}
	r := geometry.EmptyRect()
	for _, a := range m.Atoms() {
		r = r.Extend(a.position)
	}
	for _, c := range m.Children() {
		r = r.Union(c.BoundingBox())
	}
	m.bbox = &r
	return r
}

// Centroid is the mean position of m's own atoms.
func (m *Molecule) Centroid() (geometry.Point, bool) {
	if len(m.atoms) == 0 {
		return geometry.Point{}, false
	}
	var c geometry.Point
	for _, a := range m.atoms {
		c = c.Add(geometry.Vector(a.position))
	}
	return c.Scale(1 / float64(len(m.atoms))), true
}

// RepositionAll shifts every atom of the subtree by (-dx, -dy).
func (m *Molecule) RepositionAll(dx, dy float64) {
	for _, mol := range m.collectMolecules(nil) {
		for _, a := range mol.atoms {
			a.position = geometry.Pt(a.position.X-dx, a.position.Y-dy)
		}
		mol.invalidateGeometry()
	}
}

// AddWarning appends a warning and notifies observers.
func (m *Molecule) AddWarning(msg string) {
	m.Warnings = append(m.Warnings, msg)
	m.a.notify(WarningRaised, m.Path(), msg)
}

// ─────────────────────────────────────────────────────────────────────────────
// Cache invalidation
// ─────────────────────────────────────────────────────────────────────────────

// invalidateStructure clears everything derived from connectivity.
func (m *Molecule) invalidateStructure() {
	m.rings, m.ringsValid = nil, false
	m.sorted, m.sortedValid = nil, false
	m.clearPlacements()
	m.a.invalidateBBox(m.ID)
}

// invalidateGeometry clears everything derived from positions. Ring topology
// survives.
func (m *Molecule) invalidateGeometry() {
	m.sorted, m.sortedValid = nil, false
	m.clearPlacements()
	m.a.invalidateBBox(m.ID)
}

func (m *Molecule) clearPlacements() {
	for _, b := range m.bonds {
		b.implicit = nil
	}
}

//Personal.AI order the ending

// Package chemistry is the molecular graph model: atoms and bonds organised
// into a tree of molecules, ring perception over each molecule's bonds, and
// the double-bond placement heuristic that rendering relies on.
//
// A Model owns every entity through a flat arena of indexes (molecule by id,
// owner of every atom and bond, parent of every molecule). Entities refer to
// each other by id only; the arena is the single place that knows where
// anything lives, and mutation methods clear the derived caches there.
//
// The model is not safe for concurrent mutation. Use Clone to hand a snapshot
// to another goroutine.
package chemistry

import (
	"strconv"

	"github.com/turtacn/ChemGraph/internal/domain/geometry"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

const (
	// ScaleFactorForDisplay is the ratio between display and native bond
	// lengths applied by RescaleForDisplay / RescaleForNative.
	ScaleFactorForDisplay = 2.0
	// SingleAtomPseudoBondLength stands in for the mean bond length of a
	// model without bonds.
	SingleAtomPseudoBondLength = 40.0
)

// Id prefixes used when the model allocates ids.
const (
	prefixMolecule = "m"
	prefixAtom     = "a"
	prefixBond     = "b"
)

// arena is the shared index of one Model. Every Molecule of the model holds
// the same *arena.
type arena struct {
	molecules map[string]*Molecule
	parent    map[string]string // molecule id -> parent molecule id, "" at top level
	atomOwner map[string]string // atom id -> molecule id
	bondOwner map[string]string // bond id -> molecule id
	issued    map[string]interface{} // id -> entity it was issued to; nil when unknown
	counters  map[string]int

	top []string

	observers []Observer
	muted     int

	// exclusionWarnAbove is the number of placement-excluded rings a
	// molecule may have before a warning is raised.
	exclusionWarnAbove int

	bbox *geometry.Rect
}

func newArena() *arena {
	return &arena{
		molecules: map[string]*Molecule{},
		parent:    map[string]string{},
		atomOwner: map[string]string{},
		bondOwner: map[string]string{},
		issued:    map[string]interface{}{},
		counters:  map[string]int{},

		exclusionWarnAbove: 1,
	}
}

func (a *arena) inUse(id string) bool {
	if _, ok := a.molecules[id]; ok {
		return true
	}
	if _, ok := a.atomOwner[id]; ok {
		return true
	}
	_, ok := a.bondOwner[id]
	return ok
}

// allocate returns a fresh id that has never been issued by this arena.
func (a *arena) allocate(prefix string) string {
	for {
		a.counters[prefix]++
		id := prefix + strconv.Itoa(a.counters[prefix])
		if _, seen := a.issued[id]; !seen && !a.inUse(id) {
			a.issued[id] = nil
			return id
		}
	}
}

// claim registers id for holder, or allocates one when id is empty. An id
// currently in use by any entity of the model is a ValidationError, and so
// is an id issued earlier to a different entity. The entity an id was
// issued to may take it back after removal, which is how
// RebuildFromConnectivity re-adds atoms and bonds.
func (a *arena) claim(id, prefix string, holder interface{}) (string, error) {
	if id == "" {
		id = a.allocate(prefix)
	} else {
		if a.inUse(id) {
			return "", errors.Validation("duplicate id").WithDetail(id)
		}
		if prev, seen := a.issued[id]; seen && prev != holder {
			return "", errors.Validation("id was issued to another entity").WithDetail(id)
		}
	}
	a.issued[id] = holder
	return id, nil
}

// moleculePath builds "/top/child/.../id".
func (a *arena) moleculePath(id string) string {
	var segs []string
	for cur := id; cur != "" && len(segs) <= len(a.molecules); cur = a.parent[cur] {
		segs = append(segs, cur)
	}
	path := ""
	for i := len(segs) - 1; i >= 0; i-- {
		path += "/" + segs[i]
	}
	return path
}

func (a *arena) invalidateBBox(molID string) {
	for cur, n := molID, 0; cur != "" && n <= len(a.molecules); cur, n = a.parent[cur], n+1 {
		if m := a.molecules[cur]; m != nil {
			m.bbox = nil
		}
	}
	a.bbox = nil
}

// Model is the root container of a chemical drawing.
type Model struct {
	arena *arena

	// ScaledForDisplay is true while coordinates are in display units.
	ScaledForDisplay bool
	// DisplayBondLength is the mean bond length after the last
	// RescaleForDisplay; used as MeanBondLength of a bondless display model.
	DisplayBondLength float64
	// GeneralErrors holds problems not scoped to one molecule, e.g. records a
	// multi-record import skipped.
	GeneralErrors []string
}

// NewModel returns an empty model.
func NewModel(opts ...Option) *Model {
	m := &Model{arena: newArena(), DisplayBondLength: SingleAtomPseudoBondLength * ScaleFactorForDisplay}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Molecules returns the top-level molecules in insertion order.
func (m *Model) Molecules() []*Molecule {
	out := make([]*Molecule, 0, len(m.arena.top))
	for _, id := range m.arena.top {
		out = append(out, m.arena.molecules[id])
	}
	return out
}

// Molecule finds a molecule at any depth by id.
func (m *Model) Molecule(id string) (*Molecule, bool) {
	mol, ok := m.arena.molecules[id]
	return mol, ok
}

// AddMolecule creates an empty top-level molecule. An empty id is allocated.
func (m *Model) AddMolecule(id string) (*Molecule, error) {
	mol := newMolecule("", m.arena)
	id, err := m.arena.claim(id, prefixMolecule, mol)
	if err != nil {
		return nil, err
	}
	mol.ID = id
	m.arena.molecules[id] = mol
	m.arena.parent[id] = ""
	m.arena.top = append(m.arena.top, id)
	m.arena.bbox = nil
	m.arena.notify(MoleculeAdded, mol.Path(), "")
	return mol, nil
}

// RemoveMolecule detaches the molecule with the given id (at any depth)
// together with its subtree.
func (m *Model) RemoveMolecule(id string) error {
	mol, ok := m.arena.molecules[id]
	if !ok {
		return errors.Reference("molecule not found").WithDetail(id)
	}
	parentID := m.arena.parent[id]
	if parentID == "" {
		m.arena.top = removeString(m.arena.top, id)
		m.arena.bbox = nil
	} else if p := m.arena.molecules[parentID]; p != nil {
		p.children = removeString(p.children, id)
		m.arena.invalidateBBox(parentID)
	}
	path := mol.Path()
	m.arena.drop(mol)
	m.arena.notify(MoleculeRemoved, path, "")
	return nil
}

// drop removes mol and its descendants from every index.
func (a *arena) drop(mol *Molecule) {
	for _, cid := range mol.children {
		if c := a.molecules[cid]; c != nil {
			a.drop(c)
		}
	}
	for _, aid := range mol.atomOrder {
		delete(a.atomOwner, aid)
	}
	for _, bid := range mol.bondOrder {
		delete(a.bondOwner, bid)
	}
	delete(a.molecules, mol.ID)
	delete(a.parent, mol.ID)
}

// MoveMolecule re-parents the molecule id under newParentID, or to the top
// level when newParentID is empty. Making a molecule its own descendant is a
// ValidationError.
func (m *Model) MoveMolecule(id, newParentID string) error {
	return m.arena.reparent(id, newParentID)
}

func (a *arena) reparent(id, newParentID string) error {
	mol, ok := a.molecules[id]
	if !ok {
		return errors.Reference("molecule not found").WithDetail(id)
	}
	if newParentID != "" {
		if _, ok := a.molecules[newParentID]; !ok {
			return errors.Reference("molecule not found").WithDetail(newParentID)
		}
		for cur := newParentID; cur != ""; cur = a.parent[cur] {
			if cur == id {
				return errors.Validation("containment cycle").
					WithDetailf("%s cannot become a descendant of itself", id)
			}
		}
	}
	oldParent := a.parent[id]
	if oldParent == newParentID {
		return nil
	}
	if oldParent == "" {
		a.top = removeString(a.top, id)
	} else {
		p := a.molecules[oldParent]
		p.children = removeString(p.children, id)
		a.invalidateBBox(oldParent)
	}
	a.parent[id] = newParentID
	if newParentID == "" {
		a.top = append(a.top, id)
	} else {
		np := a.molecules[newParentID]
		np.children = append(np.children, id)
	}
	a.invalidateBBox(id)
	a.notify(MoleculeAdded, mol.Path(), "moved")
	return nil
}

// MoveAtom sets the position of the atom with the given id, wherever it
// lives in the tree.
func (m *Model) MoveAtom(atomID string, p geometry.Point) error {
	owner, ok := m.arena.atomOwner[atomID]
	if !ok {
		return errors.Reference("atom not found").WithDetail(atomID)
	}
	return m.arena.molecules[owner].MoveAtom(atomID, p)
}

// AllMolecules lists every molecule depth-first, parents before children.
func (m *Model) AllMolecules() []*Molecule {
	var out []*Molecule
	for _, mol := range m.Molecules() {
		out = mol.collectMolecules(out)
	}
	return out
}

// AllAtoms lists every atom of the model.
func (m *Model) AllAtoms() []*Atom {
	var out []*Atom
	for _, mol := range m.AllMolecules() {
		out = append(out, mol.Atoms()...)
	}
	return out
}

// AllBonds lists every bond of the model.
func (m *Model) AllBonds() []*Bond {
	var out []*Bond
	for _, mol := range m.AllMolecules() {
		out = append(out, mol.Bonds()...)
	}
	return out
}

// Atom finds an atom anywhere in the model.
func (m *Model) Atom(id string) (*Atom, bool) {
	owner, ok := m.arena.atomOwner[id]
	if !ok {
		return nil, false
	}
	return m.arena.molecules[owner].Atom(id)
}

// Bond finds a bond anywhere in the model.
func (m *Model) Bond(id string) (*Bond, bool) {
	owner, ok := m.arena.bondOwner[id]
	if !ok {
		return nil, false
	}
	return m.arena.molecules[owner].Bond(id)
}

// OwnerOf returns the molecule holding the atom or bond with the given id.
func (m *Model) OwnerOf(id string) (*Molecule, bool) {
	if owner, ok := m.arena.atomOwner[id]; ok {
		return m.arena.molecules[owner], true
	}
	if owner, ok := m.arena.bondOwner[id]; ok {
		return m.arena.molecules[owner], true
	}
	return nil, false
}

// TotalRingCount sums the rings of every molecule.
func (m *Model) TotalRingCount() int {
	n := 0
	for _, mol := range m.AllMolecules() {
		n += len(mol.Rings())
	}
	return n
}

// MeanBondLength averages the length of every bond in the model. Without
// bonds it is DisplayBondLength when scaled for display, 0 otherwise.
func (m *Model) MeanBondLength() float64 {
	bonds := m.AllBonds()
	if len(bonds) == 0 {
		if m.ScaledForDisplay {
			return m.DisplayBondLength
		}
		return 0
	}
	var sum float64
	for _, b := range bonds {
		s, _ := m.Atom(b.start)
		e, _ := m.Atom(b.end)
		sum += geometry.Distance(s.position, e.position)
	}
	return sum / float64(len(bonds))
}

// BoundingBox is the union of the top-level molecules' boxes. Cached until
// the next mutation.
func (m *Model) BoundingBox() geometry.Rect {
	if m.arena.bbox != nil {
		return *m.arena.bbox
	}
	r := geometry.EmptyRect()
	for _, mol := range m.Molecules() {
		r = r.Union(mol.BoundingBox())
	}
	m.arena.bbox = &r
	return r
}

// AddGeneralError records a problem not scoped to a molecule.
func (m *Model) AddGeneralError(msg string) {
	m.GeneralErrors = append(m.GeneralErrors, msg)
}

// AllWarnings collects the warnings of every molecule, prefixed by its path.
func (m *Model) AllWarnings() []string {
	var out []string
	for _, mol := range m.AllMolecules() {
		for _, w := range mol.Warnings {
			out = append(out, mol.Path()+": "+w)
		}
	}
	return out
}

// AllErrors collects the general errors followed by every molecule's
// errors, prefixed by its path.
func (m *Model) AllErrors() []string {
	out := append([]string(nil), m.GeneralErrors...)
	for _, mol := range m.AllMolecules() {
		for _, e := range mol.Errors {
			out = append(out, mol.Path()+": "+e)
		}
	}
	return out
}

func removeString(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}

//Personal.AI order the ending

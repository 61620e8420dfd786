package chemistry

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/turtacn/ChemGraph/pkg/errors"
)

// connectedComponents partitions atomIDs by breadth-first traversal over
// bonds, starting each walk from the first unvisited atom in the given
// order. Members of a component keep that order, so the component holding
// atomIDs[0] comes first. Bonds with an endpoint outside atomIDs are ignored.
func connectedComponents(atomIDs []string, bonds []*Bond) [][]string {
	index := make(map[string]int64, len(atomIDs))
	g := simple.NewUndirectedGraph()
	for i, id := range atomIDs {
		index[id] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for _, b := range bonds {
		u, ok1 := index[b.start]
		v, ok2 := index[b.end]
		if !ok1 || !ok2 || u == v {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(u), simple.Node(v)))
	}

	var out [][]string
	var members []int
	bfs := traverse.BreadthFirst{
		Visit: func(n graph.Node) { members = append(members, int(n.ID())) },
	}
	for i := range atomIDs {
		if bfs.Visited(simple.Node(i)) {
			continue
		}
		members = members[:0]
		bfs.Walk(g, simple.Node(i), nil)
		sort.Ints(members)
		comp := make([]string, len(members))
		for j, k := range members {
			comp[j] = atomIDs[k]
		}
		out = append(out, comp)
	}
	return out
}

// ConnectedComponents returns m's own atoms grouped by connectivity; the
// component holding m's first atom comes first.
func (m *Molecule) ConnectedComponents() [][]string {
	return connectedComponents(m.atomOrder, m.Bonds())
}

func (m *Molecule) components() [][]string { return m.ConnectedComponents() }

// transferTo moves the listed atoms, and the bonds between them, from m into
// dst. Ids stay registered; only ownership changes.
func (m *Molecule) transferTo(dst *Molecule, atomIDs []string) {
	set := make(map[string]bool, len(atomIDs))
	for _, id := range atomIDs {
		set[id] = true
	}
	var moved []*Bond
	for _, bid := range append([]string(nil), m.bondOrder...) {
		b := m.bonds[bid]
		if set[b.start] && set[b.end] {
			moved = append(moved, b)
			m.detachBond(bid)
		}
	}
	for _, aid := range atomIDs {
		a := m.atoms[aid]
		delete(m.atoms, aid)
		delete(m.adjacency, aid)
		m.atomOrder = removeString(m.atomOrder, aid)
		dst.atoms[aid] = a
		dst.atomOrder = append(dst.atomOrder, aid)
		m.a.atomOwner[aid] = dst.ID
	}
	for _, b := range moved {
		b.implicit = nil
		dst.bonds[b.ID] = b
		dst.bondOrder = append(dst.bondOrder, b.ID)
		dst.adjacency[b.start] = append(dst.adjacency[b.start], b.ID)
		dst.adjacency[b.end] = append(dst.adjacency[b.end], b.ID)
		m.a.bondOwner[b.ID] = dst.ID
	}
	m.invalidateStructure()
	dst.invalidateStructure()
}

// RebuildFromConnectivity throws away the molecule tree and rebuilds it
// from the flat pool of every atom and bond: one top-level molecule per
// connected component, in traversal order. Atom and bond ids survive;
// molecule ids, names, formulas and properties do not.
func (m *Model) RebuildFromConnectivity() {
	atoms := m.AllAtoms()
	bonds := m.AllBonds()
	ids := make([]string, len(atoms))
	byID := make(map[string]*Atom, len(atoms))
	for i, a := range atoms {
		ids[i] = a.ID
		byID[a.ID] = a
	}

	m.arena.muted++
	for _, mol := range m.Molecules() {
		_ = m.RemoveMolecule(mol.ID)
	}

	owner := map[string]*Molecule{}
	for _, comp := range connectedComponents(ids, bonds) {
		mol, _ := m.AddMolecule("")
		for _, aid := range comp {
			a := byID[aid]
			_ = mol.AddAtom(a)
			owner[aid] = mol
		}
	}
	for _, b := range bonds {
		if mol := owner[b.start]; mol != nil && owner[b.end] == mol {
			_ = mol.AddBond(b)
		}
	}
	m.arena.muted--
	m.arena.bbox = nil
	m.arena.notify(Rebuilt, "/", "")
}

// Refresh re-validates molecule membership without disturbing intact
// molecules: a molecule whose atoms fell apart keeps the component holding
// its first atom and hands each other component to a new sibling molecule.
// Molecules left with neither atoms nor children are removed. Calling
// Refresh twice is the same as calling it once.
func (m *Model) Refresh() {
	changed := false
	for _, mol := range m.AllMolecules() {
		if len(mol.atoms) == 0 {
			continue
		}
		comps := mol.components()
		if len(comps) < 2 {
			continue
		}
		for _, comp := range comps[1:] {
			mol.transferTo(m.siblingOf(mol), comp)
		}
		changed = true
	}
	all := m.AllMolecules()
	for i := len(all) - 1; i >= 0; i-- {
		mol := all[i]
		if len(mol.atoms) == 0 && len(mol.children) == 0 {
			_ = m.RemoveMolecule(mol.ID)
			changed = true
		}
	}
	if changed {
		m.arena.notify(Rebuilt, "/", "refresh")
	}
}

func (m *Model) siblingOf(mol *Molecule) *Molecule {
	if parentID := m.arena.parent[mol.ID]; parentID != "" {
		sib, _ := m.arena.molecules[parentID].AddChild("")
		return sib
	}
	sib, _ := m.AddMolecule("")
	return sib
}

// SplitMolecule keeps the largest connected component of molecule id (the
// earliest one on a tie) together with its names and formulas, and moves
// every other component into a new sibling. The new siblings are returned
// in traversal order.
func (m *Model) SplitMolecule(id string) ([]*Molecule, error) {
	mol, ok := m.arena.molecules[id]
	if !ok {
		return nil, errors.Reference("molecule not found").WithDetail(id)
	}
	comps := mol.components()
	if len(comps) < 2 {
		return nil, nil
	}
	keep := 0
	for i, c := range comps {
		if len(c) > len(comps[keep]) {
			keep = i
		}
	}
	var out []*Molecule
	for i, comp := range comps {
		if i == keep {
			continue
		}
		sib := m.siblingOf(mol)
		mol.transferTo(sib, comp)
		out = append(out, sib)
	}
	m.arena.notify(Rebuilt, mol.Path(), "split")
	return out, nil
}

//Personal.AI order the ending

package chemistry

import (
	"strconv"
)

// Relabel renumbers the whole tree depth-first: molecules m1, m2 …, atoms
// a1 …, bonds b1 …. With includeNames set, names and formulas get ids of the
// form "<molecule>.n<k>" and "<molecule>.f<k>". Previously issued ids are
// forgotten; Relabel is meant to run right before export.
func (m *Model) Relabel(includeNames bool) {
	a := m.arena
	mols := m.AllMolecules()

	molIDs := make(map[string]string, len(mols))
	atomIDs := map[string]string{}
	bondIDs := map[string]string{}
	var nm, na, nb int
	for _, mol := range mols {
		nm++
		molIDs[mol.ID] = prefixMolecule + strconv.Itoa(nm)
		for _, id := range mol.atomOrder {
			na++
			atomIDs[id] = prefixAtom + strconv.Itoa(na)
		}
		for _, id := range mol.bondOrder {
			nb++
			bondIDs[id] = prefixBond + strconv.Itoa(nb)
		}
	}

	fresh := newArena()
	fresh.observers = a.observers
	fresh.muted = a.muted
	fresh.exclusionWarnAbove = a.exclusionWarnAbove
	fresh.counters[prefixMolecule] = nm
	fresh.counters[prefixAtom] = na
	fresh.counters[prefixBond] = nb
	for _, id := range a.top {
		fresh.top = append(fresh.top, molIDs[id])
	}

	for _, mol := range mols {
		newID := molIDs[mol.ID]
		if p := a.parent[mol.ID]; p != "" {
			fresh.parent[newID] = molIDs[p]
		} else {
			fresh.parent[newID] = ""
		}
		for i, cid := range mol.children {
			mol.children[i] = molIDs[cid]
		}

		atoms := make(map[string]*Atom, len(mol.atoms))
		for i, id := range mol.atomOrder {
			at := mol.atoms[id]
			at.ID = atomIDs[id]
			atoms[at.ID] = at
			mol.atomOrder[i] = at.ID
			fresh.atomOwner[at.ID] = newID
			fresh.issued[at.ID] = at
		}
		bonds := make(map[string]*Bond, len(mol.bonds))
		adjacency := make(map[string][]string, len(atoms))
		for i, id := range mol.bondOrder {
			b := mol.bonds[id]
			b.ID = bondIDs[id]
			b.start, b.end = atomIDs[b.start], atomIDs[b.end]
			bonds[b.ID] = b
			mol.bondOrder[i] = b.ID
			adjacency[b.start] = append(adjacency[b.start], b.ID)
			adjacency[b.end] = append(adjacency[b.end], b.ID)
			fresh.bondOwner[b.ID] = newID
			fresh.issued[b.ID] = b
		}
		mol.atoms, mol.bonds, mol.adjacency = atoms, bonds, adjacency

		mol.ID = newID
		mol.a = fresh
		fresh.molecules[newID] = mol
		fresh.issued[newID] = mol

		if includeNames {
			for i := range mol.Names {
				mol.Names[i].ID = newID + ".n" + strconv.Itoa(i+1)
			}
			for i := range mol.Formulas {
				mol.Formulas[i].ID = newID + ".f" + strconv.Itoa(i+1)
			}
		}
		mol.invalidateStructure()
	}
	m.arena = fresh
	fresh.bbox = nil
	fresh.notify(Rebuilt, "/", "relabel")
}

//Personal.AI order the ending

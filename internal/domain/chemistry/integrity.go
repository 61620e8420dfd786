package chemistry

import (
	"fmt"
)

// CheckIntegrity walks the whole model and reports every violated
// invariant. It never repairs anything; an empty result means consistent.
func (m *Model) CheckIntegrity() []string {
	var problems []string
	a := m.arena

	seen := map[string]string{}
	for _, mol := range m.AllMolecules() {
		problems = append(problems, mol.checkOwn(seen)...)
	}

	for id := range a.molecules {
		steps := 0
		for cur := a.parent[id]; cur != ""; cur = a.parent[cur] {
			if cur == id || steps > len(a.molecules) {
				problems = append(problems, fmt.Sprintf("molecule %s is its own ancestor", id))
				break
			}
			steps++
		}
	}
	reachable := len(m.AllMolecules())
	if reachable != len(a.molecules) {
		problems = append(problems, fmt.Sprintf("%d molecules indexed but %d reachable from the top level", len(a.molecules), reachable))
	}
	for aid, owner := range a.atomOwner {
		if mol := a.molecules[owner]; mol == nil || mol.atoms[aid] == nil {
			problems = append(problems, fmt.Sprintf("atom %s indexed under %s but not present there", aid, owner))
		}
	}
	for bid, owner := range a.bondOwner {
		if mol := a.molecules[owner]; mol == nil || mol.bonds[bid] == nil {
			problems = append(problems, fmt.Sprintf("bond %s indexed under %s but not present there", bid, owner))
		}
	}
	return problems
}

// CheckIntegrity reports the invariant violations in m's subtree.
func (m *Molecule) CheckIntegrity() []string {
	var problems []string
	seen := map[string]string{}
	for _, mol := range m.collectMolecules(nil) {
		problems = append(problems, mol.checkOwn(seen)...)
	}
	return problems
}

// checkOwn verifies m's own atoms and bonds. seen maps every id met so far
// to the path where it was met, to catch model-wide duplicates.
func (m *Molecule) checkOwn(seen map[string]string) []string {
	var problems []string
	path := m.Path()
	note := func(id string) {
		if prev, dup := seen[id]; dup {
			problems = append(problems, fmt.Sprintf("id %s used at %s and %s", id, prev, path))
			return
		}
		seen[id] = path
	}
	note(m.ID)

	if len(m.atomOrder) != len(m.atoms) {
		problems = append(problems, fmt.Sprintf("%s: atom order lists %d atoms, table holds %d", path, len(m.atomOrder), len(m.atoms)))
	}
	for _, id := range m.atomOrder {
		a, ok := m.atoms[id]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: atom %s listed but missing", path, id))
			continue
		}
		if a.ID != id {
			problems = append(problems, fmt.Sprintf("%s: atom keyed %s carries id %s", path, id, a.ID))
		}
		if m.a.atomOwner[id] != m.ID {
			problems = append(problems, fmt.Sprintf("%s: atom %s indexed under %q", path, id, m.a.atomOwner[id]))
		}
		note(id)
	}
	for _, id := range m.bondOrder {
		b, ok := m.bonds[id]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: bond %s listed but missing", path, id))
			continue
		}
		if _, ok := m.atoms[b.start]; !ok {
			problems = append(problems, fmt.Sprintf("%s: bond %s start %s is not in the molecule", path, id, b.start))
		}
		if _, ok := m.atoms[b.end]; !ok {
			problems = append(problems, fmt.Sprintf("%s: bond %s end %s is not in the molecule", path, id, b.end))
		}
		if !containsString(m.adjacency[b.start], id) || !containsString(m.adjacency[b.end], id) {
			problems = append(problems, fmt.Sprintf("%s: bond %s missing from adjacency", path, id))
		}
		if m.a.bondOwner[id] != m.ID {
			problems = append(problems, fmt.Sprintf("%s: bond %s indexed under %q", path, id, m.a.bondOwner[id]))
		}
		note(id)
	}
	for _, cid := range m.children {
		if m.a.parent[cid] != m.ID {
			problems = append(problems, fmt.Sprintf("%s: child %s has parent %q", path, cid, m.a.parent[cid]))
		}
	}
	return problems
}

//Personal.AI order the ending

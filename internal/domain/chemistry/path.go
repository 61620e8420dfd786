package chemistry

import (
	"strings"

	"github.com/turtacn/ChemGraph/pkg/errors"
)

// PathTarget is what a path resolves to. Exactly one field is set.
type PathTarget struct {
	Molecule *Molecule
	Atom     *Atom
	Bond     *Bond
}

// GetFromPath resolves "/m1/m2/a3" style paths. The first segment must be a
// top-level molecule; each following segment is a child molecule, and the
// last may instead be an atom or bond of the molecule reached so far.
// Anything unresolved is a ReferenceError.
func (m *Model) GetFromPath(path string) (PathTarget, error) {
	segs := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return PathTarget{}, errors.Reference("empty path").WithDetail(path)
	}
	mol, ok := m.arena.molecules[segs[0]]
	if !ok || m.arena.parent[segs[0]] != "" {
		return PathTarget{}, errors.Reference("path does not start at a top-level molecule").WithDetail(path)
	}
	for i, seg := range segs[1:] {
		if child, ok := mol.Child(seg); ok {
			mol = child
			continue
		}
		if i != len(segs)-2 {
			return PathTarget{}, errors.Reference("path segment not found").WithDetailf("%s in %s", seg, path)
		}
		if a, ok := mol.Atom(seg); ok {
			return PathTarget{Atom: a}, nil
		}
		if b, ok := mol.Bond(seg); ok {
			return PathTarget{Bond: b}, nil
		}
		return PathTarget{}, errors.Reference("path segment not found").WithDetailf("%s in %s", seg, path)
	}
	return PathTarget{Molecule: mol}, nil
}

// PathOf returns the path of the atom, bond or molecule with the given id.
func (m *Model) PathOf(id string) (string, bool) {
	if _, ok := m.arena.molecules[id]; ok {
		return m.arena.moleculePath(id), true
	}
	if owner, ok := m.OwnerOf(id); ok {
		return owner.Path() + "/" + id, true
	}
	return "", false
}

//Personal.AI order the ending

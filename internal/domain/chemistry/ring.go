package chemistry

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"

	"github.com/turtacn/ChemGraph/internal/domain/geometry"
)

// Ring is a simple cycle of a molecule's bond graph.
type Ring struct {
	atoms   []*Atom
	bondIDs []string
	key     []string // sorted member atom ids

	// Priority is the 1-based rank of the ring in the molecule's ring order:
	// smaller rings first, ties broken by the sorted atom ids. 1 is the
	// highest priority.
	Priority int
}

// Atoms returns the members in walk order around the cycle.
func (r *Ring) Atoms() []*Atom { return append([]*Atom(nil), r.atoms...) }

// AtomIDs returns the member ids in walk order.
func (r *Ring) AtomIDs() []string {
	out := make([]string, len(r.atoms))
	for i, a := range r.atoms {
		out[i] = a.ID
	}
	return out
}

// BondIDs returns the ring bonds in walk order.
func (r *Ring) BondIDs() []string { return append([]string(nil), r.bondIDs...) }

// Size is the number of members.
func (r *Ring) Size() int { return len(r.atoms) }

// Contains reports whether atomID is a member.
func (r *Ring) Contains(atomID string) bool {
	i := sort.SearchStrings(r.key, atomID)
	return i < len(r.key) && r.key[i] == atomID
}

// ContainsBond reports whether bondID is one of the ring bonds.
func (r *Ring) ContainsBond(bondID string) bool {
	for _, id := range r.bondIDs {
		if id == bondID {
			return true
		}
	}
	return false
}

// Polygon returns the member positions in walk order.
func (r *Ring) Polygon() []geometry.Point {
	out := make([]geometry.Point, len(r.atoms))
	for i, a := range r.atoms {
		out[i] = a.position
	}
	return out
}

// Centroid is the mean member position; ok is false for a degenerate
// (collinear or zero area) polygon.
func (r *Ring) Centroid() (geometry.Point, bool) {
	return geometry.Centroid(r.Polygon())
}

// Rings returns the minimum cycle basis of m's own bonds, ordered by
// priority. Cached until the next structural mutation of m.
func (m *Molecule) Rings() []*Ring {
	if !m.ringsValid {
		m.rings = perceiveRings(m)
		m.ringsValid = true
	}
	return m.rings
}

// SortRingsForPlacement returns the rings usable for double-bond placement
// in priority order: every ring except those whose polygon strictly encloses
// an atom of m that is not a ring member. Cached until the next mutation or
// atom move.
func (m *Molecule) SortRingsForPlacement() []*Ring {
	if m.sortedValid {
		return m.sorted
	}
	rings := m.Rings()
	out := make([]*Ring, 0, len(rings))
	excluded := 0
	for _, r := range rings {
		if m.enclosesForeignAtom(r) {
			excluded++
			continue
		}
		out = append(out, r)
	}
	if excluded > m.a.exclusionWarnAbove {
		msg := fmt.Sprintf("%d rings enclose non-member atoms and are ignored for bond placement", excluded)
		if !containsString(m.Warnings, msg) {
			m.AddWarning(msg)
		}
	}
	m.sorted = out
	m.sortedValid = true
	return out
}

// RingsOfBond returns the rings containing bondID, in priority order.
func (m *Molecule) RingsOfBond(bondID string) []*Ring {
	var out []*Ring
	for _, r := range m.Rings() {
		if r.ContainsBond(bondID) {
			out = append(out, r)
		}
	}
	return out
}

// IsCyclic reports whether the bond is part of any ring.
func (m *Molecule) IsCyclic(bondID string) bool { return len(m.RingsOfBond(bondID)) > 0 }

func (m *Molecule) enclosesForeignAtom(r *Ring) bool {
	poly := r.Polygon()
	if _, ok := geometry.Centroid(poly); !ok {
		return false
	}
	for _, a := range m.atoms {
		if r.Contains(a.ID) {
			continue
		}
		if geometry.PolygonContains(poly, a.position) {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Perception
// ─────────────────────────────────────────────────────────────────────────────

type ringCandidate struct {
	walk []int // atom indexes
	mask []uint64
	key  []string
}

// perceiveRings computes a minimum cycle basis by Horton's method: every
// cycle made of two BFS-tree paths from a root plus one closing edge is a
// candidate; candidates are sorted by size and accepted greedily while they
// stay linearly independent over GF(2) (bond incidence vectors).
func perceiveRings(m *Molecule) []*Ring {
	n := len(m.atomOrder)
	if n < 3 || len(m.bondOrder) < 3 {
		return nil
	}
	index := make(map[string]int, n)
	for i, id := range m.atomOrder {
		index[id] = i
	}
	type edge struct{ u, v int }
	edges := make([]edge, len(m.bondOrder))
	edgeOf := make(map[[2]int]int, len(m.bondOrder))
	adj := make([][]int, n)
	for i, bid := range m.bondOrder {
		b := m.bonds[bid]
		u, v := index[b.start], index[b.end]
		edges[i] = edge{u, v}
		edgeOf[pairKey(u, v)] = i
		adj[u] = append(adj[u], v)
		adj[v] = append(adj[v], u)
	}
	for i := range adj {
		sort.Ints(adj[i])
	}

	target := len(edges) - n + len(m.components())
	if target <= 0 {
		return nil
	}

	words := (len(edges) + 63) / 64
	seen := map[string]bool{}
	var cands []*ringCandidate

	pred := make([]int, n)
	dist := make([]int, n)
	queue := make([]int, 0, n)
	for root := 0; root < n; root++ {
		for i := range pred {
			pred[i], dist[i] = -1, -1
		}
		dist[root] = 0
		queue = append(queue[:0], root)
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range adj[u] {
				if dist[v] < 0 {
					dist[v] = dist[u] + 1
					pred[v] = u
					queue = append(queue, v)
				}
			}
		}
		for _, e := range edges {
			x, y := e.u, e.v
			if dist[x] < 0 || dist[y] < 0 || pred[x] == y || pred[y] == x {
				continue
			}
			px := treePath(pred, root, x)
			py := treePath(pred, root, y)
			if !disjointBeyondRoot(px, py) {
				continue
			}
			walk := append(append([]int(nil), px...), reverseInts(py[1:])...)
			mask := make([]uint64, words)
			for i := range walk {
				ei := edgeOf[pairKey(walk[i], walk[(i+1)%len(walk)])]
				mask[ei/64] |= 1 << (uint(ei) % 64)
			}
			mk := maskKey(mask)
			if seen[mk] {
				continue
			}
			seen[mk] = true
			key := make([]string, len(walk))
			for i, ai := range walk {
				key[i] = m.atomOrder[ai]
			}
			sort.Strings(key)
			cands = append(cands, &ringCandidate{walk: normaliseWalk(walk), mask: mask, key: key})
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if len(cands[i].walk) != len(cands[j].walk) {
			return len(cands[i].walk) < len(cands[j].walk)
		}
		return lessStrings(cands[i].key, cands[j].key)
	})

	basis := map[int][]uint64{}
	var rings []*Ring
	for _, c := range cands {
		if len(rings) == target {
			break
		}
		if !reduceInto(basis, c.mask) {
			continue
		}
		r := &Ring{key: c.key, Priority: len(rings) + 1}
		for i, ai := range c.walk {
			r.atoms = append(r.atoms, m.atoms[m.atomOrder[ai]])
			ei := edgeOf[pairKey(ai, c.walk[(i+1)%len(c.walk)])]
			r.bondIDs = append(r.bondIDs, m.bondOrder[ei])
		}
		rings = append(rings, r)
	}
	return rings
}

// reduceInto eliminates v against the basis (rows keyed by their highest set
// bit). A non-zero remainder is independent and is added.
func reduceInto(basis map[int][]uint64, v []uint64) bool {
	w := append([]uint64(nil), v...)
	for {
		p := highestBit(w)
		if p < 0 {
			return false
		}
		row, ok := basis[p]
		if !ok {
			basis[p] = w
			return true
		}
		for i := range w {
			w[i] ^= row[i]
		}
	}
}

func highestBit(w []uint64) int {
	for i := len(w) - 1; i >= 0; i-- {
		if w[i] != 0 {
			return i*64 + 63 - bits.LeadingZeros64(w[i])
		}
	}
	return -1
}

func treePath(pred []int, root, x int) []int {
	var rev []int
	for cur := x; cur != root; cur = pred[cur] {
		rev = append(rev, cur)
	}
	rev = append(rev, root)
	return reverseInts(rev)
}

func disjointBeyondRoot(a, b []int) bool {
	in := make(map[int]struct{}, len(a))
	for _, v := range a[1:] {
		in[v] = struct{}{}
	}
	for _, v := range b[1:] {
		if _, dup := in[v]; dup {
			return false
		}
	}
	return true
}

// normaliseWalk rotates the cycle to start at its smallest index and orients
// it towards the smaller neighbour.
func normaliseWalk(w []int) []int {
	n := len(w)
	start := 0
	for i := range w {
		if w[i] < w[start] {
			start = i
		}
	}
	out := make([]int, n)
	next, prev := w[(start+1)%n], w[(start-1+n)%n]
	for i := 0; i < n; i++ {
		if next <= prev {
			out[i] = w[(start+i)%n]
		} else {
			out[i] = w[(start-i+n)%n]
		}
	}
	return out
}

func reverseInts(s []int) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

func pairKey(u, v int) [2]int {
	if u > v {
		u, v = v, u
	}
	return [2]int{u, v}
}

func maskKey(mask []uint64) string {
	var sb strings.Builder
	for _, w := range mask {
		fmt.Fprintf(&sb, "%016x", w)
	}
	return sb.String()
}

func lessStrings(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

//Personal.AI order the ending

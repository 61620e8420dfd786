package chemistry

// Bond is an edge of the molecular graph. Start and End are fixed at creation;
// the order of the pair matters for wedge / hatch direction and for the sign
// of the placement side.
type Bond struct {
	ID     string
	Order  BondOrder
	Stereo BondStereo

	// ExplicitPlacement, when set, overrides the computed side. Set it through
	// Molecule.SetExplicitPlacement on attached bonds.
	ExplicitPlacement *BondDirection

	start, end string
	implicit   *BondDirection
}

// NewBond builds a detached bond between the atoms with ids start and end.
func NewBond(id, start, end string, order BondOrder) *Bond {
	return &Bond{ID: id, start: start, end: end, Order: order}
}

// Start returns the start atom id.
func (b *Bond) Start() string { return b.start }

// End returns the end atom id.
func (b *Bond) End() string { return b.end }

// Other returns the id of the atom at the other end from atomID, or "" when
// atomID is not an endpoint.
func (b *Bond) Other(atomID string) string {
	switch atomID {
	case b.start:
		return b.end
	case b.end:
		return b.start
	}
	return ""
}

// Touches reports whether atomID is one of the endpoints.
func (b *Bond) Touches(atomID string) bool { return atomID == b.start || atomID == b.end }

func (b *Bond) clone() *Bond {
	c := *b
	if b.ExplicitPlacement != nil {
		d := *b.ExplicitPlacement
		c.ExplicitPlacement = &d
	}
	c.implicit = nil
	return &c
}

//Personal.AI order the ending

package chemistry

// ChangeKind classifies a model notification.
type ChangeKind int

const (
	AtomAdded ChangeKind = iota + 1
	AtomRemoved
	AtomMoved
	AtomUpdated
	BondAdded
	BondRemoved
	BondUpdated
	MoleculeAdded
	MoleculeRemoved
	PlacementChanged
	Rescaled
	Rebuilt
	WarningRaised
)

var changeKindNames = map[ChangeKind]string{
	AtomAdded:        "atom_added",
	AtomRemoved:      "atom_removed",
	AtomMoved:        "atom_moved",
	AtomUpdated:      "atom_updated",
	BondAdded:        "bond_added",
	BondRemoved:      "bond_removed",
	BondUpdated:      "bond_updated",
	MoleculeAdded:    "molecule_added",
	MoleculeRemoved:  "molecule_removed",
	PlacementChanged: "placement_changed",
	Rescaled:         "rescaled",
	Rebuilt:          "rebuilt",
	WarningRaised:    "warning_raised",
}

func (k ChangeKind) String() string {
	if s, ok := changeKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Change describes one mutation. Path addresses the affected entity; it is
// the path at the time of the change (for removals, the last known path).
type Change struct {
	Kind    ChangeKind
	Path    string
	Message string
}

// Observer receives model notifications synchronously, on the goroutine that
// performed the mutation.
type Observer interface {
	ModelChanged(Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Change)

// ModelChanged implements Observer.
func (f ObserverFunc) ModelChanged(c Change) { f(c) }

// Option configures a Model at construction.
type Option func(*Model)

// WithObserver registers o.
func WithObserver(o Observer) Option {
	return func(m *Model) {
		if o != nil {
			m.arena.observers = append(m.arena.observers, o)
		}
	}
}

// WithDisplayBondLength overrides the bond length used when scaling for
// display.
func WithDisplayBondLength(l float64) Option {
	return func(m *Model) {
		if l > 0 {
			m.DisplayBondLength = l
		}
	}
}

// WithRingExclusionWarning sets how many rings of one molecule may be
// excluded from placement before a warning is raised.
func WithRingExclusionWarning(n int) Option {
	return func(m *Model) {
		if n >= 0 {
			m.arena.exclusionWarnAbove = n
		}
	}
}

func (a *arena) notify(kind ChangeKind, path, msg string) {
	if a.muted > 0 {
		return
	}
	for _, o := range a.observers {
		o.ModelChanged(Change{Kind: kind, Path: path, Message: msg})
	}
}

//Personal.AI order the ending

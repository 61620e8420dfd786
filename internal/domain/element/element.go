// Package element models what an atom "is": either a chemical element from
// the periodic table or a named functional group abbreviation (Me, Ph, CO2H …)
// that stands in for several atoms.
//
// The two kinds are carried by one tagged value, Symbol. Call sites switch on
// Symbol.Kind() rather than relying on a shared base type; each kind has its
// own atomic weight rule.
package element

import (
	"sort"
	"strings"
)

// Element is an entry of the periodic table.
type Element struct {
	Number       int
	Symbol       string
	Name         string
	AtomicWeight float64
}

// periodicTable holds the elements the converters recognise, keyed by symbol.
var periodicTable = map[string]*Element{}

func init() {
	for i := range elements {
		e := &elements[i]
		periodicTable[e.Symbol] = e
	}
}

var elements = []Element{
	{1, "H", "Hydrogen", 1.008},
	{2, "He", "Helium", 4.0026},
	{3, "Li", "Lithium", 6.94},
	{4, "Be", "Beryllium", 9.0122},
	{5, "B", "Boron", 10.81},
	{6, "C", "Carbon", 12.011},
	{7, "N", "Nitrogen", 14.007},
	{8, "O", "Oxygen", 15.999},
	{9, "F", "Fluorine", 18.998},
	{10, "Ne", "Neon", 20.180},
	{11, "Na", "Sodium", 22.990},
	{12, "Mg", "Magnesium", 24.305},
	{13, "Al", "Aluminium", 26.982},
	{14, "Si", "Silicon", 28.085},
	{15, "P", "Phosphorus", 30.974},
	{16, "S", "Sulfur", 32.06},
	{17, "Cl", "Chlorine", 35.45},
	{18, "Ar", "Argon", 39.948},
	{19, "K", "Potassium", 39.098},
	{20, "Ca", "Calcium", 40.078},
	{21, "Sc", "Scandium", 44.956},
	{22, "Ti", "Titanium", 47.867},
	{23, "V", "Vanadium", 50.942},
	{24, "Cr", "Chromium", 51.996},
	{25, "Mn", "Manganese", 54.938},
	{26, "Fe", "Iron", 55.845},
	{27, "Co", "Cobalt", 58.933},
	{28, "Ni", "Nickel", 58.693},
	{29, "Cu", "Copper", 63.546},
	{30, "Zn", "Zinc", 65.38},
	{31, "Ga", "Gallium", 69.723},
	{32, "Ge", "Germanium", 72.630},
	{33, "As", "Arsenic", 74.922},
	{34, "Se", "Selenium", 78.971},
	{35, "Br", "Bromine", 79.904},
	{36, "Kr", "Krypton", 83.798},
	{37, "Rb", "Rubidium", 85.468},
	{38, "Sr", "Strontium", 87.62},
	{44, "Ru", "Ruthenium", 101.07},
	{45, "Rh", "Rhodium", 102.91},
	{46, "Pd", "Palladium", 106.42},
	{47, "Ag", "Silver", 107.87},
	{48, "Cd", "Cadmium", 112.41},
	{50, "Sn", "Tin", 118.71},
	{51, "Sb", "Antimony", 121.76},
	{52, "Te", "Tellurium", 127.60},
	{53, "I", "Iodine", 126.90},
	{54, "Xe", "Xenon", 131.29},
	{55, "Cs", "Caesium", 132.91},
	{56, "Ba", "Barium", 137.33},
	{77, "Ir", "Iridium", 192.22},
	{78, "Pt", "Platinum", 195.08},
	{79, "Au", "Gold", 196.97},
	{80, "Hg", "Mercury", 200.59},
	{82, "Pb", "Lead", 207.2},
	{83, "Bi", "Bismuth", 208.98},
}

// LookupElement returns the element with the given symbol.
func LookupElement(symbol string) (*Element, bool) {
	e, ok := periodicTable[symbol]
	return e, ok
}

// ─────────────────────────────────────────────────────────────────────────────
// Symbol: element or functional group
// ─────────────────────────────────────────────────────────────────────────────

// Kind discriminates a Symbol.
type Kind int

const (
	// KindUnknown is the zero Symbol: nothing assigned.
	KindUnknown Kind = iota
	// KindElement is a periodic-table element.
	KindElement
	// KindFunctionalGroup is a named abbreviation standing for several atoms.
	KindFunctionalGroup
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindFunctionalGroup:
		return "functional_group"
	default:
		return "unknown"
	}
}

// Symbol is what an atom carries in place of a bare element. Exactly one of
// the variant payloads is set, as reported by Kind.
type Symbol struct {
	kind    Kind
	element *Element
	group   *FunctionalGroup
}

// FromElement wraps e.
func FromElement(e *Element) Symbol { return Symbol{kind: KindElement, element: e} }

// FromGroup wraps g.
func FromGroup(g *FunctionalGroup) Symbol { return Symbol{kind: KindFunctionalGroup, group: g} }

// MustElement returns the element symbol s and panics if s is not in the
// table. Intended for tests and literals.
func MustElement(s string) Symbol {
	e, ok := LookupElement(s)
	if !ok {
		panic("element: unknown symbol " + s)
	}
	return FromElement(e)
}

// Parse resolves text to an element first, then to a functional group.
func Parse(text string) (Symbol, bool) {
	if e, ok := LookupElement(text); ok {
		return FromElement(e), true
	}
	if g, ok := LookupGroup(text); ok {
		return FromGroup(g), true
	}
	return Symbol{}, false
}

// Kind reports which variant s holds.
func (s Symbol) Kind() Kind { return s.kind }

// Element returns the element payload.
func (s Symbol) Element() (*Element, bool) { return s.element, s.kind == KindElement }

// Group returns the functional group payload.
func (s Symbol) Group() (*FunctionalGroup, bool) { return s.group, s.kind == KindFunctionalGroup }

// String returns the display symbol.
func (s Symbol) String() string {
	switch s.kind {
	case KindElement:
		return s.element.Symbol
	case KindFunctionalGroup:
		return s.group.Symbol
	default:
		return ""
	}
}

// IsHydrogen reports whether s is the element H.
func (s Symbol) IsHydrogen() bool {
	return s.kind == KindElement && s.element.Number == 1
}

// AtomicWeight returns the element weight, or the summed weight of a
// functional group's expansion.
func (s Symbol) AtomicWeight() float64 {
	switch s.kind {
	case KindElement:
		return s.element.AtomicWeight
	case KindFunctionalGroup:
		return s.group.AtomicWeight()
	default:
		return 0
	}
}

// Composition returns element symbol → count for s: {sym: 1} for an element,
// the full expansion for a functional group.
func (s Symbol) Composition() map[string]int {
	switch s.kind {
	case KindElement:
		return map[string]int{s.element.Symbol: 1}
	case KindFunctionalGroup:
		return s.group.Composition()
	default:
		return map[string]int{}
	}
}

// HillFormula renders counts in Hill order (C, H, then alphabetical; purely
// alphabetical when there is no carbon) using the CML concise style
// "C 6 H 6". A non-zero charge is appended as a signed integer.
func HillFormula(counts map[string]int, charge int) string {
	keys := make([]string, 0, len(counts))
	for k, n := range counts {
		if n > 0 {
			keys = append(keys, k)
		}
	}
	_, hasC := counts["C"]
	sort.Slice(keys, func(i, j int) bool {
		if hasC {
			ri, rj := hillRank(keys[i]), hillRank(keys[j])
			if ri != rj {
				return ri < rj
			}
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, 0, 2*len(keys)+1)
	for _, k := range keys {
		parts = append(parts, k, itoa(counts[k]))
	}
	if charge != 0 {
		parts = append(parts, itoa(charge))
	}
	return strings.Join(parts, " ")
}

func hillRank(sym string) int {
	switch sym {
	case "C":
		return 0
	case "H":
		return 1
	default:
		return 2
	}
}

func itoa(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	var b [20]byte
	i := len(b)
	for {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}

//Personal.AI order the ending

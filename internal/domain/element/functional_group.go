package element

// Component is one entry of a functional group expansion. Symbol may name an
// element or another functional group.
type Component struct {
	Symbol string
	Count  int
}

// FunctionalGroup is an abbreviation drawn as a single atom label.
type FunctionalGroup struct {
	Symbol     string
	Name       string
	Components []Component
	// ShowAsSymbol is false for groups whose label is normally expanded when
	// drawn (e.g. CO2H is usually written out).
	ShowAsSymbol bool
}

var groupTable = map[string]*FunctionalGroup{}

func init() {
	for i := range functionalGroups {
		g := &functionalGroups[i]
		groupTable[g.Symbol] = g
	}
}

var functionalGroups = []FunctionalGroup{
	{Symbol: "Me", Name: "methyl", Components: []Component{{"C", 1}, {"H", 3}}, ShowAsSymbol: true},
	{Symbol: "Et", Name: "ethyl", Components: []Component{{"C", 2}, {"H", 5}}, ShowAsSymbol: true},
	{Symbol: "Pr", Name: "propyl", Components: []Component{{"C", 3}, {"H", 7}}, ShowAsSymbol: true},
	{Symbol: "iPr", Name: "isopropyl", Components: []Component{{"C", 3}, {"H", 7}}, ShowAsSymbol: true},
	{Symbol: "tBu", Name: "tert-butyl", Components: []Component{{"C", 4}, {"H", 9}}, ShowAsSymbol: true},
	{Symbol: "Ph", Name: "phenyl", Components: []Component{{"C", 6}, {"H", 5}}, ShowAsSymbol: true},
	{Symbol: "Bn", Name: "benzyl", Components: []Component{{"CH2", 1}, {"Ph", 1}}, ShowAsSymbol: true},
	{Symbol: "CH2", Name: "methylene", Components: []Component{{"C", 1}, {"H", 2}}},
	{Symbol: "OMe", Name: "methoxy", Components: []Component{{"O", 1}, {"Me", 1}}},
	{Symbol: "OEt", Name: "ethoxy", Components: []Component{{"O", 1}, {"Et", 1}}},
	{Symbol: "Ac", Name: "acetyl", Components: []Component{{"C", 2}, {"H", 3}, {"O", 1}}, ShowAsSymbol: true},
	{Symbol: "CO2H", Name: "carboxylic acid", Components: []Component{{"C", 1}, {"O", 2}, {"H", 1}}},
	{Symbol: "CO2Me", Name: "methyl ester", Components: []Component{{"C", 1}, {"O", 2}, {"Me", 1}}},
	{Symbol: "CF3", Name: "trifluoromethyl", Components: []Component{{"C", 1}, {"F", 3}}},
	{Symbol: "CCl3", Name: "trichloromethyl", Components: []Component{{"C", 1}, {"Cl", 3}}},
	{Symbol: "NO2", Name: "nitro", Components: []Component{{"N", 1}, {"O", 2}}},
	{Symbol: "CN", Name: "cyano", Components: []Component{{"C", 1}, {"N", 1}}},
	{Symbol: "NH2", Name: "amino", Components: []Component{{"N", 1}, {"H", 2}}},
	{Symbol: "OH", Name: "hydroxy", Components: []Component{{"O", 1}, {"H", 1}}},
	{Symbol: "SO3H", Name: "sulfo", Components: []Component{{"S", 1}, {"O", 3}, {"H", 1}}},
	{Symbol: "Ts", Name: "tosyl", Components: []Component{{"C", 7}, {"H", 7}, {"S", 1}, {"O", 2}}, ShowAsSymbol: true},
	{Symbol: "Boc", Name: "tert-butoxycarbonyl", Components: []Component{{"C", 1}, {"O", 2}, {"tBu", 1}}, ShowAsSymbol: true},
}

// LookupGroup returns the functional group with the given symbol.
func LookupGroup(symbol string) (*FunctionalGroup, bool) {
	g, ok := groupTable[symbol]
	return g, ok
}

// Groups lists every known functional group in table order.
func Groups() []*FunctionalGroup {
	out := make([]*FunctionalGroup, 0, len(functionalGroups))
	for i := range functionalGroups {
		out = append(out, &functionalGroups[i])
	}
	return out
}

// Composition expands g down to elements.
func (g *FunctionalGroup) Composition() map[string]int {
	out := map[string]int{}
	g.expand(out, 1, 0)
	return out
}

// AtomicWeight is the summed weight of the expansion.
func (g *FunctionalGroup) AtomicWeight() float64 {
	var w float64
	for sym, n := range g.Composition() {
		if e, ok := LookupElement(sym); ok {
			w += e.AtomicWeight * float64(n)
		}
	}
	return w
}

// maxGroupDepth bounds nested expansion; the table has no cycles but user
// supplied tables might.
const maxGroupDepth = 8

func (g *FunctionalGroup) expand(into map[string]int, mult, depth int) {
	if depth > maxGroupDepth {
		return
	}
	for _, c := range g.Components {
		if _, ok := LookupElement(c.Symbol); ok {
			into[c.Symbol] += c.Count * mult
			continue
		}
		if sub, ok := LookupGroup(c.Symbol); ok {
			sub.expand(into, c.Count*mult, depth+1)
		}
	}
}

//Personal.AI order the ending

package molfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

// pairsPerLine is the V2000 limit of entries on one "M  CHG"/"M  ISO" line.
const pairsPerLine = 8

type alias struct {
	index int
	text  string
}

// Export writes m. In SDF mode each top-level molecule, with its whole
// subtree, becomes one record followed by its names, formulas and
// properties as data items. A subtree that would not come back as a single
// connected molecule also gets a fieldMolecules item describing its shape. In molfile mode the model is one connection
// table titled by the first molecule's first name.
func (c *Converter) Export(w io.Writer, m *chemistry.Model) error {
	if m == nil {
		return errors.InvalidParam("molfile: nil model")
	}
	bw := bufio.NewWriter(w)
	mols := m.Molecules()

	if c.mode == ModeSDF {
		for _, mol := range mols {
			c.writeTable(bw, firstName(mol), mol.AllAtoms(), mol.AllBonds())
			writeData(bw, mol)
			if tree := moleculeTree(mol); tree != "" {
				writeItem(bw, fieldMolecules, tree)
			}
			bw.WriteString(recordDelimiter + "\n")
		}
	} else {
		title := ""
		if len(mols) > 0 {
			title = firstName(mols[0])
		}
		c.writeTable(bw, title, m.AllAtoms(), m.AllBonds())
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "molfile: write failed")
	}
	c.logger.Debug("molfile exported", logging.String("mode", c.mode.String()), logging.Int("molecules", len(mols)))
	return nil
}

func firstName(mol *chemistry.Molecule) string {
	if len(mol.Names) == 0 {
		return ""
	}
	return mol.Names[0].Value
}

func (c *Converter) writeTable(w *bufio.Writer, title string, atoms []*chemistry.Atom, bonds []*chemistry.Bond) {
	if i := strings.IndexAny(title, "\r\n"); i >= 0 {
		title = title[:i]
	}
	if len(title) > 80 {
		title = title[:80]
	}
	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintf(w, "  %-8s%s2D\n", programName, c.now().Format("0102061504"))
	w.WriteString("\n")
	fmt.Fprintf(w, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", len(atoms), len(bonds))

	index := make(map[string]int, len(atoms))
	var charges, isotopes [][2]int
	var aliases []alias
	for i, a := range atoms {
		n := i + 1
		index[a.ID] = n

		sym := a.Element.String()
		if g, ok := a.Element.Group(); ok {
			aliases = append(aliases, alias{index: n, text: g.Symbol})
			sym = "R"
		}
		code := 0
		if q := a.Charge(); q != 0 {
			charges = append(charges, [2]int{n, q})
			if q >= -3 && q <= 3 {
				code = 4 - q
			}
		}
		h := 0
		if a.HydrogenCount != nil {
			h = *a.HydrogenCount + 1
		}
		if a.IsotopeNumber != nil {
			isotopes = append(isotopes, [2]int{n, *a.IsotopeNumber})
		}
		p := a.Position()
		fmt.Fprintf(w, "%10.4f%10.4f%10.4f %-3s 0%3d  0%3d  0  0  0  0  0  0  0  0\n", p.X, p.Y, 0.0, sym, code, h)
	}

	for _, b := range bonds {
		fmt.Fprintf(w, "%3d%3d%3d%3d  0  0  0\n", index[b.Start()], index[b.End()], bondTypeCode(b.Order), stereoCode(b))
	}

	for _, al := range aliases {
		fmt.Fprintf(w, "A  %3d\n%s\n", al.index, al.text)
	}
	writePairs(w, "CHG", charges)
	writePairs(w, "ISO", isotopes)
	w.WriteString("M  END\n")
}

func writePairs(w *bufio.Writer, tag string, pairs [][2]int) {
	for len(pairs) > 0 {
		n := len(pairs)
		if n > pairsPerLine {
			n = pairsPerLine
		}
		fmt.Fprintf(w, "M  %s%3d", tag, n)
		for _, p := range pairs[:n] {
			fmt.Fprintf(w, " %3d %3d", p[0], p[1])
		}
		w.WriteString("\n")
		pairs = pairs[n:]
	}
}

func bondTypeCode(o chemistry.BondOrder) int {
	switch o {
	case chemistry.OrderSingle:
		return 1
	case chemistry.OrderDouble:
		return 2
	case chemistry.OrderTriple:
		return 3
	case chemistry.OrderAromatic:
		return 4
	default:
		return 8
	}
}

func stereoCode(b *chemistry.Bond) int {
	switch b.Stereo {
	case chemistry.StereoWedge:
		return 1
	case chemistry.StereoHatch:
		return 6
	case chemistry.StereoIndeterminate:
		if b.Order == chemistry.OrderDouble {
			return 3
		}
		return 4
	default:
		return 0
	}
}

// moleculeTree encodes the subtree under mol for fieldMolecules, or returns
// "" when mol is a single connected molecule with no children.
func moleculeTree(mol *chemistry.Molecule) string {
	all := append([]*chemistry.Molecule{mol}, mol.Descendants()...)
	if len(all) == 1 && len(mol.ConnectedComponents()) <= 1 {
		return ""
	}
	line := make(map[string]int, len(all))
	var b strings.Builder
	for i, m := range all {
		line[m.ID] = i + 1
		parent := 0
		if i > 0 {
			parent = line[m.Parent().ID]
		}
		fmt.Fprintf(&b, "%d %d\n", parent, m.AtomCount())
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func writeData(w *bufio.Writer, mol *chemistry.Molecule) {
	for _, n := range mol.Names {
		writeItem(w, fieldName, n.Value)
	}
	for _, f := range mol.Formulas {
		v := f.Concise
		if v == "" {
			v = f.Inline
		}
		if v != "" {
			writeItem(w, fieldFormula, v)
		}
	}
	for _, p := range mol.Properties {
		writeItem(w, p.Key, p.Value)
	}
}

// writeItem writes one data item. Blank lines inside a value would end the
// item early, so they are dropped.
func writeItem(w *bufio.Writer, field, value string) {
	var lines []string
	for _, l := range strings.Split(value, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	fmt.Fprintf(w, "> <%s>\n", field)
	for _, l := range lines {
		w.WriteString(l + "\n")
	}
	w.WriteString("\n")
}

//Personal.AI order the ending

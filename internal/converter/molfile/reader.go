package molfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	"github.com/turtacn/ChemGraph/internal/domain/element"
	"github.com/turtacn/ChemGraph/internal/domain/geometry"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

type parsedAtom struct {
	raw    string
	alias  string
	sym    element.Symbol
	pos    geometry.Point
	charge *int
	hcount *int
	iso    *int
}

type parsedBond struct {
	u, v   int // 0-based
	order  chemistry.BondOrder
	stereo chemistry.BondStereo
}

type dataItem struct {
	field, value string
}

// record is one connection table, parsed but not yet placed in a model.
// Indices are positions in the record; ids are assigned on materialise.
type record struct {
	title    string
	atoms    []parsedAtom
	bonds    []parsedBond
	data     []dataItem
	warnings []string
}

func (r *record) warn(format string, args ...interface{}) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Import reads every record of the input. Each connected component of a
// record becomes a top-level molecule; the record's names, formulas and
// other data items attach to the largest. A record carrying a
// fieldMolecules item is rebuilt into the molecule tree it describes
// instead. A record that cannot be read (an
// unresolved bond index, a truncated table) is skipped and its FormatError
// recorded in the model's general errors. Import fails only when no record
// could be read at all.
func (c *Converter) Import(r io.Reader) (*chemistry.Model, error) {
	records, err := splitRecords(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeChemFormat, "molfile: read failed")
	}
	if len(records) == 0 {
		return nil, errors.Format("molfile: input holds no records")
	}

	model := chemistry.NewModel(c.modelOpts...)
	var firstErr error
	imported := 0
	for i, lines := range records {
		rec, err := parseRecord(lines)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			model.AddGeneralError(fmt.Sprintf("record %d: %v", i+1, err))
			c.logger.Warn("molfile record skipped", logging.Int("record", i+1), logging.Err(err))
			continue
		}
		c.materialise(model, rec)
		imported++
	}
	if imported == 0 {
		return nil, firstErr
	}
	c.logger.Debug("molfile imported",
		logging.String("mode", c.mode.String()),
		logging.Int("records", imported),
		logging.Int("molecules", len(model.Molecules())))
	return model, nil
}

func splitRecords(r io.Reader) ([][]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var out [][]string
	var cur []string
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == recordDelimiter {
			if !blank(cur) {
				out = append(out, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !blank(cur) {
		out = append(out, cur)
	}
	return out, nil
}

func blank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

// col returns the trimmed fixed-width field [from, to) of line, tolerating
// short lines.
func col(line string, from, to int) string {
	if from >= len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

func parseRecord(lines []string) (*record, error) {
	if len(lines) < 4 {
		return nil, errors.Format("molfile: truncated header")
	}
	rec := &record{title: strings.TrimSpace(lines[0])}

	counts := lines[3]
	if strings.Contains(counts, "V3000") {
		return nil, errors.Format("molfile: V3000 connection tables are not supported")
	}
	na, err1 := strconv.Atoi(col(counts, 0, 3))
	nb, err2 := strconv.Atoi(col(counts, 3, 6))
	if err1 != nil || err2 != nil || na < 0 || nb < 0 {
		return nil, errors.Format("molfile: invalid counts line").WithDetail(counts)
	}
	body := lines[4:]
	if len(body) < na+nb {
		return nil, errors.Format("molfile: connection table truncated").
			WithDetailf("%d atoms and %d bonds declared, %d lines present", na, nb, len(body))
	}

	for i := 0; i < na; i++ {
		rec.atoms = append(rec.atoms, rec.parseAtom(i+1, body[i]))
	}
	for i := 0; i < nb; i++ {
		b, err := rec.parseBond(i+1, body[na+i])
		if err != nil {
			return nil, err
		}
		rec.bonds = append(rec.bonds, b)
	}
	rest := body[na+nb:]
	n := rec.parseProperties(rest)
	rec.parseData(rest[n:])
	rec.resolveSymbols()
	return rec, nil
}

func (r *record) parseAtom(n int, line string) parsedAtom {
	var xs, ys, sym string
	if len(line) >= 34 {
		xs, ys, sym = col(line, 0, 10), col(line, 10, 20), col(line, 31, 34)
	} else if f := strings.Fields(line); len(f) >= 4 {
		r.warn("atom %d is not column aligned", n)
		xs, ys, sym = f[0], f[1], f[3]
	}
	a := parsedAtom{raw: sym, pos: geometry.Pt(r.float(n, "x", xs), r.float(n, "y", ys))}

	if code := col(line, 36, 39); code != "" && code != "0" {
		v, err := strconv.Atoi(code)
		switch {
		case err != nil:
			r.warn("atom %d has invalid charge code %q, ignoring", n, code)
		case v == 4:
			// doublet radical; carries no charge
		case v >= 1 && v <= 7:
			q := 4 - v
			a.charge = &q
		default:
			r.warn("atom %d has invalid charge code %q, ignoring", n, code)
		}
	}
	if h := col(line, 42, 45); h != "" && h != "0" {
		v, err := strconv.Atoi(h)
		if err != nil || v < 0 {
			r.warn("atom %d has invalid hydrogen count %q, ignoring", n, h)
		} else {
			hc := v - 1
			a.hcount = &hc
		}
	}
	return a
}

func (r *record) float(n int, axis, s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.warn("atom %d has invalid %s coordinate %q, using 0", n, axis, s)
		return 0
	}
	return v
}

func (r *record) parseBond(n int, line string) (parsedBond, error) {
	fs := []string{col(line, 0, 3), col(line, 3, 6), col(line, 6, 9), col(line, 9, 12)}
	u, err1 := strconv.Atoi(fs[0])
	v, err2 := strconv.Atoi(fs[1])
	if err1 != nil || err2 != nil {
		if f := strings.Fields(line); len(f) >= 3 {
			u, err1 = strconv.Atoi(f[0])
			v, err2 = strconv.Atoi(f[1])
			fs = append(f[:3:3], "")
			if len(f) >= 4 {
				fs[3] = f[3]
			}
		}
	}
	na := len(r.atoms)
	if err1 != nil || err2 != nil || u < 1 || v < 1 || u > na || v > na {
		return parsedBond{}, errors.Format("molfile: unresolved bond atom index").
			WithDetailf("bond %d %q with %d atoms", n, strings.TrimSpace(line), na)
	}

	b := parsedBond{u: u - 1, v: v - 1, order: chemistry.OrderSingle}
	if code, err := strconv.Atoi(fs[2]); err == nil {
		if o, ok := bondOrder(code); ok {
			b.order = o
		} else {
			r.warn("bond %d has unknown type %d, assuming single", n, code)
		}
	} else {
		r.warn("bond %d has invalid type %q, assuming single", n, fs[2])
	}
	if fs[3] != "" {
		code, err := strconv.Atoi(fs[3])
		st, ok := bondStereo(code)
		if err != nil || !ok {
			r.warn("bond %d has unknown stereo %q, ignoring", n, fs[3])
		}
		b.stereo = st
	}
	return b, nil
}

func bondOrder(code int) (chemistry.BondOrder, bool) {
	switch code {
	case 1:
		return chemistry.OrderSingle, true
	case 2:
		return chemistry.OrderDouble, true
	case 3:
		return chemistry.OrderTriple, true
	case 4:
		return chemistry.OrderAromatic, true
	case 5, 6, 7, 8:
		return chemistry.OrderOther, true
	}
	return chemistry.OrderSingle, false
}

func bondStereo(code int) (chemistry.BondStereo, bool) {
	switch code {
	case 0:
		return chemistry.StereoNone, true
	case 1:
		return chemistry.StereoWedge, true
	case 3, 4:
		return chemistry.StereoIndeterminate, true
	case 6:
		return chemistry.StereoHatch, true
	}
	return chemistry.StereoNone, false
}

// parseProperties reads the property block up to and including "M  END"
// and returns the number of lines consumed.
func (r *record) parseProperties(lines []string) int {
	chargesReset := false
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "M  END"):
			return i + 1
		case strings.HasPrefix(line, "M  CHG"):
			// Any CHG line supersedes every charge of the atom block.
			if !chargesReset {
				for j := range r.atoms {
					r.atoms[j].charge = nil
				}
				chargesReset = true
			}
			r.pairs(line, func(idx, v int) {
				if v == 0 {
					r.atoms[idx].charge = nil
					return
				}
				q := v
				r.atoms[idx].charge = &q
			})
		case strings.HasPrefix(line, "M  ISO"):
			r.pairs(line, func(idx, v int) {
				m := v
				r.atoms[idx].iso = &m
			})
		case strings.HasPrefix(line, "A  "):
			if i+1 >= len(lines) {
				r.warn("alias line %q has no text", line)
				continue
			}
			i++
			idx, err := strconv.Atoi(strings.TrimSpace(line[3:]))
			if err != nil || idx < 1 || idx > len(r.atoms) {
				r.warn("alias for atom %q ignored", strings.TrimSpace(line[3:]))
				continue
			}
			r.atoms[idx-1].alias = strings.TrimSpace(lines[i])
		case strings.HasPrefix(line, ">"):
			return i
		}
	}
	return len(lines)
}

// pairs decodes "M  XXXnn8 aaa vvv ..." entries.
func (r *record) pairs(line string, apply func(idx, v int)) {
	tag := strings.TrimSpace(line[:6])
	f := strings.Fields(line[6:])
	if len(f) == 0 {
		r.warn("%s line is empty", tag)
		return
	}
	n, err := strconv.Atoi(f[0])
	if err != nil || n < 0 || len(f) < 1+2*n {
		r.warn("%s line %q is malformed", tag, line)
		return
	}
	for k := 0; k < n; k++ {
		idx, e1 := strconv.Atoi(f[1+2*k])
		v, e2 := strconv.Atoi(f[2+2*k])
		if e1 != nil || e2 != nil || idx < 1 || idx > len(r.atoms) {
			r.warn("%s entry %d ignored", tag, k+1)
			continue
		}
		apply(idx-1, v)
	}
}

func (r *record) parseData(lines []string) {
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(line, ">") {
			continue
		}
		field := ""
		if s := strings.Index(line, "<"); s >= 0 {
			if e := strings.Index(line[s+1:], ">"); e >= 0 {
				field = line[s+1 : s+1+e]
			}
		}
		var vals []string
		for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			i++
			vals = append(vals, lines[i])
		}
		if field == "" {
			r.warn("data header %q has no field name", line)
			continue
		}
		r.data = append(r.data, dataItem{field: field, value: strings.Join(vals, "\n")})
	}
}

var carbon = element.MustElement("C")

// resolveSymbols turns the symbol column, or the alias text when present,
// into element symbols. Aliases name functional groups first.
func (r *record) resolveSymbols() {
	for i := range r.atoms {
		a := &r.atoms[i]
		if a.alias != "" {
			if g, ok := element.LookupGroup(a.alias); ok {
				a.sym = element.FromGroup(g)
				continue
			}
			if s, ok := element.Parse(a.alias); ok {
				a.sym = s
				continue
			}
			r.warn("atom %d alias %q is not a known group", i+1, a.alias)
		}
		s, ok := element.Parse(a.raw)
		if !ok {
			r.warn("atom %d has unknown symbol %q, assuming C", i+1, a.raw)
			s = carbon
		}
		a.sym = s
	}
}

func (c *Converter) materialise(model *chemistry.Model, rec *record) {
	mol, _ := model.AddMolecule("")
	tree, hasTree := rec.moleculeTree()
	owners := []*chemistry.Molecule{mol}
	if hasTree {
		for _, n := range tree[1:] {
			child, _ := owners[n.parent-1].AddChild("")
			owners = append(owners, child)
		}
	}

	ids := make([]string, len(rec.atoms))
	owner := make([]*chemistry.Molecule, len(rec.atoms))
	line, left := 0, len(rec.atoms)
	if hasTree {
		left = tree[0].atoms
	}
	for i, pa := range rec.atoms {
		for left == 0 && line+1 < len(owners) {
			line++
			left = tree[line].atoms
		}
		a := chemistry.NewAtom("", pa.sym, pa.pos)
		a.FormalCharge, a.HydrogenCount, a.IsotopeNumber = pa.charge, pa.hcount, pa.iso
		_ = owners[line].AddAtom(a)
		ids[i], owner[i] = a.ID, owners[line]
		left--
	}
	for i, pb := range rec.bonds {
		if owner[pb.u] != owner[pb.v] {
			rec.warn("bond %d skipped: atoms %d and %d sit in different molecules", i+1, pb.u+1, pb.v+1)
			continue
		}
		b := chemistry.NewBond("", ids[pb.u], ids[pb.v], pb.order)
		b.Stereo = pb.stereo
		if err := owner[pb.u].AddBond(b); err != nil {
			rec.warn("bond %d skipped: %v", i+1, err)
		}
	}

	for _, d := range rec.data {
		switch strings.ToUpper(d.field) {
		case fieldName, fieldChemicalName:
			mol.Names = append(mol.Names, chemistry.ChemicalName{Value: d.value})
		case fieldFormula:
			f := chemistry.Formula{Inline: d.value}
			if strings.Contains(d.value, " ") {
				f = chemistry.Formula{Concise: d.value}
			}
			mol.Formulas = append(mol.Formulas, f)
		case fieldMolecules:
			// consumed by moleculeTree
		default:
			mol.Properties = append(mol.Properties, chemistry.Property{Key: d.field, Value: d.value})
		}
	}
	if len(mol.Names) == 0 && rec.title != "" {
		mol.Names = append(mol.Names, chemistry.ChemicalName{Value: rec.title})
	}
	for _, w := range rec.warnings {
		mol.AddWarning(w)
		c.logger.Warn("molfile fallback", logging.String("molecule", mol.Path()), logging.String("detail", w))
	}
	if !hasTree {
		_, _ = model.SplitMolecule(mol.ID)
	}
}

type treeNode struct {
	parent int // 1-based line of the parent, 0 for the root
	atoms  int
}

// moleculeTree parses the record's fieldMolecules item. ok is false when
// the item is absent or does not describe the record's atoms, in which case
// a warning is recorded for the malformed case and the record is split by
// connectivity instead.
func (r *record) moleculeTree() ([]treeNode, bool) {
	var raw string
	found := false
	for _, d := range r.data {
		if strings.EqualFold(d.field, fieldMolecules) {
			raw, found = d.value, true
			break
		}
	}
	if !found {
		return nil, false
	}
	var nodes []treeNode
	total := 0
	for i, l := range strings.Split(raw, "\n") {
		f := strings.Fields(l)
		if len(f) != 2 {
			r.warn("%s line %d is malformed, splitting by connectivity", fieldMolecules, i+1)
			return nil, false
		}
		parent, err1 := strconv.Atoi(f[0])
		atoms, err2 := strconv.Atoi(f[1])
		valid := err1 == nil && err2 == nil && atoms >= 0
		if i == 0 {
			valid = valid && parent == 0
		} else {
			valid = valid && parent >= 1 && parent <= i
		}
		if !valid {
			r.warn("%s line %d is malformed, splitting by connectivity", fieldMolecules, i+1)
			return nil, false
		}
		nodes = append(nodes, treeNode{parent: parent, atoms: atoms})
		total += atoms
	}
	if total != len(r.atoms) {
		r.warn("%s covers %d atoms but the record has %d, splitting by connectivity", fieldMolecules, total, len(r.atoms))
		return nil, false
	}
	return nodes, true
}

//Personal.AI order the ending

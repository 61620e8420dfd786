package cml

import (
	"encoding/xml"
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

// Read-side shapes. Tags carry no namespace so that prefixed, default
// namespaced and namespace-less documents all decode.

type xmlDocument struct {
	Molecules []xmlMolecule `xml:"molecule"`
}

type xmlMolecule struct {
	ID         string        `xml:"id,attr"`
	Atoms      []xmlAtom     `xml:"atomArray>atom"`
	Bonds      []xmlBond     `xml:"bondArray>bond"`
	Names      []xmlName     `xml:"name"`
	Formulas   []xmlFormula  `xml:"formula"`
	Properties []xmlProperty `xml:"propertyList>property"`
	Molecules  []xmlMolecule `xml:"molecule"`
}

type xmlAtom struct {
	ID            string  `xml:"id,attr"`
	ElementType   *string `xml:"elementType,attr"`
	X2            *string `xml:"x2,attr"`
	Y2            *string `xml:"y2,attr"`
	X3            *string `xml:"x3,attr"`
	Y3            *string `xml:"y3,attr"`
	FormalCharge  *string `xml:"formalCharge,attr"`
	HydrogenCount *string `xml:"hydrogenCount,attr"`
	IsotopeNumber *string `xml:"isotopeNumber,attr"`
}

type xmlBond struct {
	ID        string     `xml:"id,attr"`
	AtomRefs2 string     `xml:"atomRefs2,attr"`
	Order     *string    `xml:"order,attr"`
	Placement *string    `xml:"placement,attr"`
	Stereo    *xmlStereo `xml:"bondStereo"`
}

type xmlStereo struct {
	Value string `xml:",chardata"`
}

type xmlName struct {
	ID      string `xml:"id,attr"`
	DictRef string `xml:"dictRef,attr"`
	Value   string `xml:",chardata"`
}

type xmlFormula struct {
	ID         string `xml:"id,attr"`
	Convention string `xml:"convention,attr"`
	Inline     string `xml:"inline,attr"`
	Concise    string `xml:"concise,attr"`
}

type xmlProperty struct {
	DictRef string `xml:"dictRef,attr"`
	Title   string `xml:"title,attr"`
	Scalar  string `xml:"scalar"`
}

// Import parses a CML document into a new Model. The root element may be
// cml or a bare molecule. Attribute problems fall back to defaults and are
// recorded as molecule warnings; a bond whose atomRefs2 does not resolve
// within its molecule fails the whole import with a FormatError.
func (c *Converter) Import(r io.Reader) (*chemistry.Model, error) {
	dec := xml.NewDecoder(r)
	var root xml.StartElement
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.Format("cml: document has no root element")
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeChemFormat, "cml: malformed xml")
		}
		if se, ok := tok.(xml.StartElement); ok {
			root = se
			break
		}
	}

	var doc xmlDocument
	switch root.Name.Local {
	case "cml":
		if err := dec.DecodeElement(&doc, &root); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeChemFormat, "cml: malformed xml")
		}
	case "molecule":
		var mol xmlMolecule
		if err := dec.DecodeElement(&mol, &root); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeChemFormat, "cml: malformed xml")
		}
		doc.Molecules = []xmlMolecule{mol}
	default:
		return nil, errors.Format("cml: unexpected root element").WithDetail(root.Name.Local)
	}

	model := chemistry.NewModel(c.modelOpts...)
	imp := &importer{model: model, logger: c.logger}
	for i := range doc.Molecules {
		if err := imp.molecule(&doc.Molecules[i], nil); err != nil {
			c.logger.Warn("cml import failed", logging.Err(err))
			return nil, err
		}
	}
	c.logger.Debug("cml imported",
		logging.Int("molecules", len(model.AllMolecules())),
		logging.Int("atoms", len(model.AllAtoms())),
		logging.Int("bonds", len(model.AllBonds())))
	return model, nil
}

type importer struct {
	model  *chemistry.Model
	logger logging.Logger
}

var carbon = element.MustElement("C")

func (imp *importer) warn(mol *chemistry.Molecule, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	mol.AddWarning(msg)
	imp.logger.Warn("cml fallback", logging.String("molecule", mol.Path()), logging.String("detail", msg))
}

func (imp *importer) newMolecule(id string, parent *chemistry.Molecule) *chemistry.Molecule {
	add := imp.model.AddMolecule
	if parent != nil {
		add = parent.AddChild
	}
	mol, err := add(id)
	if err == nil {
		return mol
	}
	mol, _ = add("")
	imp.warn(mol, "duplicate molecule id %s renamed %s", id, mol.ID)
	return mol
}

func (imp *importer) molecule(x *xmlMolecule, parent *chemistry.Molecule) error {
	mol := imp.newMolecule(x.ID, parent)

	// CML id → model id, scoped to this molecule.
	ids := make(map[string]string, len(x.Atoms))
	for i := range x.Atoms {
		imp.atom(mol, &x.Atoms[i], ids)
	}
	for i := range x.Bonds {
		if err := imp.bond(mol, &x.Bonds[i], ids); err != nil {
			return err
		}
	}

	for _, n := range x.Names {
		mol.Names = append(mol.Names, chemistry.ChemicalName{
			ID: n.ID, DictRef: n.DictRef, Value: strings.TrimSpace(n.Value),
		})
	}
	for _, f := range x.Formulas {
		mol.Formulas = append(mol.Formulas, chemistry.Formula{
			ID: f.ID, Convention: f.Convention, Inline: f.Inline, Concise: f.Concise,
		})
	}
	for _, p := range x.Properties {
		key := p.DictRef
		if key == "" {
			key = p.Title
		}
		mol.Properties = append(mol.Properties, chemistry.Property{Key: key, Value: strings.TrimSpace(p.Scalar)})
	}

	for i := range x.Molecules {
		if err := imp.molecule(&x.Molecules[i], mol); err != nil {
			return err
		}
	}
	return nil
}

func (imp *importer) atom(mol *chemistry.Molecule, x *xmlAtom, ids map[string]string) {
	sym := carbon
	switch {
	case x.ElementType == nil || strings.TrimSpace(*x.ElementType) == "":
		imp.warn(mol, "atom %s has no elementType, assuming C", x.ID)
	default:
		s, ok := element.Parse(strings.TrimSpace(*x.ElementType))
		if !ok {
			imp.warn(mol, "atom %s has unknown elementType %q, assuming C", x.ID, *x.ElementType)
		} else {
			sym = s
		}
	}

	xs, ys := x.X2, x.Y2
	if xs == nil && ys == nil && (x.X3 != nil || x.Y3 != nil) {
		imp.warn(mol, "atom %s has only 3D coordinates, projecting onto xy", x.ID)
		xs, ys = x.X3, x.Y3
	}
	if xs == nil && ys == nil {
		imp.warn(mol, "atom %s has no coordinates, placing at origin", x.ID)
	}
	pos := geometry.Pt(imp.float(mol, x.ID, "x2", xs), imp.float(mol, x.ID, "y2", ys))

	atom := chemistry.NewAtom(x.ID, sym, pos)
	atom.FormalCharge = imp.optInt(mol, x.ID, "formalCharge", x.FormalCharge)
	atom.HydrogenCount = imp.optInt(mol, x.ID, "hydrogenCount", x.HydrogenCount)
	atom.IsotopeNumber = imp.optInt(mol, x.ID, "isotopeNumber", x.IsotopeNumber)

	if err := mol.AddAtom(atom); err != nil {
		atom.ID = ""
		if err := mol.AddAtom(atom); err != nil {
			imp.warn(mol, "atom %s skipped: %v", x.ID, err)
			return
		}
		imp.warn(mol, "duplicate atom id %s renamed %s", x.ID, atom.ID)
	}
	if x.ID == "" {
		return
	}
	if _, seen := ids[x.ID]; !seen {
		ids[x.ID] = atom.ID
	}
}

func (imp *importer) bond(mol *chemistry.Molecule, x *xmlBond, ids map[string]string) error {
	refs := strings.Fields(x.AtomRefs2)
	if len(refs) != 2 {
		return errors.Format("cml: atomRefs2 must name two atoms").
			WithDetailf("bond %q in %s: %q", x.ID, mol.Path(), x.AtomRefs2)
	}
	start, ok1 := ids[refs[0]]
	end, ok2 := ids[refs[1]]
	if !ok1 || !ok2 {
		return errors.Format("cml: unresolved atomRefs2").
			WithDetailf("bond %q in %s: %q", x.ID, mol.Path(), x.AtomRefs2)
	}

	order := chemistry.OrderSingle
	if x.Order != nil {
		o, ok := chemistry.ParseBondOrder(*x.Order)
		if !ok {
			imp.warn(mol, "bond %s has unknown order %q, keeping it as other", x.ID, *x.Order)
		}
		order = o
	}
	b := chemistry.NewBond(x.ID, start, end, order)
	if x.Stereo != nil {
		st, ok := chemistry.ParseBondStereo(x.Stereo.Value)
		if !ok {
			imp.warn(mol, "bond %s has unknown stereo %q, ignoring", x.ID, x.Stereo.Value)
		}
		b.Stereo = st
	}
	if x.Placement != nil {
		if d, ok := chemistry.ParseBondDirection(*x.Placement); ok {
			b.ExplicitPlacement = &d
		} else {
			imp.warn(mol, "bond %s has unknown placement %q, ignoring", x.ID, *x.Placement)
		}
	}

	err := mol.AddBond(b)
	if err == nil {
		return nil
	}
	if b.ID != "" {
		b.ID = ""
		if mol.AddBond(b) == nil {
			imp.warn(mol, "duplicate bond id %s renamed %s", x.ID, b.ID)
			return nil
		}
	}
	imp.warn(mol, "bond %s skipped: %v", x.ID, err)
	return nil
}

func (imp *importer) float(mol *chemistry.Molecule, atomID, attr string, v *string) float64 {
	if v == nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
	if err != nil {
		imp.warn(mol, "atom %s has invalid %s %q, using 0", atomID, attr, *v)
		return 0
	}
	return f
}

func (imp *importer) optInt(mol *chemistry.Molecule, atomID, attr string, v *string) *int {
	if v == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*v))
	if err != nil {
		imp.warn(mol, "atom %s has invalid %s %q, ignoring", atomID, attr, *v)
		return nil
	}
	return &n
}

//Personal.AI order the ending

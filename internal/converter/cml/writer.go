package cml

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

// Write-side shapes. encoding/xml cannot choose prefixes, so the prefixed
// names are spelled out literally and the namespaces declared on the root.

type outDocument struct {
	XMLName     xml.Name      `xml:"cml:cml"`
	XmlnsCML    string        `xml:"xmlns:cml,attr"`
	XmlnsC4W    string        `xml:"xmlns:c4w,attr"`
	Conventions string        `xml:"conventions,attr"`
	Molecules   []outMolecule `xml:"cml:molecule"`
}

type outMolecule struct {
	ID         string           `xml:"id,attr"`
	AtomArray  *outAtomArray    `xml:"cml:atomArray"`
	BondArray  *outBondArray    `xml:"cml:bondArray"`
	Molecules  []outMolecule    `xml:"cml:molecule"`
	Formulas   []outFormula     `xml:"cml:formula"`
	Names      []outName        `xml:"cml:name"`
	Properties *outPropertyList `xml:"cml:propertyList"`
}

type outAtomArray struct {
	Atoms []outAtom `xml:"cml:atom"`
}

type outAtom struct {
	ID            string `xml:"id,attr"`
	ElementType   string `xml:"elementType,attr"`
	X2            string `xml:"x2,attr"`
	Y2            string `xml:"y2,attr"`
	FormalCharge  *int   `xml:"formalCharge,attr,omitempty"`
	HydrogenCount *int   `xml:"hydrogenCount,attr,omitempty"`
	IsotopeNumber *int   `xml:"isotopeNumber,attr,omitempty"`
}

type outBondArray struct {
	Bonds []outBond `xml:"cml:bond"`
}

type outBond struct {
	ID        string     `xml:"id,attr"`
	AtomRefs2 string     `xml:"atomRefs2,attr"`
	Order     string     `xml:"order,attr"`
	Placement string     `xml:"c4w:placement,attr,omitempty"`
	Stereo    *outStereo `xml:"cml:bondStereo"`
}

type outStereo struct {
	Value string `xml:",chardata"`
}

type outFormula struct {
	ID         string `xml:"id,attr,omitempty"`
	Convention string `xml:"convention,attr,omitempty"`
	Inline     string `xml:"inline,attr,omitempty"`
	Concise    string `xml:"concise,attr,omitempty"`
}

type outName struct {
	ID      string `xml:"id,attr,omitempty"`
	DictRef string `xml:"dictRef,attr,omitempty"`
	Value   string `xml:",chardata"`
}

type outPropertyList struct {
	Properties []outProperty `xml:"cml:property"`
}

type outProperty struct {
	DictRef string `xml:"dictRef,attr"`
	Scalar  string `xml:"cml:scalar"`
}

// Export writes m as a CML document. Coordinates are written in the model's
// current scale state; explicit placements go to c4w:placement.
func (c *Converter) Export(w io.Writer, m *chemistry.Model) error {
	if m == nil {
		return errors.InvalidParam("cml: nil model")
	}
	doc := outDocument{
		XmlnsCML:    NamespaceCML,
		XmlnsC4W:    NamespaceC4W,
		Conventions: Conventions,
	}
	for _, mol := range m.Molecules() {
		doc.Molecules = append(doc.Molecules, toOut(mol))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "cml: write failed")
	}
	enc := xml.NewEncoder(w)
	if c.indent {
		enc.Indent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "cml: encode failed")
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "cml: write failed")
	}
	return nil
}

func toOut(mol *chemistry.Molecule) outMolecule {
	out := outMolecule{ID: mol.ID}

	if atoms := mol.Atoms(); len(atoms) > 0 {
		out.AtomArray = &outAtomArray{Atoms: make([]outAtom, 0, len(atoms))}
		for _, a := range atoms {
			p := a.Position()
			out.AtomArray.Atoms = append(out.AtomArray.Atoms, outAtom{
				ID:            a.ID,
				ElementType:   a.Element.String(),
				X2:            formatCoord(p.X),
				Y2:            formatCoord(p.Y),
				FormalCharge:  a.FormalCharge,
				HydrogenCount: a.HydrogenCount,
				IsotopeNumber: a.IsotopeNumber,
			})
		}
	}

	if bonds := mol.Bonds(); len(bonds) > 0 {
		out.BondArray = &outBondArray{Bonds: make([]outBond, 0, len(bonds))}
		for _, b := range bonds {
			ob := outBond{
				ID:        b.ID,
				AtomRefs2: b.Start() + " " + b.End(),
				Order:     b.Order.String(),
			}
			if b.ExplicitPlacement != nil {
				ob.Placement = b.ExplicitPlacement.String()
			}
			if b.Stereo != chemistry.StereoNone {
				ob.Stereo = &outStereo{Value: b.Stereo.String()}
			}
			out.BondArray.Bonds = append(out.BondArray.Bonds, ob)
		}
	}

	for _, child := range mol.Children() {
		out.Molecules = append(out.Molecules, toOut(child))
	}
	for _, f := range mol.Formulas {
		out.Formulas = append(out.Formulas, outFormula(f))
	}
	for _, n := range mol.Names {
		out.Names = append(out.Names, outName(n))
	}
	if len(mol.Properties) > 0 {
		out.Properties = &outPropertyList{}
		for _, p := range mol.Properties {
			out.Properties.Properties = append(out.Properties.Properties, outProperty{DictRef: p.Key, Scalar: p.Value})
		}
	}
	return out
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

//Personal.AI order the ending

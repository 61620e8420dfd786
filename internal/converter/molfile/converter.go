// Package molfile reads and writes MDL V2000 connection tables, either as a
// single molfile or as an SD file of records separated by "$$$$" with data
// items.
package molfile

import (
	"bytes"
	"strings"
	"time"

	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
)

// Mode selects the file flavour.
type Mode int

const (
	// ModeMolfile writes the whole model as one connection table.
	ModeMolfile Mode = iota
	// ModeSDF writes one record per top-level molecule, with data items.
	ModeSDF
)

func (m Mode) String() string {
	if m == ModeSDF {
		return "sdf"
	}
	return "molfile"
}

const (
	recordDelimiter = "$$$$"
	programName     = "ChemGrph"

	// Data item fields mapped onto names and formulas.
	fieldName         = "NAME"
	fieldChemicalName = "CHEMICAL_NAME"
	fieldFormula      = "FORMULA"

	// fieldMolecules carries the molecule tree of a record: one line per
	// molecule in depth-first order, "<parent line> <own atom count>", with
	// parent 0 for the record's root. Atoms are written in the same order.
	fieldMolecules = "CHEMGRAPH_MOLECULES"
)

// Converter imports and exports V2000 molfiles and SD files.
type Converter struct {
	mode      Mode
	logger    logging.Logger
	modelOpts []chemistry.Option
	now       func() time.Time
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger routes skipped records and field fallbacks to l at Warn.
func WithLogger(l logging.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithModelOptions is applied to every Model the converter creates.
func WithModelOptions(opts ...chemistry.Option) Option {
	return func(c *Converter) { c.modelOpts = append(c.modelOpts, opts...) }
}

// WithClock sets the time source for the header timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.now = now
		}
	}
}

// NewConverter builds a Converter for mode.
func NewConverter(mode Mode, opts ...Option) *Converter {
	c := &Converter{mode: mode, logger: logging.NewNopLogger(), now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Mode reports the flavour the converter writes.
func (c *Converter) Mode() Mode { return c.mode }

// ImportString is Import over a string.
func (c *Converter) ImportString(s string) (*chemistry.Model, error) {
	return c.Import(strings.NewReader(s))
}

// ExportString is Export into a string.
func (c *Converter) ExportString(m *chemistry.Model) (string, error) {
	var buf bytes.Buffer
	if err := c.Export(&buf, m); err != nil {
		return "", err
	}
	return buf.String(), nil
}

//Personal.AI order the ending

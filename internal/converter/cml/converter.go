// Package cml reads and writes the Chemical Markup Language dialect used by
// chemistry word-processor add-ins: nested molecule elements with atom and
// bond arrays, names, formulas and the c4w placement extension.
package cml

import (
	"bytes"
	"strings"

	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
)

// XML namespaces.
const (
	NamespaceCML = "http://www.xml-cml.org/schema"
	NamespaceC4W = "http://www.chem4word.com/cml"

	// Conventions is written on the root element.
	Conventions = "cmlDict:cmllite"
)

// Converter imports and exports CML documents. It is stateless apart from
// its options and safe for concurrent use.
type Converter struct {
	logger    logging.Logger
	modelOpts []chemistry.Option
	indent    bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger routes attribute fallbacks and skipped bonds to l at Warn.
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

// WithIndent controls pretty printing on export. On by default.
func WithIndent(on bool) Option {
	return func(c *Converter) { c.indent = on }
}

// NewConverter builds a Converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{logger: logging.NewNopLogger(), indent: true}
	for _, o := range opts {
		o(c)
	}
	return c
}

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

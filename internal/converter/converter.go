// Package converter selects a structure file codec by format name, file
// extension or content.
package converter

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/turtacn/ChemGraph/internal/converter/cml"
	"github.com/turtacn/ChemGraph/internal/converter/molfile"
	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

// Format names a supported file format.
type Format string

const (
	FormatCML     Format = "cml"
	FormatMolfile Format = "molfile"
	FormatSDF     Format = "sdf"
)

// Formats lists every supported format.
func Formats() []Format { return []Format{FormatCML, FormatMolfile, FormatSDF} }

// ParseFormat accepts a format name or a common alias ("mol", "sd", "xml").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cml", "xml":
		return FormatCML, nil
	case "molfile", "mol", "mdl":
		return FormatMolfile, nil
	case "sdf", "sd":
		return FormatSDF, nil
	}
	return "", errors.InvalidParam("unsupported format").WithDetail(s)
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.InvalidParam("cannot infer format without a file extension").WithDetail(path)
	}
	return ParseFormat(ext)
}

// Sniff guesses the format of data: markup is CML, a "$$$$" line or a data
// item header makes it SDF, anything else is a molfile.
func Sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return FormatCML
	}
	if bytes.Contains(data, []byte("\n$$$$")) || bytes.Contains(data, []byte("\n> <")) {
		return FormatSDF
	}
	return FormatMolfile
}

// ContentType is the MIME type stored alongside documents of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCML:
		return "chemical/x-cml"
	case FormatSDF:
		return "chemical/x-mdl-sdfile"
	default:
		return "chemical/x-mdl-molfile"
	}
}

// Extension is the file extension written for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatCML:
		return "cml"
	case FormatSDF:
		return "sdf"
	default:
		return "mol"
	}
}

// Codec reads and writes one format.
type Codec interface {
	Import(r io.Reader) (*chemistry.Model, error)
	Export(w io.Writer, m *chemistry.Model) error
	ImportString(s string) (*chemistry.Model, error)
	ExportString(m *chemistry.Model) (string, error)
}

// Options are shared by every codec the Registry builds.
type Options struct {
	Logger       logging.Logger
	ModelOptions []chemistry.Option
}

// Registry builds codecs with common options.
type Registry struct {
	opts Options
}

// NewRegistry returns a Registry. A nil logger means no logging.
func NewRegistry(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	return &Registry{opts: opts}
}

// Codec returns the codec for f.
func (r *Registry) Codec(f Format) (Codec, error) {
	log := r.opts.Logger.Named(string(f))
	switch f {
	case FormatCML:
		return cml.NewConverter(cml.WithLogger(log), cml.WithModelOptions(r.opts.ModelOptions...)), nil
	case FormatMolfile:
		return molfile.NewConverter(molfile.ModeMolfile, molfile.WithLogger(log), molfile.WithModelOptions(r.opts.ModelOptions...)), nil
	case FormatSDF:
		return molfile.NewConverter(molfile.ModeSDF, molfile.WithLogger(log), molfile.WithModelOptions(r.opts.ModelOptions...)), nil
	}
	return nil, errors.InvalidParam("unsupported format").WithDetail(string(f))
}

// Convert parses data as from and renders it as to.
func (r *Registry) Convert(from, to Format, data []byte) ([]byte, *chemistry.Model, error) {
	in, err := r.Codec(from)
	if err != nil {
		return nil, nil, err
	}
	out, err := r.Codec(to)
	if err != nil {
		return nil, nil, err
	}
	m, err := in.Import(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if err := out.Export(&buf, m); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), m, nil
}

//Personal.AI order the ending

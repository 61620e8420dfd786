package cli

import (
	"bytes"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemGraph/internal/converter"
	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

type convertOptions struct {
	from     string
	to       string
	output   string
	relabel  bool
	bondLen  float64
	position bool
}

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert [FILE]",
		Short: "Convert a structure document between CML, molfile and SDF",
		Long: "Reads FILE (or stdin when FILE is omitted or \"-\") and writes it in the\n" +
			"target format to --out or stdout. Input formats default to the file\n" +
			"extension and are sniffed from the content as a last resort.",
		Example: "  chemgraph convert benzene.mol --to cml\n" +
			"  cat library.sdf | chemgraph convert --from sdf --to cml --out library.xml",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runConvert(cmd, path, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.from, "from", "", "input format: cml, molfile (mol), sdf (sd)")
	f.StringVar(&opts.to, "to", "", "output format; defaults to the --out extension")
	f.StringVar(&opts.output, "out", "", "output file (default stdout)")
	f.BoolVar(&opts.relabel, "relabel", false, "renumber molecules, atoms and bonds before writing")
	f.Float64Var(&opts.bondLen, "bond-length", 0, "scale coordinates to this mean bond length")
	f.BoolVar(&opts.position, "origin", false, "move the structure's bounding box to the origin")
	return cmd
}

func runConvert(cmd *cobra.Command, path string, opts *convertOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	from, err := inputFormat(opts.from, path, data)
	if err != nil {
		return err
	}
	to, err := outputFormat(opts.to, opts.output)
	if err != nil {
		return err
	}

	in, err := cliCtx.Codecs.Codec(from)
	if err != nil {
		return err
	}
	m, err := in.Import(bytes.NewReader(data))
	if err != nil {
		return err
	}
	transform(m, opts)

	out, err := cliCtx.Codecs.Codec(to)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := out.Export(&buf, m); err != nil {
		return err
	}
	for _, w := range m.AllWarnings() {
		cliCtx.Logger.Warn(w, logging.String("source", displayName(path)))
	}
	cliCtx.Logger.Info("converted",
		logging.String("from", string(from)),
		logging.String("to", string(to)),
		logging.Int("molecules", len(m.AllMolecules())))
	return writeOutput(cmd, opts.output, buf.Bytes())
}

func transform(m *chemistry.Model, opts *convertOptions) {
	if opts.bondLen > 0 {
		m.ScaleToAverageBondLength(opts.bondLen)
	}
	if box := m.BoundingBox(); opts.position && !box.IsEmpty() {
		m.RepositionAll(box.Min.X, box.Min.Y)
	}
	if opts.relabel {
		m.Relabel(true)
	}
}

// readInput reads path, or stdin for "" and "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "read input").WithDetail(displayName(path))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.InvalidParam("input is empty").WithDetail(displayName(path))
	}
	return data, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.CodeInvalidParam, "write output").WithDetail(path)
	}
	return nil
}

// inputFormat prefers the flag, then the file extension, then the content.
func inputFormat(flag, path string, data []byte) (converter.Format, error) {
	if flag != "" {
		return converter.ParseFormat(flag)
	}
	if path != "" && path != "-" {
		if f, err := converter.FormatFromPath(path); err == nil {
			return f, nil
		}
	}
	return converter.Sniff(data), nil
}

func outputFormat(flag, path string) (converter.Format, error) {
	if flag != "" {
		return converter.ParseFormat(flag)
	}
	if path != "" && path != "-" {
		return converter.FormatFromPath(path)
	}
	return "", errors.InvalidParam("output format required: pass --to or an --out file with a known extension")
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "<stdin>"
	}
	return path
}

//Personal.AI order the ending

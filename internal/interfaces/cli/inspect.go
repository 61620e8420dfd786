package cli

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemGraph/internal/converter"
	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	"github.com/turtacn/ChemGraph/internal/domain/library"
)

// DocumentReport is the digest of one input file.
type DocumentReport struct {
	File    string           `json:"file"`
	Format  converter.Format `json:"format"`
	Summary library.Summary  `json:"summary"`
}

// InspectResult lists the digests of every inspected file.
type InspectResult []DocumentReport

func (r InspectResult) TableHeaders() []string {
	return []string{"File", "Format", "Molecules", "Atoms", "Bonds", "Rings", "Formula", "Title"}
}

func (r InspectResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, d := range r {
		title := ""
		if len(d.Summary.Names) > 0 {
			title = d.Summary.Names[0]
		}
		rows = append(rows, []string{
			d.File,
			string(d.Format),
			strconv.Itoa(d.Summary.Molecules),
			strconv.Itoa(d.Summary.Atoms),
			strconv.Itoa(d.Summary.Bonds),
			strconv.Itoa(d.Summary.Rings),
			d.Summary.Formula,
			title,
		})
	}
	return rows
}

func (r InspectResult) String() string {
	var sb strings.Builder
	for i, d := range r {
		if i > 0 {
			sb.WriteString("\n")
		}
		s := d.Summary
		sb.WriteString(d.File + " (" + string(d.Format) + ")\n")
		sb.WriteString("  molecules: " + strconv.Itoa(s.Molecules) + "\n")
		sb.WriteString("  atoms:     " + strconv.Itoa(s.Atoms) + "\n")
		sb.WriteString("  bonds:     " + strconv.Itoa(s.Bonds) + "\n")
		sb.WriteString("  rings:     " + strconv.Itoa(s.Rings) + " " + ringSizes(s.RingSizes) + "\n")
		sb.WriteString("  formula:   " + s.Formula + "\n")
		sb.WriteString("  weight:    " + strconv.FormatFloat(s.MolecularWeight, 'f', 3, 64) + "\n")
		if len(s.Names) > 0 {
			sb.WriteString("  names:     " + strings.Join(s.Names, "; ") + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func ringSizes(sizes []int) string {
	if len(sizes) == 0 {
		return ""
	}
	parts := make([]string, len(sizes))
	for i, n := range sizes {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Summarize structure documents: counts, rings, formula and names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			result := make(InspectResult, 0, len(args))
			for _, path := range args {
				f, m, err := loadDocument(cmd, cliCtx, format, path)
				if err != nil {
					return err
				}
				result = append(result, DocumentReport{File: displayName(path), Format: f, Summary: library.Summarize(m)})
			}
			return PrintResult(cmd, result)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "input format for every file (default: per file extension)")
	return cmd
}

// loadDocument reads and parses one input.
func loadDocument(cmd *cobra.Command, cliCtx *CLIContext, format, path string) (converter.Format, *chemistry.Model, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return "", nil, err
	}
	f, err := inputFormat(format, path, data)
	if err != nil {
		return "", nil, err
	}
	codec, err := cliCtx.Codecs.Codec(f)
	if err != nil {
		return "", nil, err
	}
	m, err := codec.Import(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}
	return f, m, nil
}

//Personal.AI order the ending

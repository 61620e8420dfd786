package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/ChemGraph/internal/converter"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

// CheckReport lists what is wrong with one parsed document.
type CheckReport struct {
	File      string           `json:"file"`
	Format    converter.Format `json:"format"`
	Integrity []string         `json:"integrity"`
	Errors    []string         `json:"errors"`
	Warnings  []string         `json:"warnings"`
}

// Failed reports whether the document fails; warnings count only when strict.
func (r CheckReport) Failed(strict bool) bool {
	return len(r.Integrity) > 0 || len(r.Errors) > 0 || (strict && len(r.Warnings) > 0)
}

// NewCheckCmd creates the check command. It exits non-zero when any file
// fails.
func NewCheckCmd() *cobra.Command {
	var (
		format string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Parse documents and report integrity problems, errors and warnings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			reports := make([]CheckReport, 0, len(args))
			failed := 0
			for _, path := range args {
				f, m, err := loadDocument(cmd, cliCtx, format, path)
				if err != nil {
					return err
				}
				r := CheckReport{
					File:      displayName(path),
					Format:    f,
					Integrity: nonNil(m.CheckIntegrity()),
					Errors:    nonNil(m.AllErrors()),
					Warnings:  nonNil(m.AllWarnings()),
				}
				if r.Failed(strict) {
					failed++
				}
				reports = append(reports, r)
			}

			if cliCtx.OutputFormat == "json" {
				if err := printJSON(cmd.OutOrStdout(), reports); err != nil {
					return err
				}
			} else {
				for _, r := range reports {
					writeCheckReport(cmd.OutOrStdout(), r, strict)
				}
			}
			if failed > 0 {
				return errors.Validation(fmt.Sprintf("%d of %d file(s) failed checks", failed, len(reports)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "input format for every file (default: per file extension)")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as failures")
	return cmd
}

func writeCheckReport(w io.Writer, r CheckReport, strict bool) {
	status := color.GreenString("OK")
	if r.Failed(strict) {
		status = color.RedString("FAIL")
	}
	fmt.Fprintf(w, "%-4s %s (%s)\n", status, r.File, r.Format)
	for _, p := range r.Integrity {
		fmt.Fprintf(w, "  %s %s\n", color.RedString("integrity:"), p)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s %s\n", color.RedString("error:"), e)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  %s %s\n", color.YellowString("warning:"), warn)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

//Personal.AI order the ending

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/ChemGraph/pkg/errors"
)

const (
	benzeneCML   = "../../converter/cml/testdata/benzene.xml"
	benzeneMol   = "../../converter/molfile/testdata/benzene.mol"
	testosterone = "../../converter/cml/testdata/testosterone.xml"
)

func init() { color.NoColor = true }

// execute runs root with args and returns stdout.
func execute(t *testing.T, root *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNewRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "chemgraph", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"convert", "inspect", "check", "serve", "migrate", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	pf := cmd.PersistentFlags()

	tests := []struct{ name, shorthand, def string }{
		{"config", "c", ""},
		{"output", "o", "table"},
		{"verbose", "v", "false"},
		{"no-color", "", "false"},
		{"log-level", "", "warn"},
		{"timeout", "", "30s"},
	}
	for _, tt := range tests {
		f := pf.Lookup(tt.name)
		require.NotNil(t, f, tt.name)
		assert.Equal(t, tt.shorthand, f.Shorthand, tt.name)
		assert.Equal(t, tt.def, f.DefValue, tt.name)
	}
}

func TestGetCLIContext_Missing(t *testing.T) {
	cmd := &cobra.Command{}
	_, err := GetCLIContext(cmd)
	assert.Error(t, err)

	cmd.SetContext(context.Background())
	_, err = GetCLIContext(cmd)
	assert.Error(t, err)
}

func TestConvert_FileToStdout(t *testing.T) {
	out, err := execute(t, NewRootCommand(), "", "convert", benzeneMol, "--to", "cml")
	require.NoError(t, err)
	assert.Contains(t, out, "cml:atomArray")
}

func TestConvert_StdinNeedsFormats(t *testing.T) {
	mol, err := os.ReadFile(benzeneMol)
	require.NoError(t, err)

	out, err := execute(t, NewRootCommand(), string(mol), "convert", "--to", "sdf")
	require.NoError(t, err)
	assert.Contains(t, out, "V2000")
	assert.Contains(t, out, "$$$$")

	_, err = execute(t, NewRootCommand(), string(mol), "convert")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))
}

func TestConvert_OutFileSetsFormat(t *testing.T) {
	target := filepath.Join(t.TempDir(), "benzene.cml")
	_, err := execute(t, NewRootCommand(), "", "convert", benzeneMol, "--out", target, "--relabel", "--origin")
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cml:atomArray")
	assert.Contains(t, string(data), `id="a1"`)
}

func TestConvert_EmptyInput(t *testing.T) {
	_, err := execute(t, NewRootCommand(), "  \n", "convert", "--from", "cml", "--to", "sdf")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))
}

func TestConvert_UnknownFormat(t *testing.T) {
	_, err := execute(t, NewRootCommand(), "", "convert", benzeneMol, "--to", "pdb")
	assert.Error(t, err)
}

func TestInspect_JSON(t *testing.T) {
	out, err := execute(t, NewRootCommand(), "", "-o", "json", "inspect", testosterone, benzeneCML)
	require.NoError(t, err)

	var got []DocumentReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, testosterone, got[0].File)
	assert.Equal(t, 4, got[0].Summary.Rings)
	assert.Equal(t, 25, got[0].Summary.Atoms)
	assert.Equal(t, "benzene", got[1].Summary.Names[0])
}

func TestInspect_TableAndText(t *testing.T) {
	out, err := execute(t, NewRootCommand(), "", "inspect", benzeneCML)
	require.NoError(t, err)
	assert.Contains(t, strings.ToUpper(out), "FORMULA")
	assert.Contains(t, out, "benzene")

	out, err = execute(t, NewRootCommand(), "", "-o", "text", "inspect", benzeneCML)
	require.NoError(t, err)
	assert.Contains(t, out, "rings:     1 [6]")
}

func TestInspect_RequiresFiles(t *testing.T) {
	_, err := execute(t, NewRootCommand(), "", "inspect")
	assert.Error(t, err)
}

func TestCheck_CleanDocument(t *testing.T) {
	out, err := execute(t, NewRootCommand(), "", "check", benzeneCML)
	require.NoError(t, err)
	assert.Contains(t, out, "OK")

	out, err = execute(t, NewRootCommand(), "", "-o", "json", "check", benzeneCML)
	require.NoError(t, err)
	var got []CheckReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Integrity)
	assert.NotNil(t, got[0].Warnings)
}

func TestCheckReport_Failed(t *testing.T) {
	assert.False(t, CheckReport{}.Failed(true))
	assert.True(t, CheckReport{Errors: []string{"x"}}.Failed(false))
	assert.True(t, CheckReport{Integrity: []string{"x"}}.Failed(false))

	warned := CheckReport{Warnings: []string{"ring excluded"}}
	assert.False(t, warned.Failed(false))
	assert.True(t, warned.Failed(true))

	var buf bytes.Buffer
	writeCheckReport(&buf, warned, true)
	assert.Contains(t, buf.String(), "FAIL")
	assert.Contains(t, buf.String(), "warning: ring excluded")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, NewRootCommand(), "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "chemgraph "+Version)

	out, err = execute(t, NewRootCommand(), "", "-o", "json", "version")
	require.NoError(t, err)
	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info.Version)
}

func TestServe_PassesConfig(t *testing.T) {
	var (
		gotPort int
		called  bool
	)
	run := func(ctx context.Context, cfg *config.Config, log logging.Logger, version string) error {
		called = true
		gotPort = cfg.Server.Port
		assert.NotNil(t, log)
		assert.Equal(t, Version, version)
		return nil
	}
	_, err := execute(t, newRootCommand(run), "", "serve", "--port", "9099")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 9099, gotPort)
}

func TestPrintResult_WithoutContextIsJSON(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	require.NoError(t, PrintResult(cmd, map[string]int{"atoms": 6}))
	assert.JSONEq(t, `{"atoms":6}`, buf.String())
}

//Personal.AI order the ending

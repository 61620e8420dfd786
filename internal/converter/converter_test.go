package converter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

func fixture(t *testing.T, rel string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(rel))
	require.NoError(t, err)
	return data
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"cml": FormatCML, "XML": FormatCML,
		"mol": FormatMolfile, "molfile": FormatMolfile, " mdl ": FormatMolfile,
		"sdf": FormatSDF, "sd": FormatSDF,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("smiles")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(err))
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("/tmp/benzene.SDF")
	require.NoError(t, err)
	assert.Equal(t, FormatSDF, f)

	f, err = FormatFromPath("nested.cml")
	require.NoError(t, err)
	assert.Equal(t, FormatCML, f)

	_, err = FormatFromPath("README")
	assert.Error(t, err)
}

func TestSniff(t *testing.T) {
	assert.Equal(t, FormatCML, Sniff([]byte("\ufeff  <?xml version=\"1.0\"?><cml/>")))
	assert.Equal(t, FormatSDF, Sniff(fixture(t, "molfile/testdata/benzene.sdf")))
	assert.Equal(t, FormatMolfile, Sniff(fixture(t, "molfile/testdata/benzene.mol")))
}

func TestFormat_Metadata(t *testing.T) {
	assert.Equal(t, "chemical/x-cml", FormatCML.ContentType())
	assert.Equal(t, "chemical/x-mdl-molfile", FormatMolfile.ContentType())
	assert.Equal(t, "chemical/x-mdl-sdfile", FormatSDF.ContentType())
	assert.Equal(t, []string{"cml", "mol", "sdf"}, []string{FormatCML.Extension(), FormatMolfile.Extension(), FormatSDF.Extension()})
	assert.Len(t, Formats(), 3)
}

func TestRegistry_CodecRejectsUnknown(t *testing.T) {
	_, err := NewRegistry(Options{}).Codec(Format("pdb"))
	assert.Error(t, err)
}

func TestRegistry_ConvertCMLToSDF(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	var seen []chemistry.ChangeKind
	r := NewRegistry(Options{
		Logger: logging.NewLoggerFromCore(core),
		ModelOptions: []chemistry.Option{chemistry.WithObserver(chemistry.ObserverFunc(func(c chemistry.Change) {
			seen = append(seen, c.Kind)
		}))},
	})

	out, m, err := r.Convert(FormatCML, FormatSDF, fixture(t, "cml/testdata/benzene.xml"))
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalRingCount())
	assert.True(t, strings.HasSuffix(string(out), "$$$$\n"))
	assert.Contains(t, string(out), "> <NAME>\nbenzene\n")
	assert.NotEmpty(t, seen)
	fromCodecs := logs.Filter(func(e observer.LoggedEntry) bool {
		return strings.HasSuffix(e.LoggerName, "cml") || strings.HasSuffix(e.LoggerName, "sdf")
	})
	assert.NotZero(t, fromCodecs.Len())

	back, m2, err := r.Convert(FormatSDF, FormatCML, out)
	require.NoError(t, err)
	assert.Equal(t, len(m.AllAtoms()), len(m2.AllAtoms()))
	assert.Contains(t, string(back), "<cml:cml")
}

func TestRegistry_ConvertPropagatesImportError(t *testing.T) {
	_, _, err := NewRegistry(Options{}).Convert(FormatCML, FormatSDF, []byte("<cml><molecule"))
	require.Error(t, err)
	assert.True(t, errors.IsFormat(err))

	_, _, err = NewRegistry(Options{}).Convert(FormatCML, Format("png"), nil)
	assert.Error(t, err)
}

//Personal.AI order the ending

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Fixture names the converter test documents by file name.
const (
	BenzeneCML      = "cml/testdata/benzene.xml"
	TestosteroneCML = "cml/testdata/testosterone.xml"
	NestedCML       = "cml/testdata/nested.xml"
	BenzeneMolfile  = "molfile/testdata/benzene.mol"
	BenzeneSDF      = "molfile/testdata/benzene.sdf"
	ParafuchsinSDF  = "molfile/testdata/parafuchsin.sdf"
)

// FixturePath resolves a path relative to internal/converter, independent of
// the calling test's working directory.
func FixturePath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "converter", filepath.FromSlash(name))
}

// Fixture reads a converter test document or fails the test.
func Fixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(FixturePath(name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

//Personal.AI order the ending

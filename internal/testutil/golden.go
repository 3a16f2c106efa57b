package testutil

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

var update = flag.Bool("update", false, "rewrite golden files under testdata/")

// Golden compares got with testdata/<name>.golden.
// Run the tests with -update to rewrite the file instead.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")
	if *update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("create testdata dir: %v", err)
		}
		if err := os.WriteFile(path, got, 0644); err != nil {
			t.Fatalf("update golden file: %v", err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden file %s: %v\ngot:\n%s", path, err, got)
	}
	if bytes.Equal(got, want) {
		return
	}

	line, w, g := firstDiff(want, got)
	t.Errorf("%s differs at line %d\nexpected %q\n     got %q\nfull output:\n%s", path, line, w, g, got)
}

// GoldenString is like Golden but takes a string.
func GoldenString(t *testing.T, name, got string) {
	t.Helper()
	Golden(t, name, []byte(got))
}

// firstDiff returns the 1-based number of the first differing line.
func firstDiff(want, got []byte) (int, string, string) {
	wl := bytes.Split(want, []byte("\n"))
	gl := bytes.Split(got, []byte("\n"))
	for i := 0; i < max(len(wl), len(gl)); i++ {
		var w, g string
		if i < len(wl) {
			w = string(wl[i])
		}
		if i < len(gl) {
			g = string(gl[i])
		}
		if w != g || i >= len(wl) || i >= len(gl) {
			return i + 1, w, g
		}
	}
	return len(wl), "", ""
}

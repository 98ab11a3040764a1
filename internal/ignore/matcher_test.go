package ignore

import (
	"os"
	"testing"
)

func TestMatchBasic(t *testing.T) {
	m := New()
	m.AddPattern("*.log")
	m.AddPattern("build/")
	m.AddPattern("!keep.log")

	cases := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"debug.log", false, true},
		{"keep.log", false, false},
		{"build", true, true},
		{"build/output.txt", false, true},
		{"src/main.go", false, false},
	}
	for _, c := range cases {
		if got := m.Match(c.path, c.isDir); got != c.want {
			t.Errorf("Match(%q, %v) = %v, want %v", c.path, c.isDir, got, c.want)
		}
	}
}

func TestMatchAnchored(t *testing.T) {
	m := New()
	m.AddPattern("/config.yaml")

	if !m.Match("config.yaml", false) {
		t.Error("expected top-level config.yaml to be ignored")
	}
	if m.Match("nested/config.yaml", false) {
		t.Error("anchored pattern must not match nested files")
	}
}

func TestMatchDoubleStar(t *testing.T) {
	m := New()
	m.AddPattern("**/node_modules")

	if !m.Match("node_modules", true) {
		t.Error("expected top-level node_modules to match **/node_modules")
	}
	if !m.Match("pkg/a/node_modules", true) {
		t.Error("expected nested node_modules to match **/node_modules")
	}
}

func TestAddFromFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/.gitignore"
	if err := os.WriteFile(path, []byte("*.tmp\n# comment\n\nbin/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := New()
	if err := m.AddFromFile(path, ""); err != nil {
		t.Fatal(err)
	}
	if !m.Match("scratch.tmp", false) {
		t.Error("expected *.tmp to be ignored")
	}
	if !m.Match("bin", true) {
		t.Error("expected bin/ directory to be ignored")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSearchPaths_IncludesWorkingDirCandidates(t *testing.T) {
	paths := SearchPaths("x.toml")
	var hasPlain, hasNested bool
	for _, p := range paths {
		switch p {
		case "x.toml":
			hasPlain = true
		case filepath.Join("config", "x.toml"):
			hasNested = true
		}
	}
	if !hasPlain || !hasNested {
		t.Errorf("SearchPaths = %v, want working-dir candidates", paths)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if got := Discover("missing.toml"); got != "" {
		t.Errorf("Discover(missing) = %q, want empty", got)
	}

	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "lab.toml"), []byte("environment = \"dev\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Discover("lab.toml"); got != filepath.Join("config", "lab.toml") {
		t.Errorf("Discover = %q, want config/lab.toml", got)
	}
}

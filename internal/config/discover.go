package config

import (
	"os"
	"path/filepath"
)

// DefaultFileName is the configuration file looked up when no -config flag is given.
const DefaultFileName = "vire-backtest.toml"

// SearchPaths lists the candidate locations for name: next to the binary
// first, then relative to the working directory. Duplicates are dropped.
func SearchPaths(name string) []string {
	var paths []string
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		paths = append(paths, filepath.Join(dir, name), filepath.Join(dir, "config", name))
	}
	paths = append(paths, name, filepath.Join("config", name))

	seen := make(map[string]struct{}, len(paths))
	out := paths[:0]
	for _, p := range paths {
		key := p
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Discover returns the first existing file from SearchPaths, or "" when none exists.
func Discover(name string) string {
	for _, p := range SearchPaths(name) {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

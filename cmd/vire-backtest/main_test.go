package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	opts, err := parseFlags(fs, []string{"-c", "a.toml", "-config", "b.toml", "-port", "8080", "-p", "9090", "-engine", "http://engine:8501"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if got := opts.configs.String(); got != "a.toml,b.toml" {
		t.Errorf("configs = %q, want a.toml,b.toml", got)
	}
	if opts.port != 9090 {
		t.Errorf("port = %d, want shorthand 9090 to win", opts.port)
	}
	if opts.engine != "http://engine:8501" {
		t.Errorf("engine = %q", opts.engine)
	}
	if opts.envFile != ".env" {
		t.Errorf("envFile default = %q, want .env", opts.envFile)
	}
}

func TestParseFlags_Unknown(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(&strings.Builder{})
	if _, err := parseFlags(fs, []string{"-nope"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestLoadConfig_FileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "lab.toml")
	if err := os.WriteFile(path, []byte("[server]\nport = 7000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(options{configs: fileList{path}, host: "0.0.0.0", envFile: filepath.Join(dir, "missing.env")})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("port = %d, want 7000 from file", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want flag override", cfg.Server.Host)
	}
}

func TestLoadConfig_ReportsIssues(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := loadConfig(options{engine: "ftp://engine", envFile: "missing.env"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "engine.url") || !strings.Contains(msg, "VIRE_*") {
		t.Errorf("error = %q, want engine.url issue and hint", msg)
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"lumen/internal/config"
)

func TestRunOptionsFromEnvironment(t *testing.T) {
	t.Setenv(envLogLevel, " debug ")
	t.Setenv(envSkipProviderCheck, "yes")

	opts := runOptions()
	if opts.LogLevel != "debug" {
		t.Fatalf("expected debug log level, got %q", opts.LogLevel)
	}
	if !opts.SkipProviderCheck {
		t.Fatal("expected provider check to be skipped")
	}
}

func TestRunOptionsDefaults(t *testing.T) {
	t.Setenv(envLogLevel, "")
	t.Setenv(envSkipProviderCheck, "")

	opts := runOptions()
	if opts.LogLevel != "" || opts.SkipProviderCheck {
		t.Fatalf("unexpected defaults %+v", opts)
	}
}

func TestLoadConfigHonoursPathOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lumen.toml")
	body := "[paths]\ndata_dir = \"" + filepath.Join(dir, "data") + "\"\n\n[api]\nbind = \"127.0.0.1:7999\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(envConfigPath, path)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.API.Bind != "127.0.0.1:7999" {
		t.Fatalf("expected bind from file, got %q", cfg.API.Bind)
	}
	if cfg.Paths.DataDir != filepath.Join(dir, "data") {
		t.Fatalf("unexpected data dir %q", cfg.Paths.DataDir)
	}
	if cfg.Lineage.Backend != config.LineageBackendSQLite {
		t.Fatalf("expected default sqlite lineage, got %q", cfg.Lineage.Backend)
	}
}

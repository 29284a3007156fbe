package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lumen/internal/app"
	"lumen/internal/config"
	"lumen/internal/guidance"
	"lumen/internal/testsupport"
	"lumen/internal/textgen"
)

func TestBuildWithoutProvidersReportsUnavailable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	a, err := app.Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()

	if len(a.Providers) != 0 || a.Generator != nil {
		t.Fatalf("expected no providers, got %d", len(a.Providers))
	}
	_, err = a.Guidance.GuidanceFromHistory(context.Background(), nil, nil, guidance.Options{})
	if !errors.Is(err, textgen.ErrGenerationUnavailable) {
		t.Fatalf("expected generation unavailable, got %v", err)
	}
}

func TestBuildChainsConfiguredProviders(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPrimaryKey("or-key"))
	cfg.LLM.Fallback.APIKey = "gemini-key"

	a, err := app.Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()

	if len(a.Providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(a.Providers))
	}
	if got := a.Generator.Name(); got != "openrouter>gemini" {
		t.Fatalf("generator name %q", got)
	}
}

func TestBuildOpensPersistentStores(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSQLiteLineage(), testsupport.WithFileCache())
	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	a, err := app.Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()

	if _, err := os.Stat(cfg.Lineage.DBPath); err != nil {
		t.Fatalf("expected lineage database at %s: %v", cfg.Lineage.DBPath, err)
	}
	if _, ok, err := a.Cache.Peek(context.Background()); ok || err != nil {
		t.Fatalf("expected empty file cache, got ok=%v err=%v", ok, err)
	}
}

func TestLoadCatalogFallsBackToDefault(t *testing.T) {
	cat, err := app.LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if _, ok := cat.Get("shadow-journal"); !ok {
		t.Fatal("default catalog should contain shadow-journal")
	}
	if _, err := app.LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing catalog file")
	}
}

func TestNewProviderRejectsUnknown(t *testing.T) {
	_, err := app.NewProvider(context.Background(), config.Provider{Provider: "mystery", APIKey: "k"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestOpenCacheHonoursTTL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Guidance.TTLHours = 2
	cache, err := app.OpenCache(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()
	if cache.TTL() != cfg.Guidance.TTL() {
		t.Fatalf("ttl %v, want %v", cache.TTL(), cfg.Guidance.TTL())
	}
}

package testsupport

import (
	"path/filepath"
	"testing"

	"lumen/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Providers are keyless and every store is in memory unless an option says
// otherwise.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SessionsDir = filepath.Join(base, "sessions")
	cfgVal.Paths.CatalogPath = ""
	cfgVal.API.Bind = "127.0.0.1:0"
	cfgVal.LLM.Primary.APIKey = ""
	cfgVal.LLM.Fallback.APIKey = ""
	cfgVal.Guidance.CacheBackend = config.CacheBackendMemory
	cfgVal.Guidance.CachePath = filepath.Join(base, "data", "guidance.json")
	cfgVal.Lineage.Backend = config.LineageBackendMemory
	cfgVal.Lineage.DBPath = filepath.Join(base, "data", "lineage.db")
	cfgVal.Telemetry.OTLPEndpoint = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPrimaryKey enables the primary provider with key.
func WithPrimaryKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.Primary.APIKey = key
	}
}

// WithPrimaryBaseURL points the primary provider at url.
func WithPrimaryBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.Primary.BaseURL = url
	}
}

// WithSQLiteLineage switches lineage to a SQLite database under the temp dir.
func WithSQLiteLineage() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lineage.Backend = config.LineageBackendSQLite
	}
}

// WithFileCache switches the guidance cache to the JSON file backend.
func WithFileCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Guidance.CacheBackend = config.CacheBackendFile
	}
}

// WithAPIToken requires bearer authentication on the API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.Token = token
	}
}

// BaseDir returns the temp root backing a config built by NewConfig.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

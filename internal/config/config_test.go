package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"lumen/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndReadsEnvKeys(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("LUMEN_API_TOKEN", "secret")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "lumen")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Lineage.DBPath != filepath.Join(wantData, "lineage.db") {
		t.Fatalf("unexpected lineage db path: %q", cfg.Lineage.DBPath)
	}
	if cfg.Guidance.CachePath != filepath.Join(wantData, "guidance_cache.json") {
		t.Fatalf("unexpected cache path: %q", cfg.Guidance.CachePath)
	}
	if cfg.API.Bind != "127.0.0.1:7610" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if cfg.API.Token != "secret" {
		t.Fatalf("expected token from env, got %q", cfg.API.Token)
	}
	if cfg.LLM.Primary.APIKey != "or-key" || !cfg.LLM.Primary.Enabled() {
		t.Fatalf("expected primary key from env, got %+v", cfg.LLM.Primary)
	}
	if cfg.LLM.Fallback.APIKey != "gm-key" || cfg.LLM.Fallback.Provider != config.ProviderGemini {
		t.Fatalf("expected gemini fallback with env key, got %+v", cfg.LLM.Fallback)
	}
	if cfg.Guidance.TTL() != 24*time.Hour {
		t.Fatalf("unexpected ttl: %s", cfg.Guidance.TTL())
	}
	if cfg.Scoring.UseConsistency {
		t.Fatal("expected consistency scoring disabled by default")
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
data_dir = "~/lumen-data"
sessions_dir = "~/sessions"

[llm.primary]
provider = "openai"
api_key = "  abc  "
base_url = "https://example.test/v1/chat/completions"
model = "gpt-test"

[llm.fallback]
provider = ""

[guidance]
ttl_hours = 2
cache_backend = "MEMORY"

[lineage]
backend = "memory"

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected to load %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.SessionsDir != filepath.Join(tempHome, "sessions") {
		t.Fatalf("unexpected sessions dir: %q", cfg.Paths.SessionsDir)
	}
	if cfg.LLM.Primary.APIKey != "abc" {
		t.Fatalf("expected trimmed api key, got %q", cfg.LLM.Primary.APIKey)
	}
	if cfg.LLM.Fallback.Enabled() {
		t.Fatal("expected fallback disabled")
	}
	if cfg.Guidance.CacheBackend != config.CacheBackendMemory {
		t.Fatalf("unexpected cache backend: %q", cfg.Guidance.CacheBackend)
	}
	if cfg.Guidance.TTL() != 2*time.Hour {
		t.Fatalf("unexpected ttl: %s", cfg.Guidance.TTL())
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected canonical logging settings, got %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadBackends(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "redis without addr",
			mutate: func(c *config.Config) { c.Guidance.CacheBackend = config.CacheBackendRedis },
			want:   "guidance.redis_addr",
		},
		{
			name:   "unknown cache backend",
			mutate: func(c *config.Config) { c.Guidance.CacheBackend = "disk" },
			want:   "guidance.cache_backend",
		},
		{
			name:   "unknown lineage backend",
			mutate: func(c *config.Config) { c.Lineage.Backend = "postgres" },
			want:   "lineage.backend",
		},
		{
			name:   "unknown provider",
			mutate: func(c *config.Config) { c.LLM.Fallback.Provider = "anthropic" },
			want:   "llm.fallback.provider",
		},
		{
			name:   "bad bind",
			mutate: func(c *config.Config) { c.API.Bind = "localhost" },
			want:   "api.bind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.LLM.Fallback.Provider != config.ProviderGemini {
		t.Fatalf("unexpected sample fallback provider: %q", cfg.LLM.Fallback.Provider)
	}
	if cfg.Guidance.TTLHours != 24 {
		t.Fatalf("unexpected sample ttl: %d", cfg.Guidance.TTLHours)
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[llm.primary]") {
		t.Fatalf("sample missing llm section: %s", data)
	}
}

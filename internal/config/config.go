package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory locations.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	LogDir      string `toml:"log_dir"`
	SessionsDir string `toml:"sessions_dir"`
	CatalogPath string `toml:"catalog_path"`
}

// API contains the lineage query server settings.
type API struct {
	Bind  string `toml:"bind"`
	Token string `toml:"token"`
}

// Provider describes one text-generation backend.
type Provider struct {
	Provider       string  `toml:"provider"`
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Referer        string  `toml:"referer"`
	Title          string  `toml:"title"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MaxTokens      int     `toml:"max_tokens"`
	Temperature    float64 `toml:"temperature"`
	RetryAttempts  int     `toml:"retry_attempts"`
}

// Enabled reports whether the provider has enough settings to be called.
func (p Provider) Enabled() bool {
	return strings.TrimSpace(p.Provider) != "" && strings.TrimSpace(p.APIKey) != ""
}

// Timeout returns the per-request timeout.
func (p Provider) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return time.Duration(defaultLLMTimeoutSeconds) * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// LLM holds the primary and fallback generation providers.
type LLM struct {
	Primary  Provider `toml:"primary"`
	Fallback Provider `toml:"fallback"`
}

// Guidance contains cache and pipeline settings for guidance resolution.
type Guidance struct {
	TTLHours      int    `toml:"ttl_hours"`
	CacheBackend  string `toml:"cache_backend"`
	CachePath     string `toml:"cache_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisKey      string `toml:"redis_key"`
	DefaultUser   string `toml:"default_user"`
}

// TTL returns the guidance cache lifetime.
func (g Guidance) TTL() time.Duration {
	return time.Duration(g.TTLHours) * time.Hour
}

// Lineage selects the lineage repository.
type Lineage struct {
	Backend string `toml:"backend"`
	DBPath  string `toml:"db_path"`
}

// Scoring toggles optional confidence inputs.
type Scoring struct {
	UseConsistency bool `toml:"use_consistency"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Telemetry configures tracing export and the metrics endpoint.
type Telemetry struct {
	OTLPEndpoint   string `toml:"otlp_endpoint"`
	Insecure       bool   `toml:"insecure"`
	ServiceName    string `toml:"service_name"`
	MetricsEnabled bool   `toml:"metrics_enabled"`
}

// Config encapsulates all configuration values for lumen.
//
// Configuration sections by subsystem:
//   - Paths: data, log and session directories plus the target catalog
//   - API: lineage query server bind address and bearer token
//   - LLM: primary and fallback text-generation providers
//   - Guidance: cache backend and TTL
//   - Lineage: lineage repository backend
//   - Scoring: optional confidence inputs
//   - Logging: log format and level
//   - Telemetry: OTLP tracing and Prometheus metrics
type Config struct {
	Paths     Paths     `toml:"paths"`
	API       API       `toml:"api"`
	LLM       LLM       `toml:"llm"`
	Guidance  Guidance  `toml:"guidance"`
	Lineage   Lineage   `toml:"lineage"`
	Scoring   Scoring   `toml:"scoring"`
	Logging   Logging   `toml:"logging"`
	Telemetry Telemetry `toml:"telemetry"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lumen.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon writes into. The
// sessions directory belongs to the host app and is never created here.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir}
	if c.Lineage.Backend == LineageBackendSQLite {
		dirs = append(dirs, filepath.Dir(c.Lineage.DBPath))
	}
	if c.Guidance.CacheBackend == CacheBackendFile {
		dirs = append(dirs, filepath.Dir(c.Guidance.CachePath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

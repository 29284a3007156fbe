package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeLLM()
	if err := c.normalizeGuidance(); err != nil {
		return err
	}
	if err := c.normalizeLineage(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeTelemetry()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SessionsDir) == "" {
		if value, ok := os.LookupEnv("LUMEN_SESSIONS_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.SessionsDir = value
		} else {
			c.Paths.SessionsDir = defaultSessionsDir
		}
	}
	if c.Paths.SessionsDir, err = expandPath(c.Paths.SessionsDir); err != nil {
		return fmt.Errorf("paths.sessions_dir: %w", err)
	}
	if c.Paths.CatalogPath, err = expandPath(strings.TrimSpace(c.Paths.CatalogPath)); err != nil {
		return fmt.Errorf("paths.catalog_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		if value, ok := os.LookupEnv("LUMEN_API_TOKEN"); ok {
			c.API.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLLM() {
	normalizeProvider(&c.LLM.Primary)
	normalizeProvider(&c.LLM.Fallback)
}

func normalizeProvider(p *Provider) {
	p.Provider = strings.ToLower(strings.TrimSpace(p.Provider))
	p.APIKey = strings.TrimSpace(p.APIKey)
	p.BaseURL = strings.TrimSpace(p.BaseURL)
	p.Model = strings.TrimSpace(p.Model)
	p.Referer = strings.TrimSpace(p.Referer)
	p.Title = strings.TrimSpace(p.Title)

	if p.APIKey == "" {
		if env := providerKeyEnv(p.Provider); env != "" {
			if value, ok := os.LookupEnv(env); ok {
				p.APIKey = strings.TrimSpace(value)
			}
		}
	}
	switch p.Provider {
	case ProviderOpenRouter:
		if p.BaseURL == "" {
			p.BaseURL = defaultOpenRouterBaseURL
		}
		if p.Model == "" {
			p.Model = defaultOpenRouterModel
		}
	case ProviderGemini:
		if p.Model == "" {
			p.Model = defaultGeminiModel
		}
	}
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = defaultLLMMaxTokens
	}
	if p.RetryAttempts < 0 {
		p.RetryAttempts = 0
	}
}

func providerKeyEnv(provider string) string {
	switch provider {
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

func (c *Config) normalizeGuidance() error {
	c.Guidance.CacheBackend = strings.ToLower(strings.TrimSpace(c.Guidance.CacheBackend))
	if c.Guidance.CacheBackend == "" {
		c.Guidance.CacheBackend = CacheBackendFile
	}
	if c.Guidance.TTLHours == 0 {
		c.Guidance.TTLHours = defaultGuidanceTTLHours
	}
	if strings.TrimSpace(c.Guidance.CachePath) == "" {
		c.Guidance.CachePath = filepath.Join(c.Paths.DataDir, defaultGuidanceCacheName)
	}
	var err error
	if c.Guidance.CachePath, err = expandPath(c.Guidance.CachePath); err != nil {
		return fmt.Errorf("guidance.cache_path: %w", err)
	}
	c.Guidance.RedisAddr = strings.TrimSpace(c.Guidance.RedisAddr)
	if c.Guidance.RedisAddr == "" {
		if value, ok := os.LookupEnv("LUMEN_REDIS_ADDR"); ok {
			c.Guidance.RedisAddr = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Guidance.RedisKey) == "" {
		c.Guidance.RedisKey = defaultGuidanceRedisKey
	}
	c.Guidance.DefaultUser = strings.TrimSpace(c.Guidance.DefaultUser)
	if c.Guidance.DefaultUser == "" {
		c.Guidance.DefaultUser = defaultGuidanceUser
	}
	return nil
}

func (c *Config) normalizeLineage() error {
	c.Lineage.Backend = strings.ToLower(strings.TrimSpace(c.Lineage.Backend))
	if c.Lineage.Backend == "" {
		c.Lineage.Backend = LineageBackendSQLite
	}
	if strings.TrimSpace(c.Lineage.DBPath) == "" {
		c.Lineage.DBPath = filepath.Join(c.Paths.DataDir, defaultLineageDBName)
	}
	var err error
	if c.Lineage.DBPath, err = expandPath(c.Lineage.DBPath); err != nil {
		return fmt.Errorf("lineage.db_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeTelemetry() {
	c.Telemetry.OTLPEndpoint = strings.TrimSpace(c.Telemetry.OTLPEndpoint)
	if c.Telemetry.OTLPEndpoint == "" {
		if value, ok := os.LookupEnv("OTEL_EXPORTER_OTLP_ENDPOINT"); ok {
			c.Telemetry.OTLPEndpoint = strings.TrimSpace(value)
		}
	}
	c.Telemetry.ServiceName = strings.TrimSpace(c.Telemetry.ServiceName)
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = defaultTelemetryService
	}
}

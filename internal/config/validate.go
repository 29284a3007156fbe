package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := validateProvider("llm.primary", c.LLM.Primary); err != nil {
		return err
	}
	if err := validateProvider("llm.fallback", c.LLM.Fallback); err != nil {
		return err
	}
	if err := c.validateGuidance(); err != nil {
		return err
	}
	if err := c.validateLineage(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAPI() error {
	if strings.TrimSpace(c.API.Bind) == "" {
		return errors.New("api.bind must be set")
	}
	if !strings.Contains(c.API.Bind, ":") {
		return fmt.Errorf("api.bind must be host:port, got %q", c.API.Bind)
	}
	return nil
}

func validateProvider(section string, p Provider) error {
	switch p.Provider {
	case "":
		return nil
	case ProviderOpenRouter, ProviderOpenAI:
		if p.BaseURL == "" {
			return fmt.Errorf("%s.base_url must be set for provider %q", section, p.Provider)
		}
	case ProviderGemini:
	default:
		return fmt.Errorf("%s.provider: unsupported value %q (expected openrouter, openai, or gemini)", section, p.Provider)
	}
	if p.Model == "" {
		return fmt.Errorf("%s.model must be set", section)
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return fmt.Errorf("%s.temperature must be between 0 and 2", section)
	}
	return nil
}

func (c *Config) validateGuidance() error {
	if c.Guidance.TTLHours < 0 {
		return errors.New("guidance.ttl_hours must be positive")
	}
	switch c.Guidance.CacheBackend {
	case CacheBackendMemory, CacheBackendFile:
	case CacheBackendRedis:
		if c.Guidance.RedisAddr == "" {
			return errors.New("guidance.redis_addr must be set when guidance.cache_backend is redis")
		}
	default:
		return fmt.Errorf("guidance.cache_backend: unsupported value %q (expected memory, file, or redis)", c.Guidance.CacheBackend)
	}
	return nil
}

func (c *Config) validateLineage() error {
	switch c.Lineage.Backend {
	case LineageBackendMemory, LineageBackendSQLite:
		return nil
	default:
		return fmt.Errorf("lineage.backend: unsupported value %q (expected memory or sqlite)", c.Lineage.Backend)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

package main

import (
	"os"
	"strings"

	"lumen/internal/config"
	"lumen/internal/daemonrun"
)

// Environment knobs read by lumend. The lumen CLI exposes the same settings
// as flags on `lumen serve`.
const (
	envConfigPath        = "LUMEN_CONFIG"
	envLogLevel          = "LUMEN_LOG_LEVEL"
	envSkipProviderCheck = "LUMEN_SKIP_PROVIDER_CHECK"
)

func loadConfig() (*config.Config, error) {
	cfg, _, _, err := config.Load(strings.TrimSpace(os.Getenv(envConfigPath)))
	return cfg, err
}

func runOptions() daemonrun.Options {
	return daemonrun.Options{
		LogLevel:          strings.TrimSpace(os.Getenv(envLogLevel)),
		SkipProviderCheck: envBool(envSkipProviderCheck),
	}
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

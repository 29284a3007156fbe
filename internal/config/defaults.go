package config

const (
	defaultConfigPath         = "~/.config/lumen/config.toml"
	defaultDataDir            = "~/.local/share/lumen"
	defaultLogDir             = "~/.local/share/lumen/logs"
	defaultSessionsDir        = "~/.local/share/lumen/sessions"
	defaultAPIBind            = "127.0.0.1:7610"
	defaultLLMTimeoutSeconds  = 60
	defaultLLMMaxTokens       = 1200
	defaultLLMTemperature     = 0.4
	defaultLLMRetryAttempts   = 1
	defaultOpenRouterBaseURL  = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel    = "anthropic/claude-sonnet-4"
	defaultOpenRouterReferer  = "https://github.com/lumen-app/lumen"
	defaultOpenRouterTitle    = "Lumen Insight Synthesis"
	defaultGeminiModel        = "gemini-2.5-flash"
	defaultGuidanceTTLHours   = 24
	defaultGuidanceCacheName  = "guidance_cache.json"
	defaultGuidanceRedisKey   = "lumen:guidance"
	defaultGuidanceUser       = "local"
	defaultLineageDBName      = "lineage.db"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultTelemetryService   = "lumen"
	defaultTelemetryMetricsOn = true
)

// Recognised provider, cache and lineage backend names.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"

	CacheBackendMemory = "memory"
	CacheBackendFile   = "file"
	CacheBackendRedis  = "redis"

	LineageBackendMemory = "memory"
	LineageBackendSQLite = "sqlite"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
			SessionsDir: defaultSessionsDir,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		LLM: LLM{
			Primary: Provider{
				Provider:       ProviderOpenRouter,
				BaseURL:        defaultOpenRouterBaseURL,
				Model:          defaultOpenRouterModel,
				Referer:        defaultOpenRouterReferer,
				Title:          defaultOpenRouterTitle,
				TimeoutSeconds: defaultLLMTimeoutSeconds,
				MaxTokens:      defaultLLMMaxTokens,
				Temperature:    defaultLLMTemperature,
				RetryAttempts:  defaultLLMRetryAttempts,
			},
			Fallback: Provider{
				Provider:       ProviderGemini,
				Model:          defaultGeminiModel,
				TimeoutSeconds: defaultLLMTimeoutSeconds,
				MaxTokens:      defaultLLMMaxTokens,
				Temperature:    defaultLLMTemperature,
				RetryAttempts:  defaultLLMRetryAttempts,
			},
		},
		Guidance: Guidance{
			TTLHours:     defaultGuidanceTTLHours,
			CacheBackend: CacheBackendFile,
			RedisKey:     defaultGuidanceRedisKey,
			DefaultUser:  defaultGuidanceUser,
		},
		Lineage: Lineage{
			Backend: LineageBackendSQLite,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Telemetry: Telemetry{
			ServiceName:    defaultTelemetryService,
			MetricsEnabled: defaultTelemetryMetricsOn,
		},
	}
}

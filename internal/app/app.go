package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"lumen/internal/catalog"
	"lumen/internal/config"
	"lumen/internal/guidance"
	"lumen/internal/guidancecache"
	"lumen/internal/lineage"
	"lumen/internal/logging"
	"lumen/internal/metrics"
	"lumen/internal/services/gemini"
	"lumen/internal/services/llm"
	"lumen/internal/session"
	"lumen/internal/synthesis"
	"lumen/internal/textgen"
)

// App holds every long-lived component built from a config.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Catalog   *catalog.Catalog
	Providers []textgen.Provider
	Generator textgen.Provider
	Tracker   *lineage.Tracker
	Cache     *guidancecache.Cache
	Sessions  session.Source
	Guidance  *guidance.Service
}

// Build wires the guidance stack described by cfg. Providers without an API
// key are left out; with none configured guidance calls report generation
// as unavailable while lineage queries keep working.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	a := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}

	cat, err := LoadCatalog(cfg.Paths.CatalogPath)
	if err != nil {
		return nil, err
	}
	a.Catalog = cat

	for _, pc := range []config.Provider{cfg.LLM.Primary, cfg.LLM.Fallback} {
		if !pc.Enabled() {
			continue
		}
		provider, err := NewProvider(ctx, pc)
		if err != nil {
			return nil, err
		}
		a.Providers = append(a.Providers, provider)
	}
	switch len(a.Providers) {
	case 0:
		logging.WarnWithContext(logger, "no text generation provider configured", "provider_missing",
			logging.String(logging.FieldErrorHint, "set llm.primary.api_key or OPENROUTER_API_KEY"),
			logging.String(logging.FieldImpact, "guidance requests return generation unavailable"),
		)
	case 1:
		a.Generator = textgen.NewChain(a.Providers[0], nil, textgen.WithLogger(logger), textgen.WithMetrics(a.Metrics))
	default:
		a.Generator = textgen.NewChain(a.Providers[0], a.Providers[1], textgen.WithLogger(logger), textgen.WithMetrics(a.Metrics))
	}

	a.Tracker, err = OpenTracker(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Cache, err = OpenCache(ctx, cfg, logger, a.Metrics)
	if err != nil {
		_ = a.Tracker.Close()
		return nil, err
	}
	a.Sessions = session.NewDirSource(cfg.Paths.SessionsDir, logger)

	synth := synthesis.New(a.Generator, cat, synthesis.WithLogger(logger))
	a.Guidance = guidance.New(synth,
		guidance.WithCache(a.Cache),
		guidance.WithTracker(a.Tracker),
		guidance.WithSource(a.Sessions),
		guidance.WithMetrics(a.Metrics),
		guidance.WithLogger(logger),
		guidance.WithConsistency(cfg.Scoring.UseConsistency),
		guidance.WithDefaultUser(cfg.Guidance.DefaultUser),
	)
	return a, nil
}

// Close releases stores and backends.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.Tracker != nil {
		errs = append(errs, a.Tracker.Close())
	}
	return errors.Join(errs...)
}

// LoadCatalog reads the recommendation catalog at path, or the embedded
// default when path is empty.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

// NewProvider builds the text generation client named by pc.Provider.
func NewProvider(ctx context.Context, pc config.Provider) (textgen.Provider, error) {
	switch pc.Provider {
	case config.ProviderOpenRouter, config.ProviderOpenAI:
		attempts := max(pc.RetryAttempts, 1)
		return llm.NewClient(llm.Config{
			Name:           pc.Provider,
			APIKey:         pc.APIKey,
			BaseURL:        pc.BaseURL,
			Model:          pc.Model,
			Referer:        pc.Referer,
			Title:          pc.Title,
			TimeoutSeconds: pc.TimeoutSeconds,
			MaxTokens:      pc.MaxTokens,
			Temperature:    pc.Temperature,
		}, llm.WithRetryMaxAttempts(attempts)), nil
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:         pc.APIKey,
			BaseURL:        pc.BaseURL,
			Model:          pc.Model,
			TimeoutSeconds: pc.TimeoutSeconds,
			MaxTokens:      pc.MaxTokens,
			Temperature:    pc.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini provider: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", pc.Provider)
	}
}

// OpenTracker opens the configured lineage repository.
func OpenTracker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*lineage.Tracker, error) {
	var store lineage.Store
	switch cfg.Lineage.Backend {
	case config.LineageBackendSQLite:
		dbPath := cfg.Lineage.DBPath
		if dbPath == "" {
			dbPath = filepath.Join(cfg.Paths.DataDir, "lineage.db")
		}
		sqlite, err := lineage.OpenSQLite(ctx, dbPath)
		if err != nil {
			return nil, fmt.Errorf("open lineage store: %w", err)
		}
		store = sqlite
	default:
		store = lineage.NewMemoryStore()
	}
	return lineage.NewTracker(store, lineage.WithLogger(logger)), nil
}

// OpenCache opens the configured guidance cache backend.
func OpenCache(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*guidancecache.Cache, error) {
	var backend guidancecache.Backend
	switch cfg.Guidance.CacheBackend {
	case config.CacheBackendFile:
		path := cfg.Guidance.CachePath
		if path == "" {
			path = filepath.Join(cfg.Paths.DataDir, "guidance.json")
		}
		file, err := guidancecache.NewFileBackend(path)
		if err != nil {
			return nil, fmt.Errorf("open guidance cache: %w", err)
		}
		backend = file
	case config.CacheBackendRedis:
		redis, err := guidancecache.NewRedisBackend(ctx, guidancecache.RedisOptions{
			Addr:     cfg.Guidance.RedisAddr,
			Password: cfg.Guidance.RedisPassword,
			DB:       cfg.Guidance.RedisDB,
			Key:      cfg.Guidance.RedisKey,
			TTL:      cfg.Guidance.TTL(),
		})
		if err != nil {
			return nil, fmt.Errorf("open guidance cache: %w", err)
		}
		backend = redis
	default:
		backend = guidancecache.NewMemoryBackend()
	}
	return guidancecache.New(backend,
		guidancecache.WithTTL(cfg.Guidance.TTL()),
		guidancecache.WithLogger(logger),
		guidancecache.WithMetrics(m),
	), nil
}

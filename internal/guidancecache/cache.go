package guidancecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lumen/internal/insight"
	"lumen/internal/logging"
	"lumen/internal/metrics"
)

// DefaultTTL is how long a cached insight stays valid.
const DefaultTTL = 24 * time.Hour

// Cache lookup results recorded in metrics.
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultExpired = "expired"
	ResultStale   = "stale"
	ResultForeign = "user_mismatch"
	ResultError   = "error"
)

// Entry is the single cached guidance result. It belongs to the user it was
// synthesized for; its lineage ids are only meaningful for that user.
type Entry struct {
	Insight     insight.Insight `json:"insight"`
	CachedAt    time.Time       `json:"cachedAt"`
	ContextHash string          `json:"contextHash"`
	UserID      string          `json:"userId"`
}

// Backend stores at most one Entry. Load reports ok=false when nothing is
// stored.
type Backend interface {
	Load(ctx context.Context) (Entry, bool, error)
	Save(ctx context.Context, entry Entry) error
	Clear(ctx context.Context) error
	Close() error
}

// Cache validates entries against a context hash and TTL.
type Cache struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option customizes a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the cache logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "guidance-cache")
		}
	}
}

// WithMetrics records lookup results into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New wraps backend. A nil backend uses an in-memory backend.
func New(backend Backend, opts ...Option) *Cache {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	c := &Cache{
		backend: backend,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  logging.NewComponentLogger(nil, "guidance-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the validity window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the cached entry when it was stored for userID and hash and is
// no older than the TTL. Backend failures are logged and treated as a miss.
func (c *Cache) Get(ctx context.Context, userID, hash string) (Entry, bool) {
	entry, ok, err := c.backend.Load(ctx)
	switch {
	case err != nil:
		c.metrics.RecordCache(ResultError)
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "guidance cache read failed", "cache_read_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the cache backend"),
			logging.String(logging.FieldImpact, "guidance will be regenerated"),
		)
		return Entry{}, false
	case !ok:
		c.metrics.RecordCache(ResultMiss)
		return Entry{}, false
	case c.now().Sub(entry.CachedAt) > c.ttl:
		c.metrics.RecordCache(ResultExpired)
		return Entry{}, false
	case entry.ContextHash != hash:
		c.metrics.RecordCache(ResultStale)
		return Entry{}, false
	case entry.UserID != userID:
		c.metrics.RecordCache(ResultForeign)
		return Entry{}, false
	}
	c.metrics.RecordCache(ResultHit)
	return entry, true
}

// Peek returns whatever is stored without validation.
func (c *Cache) Peek(ctx context.Context) (Entry, bool, error) {
	return c.backend.Load(ctx)
}

// Put replaces the cached entry unconditionally, including one held for
// another user.
func (c *Cache) Put(ctx context.Context, userID, hash string, ins insight.Insight) (Entry, error) {
	if strings.TrimSpace(hash) == "" {
		return Entry{}, errors.New("guidance cache: context hash required")
	}
	entry := Entry{Insight: ins, CachedAt: c.now().UTC(), ContextHash: hash, UserID: userID}
	if err := c.backend.Save(ctx, entry); err != nil {
		return Entry{}, fmt.Errorf("guidance cache: save: %w", err)
	}
	return entry, nil
}

// Clear removes the cached entry.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.backend.Clear(ctx); err != nil {
		return fmt.Errorf("guidance cache: clear: %w", err)
	}
	return nil
}

// Close releases backend resources.
func (c *Cache) Close() error {
	return c.backend.Close()
}

// Valid reports whether e would satisfy Get for userID and hash at now.
func (e Entry) Valid(userID, hash string, now time.Time, ttl time.Duration) bool {
	return e.UserID == userID && e.ContextHash == hash && now.Sub(e.CachedAt) <= ttl
}

package guidancecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
	// TTL sets the key expiry so Redis drops entries the cache would reject
	// anyway. Zero keeps keys until replaced.
	TTL time.Duration
}

// RedisBackend stores the entry under a single Redis key.
type RedisBackend struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisBackend connects to Redis and verifies the connection.
func NewRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, errors.New("guidance cache: redis address required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("guidance cache: ping redis %s: %w", opts.Addr, err)
	}
	return newRedisBackend(client, opts), nil
}

func newRedisBackend(client *redis.Client, opts RedisOptions) *RedisBackend {
	key := strings.TrimSpace(opts.Key)
	if key == "" {
		key = "lumen:guidance"
	}
	return &RedisBackend{client: client, key: key, ttl: opts.TTL}
}

func (r *RedisBackend) Load(ctx context.Context) (Entry, bool, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return entry, true, nil
}

func (r *RedisBackend) Save(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisBackend) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}

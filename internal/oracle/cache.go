package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

// Cache stores candidate sets by request key.
type Cache interface {
	Get(ctx context.Context, key string) ([]string, bool, error)
	Add(ctx context.Context, key string, candidates []string) error
}

// Cached memoizes an Oracle. Cache failures are logged and otherwise
// ignored; they never turn a successful prediction into an error.
type Cached struct {
	Oracle Oracle
	Cache  Cache
	Logger *log.Logger
}

// Predict implements Oracle.
func (c *Cached) Predict(ctx context.Context, sequence []string, position, topK int) ([]string, error) {
	k := requestKey(sequence, position, topK)
	if v, ok, err := c.Cache.Get(ctx, k); err != nil {
		c.logf("oracle cache get: %v", err)
	} else if ok {
		return v, nil
	}
	v, err := c.Oracle.Predict(ctx, sequence, position, topK)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Add(ctx, k, v); err != nil {
		c.logf("oracle cache add: %v", err)
	}
	return v, nil
}

func (c *Cached) logf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}

func requestKey(sequence []string, position, topK int) string {
	return strconv.Itoa(topK) + "|" + strconv.Itoa(position) + "|" + strings.Join(sequence, "\x1f")
}

// LRUCache keeps the most recently used candidate sets in memory.
type LRUCache struct {
	c *lru.Cache[string, []string]
}

// NewLRUCache returns an in-process cache holding up to size entries.
func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New[string, []string](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{c: c}, nil
}

// Get implements Cache.
func (l *LRUCache) Get(_ context.Context, key string) ([]string, bool, error) {
	v, ok := l.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	return truncate(v, -1), true, nil
}

// Add implements Cache.
func (l *LRUCache) Add(_ context.Context, key string, candidates []string) error {
	l.c.Add(key, truncate(candidates, -1))
	return nil
}

// Len is the number of cached entries.
func (l *LRUCache) Len() int { return l.c.Len() }

// RedisCache shares candidate sets between processes. Keys are hashed so
// long sentences do not produce long Redis keys.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache stores entries under prefix with the given TTL (0 keeps
// them forever).
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "transspell:oracle:"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisCache) redisKey(key string) string {
	return r.prefix + strconv.FormatUint(xxhash.Sum64String(key), 16)
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, key string) ([]string, bool, error) {
	raw, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var v []string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, fmt.Errorf("decode cached candidates: %w", err)
	}
	return v, true, nil
}

// Add implements Cache.
func (r *RedisCache) Add(ctx context.Context, key string, candidates []string) error {
	raw, err := json.Marshal(candidates)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.redisKey(key), raw, r.ttl).Err()
}

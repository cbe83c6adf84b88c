package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Namespaces separate result kinds so identical content hashes never collide
// across uses.
const (
	NamespaceExtraction  = "extraction"
	NamespaceEmbedding   = "embedding"
	NamespaceExplanation = "explanation"
)

// ResultCache is a content-addressed cache for expensive computations.
// Two tiers: an in-memory map that is lost on restart and an optional redis
// layer that survives it. Concurrent callers for the same key share a single
// in-flight computation. Entries are pure functions of their key, so writes
// are last-writer-wins.
type ResultCache struct {
	l1     sync.Map // key -> *entry
	rdb    *redis.Client
	group  singleflight.Group
	logger *zap.Logger
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// New builds the cache. redisURL may be empty to run memory-only; an
// unreachable redis also degrades to memory-only rather than failing.
func New(redisURL string, logger *zap.Logger) *ResultCache {
	c := &ResultCache{logger: logger}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Warn("invalid redis URL, second cache tier disabled", zap.Error(err))
			return c
		}
		rdb := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, second cache tier disabled", zap.Error(err))
		} else {
			c.rdb = rdb
			logger.Info("redis cache tier connected", zap.String("addr", opts.Addr))
		}
	}

	go c.sweepLoop()
	return c
}

// Key builds the content-addressed cache key for a namespace.
func Key(namespace string, content []byte) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("%s:%s", namespace, hex.EncodeToString(sum[:16]))
}

// KeyText is Key over a string payload.
func KeyText(namespace, content string) string {
	return Key(namespace, []byte(content))
}

// GetOrCompute returns the cached value for key or runs compute exactly once
// per key across concurrent in-process callers, storing the result with the
// given TTL. The cache is an optimization only: compute errors are returned
// unchanged and nothing is stored for them.
func (c *ResultCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if data, ok := c.lookup(ctx, key); ok {
		return data, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: another caller may have stored it
		// between our miss and this turn.
		if data, ok := c.lookup(ctx, key); ok {
			return data, nil
		}
		data, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, data, ttl)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *ResultCache) lookup(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := c.l1.Load(key); ok {
		e := v.(*entry)
		if time.Now().Before(e.expiresAt) {
			return e.data, true
		}
		c.l1.Delete(key)
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			ttl, terr := c.rdb.TTL(ctx, key).Result()
			if terr != nil || ttl <= 0 {
				ttl = time.Minute
			}
			c.l1.Store(key, &entry{data: data, expiresAt: time.Now().Add(ttl)})
			return data, true
		}
		if err != redis.Nil {
			c.logger.Debug("redis cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	return nil, false
}

func (c *ResultCache) store(ctx context.Context, key string, data []byte, ttl time.Duration) {
	c.l1.Store(key, &entry{data: data, expiresAt: time.Now().Add(ttl)})
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
			c.logger.Debug("redis cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func (c *ResultCache) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.l1.Range(func(k, v interface{}) bool {
			if now.After(v.(*entry).expiresAt) {
				c.l1.Delete(k)
			}
			return true
		})
	}
}

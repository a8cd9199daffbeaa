package listcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gridex/internal/db"
	"github.com/kailas-cloud/gridex/internal/domain/listing"
)

// DefaultPrefix namespaces all cache keys.
const DefaultPrefix = "gridex:"

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) error
}

type envelope struct {
	View listing.View    `json:"view"`
	Body json.RawMessage `json:"body"`
}

// Cache stores rendered listing responses keyed by resource, tenant,
// generation and normalized parameters. Bumping the generation makes every
// page of a (tenant, resource) pair unreachable; old entries expire by TTL.
type Cache struct {
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a response cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(s store, prefix string, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Cache{store: s, prefix: prefix, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Get returns a cached response. Store failures count as a miss.
func (c *Cache) Get(ctx context.Context, resource, tenant, paramsKey string) (listing.Response, bool) {
	gen, ok := c.generation(ctx, resource, tenant)
	if !ok {
		c.incCache("miss")
		return listing.Response{}, false
	}
	key := c.entryKey(resource, tenant, gen, paramsKey)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached listing", zap.String("key", key), zap.Error(err))
		}
		c.incCache("miss")
		return listing.Response{}, false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("Failed to parse cached listing", zap.String("key", key), zap.Error(err))
		c.incCache("miss")
		return listing.Response{}, false
	}
	resp, err := listing.DecodeResponse(env.View, env.Body)
	if err != nil {
		c.logger.Warn("Failed to decode cached listing", zap.String("key", key), zap.Error(err))
		c.incCache("miss")
		return listing.Response{}, false
	}

	c.incCache("hit")
	return resp, true
}

// Put stores resp. Failures are logged and otherwise ignored.
func (c *Cache) Put(ctx context.Context, resource, tenant, paramsKey string, resp listing.Response) {
	gen, ok := c.generation(ctx, resource, tenant)
	if !ok {
		return
	}
	key := c.entryKey(resource, tenant, gen, paramsKey)

	body, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("Failed to marshal listing for cache", zap.String("key", key), zap.Error(err))
		return
	}
	data, err := json.Marshal(envelope{View: resp.View, Body: body})
	if err != nil {
		c.logger.Warn("Failed to marshal cache envelope", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache listing", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate bumps the generation of a (tenant, resource) pair.
func (c *Cache) Invalidate(ctx context.Context, resource, tenant string) error {
	if err := c.store.IncrBy(ctx, c.generationKey(resource, tenant), 1); err != nil {
		return fmt.Errorf("invalidate %s: %w", resource, err)
	}
	return nil
}

func (c *Cache) generation(ctx context.Context, resource, tenant string) (string, bool) {
	key := c.generationKey(resource, tenant)
	data, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return "0", true
	case err != nil:
		c.logger.Warn("Failed to read cache generation", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return string(data), true
}

func (c *Cache) generationKey(resource, tenant string) string {
	return c.prefix + "listgen:" + resource + ":" + tenant
}

func (c *Cache) entryKey(resource, tenant, gen, paramsKey string) string {
	return c.prefix + "list:" + resource + ":" + tenant + ":" + gen + ":" + paramsKey
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

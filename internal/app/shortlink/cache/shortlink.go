package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"edgelink.local/internal/app/shortlink"
	"edgelink.local/internal/platform/metrics"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sl:"

// RecordCache is a two level read cache: LocalCache (L1) in front of Redis (L2).
// There is no negative caching, so a record written through Put is visible to
// every instance on its next lookup.
type RecordCache struct {
	client *redis.Client
	local  *LocalCache
	ttl    time.Duration
}

func NewRecordCache(client *redis.Client, local *LocalCache) *RecordCache {
	return &RecordCache{
		client: client,
		local:  local,
		ttl:    time.Hour,
	}
}

// Get reports a hit with the cached record. A Redis failure is returned with ok=false
// so the caller can fall back to the store.
func (c *RecordCache) Get(ctx context.Context, code string) (*shortlink.Record, bool, error) {
	if c.local != nil {
		if rec, ok := c.local.Get(code); ok {
			metrics.CacheOperations.WithLabelValues("l1", "hit").Inc()
			return rec, true, nil
		}
		metrics.CacheOperations.WithLabelValues("l1", "miss").Inc()
	}
	if c.client == nil {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, keyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheOperations.WithLabelValues("l2", "miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.CacheOperations.WithLabelValues("l2", "error").Inc()
		return nil, false, err
	}

	var rec shortlink.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		metrics.CacheOperations.WithLabelValues("l2", "error").Inc()
		return nil, false, err
	}
	metrics.CacheOperations.WithLabelValues("l2", "hit").Inc()

	if c.local != nil {
		c.local.Set(&rec, time.Now())
	}
	return &rec, true, nil
}

// Set writes rec to both layers, bounded by the record's remaining lifetime.
func (c *RecordCache) Set(ctx context.Context, rec *shortlink.Record, now time.Time) error {
	if c.local != nil {
		c.local.Set(rec, now)
	}
	if c.client == nil {
		return nil
	}
	ttl := boundTTL(c.ttl, rec, now)
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+rec.Code, raw, ttl).Err()
}

func (c *RecordCache) Delete(ctx context.Context, code string) error {
	if c.local != nil {
		c.local.Del(code)
	}
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keyPrefix+code).Err()
}

func (c *RecordCache) Close() {
	if c.local != nil {
		c.local.Close()
		slog.Info("local record cache closed")
	}
}

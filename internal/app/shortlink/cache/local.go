package cache

import (
	"time"

	"edgelink.local/internal/app/shortlink"
	"github.com/dgraph-io/ristretto"
)

// LocalCache is the in-process L1 layer, backed by ristretto.
// It only ever holds positive entries; records are immutable so they cannot go stale.
type LocalCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewLocalCache sizes the cache by entry count (cost 1 per record).
func NewLocalCache(maxItems int64, ttl time.Duration) (*LocalCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &LocalCache{cache: cache, ttl: ttl}, nil
}

func (l *LocalCache) Get(code string) (*shortlink.Record, bool) {
	v, ok := l.cache.Get(code)
	if !ok {
		return nil, false
	}
	rec, ok := v.(*shortlink.Record)
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Set stores rec for at most ttl, never past its own expiry.
func (l *LocalCache) Set(rec *shortlink.Record, now time.Time) {
	ttl := boundTTL(l.ttl, rec, now)
	if ttl <= 0 {
		return
	}
	l.cache.SetWithTTL(rec.Code, rec.Clone(), 1, ttl)
}

func (l *LocalCache) Del(code string) {
	l.cache.Del(code)
}

// Wait blocks until buffered writes are applied.
func (l *LocalCache) Wait() {
	l.cache.Wait()
}

func (l *LocalCache) Close() {
	l.cache.Close()
}

func boundTTL(ttl time.Duration, rec *shortlink.Record, now time.Time) time.Duration {
	secs := rec.ExpiresAt - now.Unix()
	if secs <= 0 {
		return 0
	}
	if secs < int64(ttl/time.Second) {
		return time.Duration(secs) * time.Second
	}
	return ttl
}

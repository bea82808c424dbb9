package repo

import (
	"context"
	"log/slog"
	"time"

	"edgelink.local/internal/app/shortlink"
	"edgelink.local/internal/app/shortlink/cache"
)

// CachedStore puts a read-through, write-through RecordCache in front of a Store.
// Conditional puts always reach the backing store.
type CachedStore struct {
	next  shortlink.Store
	cache *cache.RecordCache
	now   func() time.Time
}

func NewCachedStore(next shortlink.Store, c *cache.RecordCache) *CachedStore {
	return &CachedStore{next: next, cache: c, now: time.Now}
}

func (s *CachedStore) Get(ctx context.Context, code string) (*shortlink.Record, error) {
	rec, ok, err := s.cache.Get(ctx, code)
	if err != nil {
		slog.Warn("record cache get failed", "code", code, "err", err)
	}
	if ok {
		return rec, nil
	}

	rec, err = s.next.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	cacheCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := s.cache.Set(cacheCtx, rec, s.now()); err != nil {
		slog.Warn("record cache set failed", "code", code, "err", err)
	}
	return rec, nil
}

func (s *CachedStore) Put(ctx context.Context, rec *shortlink.Record, opts shortlink.PutOptions) error {
	if err := s.next.Put(ctx, rec, opts); err != nil {
		return err
	}

	cacheCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if opts.Overwrite {
		// drop before refilling so no instance keeps serving the old target from L1
		_ = s.cache.Delete(cacheCtx, rec.Code)
	}
	if err := s.cache.Set(cacheCtx, rec, s.now()); err != nil {
		slog.Warn("record cache set failed", "code", rec.Code, "err", err)
	}
	return nil
}

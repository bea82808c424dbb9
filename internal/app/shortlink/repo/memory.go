package repo

import (
	"context"
	"sync"
	"time"

	"edgelink.local/internal/app/shortlink"
)

// MemoryStore keeps records in a map. Put-if-absent is atomic under the lock.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*shortlink.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*shortlink.Record)}
}

func (m *MemoryStore) Get(ctx context.Context, code string) (*shortlink.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.data[code]
	if !ok {
		return nil, shortlink.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (m *MemoryStore) Put(ctx context.Context, rec *shortlink.Record, opts shortlink.PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[rec.Code]; exists && !opts.Overwrite {
		return shortlink.ErrCodeTaken
	}
	m.data[rec.Code] = rec.Clone()
	return nil
}

// PurgeExpired drops records whose expiry is at or before now.
func (m *MemoryStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for code, rec := range m.data {
		if rec.Expired(now) {
			delete(m.data, code)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

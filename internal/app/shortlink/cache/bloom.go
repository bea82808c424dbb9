package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
)

// BloomFilter tracks codes known to be taken. The allocator consults it to skip
// candidates before paying for a conditional put; a false positive only costs
// one extra draw.
type BloomFilter struct {
	filter *bloom.BloomFilter
	mu     sync.RWMutex
}

// NewBloomFilter sizes the filter for expectedItems at the given false positive rate.
func NewBloomFilter(expectedItems uint, falsePositiveRate float64) *BloomFilter {
	return &BloomFilter{
		filter: bloom.NewWithEstimates(expectedItems, falsePositiveRate),
	}
}

func (b *BloomFilter) Add(code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.AddString(code)
}

// MightExist never returns false for an added code.
func (b *BloomFilter) MightExist(code string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.TestString(code)
}

func (b *BloomFilter) Count() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.ApproximatedSize()
}

// CodeScanner lists live codes, e.g. repo.PostgresStore.
type CodeScanner interface {
	ScanLiveCodes(ctx context.Context, now time.Time, fn func(code string)) error
}

// Warm seeds the filter with every live code from src.
func (b *BloomFilter) Warm(ctx context.Context, src CodeScanner) error {
	return src.ScanLiveCodes(ctx, time.Now(), b.Add)
}

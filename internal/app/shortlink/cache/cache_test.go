package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"edgelink.local/internal/app/shortlink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCache_SetGet(t *testing.T) {
	l, err := NewLocalCache(100, time.Minute)
	require.NoError(t, err)
	defer l.Close()

	now := time.Now()
	l.Set(&shortlink.Record{Code: "abc", Target: "https://a.example", ExpiresAt: now.Add(time.Hour).Unix()}, now)
	l.Wait()

	got, ok := l.Get("abc")
	require.True(t, ok)
	assert.Equal(t, "https://a.example", got.Target)

	got.Target = "mutated"
	again, _ := l.Get("abc")
	assert.Equal(t, "https://a.example", again.Target)

	l.Del("abc")
	l.Wait()
	_, ok = l.Get("abc")
	assert.False(t, ok)
}

func TestLocalCache_SkipsExpiredRecords(t *testing.T) {
	l, err := NewLocalCache(100, time.Minute)
	require.NoError(t, err)
	defer l.Close()

	now := time.Now()
	l.Set(&shortlink.Record{Code: "old", ExpiresAt: now.Unix() - 1}, now)
	l.Wait()

	_, ok := l.Get("old")
	assert.False(t, ok)
}

func TestBoundTTL(t *testing.T) {
	now := time.Unix(1_000, 0)

	assert.Equal(t, time.Hour, boundTTL(time.Hour, &shortlink.Record{ExpiresAt: 1_000 + 7200}, now))
	assert.Equal(t, 30*time.Second, boundTTL(time.Hour, &shortlink.Record{ExpiresAt: 1_030}, now))
	assert.LessOrEqual(t, boundTTL(time.Hour, &shortlink.Record{ExpiresAt: 900}, now), time.Duration(0))
	assert.Equal(t, time.Hour, boundTTL(time.Hour, &shortlink.Record{ExpiresAt: 1_000 + shortlink.DefaultLifetime}, now))
	assert.Equal(t, time.Hour, boundTTL(time.Hour, &shortlink.Record{ExpiresAt: 1_000 + 10_000_000_000}, now))
}

func TestRecordCache_LocalOnly(t *testing.T) {
	l, err := NewLocalCache(100, time.Minute)
	require.NoError(t, err)
	c := NewRecordCache(nil, l)
	defer c.Close()

	ctx := context.Background()
	_, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Now()
	require.NoError(t, c.Set(ctx, &shortlink.Record{Code: "abc", Target: "https://a.example", ExpiresAt: now.Add(time.Hour).Unix()}, now))
	l.Wait()

	got, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://a.example", got.Target)

	require.NoError(t, c.Delete(ctx, "abc"))
	l.Wait()
	_, ok, _ = c.Get(ctx, "abc")
	assert.False(t, ok)
}

func TestRecordCache_NoLayers(t *testing.T) {
	c := NewRecordCache(nil, nil)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), &shortlink.Record{Code: "abc", ExpiresAt: time.Now().Add(time.Hour).Unix()}, time.Now()))
	_, ok, err := c.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

type fakeScanner struct {
	codes []string
	err   error
}

func (f fakeScanner) ScanLiveCodes(_ context.Context, _ time.Time, fn func(string)) error {
	for _, c := range f.codes {
		fn(c)
	}
	return f.err
}

func TestBloomFilter(t *testing.T) {
	b := NewBloomFilter(1000, 0.001)

	assert.False(t, b.MightExist("abc"))
	b.Add("abc")
	assert.True(t, b.MightExist("abc"))

	require.NoError(t, b.Warm(context.Background(), fakeScanner{codes: []string{"k3x9abcd", "m2n8pqrs"}}))
	assert.True(t, b.MightExist("k3x9abcd"))
	assert.True(t, b.MightExist("m2n8pqrs"))
	assert.Greater(t, b.Count(), uint32(0))

	var _ shortlink.IssuedFilter = b
}

func TestBloomFilter_WarmError(t *testing.T) {
	b := NewBloomFilter(1000, 0.001)
	err := b.Warm(context.Background(), fakeScanner{codes: []string{"partial"}, err: errors.New("scan failed")})
	assert.Error(t, err)
	assert.True(t, b.MightExist("partial"))
}

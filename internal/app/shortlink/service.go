package shortlink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProtectedScheme marks targets that must be signed before redirecting.
const ProtectedScheme = "s3://"

// DefaultLifetime is used when a caller supplies no TTL: effectively never.
const DefaultLifetime int64 = 60 * 60 * 24 * 365 * 100

// MaxExpiry is 9999-12-31T23:59:59Z, the last instant FormatExpiry can render.
const MaxExpiry int64 = 253402300799

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrCodeTaken      = errors.New("code already taken")
	ErrTTLOutOfRange  = errors.New("ttl out of range")
)

// Record is the only persisted entity. Fields never change after creation.
type Record struct {
	Code       string    `json:"code"`
	Target     string    `json:"target"`
	ShortURL   string    `json:"short_url"`
	ExpiresAt  int64     `json:"expires_at"`
	TTLSeconds *int64    `json:"ttl_seconds,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Protected reports whether Target is a storage reference rather than a URL.
func (r *Record) Protected() bool {
	return len(r.Target) >= len(ProtectedScheme) &&
		strings.EqualFold(r.Target[:len(ProtectedScheme)], ProtectedScheme)
}

// Expired reports whether the record is past its expiry at now.
func (r *Record) Expired(now time.Time) bool {
	return now.Unix() >= r.ExpiresAt
}

func (r *Record) Clone() *Record {
	c := *r
	if r.TTLSeconds != nil {
		ttl := *r.TTLSeconds
		c.TTLSeconds = &ttl
	}
	return &c
}

// PutOptions controls Store.Put. With Overwrite false the write only succeeds
// when no record holds the code; otherwise ErrCodeTaken is returned.
type PutOptions struct {
	Overwrite bool
}

// Store is the persistent key-value backend. A successful Put must be visible to
// any later Get on the same code.
type Store interface {
	// Get returns ErrRecordNotFound when the code is absent.
	Get(ctx context.Context, code string) (*Record, error)
	Put(ctx context.Context, rec *Record, opts PutOptions) error
}

// Signer produces a time-bounded access URL for a protected storage reference.
// The validity window ends at expiresAt (epoch seconds).
type Signer interface {
	Sign(ctx context.Context, ref string, expiresAt int64) (string, error)
}

// CodeGenerator draws candidate codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// Clock lets tests pin the current time.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// ExpiryFor turns an optional relative TTL into an absolute epoch. A nil or zero
// TTL means DefaultLifetime. The result must land in [0, MaxExpiry], otherwise
// ErrTTLOutOfRange.
func ExpiryFor(now time.Time, ttlSeconds *int64) (int64, error) {
	seconds := DefaultLifetime
	if ttlSeconds != nil && *ttlSeconds != 0 {
		seconds = *ttlSeconds
	}
	base := now.Round(time.Second).Unix()
	if seconds > MaxExpiry-base || seconds < -base {
		return 0, fmt.Errorf("%w: %d seconds", ErrTTLOutOfRange, seconds)
	}
	return base + seconds, nil
}

// FormatExpiry renders an epoch as %Y-%m-%dT%H:%M:%S%z in loc, with the minutes
// of the offset replaced by ":00" (so "+0530" reads "+05:00").
func FormatExpiry(expiresAt int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	s := time.Unix(expiresAt, 0).In(loc).Format("2006-01-02T15:04:05-0700")
	return s[:len(s)-2] + ":00"
}

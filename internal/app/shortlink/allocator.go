package shortlink

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"edgelink.local/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultMaxCodeAttempts = 64

var tracer = otel.Tracer("edgelink.local/internal/app/shortlink")

// Config replaces the table/region/domain globals of a single deployment.
type Config struct {
	Domain          string         // host used in https://{Domain}/{code}
	MaxCodeAttempts int            // bound on the generate-and-put loop
	Location        *time.Location // zone used to render expiry strings
}

func (c Config) withDefaults() Config {
	if c.MaxCodeAttempts <= 0 {
		c.MaxCodeAttempts = DefaultMaxCodeAttempts
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	return c
}

// ShortURL builds the public link for code.
func (c Config) ShortURL(code string) string {
	return "https://" + c.Domain + "/" + code
}

type Request struct {
	URL        string
	Alias      string
	TTLSeconds *int64
}

type Result struct {
	Code        string
	ShortURL    string
	OriginalURL string
	ExpiresAt   string
	Record      *Record
}

// LinkCreated is emitted after every successful allocation.
type LinkCreated struct {
	Code       string    `json:"code"`
	Target     string    `json:"target"`
	ExpiresAt  int64     `json:"expires_at"`
	TTLSeconds *int64    `json:"ttl_seconds,omitempty"`
	Alias      bool      `json:"alias"`
	CreatedAt  time.Time `json:"created_at"`
}

// Publisher receives LinkCreated events. Publish must not block.
type Publisher interface {
	Publish(event LinkCreated)
}

type Allocator struct {
	store     Store
	generator CodeGenerator
	issued    IssuedFilter
	clock     Clock
	publisher Publisher
	cfg       Config
}

type AllocatorOption func(*Allocator)

func WithIssuedFilter(f IssuedFilter) AllocatorOption {
	return func(a *Allocator) { a.issued = f }
}

func WithPublisher(p Publisher) AllocatorOption {
	return func(a *Allocator) { a.publisher = p }
}

func WithClock(c Clock) AllocatorOption {
	return func(a *Allocator) { a.clock = c }
}

func NewAllocator(store Store, generator CodeGenerator, cfg Config, opts ...AllocatorOption) *Allocator {
	a := &Allocator{
		store:     store,
		generator: generator,
		clock:     RealClock{},
		cfg:       cfg.withDefaults(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate persists a new record for req and returns the public short link.
// Errors are always *Error.
func (a *Allocator) Allocate(ctx context.Context, req Request) (res *Result, err error) {
	ctx, span := tracer.Start(ctx, "shortlink.Allocate")
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(KindOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		metrics.Allocations.WithLabelValues(outcome).Inc()
		span.End()
	}()

	if strings.TrimSpace(req.URL) == "" {
		return nil, newError(KindMissingRequiredField, nil, "url is required")
	}

	now := a.clock.Now()
	expiresAt, err := ExpiryFor(now, req.TTLSeconds)
	if err != nil {
		return nil, newError(KindInvalidField, err, "ttl %d is out of range", *req.TTLSeconds)
	}
	rec := &Record{
		Target:     req.URL,
		ExpiresAt:  expiresAt,
		TTLSeconds: normalizeTTL(req.TTLSeconds),
		CreatedAt:  now,
	}

	if req.Alias != "" {
		span.SetAttributes(attribute.Bool("shortlink.alias", true))
		err = a.putAlias(ctx, rec, req.Alias)
	} else {
		err = a.putGenerated(ctx, rec)
	}
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("shortlink.code", rec.Code))

	if a.publisher != nil {
		a.publisher.Publish(LinkCreated{
			Code:       rec.Code,
			Target:     rec.Target,
			ExpiresAt:  rec.ExpiresAt,
			TTLSeconds: rec.TTLSeconds,
			Alias:      req.Alias != "",
			CreatedAt:  rec.CreatedAt,
		})
	}

	return &Result{
		Code:        rec.Code,
		ShortURL:    rec.ShortURL,
		OriginalURL: rec.Target,
		ExpiresAt:   FormatExpiry(rec.ExpiresAt, a.cfg.Location),
		Record:      rec,
	}, nil
}

func (a *Allocator) putAlias(ctx context.Context, rec *Record, alias string) error {
	a.assign(rec, alias)
	err := a.store.Put(ctx, rec, PutOptions{Overwrite: false})
	if errors.Is(err, ErrCodeTaken) {
		return newError(KindAliasAlreadyInUse, err, "alias %q is already in use by another address", alias)
	}
	if err != nil {
		slog.Error("allocate: put alias failed", "code", alias, "err", err)
		return StoreError(err)
	}
	return nil
}

func (a *Allocator) putGenerated(ctx context.Context, rec *Record) error {
	for attempt := 0; attempt < a.cfg.MaxCodeAttempts; attempt++ {
		code, err := a.generator.Generate()
		if err != nil {
			return newError(KindCodeGenerationExhausted, err, "code generation failed: %v", err)
		}
		a.assign(rec, code)

		err = a.store.Put(ctx, rec, PutOptions{Overwrite: false})
		if err == nil {
			if a.issued != nil {
				a.issued.Add(code)
			}
			return nil
		}
		if errors.Is(err, ErrCodeTaken) {
			metrics.CodeCollisions.Inc()
			if a.issued != nil {
				a.issued.Add(code)
			}
			continue
		}
		slog.Error("allocate: put generated code failed", "code", code, "attempt", attempt, "err", err)
		return StoreError(err)
	}
	return newError(KindCodeGenerationExhausted, nil, "no free code after %d attempts", a.cfg.MaxCodeAttempts)
}

func (a *Allocator) assign(rec *Record, code string) {
	rec.Code = code
	rec.ShortURL = a.cfg.ShortURL(code)
}

func normalizeTTL(ttl *int64) *int64 {
	if ttl == nil || *ttl == 0 {
		return nil
	}
	v := *ttl
	return &v
}

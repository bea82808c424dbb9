package shortlink

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"edgelink.local/internal/platform/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Resolver maps a code to a redirect. It holds no per-call state.
type Resolver struct {
	store  Store
	signer Signer
}

func NewResolver(store Store, signer Signer) *Resolver {
	return &Resolver{store: store, signer: signer}
}

// Resolve never fails: every outcome, including collaborator errors, comes back
// as a Response carrying the status.
func (r *Resolver) Resolve(ctx context.Context, code string) Response {
	ctx, span := tracer.Start(ctx, "shortlink.Resolve")
	span.SetAttributes(attribute.String("shortlink.code", code))

	resp := r.resolve(ctx, code)

	span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
	if resp.Status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, resp.Body)
	}
	span.End()
	metrics.Resolutions.WithLabelValues(strconv.Itoa(resp.Status)).Inc()
	return resp
}

func (r *Resolver) resolve(ctx context.Context, code string) Response {
	if code == "" {
		return errorResponse(KindMissingRequiredField.Status(), MsgMissingCode)
	}

	rec, err := r.store.Get(ctx, code)
	if errors.Is(err, ErrRecordNotFound) {
		return NotFoundResponse()
	}
	if err != nil {
		slog.Error("resolve: lookup failed", "code", code, "err", err)
		return errorFrom(StoreError(err))
	}

	target := rec.Target
	if rec.Protected() {
		if r.signer == nil {
			return errorFrom(SignerError(errors.New("no signer configured")))
		}
		signed, err := r.signer.Sign(ctx, rec.Target, rec.ExpiresAt)
		if err != nil {
			slog.Error("resolve: sign failed", "code", code, "err", err)
			return errorFrom(SignerError(err))
		}
		metrics.SignedRedirects.Inc()
		target = signed
	}

	return redirectResponse(target)
}

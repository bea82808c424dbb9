// Package edge adapts the allocator and resolver to Lambda invocations: a direct
// allocate event and a CloudFront viewer-request trigger.
package edge

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"edgelink.local/internal/app/shortlink"
)

// Header is one CloudFront header value.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Headers is keyed by lower-case header name.
type Headers map[string][]Header

type Request struct {
	URI     string  `json:"uri"`
	Method  string  `json:"method,omitempty"`
	Headers Headers `json:"headers,omitempty"`
}

type CF struct {
	Request *Request `json:"request"`
}

type Record struct {
	CF *CF `json:"cf"`
}

// ViewerRequestEvent is the subset of the CloudFront trigger payload we read.
type ViewerRequestEvent struct {
	Records []Record `json:"Records"`
}

// URI returns the request uri of the first record, or false when any level of
// the path is absent.
func (e ViewerRequestEvent) URI() (string, bool) {
	if len(e.Records) == 0 {
		return "", false
	}
	cf := e.Records[0].CF
	if cf == nil || cf.Request == nil || cf.Request.URI == "" {
		return "", false
	}
	return cf.Request.URI, true
}

// Response is a CloudFront generated response.
type Response struct {
	Status  int     `json:"status"`
	Headers Headers `json:"headers"`
	Body    string  `json:"body"`
}

func toEdge(resp shortlink.Response) Response {
	return Response{Status: resp.Status, Headers: toHeaders(resp.Headers), Body: resp.Body}
}

func toHeaders(h http.Header) Headers {
	out := make(Headers, len(h))
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lower := strings.ToLower(k)
		for _, v := range h[k] {
			out[lower] = append(out[lower], Header{Key: k, Value: v})
		}
	}
	return out
}

type RedirectHandler struct {
	resolver *shortlink.Resolver
}

func NewRedirectHandler(resolver *shortlink.Resolver) *RedirectHandler {
	return &RedirectHandler{resolver: resolver}
}

// Handle never returns an error; CloudFront would turn one into a 502.
func (h *RedirectHandler) Handle(ctx context.Context, event ViewerRequestEvent) (Response, error) {
	uri, ok := event.URI()
	if !ok {
		slog.Warn("viewer request without uri", "records", len(event.Records))
		uri = ""
	}
	return toEdge(h.resolver.Resolve(ctx, shortlink.ParseCode(uri))), nil
}

type AllocateHandler struct {
	alloc *shortlink.Allocator
}

func NewAllocateHandler(alloc *shortlink.Allocator) *AllocateHandler {
	return &AllocateHandler{alloc: alloc}
}

// Handle reports failures inside the envelope so callers always get a body.
func (h *AllocateHandler) Handle(ctx context.Context, in shortlink.AllocateInput) (shortlink.Envelope, error) {
	res, err := h.alloc.Allocate(ctx, in.Request())
	if err != nil {
		env, status := shortlink.FailureEnvelope(err)
		slog.Warn("allocate failed", "status", status, "kind", shortlink.KindOf(err), "err", err)
		return env, nil
	}
	slog.Info("allocated", "code", res.Code, "expires_at", res.ExpiresAt)
	return shortlink.SuccessEnvelope(res), nil
}

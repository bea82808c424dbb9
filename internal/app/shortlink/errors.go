package shortlink

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every failure the allocator and resolver can report.
type Kind string

const (
	KindMissingRequiredField    Kind = "missing_required_field"
	KindInvalidField            Kind = "invalid_field"
	KindAliasAlreadyInUse       Kind = "alias_already_in_use"
	KindCodeGenerationExhausted Kind = "code_generation_exhausted"
	KindStoreError              Kind = "store_error"
	KindSignerError             Kind = "signer_error"
	KindNotFound                Kind = "not_found"
)

// Status maps a kind onto the HTTP status used at the transport edge.
func (k Kind) Status() int {
	switch k {
	case KindMissingRequiredField, KindInvalidField:
		return http.StatusBadRequest
	case KindAliasAlreadyInUse:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindCodeGenerationExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind and a human readable message. Err, when set, is the
// collaborator failure that caused it.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int { return e.Kind.Status() }

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// StoreError wraps a Record Store failure, passing its message through.
func StoreError(err error) *Error {
	return newError(KindStoreError, err, "store error: %v", err)
}

// SignerError wraps a Signer failure.
func SignerError(err error) *Error {
	return newError(KindSignerError, err, "signer error: %v", err)
}

// KindOf returns the kind of err, or KindStoreError for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreError
}

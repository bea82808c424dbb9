package shortlink

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	MsgMissingCode = "required data not supplied"
	MsgNotFound    = "address not found"
	RedirectBody   = "Redirecting..."
)

// Response is the transport-neutral outcome of a resolution.
type Response struct {
	Status  int
	Headers http.Header
	Body    string
}

// Location returns the redirect target, empty for error responses.
func (r Response) Location() string {
	return r.Headers.Get("Location")
}

// baseHeaders is shared by the success and error paths.
func baseHeaders() http.Header {
	h := make(http.Header, 7)
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Allow", "GET, OPTIONS")
	h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "*")
	return h
}

// PreflightHeaders answers CORS preflight for the redirect route.
func PreflightHeaders() http.Header {
	return baseHeaders()
}

func redirectResponse(target string) Response {
	h := baseHeaders()
	h.Set("Location", target)
	if u, err := url.Parse(target); err == nil {
		h.Set("Host", u.Host)
	} else {
		h.Set("Host", "")
	}
	return Response{Status: http.StatusFound, Headers: h, Body: RedirectBody}
}

func errorResponse(status int, message string) Response {
	return Response{Status: status, Headers: baseHeaders(), Body: message}
}

// NotFoundResponse is the 404 the resolver returns for an unknown code.
func NotFoundResponse() Response {
	return errorResponse(KindNotFound.Status(), MsgNotFound)
}

func errorFrom(err *Error) Response {
	return errorResponse(err.Status(), err.Error())
}

// ParseCode extracts the code from a request path: everything after the first "/".
func ParseCode(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

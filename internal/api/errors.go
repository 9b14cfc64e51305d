package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind buckets every failure the API client can produce. The sync layer
// and the UI only ever branch on the kind, never on the raw cause.
type ErrorKind string

const (
	KindUnreachable  ErrorKind = "network_unreachable"
	KindTimeout      ErrorKind = "request_timeout"
	KindServer       ErrorKind = "server_unavailable" // 5xx
	KindUnauthorized ErrorKind = "unauthorized"       // 401/403
	KindNotFound     ErrorKind = "not_found"
	KindValidation   ErrorKind = "validation"         // 4xx field-level rejections
	KindDecode       ErrorKind = "decode_failure"
	KindUnknown      ErrorKind = "unknown"
)

// Error is the normalized API error. Message is short and human-readable;
// the wrapped cause is preserved for logging.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int // HTTP status code, 0 for transport-level failures
	cause   error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Retryable reports whether the failure is transient (connectivity loss,
// timeout, 5xx) as opposed to terminal (auth, validation, not-found).
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindUnreachable, KindTimeout, KindServer:
		return true
	}
	return false
}

// IsUnreachable reports whether err is a network-layer failure, i.e. the
// request never produced an HTTP response. The repository read path falls
// back to the cache on these.
func IsUnreachable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == KindUnreachable || apiErr.Kind == KindTimeout
	}
	return false
}

// transportError classifies a failure from http.Client.Do.
func transportError(err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: "request timed out", cause: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, Message: "request timed out", cause: err}
	default:
		return &Error{Kind: KindUnreachable, Message: "server is unreachable", cause: err}
	}
}

// statusError classifies a non-2xx HTTP response.
func statusError(status int, body string) *Error {
	msg := body
	if msg == "" {
		msg = http.StatusText(status)
	}
	e := &Error{Status: status, Message: msg}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindUnauthorized
		e.Message = "authentication failed"
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status >= 500:
		e.Kind = KindServer
		e.Message = "server is unavailable"
	case status >= 400:
		e.Kind = KindValidation
	default:
		e.Kind = KindUnknown
	}
	return e
}

// decodeError wraps a JSON decoding failure on an otherwise successful response.
func decodeError(err error) *Error {
	return &Error{Kind: KindDecode, Message: "could not decode server response", cause: err}
}

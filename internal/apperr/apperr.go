// Package apperr defines the error kinds surfaced at the service boundary
// and their mapping onto HTTP status codes.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

// Kind classifies a failure for the caller.
type Kind int

const (
	// KindUpstream covers generation API and data store failures.
	KindUpstream Kind = iota
	// KindValidation is bad or missing request input.
	KindValidation
	// KindFetch means the text extractor could not retrieve the page.
	KindFetch
	// KindParse means a model reply could not be read as the required JSON shape.
	KindParse
	// KindTimeout means the caller's deadline expired.
	KindTimeout
	// KindNotFound means a requested record does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindFetch:
		return "fetch"
	case KindParse:
		return "parse"
	case KindTimeout:
		return "timeout"
	case KindNotFound:
		return "not_found"
	default:
		return "upstream"
	}
}

// Error is a classified failure. Msg is safe to show to callers.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Msg
	case e.Msg == "":
		return e.Err.Error()
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind without a cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap classifies err under kind.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Validation reports bad request input.
func Validation(msg string) *Error {
	return New(KindValidation, msg)
}

// NotFound reports a missing record.
func NotFound(msg string) *Error {
	return New(KindNotFound, msg)
}

// FromContext classifies err as KindTimeout when the caller's deadline has
// expired, and as kind otherwise.
func FromContext(ctx context.Context, kind Kind, err error, msg string) *Error {
	if IsDeadline(ctx, err) {
		return Wrap(KindTimeout, err, msg)
	}
	return Wrap(kind, err, msg)
}

// IsDeadline reports whether err or ctx indicate an expired deadline.
func IsDeadline(ctx context.Context, err error) bool {
	if ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	return err != nil && errors.Is(err, context.DeadlineExceeded)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUpstream when err carries no classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Message returns the caller-safe message of the first *Error in err's
// chain, or fallback when err carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return fallback
}

// HTTPStatus maps a kind onto the status code returned by the API.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

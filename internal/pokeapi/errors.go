package pokeapi

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed request.
type ErrorKind string

const (
	KindNotFound  ErrorKind = "NOT_FOUND" // Any non-2xx response
	KindTransport ErrorKind = "TRANSPORT" // Request never produced a response
	KindDecode    ErrorKind = "DECODE"    // Response body was not what we expected
)

// ErrNotFound matches every non-2xx response via errors.Is.
var ErrNotFound = errors.New("pokeapi: not found")

// Error is returned by every Client method.
type Error struct {
	Kind   ErrorKind
	Status int // HTTP status, 0 when there was no response
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s returned %d", e.Kind, e.URL, e.Status)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.URL, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNotFound) match not-found responses.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// IsKind checks if err is a pokeapi error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

func notFound(url string, status int) *Error {
	return &Error{Kind: KindNotFound, Status: status, URL: url}
}

func transport(url string, err error) *Error {
	return &Error{Kind: KindTransport, URL: url, Err: err}
}

func decode(url string, err error) *Error {
	return &Error{Kind: KindDecode, URL: url, Err: err}
}

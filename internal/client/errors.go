package client

import (
	"errors"
	"fmt"
)

// ErrStateNotFound means the page carries no embedded product state, i.e. it
// is not a product page. Callers skip the URL instead of failing.
var ErrStateNotFound = errors.New("embedded product state not found")

// TransportError is a network failure or a non-2xx response.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %s failed: HTTP %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is malformed JSON where JSON was expected.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("failed to decode JSON: %v", e.Err)
	}
	return fmt.Sprintf("failed to decode JSON from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

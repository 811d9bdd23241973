// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrNotFound          = errors.New("upstream: resource not found")
	ErrUpstreamFailure   = errors.New("upstream: service returned a failure envelope")
	ErrBadResponse       = errors.New("upstream: invalid response format or malformed data")
	ErrUnavailable       = errors.New("upstream: host unreachable or transport failure")
	ErrMissingSearchTerm = errors.New("api: search requires a project UUID")
)

// APIError wraps a sentinel error with request context.
type APIError struct {
	Sentinel  error
	Operation string
	Status    int
	Code      int // upstream failure code, when present
	Reason    string
	Err       error // nested lower-level error (e.g. net.Error)
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Code > 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Sentinel
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package adapter

import "errors"

// Sentinel errors mapped from HTTP status codes by mapHTTPError. Match with
// [errors.Is].
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrUnprocessable       = errors.New("unprocessable payload")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")

	// ErrTransport wraps network-level failures (DNS, timeouts, resets)
	// where no HTTP status was received.
	ErrTransport = errors.New("transport failure")
)

// IsTransient reports whether err is worth retrying with backoff: network
// failures, throttling and server-side 5xx answers.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrTooManyRequests) ||
		errors.Is(err, ErrInternalServerError) ||
		errors.Is(err, ErrBadGateway) ||
		errors.Is(err, ErrServiceUnavailable)
}

// IsFatal reports whether err can never succeed on retry: malformed payloads
// and authorization failures. The orchestrator discards such operations
// immediately and surfaces them to the user.
func IsFatal(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUnprocessable)
}

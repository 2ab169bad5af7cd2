package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// circuitBreakerTypeKey is the typeKey the gallery returns when its load
// protection has temporarily rejected the request. It is the only
// structured error worth retrying; the condition clears on its own.
const circuitBreakerTypeKey = "CircuitBreakerExceededExecutionLimitException"

// EndpointError is the structured error body the gallery returns alongside
// a non-success HTTP status. The typeKey field identifies the server-side
// exception class.
type EndpointError struct {
	// StatusCode is the HTTP status of the failed response.
	StatusCode int `json:"-"`

	// TypeKey identifies the server-side error class. Empty when the error
	// body could not be decoded.
	TypeKey string `json:"typeKey"`

	// Message is the human-readable error message, when present.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *EndpointError) Error() string {
	if e.TypeKey == "" {
		return fmt.Sprintf("gallery: endpoint returned status %d with undecodable error body", e.StatusCode)
	}
	return fmt.Sprintf("gallery: endpoint error %s (status %d): %s", e.TypeKey, e.StatusCode, e.Message)
}

// IsCircuitBreaker reports whether the error is the gallery's circuit
// breaker rejection.
func (e *EndpointError) IsCircuitBreaker() bool {
	return e.TypeKey == circuitBreakerTypeKey
}

// disposition is the outcome of classifying a failed page request.
type disposition int

const (
	// dispositionFatal means the failure cannot be cured by retrying;
	// the crawl must stop and surface the error.
	dispositionFatal disposition = iota

	// dispositionRetry means the failure is transient and the same page
	// request should be reissued after a backoff.
	dispositionRetry
)

// classify decides whether a failed page request should be retried.
//
// Circuit breaker rejections and transport-level failures (connection
// errors, timeouts) are transient. Any other structured gallery error
// means the request itself is broken, so retrying the same request cannot
// succeed; the crawl stops and surfaces it. Context cancellation is never
// retried.
func classify(err error) disposition {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return dispositionFatal
	}

	var endpointErr *EndpointError
	if errors.As(err, &endpointErr) {
		if endpointErr.IsCircuitBreaker() {
			return dispositionRetry
		}
		return dispositionFatal
	}

	// A malformed success response will not fix itself on retry.
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return dispositionFatal
	}

	// Anything else is a transport failure and transient by default.
	return dispositionRetry
}

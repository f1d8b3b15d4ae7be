package client

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fetch outcome taxonomy. Callers match them with
// errors.Is; APIError carries the HTTP detail alongside.
var (
	// ErrInvalidEndpoint is returned when the endpoint does not form a valid URL.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimited is returned for 429 responses.
	ErrRateLimited = errors.New("rate limited by API")

	// ErrServer is returned for 5xx responses.
	ErrServer = errors.New("server error")

	// ErrHTTP is returned for any other non-2xx response.
	ErrHTTP = errors.New("unexpected HTTP status")

	// ErrNetwork is returned for transport-level failures.
	ErrNetwork = errors.New("network failure")

	// ErrDecoding is returned when a 2xx body cannot be decoded.
	ErrDecoding = errors.New("decoding failed")

	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of fetch errors.
type ErrorClass string

const (
	// ErrorClassInvalidEndpoint represents malformed endpoint inputs.
	ErrorClassInvalidEndpoint ErrorClass = "invalid_endpoint"

	// ErrorClassNotFound represents 404 responses.
	ErrorClassNotFound ErrorClass = "not_found"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassClient represents other non-2xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassNetwork represents transport failures.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecoding represents decode failures of successful responses.
	ErrorClassDecoding ErrorClass = "decoding"
)

// APIError represents a classified fetch failure with HTTP context.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Endpoint   string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("pokeapi %s error (status %d) for %s: %v",
			e.Class, e.StatusCode, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("pokeapi %s error for %s: %v", e.Class, e.Endpoint, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-2xx HTTP status to its error class and sentinel.
func classifyStatus(statusCode int) (ErrorClass, error) {
	switch {
	case statusCode == 404:
		return ErrorClassNotFound, ErrNotFound
	case statusCode == 429:
		return ErrorClassRateLimit, ErrRateLimited
	case statusCode >= 500 && statusCode < 600:
		return ErrorClassServer, ErrServer
	default:
		return ErrorClassClient, ErrHTTP
	}
}

// Classify returns the error class of a fetch error, or "" for nil and
// unclassified errors.
func Classify(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class
	}
	switch {
	case errors.Is(err, ErrInvalidEndpoint):
		return ErrorClassInvalidEndpoint
	case errors.Is(err, ErrDecoding):
		return ErrorClassDecoding
	case errors.Is(err, ErrNetwork):
		return ErrorClassNetwork
	}
	return ""
}

// RecoverySuggestion returns a short, user-facing hint for recovering from
// a fetch error. Empty when no suggestion applies.
func RecoverySuggestion(err error) string {
	switch Classify(err) {
	case ErrorClassNotFound:
		return "check the id or name and try again"
	case ErrorClassRateLimit:
		return "wait a moment and retry"
	case ErrorClassServer:
		return "the API may be down; retry later"
	case ErrorClassNetwork:
		return "check connectivity and retry"
	case ErrorClassInvalidEndpoint:
		return "verify the configured base URL"
	default:
		return ""
	}
}

// shouldRetry determines if an error class is worth retrying.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		// Not-found and other 4xx outcomes are stable; retrying wastes
		// rate limiter budget.
		return false
	}
}

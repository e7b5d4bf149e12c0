package provider

import (
	"fmt"
	"strings"
)

// ConfigError reports an unusable provider setup: no credentials at all, or
// an explicit request for a provider that is unknown or unconfigured. Fatal;
// the fallback chain never runs.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return e.Reason }

// AuthError is a credential rejection (HTTP 401).
type AuthError struct {
	Provider ID
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication rejected, check the API key", e.Provider)
}

// RateLimitError is an HTTP 429.
type RateLimitError struct {
	Provider ID
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited", e.Provider)
}

// ServerError is any 5xx from the backend.
type ServerError struct {
	Provider ID
	Status   int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server error (status %d)", e.Provider, e.Status)
}

// TimeoutError is a request that hit the transport deadline.
type TimeoutError struct {
	Provider ID
	Cause    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: request timed out: %v", e.Provider, e.Cause)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// ExtractionError means the response arrived but the vendor-specific text
// path was absent. Local and recoverable; the chain moves on.
type ExtractionError struct {
	Provider ID
	Path     string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: response has no content at %q", e.Provider, e.Path)
}

// APIError covers every other request failure: unexpected statuses,
// transport errors, unbuildable requests.
type APIError struct {
	Provider ID
	Status   int
	Body     string
	Cause    error
}

func (e *APIError) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.Status)
	default:
		return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Cause)
	}
}

func (e *APIError) Unwrap() error { return e.Cause }

// Attempt records one provider's failure inside a fallback chain.
type Attempt struct {
	Provider ID
	Err      error
}

// AllFailedError means every configured adapter was tried and none
// succeeded. It carries the per-provider causes in the order they were
// attempted. This is the only failure that escapes the generation pipeline.
type AllFailedError struct {
	Attempts []Attempt
}

func (e *AllFailedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Provider, a.Err))
	}
	return "all providers failed: " + strings.Join(parts, "; ")
}

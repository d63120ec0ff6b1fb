package ports

import (
	"errors"
	"fmt"
)

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrConfigurationError = errors.New("invalid or missing configuration")
	ErrNotSupported       = errors.New("operation not supported by this adapter")

	// Pipeline error kinds
	ErrValidation = errors.New("validation failed")
	ErrProvider   = errors.New("market data provider request failed")
	ErrCache      = errors.New("cache store operation failed")
	ErrNoData     = errors.New("no data available for request")

	// Provider Specific Errors
	ErrProviderUnavailable  = errors.New("market data provider is unavailable")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("provider authentication failed (check API keys)")
)

// ValidationError reports a malformed or missing required input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ProviderError reports a failed upstream fetch.
type ProviderError struct {
	Provider string
	Op       string
	Symbol   string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Provider, e.Op, e.Symbol, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrProvider) hold for every ProviderError.
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// CacheError reports a failed cache read or write. It never reaches callers of
// the gateway, which degrade to a miss or skip the write instead.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCache) hold for every CacheError.
func (e *CacheError) Is(target error) bool { return target == ErrCache }

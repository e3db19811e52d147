package provider

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"docpilot/internal/domain"
)

// RateLimitError indicates a provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        fmt.Errorf("%w: %w", domain.ErrProvider, err),
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// ClassifyCallError distinguishes a deadline hit from an ordinary provider
// failure so the caller can surface PROVIDER_TIMEOUT separately.
func ClassifyCallError(providerName string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", providerName, domain.ErrProviderTimeout, err)
	}
	if errors.Is(err, domain.ErrProvider) || errors.Is(err, domain.ErrProviderTimeout) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", providerName, domain.ErrProvider, err)
}

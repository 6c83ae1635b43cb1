package core

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy determines transport-level retry behavior inside one attempt.
type RetryPolicy interface {
	// NextDelay returns the delay before the next retry and whether to retry.
	// retry starts at 0 for the first retry after the initial failure.
	NextDelay(retry int, err error) (delay time.Duration, ok bool)
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxRetries int           // Upper bound on retries (default: 2)
	BaseDelay  time.Duration // Initial delay before first retry (default: 250ms)
	MaxDelay   time.Duration // Maximum delay cap (default: 2s)
	Jitter     float64       // Jitter factor 0.0-1.0 (default: 0.2)
}

// DefaultRetryPolicy returns exponential backoff with jitter, at most 2 retries.
func DefaultRetryPolicy() RetryPolicy {
	return NewRetryPolicy(RetryConfig{
		MaxRetries: 2,
		BaseDelay:  250 * time.Millisecond,
		MaxDelay:   2 * time.Second,
		Jitter:     0.2,
	})
}

// NewRetryPolicy creates a retry policy with the given configuration.
func NewRetryPolicy(cfg RetryConfig) RetryPolicy {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.BaseDelay < 0 {
		cfg.BaseDelay = 250 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 2 * time.Second
	}
	if cfg.Jitter < 0 || cfg.Jitter > 1 {
		cfg.Jitter = 0.2
	}
	return &exponentialBackoff{cfg: cfg}
}

type exponentialBackoff struct {
	cfg RetryConfig
}

func (e *exponentialBackoff) NextDelay(retry int, err error) (time.Duration, bool) {
	if retry >= e.cfg.MaxRetries {
		return 0, false
	}
	if !isRetryable(err) {
		return 0, false
	}

	delay := float64(e.cfg.BaseDelay) * math.Pow(2, float64(retry))

	if e.cfg.Jitter > 0 {
		jitterRange := delay * e.cfg.Jitter
		delay += (rand.Float64()*2 - 1) * jitterRange
	}

	if delay > float64(e.cfg.MaxDelay) {
		delay = float64(e.cfg.MaxDelay)
	}
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay), true
}

// NoDelayRetryPolicy retries up to MaxRetries times without waiting.
type NoDelayRetryPolicy struct {
	MaxRetries int
}

// NextDelay implements RetryPolicy.
func (p NoDelayRetryPolicy) NextDelay(retry int, err error) (time.Duration, bool) {
	if retry >= p.MaxRetries || !isRetryable(err) {
		return 0, false
	}
	return 0, true
}

// isRetryable reports whether a failed transport exchange may be repeated.
// GET is idempotent, so every failure the service or network produced is
// retried. Cancellation, malformed requests and bodies that arrived but are
// not images are not.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrClientSideNetwork) || errors.Is(err, ErrInvalidResponse) {
		return false
	}
	return true
}

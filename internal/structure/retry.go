package structure

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// RetryConfig bounds the retry wrapper. MaxAttempts counts the first call.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	if c.BaseDelay <= 0 {
		return 0
	}
	base := c.BaseDelay << uint(attempt)
	if base <= 0 || (c.MaxDelay > 0 && base > c.MaxDelay) {
		base = c.MaxDelay
	}
	if half := int64(base) / 2; half > 0 {
		return base + time.Duration(rand.Int64N(half))
	}
	return base
}

type retryingService struct {
	next Service
	cfg  RetryConfig
	log  *slog.Logger
}

// WithRetry wraps svc so that retryable errors are retried with backoff up to
// cfg.MaxAttempts calls in total. Other errors and successful responses,
// including empty or malformed ones, are returned after one call.
func WithRetry(svc Service, cfg RetryConfig, log *slog.Logger) Service {
	if cfg.MaxAttempts <= 1 {
		return svc
	}
	return &retryingService{next: svc, cfg: cfg, log: log}
}

func (r *retryingService) Model() string { return r.next.Model() }

func (r *retryingService) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.cfg.Backoff(attempt - 1)
			r.log.Warn("retrying structuring call", "attempt", attempt+1, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}
		out, err := r.next.Complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if !IsRetryable(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

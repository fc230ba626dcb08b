// Package structure turns text chunks into chapter outlines by calling a
// text-to-structure language model, and merges the per-chunk results.
package structure

import (
	"context"
	"fmt"
)

// Service is one structuring backend: a prompt in, the model's raw text out.
// Implementations return *RetryableError for transient failures.
type Service interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// RetryableError indicates a transient failure that can be retried.
// StatusCode is zero for transport failures.
type RetryableError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RetryableError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("retryable transport error: %s", truncate(e.Message, 200))
	}
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func (e *RetryableError) Unwrap() error { return e.Err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back off to a rune boundary.
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

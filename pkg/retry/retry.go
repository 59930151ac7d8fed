// Package retry runs calls to remote services with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxRetries       int
	InitialDelay     time.Duration
	MaxDelay         time.Duration
	Multiplier       float64
	JitterFactor     float64 // 0.0-1.0, +/- share of each delay
	MaxSameErrorType int     // After N consecutive same-type errors, treat as permanent (0 disables)
}

// DefaultConfig returns the settings used for issue tracker API pages:
// 4 retries starting at 500ms, capped at 30s, doubling each time, with 10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:       4,
		InitialDelay:     500 * time.Millisecond,
		MaxDelay:         30 * time.Second,
		Multiplier:       2.0,
		JitterFactor:     0.1,
		MaxSameErrorType: 5,
	}
}

// RetryableError is implemented by errors that know whether they are transient.
type RetryableError interface {
	error
	IsRetryable() bool
}

// DelayHint is implemented by errors that carry a server-provided wait,
// such as a rate limit reset time.
type DelayHint interface {
	RetryAfter() time.Duration
}

func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// nextWait returns how long to sleep after err. A server hint wins over the
// backoff delay but is still capped at MaxDelay.
func nextWait(cfg *Config, delay time.Duration, err error) time.Duration {
	wait := applyJitter(delay, cfg.JitterFactor)
	var hint DelayHint
	if errors.As(err, &hint) {
		if d := hint.RetryAfter(); d > 0 {
			wait = d
		}
	}
	if cfg.MaxDelay > 0 && wait > cfg.MaxDelay {
		wait = cfg.MaxDelay
	}
	return wait
}

func grow(cfg *Config, delay time.Duration) time.Duration {
	delay = time.Duration(float64(delay) * cfg.Multiplier)
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}

// Do executes fn until it succeeds or retries are exhausted, retrying every error.
// Returns the last error, or ctx.Err() if the context ends while waiting.
func Do(ctx context.Context, cfg *Config, fn func() error) error {
	_, err := do(ctx, cfg, false, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoIfRetryable only retries transient errors; permanent ones are returned at once.
// After MaxSameErrorType consecutive failures of the same kind it gives up early.
func DoIfRetryable(ctx context.Context, cfg *Config, fn func() error) error {
	_, err := do(ctx, cfg, true, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoIfRetryableWithResult is DoIfRetryable for functions that return a value.
func DoIfRetryableWithResult[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	return do(ctx, cfg, true, fn)
}

func do[T any](ctx context.Context, cfg *Config, onlyTransient bool, fn func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var result T
	var lastErr error
	var lastErrorType string
	sameErrorCount := 0
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		r, err := fn()
		if err == nil {
			return r, nil
		}
		result, lastErr = r, err

		if onlyTransient {
			if !IsRetryable(err) {
				return result, err
			}
			errorType := classifyErrorType(err)
			if errorType == lastErrorType {
				sameErrorCount++
				if cfg.MaxSameErrorType > 0 && sameErrorCount >= cfg.MaxSameErrorType {
					return result, fmt.Errorf("repeated error (%d times, type=%s): %w", sameErrorCount, errorType, err)
				}
			} else {
				sameErrorCount = 1
				lastErrorType = errorType
			}
		}

		if attempt < cfg.MaxRetries {
			timer := time.NewTimer(nextWait(cfg, delay, err))
			select {
			case <-timer.C:
				delay = grow(cfg, delay)
			case <-ctx.Done():
				timer.Stop()
				return result, ctx.Err()
			}
		}
	}

	return result, lastErr
}

var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"timeout",
	"timed out",
	"temporary failure",
	"network is unreachable",
	"unexpected eof",
	"429",
	"500",
	"502",
	"503",
	"504",
	"rate limit",
	"secondary rate limit",
	"service unavailable",
	"too many requests",
}

// IsRetryable reports whether err is transient.
// Errors implementing RetryableError decide for themselves; context cancellation
// is never retried; everything else is matched against known transient messages.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var r RetryableError
	if errors.As(err, &r) {
		return r.IsRetryable()
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// classifyErrorType buckets an error so repeated failures of the same kind can be detected.
func classifyErrorType(err error) string {
	if err == nil {
		return "nil"
	}

	errStr := strings.ToLower(err.Error())
	for _, code := range []string{"503", "502", "504", "500", "429", "404", "403", "401", "400"} {
		if strings.Contains(errStr, code) {
			return code
		}
	}

	switch {
	case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "connection reset"):
		return "connection"
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "timed out"):
		return "timeout"
	case strings.Contains(errStr, "rate limit"), strings.Contains(errStr, "too many requests"):
		return "rate_limit"
	case strings.Contains(errStr, "broken pipe"):
		return "broken_pipe"
	}
	return "unknown"
}

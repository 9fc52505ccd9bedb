package grading

import (
	"context"
	"errors"
	"time"

	"examgrade/grading/internal/llm"
)

// retryPolicy bounds retries of transient provider failures. Each attempt
// runs under its own timeout; permanent failures surface immediately.
type retryPolicy struct {
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
}

// call runs fn with per-attempt timeouts, retrying transient provider
// errors with exponential backoff. The parent ctx cancels the whole call.
func call[T any](ctx context.Context, policy retryPolicy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= policy.maxRetries; attempt++ {
		if attempt > 0 {
			delay := policy.backoff << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if policy.timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.timeout)
		}

		result, err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, err
		}
		if !isTransient(err) {
			return zero, err
		}
	}

	return zero, lastErr
}

// isTransient reports whether an error is worth another attempt. Attempt
// timeouts count as transient even when the provider did not classify them.
func isTransient(err error) bool {
	var provErr *llm.ProviderError
	if errors.As(err, &provErr) {
		return provErr.Transient()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

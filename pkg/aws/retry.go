package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/versus-control/cloudformation-agent/internal/logging"
)

// RetryOperation runs fn with exponential backoff: after failed
// attempt n (counting from zero) it waits baseDelay * 2^n before the
// next try. Non-retryable failures (validation, credential,
// permission, already-exists classes) return immediately. Every retry
// is logged.
func RetryOperation(ctx context.Context, logger *logging.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !IsRetryable(lastErr) {
			logger.WithField("operation", operation).WithError(lastErr).Warn("Operation failed with non-retryable error")
			return lastErr
		}

		if attempt == maxRetries {
			break
		}

		delay := baseDelay << uint(attempt) // baseDelay * 2^attempt
		logger.LogRetryAttempt(operation, attempt+1, maxRetries, delay, lastErr)

		select {
		case <-ctx.Done():
			return fmt.Errorf("operation %s canceled while waiting to retry: %w", operation, ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("operation %s failed after %d attempts: %w", operation, maxRetries+1, lastErr)
}

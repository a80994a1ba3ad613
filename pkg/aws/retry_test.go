package aws

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/smithy-go"

	"github.com/versus-control/cloudformation-agent/internal/logging"
)

func TestRetryOperationSucceedsFirstTry(t *testing.T) {
	logger := logging.NewLogger("test", "error")

	calls := 0
	err := RetryOperation(context.Background(), logger, "describe-stack", 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryOperationRecoversFromThrottling(t *testing.T) {
	logger := logging.NewLogger("test", "error")

	calls := 0
	err := RetryOperation(context.Background(), logger, "create-stack", 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &smithy.GenericAPIError{Code: "Throttling", Message: "Rate exceeded"}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retries, got: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryOperationStopsOnNonRetryable(t *testing.T) {
	logger := logging.NewLogger("test", "error")

	calls := 0
	cause := &smithy.GenericAPIError{Code: "AccessDenied", Message: "not authorized"}
	err := RetryOperation(context.Background(), logger, "create-stack", 5, time.Millisecond, func(ctx context.Context) error {
		calls++
		return cause
	})

	if calls != 1 {
		t.Errorf("non-retryable error should stop after 1 call, got %d", calls)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected the original error back, got: %v", err)
	}
}

func TestRetryOperationExhaustsAttempts(t *testing.T) {
	logger := logging.NewLogger("test", "error")

	calls := 0
	err := RetryOperation(context.Background(), logger, "update-stack", 2, time.Millisecond, func(ctx context.Context) error {
		calls++
		return &smithy.GenericAPIError{Code: "Throttling", Message: "Rate exceeded"}
	})

	if calls != 3 {
		t.Errorf("maxRetries=2 should make 3 attempts, got %d", calls)
	}
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "failed after 3 attempts") {
		t.Errorf("error should report the attempt count, got: %v", err)
	}
}

func TestRetryOperationBackoffDoubles(t *testing.T) {
	logger := logging.NewLogger("test", "error")

	base := 10 * time.Millisecond
	calls := 0
	start := time.Now()
	err := RetryOperation(context.Background(), logger, "delete-stack", 2, base, func(ctx context.Context) error {
		calls++
		return &smithy.GenericAPIError{Code: "Throttling", Message: "Rate exceeded"}
	})
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected an error")
	}
	// Waits are base then 2*base, so at least 30ms total.
	if elapsed < 3*base {
		t.Errorf("expected at least %v of backoff, got %v", 3*base, elapsed)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestRetryOperationHonorsContextCancel(t *testing.T) {
	logger := logging.NewLogger("test", "error")

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- RetryOperation(ctx, logger, "create-stack", 5, time.Minute, func(ctx context.Context) error {
			calls++
			return &smithy.GenericAPIError{Code: "Throttling", Message: "Rate exceeded"}
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled in chain, got: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call before cancel, got %d", calls)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RetryOperation did not return after context cancel")
	}
}

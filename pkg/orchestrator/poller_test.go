package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/mocks"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

func TestWaitForStackCompletionPollsUntilTerminal(t *testing.T) {
	client := mocks.NewMockCloudFormationClient(logging.NewLogger("test", "error"))
	orchestrator := newTestOrchestrator(t, client)

	client.ScriptStatuses("demo",
		types.StackStatusCreateInProgress,
		types.StackStatusCreateInProgress,
		types.StackStatusCreateComplete,
	)

	var observed []string
	result, err := orchestrator.WaitForStackCompletion(context.Background(), "demo", types.PollOptions{
		PollInterval: 0,
		MaxWaitTime:  5 * time.Second,
		OnCheck: func(check types.StatusCheck) {
			observed = append(observed, check.Status)
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.IsComplete {
		t.Error("result must be complete")
	}
	if !result.IsSuccessful {
		t.Error("CREATE_COMPLETE is a success status")
	}
	if result.FinalStatus != types.StackStatusCreateComplete {
		t.Errorf("finalStatus = %s", result.FinalStatus)
	}
	if result.Checks != 3 {
		t.Errorf("checks = %d, want exactly 3", result.Checks)
	}
	if client.DescribeCalls != 3 {
		t.Errorf("describe calls = %d, want exactly 3", client.DescribeCalls)
	}
	want := []string{
		types.StackStatusCreateInProgress,
		types.StackStatusCreateInProgress,
		types.StackStatusCreateComplete,
	}
	if len(observed) != len(want) {
		t.Fatalf("observed %d checks, want %d", len(observed), len(want))
	}
	for i := range want {
		if observed[i] != want[i] {
			t.Errorf("check %d = %s, want %s", i, observed[i], want[i])
		}
	}
}

func TestWaitForStackCompletionTimesOut(t *testing.T) {
	client := mocks.NewMockCloudFormationClient(logging.NewLogger("test", "error"))
	orchestrator := newTestOrchestrator(t, client)

	// The status never leaves CREATE_IN_PROGRESS.
	client.ScriptStatuses("stuck", types.StackStatusCreateInProgress)

	start := time.Now()
	result, err := orchestrator.WaitForStackCompletion(context.Background(), "stuck", types.PollOptions{
		PollInterval: 10 * time.Second,
		MaxWaitTime:  1 * time.Second,
	})
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.IsComplete {
		t.Error("a timed-out wait is not complete")
	}
	if result.FinalStatus != types.StackStatusTimeout {
		t.Errorf("finalStatus = %s, want TIMEOUT", result.FinalStatus)
	}
	// The sleep is capped at the remaining budget, so a 10s interval
	// still returns right around the 1s limit.
	if elapsed > 2*time.Second {
		t.Errorf("timeout took %s, want roughly 1s", elapsed)
	}
	if result.Checks == 0 {
		t.Error("at least one check must happen before the budget runs out")
	}
}

func TestWaitForStackCompletionMissingStackIsTerminal(t *testing.T) {
	client := mocks.NewMockCloudFormationClient(logging.NewLogger("test", "error"))
	orchestrator := newTestOrchestrator(t, client)

	result, err := orchestrator.WaitForStackCompletion(context.Background(), "never-existed", types.PollOptions{
		PollInterval: 0,
		MaxWaitTime:  time.Second,
	})
	if err != nil {
		t.Fatalf("a missing stack is an observation, not an error: %v", err)
	}

	if !result.IsComplete {
		t.Error("NOT_FOUND is terminal")
	}
	if result.IsSuccessful {
		t.Error("NOT_FOUND is not a success by itself")
	}
	if result.FinalStatus != types.StackStatusNotFound {
		t.Errorf("finalStatus = %s", result.FinalStatus)
	}
}

func TestWaitForStackCompletionSurfacesStatusReason(t *testing.T) {
	client := mocks.NewMockCloudFormationClient(logging.NewLogger("test", "error"))
	orchestrator := newTestOrchestrator(t, client)

	stack := client.AddManagedStack("broken", nil)
	stack.StatusReason = "Resource creation cancelled"
	client.ScriptStatuses("broken",
		types.StackStatusCreateInProgress,
		types.StackStatusRollbackComplete,
	)

	result, err := orchestrator.WaitForStackCompletion(context.Background(), "broken", types.PollOptions{
		PollInterval: 0,
		MaxWaitTime:  time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.IsSuccessful {
		t.Error("ROLLBACK_COMPLETE is not a success")
	}
	if result.StatusReason != "Resource creation cancelled" {
		t.Errorf("statusReason = %q", result.StatusReason)
	}
}

func TestWaitForStackCompletionHonorsContext(t *testing.T) {
	client := mocks.NewMockCloudFormationClient(logging.NewLogger("test", "error"))
	orchestrator := newTestOrchestrator(t, client)

	client.ScriptStatuses("slow", types.StackStatusCreateInProgress)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := orchestrator.WaitForStackCompletion(ctx, "slow", types.PollOptions{
		PollInterval: 10 * time.Second,
		MaxWaitTime:  30 * time.Second,
	})
	if err == nil {
		t.Fatal("expected a context error")
	}
	if ctx.Err() == nil {
		t.Error("context should be cancelled")
	}
}

func TestWaitForStackCompletionDefaultsMaxWait(t *testing.T) {
	client := mocks.NewMockCloudFormationClient(logging.NewLogger("test", "error"))
	orchestrator := newTestOrchestrator(t, client)

	client.ScriptStatuses("demo", types.StackStatusCreateComplete)

	result, err := orchestrator.WaitForStackCompletion(context.Background(), "demo", types.PollOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsSuccessful {
		t.Error("first poll already observes the terminal status")
	}
	if result.Checks != 1 {
		t.Errorf("checks = %d, want 1", result.Checks)
	}
}

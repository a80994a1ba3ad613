package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/mocks"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

func TestDescribeStackOperation(t *testing.T) {
	client := mocks.NewMockCloudFormationClient(logging.NewLogger("test", "error"))
	orchestrator := newTestOrchestrator(t, client)

	client.AddManagedStack("inspect-me", map[string]string{
		types.ManagedByTagKey:    types.ManagedByTagValue,
		types.ResourceTypeTagKey: "AWS::S3::Bucket",
	})

	result := orchestrator.Execute(context.Background(), types.OperationRequest{
		Operation: types.OperationDescribeStack,
		StackName: "inspect-me",
	})

	if result.Status != types.StatusCompleted {
		t.Fatalf("status = %s (errors: %v)", result.Status, result.Errors)
	}
	if result.Stack == nil {
		t.Fatal("expected stack in the result")
	}
	if result.Stack.StackName != "inspect-me" {
		t.Errorf("stackName = %s", result.Stack.StackName)
	}
	if result.Stack.Status != types.StackStatusCreateComplete {
		t.Errorf("status = %s", result.Stack.Status)
	}
}

func TestDescribeStackOperationRequiresName(t *testing.T) {
	client := mocks.NewMockCloudFormationClient(logging.NewLogger("test", "error"))
	orchestrator := newTestOrchestrator(t, client)

	result := orchestrator.Execute(context.Background(), types.OperationRequest{
		Operation: types.OperationDescribeStack,
	})

	if result.Status != types.StatusValidationOnly {
		t.Fatalf("status = %s, want validation-only", result.Status)
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "stackName") {
		t.Errorf("expected a stackName error, got %v", result.Errors)
	}
	if client.DescribeCalls != 0 {
		t.Error("no AWS call may happen when validation fails")
	}
}

func TestDescribeStackEventsOperation(t *testing.T) {
	client := mocks.NewMockCloudFormationClient(logging.NewLogger("test", "error"))
	orchestrator := newTestOrchestrator(t, client)

	stack := client.AddManagedStack("eventful", map[string]string{
		types.ManagedByTagKey: types.ManagedByTagValue,
	})
	now := time.Now().UTC()
	stack.Events = []types.StackEvent{
		{EventID: "3", StackName: "eventful", ResourceStatus: "CREATE_COMPLETE", Timestamp: now},
		{EventID: "2", StackName: "eventful", ResourceStatus: "CREATE_IN_PROGRESS", Timestamp: now.Add(-time.Minute)},
		{EventID: "1", StackName: "eventful", ResourceStatus: "CREATE_IN_PROGRESS", Timestamp: now.Add(-2 * time.Minute)},
	}

	t.Run("all events", func(t *testing.T) {
		result := orchestrator.Execute(context.Background(), types.OperationRequest{
			Operation: types.OperationDescribeStackEvents,
			StackName: "eventful",
		})

		if result.Status != types.StatusCompleted {
			t.Fatalf("status = %s (errors: %v)", result.Status, result.Errors)
		}
		if len(result.Events) != 3 {
			t.Fatalf("expected 3 events, got %d", len(result.Events))
		}
		if result.Events[0].EventID != "3" {
			t.Errorf("events must stay newest first, got %s first", result.Events[0].EventID)
		}
	})

	t.Run("maxResults truncates", func(t *testing.T) {
		result := orchestrator.Execute(context.Background(), types.OperationRequest{
			Operation:  types.OperationDescribeStackEvents,
			StackName:  "eventful",
			MaxResults: 1,
		})

		if len(result.Events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(result.Events))
		}
	})

	t.Run("unknown stack fails", func(t *testing.T) {
		result := orchestrator.Execute(context.Background(), types.OperationRequest{
			Operation: types.OperationDescribeStackEvents,
			StackName: "ghost",
		})

		if result.Status != types.StatusFailed {
			t.Fatalf("status = %s, want failed", result.Status)
		}
	})
}

func TestDescribeStackResourcesOperation(t *testing.T) {
	client := mocks.NewMockCloudFormationClient(logging.NewLogger("test", "error"))
	orchestrator := newTestOrchestrator(t, client)

	stack := client.AddManagedStack("with-resources", map[string]string{
		types.ManagedByTagKey: types.ManagedByTagValue,
	})
	stack.Resources = []types.ResourceDetail{
		{
			LogicalResourceID:  "Resource",
			PhysicalResourceID: "with-resources-physical",
			ResourceType:       "AWS::SQS::Queue",
			ResourceStatus:     types.StackStatusCreateComplete,
		},
	}

	result := orchestrator.Execute(context.Background(), types.OperationRequest{
		Operation: types.OperationDescribeStackResources,
		StackName: "with-resources",
	})

	if result.Status != types.StatusCompleted {
		t.Fatalf("status = %s (errors: %v)", result.Status, result.Errors)
	}
	if len(result.StackResources) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(result.StackResources))
	}
	if result.StackResources[0].PhysicalResourceID != "with-resources-physical" {
		t.Errorf("physicalResourceId = %s", result.StackResources[0].PhysicalResourceID)
	}
}

func TestValidateTemplateOperation(t *testing.T) {
	client := mocks.NewMockCloudFormationClient(logging.NewLogger("test", "error"))
	orchestrator := newTestOrchestrator(t, client)

	t.Run("inline body", func(t *testing.T) {
		result := orchestrator.Execute(context.Background(), types.OperationRequest{
			Operation:    types.OperationValidateTemplate,
			TemplateBody: `{"Resources":{"Resource":{"Type":"AWS::S3::Bucket"}}}`,
		})

		if result.Status != types.StatusCompleted {
			t.Fatalf("status = %s (errors: %v)", result.Status, result.Errors)
		}
		if result.Validation == nil {
			t.Fatal("expected validation in the result")
		}
	})

	t.Run("falls back to the stack's template", func(t *testing.T) {
		stack := client.AddManagedStack("templated", map[string]string{
			types.ManagedByTagKey: types.ManagedByTagValue,
		})
		stack.TemplateBody = `{"Resources":{"Resource":{"Type":"AWS::SNS::Topic"}}}`

		result := orchestrator.Execute(context.Background(), types.OperationRequest{
			Operation: types.OperationValidateTemplate,
			StackName: "templated",
		})

		if result.Status != types.StatusCompleted {
			t.Fatalf("status = %s (errors: %v)", result.Status, result.Errors)
		}
		if result.Validation == nil {
			t.Fatal("expected validation in the result")
		}
		found := false
		for _, step := range result.StepsCompleted {
			if step == "fetched-template" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected the fetched-template step, got %v", result.StepsCompleted)
		}
	})

	t.Run("nothing to validate", func(t *testing.T) {
		result := orchestrator.Execute(context.Background(), types.OperationRequest{
			Operation: types.OperationValidateTemplate,
		})

		if result.Status != types.StatusValidationOnly {
			t.Fatalf("status = %s, want validation-only", result.Status)
		}
	})
}

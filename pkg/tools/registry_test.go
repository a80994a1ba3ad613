package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/versus-control/cloudformation-agent/internal/config"
	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/mocks"
	"github.com/versus-control/cloudformation-agent/pkg/orchestrator"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

func newTestDependencies(t *testing.T) (*ToolDependencies, *mocks.MockCloudFormationClient) {
	t.Helper()
	logger := logging.NewLogger("test", "error")
	client := mocks.NewMockCloudFormationClient(logger)

	cfg := &config.Config{}
	cfg.Orchestrator.PollInterval = 0
	cfg.Orchestrator.MaxWaitTime = 5 * time.Second
	cfg.Orchestrator.MaxResults = 50

	deps := &ToolDependencies{
		Orchestrator: orchestrator.New(client, cfg, logger),
		CFNClient:    client,
		Config:       cfg,
	}
	return deps, client
}

// decodeToolResult unpacks the JSON text content of a tool result.
func decodeToolResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("tool result content is %T, want TextContent", result.Content[0])
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(text.Text), &decoded); err != nil {
		t.Fatalf("tool result is not JSON: %v\n%s", err, text.Text)
	}
	return decoded
}

func TestRegistryRegisterAndExecute(t *testing.T) {
	deps, _ := newTestDependencies(t)
	logger := logging.NewLogger("test", "error")
	registry := NewToolRegistry(logger)
	factory := NewToolFactory(logger)

	if err := RegisterAllTools(factory, registry, deps); err != nil {
		t.Fatalf("failed to register tools: %v", err)
	}

	tools := registry.ListTools()
	if len(tools) != 14 {
		t.Errorf("registered %d tools, want 14", len(tools))
	}

	if _, exists := registry.GetTool("create-resource"); !exists {
		t.Error("create-resource tool missing")
	}

	lifecycle := registry.ListToolsByCategory("lifecycle")
	if len(lifecycle) != 3 {
		t.Errorf("lifecycle category has %d tools, want 3", len(lifecycle))
	}

	schemas := registry.GetToolSchemas()
	if _, ok := schemas["delete-resource"]; !ok {
		t.Error("delete-resource schema missing")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	deps, _ := newTestDependencies(t)
	logger := logging.NewLogger("test", "error")
	registry := NewToolRegistry(logger)
	factory := NewToolFactory(logger)

	tool, err := factory.CreateTool("describe-stack", deps)
	if err != nil {
		t.Fatalf("failed to create tool: %v", err)
	}
	if err := registry.Register(tool); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := registry.Register(tool); err == nil {
		t.Error("duplicate registration must fail")
	}

	if err := registry.Unregister("describe-stack"); err != nil {
		t.Fatalf("unregister failed: %v", err)
	}
	if _, exists := registry.GetTool("describe-stack"); exists {
		t.Error("tool still present after unregister")
	}
}

func TestExecuteToolValidatesArguments(t *testing.T) {
	deps, _ := newTestDependencies(t)
	logger := logging.NewLogger("test", "error")
	registry := NewToolRegistry(logger)
	factory := NewToolFactory(logger)

	tool, err := factory.CreateTool("describe-stack", deps)
	if err != nil {
		t.Fatalf("failed to create tool: %v", err)
	}
	if err := registry.Register(tool); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	_, err = registry.ExecuteTool(context.Background(), "describe-stack", map[string]interface{}{})
	if err == nil || !strings.Contains(err.Error(), "stackName") {
		t.Errorf("expected a missing-field error, got: %v", err)
	}

	_, err = registry.ExecuteTool(context.Background(), "no-such-tool", map[string]interface{}{})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected a not-found error, got: %v", err)
	}
}

func TestCreateResourceToolExecute(t *testing.T) {
	deps, client := newTestDependencies(t)
	logger := logging.NewLogger("test", "error")
	factory := NewToolFactory(logger)

	tool, err := factory.CreateTool("create-resource", deps)
	if err != nil {
		t.Fatalf("failed to create tool: %v", err)
	}

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"resourceType":       "AWS::S3::Bucket",
		"resourceProperties": map[string]interface{}{"BucketName": "tool-test"},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool reported an error: %+v", result.Content)
	}

	decoded := decodeToolResult(t, result)
	if decoded["success"] != true {
		t.Errorf("success = %v", decoded["success"])
	}
	payload, ok := decoded["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("result payload missing: %v", decoded)
	}
	if payload["status"] != types.StatusCompleted {
		t.Errorf("status = %v", payload["status"])
	}

	if len(client.CreateCalls) != 1 {
		t.Errorf("CreateStack called %d times", len(client.CreateCalls))
	}
}

func TestCreateResourceToolSurfacesValidationFailure(t *testing.T) {
	deps, client := newTestDependencies(t)
	logger := logging.NewLogger("test", "error")
	factory := NewToolFactory(logger)

	tool, err := factory.CreateTool("create-resource", deps)
	if err != nil {
		t.Fatalf("failed to create tool: %v", err)
	}

	// resourceType passes the schema check but the stack name is bad.
	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"resourceType": "AWS::S3::Bucket",
		"stackName":    "-leading-hyphen",
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error response")
	}

	decoded := decodeToolResult(t, result)
	if decoded["success"] != false {
		t.Errorf("success = %v", decoded["success"])
	}
	if _, ok := decoded["result"]; !ok {
		t.Error("error response must still carry the structured result")
	}
	if len(client.CreateCalls) != 0 {
		t.Error("no AWS call may happen on validation failure")
	}
}

func TestDescribeStackToolExecute(t *testing.T) {
	deps, client := newTestDependencies(t)
	logger := logging.NewLogger("test", "error")
	factory := NewToolFactory(logger)

	client.AddManagedStack("demo-stack", map[string]string{
		types.ManagedByTagKey: types.ManagedByTagValue,
	})

	tool, err := factory.CreateTool("describe-stack", deps)
	if err != nil {
		t.Fatalf("failed to create tool: %v", err)
	}

	result, err := tool.Execute(context.Background(), map[string]interface{}{"stackName": "demo-stack"})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool reported an error: %+v", result.Content)
	}

	decoded := decodeToolResult(t, result)
	stack, ok := decoded["stack"].(map[string]interface{})
	if !ok {
		t.Fatalf("stack payload missing: %v", decoded)
	}
	if stack["stackName"] != "demo-stack" {
		t.Errorf("stackName = %v", stack["stackName"])
	}
}

func TestDescribeStackToolMissingStack(t *testing.T) {
	deps, _ := newTestDependencies(t)
	logger := logging.NewLogger("test", "error")
	factory := NewToolFactory(logger)

	tool, err := factory.CreateTool("describe-stack", deps)
	if err != nil {
		t.Fatalf("failed to create tool: %v", err)
	}

	result, err := tool.Execute(context.Background(), map[string]interface{}{"stackName": "ghost"})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error response for a missing stack")
	}

	decoded := decodeToolResult(t, result)
	errorMessage, _ := decoded["error"].(string)
	if !strings.Contains(errorMessage, "STACK_NOT_FOUND") {
		t.Errorf("error = %q, want the STACK_NOT_FOUND classification", errorMessage)
	}
}

func TestListManagedResourcesToolExecute(t *testing.T) {
	deps, client := newTestDependencies(t)
	logger := logging.NewLogger("test", "error")
	factory := NewToolFactory(logger)

	client.AddManagedStack("mine", map[string]string{
		types.ManagedByTagKey:    types.ManagedByTagValue,
		types.ResourceTypeTagKey: "AWS::S3::Bucket",
	})
	client.AddManagedStack("not-mine", map[string]string{
		types.ManagedByTagKey: "Other-Tool",
	})

	tool, err := factory.CreateTool("list-managed-resources", deps)
	if err != nil {
		t.Fatalf("failed to create tool: %v", err)
	}

	result, err := tool.Execute(context.Background(), map[string]interface{}{})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	decoded := decodeToolResult(t, result)
	payload, ok := decoded["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("result payload missing: %v", decoded)
	}
	resources, _ := payload["resources"].([]interface{})
	if len(resources) != 1 {
		t.Errorf("listed %d resources, want 1", len(resources))
	}
}

func TestFactoryRejectsUnknownToolType(t *testing.T) {
	deps, _ := newTestDependencies(t)
	factory := NewToolFactory(logging.NewLogger("test", "error"))

	if _, err := factory.CreateTool("launch-rocket", deps); err == nil {
		t.Error("unknown tool type must fail")
	}
	if _, err := factory.CreateTool("describe-stack", "bad-deps"); err == nil {
		t.Error("invalid dependencies must fail")
	}
}

func TestFactoryActionTypes(t *testing.T) {
	factory := NewToolFactory(logging.NewLogger("test", "error"))

	cases := map[string]string{
		"create-resource":        "creation",
		"delete-resource":        "deletion",
		"update-resource":        "modification",
		"describe-stack":         "query",
		"create-change-set":      "preview",
		"list-managed-resources": "query",
		"no-such-tool":           "unknown",
	}
	for toolName, want := range cases {
		if got := factory.GetToolActionType(toolName); got != want {
			t.Errorf("GetToolActionType(%s) = %s, want %s", toolName, got, want)
		}
	}
}

package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/orchestrator"
	"github.com/versus-control/cloudformation-agent/pkg/types"
	"github.com/versus-control/cloudformation-agent/pkg/utilities"
)

// ========== Create Change Set ==========

// CreateChangeSetTool previews a stack change without applying it.
type CreateChangeSetTool struct {
	*BaseTool
	orchestrator *orchestrator.Orchestrator
}

// NewCreateChangeSetTool creates the change set creation tool
func NewCreateChangeSetTool(orch *orchestrator.Orchestrator, logger *logging.Logger) *CreateChangeSetTool {
	inputSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"stackName": map[string]interface{}{
				"type":        "string",
				"description": "Name of the stack to preview changes for",
			},
			"updatedProperties": map[string]interface{}{
				"type":        "object",
				"description": "Properties to merge into an existing stack's template",
			},
			"resourceType": map[string]interface{}{
				"type":        "string",
				"description": "Resource type for a change set that would create a new stack",
			},
			"resourceProperties": map[string]interface{}{
				"type":        "object",
				"description": "Properties for the new resource",
			},
		},
		"required": []interface{}{"stackName"},
	}

	baseTool := NewBaseTool(
		"create-change-set",
		"Create a change set previewing a stack create or update",
		"changeset",
		inputSchema,
		logger,
	)

	baseTool.AddExample(
		"Preview a bucket rename",
		map[string]interface{}{
			"stackName":         "cfn-s3-bucket-a1b2c3",
			"updatedProperties": map[string]interface{}{"BucketName": "renamed-bucket"},
		},
		"Change set listing the Modify action on the bucket",
	)

	return &CreateChangeSetTool{
		BaseTool:     baseTool,
		orchestrator: orch,
	}
}

func (t *CreateChangeSetTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	request := types.OperationRequest{
		Operation:          types.OperationChangeSetFlow,
		ChangeSetAction:    orchestrator.ChangeSetActionCreate,
		StackName:          utilities.GetStringFromMap(arguments, "stackName"),
		ResourceType:       utilities.GetStringFromMap(arguments, "resourceType"),
		ResourceProperties: utilities.GetPropertiesFromMap(arguments, "resourceProperties"),
		UpdatedProperties:  utilities.GetPropertiesFromMap(arguments, "updatedProperties"),
	}

	t.logger.WithField("stackName", request.StackName).Info("Creating change set")

	result := t.orchestrator.Execute(ctx, request)

	message := "Change set created"
	if result.ChangeSet != nil {
		message = fmt.Sprintf("Change set %s is %s", result.ChangeSet.ChangeSetName, result.ChangeSet.Status)
	}
	return operationResponse(t.BaseTool, result, message)
}

// ========== Describe Change Set ==========

// DescribeChangeSetTool reads a change set's proposed changes.
type DescribeChangeSetTool struct {
	*BaseTool
	orchestrator *orchestrator.Orchestrator
}

// NewDescribeChangeSetTool creates the change set description tool
func NewDescribeChangeSetTool(orch *orchestrator.Orchestrator, logger *logging.Logger) *DescribeChangeSetTool {
	inputSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"stackName": map[string]interface{}{
				"type":        "string",
				"description": "Name of the stack the change set belongs to",
			},
			"changeSetName": map[string]interface{}{
				"type":        "string",
				"description": "Name or ID of the change set",
			},
		},
		"required": []interface{}{"stackName", "changeSetName"},
	}

	baseTool := NewBaseTool(
		"describe-change-set",
		"Describe the proposed changes of a change set",
		"changeset",
		inputSchema,
		logger,
	)

	return &DescribeChangeSetTool{
		BaseTool:     baseTool,
		orchestrator: orch,
	}
}

func (t *DescribeChangeSetTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	request := types.OperationRequest{
		Operation:       types.OperationChangeSetFlow,
		ChangeSetAction: orchestrator.ChangeSetActionDescribe,
		StackName:       utilities.GetStringFromMap(arguments, "stackName"),
		ChangeSetName:   utilities.GetStringFromMap(arguments, "changeSetName"),
	}

	t.logger.WithField("changeSetName", request.ChangeSetName).Info("Describing change set")

	result := t.orchestrator.Execute(ctx, request)

	message := "Change set described"
	if result.ChangeSet != nil {
		message = fmt.Sprintf("Change set %s holds %d changes", result.ChangeSet.ChangeSetName, len(result.ChangeSet.Changes))
	}
	return operationResponse(t.BaseTool, result, message)
}

// ========== Execute Change Set ==========

// ExecuteChangeSetTool applies a previously created change set.
type ExecuteChangeSetTool struct {
	*BaseTool
	orchestrator *orchestrator.Orchestrator
}

// NewExecuteChangeSetTool creates the change set execution tool
func NewExecuteChangeSetTool(orch *orchestrator.Orchestrator, logger *logging.Logger) *ExecuteChangeSetTool {
	inputSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"stackName": map[string]interface{}{
				"type":        "string",
				"description": "Name of the stack the change set belongs to",
			},
			"changeSetName": map[string]interface{}{
				"type":        "string",
				"description": "Name or ID of the change set to execute",
			},
			"waitForCompletion": map[string]interface{}{
				"type":        "boolean",
				"description": "Wait until the resulting stack operation finishes",
			},
			"maxWaitTime": map[string]interface{}{
				"type":        "number",
				"description": "Maximum seconds to wait for completion",
				"minimum":     1,
			},
		},
		"required": []interface{}{"stackName", "changeSetName"},
	}

	baseTool := NewBaseTool(
		"execute-change-set",
		"Execute a change set, applying its proposed changes to the stack",
		"changeset",
		inputSchema,
		logger,
	)

	return &ExecuteChangeSetTool{
		BaseTool:     baseTool,
		orchestrator: orch,
	}
}

func (t *ExecuteChangeSetTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	request := types.OperationRequest{
		Operation:         types.OperationChangeSetFlow,
		ChangeSetAction:   orchestrator.ChangeSetActionExecute,
		StackName:         utilities.GetStringFromMap(arguments, "stackName"),
		ChangeSetName:     utilities.GetStringFromMap(arguments, "changeSetName"),
		WaitForCompletion: utilities.GetBoolFromMap(arguments, "waitForCompletion", false),
		MaxWaitTime:       utilities.GetInt64FromMap(arguments, "maxWaitTime", 0),
	}

	t.logger.WithField("changeSetName", request.ChangeSetName).Info("Executing change set")

	result := t.orchestrator.Execute(ctx, request)
	return operationResponse(t.BaseTool, result, fmt.Sprintf("Change set %s executed", request.ChangeSetName))
}

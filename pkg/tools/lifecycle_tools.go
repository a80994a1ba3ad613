package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/orchestrator"
	"github.com/versus-control/cloudformation-agent/pkg/types"
	"github.com/versus-control/cloudformation-agent/pkg/utilities"
)

// operationResponse renders an orchestrator result as a tool response.
// Failed and rejected operations become error responses carrying the
// full structured result, so agents can inspect which steps completed.
func operationResponse(base *BaseTool, result *types.OperationResult, successMessage string) (*mcp.CallToolResult, error) {
	data := map[string]interface{}{"result": result}

	switch result.Status {
	case types.StatusFailed, types.StatusValidationOnly:
		message := "operation " + result.Operation + " did not complete"
		if len(result.Errors) > 0 {
			message = strings.Join(result.Errors, "; ")
		}
		return base.CreateErrorResponse(message, data)
	case types.StatusInProgress:
		return base.CreateSuccessResponse(successMessage+" (still in progress)", data)
	default:
		return base.CreateSuccessResponse(successMessage, data)
	}
}

// lifecycleRequest extracts the fields shared by the lifecycle tools.
func lifecycleRequest(operation string, arguments map[string]interface{}) types.OperationRequest {
	return types.OperationRequest{
		Operation:         operation,
		ResourceType:      utilities.GetStringFromMap(arguments, "resourceType"),
		StackName:         utilities.GetStringFromMap(arguments, "stackName"),
		WaitForCompletion: utilities.GetBoolFromMap(arguments, "waitForCompletion", false),
		MaxWaitTime:       utilities.GetInt64FromMap(arguments, "maxWaitTime", 0),
	}
}

// ========== Create Resource ==========

// CreateResourceTool provisions one AWS resource behind its own
// CloudFormation stack.
type CreateResourceTool struct {
	*BaseTool
	orchestrator *orchestrator.Orchestrator
}

// NewCreateResourceTool creates the resource creation tool
func NewCreateResourceTool(orch *orchestrator.Orchestrator, logger *logging.Logger) *CreateResourceTool {
	inputSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"resourceType": map[string]interface{}{
				"type":        "string",
				"description": "CloudFormation resource type, e.g. AWS::S3::Bucket",
			},
			"resourceProperties": map[string]interface{}{
				"type":        "object",
				"description": "Properties for the resource, matching its CloudFormation schema",
			},
			"stackName": map[string]interface{}{
				"type":        "string",
				"description": "Stack name (optional, generated from the resource type if omitted)",
			},
			"waitForCompletion": map[string]interface{}{
				"type":        "boolean",
				"description": "Wait until the stack reaches a terminal status",
			},
			"maxWaitTime": map[string]interface{}{
				"type":        "number",
				"description": "Maximum seconds to wait for completion",
				"minimum":     1,
			},
		},
		"required": []interface{}{"resourceType"},
	}

	baseTool := NewBaseTool(
		"create-resource",
		"Create a single AWS resource in its own CloudFormation stack",
		"lifecycle",
		inputSchema,
		logger,
	)

	baseTool.AddExample(
		"Create an S3 bucket without waiting",
		map[string]interface{}{
			"resourceType":       "AWS::S3::Bucket",
			"resourceProperties": map[string]interface{}{"BucketName": "my-app-data"},
		},
		"Stack created with status CREATE_IN_PROGRESS",
	)

	return &CreateResourceTool{
		BaseTool:     baseTool,
		orchestrator: orch,
	}
}

func (t *CreateResourceTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	request := lifecycleRequest(types.OperationCreateResourceLifecycle, arguments)
	request.ResourceProperties = utilities.GetPropertiesFromMap(arguments, "resourceProperties")

	t.logger.WithField("resourceType", request.ResourceType).Info("Creating resource stack")

	result := t.orchestrator.Execute(ctx, request)

	message := "Resource creation started"
	if result.CreatedResource != nil {
		message = fmt.Sprintf("Stack %s is %s", result.CreatedResource.StackName, result.CreatedResource.Status)
	}
	return operationResponse(t.BaseTool, result, message)
}

// ========== Update Resource ==========

// UpdateResourceTool merges new properties into a managed stack's
// template and submits the update.
type UpdateResourceTool struct {
	*BaseTool
	orchestrator *orchestrator.Orchestrator
}

// NewUpdateResourceTool creates the resource update tool
func NewUpdateResourceTool(orch *orchestrator.Orchestrator, logger *logging.Logger) *UpdateResourceTool {
	inputSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"stackName": map[string]interface{}{
				"type":        "string",
				"description": "Name of the managed stack to update",
			},
			"updatedProperties": map[string]interface{}{
				"type":        "object",
				"description": "Properties to merge into the resource. Top-level keys replace existing values",
			},
			"waitForCompletion": map[string]interface{}{
				"type":        "boolean",
				"description": "Wait until the stack reaches a terminal status",
			},
			"maxWaitTime": map[string]interface{}{
				"type":        "number",
				"description": "Maximum seconds to wait for completion",
				"minimum":     1,
			},
		},
		"required": []interface{}{"stackName", "updatedProperties"},
	}

	baseTool := NewBaseTool(
		"update-resource",
		"Update a managed resource by merging new properties into its stack template",
		"lifecycle",
		inputSchema,
		logger,
	)

	baseTool.AddExample(
		"Enable versioning on a managed bucket",
		map[string]interface{}{
			"stackName": "cfn-s3-bucket-a1b2c3",
			"updatedProperties": map[string]interface{}{
				"VersioningConfiguration": map[string]interface{}{"Status": "Enabled"},
			},
		},
		"Stack update started with the merged properties",
	)

	return &UpdateResourceTool{
		BaseTool:     baseTool,
		orchestrator: orch,
	}
}

func (t *UpdateResourceTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	request := lifecycleRequest(types.OperationUpdateResourceLifecycle, arguments)
	request.UpdatedProperties = utilities.GetPropertiesFromMap(arguments, "updatedProperties")

	t.logger.WithField("stackName", request.StackName).Info("Updating resource stack")

	result := t.orchestrator.Execute(ctx, request)

	message := "Resource update started"
	if result.UpdateResult != nil {
		message = fmt.Sprintf("Stack %s is %s", result.UpdateResult.StackName, result.UpdateResult.Status)
	}
	return operationResponse(t.BaseTool, result, message)
}

// ========== Delete Resource ==========

// DeleteResourceTool deletes a managed stack and the resource behind it.
type DeleteResourceTool struct {
	*BaseTool
	orchestrator *orchestrator.Orchestrator
}

// NewDeleteResourceTool creates the resource deletion tool
func NewDeleteResourceTool(orch *orchestrator.Orchestrator, logger *logging.Logger) *DeleteResourceTool {
	inputSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"stackName": map[string]interface{}{
				"type":        "string",
				"description": "Name of the managed stack to delete",
			},
			"retainResources": map[string]interface{}{
				"type":        "array",
				"description": "Logical IDs to keep when the stack is in DELETE_FAILED",
				"items":       map[string]interface{}{"type": "string"},
			},
			"waitForCompletion": map[string]interface{}{
				"type":        "boolean",
				"description": "Wait until the deletion finishes",
			},
			"maxWaitTime": map[string]interface{}{
				"type":        "number",
				"description": "Maximum seconds to wait for completion",
				"minimum":     1,
			},
		},
		"required": []interface{}{"stackName"},
	}

	baseTool := NewBaseTool(
		"delete-resource",
		"Delete a managed resource by deleting its CloudFormation stack",
		"lifecycle",
		inputSchema,
		logger,
	)

	baseTool.AddExample(
		"Delete a managed bucket stack and wait",
		map[string]interface{}{
			"stackName":         "cfn-s3-bucket-a1b2c3",
			"waitForCompletion": true,
		},
		"Stack deleted (DELETE_COMPLETE)",
	)

	return &DeleteResourceTool{
		BaseTool:     baseTool,
		orchestrator: orch,
	}
}

func (t *DeleteResourceTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	request := lifecycleRequest(types.OperationDeleteResourceLifecycle, arguments)
	request.RetainResources = utilities.GetStringSlice(arguments, "retainResources")

	t.logger.WithField("stackName", request.StackName).Info("Deleting resource stack")

	result := t.orchestrator.Execute(ctx, request)

	message := "Resource deletion started"
	if result.DeletionResult != nil {
		message = fmt.Sprintf("Stack %s is %s", result.DeletionResult.StackName, result.DeletionResult.Status)
	}
	return operationResponse(t.BaseTool, result, message)
}

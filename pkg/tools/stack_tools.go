package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/aws"
	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
	"github.com/versus-control/cloudformation-agent/pkg/orchestrator"
	"github.com/versus-control/cloudformation-agent/pkg/types"
	"github.com/versus-control/cloudformation-agent/pkg/utilities"
)

// ========== List Managed Resources ==========

// ListManagedResourcesTool lists the stacks this system created,
// identified by their ManagedBy tag.
type ListManagedResourcesTool struct {
	*BaseTool
	orchestrator *orchestrator.Orchestrator
}

// NewListManagedResourcesTool creates the managed resource listing tool
func NewListManagedResourcesTool(orch *orchestrator.Orchestrator, logger *logging.Logger) *ListManagedResourcesTool {
	inputSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"resourceTypeFilter": map[string]interface{}{
				"type":        "string",
				"description": "Substring filter on the resource type, e.g. S3 or AWS::Lambda",
			},
			"maxResults": map[string]interface{}{
				"type":        "number",
				"description": "Maximum number of stacks to return",
				"minimum":     1,
			},
		},
	}

	baseTool := NewBaseTool(
		"list-managed-resources",
		"List the CloudFormation stacks managed by this system",
		"inspection",
		inputSchema,
		logger,
	)

	baseTool.AddExample(
		"List all managed S3 stacks",
		map[string]interface{}{"resourceTypeFilter": "S3"},
		"Found the managed stacks whose resource type mentions S3",
	)

	return &ListManagedResourcesTool{
		BaseTool:     baseTool,
		orchestrator: orch,
	}
}

func (t *ListManagedResourcesTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	t.logger.Info("Listing managed resources")

	result := t.orchestrator.Execute(ctx, types.OperationRequest{
		Operation:          types.OperationListAndManageResources,
		ResourceTypeFilter: utilities.GetStringFromMap(arguments, "resourceTypeFilter"),
		MaxResults:         int(utilities.GetInt64FromMap(arguments, "maxResults", 0)),
	})

	message := fmt.Sprintf("Found %d managed stacks", len(result.Resources))
	return operationResponse(t.BaseTool, result, message)
}

// ========== Describe Stack ==========

// DescribeStackTool reads one stack's current state.
type DescribeStackTool struct {
	*BaseTool
	client interfaces.CloudFormationOperations
}

// NewDescribeStackTool creates the stack description tool
func NewDescribeStackTool(client interfaces.CloudFormationOperations, logger *logging.Logger) *DescribeStackTool {
	inputSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"stackName": map[string]interface{}{
				"type":        "string",
				"description": "Name or ID of the stack",
			},
		},
		"required": []interface{}{"stackName"},
	}

	baseTool := NewBaseTool(
		"describe-stack",
		"Describe a CloudFormation stack's status, tags, and outputs",
		"inspection",
		inputSchema,
		logger,
	)

	return &DescribeStackTool{
		BaseTool: baseTool,
		client:   client,
	}
}

func (t *DescribeStackTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	stackName := utilities.GetStringFromMap(arguments, "stackName")
	t.logger.WithField("stackName", stackName).Info("Describing stack")

	stack, err := t.client.DescribeStack(ctx, stackName)
	if err != nil {
		return t.CreateErrorResponse(aws.Classify(err).Error(), nil)
	}

	return t.CreateSuccessResponse(
		fmt.Sprintf("Stack %s is %s", stack.StackName, stack.Status),
		map[string]interface{}{"stack": stack},
	)
}

// ========== Describe Stack Events ==========

// DescribeStackEventsTool reads a stack's recent events, newest first.
type DescribeStackEventsTool struct {
	*BaseTool
	client interfaces.CloudFormationOperations
}

// NewDescribeStackEventsTool creates the stack events tool
func NewDescribeStackEventsTool(client interfaces.CloudFormationOperations, logger *logging.Logger) *DescribeStackEventsTool {
	inputSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"stackName": map[string]interface{}{
				"type":        "string",
				"description": "Name or ID of the stack",
			},
			"limit": map[string]interface{}{
				"type":        "number",
				"description": "Maximum number of events to return (optional)",
				"minimum":     1,
			},
		},
		"required": []interface{}{"stackName"},
	}

	baseTool := NewBaseTool(
		"describe-stack-events",
		"List a stack's recent events, useful for diagnosing failures",
		"inspection",
		inputSchema,
		logger,
	)

	return &DescribeStackEventsTool{
		BaseTool: baseTool,
		client:   client,
	}
}

func (t *DescribeStackEventsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	stackName := utilities.GetStringFromMap(arguments, "stackName")
	limit := int(utilities.GetInt64FromMap(arguments, "limit", 0))

	t.logger.WithField("stackName", stackName).Info("Describing stack events")

	events, err := t.client.DescribeStackEvents(ctx, stackName, limit)
	if err != nil {
		return t.CreateErrorResponse(aws.Classify(err).Error(), nil)
	}

	return t.CreateSuccessResponse(
		fmt.Sprintf("Retrieved %d events for stack %s", len(events), stackName),
		map[string]interface{}{"events": events, "count": len(events)},
	)
}

// ========== Describe Stack Resources ==========

// DescribeStackResourcesTool lists the resources a stack manages. For
// stacks this system created that is a single resource.
type DescribeStackResourcesTool struct {
	*BaseTool
	client interfaces.CloudFormationOperations
}

// NewDescribeStackResourcesTool creates the stack resources tool
func NewDescribeStackResourcesTool(client interfaces.CloudFormationOperations, logger *logging.Logger) *DescribeStackResourcesTool {
	inputSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"stackName": map[string]interface{}{
				"type":        "string",
				"description": "Name or ID of the stack",
			},
		},
		"required": []interface{}{"stackName"},
	}

	baseTool := NewBaseTool(
		"describe-stack-resources",
		"List the resources belonging to a CloudFormation stack",
		"inspection",
		inputSchema,
		logger,
	)

	return &DescribeStackResourcesTool{
		BaseTool: baseTool,
		client:   client,
	}
}

func (t *DescribeStackResourcesTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	stackName := utilities.GetStringFromMap(arguments, "stackName")
	t.logger.WithField("stackName", stackName).Info("Describing stack resources")

	resources, err := t.client.DescribeStackResources(ctx, stackName)
	if err != nil {
		return t.CreateErrorResponse(aws.Classify(err).Error(), nil)
	}

	return t.CreateSuccessResponse(
		fmt.Sprintf("Stack %s has %d resources", stackName, len(resources)),
		map[string]interface{}{"resources": resources, "count": len(resources)},
	)
}

// ========== Poll Stack Status ==========

// PollStackStatusTool waits for a stack to reach a terminal status.
type PollStackStatusTool struct {
	*BaseTool
	orchestrator *orchestrator.Orchestrator
}

// NewPollStackStatusTool creates the status polling tool
func NewPollStackStatusTool(orch *orchestrator.Orchestrator, logger *logging.Logger) *PollStackStatusTool {
	inputSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"stackName": map[string]interface{}{
				"type":        "string",
				"description": "Name or ID of the stack",
			},
			"maxWaitTime": map[string]interface{}{
				"type":        "number",
				"description": "Maximum seconds to wait (default 300)",
				"minimum":     1,
			},
		},
		"required": []interface{}{"stackName"},
	}

	baseTool := NewBaseTool(
		"poll-stack-status",
		"Wait until a stack reaches a terminal status or the wait budget runs out",
		"inspection",
		inputSchema,
		logger,
	)

	return &PollStackStatusTool{
		BaseTool:     baseTool,
		orchestrator: orch,
	}
}

func (t *PollStackStatusTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	stackName := utilities.GetStringFromMap(arguments, "stackName")
	opts := types.PollOptions{PollInterval: orchestrator.DefaultPollInterval}
	if maxWait := utilities.GetInt64FromMap(arguments, "maxWaitTime", 0); maxWait > 0 {
		opts.MaxWaitTime = time.Duration(maxWait) * time.Second
	}

	t.logger.WithField("stackName", stackName).Info("Polling stack status")

	result, err := t.orchestrator.WaitForStackCompletion(ctx, stackName, opts)
	if err != nil {
		return t.CreateErrorResponse(aws.Classify(err).Error(), nil)
	}

	message := fmt.Sprintf("Stack %s reached %s after %d checks", stackName, result.FinalStatus, result.Checks)
	if !result.IsComplete {
		message = fmt.Sprintf("Stack %s did not reach a terminal status (last observation after %d checks)", stackName, result.Checks)
	}
	return t.CreateSuccessResponse(message, map[string]interface{}{"pollResult": result})
}

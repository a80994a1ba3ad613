package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/aws"
	"github.com/versus-control/cloudformation-agent/pkg/cfn"
	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
	"github.com/versus-control/cloudformation-agent/pkg/orchestrator"
	"github.com/versus-control/cloudformation-agent/pkg/types"
	"github.com/versus-control/cloudformation-agent/pkg/utilities"
)

// ========== Get Template ==========

// GetTemplateTool reads the template of an existing stack.
type GetTemplateTool struct {
	*BaseTool
	client interfaces.CloudFormationOperations
}

// NewGetTemplateTool creates the template retrieval tool
func NewGetTemplateTool(client interfaces.CloudFormationOperations, logger *logging.Logger) *GetTemplateTool {
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
		"get-template",
		"Retrieve the current template of a CloudFormation stack",
		"template",
		inputSchema,
		logger,
	)

	return &GetTemplateTool{
		BaseTool: baseTool,
		client:   client,
	}
}

func (t *GetTemplateTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	stackName := utilities.GetStringFromMap(arguments, "stackName")
	t.logger.WithField("stackName", stackName).Info("Fetching stack template")

	templateBody, err := t.client.GetTemplate(ctx, stackName)
	if err != nil {
		return t.CreateErrorResponse(aws.Classify(err).Error(), nil)
	}

	return t.CreateSuccessResponse(
		fmt.Sprintf("Retrieved template for stack %s", stackName),
		map[string]interface{}{"templateBody": templateBody},
	)
}

// ========== Validate Template ==========

// ValidateTemplateTool validates a template against the CloudFormation
// service. Local checks catch the trivial cases first.
type ValidateTemplateTool struct {
	*BaseTool
	client interfaces.CloudFormationOperations
}

// NewValidateTemplateTool creates the template validation tool
func NewValidateTemplateTool(client interfaces.CloudFormationOperations, logger *logging.Logger) *ValidateTemplateTool {
	inputSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"templateBody": map[string]interface{}{
				"type":        "string",
				"description": "Template JSON to validate",
			},
			"templateUrl": map[string]interface{}{
				"type":        "string",
				"description": "S3 URL of the template (templateBody wins when both are given)",
			},
		},
	}

	baseTool := NewBaseTool(
		"validate-template",
		"Validate a CloudFormation template via the service",
		"template",
		inputSchema,
		logger,
	)

	return &ValidateTemplateTool{
		BaseTool: baseTool,
		client:   client,
	}
}

func (t *ValidateTemplateTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	templateBody := utilities.GetStringFromMap(arguments, "templateBody")
	templateURL := utilities.GetStringFromMap(arguments, "templateUrl")

	validation, err := cfn.ValidateRequest(types.OpValidateTemplate, types.StackRequest{
		TemplateBody: templateBody,
		TemplateURL:  templateURL,
	})
	if err != nil {
		return t.CreateErrorResponse(err.Error(), nil)
	}
	for _, warning := range validation.Warnings {
		t.logger.WithField("warning", warning).Warn("Template validation warning")
	}
	if !validation.IsValid {
		return t.CreateErrorResponse(
			fmt.Sprintf("invalid request: %v", validation.Errors),
			map[string]interface{}{"validationErrors": validation.Errors},
		)
	}

	t.logger.Info("Validating template")

	result, err := t.client.ValidateTemplate(ctx, templateBody, templateURL)
	if err != nil {
		return t.CreateErrorResponse(aws.Classify(err).Error(), nil)
	}

	return t.CreateSuccessResponse(
		"Template is valid",
		map[string]interface{}{"validation": result},
	)
}

// ========== Generate Template ==========

// GenerateTemplateTool fetches a resource type's registry schema and
// optionally the template of an existing stack as a starting point.
type GenerateTemplateTool struct {
	*BaseTool
	orchestrator *orchestrator.Orchestrator
}

// NewGenerateTemplateTool creates the template generation tool
func NewGenerateTemplateTool(orch *orchestrator.Orchestrator, logger *logging.Logger) *GenerateTemplateTool {
	inputSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"resourceType": map[string]interface{}{
				"type":        "string",
				"description": "CloudFormation resource type, e.g. AWS::DynamoDB::Table",
			},
			"stackName": map[string]interface{}{
				"type":        "string",
				"description": "Existing stack whose template to include (optional)",
			},
			"templateFormat": map[string]interface{}{
				"type":        "string",
				"description": "Template format, json or yaml (default json)",
			},
		},
		"required": []interface{}{"resourceType"},
	}

	baseTool := NewBaseTool(
		"generate-template",
		"Fetch a resource type's schema and an optional starting template",
		"template",
		inputSchema,
		logger,
	)

	baseTool.AddExample(
		"Get the schema for DynamoDB tables",
		map[string]interface{}{"resourceType": "AWS::DynamoDB::Table"},
		"Schema with the type's properties and provisioning capabilities",
	)

	return &GenerateTemplateTool{
		BaseTool:     baseTool,
		orchestrator: orch,
	}
}

func (t *GenerateTemplateTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	request := types.OperationRequest{
		Operation:      types.OperationTemplateGenerationFlow,
		ResourceType:   utilities.GetStringFromMap(arguments, "resourceType"),
		StackName:      utilities.GetStringFromMap(arguments, "stackName"),
		TemplateFormat: utilities.GetStringFromMap(arguments, "templateFormat"),
	}

	t.logger.WithField("resourceType", request.ResourceType).Info("Generating template information")

	result := t.orchestrator.Execute(ctx, request)
	return operationResponse(t.BaseTool, result, fmt.Sprintf("Retrieved schema for %s", request.ResourceType))
}

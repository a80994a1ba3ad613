package orchestrator

import (
	"context"

	"github.com/versus-control/cloudformation-agent/pkg/cfn"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

// describeStack returns the current description of one stack.
func (o *Orchestrator) describeStack(ctx context.Context, request types.OperationRequest, result *types.OperationResult) error {
	if nameErrors := requireStackName(request); nameErrors != nil {
		o.failValidation(result, nameErrors...)
		return nil
	}
	o.step(result, "validated-request")

	description, err := o.client.DescribeStack(ctx, request.StackName)
	if err != nil {
		return err
	}
	result.Stack = description
	o.step(result, "described-stack")
	return nil
}

// describeStackEvents returns the stack's recent events, newest first.
func (o *Orchestrator) describeStackEvents(ctx context.Context, request types.OperationRequest, result *types.OperationResult) error {
	if nameErrors := requireStackName(request); nameErrors != nil {
		o.failValidation(result, nameErrors...)
		return nil
	}
	o.step(result, "validated-request")

	limit := request.MaxResults
	if limit <= 0 {
		limit = o.maxResults
	}

	events, err := o.client.DescribeStackEvents(ctx, request.StackName, limit)
	if err != nil {
		return err
	}
	result.Events = events
	o.step(result, "fetched-events")
	return nil
}

// describeStackResources returns the stack's provisioned resources.
func (o *Orchestrator) describeStackResources(ctx context.Context, request types.OperationRequest, result *types.OperationResult) error {
	if nameErrors := requireStackName(request); nameErrors != nil {
		o.failValidation(result, nameErrors...)
		return nil
	}
	o.step(result, "validated-request")

	resources, err := o.client.DescribeStackResources(ctx, request.StackName)
	if err != nil {
		return err
	}
	result.StackResources = resources
	o.step(result, "fetched-resources")
	return nil
}

// validateTemplate runs a template through the remote ValidateTemplate
// call. The body wins when given; otherwise the URL; otherwise the
// template is fetched from the named stack first.
func (o *Orchestrator) validateTemplate(ctx context.Context, request types.OperationRequest, result *types.OperationResult) error {
	templateBody := request.TemplateBody
	templateURL := request.TemplateURL

	if templateBody == "" && templateURL == "" {
		if request.StackName == "" {
			o.failValidation(result, "validate-template requires templateBody, templateUrl, or stackName")
			return nil
		}
		if nameErrors := cfn.StackNameErrors(request.StackName); len(nameErrors) > 0 {
			o.failValidation(result, nameErrors...)
			return nil
		}

		fetched, err := o.client.GetTemplate(ctx, request.StackName)
		if err != nil {
			return err
		}
		templateBody = fetched
		o.step(result, "fetched-template")
	}
	o.step(result, "validated-request")

	validation, err := o.client.ValidateTemplate(ctx, templateBody, templateURL)
	if err != nil {
		return err
	}
	result.Validation = validation
	o.step(result, "validated-template")
	return nil
}

// requireStackName is the shared guard for single-stack inspection
// flows. It returns nil when the request names a valid stack.
func requireStackName(request types.OperationRequest) []string {
	if request.StackName == "" {
		return []string{request.Operation + " requires stackName"}
	}
	if nameErrors := cfn.StackNameErrors(request.StackName); len(nameErrors) > 0 {
		return nameErrors
	}
	return nil
}

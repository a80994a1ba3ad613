package orchestrator

import (
	"context"
	"strings"

	"github.com/versus-control/cloudformation-agent/pkg/cfn"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

// templateGenerationFlow fetches the registry schema for a resource
// type and, when a stack name is given, the rendered template of that
// stack.
func (o *Orchestrator) templateGenerationFlow(ctx context.Context, request types.OperationRequest, result *types.OperationResult) error {
	if request.ResourceType == "" {
		o.failValidation(result, "template-generation-flow requires resourceType")
		return nil
	}
	o.step(result, "validated-request")

	schema, err := o.client.DescribeResourceType(ctx, request.ResourceType)
	if err != nil {
		return err
	}
	result.SchemaInfo = schema
	o.step(result, "fetched-schema")

	if request.StackName == "" {
		return nil
	}

	if nameErrors := cfn.StackNameErrors(request.StackName); len(nameErrors) > 0 {
		o.failValidation(result, nameErrors...)
		return nil
	}

	templateBody, err := o.client.GetTemplate(ctx, request.StackName)
	if err != nil {
		return err
	}
	result.Template = &types.TemplateResult{
		StackName:    request.StackName,
		Format:       templateFormatOrDefault(request.TemplateFormat),
		TemplateBody: templateBody,
	}
	o.step(result, "fetched-template")
	return nil
}

func templateFormatOrDefault(format string) string {
	if format == "" {
		return "json"
	}
	return format
}

// listAndManageResources lists the stacks this system manages. The
// ManagedBy tag is the sole inclusion filter; the resource type filter
// is a substring match on the ResourceType tag.
func (o *Orchestrator) listAndManageResources(ctx context.Context, request types.OperationRequest, result *types.OperationResult) error {
	summaries, err := o.client.ListStacks(ctx)
	if err != nil {
		return err
	}
	o.step(result, "listed-stacks")

	maxResults := request.MaxResults
	if maxResults <= 0 {
		maxResults = o.maxResults
	}

	managed := make([]types.StackSummary, 0, len(summaries))
	for _, summary := range summaries {
		description, err := o.client.DescribeStack(ctx, summary.StackName)
		if err != nil {
			// Stacks can vanish between list and describe.
			o.logger.WithError(err).WithField("stackName", summary.StackName).Warn("Skipping stack that could not be described")
			continue
		}

		if description.Tags[types.ManagedByTagKey] != types.ManagedByTagValue {
			continue
		}

		resourceType := description.Tags[types.ResourceTypeTagKey]
		if request.ResourceTypeFilter != "" && !strings.Contains(resourceType, request.ResourceTypeFilter) {
			continue
		}

		summary.ResourceType = resourceType
		summary.Status = description.Status
		summary.Tags = description.Tags
		summary.UpdatedAt = description.UpdatedAt
		managed = append(managed, summary)

		if len(managed) == maxResults {
			break
		}
	}
	o.step(result, "described-stacks")
	o.step(result, "filtered-managed-stacks")

	result.Resources = managed
	return nil
}

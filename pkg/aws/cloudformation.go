package aws

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/sirupsen/logrus"

	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

var _ interfaces.CloudFormationOperations = (*Client)(nil)

// ========== Stack Mutation Methods ==========

// CreateStack submits a new stack. When both template sources are set
// the body wins; the validator has already warned about it.
func (c *Client) CreateStack(ctx context.Context, params types.CreateStackParams) (string, error) {
	c.logger.WithFields(logrus.Fields{
		"stackName":    params.StackName,
		"capabilities": params.Capabilities,
		"tags":         params.Tags,
	}).Info("CreateStack called with parameters")

	input := &cloudformation.CreateStackInput{
		StackName:    aws.String(params.StackName),
		Parameters:   buildParameters(params.Parameters),
		Capabilities: buildCapabilities(params.Capabilities),
		Tags:         buildTags(params.Tags),
	}

	if params.TemplateBody != "" {
		input.TemplateBody = aws.String(params.TemplateBody)
	} else if params.TemplateURL != "" {
		input.TemplateURL = aws.String(params.TemplateURL)
	}

	if params.TimeoutInMinutes != nil {
		input.TimeoutInMinutes = params.TimeoutInMinutes
	}

	result, err := c.cfn.CreateStack(ctx, input)
	if err != nil {
		c.logger.WithError(err).Error("Failed to create stack")
		return "", wrapOperation(fmt.Sprintf("failed to create stack %s", params.StackName), err)
	}

	stackID := aws.ToString(result.StackId)
	c.logger.WithField("stackId", stackID).Info("Stack creation initiated")
	return stackID, nil
}

// UpdateStack submits an update for an existing stack.
func (c *Client) UpdateStack(ctx context.Context, params types.UpdateStackParams) (string, error) {
	c.logger.WithFields(logrus.Fields{
		"stackName":    params.StackName,
		"capabilities": params.Capabilities,
	}).Info("UpdateStack called with parameters")

	input := &cloudformation.UpdateStackInput{
		StackName:    aws.String(params.StackName),
		Parameters:   buildParameters(params.Parameters),
		Capabilities: buildCapabilities(params.Capabilities),
		Tags:         buildTags(params.Tags),
	}

	if params.TemplateBody != "" {
		input.TemplateBody = aws.String(params.TemplateBody)
	} else if params.TemplateURL != "" {
		input.TemplateURL = aws.String(params.TemplateURL)
	}

	result, err := c.cfn.UpdateStack(ctx, input)
	if err != nil {
		c.logger.WithError(err).Error("Failed to update stack")
		return "", wrapOperation(fmt.Sprintf("failed to update stack %s", params.StackName), err)
	}

	stackID := aws.ToString(result.StackId)
	c.logger.WithField("stackId", stackID).Info("Stack update initiated")
	return stackID, nil
}

// DeleteStack starts deletion of a stack, optionally retaining named
// resources.
func (c *Client) DeleteStack(ctx context.Context, params types.DeleteStackParams) error {
	c.logger.WithFields(logrus.Fields{
		"stackName":       params.StackName,
		"retainResources": params.RetainResources,
	}).Info("DeleteStack called with parameters")

	input := &cloudformation.DeleteStackInput{
		StackName: aws.String(params.StackName),
	}
	if len(params.RetainResources) > 0 {
		input.RetainResources = params.RetainResources
	}

	if _, err := c.cfn.DeleteStack(ctx, input); err != nil {
		c.logger.WithError(err).Error("Failed to delete stack")
		return wrapOperation(fmt.Sprintf("failed to delete stack %s", params.StackName), err)
	}

	c.logger.WithField("stackName", params.StackName).Info("Stack deletion initiated")
	return nil
}

// ========== Stack Inspection Methods ==========

// DescribeStack returns the full view of one stack.
func (c *Client) DescribeStack(ctx context.Context, stackName string) (*types.StackDescription, error) {
	result, err := c.cfn.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return nil, wrapOperation(fmt.Sprintf("failed to describe stack %s", stackName), err)
	}

	if len(result.Stacks) == 0 {
		return nil, NewOperationError(ErrStackNotFound, fmt.Sprintf("stack %s not found", stackName), nil)
	}

	return c.convertStack(result.Stacks[0]), nil
}

// GetStackStatus returns the bare status string for a stack.
func (c *Client) GetStackStatus(ctx context.Context, stackName string) (string, error) {
	stack, err := c.DescribeStack(ctx, stackName)
	if err != nil {
		return "", err
	}
	return stack.Status, nil
}

// ListStacks returns summaries for all stacks in the region. Deleted
// stacks keep their summaries for 90 days and are skipped here.
func (c *Client) ListStacks(ctx context.Context) ([]types.StackSummary, error) {
	var summaries []types.StackSummary

	paginator := cloudformation.NewListStacksPaginator(c.cfn, &cloudformation.ListStacksInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapOperation("failed to list stacks", err)
		}
		for _, summary := range page.StackSummaries {
			if summary.StackStatus == cfntypes.StackStatusDeleteComplete {
				continue
			}
			summaries = append(summaries, c.convertStackSummary(summary))
		}
	}

	c.logger.WithField("count", len(summaries)).Debug("Listed CloudFormation stacks")
	return summaries, nil
}

// DescribeStackEvents returns recent events for a stack, newest first.
// A limit of zero means no truncation.
func (c *Client) DescribeStackEvents(ctx context.Context, stackName string, limit int) ([]types.StackEvent, error) {
	result, err := c.cfn.DescribeStackEvents(ctx, &cloudformation.DescribeStackEventsInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return nil, wrapOperation(fmt.Sprintf("failed to describe events for stack %s", stackName), err)
	}

	events := make([]types.StackEvent, 0, len(result.StackEvents))
	for _, event := range result.StackEvents {
		events = append(events, convertStackEvent(event))
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// DescribeStackResource returns the stack's view of one resource.
func (c *Client) DescribeStackResource(ctx context.Context, stackName, logicalResourceID string) (*types.ResourceDetail, error) {
	result, err := c.cfn.DescribeStackResource(ctx, &cloudformation.DescribeStackResourceInput{
		StackName:         aws.String(stackName),
		LogicalResourceId: aws.String(logicalResourceID),
	})
	if err != nil {
		return nil, wrapOperation(fmt.Sprintf("failed to describe resource %s in stack %s", logicalResourceID, stackName), err)
	}

	detail := result.StackResourceDetail
	if detail == nil {
		return nil, NewOperationError(ErrStackNotFound, fmt.Sprintf("resource %s not found in stack %s", logicalResourceID, stackName), nil)
	}

	return &types.ResourceDetail{
		LogicalResourceID:  aws.ToString(detail.LogicalResourceId),
		PhysicalResourceID: aws.ToString(detail.PhysicalResourceId),
		ResourceType:       aws.ToString(detail.ResourceType),
		ResourceStatus:     string(detail.ResourceStatus),
		LastUpdated:        detail.LastUpdatedTimestamp,
	}, nil
}

// DescribeStackResources returns every resource in a stack.
func (c *Client) DescribeStackResources(ctx context.Context, stackName string) ([]types.ResourceDetail, error) {
	result, err := c.cfn.DescribeStackResources(ctx, &cloudformation.DescribeStackResourcesInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return nil, wrapOperation(fmt.Sprintf("failed to describe resources for stack %s", stackName), err)
	}

	resources := make([]types.ResourceDetail, 0, len(result.StackResources))
	for _, resource := range result.StackResources {
		resources = append(resources, types.ResourceDetail{
			LogicalResourceID:  aws.ToString(resource.LogicalResourceId),
			PhysicalResourceID: aws.ToString(resource.PhysicalResourceId),
			ResourceType:       aws.ToString(resource.ResourceType),
			ResourceStatus:     string(resource.ResourceStatus),
			LastUpdated:        resource.Timestamp,
		})
	}
	return resources, nil
}

// ========== Template Methods ==========

// GetTemplate fetches the current template body of a stack.
func (c *Client) GetTemplate(ctx context.Context, stackName string) (string, error) {
	result, err := c.cfn.GetTemplate(ctx, &cloudformation.GetTemplateInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return "", wrapOperation(fmt.Sprintf("failed to get template for stack %s", stackName), err)
	}
	return aws.ToString(result.TemplateBody), nil
}

// ValidateTemplate runs CloudFormation's remote template validation.
func (c *Client) ValidateTemplate(ctx context.Context, templateBody, templateURL string) (*types.ValidateTemplateResult, error) {
	input := &cloudformation.ValidateTemplateInput{}
	if templateBody != "" {
		input.TemplateBody = aws.String(templateBody)
	} else if templateURL != "" {
		input.TemplateURL = aws.String(templateURL)
	}

	result, err := c.cfn.ValidateTemplate(ctx, input)
	if err != nil {
		return nil, wrapOperation("failed to validate template", err)
	}

	validated := &types.ValidateTemplateResult{
		Description:        aws.ToString(result.Description),
		Capabilities:       convertCapabilities(result.Capabilities),
		CapabilitiesReason: aws.ToString(result.CapabilitiesReason),
	}
	for _, param := range result.Parameters {
		validated.Parameters = append(validated.Parameters, types.TemplateParameterInfo{
			Key:          aws.ToString(param.ParameterKey),
			DefaultValue: aws.ToString(param.DefaultValue),
			NoEcho:       aws.ToBool(param.NoEcho),
			Description:  aws.ToString(param.Description),
		})
	}
	return validated, nil
}

// ========== Change Set Methods ==========

// CreateChangeSet creates a change set and returns its ID.
func (c *Client) CreateChangeSet(ctx context.Context, params types.CreateChangeSetParams) (string, error) {
	c.logger.WithFields(logrus.Fields{
		"stackName":     params.StackName,
		"changeSetName": params.ChangeSetName,
		"changeSetType": params.ChangeSetType,
	}).Info("CreateChangeSet called with parameters")

	input := &cloudformation.CreateChangeSetInput{
		StackName:     aws.String(params.StackName),
		ChangeSetName: aws.String(params.ChangeSetName),
		ChangeSetType: cfntypes.ChangeSetType(params.ChangeSetType),
		Parameters:    buildParameters(params.Parameters),
		Capabilities:  buildCapabilities(params.Capabilities),
		Tags:          buildTags(params.Tags),
	}

	if params.TemplateBody != "" {
		input.TemplateBody = aws.String(params.TemplateBody)
	} else if params.TemplateURL != "" {
		input.TemplateURL = aws.String(params.TemplateURL)
	}

	result, err := c.cfn.CreateChangeSet(ctx, input)
	if err != nil {
		return "", wrapOperation(fmt.Sprintf("failed to create change set %s for stack %s", params.ChangeSetName, params.StackName), err)
	}

	return aws.ToString(result.Id), nil
}

// DescribeChangeSet returns the proposed changes of a change set.
func (c *Client) DescribeChangeSet(ctx context.Context, stackName, changeSetName string) (*types.ChangeSetInfo, error) {
	result, err := c.cfn.DescribeChangeSet(ctx, &cloudformation.DescribeChangeSetInput{
		StackName:     aws.String(stackName),
		ChangeSetName: aws.String(changeSetName),
	})
	if err != nil {
		return nil, wrapOperation(fmt.Sprintf("failed to describe change set %s for stack %s", changeSetName, stackName), err)
	}

	info := &types.ChangeSetInfo{
		ChangeSetID:     aws.ToString(result.ChangeSetId),
		ChangeSetName:   aws.ToString(result.ChangeSetName),
		StackName:       aws.ToString(result.StackName),
		Status:          string(result.Status),
		StatusReason:    aws.ToString(result.StatusReason),
		ExecutionStatus: string(result.ExecutionStatus),
	}
	for _, change := range result.Changes {
		rc := change.ResourceChange
		if rc == nil {
			continue
		}
		info.Changes = append(info.Changes, types.ChangeSummary{
			Action:            string(rc.Action),
			LogicalResourceID: aws.ToString(rc.LogicalResourceId),
			ResourceType:      aws.ToString(rc.ResourceType),
			Replacement:       string(rc.Replacement),
		})
	}
	return info, nil
}

// ExecuteChangeSet applies a change set to its stack.
func (c *Client) ExecuteChangeSet(ctx context.Context, stackName, changeSetName string) error {
	c.logger.WithFields(logrus.Fields{
		"stackName":     stackName,
		"changeSetName": changeSetName,
	}).Info("ExecuteChangeSet called with parameters")

	_, err := c.cfn.ExecuteChangeSet(ctx, &cloudformation.ExecuteChangeSetInput{
		StackName:     aws.String(stackName),
		ChangeSetName: aws.String(changeSetName),
	})
	if err != nil {
		return wrapOperation(fmt.Sprintf("failed to execute change set %s for stack %s", changeSetName, stackName), err)
	}
	return nil
}

// ========== Conversion Helpers ==========

func (c *Client) convertStack(stack cfntypes.Stack) *types.StackDescription {
	description := &types.StackDescription{
		StackID:      aws.ToString(stack.StackId),
		StackName:    aws.ToString(stack.StackName),
		Status:       string(stack.StackStatus),
		StatusReason: aws.ToString(stack.StackStatusReason),
		Description:  aws.ToString(stack.Description),
		Tags:         convertTags(stack.Tags),
		Outputs:      convertOutputs(stack.Outputs),
	}
	if stack.CreationTime != nil {
		description.CreatedAt = *stack.CreationTime
	}
	description.UpdatedAt = stack.LastUpdatedTime
	return description
}

func (c *Client) convertStackSummary(summary cfntypes.StackSummary) types.StackSummary {
	converted := types.StackSummary{
		StackID:   aws.ToString(summary.StackId),
		StackName: aws.ToString(summary.StackName),
		Status:    string(summary.StackStatus),
	}
	if summary.CreationTime != nil {
		converted.CreatedAt = *summary.CreationTime
	}
	converted.UpdatedAt = summary.LastUpdatedTime
	return converted
}

func convertStackEvent(event cfntypes.StackEvent) types.StackEvent {
	converted := types.StackEvent{
		EventID:              aws.ToString(event.EventId),
		StackName:            aws.ToString(event.StackName),
		LogicalResourceID:    aws.ToString(event.LogicalResourceId),
		ResourceType:         aws.ToString(event.ResourceType),
		ResourceStatus:       string(event.ResourceStatus),
		ResourceStatusReason: aws.ToString(event.ResourceStatusReason),
	}
	if event.Timestamp != nil {
		converted.Timestamp = *event.Timestamp
	}
	return converted
}

func convertTags(tags []cfntypes.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	converted := make(map[string]string, len(tags))
	for _, tag := range tags {
		if tag.Key != nil && tag.Value != nil {
			converted[*tag.Key] = *tag.Value
		}
	}
	return converted
}

func convertOutputs(outputs []cfntypes.Output) map[string]string {
	if len(outputs) == 0 {
		return nil
	}
	converted := make(map[string]string, len(outputs))
	for _, output := range outputs {
		if output.OutputKey != nil && output.OutputValue != nil {
			converted[*output.OutputKey] = *output.OutputValue
		}
	}
	return converted
}

func convertCapabilities(capabilities []cfntypes.Capability) []string {
	if len(capabilities) == 0 {
		return nil
	}
	converted := make([]string, 0, len(capabilities))
	for _, capability := range capabilities {
		converted = append(converted, string(capability))
	}
	return converted
}

func buildParameters(params []types.Parameter) []cfntypes.Parameter {
	if len(params) == 0 {
		return nil
	}
	built := make([]cfntypes.Parameter, 0, len(params))
	for _, param := range params {
		built = append(built, cfntypes.Parameter{
			ParameterKey:   aws.String(param.Key),
			ParameterValue: aws.String(param.Value),
		})
	}
	return built
}

func buildCapabilities(capabilities []string) []cfntypes.Capability {
	if len(capabilities) == 0 {
		return nil
	}
	built := make([]cfntypes.Capability, 0, len(capabilities))
	for _, capability := range capabilities {
		built = append(built, cfntypes.Capability(capability))
	}
	return built
}

func buildTags(tags map[string]string) []cfntypes.Tag {
	if len(tags) == 0 {
		return nil
	}
	built := make([]cfntypes.Tag, 0, len(tags))
	for key, value := range tags {
		built = append(built, cfntypes.Tag{
			Key:   aws.String(key),
			Value: aws.String(value),
		})
	}
	sort.Slice(built, func(i, j int) bool {
		return aws.ToString(built[i].Key) < aws.ToString(built[j].Key)
	})
	return built
}

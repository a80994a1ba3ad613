package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/versus-control/cloudformation-agent/pkg/cfn"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

// Change set actions accepted by the change-set flow.
const (
	ChangeSetActionCreate   = "create"
	ChangeSetActionDescribe = "describe"
	ChangeSetActionExecute  = "execute"
)

// changeSetFlow previews or applies stack changes through a change
// set instead of a direct update.
func (o *Orchestrator) changeSetFlow(ctx context.Context, request types.OperationRequest, result *types.OperationResult) error {
	action := request.ChangeSetAction
	if action == "" {
		action = ChangeSetActionCreate
	}

	switch action {
	case ChangeSetActionCreate:
		return o.createChangeSet(ctx, request, result)
	case ChangeSetActionDescribe:
		return o.describeChangeSet(ctx, request, result)
	case ChangeSetActionExecute:
		return o.executeChangeSet(ctx, request, result)
	default:
		o.failValidation(result, "unsupported changeSetAction: "+action)
		return nil
	}
}

func (o *Orchestrator) createChangeSet(ctx context.Context, request types.OperationRequest, result *types.OperationResult) error {
	if o.rejectIfReadOnly(types.OpCreateChangeSet, result) {
		return nil
	}

	if request.StackName == "" {
		o.failValidation(result, "change-set-flow requires stackName")
		return nil
	}
	if nameErrors := cfn.StackNameErrors(request.StackName); len(nameErrors) > 0 {
		o.failValidation(result, nameErrors...)
		return nil
	}

	params := types.CreateChangeSetParams{
		StackName:     request.StackName,
		ChangeSetName: request.ChangeSetName,
	}
	if params.ChangeSetName == "" {
		params.ChangeSetName = generateChangeSetName()
	}

	switch {
	case len(request.UpdatedProperties) > 0:
		// Preview an update to an existing managed stack.
		templateBody, err := o.client.GetTemplate(ctx, request.StackName)
		if err != nil {
			return err
		}
		o.step(result, "fetched-template")

		mergedBody, mergedProperties, err := cfn.MergeTemplateProperties(templateBody, request.UpdatedProperties)
		if err != nil {
			return err
		}
		o.step(result, "merged-properties")

		resourceType, err := cfn.ResourceTypeFromTemplate(mergedBody)
		if err != nil {
			resourceType = request.ResourceType
		}

		params.ChangeSetType = "UPDATE"
		params.TemplateBody = mergedBody
		params.Capabilities = cfn.InferCapabilities(resourceType, mergedProperties)

	case request.ResourceType != "":
		// Preview creation of a new stack.
		templateBody, err := cfn.BuildSingleResourceTemplate(request.ResourceType, request.ResourceProperties)
		if err != nil {
			return err
		}
		o.step(result, "built-template")

		params.ChangeSetType = "CREATE"
		params.TemplateBody = templateBody
		params.Capabilities = cfn.InferCapabilities(request.ResourceType, request.ResourceProperties)
		params.Tags = standardTags(request.ResourceType)

	default:
		o.failValidation(result, "change-set-flow create requires updatedProperties or resourceType")
		return nil
	}
	o.step(result, "inferred-capabilities")

	if _, err := o.client.CreateChangeSet(ctx, params); err != nil {
		return err
	}
	o.step(result, "created-change-set")

	info, err := o.client.DescribeChangeSet(ctx, request.StackName, params.ChangeSetName)
	if err != nil {
		return err
	}
	result.ChangeSet = info
	o.step(result, "described-change-set")
	return nil
}

func (o *Orchestrator) describeChangeSet(ctx context.Context, request types.OperationRequest, result *types.OperationResult) error {
	if request.StackName == "" || request.ChangeSetName == "" {
		o.failValidation(result, "change-set-flow describe requires stackName and changeSetName")
		return nil
	}

	info, err := o.client.DescribeChangeSet(ctx, request.StackName, request.ChangeSetName)
	if err != nil {
		return err
	}
	result.ChangeSet = info
	o.step(result, "described-change-set")
	return nil
}

func (o *Orchestrator) executeChangeSet(ctx context.Context, request types.OperationRequest, result *types.OperationResult) error {
	if o.rejectIfReadOnly(types.OpExecuteChangeSet, result) {
		return nil
	}

	if request.StackName == "" || request.ChangeSetName == "" {
		o.failValidation(result, "change-set-flow execute requires stackName and changeSetName")
		return nil
	}

	if err := o.client.ExecuteChangeSet(ctx, request.StackName, request.ChangeSetName); err != nil {
		return err
	}
	o.step(result, "executed-change-set")

	if info, err := o.client.DescribeChangeSet(ctx, request.StackName, request.ChangeSetName); err == nil {
		result.ChangeSet = info
	}

	if !request.WaitForCompletion {
		return nil
	}

	pollResult, err := o.waitAndRecord(ctx, request.StackName, request.MaxWaitTime, result)
	if err != nil {
		return err
	}
	switch {
	case !pollResult.IsComplete:
		result.Status = types.StatusInProgress
	case !pollResult.IsSuccessful:
		result.Status = types.StatusFailed
		result.Errors = append(result.Errors, terminalFailureMessage(request.StackName, pollResult))
	}
	return nil
}

func generateChangeSetName() string {
	return fmt.Sprintf("change-%s", strings.SplitN(uuid.New().String(), "-", 2)[0])
}

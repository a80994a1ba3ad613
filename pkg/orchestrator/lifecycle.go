package orchestrator

import (
	"context"
	"fmt"

	"github.com/versus-control/cloudformation-agent/pkg/cfn"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

// createResourceLifecycle builds a single-resource template, infers
// capabilities, creates the stack, and optionally waits and fetches
// the provisioned resource detail.
func (o *Orchestrator) createResourceLifecycle(ctx context.Context, request types.OperationRequest, result *types.OperationResult) error {
	if o.rejectIfReadOnly(request.Operation, result) {
		return nil
	}

	if request.ResourceType == "" {
		o.failValidation(result, "create-resource-lifecycle requires resourceType")
		return nil
	}

	stackName := request.StackName
	if stackName == "" {
		stackName = cfn.GenerateStackName(request.ResourceType)
	}

	templateBody, err := cfn.BuildSingleResourceTemplate(request.ResourceType, request.ResourceProperties)
	if err != nil {
		return err
	}

	validation, err := cfn.ValidateRequest(types.OpCreateStack, types.StackRequest{
		StackName:    stackName,
		TemplateBody: templateBody,
	})
	if err != nil {
		return err
	}
	for _, warning := range validation.Warnings {
		o.logger.WithField("warning", warning).Warn("Request validation warning")
	}
	if !validation.IsValid {
		o.failValidation(result, validation.Errors...)
		return nil
	}
	o.step(result, "validated-request")
	o.step(result, "built-template")

	capabilities := cfn.InferCapabilities(request.ResourceType, request.ResourceProperties)
	o.step(result, "inferred-capabilities")

	stackID, err := o.client.CreateStack(ctx, types.CreateStackParams{
		StackName:    stackName,
		TemplateBody: templateBody,
		Capabilities: capabilities,
		Tags:         standardTags(request.ResourceType),
	})
	if err != nil {
		return err
	}
	o.step(result, "created-stack")

	created := &types.CreatedResource{
		StackID:      stackID,
		StackName:    stackName,
		ResourceType: request.ResourceType,
		Status:       types.StackStatusCreateInProgress,
	}
	result.CreatedResource = created

	if !request.WaitForCompletion {
		return nil
	}

	pollResult, err := o.waitAndRecord(ctx, stackName, request.MaxWaitTime, result)
	if err != nil {
		return err
	}
	created.Status = pollResult.FinalStatus

	switch {
	case !pollResult.IsComplete:
		result.Status = types.StatusInProgress
		result.Recommendations = append(result.Recommendations, "The stack is still provisioning; check its status later with describe-stack")
	case !pollResult.IsSuccessful:
		result.Status = types.StatusFailed
		result.Errors = append(result.Errors, terminalFailureMessage(stackName, pollResult))
	default:
		if detail := o.fetchResourceDetail(ctx, stackName, request.ResourceType); detail != nil {
			created.ResourceDetails = detail
			o.step(result, "fetched-resource-details")
		}
	}
	return nil
}

// updateResourceLifecycle shallow-merges the caller's properties into
// the stack's current template and submits the update. Caller keys
// win; nested values are replaced wholesale.
func (o *Orchestrator) updateResourceLifecycle(ctx context.Context, request types.OperationRequest, result *types.OperationResult) error {
	if o.rejectIfReadOnly(request.Operation, result) {
		return nil
	}

	if request.StackName == "" {
		o.failValidation(result, "update-resource-lifecycle requires stackName")
		return nil
	}
	if len(request.UpdatedProperties) == 0 {
		o.failValidation(result, "update-resource-lifecycle requires updatedProperties")
		return nil
	}
	if nameErrors := cfn.StackNameErrors(request.StackName); len(nameErrors) > 0 {
		o.failValidation(result, nameErrors...)
		return nil
	}
	o.step(result, "validated-request")

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
		o.logger.WithError(err).Warn("Could not read resource type from template, falling back to request")
		resourceType = request.ResourceType
	}

	capabilities := cfn.InferCapabilities(resourceType, mergedProperties)
	o.step(result, "inferred-capabilities")

	stackID, err := o.client.UpdateStack(ctx, types.UpdateStackParams{
		StackName:    request.StackName,
		TemplateBody: mergedBody,
		Capabilities: capabilities,
	})
	if err != nil {
		return err
	}
	o.step(result, "updated-stack")

	update := &types.UpdateResult{
		StackID:          stackID,
		StackName:        request.StackName,
		Status:           types.StackStatusUpdateInProgress,
		MergedProperties: mergedProperties,
	}
	result.UpdateResult = update

	if !request.WaitForCompletion {
		return nil
	}

	pollResult, err := o.waitAndRecord(ctx, request.StackName, request.MaxWaitTime, result)
	if err != nil {
		return err
	}
	update.Status = pollResult.FinalStatus

	switch {
	case !pollResult.IsComplete:
		result.Status = types.StatusInProgress
		result.Recommendations = append(result.Recommendations, "The update is still running; check its status later with describe-stack")
	case !pollResult.IsSuccessful:
		result.Status = types.StatusFailed
		result.Errors = append(result.Errors, terminalFailureMessage(request.StackName, pollResult))
	default:
		if detail := o.fetchResourceDetail(ctx, request.StackName, resourceType); detail != nil {
			update.ResourceDetails = detail
			o.step(result, "fetched-resource-details")
		}
	}
	return nil
}

// deleteResourceLifecycle starts stack deletion and optionally waits.
// No detail fetch afterwards: the resource is gone. A NOT_FOUND
// observation while waiting means the delete finished.
func (o *Orchestrator) deleteResourceLifecycle(ctx context.Context, request types.OperationRequest, result *types.OperationResult) error {
	if o.rejectIfReadOnly(request.Operation, result) {
		return nil
	}

	if request.StackName == "" {
		o.failValidation(result, "delete-resource-lifecycle requires stackName")
		return nil
	}
	if nameErrors := cfn.StackNameErrors(request.StackName); len(nameErrors) > 0 {
		o.failValidation(result, nameErrors...)
		return nil
	}
	o.step(result, "validated-request")

	err := o.client.DeleteStack(ctx, types.DeleteStackParams{
		StackName:       request.StackName,
		RetainResources: request.RetainResources,
	})
	if err != nil {
		return err
	}
	o.step(result, "initiated-deletion")

	deletion := &types.DeletionResult{
		StackName:         request.StackName,
		Status:            types.StackStatusDeleteInProgress,
		RetainedResources: request.RetainResources,
	}
	result.DeletionResult = deletion

	if !request.WaitForCompletion {
		return nil
	}

	pollResult, err := o.waitAndRecord(ctx, request.StackName, request.MaxWaitTime, result)
	if err != nil {
		return err
	}

	switch {
	case pollResult.FinalStatus == types.StackStatusNotFound || pollResult.FinalStatus == types.StackStatusDeleteComplete:
		deletion.Status = types.StackStatusDeleteComplete
	case !pollResult.IsComplete:
		deletion.Status = pollResult.FinalStatus
		result.Status = types.StatusInProgress
		result.Recommendations = append(result.Recommendations, "The deletion is still running; check its status later with describe-stack")
	default:
		deletion.Status = pollResult.FinalStatus
		result.Status = types.StatusFailed
		result.Errors = append(result.Errors, terminalFailureMessage(request.StackName, pollResult))
	}
	return nil
}

// fetchResourceDetail reads the stack's view of the managed resource
// and augments it with the live Cloud Control view. Both reads are
// best-effort: the stack operation already succeeded.
func (o *Orchestrator) fetchResourceDetail(ctx context.Context, stackName, resourceType string) *types.ResourceDetail {
	detail, err := o.client.DescribeStackResource(ctx, stackName, cfn.LogicalResourceID)
	if err != nil {
		o.logger.WithError(err).Warn("Could not fetch resource detail after completion")
		return nil
	}

	if detail.PhysicalResourceID != "" && resourceType != "" {
		live, err := o.client.GetLiveResource(ctx, resourceType, detail.PhysicalResourceID)
		if err != nil {
			o.logger.WithError(err).Debug("Live resource view unavailable")
		} else {
			detail.LiveProperties = live
		}
	}
	return detail
}

func terminalFailureMessage(stackName string, pollResult *types.PollResult) string {
	if pollResult.StatusReason != "" {
		return fmt.Sprintf("stack %s reached %s: %s", stackName, pollResult.FinalStatus, pollResult.StatusReason)
	}
	return fmt.Sprintf("stack %s reached %s", stackName, pollResult.FinalStatus)
}

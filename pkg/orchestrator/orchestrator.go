// Package orchestrator sequences the AWS calls behind each lifecycle
// operation. Expected failures come back inside the structured result,
// never as a panic; only wiring bugs surface as plain errors.
package orchestrator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/versus-control/cloudformation-agent/internal/config"
	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/aws"
	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

var _ interfaces.StackPoller = (*Orchestrator)(nil)

// Orchestrator drives one request's stack operations. It holds no
// credentials itself: the gateway constructs a fresh one per request
// around a per-request client, the MCP server around its own.
type Orchestrator struct {
	client       interfaces.CloudFormationOperations
	logger       *logging.Logger
	readOnly     bool
	pollInterval time.Duration
	maxWaitTime  time.Duration
	maxResults   int

	// OnStatusCheck, when set, observes every poll made on this
	// orchestrator's behalf. Set it before the first Execute call;
	// the gateway uses it to stream progress to WebSocket clients.
	OnStatusCheck func(stackName string, check types.StatusCheck)
}

// New creates an orchestrator over the given client.
func New(client interfaces.CloudFormationOperations, cfg *config.Config, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{
		client:       client,
		logger:       logger,
		readOnly:     cfg.AWS.ReadOnly,
		pollInterval: cfg.Orchestrator.PollInterval,
		maxWaitTime:  cfg.Orchestrator.MaxWaitTime,
		maxResults:   cfg.Orchestrator.MaxResults,
	}
}

// Execute dispatches one operation request and assembles the result
// envelope. It always returns a result; AWS failures land in
// result.Errors with a taxonomy recommendation where one exists.
func (o *Orchestrator) Execute(ctx context.Context, request types.OperationRequest) *types.OperationResult {
	start := time.Now()
	result := &types.OperationResult{
		Status:         types.StatusCompleted,
		Operation:      request.Operation,
		StepsCompleted: []string{},
	}

	var err error
	switch request.Operation {
	case types.OperationCreateResourceLifecycle:
		err = o.createResourceLifecycle(ctx, request, result)
	case types.OperationUpdateResourceLifecycle:
		err = o.updateResourceLifecycle(ctx, request, result)
	case types.OperationDeleteResourceLifecycle:
		err = o.deleteResourceLifecycle(ctx, request, result)
	case types.OperationTemplateGenerationFlow:
		err = o.templateGenerationFlow(ctx, request, result)
	case types.OperationListAndManageResources:
		err = o.listAndManageResources(ctx, request, result)
	case types.OperationChangeSetFlow:
		err = o.changeSetFlow(ctx, request, result)
	case types.OperationDescribeStack:
		err = o.describeStack(ctx, request, result)
	case types.OperationDescribeStackEvents:
		err = o.describeStackEvents(ctx, request, result)
	case types.OperationDescribeStackResources:
		err = o.describeStackResources(ctx, request, result)
	case types.OperationValidateTemplate:
		err = o.validateTemplate(ctx, request, result)
	case "":
		o.failValidation(result, "operation is required")
	default:
		o.failValidation(result, "unsupported operation: "+request.Operation)
	}

	if err != nil {
		classified := aws.Classify(err)
		result.Status = types.StatusFailed
		result.Errors = append(result.Errors, classified.Error())
		if recommendation := recommendationFor(classified.Code); recommendation != "" {
			result.Recommendations = append(result.Recommendations, recommendation)
		}
	}

	result.ExecutionTime = time.Since(start).Milliseconds()
	o.logger.WithFields(logrus.Fields{
		"operation": request.Operation,
		"status":    result.Status,
		"duration":  result.ExecutionTime,
		"steps":     len(result.StepsCompleted),
	}).Info("Operation finished")
	return result
}

// failValidation marks the result as rejected before any AWS call.
func (o *Orchestrator) failValidation(result *types.OperationResult, messages ...string) {
	result.Status = types.StatusValidationOnly
	result.Errors = append(result.Errors, messages...)
}

// rejectIfReadOnly blocks mutating flows when read-only mode is on.
// The AWS call is never attempted.
func (o *Orchestrator) rejectIfReadOnly(operation string, result *types.OperationResult) bool {
	if !o.readOnly {
		return false
	}

	readOnlyErr := aws.NewReadOnlyError(operation)
	result.Status = types.StatusFailed
	result.Errors = append(result.Errors, readOnlyErr.Error())
	result.Recommendations = append(result.Recommendations, recommendationFor(aws.ErrReadOnlyMode))
	o.logger.WithField("operation", operation).Warn("Mutating operation rejected in read-only mode")
	return true
}

func (o *Orchestrator) step(result *types.OperationResult, name string) {
	result.StepsCompleted = append(result.StepsCompleted, name)
}

// standardTags returns the tags stamped onto every stack this system
// creates. The ManagedBy tag is the sole filter of the list flow.
func standardTags(resourceType string) map[string]string {
	return map[string]string{
		types.ManagedByTagKey:    types.ManagedByTagValue,
		types.ResourceTypeTagKey: resourceType,
		types.CreatedAtTagKey:    time.Now().UTC().Format(time.RFC3339),
	}
}

func recommendationFor(code aws.ErrorCode) string {
	switch code {
	case aws.ErrCredentialsExpired:
		return "Refresh the AWS credentials and retry the operation"
	case aws.ErrResourceAlreadyExists:
		return "Use update-resource-lifecycle to change an existing stack, or pick a different stackName"
	case aws.ErrStackNotFound:
		return "Check the stack name with list-and-manage-resources"
	case aws.ErrInsufficientCapabilities:
		return "Retry with the reported capabilities acknowledged"
	case aws.ErrServiceLimitExceeded:
		return "Wait for throttling to clear or request a service limit increase"
	case aws.ErrReadOnlyMode:
		return "Disable read-only mode to run mutating operations"
	}
	return ""
}

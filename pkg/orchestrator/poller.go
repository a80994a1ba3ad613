package orchestrator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/versus-control/cloudformation-agent/pkg/aws"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

// DefaultPollInterval and DefaultMaxWaitTime bound the wait loop when
// the caller provides nothing.
const (
	DefaultPollInterval = 10 * time.Second
	DefaultMaxWaitTime  = 300 * time.Second
)

var terminalStatuses = map[string]bool{
	types.StackStatusCreateComplete:         true,
	types.StackStatusUpdateComplete:         true,
	types.StackStatusDeleteComplete:         true,
	types.StackStatusCreateFailed:           true,
	types.StackStatusUpdateFailed:           true,
	types.StackStatusDeleteFailed:           true,
	types.StackStatusUpdateRollbackComplete: true,
	types.StackStatusUpdateRollbackFailed:   true,
	types.StackStatusRollbackComplete:       true,
	types.StackStatusRollbackFailed:         true,
}

var successStatuses = map[string]bool{
	types.StackStatusCreateComplete: true,
	types.StackStatusUpdateComplete: true,
	types.StackStatusDeleteComplete: true,
}

// WaitForStackCompletion polls the stack status until it reaches a
// terminal state or the wait budget runs out. A zero PollInterval runs
// the loop without sleeping. A missing stack is a terminal observation
// (NOT_FOUND), not an error: it is what a completed delete looks like.
func (o *Orchestrator) WaitForStackCompletion(ctx context.Context, stackName string, opts types.PollOptions) (*types.PollResult, error) {
	maxWait := opts.MaxWaitTime
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	result := &types.PollResult{}
	start := time.Now()
	deadline := start.Add(maxWait)

	for {
		if !time.Now().Before(deadline) {
			result.FinalStatus = types.StackStatusTimeout
			result.Elapsed = time.Since(start)
			o.logger.WithFields(logrus.Fields{
				"stackName": stackName,
				"checks":    result.Checks,
				"maxWait":   maxWait.String(),
			}).Warn("Stack did not reach a terminal status before the wait budget ran out")
			return result, nil
		}

		status, err := o.client.GetStackStatus(ctx, stackName)
		result.Checks++
		if err != nil {
			if aws.IsStackNotFound(err) {
				result.IsComplete = true
				result.FinalStatus = types.StackStatusNotFound
				result.Elapsed = time.Since(start)
				return result, nil
			}
			result.Elapsed = time.Since(start)
			return result, err
		}

		if opts.OnCheck != nil {
			opts.OnCheck(types.StatusCheck{Status: status, Timestamp: time.Now().UTC()})
		}
		o.logger.WithFields(logrus.Fields{
			"stackName": stackName,
			"status":    status,
			"check":     result.Checks,
		}).Debug("Polled stack status")

		if terminalStatuses[status] {
			result.IsComplete = true
			result.IsSuccessful = successStatuses[status]
			result.FinalStatus = status
			result.Elapsed = time.Since(start)
			if !result.IsSuccessful {
				if description, derr := o.client.DescribeStack(ctx, stackName); derr == nil {
					result.StatusReason = description.StatusReason
				}
			}
			return result, nil
		}

		if opts.PollInterval > 0 {
			sleep := opts.PollInterval
			if remaining := time.Until(deadline); remaining < sleep {
				sleep = remaining
			}
			select {
			case <-ctx.Done():
				result.Elapsed = time.Since(start)
				return result, ctx.Err()
			case <-time.After(sleep):
			}
		}
	}
}

// waitAndRecord runs the wait loop with the orchestrator's defaults,
// honoring the request's maxWaitTime override, and records every
// status check on the result.
func (o *Orchestrator) waitAndRecord(ctx context.Context, stackName string, maxWaitSeconds int64, result *types.OperationResult) (*types.PollResult, error) {
	opts := types.PollOptions{
		PollInterval: o.pollInterval,
		MaxWaitTime:  o.maxWaitTime,
		OnCheck: func(check types.StatusCheck) {
			result.StatusChecks = append(result.StatusChecks, check)
			if o.OnStatusCheck != nil {
				o.OnStatusCheck(stackName, check)
			}
		},
	}
	if maxWaitSeconds > 0 {
		opts.MaxWaitTime = time.Duration(maxWaitSeconds) * time.Second
	}

	pollResult, err := o.WaitForStackCompletion(ctx, stackName, opts)
	if err != nil {
		return nil, err
	}
	o.step(result, "polled-status")
	return pollResult, nil
}

package interfaces

import (
	"context"

	"github.com/versus-control/cloudformation-agent/pkg/types"
)

// CloudFormationOperations is the full CloudFormation surface the
// orchestrator and tools consume. One implementation wraps the AWS
// SDK; tests substitute scripted fakes.
type CloudFormationOperations interface {
	// Stack mutation
	CreateStack(ctx context.Context, params types.CreateStackParams) (string, error)
	UpdateStack(ctx context.Context, params types.UpdateStackParams) (string, error)
	DeleteStack(ctx context.Context, params types.DeleteStackParams) error

	// Stack inspection
	DescribeStack(ctx context.Context, stackName string) (*types.StackDescription, error)
	GetStackStatus(ctx context.Context, stackName string) (string, error)
	ListStacks(ctx context.Context) ([]types.StackSummary, error)
	DescribeStackEvents(ctx context.Context, stackName string, limit int) ([]types.StackEvent, error)
	DescribeStackResource(ctx context.Context, stackName, logicalResourceID string) (*types.ResourceDetail, error)
	DescribeStackResources(ctx context.Context, stackName string) ([]types.ResourceDetail, error)

	// Templates
	GetTemplate(ctx context.Context, stackName string) (string, error)
	ValidateTemplate(ctx context.Context, templateBody, templateURL string) (*types.ValidateTemplateResult, error)

	// Change sets
	CreateChangeSet(ctx context.Context, params types.CreateChangeSetParams) (string, error)
	DescribeChangeSet(ctx context.Context, stackName, changeSetName string) (*types.ChangeSetInfo, error)
	ExecuteChangeSet(ctx context.Context, stackName, changeSetName string) error

	// Registry and live views
	DescribeResourceType(ctx context.Context, typeName string) (*types.SchemaInfo, error)
	GetLiveResource(ctx context.Context, typeName, identifier string) (map[string]interface{}, error)
}

// StackPoller waits for a stack to reach a terminal status.
type StackPoller interface {
	WaitForStackCompletion(ctx context.Context, stackName string, opts types.PollOptions) (*types.PollResult, error)
}

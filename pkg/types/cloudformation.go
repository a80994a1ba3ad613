package types

import (
	"time"
)

// Operation names accepted by the request validator.
const (
	OpCreateStack            = "create-stack"
	OpUpdateStack            = "update-stack"
	OpDeleteStack            = "delete-stack"
	OpDescribeStack          = "describe-stack"
	OpListStacks             = "list-stacks"
	OpValidateTemplate       = "validate-template"
	OpGetTemplate            = "get-template"
	OpCreateChangeSet        = "create-change-set"
	OpExecuteChangeSet       = "execute-change-set"
	OpDescribeStackEvents    = "describe-stack-events"
	OpDescribeStackResources = "describe-stack-resources"
)

// Lifecycle operation names exposed at the HTTP and tool boundaries.
const (
	OperationCreateResourceLifecycle = "create-resource-lifecycle"
	OperationUpdateResourceLifecycle = "update-resource-lifecycle"
	OperationDeleteResourceLifecycle = "delete-resource-lifecycle"
	OperationTemplateGenerationFlow  = "template-generation-flow"
	OperationListAndManageResources  = "list-and-manage-resources"
	OperationChangeSetFlow           = "change-set-flow"
	OperationDescribeStack           = "describe-stack"
	OperationDescribeStackEvents     = "describe-stack-events"
	OperationDescribeStackResources  = "describe-stack-resources"
	OperationValidateTemplate        = "validate-template"
)

// Overall result status values.
const (
	StatusCompleted      = "completed"
	StatusFailed         = "failed"
	StatusInProgress     = "in-progress"
	StatusValidationOnly = "validation-only"
)

// CloudFormation stack status values observed while polling.
const (
	StackStatusCreateInProgress       = "CREATE_IN_PROGRESS"
	StackStatusCreateComplete         = "CREATE_COMPLETE"
	StackStatusCreateFailed           = "CREATE_FAILED"
	StackStatusUpdateInProgress       = "UPDATE_IN_PROGRESS"
	StackStatusUpdateComplete         = "UPDATE_COMPLETE"
	StackStatusUpdateFailed           = "UPDATE_FAILED"
	StackStatusDeleteInProgress       = "DELETE_IN_PROGRESS"
	StackStatusDeleteComplete         = "DELETE_COMPLETE"
	StackStatusDeleteFailed           = "DELETE_FAILED"
	StackStatusRollbackComplete       = "ROLLBACK_COMPLETE"
	StackStatusRollbackFailed         = "ROLLBACK_FAILED"
	StackStatusUpdateRollbackComplete = "UPDATE_ROLLBACK_COMPLETE"
	StackStatusUpdateRollbackFailed   = "UPDATE_ROLLBACK_FAILED"

	// Pseudo statuses produced by the local wait loop, never by AWS.
	StackStatusTimeout  = "TIMEOUT"
	StackStatusNotFound = "NOT_FOUND"
)

// Tag keys and values stamped onto every stack this system creates.
const (
	ManagedByTagKey    = "ManagedBy"
	ManagedByTagValue  = "Mastra-CloudFormation-Tools"
	ResourceTypeTagKey = "ResourceType"
	CreatedAtTagKey    = "CreatedAt"
)

// Credentials carries per-request AWS credentials. They live only for
// the duration of one request's runtime context and are never written
// to durable storage by the orchestration layer.
type Credentials struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken,omitempty"`
	Region          string `json:"region,omitempty"`
}

// Parameter is a CloudFormation template parameter. Parameters are a
// list rather than a map so duplicate keys survive long enough for the
// validator to report them.
type Parameter struct {
	Key   string `json:"parameterKey"`
	Value string `json:"parameterValue"`
}

// StackRequest describes one stack operation. Exactly one resource is
// embedded per generated template (stack-per-resource convention).
type StackRequest struct {
	ResourceType      string                 `json:"resourceType,omitempty"`
	Properties        map[string]interface{} `json:"properties,omitempty"`
	StackName         string                 `json:"stackName,omitempty"`
	Region            string                 `json:"region,omitempty"`
	Tags              map[string]string      `json:"tags,omitempty"`
	TemplateBody      string                 `json:"templateBody,omitempty"`
	TemplateURL       string                 `json:"templateUrl,omitempty"`
	Parameters        []Parameter            `json:"parameters,omitempty"`
	TimeoutInMinutes  *int32                 `json:"timeoutInMinutes,omitempty"`
	RetainResources   []string               `json:"retainResources,omitempty"`
	UpdatedProperties map[string]interface{} `json:"updatedProperties,omitempty"`
	WaitForCompletion bool                   `json:"waitForCompletion,omitempty"`
	MaxWaitTime       int64                  `json:"maxWaitTime,omitempty"` // seconds
}

// ValidationResult reports request validation findings. It is computed
// once per request and never persisted.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// PollOptions tunes the stack completion wait loop. A zero
// PollInterval runs the loop without sleeping, which tests rely on.
// OnCheck, when set, observes every status check as it happens.
type PollOptions struct {
	PollInterval time.Duration     `json:"pollInterval,omitempty"`
	MaxWaitTime  time.Duration     `json:"maxWaitTime,omitempty"`
	OnCheck      func(StatusCheck) `json:"-"`
}

// PollResult is the outcome of waiting for a stack to reach a terminal
// status.
type PollResult struct {
	IsComplete   bool          `json:"isComplete"`
	IsSuccessful bool          `json:"isSuccessful"`
	FinalStatus  string        `json:"finalStatus"`
	StatusReason string        `json:"statusReason,omitempty"`
	Checks       int           `json:"checks"`
	Elapsed      time.Duration `json:"elapsed"`
}

// StatusCheck records one DescribeStacks observation made while
// polling.
type StatusCheck struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// CreatedResource summarizes a stack created by the create lifecycle.
type CreatedResource struct {
	StackID         string          `json:"stackId"`
	StackName       string          `json:"stackName"`
	ResourceType    string          `json:"resourceType"`
	Status          string          `json:"status"`
	ResourceDetails *ResourceDetail `json:"resourceDetails,omitempty"`
}

// UpdateResult summarizes a stack update.
type UpdateResult struct {
	StackID          string                 `json:"stackId,omitempty"`
	StackName        string                 `json:"stackName"`
	Status           string                 `json:"status"`
	MergedProperties map[string]interface{} `json:"mergedProperties,omitempty"`
	ResourceDetails  *ResourceDetail        `json:"resourceDetails,omitempty"`
}

// DeletionResult summarizes a stack deletion.
type DeletionResult struct {
	StackName         string   `json:"stackName"`
	Status            string   `json:"status"`
	RetainedResources []string `json:"retainedResources,omitempty"`
}

// ResourceDetail is the post-provisioning view of the single resource
// inside a stack, combining the stack resource record with the live
// Cloud Control view when available.
type ResourceDetail struct {
	LogicalResourceID  string                 `json:"logicalResourceId"`
	PhysicalResourceID string                 `json:"physicalResourceId,omitempty"`
	ResourceType       string                 `json:"resourceType"`
	ResourceStatus     string                 `json:"resourceStatus"`
	LiveProperties     map[string]interface{} `json:"liveProperties,omitempty"`
	LastUpdated        *time.Time             `json:"lastUpdated,omitempty"`
}

// StackSummary is one entry in the managed-resource listing.
type StackSummary struct {
	StackID      string            `json:"stackId"`
	StackName    string            `json:"stackName"`
	ResourceType string            `json:"resourceType,omitempty"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    *time.Time        `json:"updatedAt,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
}

// StackDescription is the full DescribeStacks view of one stack.
type StackDescription struct {
	StackID      string            `json:"stackId"`
	StackName    string            `json:"stackName"`
	Status       string            `json:"status"`
	StatusReason string            `json:"statusReason,omitempty"`
	Description  string            `json:"description,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
	Outputs      map[string]string `json:"outputs,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    *time.Time        `json:"updatedAt,omitempty"`
}

// StackEvent is one CloudFormation stack event, newest first in
// listings.
type StackEvent struct {
	EventID              string    `json:"eventId"`
	StackName            string    `json:"stackName"`
	LogicalResourceID    string    `json:"logicalResourceId,omitempty"`
	ResourceType         string    `json:"resourceType,omitempty"`
	ResourceStatus       string    `json:"resourceStatus"`
	ResourceStatusReason string    `json:"resourceStatusReason,omitempty"`
	Timestamp            time.Time `json:"timestamp"`
}

// TemplateResult carries a rendered or stored template body.
type TemplateResult struct {
	StackName    string `json:"stackName,omitempty"`
	Format       string `json:"format"`
	TemplateBody string `json:"templateBody"`
}

// SchemaInfo is the registry schema for a resource type (DescribeType).
type SchemaInfo struct {
	TypeName         string `json:"typeName"`
	TypeArn          string `json:"typeArn,omitempty"`
	ProvisioningType string `json:"provisioningType,omitempty"`
	Description      string `json:"description,omitempty"`
	Schema           string `json:"schema,omitempty"`
	DocumentationURL string `json:"documentationUrl,omitempty"`
}

// ChangeSummary is one proposed change inside a change set.
type ChangeSummary struct {
	Action            string `json:"action"`
	LogicalResourceID string `json:"logicalResourceId"`
	ResourceType      string `json:"resourceType"`
	Replacement       string `json:"replacement,omitempty"`
}

// ChangeSetInfo describes a CloudFormation change set.
type ChangeSetInfo struct {
	ChangeSetID     string          `json:"changeSetId"`
	ChangeSetName   string          `json:"changeSetName"`
	StackName       string          `json:"stackName"`
	Status          string          `json:"status"`
	StatusReason    string          `json:"statusReason,omitempty"`
	ExecutionStatus string          `json:"executionStatus,omitempty"`
	Changes         []ChangeSummary `json:"changes,omitempty"`
}

// OperationRequest is the JSON body of the HTTP operation boundary.
type OperationRequest struct {
	Operation          string                 `json:"operation"`
	ResourceType       string                 `json:"resourceType,omitempty"`
	ResourceProperties map[string]interface{} `json:"resourceProperties,omitempty"`
	StackName          string                 `json:"stackName,omitempty"`
	StackID            string                 `json:"stackId,omitempty"`
	UpdatedProperties  map[string]interface{} `json:"updatedProperties,omitempty"`
	RetainResources    []string               `json:"retainResources,omitempty"`
	ResourceTypeFilter string                 `json:"resourceTypeFilter,omitempty"`
	MaxResults         int                    `json:"maxResults,omitempty"`
	TemplateFormat     string                 `json:"templateFormat,omitempty"`
	TemplateBody       string                 `json:"templateBody,omitempty"`
	TemplateURL        string                 `json:"templateUrl,omitempty"`
	ChangeSetName      string                 `json:"changeSetName,omitempty"`
	ChangeSetAction    string                 `json:"changeSetAction,omitempty"` // create, describe, execute
	WaitForCompletion  bool                   `json:"waitForCompletion,omitempty"`
	MaxWaitTime        int64                  `json:"maxWaitTime,omitempty"` // seconds
}

// OperationResult is the JSON body returned for every operation run.
// It is assembled once per run and immutable after return.
type OperationResult struct {
	Status          string                  `json:"status"` // completed, failed, in-progress, validation-only
	Operation       string                  `json:"operation"`
	CreatedResource *CreatedResource        `json:"createdResource,omitempty"`
	UpdateResult    *UpdateResult           `json:"updateResult,omitempty"`
	DeletionResult  *DeletionResult         `json:"deletionResult,omitempty"`
	Resources       []StackSummary          `json:"resources,omitempty"`
	Stack           *StackDescription       `json:"stack,omitempty"`
	StackResources  []ResourceDetail        `json:"stackResources,omitempty"`
	Template        *TemplateResult         `json:"template,omitempty"`
	SchemaInfo      *SchemaInfo             `json:"schemaInfo,omitempty"`
	ChangeSet       *ChangeSetInfo          `json:"changeSet,omitempty"`
	Validation      *ValidateTemplateResult `json:"validation,omitempty"`
	Events          []StackEvent            `json:"events,omitempty"`
	StatusChecks    []StatusCheck           `json:"statusChecks,omitempty"`
	Errors          []string                `json:"errors,omitempty"`
	Recommendations []string                `json:"recommendations,omitempty"`
	ExecutionTime   int64                   `json:"executionTime"` // milliseconds
	StepsCompleted  []string                `json:"stepsCompleted"`
}

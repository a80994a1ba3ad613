// Package mocks provides in-memory fakes for the AWS-facing
// interfaces. Tests script stack status sequences and failures here
// instead of talking to CloudFormation.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

var _ interfaces.CloudFormationOperations = (*MockCloudFormationClient)(nil)

// MockStack is the in-memory record behind one mocked stack.
type MockStack struct {
	StackID      string
	StackName    string
	Status       string
	StatusReason string
	TemplateBody string
	Tags         map[string]string
	Outputs      map[string]string
	Parameters   []types.Parameter
	Capabilities []string
	Events       []types.StackEvent
	Resources    []types.ResourceDetail
	ChangeSets   map[string]*types.ChangeSetInfo
	CreatedAt    time.Time
}

// MockCloudFormationClient implements CloudFormationOperations against
// in-memory state. Status sequences scripted per stack take precedence
// over the stored status, one entry per describe call, holding the
// last entry once exhausted.
type MockCloudFormationClient struct {
	mu     sync.Mutex
	logger *logging.Logger

	Stacks          map[string]*MockStack
	StatusSequences map[string][]string
	sequenceIndex   map[string]int

	// Errors holds scripted failures keyed by method name, returned
	// once set, for every call to that method.
	Errors map[string]error

	CreateCalls   []types.CreateStackParams
	UpdateCalls   []types.UpdateStackParams
	DeleteCalls   []types.DeleteStackParams
	DescribeCalls int

	Schemas       map[string]*types.SchemaInfo
	LiveResources map[string]map[string]interface{}
}

// NewMockCloudFormationClient returns an empty mock.
func NewMockCloudFormationClient(logger *logging.Logger) *MockCloudFormationClient {
	return &MockCloudFormationClient{
		logger:          logger,
		Stacks:          make(map[string]*MockStack),
		StatusSequences: make(map[string][]string),
		sequenceIndex:   make(map[string]int),
		Errors:          make(map[string]error),
		Schemas:         make(map[string]*types.SchemaInfo),
		LiveResources:   make(map[string]map[string]interface{}),
	}
}

// ========== Test Scripting Helpers ==========

// AddManagedStack seeds a stack carrying the given tags, defaulting the
// status to CREATE_COMPLETE.
func (m *MockCloudFormationClient) AddManagedStack(stackName string, tags map[string]string) *MockStack {
	m.mu.Lock()
	defer m.mu.Unlock()

	stack := &MockStack{
		StackID:    mockStackID(stackName),
		StackName:  stackName,
		Status:     types.StackStatusCreateComplete,
		Tags:       tags,
		ChangeSets: make(map[string]*types.ChangeSetInfo),
		CreatedAt:  time.Now().UTC(),
	}
	m.Stacks[stackName] = stack
	return stack
}

// ScriptStatuses makes the next describe calls for stackName observe
// the given statuses in order.
func (m *MockCloudFormationClient) ScriptStatuses(stackName string, statuses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusSequences[stackName] = statuses
	m.sequenceIndex[stackName] = 0
}

// FailWith makes every call to the named method return err.
func (m *MockCloudFormationClient) FailWith(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[method] = err
}

// NotFoundError builds the error CloudFormation actually produces for
// a missing stack.
func NotFoundError(stackName string) error {
	return &smithy.GenericAPIError{
		Code:    "ValidationError",
		Message: fmt.Sprintf("Stack with id %s does not exist", stackName),
	}
}

func mockStackID(stackName string) string {
	return fmt.Sprintf("arn:aws:cloudformation:us-west-2:123456789012:stack/%s/%s", stackName, uuid.New().String())
}

func (m *MockCloudFormationClient) scripted(method string) error {
	return m.Errors[method]
}

// ========== Stack Mutation ==========

func (m *MockCloudFormationClient) CreateStack(ctx context.Context, params types.CreateStackParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, params)
	if err := m.scripted("CreateStack"); err != nil {
		return "", err
	}

	if _, exists := m.Stacks[params.StackName]; exists {
		return "", &smithy.GenericAPIError{
			Code:    "AlreadyExistsException",
			Message: fmt.Sprintf("Stack [%s] already exists", params.StackName),
		}
	}

	stack := &MockStack{
		StackID:      mockStackID(params.StackName),
		StackName:    params.StackName,
		Status:       types.StackStatusCreateInProgress,
		TemplateBody: params.TemplateBody,
		Tags:         params.Tags,
		Parameters:   params.Parameters,
		Capabilities: params.Capabilities,
		ChangeSets:   make(map[string]*types.ChangeSetInfo),
		CreatedAt:    time.Now().UTC(),
		Resources: []types.ResourceDetail{
			{
				LogicalResourceID:  "Resource",
				PhysicalResourceID: params.StackName + "-physical",
				ResourceType:       params.Tags["ResourceType"],
				ResourceStatus:     types.StackStatusCreateComplete,
			},
		},
	}
	m.Stacks[params.StackName] = stack
	return stack.StackID, nil
}

func (m *MockCloudFormationClient) UpdateStack(ctx context.Context, params types.UpdateStackParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, params)
	if err := m.scripted("UpdateStack"); err != nil {
		return "", err
	}

	stack, exists := m.Stacks[params.StackName]
	if !exists {
		return "", NotFoundError(params.StackName)
	}

	stack.Status = types.StackStatusUpdateInProgress
	if params.TemplateBody != "" {
		stack.TemplateBody = params.TemplateBody
	}
	stack.Capabilities = params.Capabilities
	return stack.StackID, nil
}

func (m *MockCloudFormationClient) DeleteStack(ctx context.Context, params types.DeleteStackParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, params)
	if err := m.scripted("DeleteStack"); err != nil {
		return err
	}

	stack, exists := m.Stacks[params.StackName]
	if !exists {
		return NotFoundError(params.StackName)
	}
	stack.Status = types.StackStatusDeleteInProgress
	return nil
}

// ========== Stack Inspection ==========

func (m *MockCloudFormationClient) DescribeStack(ctx context.Context, stackName string) (*types.StackDescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DescribeCalls++
	if err := m.scripted("DescribeStack"); err != nil {
		return nil, err
	}

	status, ok := m.nextScriptedStatus(stackName)
	stack, exists := m.Stacks[stackName]
	if !exists && !ok {
		return nil, NotFoundError(stackName)
	}

	description := &types.StackDescription{
		StackName: stackName,
		Status:    status,
	}
	if exists {
		description.StackID = stack.StackID
		description.StatusReason = stack.StatusReason
		description.Tags = stack.Tags
		description.Outputs = stack.Outputs
		description.CreatedAt = stack.CreatedAt
		if !ok {
			description.Status = stack.Status
		}
	}
	return description, nil
}

// nextScriptedStatus consumes one entry of the stack's scripted status
// sequence. Exhausted sequences keep returning their last entry.
func (m *MockCloudFormationClient) nextScriptedStatus(stackName string) (string, bool) {
	sequence, ok := m.StatusSequences[stackName]
	if !ok || len(sequence) == 0 {
		return "", false
	}
	index := m.sequenceIndex[stackName]
	if index >= len(sequence) {
		index = len(sequence) - 1
	} else {
		m.sequenceIndex[stackName] = index + 1
	}
	return sequence[index], true
}

func (m *MockCloudFormationClient) GetStackStatus(ctx context.Context, stackName string) (string, error) {
	description, err := m.DescribeStack(ctx, stackName)
	if err != nil {
		return "", err
	}
	return description.Status, nil
}

func (m *MockCloudFormationClient) ListStacks(ctx context.Context) ([]types.StackSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.scripted("ListStacks"); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(m.Stacks))
	for name := range m.Stacks {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]types.StackSummary, 0, len(names))
	for _, name := range names {
		stack := m.Stacks[name]
		if stack.Status == types.StackStatusDeleteComplete {
			continue
		}
		summaries = append(summaries, types.StackSummary{
			StackID:   stack.StackID,
			StackName: stack.StackName,
			Status:    stack.Status,
			CreatedAt: stack.CreatedAt,
		})
	}
	return summaries, nil
}

func (m *MockCloudFormationClient) DescribeStackEvents(ctx context.Context, stackName string, limit int) ([]types.StackEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.scripted("DescribeStackEvents"); err != nil {
		return nil, err
	}

	stack, exists := m.Stacks[stackName]
	if !exists {
		return nil, NotFoundError(stackName)
	}

	events := stack.Events
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (m *MockCloudFormationClient) DescribeStackResource(ctx context.Context, stackName, logicalResourceID string) (*types.ResourceDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.scripted("DescribeStackResource"); err != nil {
		return nil, err
	}

	stack, exists := m.Stacks[stackName]
	if !exists {
		return nil, NotFoundError(stackName)
	}
	for i := range stack.Resources {
		if stack.Resources[i].LogicalResourceID == logicalResourceID {
			detail := stack.Resources[i]
			return &detail, nil
		}
	}
	return nil, &smithy.GenericAPIError{
		Code:    "ValidationError",
		Message: fmt.Sprintf("Resource %s does not exist for stack %s", logicalResourceID, stackName),
	}
}

func (m *MockCloudFormationClient) DescribeStackResources(ctx context.Context, stackName string) ([]types.ResourceDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.scripted("DescribeStackResources"); err != nil {
		return nil, err
	}

	stack, exists := m.Stacks[stackName]
	if !exists {
		return nil, NotFoundError(stackName)
	}
	return stack.Resources, nil
}

// ========== Templates ==========

func (m *MockCloudFormationClient) GetTemplate(ctx context.Context, stackName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.scripted("GetTemplate"); err != nil {
		return "", err
	}

	stack, exists := m.Stacks[stackName]
	if !exists {
		return "", NotFoundError(stackName)
	}
	return stack.TemplateBody, nil
}

func (m *MockCloudFormationClient) ValidateTemplate(ctx context.Context, templateBody, templateURL string) (*types.ValidateTemplateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.scripted("ValidateTemplate"); err != nil {
		return nil, err
	}

	if templateBody == "" && templateURL == "" {
		return nil, &smithy.GenericAPIError{
			Code:    "ValidationError",
			Message: "Either TemplateBody or TemplateURL must be specified",
		}
	}
	return &types.ValidateTemplateResult{Description: "mock template"}, nil
}

// ========== Change Sets ==========

func (m *MockCloudFormationClient) CreateChangeSet(ctx context.Context, params types.CreateChangeSetParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.scripted("CreateChangeSet"); err != nil {
		return "", err
	}

	stack, exists := m.Stacks[params.StackName]
	if !exists {
		if params.ChangeSetType != "CREATE" {
			return "", NotFoundError(params.StackName)
		}
		stack = &MockStack{
			StackID:    mockStackID(params.StackName),
			StackName:  params.StackName,
			Status:     "REVIEW_IN_PROGRESS",
			ChangeSets: make(map[string]*types.ChangeSetInfo),
			CreatedAt:  time.Now().UTC(),
		}
		m.Stacks[params.StackName] = stack
	}

	changeSetID := fmt.Sprintf("arn:aws:cloudformation:us-west-2:123456789012:changeSet/%s/%s", params.ChangeSetName, uuid.New().String())
	stack.ChangeSets[params.ChangeSetName] = &types.ChangeSetInfo{
		ChangeSetID:     changeSetID,
		ChangeSetName:   params.ChangeSetName,
		StackName:       params.StackName,
		Status:          "CREATE_COMPLETE",
		ExecutionStatus: "AVAILABLE",
	}
	return changeSetID, nil
}

func (m *MockCloudFormationClient) DescribeChangeSet(ctx context.Context, stackName, changeSetName string) (*types.ChangeSetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.scripted("DescribeChangeSet"); err != nil {
		return nil, err
	}

	stack, exists := m.Stacks[stackName]
	if !exists {
		return nil, NotFoundError(stackName)
	}
	changeSet, ok := stack.ChangeSets[changeSetName]
	if !ok {
		return nil, &smithy.GenericAPIError{
			Code:    "ChangeSetNotFound",
			Message: fmt.Sprintf("ChangeSet [%s] does not exist", changeSetName),
		}
	}
	return changeSet, nil
}

func (m *MockCloudFormationClient) ExecuteChangeSet(ctx context.Context, stackName, changeSetName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.scripted("ExecuteChangeSet"); err != nil {
		return err
	}

	stack, exists := m.Stacks[stackName]
	if !exists {
		return NotFoundError(stackName)
	}
	changeSet, ok := stack.ChangeSets[changeSetName]
	if !ok {
		return &smithy.GenericAPIError{
			Code:    "ChangeSetNotFound",
			Message: fmt.Sprintf("ChangeSet [%s] does not exist", changeSetName),
		}
	}

	changeSet.ExecutionStatus = "EXECUTE_COMPLETE"
	stack.Status = types.StackStatusUpdateInProgress
	return nil
}

// ========== Registry and Live Views ==========

func (m *MockCloudFormationClient) DescribeResourceType(ctx context.Context, typeName string) (*types.SchemaInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.scripted("DescribeResourceType"); err != nil {
		return nil, err
	}

	if schema, ok := m.Schemas[typeName]; ok {
		return schema, nil
	}
	return &types.SchemaInfo{
		TypeName:         typeName,
		TypeArn:          fmt.Sprintf("arn:aws:cloudformation:us-west-2::type/resource/%s", typeName),
		Description:      fmt.Sprintf("Mock schema for %s", typeName),
		ProvisioningType: "FULLY_MUTABLE",
		Schema:           `{"typeName":"` + typeName + `","properties":{}}`,
	}, nil
}

func (m *MockCloudFormationClient) GetLiveResource(ctx context.Context, typeName, identifier string) (map[string]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.scripted("GetLiveResource"); err != nil {
		return nil, err
	}

	if properties, ok := m.LiveResources[typeName+"/"+identifier]; ok {
		return properties, nil
	}
	return nil, &smithy.GenericAPIError{
		Code:    "ResourceNotFoundException",
		Message: fmt.Sprintf("Resource %s of type %s was not found", identifier, typeName),
	}
}

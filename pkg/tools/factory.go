package tools

import (
	"fmt"

	"github.com/versus-control/cloudformation-agent/internal/config"
	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
	"github.com/versus-control/cloudformation-agent/pkg/orchestrator"
)

// ToolFactoryImpl implements the ToolFactory interface
type ToolFactoryImpl struct {
	logger *logging.Logger
}

// ToolDependencies contains all dependencies needed to create tools
type ToolDependencies struct {
	Orchestrator *orchestrator.Orchestrator
	CFNClient    interfaces.CloudFormationOperations
	Config       *config.Config
}

// NewToolFactory creates a new tool factory
func NewToolFactory(logger *logging.Logger) interfaces.ToolFactory {
	return &ToolFactoryImpl{logger: logger}
}

// CreateTool creates a tool by type
func (f *ToolFactoryImpl) CreateTool(toolType string, dependencies interface{}) (interfaces.MCPTool, error) {
	deps, ok := dependencies.(*ToolDependencies)
	if !ok {
		if depsVal, valOk := dependencies.(ToolDependencies); valOk {
			deps = &depsVal
		} else {
			return nil, fmt.Errorf("invalid dependencies type for tool %s", toolType)
		}
	}
	if deps.Orchestrator == nil || deps.CFNClient == nil {
		return nil, fmt.Errorf("tool %s requires an orchestrator and a CloudFormation client", toolType)
	}

	switch toolType {
	// Lifecycle Tools
	case "create-resource":
		return NewCreateResourceTool(deps.Orchestrator, f.logger), nil
	case "update-resource":
		return NewUpdateResourceTool(deps.Orchestrator, f.logger), nil
	case "delete-resource":
		return NewDeleteResourceTool(deps.Orchestrator, f.logger), nil

	// Inspection Tools
	case "list-managed-resources":
		return NewListManagedResourcesTool(deps.Orchestrator, f.logger), nil
	case "describe-stack":
		return NewDescribeStackTool(deps.CFNClient, f.logger), nil
	case "describe-stack-events":
		return NewDescribeStackEventsTool(deps.CFNClient, f.logger), nil
	case "describe-stack-resources":
		return NewDescribeStackResourcesTool(deps.CFNClient, f.logger), nil
	case "poll-stack-status":
		return NewPollStackStatusTool(deps.Orchestrator, f.logger), nil

	// Template Tools
	case "get-template":
		return NewGetTemplateTool(deps.CFNClient, f.logger), nil
	case "validate-template":
		return NewValidateTemplateTool(deps.CFNClient, f.logger), nil
	case "generate-template":
		return NewGenerateTemplateTool(deps.Orchestrator, f.logger), nil

	// Change Set Tools
	case "create-change-set":
		return NewCreateChangeSetTool(deps.Orchestrator, f.logger), nil
	case "describe-change-set":
		return NewDescribeChangeSetTool(deps.Orchestrator, f.logger), nil
	case "execute-change-set":
		return NewExecuteChangeSetTool(deps.Orchestrator, f.logger), nil

	default:
		return nil, fmt.Errorf("unsupported tool type: %s", toolType)
	}
}

// GetSupportedToolTypes returns all supported tool types grouped by action type
func (f *ToolFactoryImpl) GetSupportedToolTypes() map[string][]string {
	return map[string][]string{
		"creation": {
			"create-resource",
		},
		"modification": {
			"update-resource",
			"execute-change-set",
		},
		"deletion": {
			"delete-resource",
		},
		"query": {
			"list-managed-resources",
			"describe-stack",
			"describe-stack-events",
			"describe-stack-resources",
			"poll-stack-status",
			"get-template",
			"generate-template",
		},
		"preview": {
			"validate-template",
			"create-change-set",
			"describe-change-set",
		},
	}
}

// GetToolActionType returns the action type for a given tool name
func (f *ToolFactoryImpl) GetToolActionType(toolName string) string {
	toolsByAction := f.GetSupportedToolTypes()
	for actionType, toolNames := range toolsByAction {
		for _, name := range toolNames {
			if name == toolName {
				return actionType
			}
		}
	}
	return "unknown"
}

// RegisterAllTools creates every supported tool with the given
// dependencies and registers it.
func RegisterAllTools(factory interfaces.ToolFactory, registry interfaces.ToolRegistry, deps *ToolDependencies) error {
	for _, toolNames := range factory.GetSupportedToolTypes() {
		for _, toolType := range toolNames {
			tool, err := factory.CreateTool(toolType, deps)
			if err != nil {
				return fmt.Errorf("failed to create tool %s: %w", toolType, err)
			}
			if err := registry.Register(tool); err != nil {
				return fmt.Errorf("failed to register tool %s: %w", toolType, err)
			}
		}
	}
	return nil
}

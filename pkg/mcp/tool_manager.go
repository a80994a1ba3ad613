package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/versus-control/cloudformation-agent/internal/config"
	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
	"github.com/versus-control/cloudformation-agent/pkg/orchestrator"
	"github.com/versus-control/cloudformation-agent/pkg/tools"
)

// ToolManager owns the tool registry and creates every supported tool
// from the factory.
type ToolManager struct {
	registry interfaces.ToolRegistry
	factory  interfaces.ToolFactory
	logger   *logging.Logger
}

// NewToolManager creates the tool manager and registers all tools.
func NewToolManager(client interfaces.CloudFormationOperations, orch *orchestrator.Orchestrator, cfg *config.Config, logger *logging.Logger) *ToolManager {
	registry := tools.NewToolRegistry(logger)
	factory := tools.NewToolFactory(logger)

	tm := &ToolManager{
		registry: registry,
		factory:  factory,
		logger:   logger,
	}

	deps := &tools.ToolDependencies{
		Orchestrator: orch,
		CFNClient:    client,
		Config:       cfg,
	}
	if err := tools.RegisterAllTools(factory, registry, deps); err != nil {
		logger.WithError(err).Error("Failed to register tools")
	}

	return tm
}

// GetRegistry returns the tool registry
func (tm *ToolManager) GetRegistry() interfaces.ToolRegistry {
	return tm.registry
}

// GetFactory returns the tool factory
func (tm *ToolManager) GetFactory() interfaces.ToolFactory {
	return tm.factory
}

// ExecuteTool executes a tool by name with the given arguments
func (tm *ToolManager) ExecuteTool(ctx context.Context, name string, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	tool, exists := tm.registry.GetTool(name)
	if !exists {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Tool '%s' not found", name)),
			},
		}, nil
	}

	if err := tool.ValidateArguments(arguments); err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Invalid arguments for tool '%s': %s", name, err.Error())),
			},
		}, nil
	}

	return tool.Execute(ctx, arguments)
}

// ListAvailableTools returns a list of all available tools
func (tm *ToolManager) ListAvailableTools() []interfaces.MCPTool {
	return tm.registry.ListTools()
}

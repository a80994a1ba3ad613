// Package tools exposes the stack lifecycle operations as MCP tools.
// Each tool wraps either the orchestrator (composite flows) or the
// CloudFormation client directly (plain reads) and renders its outcome
// as a structured JSON tool result.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
)

// ToolRegistryImpl implements the ToolRegistry interface
type ToolRegistryImpl struct {
	tools    map[string]interfaces.MCPTool
	category map[string][]interfaces.MCPTool
	mutex    sync.RWMutex
	logger   *logging.Logger
}

// NewToolRegistry creates a new tool registry
func NewToolRegistry(logger *logging.Logger) interfaces.ToolRegistry {
	return &ToolRegistryImpl{
		tools:    make(map[string]interfaces.MCPTool),
		category: make(map[string][]interfaces.MCPTool),
		logger:   logger,
	}
}

// Register adds a tool to the registry
func (r *ToolRegistryImpl) Register(tool interfaces.MCPTool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}

	r.tools[name] = tool
	category := tool.Category()
	r.category[category] = append(r.category[category], tool)

	r.logger.WithField("toolName", name).WithField("category", category).Info("Registered MCP tool")
	return nil
}

// Unregister removes a tool from the registry
func (r *ToolRegistryImpl) Unregister(name string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	tool, exists := r.tools[name]
	if !exists {
		return fmt.Errorf("tool %s not found", name)
	}

	delete(r.tools, name)

	category := tool.Category()
	categoryTools := r.category[category]
	for i, t := range categoryTools {
		if t.Name() == name {
			r.category[category] = append(categoryTools[:i], categoryTools[i+1:]...)
			break
		}
	}
	if len(r.category[category]) == 0 {
		delete(r.category, category)
	}

	r.logger.WithField("toolName", name).Info("Unregistered MCP tool")
	return nil
}

// GetTool retrieves a tool by name
func (r *ToolRegistryImpl) GetTool(name string) (interfaces.MCPTool, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// ListTools returns all registered tools
func (r *ToolRegistryImpl) ListTools() []interfaces.MCPTool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var tools []interfaces.MCPTool
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	return tools
}

// ListToolsByCategory returns all tools in a specific category
func (r *ToolRegistryImpl) ListToolsByCategory(category string) []interfaces.MCPTool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tools, exists := r.category[category]
	if !exists {
		return []interfaces.MCPTool{}
	}

	result := make([]interfaces.MCPTool, len(tools))
	copy(result, tools)
	return result
}

// ExecuteTool validates the arguments and executes a tool by name
func (r *ToolRegistryImpl) ExecuteTool(ctx context.Context, name string, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	tool, exists := r.GetTool(name)
	if !exists {
		return nil, fmt.Errorf("tool %s not found", name)
	}

	if err := tool.ValidateArguments(arguments); err != nil {
		return nil, fmt.Errorf("argument validation failed: %w", err)
	}

	r.logger.WithField("toolName", name).Info("Executing tool")
	return tool.Execute(ctx, arguments)
}

// GetToolSchemas returns schemas for all registered tools
func (r *ToolRegistryImpl) GetToolSchemas() map[string]interface{} {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	schemas := make(map[string]interface{})
	for name, tool := range r.tools {
		schemas[name] = map[string]interface{}{
			"name":         tool.Name(),
			"description":  tool.Description(),
			"category":     tool.Category(),
			"inputSchema":  tool.GetInputSchema(),
			"outputSchema": tool.GetOutputSchema(),
			"examples":     tool.GetExamples(),
		}
	}
	return schemas
}

// BaseTool provides common functionality for MCP tools
type BaseTool struct {
	name        string
	description string
	category    string
	inputSchema map[string]interface{}
	examples    []interfaces.ToolExample
	logger      *logging.Logger
}

// NewBaseTool creates a new base tool
func NewBaseTool(name, description, category string, inputSchema map[string]interface{}, logger *logging.Logger) *BaseTool {
	return &BaseTool{
		name:        name,
		description: description,
		category:    category,
		inputSchema: inputSchema,
		examples:    []interfaces.ToolExample{},
		logger:      logger,
	}
}

// Name returns the tool name
func (b *BaseTool) Name() string {
	return b.name
}

// Description returns the tool description
func (b *BaseTool) Description() string {
	return b.description
}

// Category returns the tool category
func (b *BaseTool) Category() string {
	return b.category
}

// GetInputSchema returns the input schema
func (b *BaseTool) GetInputSchema() map[string]interface{} {
	return b.inputSchema
}

// GetOutputSchema returns the shared output schema. Every tool renders
// the same envelope: success, message, and operation-specific data.
func (b *BaseTool) GetOutputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"success": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether the operation was successful",
			},
			"message": map[string]interface{}{
				"type":        "string",
				"description": "Human-readable message about the operation",
			},
			"result": map[string]interface{}{
				"type":        "object",
				"description": "The structured operation result",
			},
		},
		"required": []string{"success", "message"},
	}
}

// GetExamples returns usage examples
func (b *BaseTool) GetExamples() []interfaces.ToolExample {
	return b.examples
}

// AddExample adds a usage example
func (b *BaseTool) AddExample(description string, arguments map[string]interface{}, expected string) {
	b.examples = append(b.examples, interfaces.ToolExample{
		Description: description,
		Arguments:   arguments,
		Expected:    expected,
	})
}

// ValidateArguments checks required fields and field types against the
// input schema before the tool runs.
func (b *BaseTool) ValidateArguments(arguments map[string]interface{}) error {
	properties, _ := b.inputSchema["properties"].(map[string]interface{})
	required, _ := b.inputSchema["required"].([]interface{})

	for _, requiredField := range required {
		fieldName, ok := requiredField.(string)
		if !ok {
			continue
		}
		value, exists := arguments[fieldName]
		if !exists {
			return fmt.Errorf("required field %s is missing", fieldName)
		}

		fieldSchema, ok := properties[fieldName].(map[string]interface{})
		if !ok {
			continue
		}
		if expectedType, ok := fieldSchema["type"].(string); ok {
			if !validateType(value, expectedType) {
				return fmt.Errorf("field %s has invalid type, expected %s", fieldName, expectedType)
			}
		}
	}
	return nil
}

func validateType(value interface{}, expectedType string) bool {
	switch expectedType {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		switch value.(type) {
		case int, int32, int64, float32, float64:
			return true
		default:
			return false
		}
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	case "array":
		_, ok := value.([]interface{})
		return ok
	default:
		return true
	}
}

// CreateSuccessResponse creates a standardized success response
func (b *BaseTool) CreateSuccessResponse(message string, data map[string]interface{}) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"success": true,
		"message": message,
	}
	for key, value := range data {
		response[key] = value
	}

	jsonBytes, err := json.Marshal(response)
	if err != nil {
		b.logger.WithError(err).Error("Failed to marshal success response")
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf(`{"success": true, "message": %q, "error": "failed to marshal response data"}`, message)),
			},
			IsError: false,
		}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(jsonBytes))},
		IsError: false,
	}, nil
}

// CreateErrorResponse creates a standardized error response. Extra data
// (such as the structured operation result) rides along so callers can
// inspect what did complete.
func (b *BaseTool) CreateErrorResponse(message string, data map[string]interface{}) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"success": false,
		"error":   message,
	}
	for key, value := range data {
		response[key] = value
	}

	jsonBytes, err := json.Marshal(response)
	if err != nil {
		b.logger.WithError(err).Error("Failed to marshal error response")
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf(`{"success": false, "error": %q}`, message)),
			},
			IsError: true,
		}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(jsonBytes))},
		IsError: true,
	}, nil
}

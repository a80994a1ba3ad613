package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
)

// registerServerTools exposes every tool in the registry over the MCP
// protocol.
func (s *Server) registerServerTools() {
	registered := 0
	for _, tool := range s.ToolManager.ListAvailableTools() {
		s.registerToolDynamic(tool)
		registered++
	}
	s.Logger.WithField("toolCount", registered).Info("Registered tools with MCP server")
}

// registerToolDynamic converts one tool's schema into MCP tool options
// and installs its handler.
func (s *Server) registerToolDynamic(tool interfaces.MCPTool) {
	name := tool.Name()

	mcpOptions := []mcp.ToolOption{mcp.WithDescription(tool.Description())}
	if inputSchema := tool.GetInputSchema(); inputSchema != nil {
		mcpOptions = append(mcpOptions, s.convertSchemaToMCPOptions(inputSchema)...)
	}

	mcpTool := mcp.NewTool(name, mcpOptions...)
	s.mcpServer.AddTool(mcpTool, s.createToolHandler(name))

	s.Logger.WithField("toolName", name).Debug("Registered tool")
}

// convertSchemaToMCPOptions converts JSON Schema to MCP tool options
func (s *Server) convertSchemaToMCPOptions(schema map[string]interface{}) []mcp.ToolOption {
	var options []mcp.ToolOption

	properties, hasProperties := schema["properties"].(map[string]interface{})
	if !hasProperties {
		return options
	}

	required, _ := schema["required"].([]interface{})
	requiredSet := make(map[string]bool)
	for _, req := range required {
		if reqStr, ok := req.(string); ok {
			requiredSet[reqStr] = true
		}
	}

	for propName, propDef := range properties {
		propMap, ok := propDef.(map[string]interface{})
		if !ok {
			continue
		}

		propType, _ := propMap["type"].(string)
		propDesc, _ := propMap["description"].(string)

		var paramOptions []mcp.PropertyOption
		if propDesc != "" {
			paramOptions = append(paramOptions, mcp.Description(propDesc))
		}
		if requiredSet[propName] {
			paramOptions = append(paramOptions, mcp.Required())
		}

		switch propType {
		case "string":
			options = append(options, mcp.WithString(propName, paramOptions...))
		case "number", "integer":
			options = append(options, mcp.WithNumber(propName, paramOptions...))
		case "boolean":
			options = append(options, mcp.WithBoolean(propName, paramOptions...))
		case "object":
			options = append(options, mcp.WithObject(propName, paramOptions...))
		case "array":
			options = append(options, mcp.WithArray(propName, paramOptions...))
		default:
			options = append(options, mcp.WithString(propName, paramOptions...))
		}
	}

	return options
}

// createToolHandler creates a handler function that delegates to the tool manager
func (s *Server) createToolHandler(toolName string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		arguments, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					mcp.NewTextContent("Invalid arguments format"),
				},
			}, nil
		}

		s.Logger.LogMCPCallTool(toolName, arguments)
		return s.ToolManager.ExecuteTool(ctx, toolName, arguments)
	}
}

package agent

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
)

// ToolCaller is the slice of the MCP tool manager the agents depend
// on. The in-process tool manager satisfies it directly; tests swap in
// a scripted implementation.
type ToolCaller interface {
	ExecuteTool(ctx context.Context, name string, arguments map[string]interface{}) (*mcp.CallToolResult, error)
	ListAvailableTools() []interfaces.MCPTool
}

// Agent names used in routing decisions and chat responses.
const (
	AgentInfrastructure = "infrastructure"
	AgentDocumentation  = "documentation"
	AgentCore           = "core"
)

// maxToolRounds bounds the tool-calling loop. A well-behaved model
// answers in one or two rounds; the cap stops a model that keeps
// asking for tools without ever concluding.
const maxToolRounds = 8

// toolDirective is what the infrastructure agent expects the model to
// emit when it wants a tool executed.
type toolDirective struct {
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments"`
	Reply     string                 `json:"reply"`
}

// routingDecision mirrors the JSON the core agent asks the model for.
type routingDecision struct {
	Agent      string  `json:"agent"`
	Action     string  `json:"action"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

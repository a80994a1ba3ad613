package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tmc/langchaingo/llms"

	"github.com/versus-control/cloudformation-agent/internal/config"
	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

// InfrastructureAgent turns natural-language infrastructure requests
// into CloudFormation tool invocations. It speaks a small JSON protocol
// with the model: each model turn either names a tool to run or gives
// the final reply, and every tool result is fed back as conversation
// context.
type InfrastructureAgent struct {
	llm    llms.Model
	config *config.AgentConfig
	tools  ToolCaller
	logger *logging.Logger
}

func NewInfrastructureAgent(llm llms.Model, agentConfig *config.AgentConfig, tools ToolCaller, logger *logging.Logger) *InfrastructureAgent {
	return &InfrastructureAgent{
		llm:    llm,
		config: agentConfig,
		tools:  tools,
		logger: logger,
	}
}

// ProcessMessage runs the conversation loop for one user request.
func (a *InfrastructureAgent) ProcessMessage(ctx context.Context, message string) (*types.ChatResponse, error) {
	a.logger.WithFields(map[string]interface{}{
		"agent":          AgentInfrastructure,
		"message_length": len(message),
	}).Info("Processing infrastructure request")

	messages := []llms.MessageContent{
		systemMessage(a.systemPrompt()),
		humanMessage(message),
	}

	var toolCalls []types.ToolCall

	for round := 0; round < maxToolRounds; round++ {
		response, err := generate(ctx, a.llm, a.config, messages)
		if err != nil {
			return nil, err
		}

		directive, ok := parseToolDirective(response)
		if !ok || directive.Tool == "" {
			reply := strings.TrimSpace(response)
			if ok && directive.Reply != "" {
				reply = directive.Reply
			}
			return &types.ChatResponse{
				Reply:     reply,
				Agent:     AgentInfrastructure,
				ToolCalls: toolCalls,
			}, nil
		}

		a.logger.WithFields(map[string]interface{}{
			"tool":  directive.Tool,
			"round": round + 1,
		}).Info("Model requested tool execution")

		call := types.ToolCall{
			Tool:      directive.Tool,
			Arguments: directive.Arguments,
		}

		resultText := a.executeTool(ctx, &call, directive)
		toolCalls = append(toolCalls, call)

		messages = append(messages,
			aiMessage(response),
			humanMessage(fmt.Sprintf("Tool %s returned:\n%s\n\nContinue. Run another tool or give the final reply.", directive.Tool, resultText)),
		)
	}

	return nil, fmt.Errorf("model did not produce a final reply within %d tool rounds", maxToolRounds)
}

// executeTool runs one tool call and records the outcome on the call
// entry. Failures are reported back to the model as text rather than
// aborting the conversation; the model often recovers by correcting
// its arguments.
func (a *InfrastructureAgent) executeTool(ctx context.Context, call *types.ToolCall, directive toolDirective) string {
	result, err := a.tools.ExecuteTool(ctx, directive.Tool, directive.Arguments)
	if err != nil {
		call.Error = err.Error()
		return fmt.Sprintf("tool execution failed: %v", err)
	}

	resultText := extractToolResultText(result)
	if result.IsError {
		call.Error = resultText
	} else {
		call.Result = resultText
	}
	return resultText
}

func (a *InfrastructureAgent) systemPrompt() string {
	var b strings.Builder

	b.WriteString("You are an AWS infrastructure assistant. You manage AWS resources through CloudFormation stacks, one resource per stack.\n\n")
	b.WriteString("Available tools:\n")
	for _, tool := range a.tools.ListAvailableTools() {
		b.WriteString(fmt.Sprintf("- %s: %s", tool.Name(), tool.Description()))
		if required := requiredArguments(tool.GetInputSchema()); len(required) > 0 {
			b.WriteString(fmt.Sprintf(" (required: %s)", strings.Join(required, ", ")))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nRespond with JSON only.\n")
	b.WriteString("To run a tool: {\"tool\": \"<tool-name>\", \"arguments\": {...}}\n")
	b.WriteString("To answer the user: {\"reply\": \"<your answer>\"}\n")
	b.WriteString("Run one tool at a time and wait for its result before deciding the next step.\n")

	return b.String()
}

// parseToolDirective extracts the JSON protocol object from a model
// reply. ok is false when the reply carries no parseable JSON, which
// the caller treats as a plain-text final answer.
func parseToolDirective(response string) (toolDirective, bool) {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return toolDirective{}, false
	}

	var directive toolDirective
	if err := json.Unmarshal([]byte(jsonStr), &directive); err != nil {
		return toolDirective{}, false
	}
	return directive, true
}

// requiredArguments reads the required field names out of a tool's
// input schema.
func requiredArguments(schema map[string]interface{}) []string {
	required, ok := schema["required"].([]interface{})
	if !ok {
		return nil
	}
	names := make([]string, 0, len(required))
	for _, entry := range required {
		if name, ok := entry.(string); ok {
			names = append(names, name)
		}
	}
	return names
}

// extractToolResultText pulls the text payload out of a tool result.
// Content arrives as a value or pointer depending on how the result
// was built, so both are tried.
func extractToolResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := result.Content[0].(*mcp.TextContent); ok {
		return textContent.Text
	}
	if textContent, ok := result.Content[0].(mcp.TextContent); ok {
		return textContent.Text
	}
	return ""
}

package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/versus-control/cloudformation-agent/internal/config"
	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

// CoreAgent routes each chat message to the specialist that should
// handle it. Routing is one cheap model call; when the decision cannot
// be parsed the message goes to the infrastructure agent, which can
// handle the widest range of requests.
type CoreAgent struct {
	llm            llms.Model
	config         *config.AgentConfig
	infrastructure *InfrastructureAgent
	documentation  *DocumentationAgent
	logger         *logging.Logger
}

func NewCoreAgent(llm llms.Model, agentConfig *config.AgentConfig, infrastructure *InfrastructureAgent, documentation *DocumentationAgent, logger *logging.Logger) *CoreAgent {
	return &CoreAgent{
		llm:            llm,
		config:         agentConfig,
		infrastructure: infrastructure,
		documentation:  documentation,
		logger:         logger,
	}
}

// ProcessChat routes the message and runs the chosen specialist.
func (c *CoreAgent) ProcessChat(ctx context.Context, request *types.ChatRequest) (*types.ChatResponse, error) {
	if request == nil || request.Message == "" {
		return nil, fmt.Errorf("chat message is required")
	}

	decision := c.Route(ctx, request.Message)
	c.logger.LogAgentDecision(AgentCore, decision.Agent, decision.Confidence)

	var response *types.ChatResponse
	var err error

	switch decision.Agent {
	case AgentDocumentation:
		response, err = c.documentation.Answer(ctx, request.Message)
	default:
		response, err = c.infrastructure.ProcessMessage(ctx, request.Message)
	}
	if err != nil {
		return nil, err
	}

	response.SessionID = request.SessionID
	return response, nil
}

// Route asks the model which specialist should handle the message.
// The decision is best effort: any reply that cannot be parsed falls
// back to the infrastructure agent with the raw text preserved.
func (c *CoreAgent) Route(ctx context.Context, message string) *types.AgentDecision {
	prompt := fmt.Sprintf(`Classify this user message for an AWS assistant.

Message: %s

Two specialists are available:
- %q runs CloudFormation operations: create, update, delete, list, describe, poll, templates, change sets.
- %q answers questions about AWS resource types, their properties, and documentation. It changes nothing.

Respond with JSON only:
{"agent": "infrastructure" or "documentation", "action": "<short verb phrase>", "reasoning": "<one sentence>", "confidence": 0.0-1.0}`,
		message, AgentInfrastructure, AgentDocumentation)

	fallback := &types.AgentDecision{
		Agent:      AgentInfrastructure,
		Confidence: 0,
	}

	response, err := generate(ctx, c.llm, c.config, []llms.MessageContent{humanMessage(prompt)})
	if err != nil {
		c.logger.WithError(err).Warn("Routing call failed, defaulting to infrastructure agent")
		return fallback
	}
	fallback.Raw = response

	jsonStr := extractJSON(response)
	if jsonStr == "" {
		c.logger.Warn("No JSON in routing reply, defaulting to infrastructure agent")
		return fallback
	}

	var parsed routingDecision
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		c.logger.WithError(err).Warn("Unparseable routing reply, defaulting to infrastructure agent")
		return fallback
	}

	decision := &types.AgentDecision{
		Agent:      parsed.Agent,
		Action:     parsed.Action,
		Reasoning:  parsed.Reasoning,
		Confidence: parsed.Confidence,
		Raw:        response,
	}
	if decision.Agent != AgentInfrastructure && decision.Agent != AgentDocumentation {
		decision.Agent = AgentInfrastructure
	}
	return decision
}

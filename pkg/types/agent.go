package types

import (
	"time"
)

// ChatRequest is one user message forwarded from the gateway to the
// agents.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

// ChatResponse carries the assistant reply plus any tool activity the
// agents performed while producing it.
type ChatResponse struct {
	Reply     string     `json:"reply"`
	Agent     string     `json:"agent"`
	SessionID string     `json:"sessionId,omitempty"`
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
}

// ToolCall records one tool invocation made on the agent's behalf.
type ToolCall struct {
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
	Result    string                 `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// AgentDecision is the routing decision extracted from a core-agent
// reply. Extraction is best effort: when the reply is not parseable
// the Raw field still carries the full text and Agent falls back to
// the infrastructure agent.
type AgentDecision struct {
	Agent      string  `json:"agent"`
	Action     string  `json:"action,omitempty"`
	Reasoning  string  `json:"reasoning,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Raw        string  `json:"raw,omitempty"`
}

// ResourceDoc is one documentation hint entry for a resource type,
// loaded from the resource-docs YAML file.
type ResourceDoc struct {
	TypeName         string   `yaml:"typeName" json:"typeName"`
	Summary          string   `yaml:"summary" json:"summary"`
	DocumentationURL string   `yaml:"documentationUrl" json:"documentationUrl"`
	CommonProperties []string `yaml:"commonProperties,omitempty" json:"commonProperties,omitempty"`
}

// ExecutionUpdate is a progress event streamed to gateway WebSocket
// clients while an operation runs.
type ExecutionUpdate struct {
	Type      string    `json:"type"` // operation_started, status_check, step_completed, operation_completed, operation_failed
	Operation string    `json:"operation"`
	StackName string    `json:"stackName,omitempty"`
	Status    string    `json:"status,omitempty"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

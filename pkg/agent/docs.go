package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/versus-control/cloudformation-agent/internal/config"
	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

var resourceTypePattern = regexp.MustCompile(`AWS::[A-Za-z0-9]+::[A-Za-z0-9]+`)

// DocumentationAgent answers questions about AWS resource types. It
// grounds the model with the curated resource-docs hints and, when the
// question names a concrete type, the live registry schema fetched
// through the tool surface. It never mutates anything.
type DocumentationAgent struct {
	llm    llms.Model
	config *config.AgentConfig
	docs   *config.ResourceDocsConfig
	tools  ToolCaller
	logger *logging.Logger
}

func NewDocumentationAgent(llm llms.Model, agentConfig *config.AgentConfig, docs *config.ResourceDocsConfig, tools ToolCaller, logger *logging.Logger) *DocumentationAgent {
	return &DocumentationAgent{
		llm:    llm,
		config: agentConfig,
		docs:   docs,
		tools:  tools,
		logger: logger,
	}
}

// Answer responds to one documentation question.
func (d *DocumentationAgent) Answer(ctx context.Context, question string) (*types.ChatResponse, error) {
	d.logger.WithFields(map[string]interface{}{
		"agent":           AgentDocumentation,
		"question_length": len(question),
	}).Info("Answering documentation question")

	var contextBlocks []string
	var toolCalls []types.ToolCall

	for _, entry := range d.relevantDocs(question) {
		block := fmt.Sprintf("%s: %s", entry.TypeName, entry.Summary)
		if entry.DocumentationURL != "" {
			block += "\nDocumentation: " + entry.DocumentationURL
		}
		if len(entry.CommonProperties) > 0 {
			block += "\nCommon properties: " + strings.Join(entry.CommonProperties, ", ")
		}
		contextBlocks = append(contextBlocks, block)
	}

	for _, resourceType := range mentionedResourceTypes(question) {
		schema, call := d.lookupSchema(ctx, resourceType)
		if call != nil {
			toolCalls = append(toolCalls, *call)
		}
		if schema != "" {
			contextBlocks = append(contextBlocks, "Registry schema for "+resourceType+":\n"+schema)
		}
	}

	prompt := question
	if len(contextBlocks) > 0 {
		prompt = fmt.Sprintf("Reference material:\n\n%s\n\nQuestion: %s", strings.Join(contextBlocks, "\n\n"), question)
	}

	reply, err := generate(ctx, d.llm, d.config, []llms.MessageContent{
		systemMessage("You are an AWS documentation assistant. Answer questions about CloudFormation resource types, their properties, and how to configure them. Use the reference material when it is provided. Be concise and concrete."),
		humanMessage(prompt),
	})
	if err != nil {
		return nil, err
	}

	return &types.ChatResponse{
		Reply:     strings.TrimSpace(reply),
		Agent:     AgentDocumentation,
		ToolCalls: toolCalls,
	}, nil
}

// relevantDocs returns the hint entries whose type name appears in the
// question, matched loosely on the full name or its final segment.
func (d *DocumentationAgent) relevantDocs(question string) []*config.ResourceDocEntry {
	if d.docs == nil {
		return nil
	}

	lowered := strings.ToLower(question)
	var matches []*config.ResourceDocEntry
	for i := range d.docs.Resources {
		entry := &d.docs.Resources[i]
		typeName := strings.ToLower(entry.TypeName)
		segments := strings.Split(typeName, "::")
		shortName := segments[len(segments)-1]
		if strings.Contains(lowered, typeName) || strings.Contains(lowered, shortName) {
			matches = append(matches, entry)
		}
	}
	return matches
}

// lookupSchema fetches the registry schema for a resource type through
// the template-generation tool. Failures only cost context, never the
// answer.
func (d *DocumentationAgent) lookupSchema(ctx context.Context, resourceType string) (string, *types.ToolCall) {
	if d.tools == nil {
		return "", nil
	}

	arguments := map[string]interface{}{"resourceType": resourceType}
	call := &types.ToolCall{Tool: "generate-template", Arguments: arguments}

	result, err := d.tools.ExecuteTool(ctx, "generate-template", arguments)
	if err != nil {
		d.logger.WithError(err).Warn("Schema lookup failed")
		call.Error = err.Error()
		return "", call
	}

	text := extractToolResultText(result)
	if result.IsError {
		call.Error = text
		return "", call
	}
	call.Result = text
	return text, call
}

// mentionedResourceTypes finds fully qualified resource type names in
// the question, deduplicated in order of first appearance.
func mentionedResourceTypes(question string) []string {
	seen := make(map[string]bool)
	var found []string
	for _, match := range resourceTypePattern.FindAllString(question, -1) {
		if !seen[match] {
			seen[match] = true
			found = append(found, match)
		}
	}
	return found
}

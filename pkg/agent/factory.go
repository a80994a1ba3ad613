package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/versus-control/cloudformation-agent/internal/config"
	"github.com/versus-control/cloudformation-agent/internal/logging"
)

// NewLLM initializes the language model for the configured provider.
// API keys are taken from the agent configuration and never logged.
func NewLLM(agentConfig *config.AgentConfig, logger *logging.Logger) (llms.Model, error) {
	provider := strings.ToLower(agentConfig.Provider)

	logger.WithFields(map[string]interface{}{
		"provider": provider,
		"model":    agentConfig.Model,
	}).Info("Initializing LLM")

	switch provider {
	case "openai":
		if agentConfig.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required for provider 'openai'")
		}
		llm, err := openai.New(
			openai.WithToken(agentConfig.OpenAIAPIKey),
			openai.WithModel(agentConfig.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		logger.Info("OpenAI client initialized successfully")
		return llm, nil

	case "gemini", "googleai":
		if agentConfig.GeminiAPIKey == "" {
			return nil, fmt.Errorf("Gemini API key is required for provider 'gemini'")
		}
		llm, err := googleai.New(
			context.Background(),
			googleai.WithAPIKey(agentConfig.GeminiAPIKey),
			googleai.WithDefaultModel(agentConfig.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		logger.Info("Gemini client initialized successfully")
		return llm, nil

	case "bedrock":
		// Credentials come from the default AWS chain, same as the
		// rest of the SDK. Works with Nova and Claude model IDs.
		llm, err := bedrock.New(
			bedrock.WithModel(agentConfig.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Bedrock client: %w", err)
		}
		logger.Info("Bedrock client initialized successfully")
		return llm, nil

	case "anthropic":
		return nil, fmt.Errorf("anthropic provider is not supported yet, use openai, gemini, or bedrock")

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s. Supported providers: openai, gemini, bedrock", provider)
	}
}

// TestConnectivity makes one small call to verify the provider is
// reachable and the credentials work before the server starts taking
// requests.
func TestConnectivity(ctx context.Context, llm llms.Model, logger *logging.Logger) error {
	logger.Debug("Testing LLM connectivity")

	testPrompt := "Respond with exactly this JSON: {\"status\": \"ok\", \"message\": \"connectivity test successful\"}"

	response, err := llms.GenerateFromSinglePrompt(ctx, llm, testPrompt,
		llms.WithTemperature(0.1),
		llms.WithMaxTokens(100))
	if err != nil {
		return fmt.Errorf("LLM test call failed: %w", err)
	}
	if len(response) == 0 {
		return fmt.Errorf("LLM returned empty response during connectivity test")
	}

	logger.WithFields(map[string]interface{}{
		"test_response_length": len(response),
	}).Info("LLM connectivity test successful")

	return nil
}

// generate sends a system+conversation exchange and returns the first
// choice's text. Nova and the chat providers all answer through
// GenerateContent; the single-prompt helper cannot carry history.
func generate(ctx context.Context, llm llms.Model, agentConfig *config.AgentConfig, messages []llms.MessageContent) (string, error) {
	resp, err := llm.GenerateContent(ctx, messages,
		llms.WithTemperature(agentConfig.Temperature),
		llms.WithMaxTokens(agentConfig.MaxTokens))
	if err != nil {
		return "", fmt.Errorf("failed to generate AI response: %w", err)
	}
	if len(resp.Choices) < 1 {
		return "", fmt.Errorf("model returned empty response - no choices available")
	}

	response := resp.Choices[0].Content
	if len(response) == 0 {
		return "", fmt.Errorf("LLM returned empty response - possible API key, model, or prompt issue")
	}
	return response, nil
}

func systemMessage(text string) llms.MessageContent {
	return llms.MessageContent{
		Role:  llms.ChatMessageTypeSystem,
		Parts: []llms.ContentPart{llms.TextContent{Text: text}},
	}
}

func humanMessage(text string) llms.MessageContent {
	return llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextContent{Text: text}},
	}
}

func aiMessage(text string) llms.MessageContent {
	return llms.MessageContent{
		Role:  llms.ChatMessageTypeAI,
		Parts: []llms.ContentPart{llms.TextContent{Text: text}},
	}
}

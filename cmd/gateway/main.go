package main

import (
	"context"
	"log"
	"time"

	"github.com/versus-control/cloudformation-agent/internal/config"
	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/agent"
	"github.com/versus-control/cloudformation-agent/pkg/credentials"
	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
	"github.com/versus-control/cloudformation-agent/pkg/mcp"
	"github.com/versus-control/cloudformation-agent/pkg/orchestrator"
	"github.com/versus-control/cloudformation-agent/pkg/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting CloudFormation agent gateway")

	store, err := credentials.NewFileStore(cfg.GetCredentialsFilePath(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open credential store")
	}

	gateway := web.NewGateway(cfg, store, buildChatFactory(cfg, logger), logger)
	if err := gateway.Start(); err != nil {
		logger.WithError(err).Fatal("Gateway failed")
	}
}

// buildChatFactory wires the agent stack. A missing or unusable LLM
// configuration disables chat while the rest of the API keeps working.
func buildChatFactory(cfg *config.Config, logger *logging.Logger) web.ChatAgentFactory {
	llm, err := agent.NewLLM(&cfg.Agent, logger)
	if err != nil {
		logger.WithError(err).Warn("Chat disabled: no usable LLM provider configured")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := agent.TestConnectivity(ctx, llm, logger); err != nil {
		logger.WithError(err).Warn("LLM connectivity check failed, chat stays enabled")
	}

	var docs *config.ResourceDocsConfig
	if cfg.Agent.ResourceDocsDir != "" {
		docs, err = config.NewConfigLoader(cfg.Agent.ResourceDocsDir).LoadResourceDocs()
		if err != nil {
			logger.WithError(err).Warn("Resource documentation hints unavailable")
		}
	}

	// Agents are rebuilt per request around the caller's AWS client,
	// so tool calls always run under that caller's credentials.
	return func(client interfaces.CloudFormationOperations) web.ChatAgent {
		orch := orchestrator.New(client, cfg, logger)
		tools := mcp.NewToolManager(client, orch, cfg, logger)
		infrastructure := agent.NewInfrastructureAgent(llm, &cfg.Agent, tools, logger)
		documentation := agent.NewDocumentationAgent(llm, &cfg.Agent, docs, tools, logger)
		return agent.NewCoreAgent(llm, &cfg.Agent, infrastructure, documentation, logger)
	}
}

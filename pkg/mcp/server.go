// Package mcp exposes the stack lifecycle tools and managed-stack
// resources over the Model Context Protocol on stdio.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/versus-control/cloudformation-agent/internal/config"
	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
	"github.com/versus-control/cloudformation-agent/pkg/orchestrator"
)

type Server struct {
	mcpServer *server.MCPServer

	Config       *config.Config
	CFNClient    interfaces.CloudFormationOperations
	Orchestrator *orchestrator.Orchestrator
	Logger       *logging.Logger
	ToolManager  *ToolManager
	ResourceDocs *config.ResourceDocsConfig
}

// NewServer wires the MCP server around one CloudFormation client. The
// client carries the process's environment credentials; per-user
// credentials are the HTTP gateway's concern, not this transport's.
func NewServer(cfg *config.Config, client interfaces.CloudFormationOperations, logger *logging.Logger) *Server {
	orch := orchestrator.New(client, cfg, logger)
	toolManager := NewToolManager(client, orch, cfg, logger)

	mcpServer := server.NewMCPServer(
		cfg.MCP.ServerName,
		cfg.MCP.Version,
		server.WithResourceCapabilities(true, true),
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,

		Config:       cfg,
		CFNClient:    client,
		Orchestrator: orch,
		Logger:       logger,
		ToolManager:  toolManager,
	}

	// Resource docs are optional; tools work without them.
	loader := config.NewConfigLoader(cfg.Agent.ResourceDocsDir)
	if docs, err := loader.LoadResourceDocs(); err != nil {
		logger.WithError(err).Warn("Resource documentation config not loaded, continuing without it")
	} else {
		s.ResourceDocs = docs
	}

	s.registerResources()
	s.registerServerTools()

	return s
}

// Start begins the stdio message loop for the MCP server
func (s *Server) Start(ctx context.Context) error {
	s.Logger.Info("Starting MCP server message loop on stdio...")
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			s.Logger.Info("Shutdown signal received, stopping server")
			return ctx.Err()
		default:
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			response := s.mcpServer.HandleMessage(ctx, line)
			if response != nil {
				responseBytes, err := json.Marshal(response)
				if err != nil {
					s.Logger.WithError(err).Error("Failed to marshal response")
					continue
				}

				os.Stdout.Write(responseBytes)
				os.Stdout.Write([]byte("\n"))
			}
		}
	}

	if err := scanner.Err(); err != nil {
		s.Logger.WithError(err).Error("Error reading from stdin")
		return err
	}

	return nil
}

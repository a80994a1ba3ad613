package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/versus-control/cloudformation-agent/internal/config"
	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/aws"
	"github.com/versus-control/cloudformation-agent/pkg/mcp"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting CloudFormation MCP server...")

	// The stdio server is a local tool for a single operator, so it
	// authenticates through the default AWS credential chain.
	awsClient, err := aws.NewClientFromEnvironment(ctx, cfg.AWS.Region, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize AWS client")
	}

	if err := awsClient.HealthCheck(ctx); err != nil {
		logger.WithError(err).Fatal("AWS health check failed")
	}
	logger.Info("AWS connectivity verified")

	mcpServer := mcp.NewServer(cfg, awsClient, logger)

	logger.WithField("server_name", cfg.MCP.ServerName).
		WithField("version", cfg.MCP.Version).
		Info("MCP server configured successfully")

	if err := mcpServer.Start(ctx); err != nil && err != context.Canceled {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("MCP server shutdown complete")
}

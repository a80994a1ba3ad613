package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the main configuration structure
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	AWS          AWSConfig          `mapstructure:"aws"`
	MCP          MCPConfig          `mapstructure:"mcp"`
	Agent        AgentConfig        `mapstructure:"agent"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Gateway      GatewayConfig      `mapstructure:"gateway"`
	Credentials  CredentialsConfig  `mapstructure:"credentials"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains general server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// AWSConfig contains AWS-specific configuration
type AWSConfig struct {
	Region     string        `mapstructure:"region"`
	ReadOnly   bool          `mapstructure:"read_only"`
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

// MCPConfig contains Model Context Protocol configuration
type MCPConfig struct {
	ServerName string `mapstructure:"server_name"`
	Version    string `mapstructure:"version"`
}

// AgentConfig contains configuration for the AI agents
type AgentConfig struct {
	Provider        string  `mapstructure:"provider"` // openai, gemini, bedrock
	OpenAIAPIKey    string  `mapstructure:"openai_api_key"`
	GeminiAPIKey    string  `mapstructure:"gemini_api_key"`
	AnthropicAPIKey string  `mapstructure:"anthropic_api_key"`
	Model           string  `mapstructure:"model"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature"`
	EnableDebug     bool    `mapstructure:"enable_debug"`
	ResourceDocsDir string  `mapstructure:"resource_docs_dir"`
}

// OrchestratorConfig tunes the stack lifecycle flows
type OrchestratorConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxWaitTime  time.Duration `mapstructure:"max_wait_time"`
	MaxResults   int           `mapstructure:"max_results"`
}

// GatewayConfig contains HTTP gateway configuration
type GatewayConfig struct {
	Port             int    `mapstructure:"port"`
	Host             string `mapstructure:"host"`
	JWTSecret        string `mapstructure:"jwt_secret"`
	TokenTTLMinutes  int    `mapstructure:"token_ttl_minutes"`
	EnableWebSockets bool   `mapstructure:"enable_websockets"`
}

// CredentialsConfig tells the gateway where stored AWS credentials live
type CredentialsConfig struct {
	FilePath string `mapstructure:"file_path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Load loads configuration from file, environment variables, and defaults
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.cfnagent")

	// Environment variable support
	viper.SetEnvPrefix("CFNAGENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Try to read config file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables for sensitive data
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Agent.OpenAIAPIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Agent.GeminiAPIKey = apiKey
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Agent.AnthropicAPIKey = apiKey
	}
	if awsRegion := os.Getenv("AWS_REGION"); awsRegion != "" {
		config.AWS.Region = awsRegion
	}
	if secret := os.Getenv("GATEWAY_JWT_SECRET"); secret != "" {
		config.Gateway.JWTSecret = secret
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.host", "localhost")

	// AWS defaults
	viper.SetDefault("aws.region", "us-west-2")
	viper.SetDefault("aws.read_only", false)
	viper.SetDefault("aws.max_retries", 3)
	viper.SetDefault("aws.base_delay", time.Second)

	// MCP defaults
	viper.SetDefault("mcp.server_name", "cloudformation-agent")
	viper.SetDefault("mcp.version", "1.0.0")

	// Agent defaults
	viper.SetDefault("agent.provider", "openai")
	viper.SetDefault("agent.model", "gpt-4")
	viper.SetDefault("agent.max_tokens", 4000)
	viper.SetDefault("agent.temperature", 0.3)
	viper.SetDefault("agent.enable_debug", false)
	viper.SetDefault("agent.resource_docs_dir", "./config")

	// Orchestrator defaults
	viper.SetDefault("orchestrator.poll_interval", 10*time.Second)
	viper.SetDefault("orchestrator.max_wait_time", 300*time.Second)
	viper.SetDefault("orchestrator.max_results", 50)

	// Gateway defaults
	viper.SetDefault("gateway.port", 8080)
	viper.SetDefault("gateway.host", "localhost")
	viper.SetDefault("gateway.token_ttl_minutes", 60)
	viper.SetDefault("gateway.enable_websockets", true)

	// Credentials defaults
	viper.SetDefault("credentials.file_path", "credentials.store")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.output", "stdout")
}

// GetCredentialsFilePath returns the full path to the credential store file
func (c *Config) GetCredentialsFilePath() string {
	return c.Credentials.FilePath
}

// GetGatewayPort returns the gateway port (fallback to server port if not set)
func (c *Config) GetGatewayPort() int {
	if c.Gateway.Port != 0 {
		return c.Gateway.Port
	}
	return c.Server.Port
}

// IsProductionMode returns true if running in production mode
func (c *Config) IsProductionMode() bool {
	return c.Logging.Level != "debug"
}

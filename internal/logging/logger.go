package logging

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Logger
}

func NewLogger(level, format string) *Logger {
	logger := logrus.New()

	// Set log level
	switch level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	// Set formatter
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &Logger{Logger: logger}
}

// WithContext adds context information to log entries
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.WithFields(logrus.Fields{})

	if requestID := ctx.Value("request_id"); requestID != nil {
		entry = entry.WithField("request_id", requestID)
	}

	if userID := ctx.Value("user_id"); userID != nil {
		entry = entry.WithField("user_id", userID)
	}

	return entry
}

// LogMCPRequest logs incoming MCP requests
func (l *Logger) LogMCPRequest(method string, duration time.Duration, err error) {
	fields := logrus.Fields{
		"type":     "mcp_request",
		"method":   method,
		"duration": duration.Milliseconds(),
	}

	if err != nil {
		fields["error"] = err.Error()
		l.WithFields(fields).Error("MCP request failed")
	} else {
		l.WithFields(fields).Info("MCP request completed")
	}
}

func (l *Logger) LogMCPCallTool(name string, arguments map[string]interface{}) {
	l.WithFields(logrus.Fields{
		"tool":      name,
		"arguments": arguments,
	}).Info("Processing MCP tool call")
}

// LogStackOperation logs one CloudFormation stack operation with its
// outcome.
func (l *Logger) LogStackOperation(operation, stackName string, duration time.Duration, err error) {
	fields := logrus.Fields{
		"type":       "stack_operation",
		"operation":  operation,
		"stack_name": stackName,
		"duration":   duration.Milliseconds(),
	}

	if err != nil {
		fields["error"] = err.Error()
		l.WithFields(fields).Error("Stack operation failed")
	} else {
		l.WithFields(fields).Info("Stack operation completed")
	}
}

// LogRetryAttempt logs one attempt made by the generic retry helper.
func (l *Logger) LogRetryAttempt(operation string, attempt, maxRetries int, delay time.Duration, err error) {
	l.WithFields(logrus.Fields{
		"type":        "retry_attempt",
		"operation":   operation,
		"attempt":     attempt,
		"max_retries": maxRetries,
		"delay":       delay.String(),
		"error":       err.Error(),
	}).Warn("Operation failed, retrying")
}

// LogAgentDecision logs which specialist agent the core agent routed a
// message to.
func (l *Logger) LogAgentDecision(agent, action string, confidence float64) {
	l.WithFields(logrus.Fields{
		"type":       "agent_decision",
		"agent":      agent,
		"action":     action,
		"confidence": confidence,
	}).Info("Agent routing decision")
}

// TruncateKeyID shortens an AWS access key ID for safe logging. Only
// the first four characters survive.
func TruncateKeyID(accessKeyID string) string {
	if len(accessKeyID) <= 4 {
		return accessKeyID
	}
	return accessKeyID[:4] + "..."
}

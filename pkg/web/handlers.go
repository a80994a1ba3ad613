package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/orchestrator"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		g.logger.WithError(err).Error("Failed to encode response")
	}
}

func (g *Gateway) writeError(w http.ResponseWriter, status int, message string) {
	g.writeJSON(w, status, map[string]string{"error": message})
}

// operationsHandler runs one lifecycle operation under the caller's
// credentials. The response is always the operation result envelope:
// AWS failures land in its errors, never in a bare HTTP error.
func (g *Gateway) operationsHandler(w http.ResponseWriter, r *http.Request) {
	var request types.OperationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		g.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := userIDFrom(r.Context())
	client, ctx, err := g.clientForRequest(r.Context(), userID)
	if err != nil {
		g.logger.WithContext(r.Context()).WithError(err).Warn("Cannot run operation")
		g.writeJSON(w, http.StatusOK, &types.OperationResult{
			Status:    types.StatusFailed,
			Operation: request.Operation,
			Errors:    []string{err.Error()},
		})
		return
	}

	orch := orchestrator.New(client, g.config, g.logger)
	orch.OnStatusCheck = func(stackName string, check types.StatusCheck) {
		g.broadcastToUser(userID, &types.ExecutionUpdate{
			Type:      "status_check",
			Operation: request.Operation,
			StackName: stackName,
			Status:    check.Status,
			Timestamp: check.Timestamp,
		})
	}

	g.broadcastToUser(userID, &types.ExecutionUpdate{
		Type:      "operation_started",
		Operation: request.Operation,
		StackName: request.StackName,
		Timestamp: time.Now().UTC(),
	})

	result := orch.Execute(ctx, request)

	update := &types.ExecutionUpdate{
		Type:      "operation_completed",
		Operation: request.Operation,
		StackName: request.StackName,
		Status:    result.Status,
		Timestamp: time.Now().UTC(),
	}
	if result.Status == types.StatusFailed {
		update.Type = "operation_failed"
		if len(result.Errors) > 0 {
			update.Error = result.Errors[0]
		}
	}
	g.broadcastToUser(userID, update)

	g.writeJSON(w, http.StatusOK, result)
}

// chatHandler forwards one message to the agents, running their tool
// calls under the caller's credentials.
func (g *Gateway) chatHandler(w http.ResponseWriter, r *http.Request) {
	if g.newChatAgent == nil {
		g.writeError(w, http.StatusServiceUnavailable, "chat is not configured: no LLM provider available")
		return
	}

	var request types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		g.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.Message == "" {
		g.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	userID := userIDFrom(r.Context())
	client, ctx, err := g.clientForRequest(r.Context(), userID)
	if err != nil {
		g.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	g.logger.WithContext(ctx).WithField("session", request.SessionID).Info("Processing chat message")

	response, err := g.newChatAgent(client).ProcessChat(ctx, &request)
	if err != nil {
		g.logger.WithContext(ctx).WithError(err).Error("Chat processing failed")
		g.writeError(w, http.StatusBadGateway, "chat processing failed: "+err.Error())
		return
	}

	g.writeJSON(w, http.StatusOK, response)
}

// putCredentialsHandler stores the caller's AWS credentials.
func (g *Gateway) putCredentialsHandler(w http.ResponseWriter, r *http.Request) {
	var creds types.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		g.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		g.writeError(w, http.StatusBadRequest, "accessKeyId and secretAccessKey are required")
		return
	}

	userID := userIDFrom(r.Context())
	if err := g.store.Put(r.Context(), userID, creds); err != nil {
		g.logger.WithContext(r.Context()).WithError(err).Error("Failed to store credentials")
		g.writeError(w, http.StatusInternalServerError, "failed to store credentials")
		return
	}

	g.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "credentials stored",
		"userId":      userID,
		"accessKeyId": logging.TruncateKeyID(creds.AccessKeyID),
	})
}

// getCredentialsHandler returns credential metadata. The secret never
// leaves the store.
func (g *Gateway) getCredentialsHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	creds, err := g.store.Get(r.Context(), userID)
	if err != nil {
		g.writeError(w, http.StatusNotFound, "no credentials stored for this user")
		return
	}

	g.writeJSON(w, http.StatusOK, map[string]interface{}{
		"userId":          userID,
		"accessKeyId":     logging.TruncateKeyID(creds.AccessKeyID),
		"region":          creds.Region,
		"hasSessionToken": creds.SessionToken != "",
	})
}

// deleteCredentialsHandler removes the caller's stored credentials.
func (g *Gateway) deleteCredentialsHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	if err := g.store.Delete(r.Context(), userID); err != nil {
		g.logger.WithContext(r.Context()).WithError(err).Error("Failed to delete credentials")
		g.writeError(w, http.StatusInternalServerError, "failed to delete credentials")
		return
	}

	g.writeJSON(w, http.StatusOK, map[string]string{"message": "credentials deleted"})
}

// healthHandler reports liveness. With a valid bearer token and stored
// credentials it also checks whether AWS answers for that caller.
func (g *Gateway) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "ok",
		"service": g.config.MCP.ServerName,
		"version": g.config.MCP.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}

	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		if claims, err := g.parseToken(strings.TrimPrefix(header, "Bearer ")); err == nil {
			response["awsReachable"] = g.awsReachable(r, claims.UserID)
		}
	}

	g.writeJSON(w, http.StatusOK, response)
}

func (g *Gateway) awsReachable(r *http.Request, userID string) bool {
	client, ctx, err := g.clientForRequest(r.Context(), userID)
	if err != nil {
		return false
	}

	checker, ok := client.(interface {
		HealthCheck(ctx context.Context) error
	})
	if !ok {
		return true
	}
	return checker.HealthCheck(ctx) == nil
}

// Package web is the HTTP gateway: a JWT-authenticated JSON API over
// the stack lifecycle operations, per-user credential storage, a chat
// endpoint backed by the agents, and a WebSocket progress stream.
//
// Credentials are resolved per request. The gateway holds none itself:
// each operation builds a fresh CloudFormation client from the caller's
// stored credentials and discards it when the request ends.
package web

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/versus-control/cloudformation-agent/internal/config"
	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/aws"
	"github.com/versus-control/cloudformation-agent/pkg/credentials"
	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

// ClientFactory builds a CloudFormation client for one request's
// credentials. Credentials are passed by value and live only as long
// as the request.
type ClientFactory func(ctx context.Context, creds types.Credentials, region string, logger *logging.Logger) (interfaces.CloudFormationOperations, error)

// ChatAgent is what the chat endpoint needs from the agent layer.
type ChatAgent interface {
	ProcessChat(ctx context.Context, request *types.ChatRequest) (*types.ChatResponse, error)
}

// ChatAgentFactory assembles the agent stack over one request's
// client, so agent tool calls run under the caller's credentials.
type ChatAgentFactory func(client interfaces.CloudFormationOperations) ChatAgent

// wsConnection is one WebSocket client with its owner and liveness
// bookkeeping.
type wsConnection struct {
	conn     *websocket.Conn
	userID   string
	writeMu  sync.Mutex
	lastPong time.Time
}

// Gateway handles the HTTP and WebSocket surface.
type Gateway struct {
	router       *mux.Router
	config       *config.Config
	store        interfaces.CredentialStore
	newClient    ClientFactory
	newChatAgent ChatAgentFactory
	logger       *logging.Logger
	upgrader     websocket.Upgrader

	connections map[string]*wsConnection
	connMutex   sync.RWMutex
}

// NewGateway creates the gateway. chatFactory may be nil, which leaves
// the chat endpoint answering 503 while the rest of the API works; the
// gateway stays operable without an LLM configured.
func NewGateway(cfg *config.Config, store interfaces.CredentialStore, chatFactory ChatAgentFactory, logger *logging.Logger) *Gateway {
	g := &Gateway{
		router:       mux.NewRouter(),
		config:       cfg,
		store:        store,
		newClient:    defaultClientFactory,
		newChatAgent: chatFactory,
		logger:       logger,
		connections:  make(map[string]*wsConnection),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in development
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	g.setupRoutes()
	return g
}

// SetClientFactory swaps the per-request client constructor. Tests use
// it to run the full HTTP surface against a mock CloudFormation
// client.
func (g *Gateway) SetClientFactory(factory ClientFactory) {
	g.newClient = factory
}

func defaultClientFactory(ctx context.Context, creds types.Credentials, region string, logger *logging.Logger) (interfaces.CloudFormationOperations, error) {
	return aws.NewClient(ctx, creds, region, logger)
}

// setupRoutes configures HTTP routes. Token minting and liveness stay
// outside the auth middleware; everything else under /api requires a
// bearer token.
func (g *Gateway) setupRoutes() {
	g.router.HandleFunc("/api/auth/token", g.tokenHandler).Methods("POST")
	g.router.HandleFunc("/api/health", g.healthHandler).Methods("GET")

	api := g.router.PathPrefix("/api").Subrouter()
	api.Use(g.authMiddleware)
	api.HandleFunc("/operations", g.operationsHandler).Methods("POST")
	api.HandleFunc("/chat", g.chatHandler).Methods("POST")
	api.HandleFunc("/credentials", g.putCredentialsHandler).Methods("PUT")
	api.HandleFunc("/credentials", g.getCredentialsHandler).Methods("GET")
	api.HandleFunc("/credentials", g.deleteCredentialsHandler).Methods("DELETE")

	if g.config.Gateway.EnableWebSockets {
		g.router.HandleFunc("/ws", g.websocketHandler)
	}
}

// Router exposes the handler for tests and embedding.
func (g *Gateway) Router() http.Handler {
	return g.router
}

// Start blocks serving HTTP on the configured address.
func (g *Gateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.config.Gateway.Host, g.config.GetGatewayPort())
	g.logger.WithField("addr", addr).Info("Starting gateway")

	return http.ListenAndServe(addr, g.router)
}

// clientForRequest resolves the caller's stored credentials and builds
// a client around them. The returned context carries the credentials
// for the layers that read them from there.
func (g *Gateway) clientForRequest(ctx context.Context, userID string) (interfaces.CloudFormationOperations, context.Context, error) {
	creds, err := g.store.Get(ctx, userID)
	if err != nil {
		return nil, ctx, fmt.Errorf("no stored AWS credentials for this user, store them with PUT /api/credentials: %w", err)
	}

	region := creds.Region
	if region == "" {
		region = g.config.AWS.Region
	}

	client, err := g.newClient(ctx, creds, region, g.logger)
	if err != nil {
		return nil, ctx, fmt.Errorf("failed to build AWS client: %w", err)
	}

	return client, credentials.WithCredentials(ctx, creds), nil
}

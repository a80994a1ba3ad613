package interfaces

import (
	"context"

	"github.com/versus-control/cloudformation-agent/pkg/types"
)

// CredentialStore is the gateway's durable per-user credential
// storage. Implementations must never hand secrets to loggers; the
// orchestration layer itself only ever sees credentials through the
// per-request runtime context.
type CredentialStore interface {
	Put(ctx context.Context, userID string, creds types.Credentials) error
	Get(ctx context.Context, userID string) (types.Credentials, error)
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]string, error)
}

// Package credentials carries per-request AWS credentials through the
// request lifecycle and stores named credential profiles for the
// gateway. The orchestration layer reads credentials exclusively from
// the request context; it never touches environment variables or the
// store directly.
package credentials

import (
	"context"

	"github.com/versus-control/cloudformation-agent/pkg/aws"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

type contextKey string

const (
	credentialsKey    contextKey = "aws-credentials"
	requestContextKey contextKey = "request-context"
)

// RequestContext is the per-request metadata the gateway threads
// alongside the credentials.
type RequestContext struct {
	RequestID string
	UserID    string
}

// WithCredentials returns a context carrying the credentials for one
// request. Nothing outlives the context.
func WithCredentials(ctx context.Context, creds types.Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey, creds)
}

// FromContext extracts the request credentials. The boolean is false
// when the request never attached any.
func FromContext(ctx context.Context) (types.Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey).(types.Credentials)
	return creds, ok
}

// RequireFromContext extracts the request credentials or fails with a
// credential-class error. Handlers attach credentials before calling
// into orchestration, so the missing-context message means a wiring
// bug, not keys that went stale.
func RequireFromContext(ctx context.Context) (types.Credentials, error) {
	creds, ok := FromContext(ctx)
	if !ok {
		return types.Credentials{}, aws.NewOperationError(aws.ErrCredentialsExpired, "no AWS credentials attached to the request context", nil)
	}
	return creds, nil
}

// WithRequestContext attaches the request metadata. The IDs are
// mirrored under the plain string keys the logger's WithContext reads.
func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	ctx = context.WithValue(ctx, requestContextKey, rc)
	if rc.RequestID != "" {
		ctx = context.WithValue(ctx, "request_id", rc.RequestID) //nolint:staticcheck
	}
	if rc.UserID != "" {
		ctx = context.WithValue(ctx, "user_id", rc.UserID) //nolint:staticcheck
	}
	return ctx
}

// RequestFromContext extracts the request metadata attached by the
// gateway middleware. The boolean is false for requests that never
// passed through it.
func RequestFromContext(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey).(RequestContext)
	return rc, ok
}

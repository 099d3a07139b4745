package diag

import (
	"context"

	uuid "github.com/satori/go.uuid"
)

type contextKeys string

const sessionIDKey contextKeys = "sessionID"

// ContextWithSessionID - create context with given sessionID
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// ContextWithNewSessionID - create context with a newly generated sessionID.
// To be used at an entry point of a logical unit of work (e.g client connection)
func ContextWithNewSessionID(ctx context.Context) context.Context {
	return ContextWithSessionID(ctx, uuid.NewV4().String())
}

// SessionIDValue - returns sessionID value taken from context
func SessionIDValue(ctx context.Context) string {
	val := ctx.Value(sessionIDKey)
	if val == nil {
		return ""
	}
	return val.(string)
}

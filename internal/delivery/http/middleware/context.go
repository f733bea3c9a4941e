package middleware

import (
	"context"

	"confernet/internal/app"
	"confernet/internal/gate"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	instanceKey contextKey = "instance"
	decisionKey contextKey = "decision"
)

// SetUserID returns a context with the user ID set. Used by RequireSession.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// SetInstance returns a context carrying the request's app instance.
func SetInstance(ctx context.Context, inst *app.Instance) context.Context {
	return context.WithValue(ctx, instanceKey, inst)
}

// InstanceFromContext returns the app instance resolved by AppInstance.
func InstanceFromContext(ctx context.Context) (*app.Instance, bool) {
	inst, ok := ctx.Value(instanceKey).(*app.Instance)
	return inst, ok && inst != nil
}

// DecisionFromContext returns the gate decision for the current navigation.
func DecisionFromContext(ctx context.Context) (gate.Decision, bool) {
	d, ok := ctx.Value(decisionKey).(gate.Decision)
	return d, ok
}

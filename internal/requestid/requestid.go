// Package requestid provides utilities for tagging digest runs with unique IDs.
// Every compose-and-publish cycle gets one ID so its log entries can be
// correlated across the composer, publisher, and worker layers.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// RequestIDKey is the context key for storing request IDs.
const RequestIDKey contextKey = "request_id"

// New generates a fresh request ID (UUID v4).
func New() string {
	return uuid.New().String()
}

// FromContext retrieves the request ID from the context.
// Returns an empty string if no request ID is found.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Ensure returns a context that carries a request ID, generating one when
// the parent context has none, along with the ID in effect.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return WithRequestID(ctx, id), id
}

package transportcore

import (
	"context"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// SubjectContextKey is the context key for the authenticated subject.
	SubjectContextKey contextKey = "subject"

	// RequestIDContextKey is the context key for the request id.
	RequestIDContextKey contextKey = "request_id"

	// ClientIPContextKey is the context key for the resolved client address.
	ClientIPContextKey contextKey = "client_ip"
)

// SubjectFromContext returns the authenticated subject stored by the auth
// middleware. Returns "" and false if the request was not authenticated.
func SubjectFromContext(ctx context.Context) (string, bool) {
	return stringFromContext(ctx, SubjectContextKey)
}

// ContextWithSubject adds the authenticated subject to ctx.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return withString(ctx, SubjectContextKey, subject)
}

// RequestIDFromContext returns the request id.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFromContext(ctx, RequestIDContextKey)
}

// ContextWithRequestID adds the request id to ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, RequestIDContextKey, id)
}

// ClientIPFromContext returns the client address resolved by the request
// context middleware.
func ClientIPFromContext(ctx context.Context) (string, bool) {
	return stringFromContext(ctx, ClientIPContextKey)
}

// ContextWithClientIP adds the client address to ctx.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return withString(ctx, ClientIPContextKey, ip)
}

func stringFromContext(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(key).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

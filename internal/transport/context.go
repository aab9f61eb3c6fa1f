package transport

import (
	"context"

	"github.com/jamesprial/authgate/internal/transport/transportcore"
)

// SubjectFromContext returns the authenticated subject stored by the
// authentication middleware. Returns "" and false if the request was not
// authenticated.
func SubjectFromContext(ctx context.Context) (string, bool) {
	return transportcore.SubjectFromContext(ctx)
}

// ContextWithSubject adds the authenticated subject to ctx.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return transportcore.ContextWithSubject(ctx, subject)
}

// RequestIDFromContext returns the request id assigned on entry.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return transportcore.RequestIDFromContext(ctx)
}

// ClientIPFromContext returns the resolved client address.
func ClientIPFromContext(ctx context.Context) (string, bool) {
	return transportcore.ClientIPFromContext(ctx)
}

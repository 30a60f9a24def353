package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/schemaforge/protocol"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestIDHeader is the transport metadata key a caller may use to supply its own ID.
const RequestIDHeader = "X-Request-ID"

// RequestID returns middleware that injects a request ID into the context. An ID already in
// the context or supplied through the X-Request-ID metadata is kept; otherwise a random
// UUID is generated.
func RequestID() Middleware {
	return RequestIDWithGenerator(uuid.NewString)
}

// RequestIDWithGenerator returns middleware that uses a custom ID generator.
func RequestIDWithGenerator(generator func() string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if RequestIDFromContext(ctx) != "" {
				return next(ctx, req)
			}
			id := protocol.GetRequestMeta(ctx, RequestIDHeader)
			if id == "" {
				id = generator()
			}
			return next(ContextWithRequestID(ctx, id), req)
		}
	}
}

// RequestIDFromContext returns the request ID from the context, or "" if not set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ContextWithRequestID returns a new context with the request ID set.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

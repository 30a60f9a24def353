// Package middleware provides request middleware for schemaforge servers.
//
// Each middleware wraps the next handler, so it can act before and after the request:
//
//	chain := middleware.Chain(
//	    middleware.Recover(),
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	)
//	handler := chain(baseHandler)
//
// # Available Middleware
//
//   - Recover: turns panics into internal errors
//   - RequestID: injects a request ID, honouring X-Request-ID
//   - Timeout: enforces a request deadline
//   - Logging: logs the method, duration and validation verdict
//   - SizeLimit: rejects oversized params
//   - RateLimit, RateLimitByMethod, RateLimitBySchema: token bucket limits
//   - Auth: API key or bearer token authentication from transport metadata
//   - OTel: OpenTelemetry spans and metrics
//
// DefaultStack bundles Recover, RequestID and Logging.
//
// # Validation Requests
//
// SchemaName and ValidationResult expose the schema a request targets and the verdict a
// response carries. Logging, OTel and RateLimitBySchema use them to label requests.
//
// # Logging
//
// Logger is a small structured logging interface. NewZapLogger adapts a *zap.Logger.
package middleware

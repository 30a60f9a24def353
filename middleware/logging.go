package middleware

import (
	"context"
	"time"

	"github.com/felixgeelhaar/schemaforge/protocol"
)

// Logger is the interface for structured logging.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logging returns middleware that logs every request.
//
// Successful requests are logged at info level and failed ones at error level. Validation
// requests also carry the schema name, the verdict and the violation count; a rejected
// payload is still a successful request.
func Logging(logger Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			fields := []Field{
				F("method", req.Method),
				F("duration", time.Since(start)),
			}
			if requestID := RequestIDFromContext(ctx); requestID != "" {
				fields = append(fields, F("request_id", requestID))
			}
			if name := SchemaName(req); name != "" {
				fields = append(fields, F("schema", name))
			}
			if res, ok := ValidationResult(resp); ok {
				fields = append(fields, F("valid", res.Valid), F("violations", len(res.Violations)))
			}

			switch {
			case err != nil:
				fields = append(fields, F("error", err.Error()))
				logger.Error("request failed", fields...)
			case resp != nil && resp.Error != nil:
				fields = append(fields, F("error", resp.Error.Message), F("code", resp.Error.Code))
				logger.Warn("request rejected", fields...)
			default:
				logger.Info("request completed", fields...)
			}

			return resp, err
		}
	}
}

// NopLogger is a logger that discards all log entries.
type NopLogger struct{}

func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Warn(msg string, fields ...Field)  {}

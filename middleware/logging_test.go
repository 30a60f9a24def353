package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/felixgeelhaar/schemaforge/protocol"
	"github.com/felixgeelhaar/schemaforge/schema"
)

// mockLogger captures log calls for testing.
type mockLogger struct {
	entries []logEntry
}

type logEntry struct {
	level   string
	message string
	fields  []Field
}

func (l *mockLogger) Info(msg string, fields ...Field) {
	l.entries = append(l.entries, logEntry{level: "info", message: msg, fields: fields})
}

func (l *mockLogger) Error(msg string, fields ...Field) {
	l.entries = append(l.entries, logEntry{level: "error", message: msg, fields: fields})
}

func (l *mockLogger) Debug(msg string, fields ...Field) {
	l.entries = append(l.entries, logEntry{level: "debug", message: msg, fields: fields})
}

func (l *mockLogger) Warn(msg string, fields ...Field) {
	l.entries = append(l.entries, logEntry{level: "warn", message: msg, fields: fields})
}

func (l *mockLogger) field(entry int, key string) (any, bool) {
	for _, f := range l.entries[entry].fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func validateRequest(name string) *protocol.Request {
	return &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      json.RawMessage(`1`),
		Method:  protocol.MethodSchemasValidate,
		Params:  json.RawMessage(`{"schema":"` + name + `","data":{}}`),
	}
}

func TestLogging(t *testing.T) {
	t.Run("logs successful requests", func(t *testing.T) {
		logger := &mockLogger{}

		_, _ = Logging(logger)(okHandler)(context.Background(), &protocol.Request{Method: "schemas/list"})

		if len(logger.entries) != 1 {
			t.Fatalf("expected 1 log entry, got %d", len(logger.entries))
		}
		entry := logger.entries[0]
		if entry.level != "info" || entry.message != "request completed" {
			t.Errorf("entry = %s %q", entry.level, entry.message)
		}
		if v, _ := logger.field(0, "method"); v != "schemas/list" {
			t.Errorf("method = %v", v)
		}
		if v, _ := logger.field(0, "duration"); v == nil {
			t.Error("expected 'duration' field")
		} else if _, ok := v.(time.Duration); !ok {
			t.Errorf("duration = %T, want time.Duration", v)
		}
	})

	t.Run("logs validation outcome", func(t *testing.T) {
		logger := &mockLogger{}
		handler := func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			res := schema.Validate(map[string]any{}, schema.Object().Required("id", "name").Document())
			return protocol.NewResponse(req.ID, res), nil
		}

		_, _ = Logging(logger)(handler)(context.Background(), validateRequest("user"))

		if v, _ := logger.field(0, "schema"); v != "user" {
			t.Errorf("schema = %v, want user", v)
		}
		if v, _ := logger.field(0, "valid"); v != false {
			t.Errorf("valid = %v, want false", v)
		}
		if v, _ := logger.field(0, "violations"); v != 2 {
			t.Errorf("violations = %v, want 2", v)
		}
		if logger.entries[0].level != "info" {
			t.Errorf("level = %q, rejected data is not a failed request", logger.entries[0].level)
		}
	})

	t.Run("logs errors at error level", func(t *testing.T) {
		logger := &mockLogger{}
		handler := func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			return nil, errors.New("handler failed")
		}

		_, _ = Logging(logger)(handler)(context.Background(), &protocol.Request{Method: "schemas/get"})

		if logger.entries[0].level != "error" {
			t.Errorf("level = %q, want error", logger.entries[0].level)
		}
		if v, _ := logger.field(0, "error"); v != "handler failed" {
			t.Errorf("error = %v", v)
		}
	})

	t.Run("logs error responses at warn level", func(t *testing.T) {
		logger := &mockLogger{}
		handler := func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			return protocol.NewErrorResponse(req.ID, protocol.NewNotFound("schema not found: x")), nil
		}

		_, _ = Logging(logger)(handler)(context.Background(), validateRequest("x"))

		if logger.entries[0].level != "warn" {
			t.Errorf("level = %q, want warn", logger.entries[0].level)
		}
		if v, _ := logger.field(0, "code"); v != protocol.CodeNotFound {
			t.Errorf("code = %v", v)
		}
	})

	t.Run("includes request ID if present", func(t *testing.T) {
		logger := &mockLogger{}
		ctx := ContextWithRequestID(context.Background(), "req-123")

		_, _ = Logging(logger)(okHandler)(ctx, &protocol.Request{Method: "ping"})

		if v, _ := logger.field(0, "request_id"); v != "req-123" {
			t.Errorf("request_id = %v", v)
		}
	})
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	_, _ = Logging(logger)(okHandler)(context.Background(), validateRequest("user"))
	logger.Debug("debug", F("k", 1))
	logger.Warn("warn")
	logger.Error("error")

	if logs.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.Message != "request completed" {
		t.Errorf("message = %q", entry.Message)
	}
	if got := entry.ContextMap()["schema"]; got != "user" {
		t.Errorf("schema field = %v", got)
	}

	if NewZapLogger(nil).Zap() == nil {
		t.Error("NewZapLogger(nil) should fall back to a no-op logger")
	}
}

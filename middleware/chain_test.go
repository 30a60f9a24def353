package middleware

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/felixgeelhaar/schemaforge/protocol"
)

func okHandler(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return protocol.NewResponse(req.ID, "ok"), nil
}

func recording(order *[]string, name string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			*order = append(*order, name+"-before")
			resp, err := next(ctx, req)
			*order = append(*order, name+"-after")
			return resp, err
		}
	}
}

func TestChain(t *testing.T) {
	t.Run("empty chain calls handler", func(t *testing.T) {
		resp, err := Chain()(okHandler)(context.Background(), &protocol.Request{Method: "ping"})
		if err != nil || resp == nil {
			t.Fatalf("resp = %v, err = %v", resp, err)
		}
	})

	t.Run("middleware execute in order", func(t *testing.T) {
		var order []string
		handler := func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			order = append(order, "handler")
			return okHandler(ctx, req)
		}

		chained := Chain(recording(&order, "m1"), recording(&order, "m2"))(handler)
		_, _ = chained(context.Background(), &protocol.Request{Method: "ping"})

		want := []string{"m1-before", "m2-before", "handler", "m2-after", "m1-after"}
		if diff := cmp.Diff(want, order); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("middleware can short-circuit", func(t *testing.T) {
		called := false
		block := func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
				return nil, protocol.NewUnauthorized("blocked")
			}
		}
		handler := func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			called = true
			return okHandler(ctx, req)
		}

		if _, err := Chain(block)(handler)(context.Background(), &protocol.Request{}); err == nil {
			t.Error("expected error from blocking middleware")
		}
		if called {
			t.Error("handler should not have been called")
		}
	})
}

func TestStack(t *testing.T) {
	var order []string
	stack := Use(recording(&order, "m1")).Append(recording(&order, "m2"))

	if stack.Len() != 2 {
		t.Errorf("Len() = %d, want 2", stack.Len())
	}

	_, _ = stack.Then(okHandler)(context.Background(), &protocol.Request{Method: "ping"})
	want := []string{"m1-before", "m2-before", "m2-after", "m1-after"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultStack(t *testing.T) {
	logger := &mockLogger{}
	stack := DefaultStack(logger)
	if len(stack) != 3 {
		t.Fatalf("len(DefaultStack) = %d, want 3", len(stack))
	}

	_, _ = Chain(stack...)(okHandler)(context.Background(), &protocol.Request{Method: "ping"})
	if len(logger.entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logger.entries))
	}
	if _, ok := logger.field(0, "request_id"); !ok {
		t.Error("expected request_id from the RequestID middleware")
	}

	if got := len(DefaultStackWithTimeout(logger, 0)); got != 4 {
		t.Errorf("len(DefaultStackWithTimeout) = %d, want 4", got)
	}
}

// Package testutil provides testing utilities for schema registry servers.
//
// Example usage:
//
//	func TestUserSchema(t *testing.T) {
//	    srv := schemaforge.NewServer(schemaforge.ServerInfo{Name: "test", Version: "1.0.0"})
//	    srv.Register("user", schemaforge.Object().
//	        Property("email", schemaforge.String().Format("email")).
//	        Required("email"))
//
//	    tc := testutil.NewTestClient(t, srv)
//	    tc.AssertValid("user", map[string]any{"email": "ada@example.com"})
//
//	    res := tc.AssertInvalid("user", map[string]any{})
//	    testutil.AssertViolation(t, res, "email", "is required")
//	}
package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/felixgeelhaar/schemaforge/client"
	"github.com/felixgeelhaar/schemaforge/protocol"
	"github.com/felixgeelhaar/schemaforge/schema"
	"github.com/felixgeelhaar/schemaforge/transport"
)

// HandlerTransport is an in-memory client.Transport that calls a handler directly.
type HandlerTransport struct {
	handler transport.Handler
}

// NewHandlerTransport creates a transport for handler.
func NewHandlerTransport(handler transport.Handler) *HandlerTransport {
	return &HandlerTransport{handler: handler}
}

// Send runs the request through the handler. The result goes through JSON so callers see
// what a network client would.
func (h *HandlerTransport) Send(ctx context.Context, req *protocol.Request) (*client.Response, error) {
	resp, err := h.handler.HandleRequest(ctx, req)
	if err != nil {
		var perr *protocol.Error
		if !errors.As(err, &perr) {
			perr = protocol.NewInternalError(err.Error())
		}
		return &client.Response{JSONRPC: protocol.JSONRPCVersion, ID: req.ID, Error: perr}, nil
	}
	if resp == nil {
		return &client.Response{JSONRPC: protocol.JSONRPCVersion, ID: req.ID}, nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	var out client.Response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// Close is a no-op.
func (h *HandlerTransport) Close() error {
	return nil
}

// TestClient is an in-memory client that fails the test on transport errors.
type TestClient struct {
	t         testing.TB
	transport *HandlerTransport
	*client.Client
}

// NewTestClient creates a test client for handler, usually a *server.Server.
func NewTestClient(t testing.TB, handler transport.Handler) *TestClient {
	t.Helper()
	tr := NewHandlerTransport(handler)
	return &TestClient{
		t:         t,
		transport: tr,
		Client:    client.New(tr),
	}
}

// Call sends a raw JSON-RPC request. Protocol errors are returned in the response.
func (tc *TestClient) Call(method string, params any) *client.Response {
	tc.t.Helper()

	req := &protocol.Request{JSONRPC: protocol.JSONRPCVersion, ID: json.RawMessage(`1`), Method: method}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			tc.t.Fatalf("marshal params: %v", err)
			return nil
		}
		req.Params = data
	}

	resp, err := tc.transport.Send(context.Background(), req)
	if err != nil {
		tc.t.Fatalf("%s failed: %v", method, err)
		return nil
	}
	return resp
}

// Validate validates data against the named schema and fails the test on error.
func (tc *TestClient) Validate(name string, data any) *schema.Result {
	tc.t.Helper()

	res, err := tc.Client.Validate(context.Background(), name, data)
	if err != nil {
		tc.t.Fatalf("validate %q failed: %v", name, err)
		return nil
	}
	return res
}

// AssertValid asserts that data satisfies the named schema.
func (tc *TestClient) AssertValid(name string, data any) {
	tc.t.Helper()

	res := tc.Validate(name, data)
	if res != nil && !res.Valid {
		tc.t.Errorf("expected %q to accept %v, got %v", name, data, res.Errors())
	}
}

// AssertInvalid asserts that data violates the named schema and returns the result.
func (tc *TestClient) AssertInvalid(name string, data any) *schema.Result {
	tc.t.Helper()

	res := tc.Validate(name, data)
	if res != nil && res.Valid {
		tc.t.Errorf("expected %q to reject %v", name, data)
	}
	return res
}

// AssertSchemaExists asserts that a schema with the given name is registered.
func (tc *TestClient) AssertSchemaExists(name string) {
	tc.t.Helper()

	schemas, err := tc.ListSchemas(context.Background())
	if err != nil {
		tc.t.Fatalf("ListSchemas failed: %v", err)
		return
	}
	for _, info := range schemas {
		if info.Name == name {
			return
		}
	}
	tc.t.Errorf("schema %q not found", name)
}

// AssertViolation asserts that res reports a violation at path whose message contains substr.
func AssertViolation(t testing.TB, res *schema.Result, path, substr string) {
	t.Helper()

	if res == nil {
		t.Errorf("expected violation %q at %q, got no result", substr, path)
		return
	}
	for _, v := range res.Violations {
		if v.Path == path && strings.Contains(v.Message, substr) {
			return
		}
	}
	t.Errorf("expected violation %q at %q, got %v", substr, path, res.Errors())
}

// Recorder is a transport.Handler that records requests before passing them on.
type Recorder struct {
	next transport.Handler

	mu       sync.Mutex
	requests []*protocol.Request
}

// NewRecorder wraps next.
func NewRecorder(next transport.Handler) *Recorder {
	return &Recorder{next: next}
}

// HandleRequest records req and calls the wrapped handler.
func (r *Recorder) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()
	return r.next.HandleRequest(ctx, req)
}

// Methods returns the recorded method names in order.
func (r *Recorder) Methods() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	methods := make([]string, len(r.requests))
	for i, req := range r.requests {
		methods[i] = req.Method
	}
	return methods
}

// Requests returns a copy of the recorded requests.
func (r *Recorder) Requests() []*protocol.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*protocol.Request(nil), r.requests...)
}

// Reset forgets the recorded requests.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.requests = nil
	r.mu.Unlock()
}

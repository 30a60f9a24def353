package server

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/felixgeelhaar/schemaforge/middleware"
	"github.com/felixgeelhaar/schemaforge/protocol"
	"github.com/felixgeelhaar/schemaforge/schema"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	srv := New(Info{Name: "test-server", Version: "1.0.0"}, opts...)
	user := schema.Object().
		Property("name", schema.String().MinLength(1)).
		Property("age", schema.Integer().Minimum(0)).
		Required("name").
		Title("User").
		Description("A registered user")
	if err := srv.Register("user", user); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return srv
}

func TestNew(t *testing.T) {
	srv := New(Info{Name: "test-server", Version: "1.0.0"})

	if info := srv.Info(); info.Name != "test-server" || info.Version != "1.0.0" {
		t.Errorf("Info() = %+v", info)
	}
	if srv.Validator() == nil {
		t.Error("expected a default validator")
	}

	v := schema.NewValidator(schema.WithMaxDepth(3))
	if got := New(Info{}, WithValidator(v)).Validator(); got != v {
		t.Error("WithValidator() not applied")
	}
}

func TestServer_Register(t *testing.T) {
	srv := newTestServer(t)

	doc, ok := srv.Schema("user")
	if !ok {
		t.Fatal("Schema(user) not found")
	}
	if diff := cmp.Diff([]string{"type", "properties", "required", "title", "description"}, doc.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	if err := srv.Register("", schema.Object()); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Register(\"\") error = %v, want ErrInvalidName", err)
	}
	if err := srv.RegisterDocument("nil", nil); err == nil {
		t.Error("RegisterDocument(nil) should fail")
	}
}

func TestServer_RegisterType(t *testing.T) {
	type order struct {
		ID    string  `json:"id" jsonschema:"required,format=uuid"`
		Total float64 `json:"total" jsonschema:"minimum=0"`
	}

	srv := New(Info{})
	if err := srv.RegisterType("order", order{}); err != nil {
		t.Fatalf("RegisterType() error = %v", err)
	}
	doc, _ := srv.Schema("order")
	if res := srv.Validator().Validate(map[string]any{"total": -1}, doc); len(res.Violations) != 2 {
		t.Errorf("violations = %v, want 2", res.Errors())
	}

	if err := srv.RegisterType("bad", 42); err == nil {
		t.Error("RegisterType(int) should fail")
	}
}

func TestServer_Schemas(t *testing.T) {
	srv := newTestServer(t)
	_ = srv.Register("address", schema.Object())
	_ = srv.Register("zone", schema.Object().Title("Zone"))

	want := []SchemaInfo{
		{Name: "address"},
		{Name: "user", Title: "User", Description: "A registered user"},
		{Name: "zone", Title: "Zone"},
	}
	if diff := cmp.Diff(want, srv.Schemas()); diff != "" {
		t.Errorf("Schemas() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"address", "user", "zone"}, srv.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if got := srv.Manifest().Schemas; got != 3 {
		t.Errorf("Manifest().Schemas = %d, want 3", got)
	}
}

func TestServer_Remove(t *testing.T) {
	srv := newTestServer(t)

	if !srv.Remove("user") {
		t.Error("Remove(user) = false")
	}
	if srv.Remove("user") {
		t.Error("second Remove(user) = true")
	}
	if _, ok := srv.Schema("user"); ok {
		t.Error("schema still registered")
	}
}

func TestServer_Use(t *testing.T) {
	var order []string
	record := func(name string) Middleware {
		return func(next middleware.HandlerFunc) middleware.HandlerFunc {
			return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	srv := newTestServer(t, WithMiddleware(record("option")))
	srv.Use(record("use"))

	if _, err := srv.HandleRequest(context.Background(), &protocol.Request{Method: protocol.MethodPing}); err != nil {
		t.Fatalf("HandleRequest() error = %v", err)
	}
	if diff := cmp.Diff([]string{"option", "use"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

package client_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/felixgeelhaar/schemaforge/client"
	"github.com/felixgeelhaar/schemaforge/middleware"
	"github.com/felixgeelhaar/schemaforge/protocol"
	"github.com/felixgeelhaar/schemaforge/schema"
	"github.com/felixgeelhaar/schemaforge/server"
	"github.com/felixgeelhaar/schemaforge/transport"
)

func newRegistry(t *testing.T, opts ...server.Option) *server.Server {
	t.Helper()
	srv := server.New(server.Info{Name: "registry", Version: "1.2.0"}, opts...)
	user := schema.Object().
		Property("name", schema.String().MinLength(1)).
		Property("email", schema.String().Format("email")).
		Required("name").
		Title("User")
	if err := srv.Register("user", user); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := srv.Register("tag", schema.String().MaxLength(3)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return srv
}

func newHTTPClient(t *testing.T, srv *server.Server, opts ...client.HTTPOption) *client.Client {
	t.Helper()
	ts := httptest.NewServer(transport.NewHTTP(":0").Handler(srv))
	t.Cleanup(ts.Close)

	c := client.New(client.NewHTTPTransport(ts.URL, opts...), client.WithTimeout(5*time.Second))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_Ping(t *testing.T) {
	c := newHTTPClient(t, newRegistry(t))

	info, err := c.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	want := &client.ServerInfo{Name: "registry", Version: "1.2.0", ProtocolVersion: protocol.Version, Schemas: 2}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Errorf("Ping() mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_ListSchemas(t *testing.T) {
	c := newHTTPClient(t, newRegistry(t))

	got, err := c.ListSchemas(context.Background())
	if err != nil {
		t.Fatalf("ListSchemas() error = %v", err)
	}
	want := []protocol.SchemaInfo{{Name: "tag"}, {Name: "user", Title: "User"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListSchemas() mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_GetSchema(t *testing.T) {
	c := newHTTPClient(t, newRegistry(t))

	doc, err := c.GetSchema(context.Background(), "user")
	if err != nil {
		t.Fatalf("GetSchema() error = %v", err)
	}
	if diff := cmp.Diff([]string{"type", "properties", "required", "title"}, doc.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	_, err = c.GetSchema(context.Background(), "missing")
	var perr *protocol.Error
	if !errors.As(err, &perr) || perr.Code != protocol.CodeNotFound {
		t.Errorf("GetSchema(missing) error = %v, want not found", err)
	}
}

func TestClient_Validate(t *testing.T) {
	c := newHTTPClient(t, newRegistry(t))
	ctx := context.Background()

	tests := []struct {
		name      string
		call      func() (*schema.Result, error)
		wantValid bool
		want      []string
	}{
		{
			name:      "valid",
			call:      func() (*schema.Result, error) { return c.Validate(ctx, "user", map[string]any{"name": "Ada"}) },
			wantValid: true,
			want:      []string{},
		},
		{
			name: "invalid",
			call: func() (*schema.Result, error) {
				return c.Validate(ctx, "user", map[string]any{"email": "nope"})
			},
			want: []string{"The field name is required", "The field email must be a valid email"},
		},
		{
			name: "attribute",
			call: func() (*schema.Result, error) {
				return c.ValidateAttribute(ctx, "tag", "tags[0]", "toolong")
			},
			want: []string{"The field tags[0] may not be greater than 3 characters"},
		},
		{
			name: "inline document",
			call: func() (*schema.Result, error) {
				doc := schema.Integer().Minimum(10).Document()
				return c.ValidateDocument(ctx, doc, 3)
			},
			want: []string{"The value must be at least 10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.call()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", res.Valid, tt.wantValid)
			}
			if diff := cmp.Diff(tt.want, res.Errors()); diff != "" {
				t.Errorf("Errors() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClient_Lint(t *testing.T) {
	c := newHTTPClient(t, newRegistry(t))
	ctx := context.Background()

	res, err := c.Lint(ctx, schema.Object().Property("a", schema.String()).Document())
	if err != nil {
		t.Fatalf("Lint() error = %v", err)
	}
	if !res.Valid {
		t.Errorf("Lint() = %+v, want valid", res)
	}

	res, err = c.Lint(ctx, schema.NewDocument().Set("type", "strang"))
	if err != nil {
		t.Fatalf("Lint() error = %v", err)
	}
	if res.Valid || res.Error == "" {
		t.Errorf("Lint() = %+v, want invalid with error", res)
	}
}

func TestClient_Auth(t *testing.T) {
	srv := newRegistry(t, server.WithMiddleware(
		middleware.Auth(middleware.BearerTokenAuthenticator(middleware.StaticKeys("secret"))),
	))

	anonymous := newHTTPClient(t, srv)
	_, err := anonymous.ListSchemas(context.Background())
	var perr *protocol.Error
	if !errors.As(err, &perr) || perr.Code != protocol.CodeUnauthorized {
		t.Errorf("ListSchemas() error = %v, want unauthorized", err)
	}

	authorized := newHTTPClient(t, srv, client.WithBearerToken("secret"))
	if _, err := authorized.ListSchemas(context.Background()); err != nil {
		t.Errorf("ListSchemas() error = %v", err)
	}
}

type blockingTransport struct{}

func (blockingTransport) Send(ctx context.Context, _ *protocol.Request) (*client.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingTransport) Close() error { return nil }

func TestClient_Timeout(t *testing.T) {
	c := client.New(blockingTransport{}, client.WithTimeout(10*time.Millisecond))

	_, err := c.Ping(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Ping() error = %v, want deadline exceeded", err)
	}
}

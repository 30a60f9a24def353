// Package e2e runs registry scenarios end to end over the real transports.
package e2e

import (
	"bufio"
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/felixgeelhaar/schemaforge"
	"github.com/felixgeelhaar/schemaforge/client"
	"github.com/felixgeelhaar/schemaforge/middleware"
	"github.com/felixgeelhaar/schemaforge/protocol"
	"github.com/felixgeelhaar/schemaforge/transport"
)

func newRegistry(t *testing.T) *schemaforge.Server {
	t.Helper()
	srv := schemaforge.NewServer(schemaforge.ServerInfo{Name: "compliance", Version: "1.0.0"})

	schemas := map[string]schemaforge.Node{
		"contact":  schemaforge.Object().Required("name", "email"),
		"tags":     schemaforge.Array().Items(schemaforge.String()).MinItems(1).MaxItems(3),
		"nickname": schemaforge.String().MinLength(2).MaxLength(10).Nullable(),
		"step":     schemaforge.Integer().MultipleOf(5),
		"one":      schemaforge.Compound().OneOf(schemaforge.String(), schemaforge.String().MinLength(3)),
		"all":      schemaforge.Compound().AllOf(schemaforge.String(), schemaforge.String().MinLength(3)),
		"any":      schemaforge.Compound().AnyOf(schemaforge.Integer(), schemaforge.String()),
	}
	for name, node := range schemas {
		if err := srv.Register(name, node); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}
	return srv
}

func newClient(t *testing.T, srv *schemaforge.Server) *client.Client {
	t.Helper()
	ts := httptest.NewServer(transport.NewHTTP(":0").Handler(srv))
	t.Cleanup(ts.Close)
	return client.New(client.NewHTTPTransport(ts.URL), client.WithTimeout(5*time.Second))
}

// TestCompliance_Validation checks the validation properties over HTTP.
func TestCompliance_Validation(t *testing.T) {
	c := newClient(t, newRegistry(t))

	tests := []struct {
		name   string
		schema string
		data   any
		want   []string
	}{
		{"oneOf exactly one", "one", "ab", []string{}},
		{"oneOf both", "one", "abc", []string{"The value must match exactly one of the defined schemas"}},
		{"oneOf neither", "one", 1, []string{"The value must match exactly one of the defined schemas"}},
		{"allOf first fails", "all", 1, []string{"The value must match all of the defined schemas"}},
		{"anyOf second matches", "any", "x", []string{}},
		{"required fields", "contact", map[string]any{}, []string{
			"The field name is required",
			"The field email is required",
		}},
		{"items within bounds", "tags", []any{"a", "b", "c"}, []string{}},
		{"too few items", "tags", []any{}, []string{"The value must have at least 1 items"}},
		{"item types", "tags", []any{1, 2}, []string{
			"The field [0] must be of type string",
			"The field [1] must be of type string",
		}},
		{"nullable null", "nickname", nil, []string{}},
		{"nullable string", "nickname", "ada", []string{}},
		{"nullable number", "nickname", 5, []string{"The value must be of type string or null"}},
		{"multiple", "step", 10, []string{}},
		{"not a multiple", "step", 7, []string{"The value must be a multiple of 5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Validate(context.Background(), tt.schema, tt.data)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, res.Errors()); diff != "" {
				t.Errorf("Errors() mismatch (-want +got):\n%s", diff)
			}
			if res.Valid != (len(tt.want) == 0) {
				t.Errorf("Valid = %v, want %v", res.Valid, len(tt.want) == 0)
			}
		})
	}
}

// TestCompliance_Deterministic checks that repeated calls give identical results.
func TestCompliance_Deterministic(t *testing.T) {
	c := newClient(t, newRegistry(t))

	var first []byte
	for i := 0; i < 5; i++ {
		res, err := c.Validate(context.Background(), "contact", map[string]any{"extra": true})
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		data, err := json.Marshal(res)
		if err != nil {
			t.Fatal(err)
		}
		if first == nil {
			first = data
			continue
		}
		if !bytes.Equal(first, data) {
			t.Fatalf("call %d = %s, want %s", i, data, first)
		}
	}
}

// runStdio feeds lines to the stdio transport and returns the response lines.
func runStdio(t *testing.T, h transport.Handler, lines ...string) []string {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer

	stdio := transport.NewStdio(transport.WithStdin(in), transport.WithStdout(&out))
	if err := stdio.Serve(context.Background(), h); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}

	var responses []string
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		responses = append(responses, scanner.Text())
	}
	return responses
}

// TestCompliance_JSONRPC checks the JSON-RPC envelope rules over stdio.
func TestCompliance_JSONRPC(t *testing.T) {
	srv := newRegistry(t)

	tests := []struct {
		name     string
		line     string
		wantID   string
		wantCode int
	}{
		{"parse error", `{"jsonrpc":`, "", protocol.CodeParseError},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, "1", protocol.CodeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","id":"abc","method":"tools/list"}`, `"abc"`, protocol.CodeMethodNotFound},
		{"missing params", `{"jsonrpc":"2.0","id":2,"method":"schemas/get"}`, "2", protocol.CodeInvalidParams},
		{"unknown schema", `{"jsonrpc":"2.0","id":3,"method":"schemas/get","params":{"name":"nope"}}`, "3", protocol.CodeNotFound},
		{"malformed document", `{"jsonrpc":"2.0","id":4,"method":"schemas/validate","params":{"document":[1],"data":1}}`, "4", protocol.CodeMalformedDocument},
		{"unknown type passes", `{"jsonrpc":"2.0","id":5,"method":"schemas/validate","params":{"document":{"type":"x"},"data":1}}`, "5", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := runStdio(t, srv, tt.line)
			if len(lines) != 1 {
				t.Fatalf("got %d responses, want 1: %v", len(lines), lines)
			}
			var resp protocol.Response
			if err := json.Unmarshal([]byte(lines[0]), &resp); err != nil {
				t.Fatalf("invalid response %s: %v", lines[0], err)
			}
			if string(resp.ID) != tt.wantID {
				t.Errorf("ID = %s, want %s", resp.ID, tt.wantID)
			}
			if tt.wantCode == 0 {
				if resp.Error != nil {
					t.Errorf("unexpected error: %v", resp.Error)
				}
				return
			}
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("Error = %v, want code %d", resp.Error, tt.wantCode)
			}
		})
	}
}

// TestCompliance_Notifications checks that notifications never get a reply.
func TestCompliance_Notifications(t *testing.T) {
	lines := runStdio(t, newRegistry(t),
		`{"jsonrpc":"2.0","method":"ping"}`,
		``,
		`{"jsonrpc":"2.0","id":7,"method":"ping"}`,
	)
	if len(lines) != 1 {
		t.Fatalf("got %d responses, want 1: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], `"id":7`) {
		t.Errorf("response = %s, want id 7", lines[0])
	}
}

// TestCompliance_Middleware checks that the default stack keeps responses intact.
func TestCompliance_Middleware(t *testing.T) {
	h := schemaforge.Handler(newRegistry(t), schemaforge.WithLogger(middleware.NopLogger{}))

	lines := runStdio(t, h, `{"jsonrpc":"2.0","id":1,"method":"schemas/list"}`)
	if len(lines) != 1 {
		t.Fatalf("got %d responses, want 1", len(lines))
	}

	var resp struct {
		Result protocol.ListSchemasResult `json:"result"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &resp); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, s := range resp.Result.Schemas {
		names = append(names, s.Name)
	}
	want := []string{"all", "any", "contact", "nickname", "one", "step", "tags"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("schemas mismatch (-want +got):\n%s", diff)
	}
}

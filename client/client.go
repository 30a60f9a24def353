// Package client provides a client for schemaforge registry servers.
package client

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/felixgeelhaar/schemaforge/protocol"
	"github.com/felixgeelhaar/schemaforge/schema"
)

// Transport defines the interface for client-side transport.
type Transport interface {
	// Send sends a request and waits for a response.
	Send(ctx context.Context, req *protocol.Request) (*Response, error)
	// Close closes the transport connection.
	Close() error
}

// Response is a JSON-RPC response as received by a client. Result is kept as raw text so
// schema documents keep their key order.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *protocol.Error `json:"error,omitempty"`
}

// ServerInfo is the manifest returned by ping.
type ServerInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocolVersion"`
	Schemas         int    `json:"schemas"`
}

// Client talks to a schema registry over a Transport.
type Client struct {
	transport Transport
	timeout   time.Duration
	requestID atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the default timeout for requests. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a client with the given transport.
func New(transport Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		timeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks the server and returns its manifest.
func (c *Client) Ping(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.call(ctx, protocol.MethodPing, nil, &info); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &info, nil
}

// ListSchemas returns the registered schemas sorted by name.
func (c *Client) ListSchemas(ctx context.Context) ([]protocol.SchemaInfo, error) {
	var result protocol.ListSchemasResult
	if err := c.call(ctx, protocol.MethodSchemasList, nil, &result); err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	return result.Schemas, nil
}

// GetSchema fetches a registered schema document.
func (c *Client) GetSchema(ctx context.Context, name string) (*schema.Document, error) {
	var result protocol.GetSchemaResult
	if err := c.call(ctx, protocol.MethodSchemasGet, protocol.GetSchemaParams{Name: name}, &result); err != nil {
		return nil, fmt.Errorf("get schema %q: %w", name, err)
	}
	doc, err := schema.ParseDocument(result.Schema)
	if err != nil {
		return nil, fmt.Errorf("get schema %q: %w", name, err)
	}
	return doc, nil
}

// Validate validates data against a registered schema. An invalid instance is reported in
// the result, not as an error.
func (c *Client) Validate(ctx context.Context, name string, data any) (*schema.Result, error) {
	return c.ValidateAttribute(ctx, name, "", data)
}

// ValidateAttribute validates data with violation paths rooted at attribute.
func (c *Client) ValidateAttribute(ctx context.Context, name, attribute string, data any) (*schema.Result, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal data: %w", err)
	}
	params := protocol.ValidateParams{Schema: name, Data: raw, Attribute: attribute}

	var res schema.Result
	if err := c.call(ctx, protocol.MethodSchemasValidate, params, &res); err != nil {
		return nil, fmt.Errorf("validate %q: %w", name, err)
	}
	return &res, nil
}

// ValidateDocument validates data against an inline schema document.
func (c *Client) ValidateDocument(ctx context.Context, doc *schema.Document, data any) (*schema.Result, error) {
	rawDoc, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	rawData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal data: %w", err)
	}
	params := protocol.ValidateParams{Document: rawDoc, Data: rawData}

	var res schema.Result
	if err := c.call(ctx, protocol.MethodSchemasValidate, params, &res); err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}
	return &res, nil
}

// Lint checks a schema document against the draft 2020-12 meta-schema.
func (c *Client) Lint(ctx context.Context, doc *schema.Document) (*protocol.LintResult, error) {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	var result protocol.LintResult
	if err := c.call(ctx, protocol.MethodSchemasLint, protocol.LintParams{Document: raw}, &result); err != nil {
		return nil, fmt.Errorf("lint: %w", err)
	}
	return &result, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.transport.Close()
}

// call makes a JSON-RPC call and decodes the result into out. Server errors are returned
// as *protocol.Error.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	idRaw, err := json.Marshal(c.requestID.Add(1))
	if err != nil {
		return fmt.Errorf("marshal request ID: %w", err)
	}
	req, err := protocol.NewRequest(idRaw, method, params)
	if err != nil {
		return err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

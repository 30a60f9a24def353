package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/felixgeelhaar/schemaforge/protocol"
)

// HTTPTransport posts JSON-RPC requests to a server's /rpc endpoint.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
	header   http.Header
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		t.client = c
	}
}

// WithHeader adds a header to every request, such as Authorization or X-API-Key.
func WithHeader(key, value string) HTTPOption {
	return func(t *HTTPTransport) {
		t.header.Add(key, value)
	}
}

// WithBearerToken sets the Authorization header.
func WithBearerToken(token string) HTTPOption {
	return func(t *HTTPTransport) {
		t.header.Set("Authorization", "Bearer "+token)
	}
}

// NewHTTPTransport creates a transport for the server at baseURL, e.g. "http://localhost:8080".
func NewHTTPTransport(baseURL string, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/rpc",
		client:   http.DefaultClient,
		header:   make(http.Header),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send posts the request and decodes the response envelope.
func (t *HTTPTransport) Send(ctx context.Context, req *protocol.Request) (*Response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range t.header {
		httpReq.Header[key] = values
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unexpected response (status %d): %w", httpResp.StatusCode, err)
	}
	if resp.Error == nil && len(resp.Result) == 0 && httpResp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("unexpected status %d", httpResp.StatusCode)
	}
	return &resp, nil
}

// Close releases idle connections.
func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

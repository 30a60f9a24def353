package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/felixgeelhaar/schemaforge/protocol"
)

// DefaultMaxBodyBytes bounds an HTTP request body.
const DefaultMaxBodyBytes = 4 << 20

// HTTP serves JSON-RPC on POST /rpc and a REST view of the registry:
//
//	GET  /health
//	GET  /schemas
//	GET  /schemas/{name}
//	POST /schemas/{name}/validate
type HTTP struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	maxBodyBytes    int64
	shutdownTimeout time.Duration
	drainDelay      time.Duration
	corsConfig      *CORSConfig

	mu         sync.RWMutex
	listenAddr string
	server     *http.Server
}

// HTTPOption configures the HTTP transport.
type HTTPOption func(*HTTP)

// WithReadTimeout sets the read timeout for HTTP requests.
func WithReadTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.readTimeout = d
	}
}

// WithWriteTimeout sets the write timeout for HTTP responses.
func WithWriteTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.writeTimeout = d
	}
}

// WithMaxBodyBytes sets the largest accepted request body.
func WithMaxBodyBytes(n int64) HTTPOption {
	return func(h *HTTP) {
		h.maxBodyBytes = n
	}
}

// NewHTTP creates a new HTTP transport.
func NewHTTP(addr string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		addr:            addr,
		readTimeout:     30 * time.Second,
		writeTimeout:    30 * time.Second,
		maxBodyBytes:    DefaultMaxBodyBytes,
		shutdownTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Addr returns the configured address.
func (h *HTTP) Addr() string {
	return h.addr
}

// ListenAddr returns the actual address the server is listening on.
func (h *HTTP) ListenAddr() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.listenAddr
}

// Serve starts the HTTP server. When ctx is canceled it stops accepting requests, waits for
// in-flight ones and shuts down.
func (h *HTTP) Serve(ctx context.Context, handler Handler) error {
	sm := NewShutdownManager(ShutdownConfig{
		Timeout:    h.shutdownTimeout,
		DrainDelay: h.drainDelay,
	})

	listener, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	h.mu.Lock()
	h.listenAddr = listener.Addr().String()
	h.server = &http.Server{
		Handler:      sm.Middleware(h.Handler(handler)),
		ReadTimeout:  h.readTimeout,
		WriteTimeout: h.writeTimeout,
	}
	srv := h.server
	h.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		drainErr := sm.Shutdown(context.Background())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if drainErr != nil {
			return drainErr
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Handler returns the http.Handler serving every endpoint.
func (h *HTTP) Handler(handler Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /rpc", func(w http.ResponseWriter, r *http.Request) {
		h.handleRPC(w, r, handler)
	})
	mux.HandleFunc("GET /schemas", func(w http.ResponseWriter, r *http.Request) {
		h.handleREST(w, r, handler, protocol.MethodSchemasList, nil)
	})
	mux.HandleFunc("GET /schemas/{name}", func(w http.ResponseWriter, r *http.Request) {
		h.handleREST(w, r, handler, protocol.MethodSchemasGet, protocol.GetSchemaParams{Name: r.PathValue("name")})
	})
	mux.HandleFunc("POST /schemas/{name}/validate", func(w http.ResponseWriter, r *http.Request) {
		h.handleValidate(w, r, handler)
	})

	if h.corsConfig != nil {
		return CORSHandler(*h.corsConfig, mux)
	}
	return mux
}

// requestContext carries the HTTP headers as request metadata.
func requestContext(r *http.Request) context.Context {
	return protocol.ContextWithRequestMeta(r.Context(), protocol.MetaFromHeader(r.Header))
}

func (h *HTTP) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
}

// handleRPC answers JSON-RPC requests. Protocol errors travel in the body with status 200.
func (h *HTTP) handleRPC(w http.ResponseWriter, r *http.Request, handler Handler) {
	body, err := h.readBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge,
			protocol.NewErrorResponse(nil, protocol.NewInvalidRequest(err.Error())))
		return
	}

	req, parseErr := decodeMessage(body)
	if parseErr != nil {
		writeJSON(w, http.StatusOK, parseErr)
		return
	}

	resp := dispatch(requestContext(r), handler, req)
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleREST runs method and writes its bare result, or the error with a matching status.
func (h *HTTP) handleREST(w http.ResponseWriter, r *http.Request, handler Handler, method string, params any) {
	resp, ok := h.call(w, r, handler, method, params)
	if !ok {
		return
	}
	if result, isSchema := resp.Result.(protocol.GetSchemaResult); isSchema {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Schema)
		return
	}
	writeJSON(w, http.StatusOK, resp.Result)
}

// handleValidate validates the request body against the named schema. The result is
// written with status 200 when valid and 422 when not.
func (h *HTTP) handleValidate(w http.ResponseWriter, r *http.Request, handler Handler) {
	body, err := h.readBody(w, r)
	if err != nil {
		writeError(w, protocol.NewInvalidRequest(err.Error()))
		return
	}
	if len(body) == 0 {
		writeError(w, protocol.NewInvalidParams("request body is empty"))
		return
	}
	if !json.Valid(body) {
		writeError(w, protocol.NewMalformedDocument("request body is not valid JSON"))
		return
	}

	params := protocol.ValidateParams{
		Schema:    r.PathValue("name"),
		Data:      body,
		Attribute: r.URL.Query().Get("attribute"),
	}
	resp, ok := h.call(w, r, handler, protocol.MethodSchemasValidate, params)
	if !ok {
		return
	}

	data, err := json.Marshal(resp.Result)
	if err != nil {
		writeError(w, protocol.NewInternalError(err.Error()))
		return
	}
	var verdict struct {
		Valid bool `json:"valid"`
	}
	_ = json.Unmarshal(data, &verdict)

	status := http.StatusOK
	if !verdict.Valid {
		status = http.StatusUnprocessableEntity
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// call dispatches a synthesized request. On failure it writes the error and returns false.
func (h *HTTP) call(w http.ResponseWriter, r *http.Request, handler Handler, method string, params any) (*protocol.Response, bool) {
	req, err := protocol.NewRequest(json.RawMessage(`0`), method, params)
	if err != nil {
		writeError(w, protocol.NewInternalError(err.Error()))
		return nil, false
	}

	resp := dispatch(requestContext(r), handler, req)
	if resp == nil {
		writeError(w, protocol.NewInternalError("no response"))
		return nil, false
	}
	if resp.Error != nil {
		writeError(w, resp.Error)
		return nil, false
	}
	return resp, true
}

// StatusCode maps a protocol error code to an HTTP status.
func StatusCode(code int) int {
	switch code {
	case protocol.CodeNotFound, protocol.CodeMethodNotFound:
		return http.StatusNotFound
	case protocol.CodeParseError, protocol.CodeInvalidRequest, protocol.CodeInvalidParams, protocol.CodeMalformedDocument:
		return http.StatusBadRequest
	case protocol.CodeUnauthorized:
		return http.StatusUnauthorized
	case protocol.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err *protocol.Error) {
	writeJSON(w, StatusCode(err.Code), map[string]*protocol.Error{"error": err})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/schemaforge/protocol"
)

// WebSocket serves JSON-RPC messages over WebSocket connections. Each text frame carries one
// request; responses are written back on the same connection.
type WebSocket struct {
	addr     string
	upgrader websocket.Upgrader

	readTimeout  time.Duration
	writeTimeout time.Duration
	maxMessage   int64

	mu         sync.RWMutex
	listenAddr string
	clients    map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// WebSocketOption configures a WebSocket transport.
type WebSocketOption func(*WebSocket)

// WithWebSocketReadTimeout sets how long a connection may stay idle.
func WithWebSocketReadTimeout(d time.Duration) WebSocketOption {
	return func(ws *WebSocket) {
		ws.readTimeout = d
	}
}

// WithWebSocketWriteTimeout sets the write deadline for each response.
func WithWebSocketWriteTimeout(d time.Duration) WebSocketOption {
	return func(ws *WebSocket) {
		ws.writeTimeout = d
	}
}

// WithWebSocketMaxMessage sets the largest accepted message.
func WithWebSocketMaxMessage(n int64) WebSocketOption {
	return func(ws *WebSocket) {
		ws.maxMessage = n
	}
}

// WithWebSocketCheckOrigin sets the origin check function for WebSocket upgrades.
func WithWebSocketCheckOrigin(fn func(r *http.Request) bool) WebSocketOption {
	return func(ws *WebSocket) {
		ws.upgrader.CheckOrigin = fn
	}
}

// NewWebSocket creates a new WebSocket transport. All origins are accepted unless
// WithWebSocketCheckOrigin is set.
func NewWebSocket(addr string, opts ...WebSocketOption) *WebSocket {
	ws := &WebSocket{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		readTimeout:  60 * time.Second,
		writeTimeout: 10 * time.Second,
		maxMessage:   DefaultMaxBodyBytes,
		clients:      make(map[*wsClient]struct{}),
	}

	for _, opt := range opts {
		opt(ws)
	}

	return ws
}

// Addr returns the transport address.
func (ws *WebSocket) Addr() string {
	return ws.addr
}

// ListenAddr returns the actual address the server is listening on.
func (ws *WebSocket) ListenAddr() string {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.listenAddr
}

// Serve starts the WebSocket server and closes every connection when ctx is canceled.
func (ws *WebSocket) Serve(ctx context.Context, handler Handler) error {
	listener, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	ws.mu.Lock()
	ws.listenAddr = listener.Addr().String()
	ws.mu.Unlock()

	srv := &http.Server{Handler: ws.Handler(ctx, handler)}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ws.closeAllClients()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Handler returns the http.Handler that upgrades connections. Requests on a connection
// stop being processed once ctx is canceled.
func (ws *WebSocket) Handler(ctx context.Context, handler Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.handleConnection(ctx, w, r, handler)
	})
}

func (ws *WebSocket) handleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request, handler Handler) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if ws.maxMessage > 0 {
		conn.SetReadLimit(ws.maxMessage)
	}

	client := &wsClient{conn: conn}

	ws.mu.Lock()
	ws.clients[client] = struct{}{}
	ws.mu.Unlock()

	defer func() {
		ws.mu.Lock()
		delete(ws.clients, client)
		ws.mu.Unlock()
		_ = conn.Close()
	}()

	meta := protocol.MetaFromHeader(r.Header)
	connCtx := protocol.ContextWithRequestMeta(ctx, meta)

	for {
		if ctx.Err() != nil {
			return
		}
		if ws.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(ws.readTimeout))
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		req, resp := decodeMessage(message)
		if req != nil {
			resp = dispatch(connCtx, handler, req)
		}
		if resp != nil {
			if err := client.writeJSON(resp, ws.writeTimeout); err != nil {
				return
			}
		}
	}
}

func (ws *WebSocket) closeAllClients() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	for client := range ws.clients {
		client.close()
	}
}

func (c *wsClient) writeJSON(v any, timeout time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}

package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/schemaforge/middleware"
	"github.com/felixgeelhaar/schemaforge/protocol"
	"github.com/felixgeelhaar/schemaforge/schema"
	"github.com/felixgeelhaar/schemaforge/transport"
)

func dialWebSocket(t *testing.T, h transport.Handler, header http.Header) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ws := transport.NewWebSocket(":0", transport.WithWebSocketReadTimeout(5*time.Second))
	ts := httptest.NewServer(ws.Handler(ctx, h))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg string) protocol.Response {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var resp protocol.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("invalid response %s: %v", data, err)
	}
	return resp
}

func TestWebSocket_RequestResponse(t *testing.T) {
	conn := dialWebSocket(t, newRegistry(t), nil)

	resp := roundTrip(t, conn, `{"jsonrpc":"2.0","id":1,"method":"schemas/validate","params":{"schema":"user","data":{"age":3}}}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	data, _ := json.Marshal(resp.Result)
	var res schema.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("invalid result %s: %v", data, err)
	}
	want := []string{"The field email is required", "The field age must be at least 18"}
	if res.Valid {
		t.Error("Valid = true, want false")
	}
	if diff := cmp.Diff(want, res.Errors()); diff != "" {
		t.Errorf("Errors() mismatch (-want +got):\n%s", diff)
	}

	// A notification gets no reply, so the next frame answers the ping.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"jsonrpc":"2.0","method":"ping"}`)); err != nil {
		t.Fatal(err)
	}
	resp = roundTrip(t, conn, `{"jsonrpc":"2.0","id":2,"method":"ping"}`)
	if string(resp.ID) != "2" {
		t.Errorf("ID = %s, want 2", resp.ID)
	}
}

func TestWebSocket_Errors(t *testing.T) {
	conn := dialWebSocket(t, newRegistry(t), nil)

	resp := roundTrip(t, conn, `not json`)
	if resp.Error == nil || resp.Error.Code != protocol.CodeParseError {
		t.Errorf("resp = %+v, want parse error", resp)
	}

	resp = roundTrip(t, conn, `{"jsonrpc":"2.0","id":3,"method":"schemas/get","params":{"name":"missing"}}`)
	if resp.Error == nil || resp.Error.Code != protocol.CodeNotFound {
		t.Errorf("resp = %+v, want not found", resp)
	}
}

func TestWebSocket_UpgradeHeaders(t *testing.T) {
	srv := newRegistry(t)
	srv.Use(middleware.Auth(middleware.BearerTokenAuthenticator(middleware.StaticKeys("token"))))

	conn := dialWebSocket(t, srv, http.Header{"Authorization": {"Bearer token"}})
	resp := roundTrip(t, conn, `{"jsonrpc":"2.0","id":1,"method":"schemas/list"}`)
	if resp.Error != nil {
		t.Errorf("authorized request failed: %v", resp.Error)
	}

	anonymous := dialWebSocket(t, srv, nil)
	resp = roundTrip(t, anonymous, `{"jsonrpc":"2.0","id":1,"method":"schemas/list"}`)
	if resp.Error == nil || resp.Error.Code != protocol.CodeUnauthorized {
		t.Errorf("resp = %+v, want unauthorized", resp)
	}
}

func TestWebSocket_Serve(t *testing.T) {
	ws := transport.NewWebSocket("127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- ws.Serve(ctx, newRegistry(t)) }()

	deadline := time.Now().Add(2 * time.Second)
	for ws.ListenAddr() == "" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ws.ListenAddr()+"/", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	resp := roundTrip(t, conn, `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	if resp.Error != nil {
		t.Errorf("ping failed: %v", resp.Error)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestWebSocket_CheckOrigin(t *testing.T) {
	ws := transport.NewWebSocket(":0", transport.WithWebSocketCheckOrigin(func(r *http.Request) bool {
		return r.Header.Get("Origin") == "https://app.example.com"
	}))
	h := transport.HandlerFunc(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		return protocol.NewResponse(req.ID, map[string]string{"status": "ok"}), nil
	})
	ts := httptest.NewServer(ws.Handler(context.Background(), h))
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example.com"}})
	if err == nil {
		t.Fatal("Dial() from a foreign origin succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("handshake response = %v, want 403", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://app.example.com"}})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	_ = conn.Close()
}

// Package transport provides schemaforge transport implementations.
//
// Every transport hands decoded JSON-RPC requests to a Handler, normally a
// *server.Server:
//
//	type Handler interface {
//	    HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
//	}
//
// A handler error becomes a JSON-RPC error response. Notifications, requests without an ID,
// get no response.
//
// # Stdio Transport
//
// Newline-delimited JSON-RPC on stdin and stdout:
//
//	t := transport.NewStdio()
//	err := t.Serve(ctx, handler)
//
// # HTTP Transport
//
//	t := transport.NewHTTP(":8080",
//	    transport.WithReadTimeout(30*time.Second),
//	    transport.WithDefaultCORS(),
//	)
//	err := t.Serve(ctx, handler)
//
// Endpoints:
//   - POST /rpc: JSON-RPC requests
//   - GET /schemas: the schema list
//   - GET /schemas/{name}: the stored document
//   - POST /schemas/{name}/validate: validates the body; 200 when valid, 422 when not,
//     404 for an unknown schema and 400 for malformed JSON
//   - GET /health: health check
//
// HTTP headers are passed to the handler as protocol.RequestMeta, so middleware such as
// Auth and RequestID can read them. Serve drains in-flight requests before it returns.
//
// # WebSocket Transport
//
// One JSON-RPC request per text message:
//
//	t := transport.NewWebSocket(":8081")
//	err := t.Serve(ctx, handler)
package transport

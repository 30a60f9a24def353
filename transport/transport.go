package transport

import (
	"context"
	"errors"

	"github.com/goccy/go-json"

	"github.com/felixgeelhaar/schemaforge/protocol"
)

// Handler processes incoming requests.
type Handler interface {
	HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
}

// HandlerFunc is an adapter to allow ordinary functions as handlers.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// HandleRequest calls f(ctx, req).
func (f HandlerFunc) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return f(ctx, req)
}

// Transport defines the communication layer interface.
type Transport interface {
	// Serve starts the transport, blocking until ctx is canceled or an error occurs.
	Serve(ctx context.Context, handler Handler) error

	// Addr returns the transport's address description.
	Addr() string
}

// dispatch runs req through handler and folds a handler error into an error response.
// Notifications get no response.
func dispatch(ctx context.Context, handler Handler, req *protocol.Request) *protocol.Response {
	resp, err := handler.HandleRequest(ctx, req)
	if req.IsNotification() {
		return nil
	}
	if err != nil {
		return protocol.NewErrorResponse(req.ID, asProtocolError(err))
	}
	return resp
}

// decodeMessage parses one JSON-RPC message. A parse failure is returned as a ready
// error response.
func decodeMessage(data []byte) (*protocol.Request, *protocol.Response) {
	var req protocol.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, protocol.NewErrorResponse(nil, protocol.NewParseError(err.Error()))
	}
	if req.Method == "" {
		return nil, protocol.NewErrorResponse(req.ID, protocol.NewInvalidRequest("method is required"))
	}
	return &req, nil
}

func asProtocolError(err error) *protocol.Error {
	var rpcErr *protocol.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return protocol.NewInternalError(err.Error())
}

// Package schemaforge builds JSON Schema documents, validates data against them and serves
// them from a registry.
//
// Building and validating:
//
//	user := schemaforge.Object().
//	    Property("email", schemaforge.String().Format("email")).
//	    Property("age", schemaforge.Integer().Minimum(0)).
//	    Required("email")
//
//	res := schemaforge.ValidateNode(map[string]any{"age": -1}, user)
//	fmt.Println(res.Errors())
//	// [The field email is required The field age must be at least 0]
//
// Serving a registry:
//
//	srv := schemaforge.NewServer(schemaforge.ServerInfo{
//	    Name:    "registry",
//	    Version: "1.0.0",
//	})
//	srv.Register("user", user)
//
//	schemaforge.ServeHTTP(ctx, srv, ":8080")
package schemaforge

import (
	"context"
	"time"

	"github.com/felixgeelhaar/schemaforge/middleware"
	"github.com/felixgeelhaar/schemaforge/protocol"
	"github.com/felixgeelhaar/schemaforge/schema"
	"github.com/felixgeelhaar/schemaforge/server"
	"github.com/felixgeelhaar/schemaforge/transport"
)

// Schema types
type Node = schema.Node
type Document = schema.Document
type Result = schema.Result
type ValidationError = schema.ValidationError
type Validator = schema.Validator
type ValidatorOption = schema.ValidatorOption

// Builders
var (
	String   = schema.String
	Number   = schema.Number
	Integer  = schema.Integer
	Boolean  = schema.Boolean
	Null     = schema.Null
	Array    = schema.Array
	Object   = schema.Object
	Compound = schema.Compound
)

// Reading, validation and generation re-exports.
var (
	FromJSON      = schema.FromJSON
	FromMap       = schema.FromMap
	ParseDocument = schema.ParseDocument
	Validate      = schema.Validate
	ValidateNode  = schema.ValidateNode
	ValidateJSON  = schema.ValidateJSON
	NewValidator  = schema.NewValidator
	Lint          = schema.Lint
	Generate      = schema.Generate
)

// ServerInfo contains server metadata exposed to clients.
type ServerInfo = server.Info

// Server is a schema registry.
type Server = server.Server

// Option configures a Server.
type Option = server.Option

// Server options. WithServerLogger sets the logger the server itself uses, as opposed to
// WithLogger which configures request logging for a Serve function.
var (
	WithValidator    = server.WithValidator
	WithServerLogger = server.WithLogger
)

// Middleware types
type Middleware = middleware.Middleware
type MiddlewareHandlerFunc = middleware.HandlerFunc
type Logger = middleware.Logger
type LogField = middleware.Field

// HTTPOption configures the HTTP transport.
type HTTPOption = transport.HTTPOption

// WebSocketOption configures the WebSocket transport.
type WebSocketOption = transport.WebSocketOption

// ServeOption configures how the server is run.
type ServeOption func(*serveOptions)

type serveOptions struct {
	middleware []Middleware
	logger     Logger
}

// WithMiddleware adds middleware around the server for this transport.
func WithMiddleware(m ...Middleware) ServeOption {
	return func(o *serveOptions) {
		o.middleware = append(o.middleware, m...)
	}
}

// WithLogger installs the default middleware stack with the given logger. It is ignored
// when WithMiddleware is also given.
func WithLogger(l Logger) ServeOption {
	return func(o *serveOptions) {
		o.logger = l
	}
}

// NewServer creates a schema registry with the given info and options.
func NewServer(info ServerInfo, opts ...Option) *Server {
	return server.New(info, opts...)
}

// ServeStdio runs the server over stdin and stdout until EOF or until ctx is canceled.
func ServeStdio(ctx context.Context, srv *Server, opts ...ServeOption) error {
	return transport.NewStdio().Serve(ctx, Handler(srv, opts...))
}

// ServeHTTP runs the server on addr until ctx is canceled.
func ServeHTTP(ctx context.Context, srv *Server, addr string, opts ...HTTPOption) error {
	return transport.NewHTTP(addr, opts...).Serve(ctx, srv)
}

// ServeHTTPWithMiddleware runs the HTTP transport with transport-level middleware.
func ServeHTTPWithMiddleware(ctx context.Context, srv *Server, addr string, httpOpts []HTTPOption, serveOpts ...ServeOption) error {
	return transport.NewHTTP(addr, httpOpts...).Serve(ctx, Handler(srv, serveOpts...))
}

// ServeWebSocket runs the server over WebSocket on addr until ctx is canceled.
func ServeWebSocket(ctx context.Context, srv *Server, addr string, opts ...WebSocketOption) error {
	return transport.NewWebSocket(addr, opts...).Serve(ctx, srv)
}

// ServeWebSocketWithMiddleware runs the WebSocket transport with transport-level middleware.
func ServeWebSocketWithMiddleware(ctx context.Context, srv *Server, addr string, wsOpts []WebSocketOption, serveOpts ...ServeOption) error {
	return transport.NewWebSocket(addr, wsOpts...).Serve(ctx, Handler(srv, serveOpts...))
}

// WithReadTimeout sets the read timeout for HTTP requests.
func WithReadTimeout(d time.Duration) HTTPOption {
	return transport.WithReadTimeout(d)
}

// WithWriteTimeout sets the write timeout for HTTP responses.
func WithWriteTimeout(d time.Duration) HTTPOption {
	return transport.WithWriteTimeout(d)
}

// Middleware re-exports

// Chain composes multiple middleware into a single middleware.
func Chain(middlewares ...Middleware) Middleware {
	return middleware.Chain(middlewares...)
}

// Recover converts panics into internal errors.
func Recover() Middleware {
	return middleware.Recover()
}

// Timeout bounds each request by d.
func Timeout(d time.Duration) Middleware {
	return middleware.Timeout(d)
}

// RequestID assigns a request ID to each request.
func RequestID() Middleware {
	return middleware.RequestID()
}

// RequestIDFromContext returns the request ID set by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	return middleware.RequestIDFromContext(ctx)
}

// Logging logs each request and its outcome.
func Logging(logger Logger) Middleware {
	return middleware.Logging(logger)
}

// DefaultMiddleware returns the recommended stack: Recover, RequestID and Logging.
func DefaultMiddleware(logger Logger) []Middleware {
	return middleware.DefaultStack(logger)
}

// LogF creates a log field.
func LogF(key string, value any) LogField {
	return middleware.F(key, value)
}

type handler struct {
	handleFunc middleware.HandlerFunc
}

// Handler wraps srv in the serve options for use with a custom transport. Without options
// it returns srv itself.
func Handler(srv *Server, opts ...ServeOption) transport.Handler {
	options := &serveOptions{}
	for _, opt := range opts {
		opt(options)
	}

	chain := options.middleware
	if len(chain) == 0 && options.logger != nil {
		chain = middleware.DefaultStack(options.logger)
	}
	if len(chain) == 0 {
		return srv
	}
	return &handler{handleFunc: middleware.Chain(chain...)(srv.HandleRequest)}
}

func (h *handler) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return h.handleFunc(ctx, req)
}

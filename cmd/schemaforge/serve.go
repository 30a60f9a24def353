package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/schemaforge/config"
	"github.com/felixgeelhaar/schemaforge/logging"
	"github.com/felixgeelhaar/schemaforge/middleware"
	"github.com/felixgeelhaar/schemaforge/protocol"
	"github.com/felixgeelhaar/schemaforge/schema"
	"github.com/felixgeelhaar/schemaforge/server"
	"github.com/felixgeelhaar/schemaforge/transport"
)

type serveCmd struct {
	app       *app
	transport string
	addr      string
}

func newServeCmd(a *app) *cobra.Command {
	s := &serveCmd{app: a}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored schemas over stdio, HTTP or WebSocket",
		Args:  cobra.NoArgs,
		RunE:  s.run,
	}
	cmd.Flags().StringVar(&s.transport, "transport", "", "stdio, http or websocket (overrides the config file)")
	cmd.Flags().StringVar(&s.addr, "addr", "", "listen address (overrides the config file)")
	return cmd
}

func (s *serveCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := s.app.config()
	if err != nil {
		return err
	}
	if s.transport != "" {
		cfg.Server.Transport = s.transport
	}
	if s.addr != "" {
		cfg.Server.Addr = s.addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	zl, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()
	logger := middleware.NewZapLogger(zl)

	srv, err := newRegistry(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t := newTransport(cfg)
	logger.Info("serving schemas",
		middleware.F("transport", cfg.Server.Transport),
		middleware.F("addr", t.Addr()),
		middleware.F("schemas", len(srv.Names())),
	)

	err = t.Serve(ctx, srv)
	if errors.Is(err, context.Canceled) {
		logger.Info("server stopped")
		return nil
	}
	return err
}

// newRegistry builds the server, loads the storage directory and installs the middleware
// the config asks for. A missing storage directory leaves the registry empty.
func newRegistry(cfg *config.Config, logger middleware.Logger) (*server.Server, error) {
	srv := server.New(
		server.Info{Name: "schemaforge", Version: version},
		server.WithLogger(logger),
		server.WithValidator(schema.NewValidator(cfg.ValidatorOptions()...)),
	)
	if _, err := srv.LoadDir(cfg.Storage.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	srv.Use(middlewareStack(cfg, logger)...)
	return srv, nil
}

func middlewareStack(cfg *config.Config, logger middleware.Logger) []middleware.Middleware {
	var stack []middleware.Middleware
	if cfg.Server.Timeout > 0 {
		stack = middleware.DefaultStackWithTimeout(logger, cfg.Server.Timeout)
	} else {
		stack = middleware.DefaultStack(logger)
	}

	if len(cfg.Server.APIKeys) > 0 {
		stack = append(stack, middleware.Auth(keyAuthenticator(cfg.Server.APIKeys),
			middleware.WithAuthLogger(logger)))
	}
	if cfg.Server.MaxRequestBytes > 0 {
		stack = append(stack, middleware.SizeLimit(cfg.Server.MaxRequestBytes,
			middleware.WithSizeLimitLogger(logger)))
	}
	if cfg.Server.RateLimit.Rate > 0 {
		burst := cfg.Server.RateLimit.Burst
		if burst == 0 {
			burst = cfg.Server.RateLimit.Rate
		}
		stack = append(stack, middleware.RateLimitBySchema(cfg.Server.RateLimit.Rate, burst,
			middleware.WithRateLimitLogger(logger)))
	}
	return append(stack, middleware.OTel())
}

// keyAuthenticator accepts a configured key from either X-API-Key or a bearer token.
func keyAuthenticator(keys []string) middleware.Authenticator {
	lookup := middleware.StaticKeys(keys...)
	apiKey := middleware.APIKeyAuthenticator("X-API-Key", lookup)
	bearer := middleware.BearerTokenAuthenticator(lookup)

	return func(ctx context.Context, req *protocol.Request) (*middleware.Identity, error) {
		if id, err := apiKey(ctx, req); err != nil || id != nil {
			return id, err
		}
		return bearer(ctx, req)
	}
}

func newTransport(cfg *config.Config) transport.Transport {
	switch cfg.Server.Transport {
	case config.TransportStdio:
		var opts []transport.StdioOption
		if cfg.Server.MaxRequestBytes > 0 {
			opts = append(opts, transport.WithMaxLineBytes(int(cfg.Server.MaxRequestBytes)))
		}
		return transport.NewStdio(opts...)
	case config.TransportWebSocket:
		var opts []transport.WebSocketOption
		if cfg.Server.MaxRequestBytes > 0 {
			opts = append(opts, transport.WithWebSocketMaxMessage(cfg.Server.MaxRequestBytes))
		}
		return transport.NewWebSocket(cfg.Server.Addr, opts...)
	default:
		var opts []transport.HTTPOption
		if cfg.Server.MaxRequestBytes > 0 {
			opts = append(opts, transport.WithMaxBodyBytes(cfg.Server.MaxRequestBytes))
		}
		if len(cfg.Server.CORSOrigins) > 0 {
			opts = append(opts, transport.WithCORS(transport.CORSConfig{AllowOrigins: cfg.Server.CORSOrigins}))
		}
		return transport.NewHTTP(cfg.Server.Addr, opts...)
	}
}

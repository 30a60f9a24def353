package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/schemaforge/protocol"
)

// Identity is an authenticated caller.
type Identity struct {
	ID   string
	Name string
}

type identityContextKey struct{}

// IdentityFromContext returns the authenticated identity, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}

// ContextWithIdentity returns a new context carrying identity.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// Authenticator resolves the caller of a request. It returns nil without an error when the
// request carries no usable credentials.
type Authenticator func(ctx context.Context, req *protocol.Request) (*Identity, error)

// AuthOption configures the authentication middleware.
type AuthOption func(*authConfig)

type authConfig struct {
	logger      Logger
	skipMethods map[string]bool
}

// WithAuthLogger sets the logger for auth events.
func WithAuthLogger(l Logger) AuthOption {
	return func(c *authConfig) {
		c.logger = l
	}
}

// WithAuthSkipMethods lists methods that need no credentials. ping is always skipped.
func WithAuthSkipMethods(methods ...string) AuthOption {
	return func(c *authConfig) {
		for _, m := range methods {
			c.skipMethods[m] = true
		}
	}
}

// Auth returns middleware that rejects requests the authenticator cannot resolve with
// CodeUnauthorized. The identity is stored in the context for later handlers.
func Auth(authenticator Authenticator, opts ...AuthOption) Middleware {
	cfg := &authConfig{
		skipMethods: map[string]bool{protocol.MethodPing: true},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if cfg.skipMethods[req.Method] {
				return next(ctx, req)
			}

			identity, err := authenticator(ctx, req)
			if err != nil || identity == nil {
				if cfg.logger != nil {
					fields := []Field{F("method", req.Method)}
					if err != nil {
						fields = append(fields, F("error", err.Error()))
					}
					cfg.logger.Warn("authentication failed", fields...)
				}
				return nil, protocol.NewUnauthorized("authentication required")
			}

			return next(ContextWithIdentity(ctx, identity), req)
		}
	}
}

// APIKeyAuthenticator reads an API key from the transport metadata key header (for
// example "X-API-Key") and resolves it with lookup.
func APIKeyAuthenticator(header string, lookup func(key string) *Identity) Authenticator {
	return func(ctx context.Context, _ *protocol.Request) (*Identity, error) {
		key := protocol.GetRequestMeta(ctx, header)
		if key == "" {
			return nil, nil
		}
		return lookup(key), nil
	}
}

// BearerTokenAuthenticator reads an "Authorization: Bearer <token>" header from the
// transport metadata and resolves the token with lookup.
func BearerTokenAuthenticator(lookup func(token string) *Identity) Authenticator {
	return func(ctx context.Context, _ *protocol.Request) (*Identity, error) {
		token, ok := strings.CutPrefix(protocol.GetRequestMeta(ctx, "Authorization"), "Bearer ")
		if !ok || token == "" {
			return nil, nil
		}
		return lookup(token), nil
	}
}

// StaticKeys builds a lookup from a fixed set of keys. Each key maps to an identity whose ID
// is the key's position in the list.
func StaticKeys(keys ...string) func(string) *Identity {
	known := make(map[string]*Identity, len(keys))
	for i, k := range keys {
		id := "key-" + strconv.Itoa(i+1)
		known[k] = &Identity{ID: id, Name: id}
	}
	return func(key string) *Identity {
		return known[key]
	}
}

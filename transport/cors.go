package transport

import (
	"net/http"
	"strconv"
	"strings"
)

var (
	defaultCORSMethods = []string{"GET", "POST", "OPTIONS"}
	defaultCORSHeaders = []string{"Content-Type", "Authorization", "X-API-Key", "X-Request-ID"}
)

// CORSConfig configures CORS for browser clients of the HTTP transport.
type CORSConfig struct {
	// AllowOrigins lists the allowed origins. A single "*" allows any origin.
	AllowOrigins []string

	// AllowMethods defaults to GET, POST and OPTIONS.
	AllowMethods []string

	// AllowHeaders defaults to the content type, credential and request ID headers.
	AllowHeaders []string

	ExposeHeaders    []string
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds. Default: 86400.
	MaxAge int
}

// DefaultCORSConfig allows every origin.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: defaultCORSMethods,
		AllowHeaders: defaultCORSHeaders,
		MaxAge:       86400,
	}
}

// CORSHandler wraps next with CORS headers and answers preflight requests with 204.
// Requests from origins outside the list pass through without CORS headers.
func CORSHandler(config CORSConfig, next http.Handler) http.Handler {
	p := newCORSPolicy(config)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := p.allow(r.Header.Get("Origin"))
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			h.Add("Vary", "Origin")
		}
		if p.credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", p.methods)
			h.Set("Access-Control-Allow-Headers", p.headers)
			h.Set("Access-Control-Max-Age", p.maxAge)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if p.expose != "" {
			h.Set("Access-Control-Expose-Headers", p.expose)
		}
		next.ServeHTTP(w, r)
	})
}

// corsPolicy is a CORSConfig with defaults applied and header values joined once.
type corsPolicy struct {
	wildcard    bool
	origins     map[string]bool
	methods     string
	headers     string
	expose      string
	maxAge      string
	credentials bool
}

func newCORSPolicy(config CORSConfig) *corsPolicy {
	methods, headers := config.AllowMethods, config.AllowHeaders
	if len(methods) == 0 {
		methods = defaultCORSMethods
	}
	if len(headers) == 0 {
		headers = defaultCORSHeaders
	}
	maxAge := config.MaxAge
	if maxAge <= 0 {
		maxAge = 86400
	}

	p := &corsPolicy{
		wildcard:    len(config.AllowOrigins) == 1 && config.AllowOrigins[0] == "*",
		origins:     make(map[string]bool, len(config.AllowOrigins)),
		methods:     strings.Join(methods, ", "),
		headers:     strings.Join(headers, ", "),
		expose:      strings.Join(config.ExposeHeaders, ", "),
		maxAge:      strconv.Itoa(maxAge),
		credentials: config.AllowCredentials,
	}
	for _, o := range config.AllowOrigins {
		p.origins[o] = true
	}
	return p
}

// allow returns the Access-Control-Allow-Origin value for origin, or "" when it is not allowed.
func (p *corsPolicy) allow(origin string) string {
	switch {
	case p.wildcard:
		return "*"
	case origin != "" && p.origins[origin]:
		return origin
	}
	return ""
}

// WithCORS enables CORS on the HTTP transport.
func WithCORS(config CORSConfig) HTTPOption {
	return func(h *HTTP) {
		h.corsConfig = &config
	}
}

// WithDefaultCORS enables CORS for every origin.
func WithDefaultCORS() HTTPOption {
	config := DefaultCORSConfig()
	return func(h *HTTP) {
		h.corsConfig = &config
	}
}

package protocol

import (
	"context"
	"net/textproto"
)

type requestMetaKey struct{}

// RequestMeta carries transport metadata, such as HTTP headers, alongside a request.
// Keys are stored in canonical header form so lookups are case-insensitive.
type RequestMeta map[string]string

// Get returns the value stored under key in any letter case.
func (m RequestMeta) Get(key string) string {
	if m == nil {
		return ""
	}
	return m[textproto.CanonicalMIMEHeaderKey(key)]
}

// MetaFromHeader builds request metadata from the first value of every header.
func MetaFromHeader(header map[string][]string) RequestMeta {
	meta := make(RequestMeta, len(header))
	for k, v := range header {
		if len(v) > 0 {
			meta[textproto.CanonicalMIMEHeaderKey(k)] = v[0]
		}
	}
	return meta
}

// ContextWithRequestMeta returns a new context with the request metadata attached.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext returns the request metadata from the context, or nil.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}

// GetRequestMeta returns a single metadata value from the context.
func GetRequestMeta(ctx context.Context, key string) string {
	return RequestMetaFromContext(ctx).Get(key)
}

// SetRequestMeta returns a context whose metadata is a copy of the current one with key set.
func SetRequestMeta(ctx context.Context, key, value string) context.Context {
	current := RequestMetaFromContext(ctx)
	meta := make(RequestMeta, len(current)+1)
	for k, v := range current {
		meta[k] = v
	}
	meta[textproto.CanonicalMIMEHeaderKey(key)] = value
	return ContextWithRequestMeta(ctx, meta)
}

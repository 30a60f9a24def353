package middleware

import (
	"context"

	"github.com/felixgeelhaar/schemaforge/protocol"
)

// HandlerFunc is the signature for request handlers.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// Middleware wraps a handler with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middleware into one. Chain(m1, m2, m3) runs m1 first, so m1 sees the
// request before and the response after every other middleware.
func Chain(middlewares ...Middleware) Middleware {
	return func(final HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// Stack is an ordered, growable middleware list.
type Stack struct {
	middlewares []Middleware
}

// Use starts a stack with the given middleware.
func Use(middlewares ...Middleware) *Stack {
	return &Stack{middlewares: append([]Middleware(nil), middlewares...)}
}

// Append adds middleware after the existing ones.
func (s *Stack) Append(middlewares ...Middleware) *Stack {
	s.middlewares = append(s.middlewares, middlewares...)
	return s
}

// Len returns the number of middleware in the stack.
func (s *Stack) Len() int {
	return len(s.middlewares)
}

// Then wraps handler with the stack.
func (s *Stack) Then(handler HandlerFunc) HandlerFunc {
	return Chain(s.middlewares...)(handler)
}

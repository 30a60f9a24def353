package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/schemaforge/protocol"
)

// Timeout returns middleware that enforces a request deadline. A handler that returns
// context.DeadlineExceeded after the deadline passed is reported as an internal error
// naming the limit.
func Timeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			resp, err := next(ctx, req)
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, protocol.NewInternalError(req.Method + " timed out after " + d.String())
			}
			return resp, err
		}
	}
}

package middleware

import "time"

// DefaultStack returns the recommended middleware stack for a schema service:
// panic recovery, request ID injection and logging.
func DefaultStack(logger Logger) []Middleware {
	return []Middleware{
		Recover(WithRecoverLogger(logger)),
		RequestID(),
		Logging(logger),
	}
}

// DefaultStackWithTimeout returns the default stack with a per-request deadline.
func DefaultStackWithTimeout(logger Logger, timeout time.Duration) []Middleware {
	return []Middleware{
		Recover(WithRecoverLogger(logger)),
		RequestID(),
		Timeout(timeout),
		Logging(logger),
	}
}

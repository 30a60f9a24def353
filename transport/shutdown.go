package transport

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/schemaforge/protocol"
)

// ShutdownConfig configures graceful shutdown of the HTTP transport.
type ShutdownConfig struct {
	// Timeout bounds the wait for in-flight validations. Default: 30 seconds.
	Timeout time.Duration

	// DrainDelay keeps accepting requests for a while after shutdown starts, so load
	// balancers can take the registry out of rotation first.
	DrainDelay time.Duration
}

// ShutdownManager counts in-flight requests and waits for them on shutdown.
type ShutdownManager struct {
	config ShutdownConfig

	draining  atomic.Bool
	inFlight  atomic.Int64
	idle      chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// NewShutdownManager creates a new shutdown manager.
func NewShutdownManager(config ShutdownConfig) *ShutdownManager {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &ShutdownManager{
		config: config,
		idle:   make(chan struct{}, 1),
		doneCh: make(chan struct{}),
	}
}

// IsDraining reports whether shutdown has started draining.
func (sm *ShutdownManager) IsDraining() bool {
	return sm.draining.Load()
}

// InFlightRequests returns the number of in-flight requests.
func (sm *ShutdownManager) InFlightRequests() int64 {
	return sm.inFlight.Load()
}

// TrackRequest counts a new request. It returns false while draining.
func (sm *ShutdownManager) TrackRequest() bool {
	if sm.draining.Load() {
		return false
	}
	sm.inFlight.Add(1)
	return true
}

// CompleteRequest marks a tracked request as finished.
func (sm *ShutdownManager) CompleteRequest() {
	if sm.inFlight.Add(-1) == 0 {
		select {
		case sm.idle <- struct{}{}:
		default:
		}
	}
}

// Middleware tracks requests through next. While draining, new requests get 503 with a
// JSON-RPC error body.
func (sm *ShutdownManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sm.TrackRequest() {
			w.Header().Set("Connection", "close")
			writeJSON(w, http.StatusServiceUnavailable,
				protocol.NewErrorResponse(nil, protocol.NewInternalError("server is shutting down")))
			return
		}
		defer sm.CompleteRequest()
		next.ServeHTTP(w, r)
	})
}

// Shutdown starts draining and returns when all in-flight requests complete or the
// timeout passes.
func (sm *ShutdownManager) Shutdown(ctx context.Context) error {
	if sm.config.DrainDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sm.config.DrainDelay):
		}
	}
	sm.draining.Store(true)

	ctx, cancel := context.WithTimeout(ctx, sm.config.Timeout)
	defer cancel()

	var err error
	for sm.inFlight.Load() > 0 && err == nil {
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-sm.idle:
		}
	}

	sm.closeOnce.Do(func() { close(sm.doneCh) })
	return err
}

// Done returns a channel that is closed when shutdown is complete.
func (sm *ShutdownManager) Done() <-chan struct{} {
	return sm.doneCh
}

// WithShutdownTimeout sets how long the HTTP transport waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.shutdownTimeout = d
	}
}

// WithShutdownDrainDelay sets the delay before the HTTP transport starts draining.
func WithShutdownDrainDelay(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.drainDelay = d
	}
}

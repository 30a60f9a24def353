package transport

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"

	"github.com/goccy/go-json"

	"github.com/felixgeelhaar/schemaforge/protocol"
)

// DefaultMaxLineBytes bounds a single stdio message.
const DefaultMaxLineBytes = 4 << 20

// Stdio implements newline-delimited JSON-RPC over stdin/stdout.
type Stdio struct {
	in      io.Reader
	out     io.Writer
	maxLine int

	mu sync.Mutex
}

// StdioOption configures a Stdio transport.
type StdioOption func(*Stdio)

// WithStdin sets a custom stdin reader.
func WithStdin(r io.Reader) StdioOption {
	return func(s *Stdio) {
		s.in = r
	}
}

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.out = w
	}
}

// WithMaxLineBytes sets the largest accepted message.
func WithMaxLineBytes(n int) StdioOption {
	return func(s *Stdio) {
		s.maxLine = n
	}
}

// NewStdio creates a new stdio transport.
func NewStdio(opts ...StdioOption) *Stdio {
	s := &Stdio{
		in:      os.Stdin,
		out:     os.Stdout,
		maxLine: DefaultMaxLineBytes,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Addr returns the transport address.
func (s *Stdio) Addr() string {
	return "stdio"
}

// Serve processes requests from stdin until EOF or until ctx is canceled.
func (s *Stdio) Serve(ctx context.Context, handler Handler) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, min(64*1024, s.maxLine)), s.maxLine)

	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			scanErr <- err
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if len(line) == 0 {
				continue
			}
			s.handleLine(ctx, handler, line)
		}
	}
}

func (s *Stdio) handleLine(ctx context.Context, handler Handler, line []byte) {
	req, parseErr := decodeMessage(line)
	if parseErr != nil {
		s.writeResponse(parseErr)
		return
	}
	if resp := dispatch(ctx, handler, req); resp != nil {
		s.writeResponse(resp)
	}
}

func (s *Stdio) writeResponse(resp *protocol.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(resp)
	if err != nil {
		data, _ = json.Marshal(protocol.NewErrorResponse(resp.ID, protocol.NewInternalError(err.Error())))
	}

	_, _ = s.out.Write(append(data, '\n'))
}

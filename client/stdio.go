package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/goccy/go-json"

	"github.com/felixgeelhaar/schemaforge/protocol"
)

// ErrTransportClosed is returned by Send after Close.
var ErrTransportClosed = errors.New("transport closed")

// StdioTransport exchanges newline-delimited JSON-RPC messages over a pair of streams,
// typically the stdin and stdout of a "schemaforge serve --transport stdio" subprocess.
type StdioTransport struct {
	cmd *exec.Cmd
	w   io.WriteCloser
	r   io.Reader

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan *Response
	closed  bool

	readDone chan struct{}
}

// NewStdioTransport spawns command and talks to it over its stdio.
func NewStdioTransport(command string, args ...string) (*StdioTransport, error) {
	cmd := exec.Command(command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}

	t := NewStreamTransport(stdout, stdin)
	t.cmd = cmd
	return t, nil
}

// NewStreamTransport reads responses from r and writes requests to w.
func NewStreamTransport(r io.Reader, w io.WriteCloser) *StdioTransport {
	t := &StdioTransport{
		r:        r,
		w:        w,
		pending:  make(map[string]chan *Response),
		readDone: make(chan struct{}),
	}
	go t.readResponses()
	return t
}

// Send writes the request and waits for the response with the same ID.
func (t *StdioTransport) Send(ctx context.Context, req *protocol.Request) (*Response, error) {
	id := string(req.ID)
	respCh := make(chan *Response, 1)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrTransportClosed
	}
	t.pending[id] = respCh
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
	}()

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	t.writeMu.Lock()
	_, err = t.w.Write(append(data, '\n'))
	t.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.readDone:
		select {
		case resp := <-respCh:
			return resp, nil
		default:
			return nil, ErrTransportClosed
		}
	case resp := <-respCh:
		return resp, nil
	}
}

// Close closes the request stream and waits for the subprocess, if any.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	err := t.w.Close()
	if t.cmd == nil {
		return err
	}
	<-t.readDone
	return t.cmd.Wait()
}

func (t *StdioTransport) readResponses() {
	defer close(t.readDone)

	scanner := bufio.NewScanner(t.r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue
		}

		t.mu.Lock()
		if ch, ok := t.pending[string(resp.ID)]; ok {
			ch <- &resp
		}
		t.mu.Unlock()
	}
}

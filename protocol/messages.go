package protocol

import (
	"fmt"

	"github.com/goccy/go-json"
)

// JSONRPCVersion is the only protocol version the registry speaks.
const JSONRPCVersion = "2.0"

// Request is a registry call such as schemas/validate. A request without an ID is a
// notification and gets no reply on any transport.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// NewRequest encodes params and builds a request for method. A nil params value leaves the
// params member out.
func NewRequest(id json.RawMessage, method string, params any) (*Request, error) {
	req := &Request{JSONRPC: JSONRPCVersion, ID: id, Method: method}
	if params == nil {
		return req, nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal %s params: %w", method, err)
	}
	req.Params = data
	return req, nil
}

// IsNotification reports whether the caller expects no reply.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response carries either a method result (a *schema.Result, a schema listing, ...) or an
// Error. Validation failures are results, so Error is reserved for calls that could not run.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResponse answers request id with result.
func NewResponse(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Result: result}
}

// NewErrorResponse answers request id with err. id is nil when the request could not be
// parsed far enough to read it.
func NewErrorResponse(id json.RawMessage, err *Error) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Error: err}
}

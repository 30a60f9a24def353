package server

import (
	"context"
	"errors"

	"github.com/goccy/go-json"

	"github.com/felixgeelhaar/schemaforge/middleware"
	"github.com/felixgeelhaar/schemaforge/protocol"
	"github.com/felixgeelhaar/schemaforge/schema"
)

// HandleRequest runs req through the registered middleware and dispatches it.
func (s *Server) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	s.mu.RLock()
	chain := middleware.Chain(s.middleware...)
	s.mu.RUnlock()
	return chain(s.dispatch)(ctx, req)
}

func (s *Server) dispatch(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	switch req.Method {
	case protocol.MethodPing:
		return protocol.NewResponse(req.ID, s.Manifest()), nil
	case protocol.MethodSchemasList:
		return protocol.NewResponse(req.ID, protocol.ListSchemasResult{Schemas: s.Schemas()}), nil
	case protocol.MethodSchemasGet:
		return s.handleGet(req)
	case protocol.MethodSchemasValidate:
		return s.handleValidate(ctx, req)
	case protocol.MethodSchemasLint:
		return s.handleLint(req)
	default:
		return nil, protocol.NewMethodNotFound(req.Method)
	}
}

func decodeParams(req *protocol.Request, v any) error {
	if len(req.Params) == 0 {
		return protocol.NewInvalidParams("missing params")
	}
	if err := json.Unmarshal(req.Params, v); err != nil {
		return protocol.NewInvalidParams(err.Error())
	}
	return nil
}

func (s *Server) lookup(name string) (*schema.Document, error) {
	doc, ok := s.Schema(name)
	if !ok {
		return nil, protocol.NewNotFound("schema not found: " + name)
	}
	return doc, nil
}

func (s *Server) handleGet(req *protocol.Request) (*protocol.Response, error) {
	var params protocol.GetSchemaParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	doc, err := s.lookup(params.Name)
	if err != nil {
		return nil, err
	}

	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, protocol.NewInternalError(err.Error())
	}
	return protocol.NewResponse(req.ID, protocol.GetSchemaResult{Name: params.Name, Schema: data}), nil
}

// handleValidate returns the verdict as a result. Data that violates the schema is not a
// protocol error.
func (s *Server) handleValidate(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var params protocol.ValidateParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}

	doc, err := s.resolve(params.Schema, params.Document)
	if err != nil {
		return nil, err
	}
	if len(params.Data) == 0 {
		if !hasKey(req.Params, "data") {
			return nil, protocol.NewInvalidParams("data is required")
		}
		params.Data = json.RawMessage("null")
	}

	res, err := s.validator.ValidateJSONAt(params.Attribute, params.Data, doc)
	if err != nil {
		return nil, protocol.NewMalformedDocument(err.Error())
	}

	middleware.AddSpanEvent(ctx, "schema.validated")
	return protocol.NewResponse(req.ID, res), nil
}

func (s *Server) handleLint(req *protocol.Request) (*protocol.Response, error) {
	var params protocol.LintParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}

	var lintErr error
	switch {
	case params.Name != "" && len(params.Document) == 0:
		doc, err := s.lookup(params.Name)
		if err != nil {
			return nil, err
		}
		lintErr = schema.Lint(doc)
	case params.Name == "" && len(params.Document) > 0:
		lintErr = schema.LintJSON(params.Document)
	default:
		return nil, protocol.NewInvalidParams("exactly one of name and document is required")
	}

	result := protocol.LintResult{Valid: lintErr == nil}
	if lintErr != nil {
		result.Error = lintErr.Error()
	}
	return protocol.NewResponse(req.ID, result), nil
}

// resolve picks the registered schema called name or parses the inline document.
func (s *Server) resolve(name string, inline json.RawMessage) (*schema.Document, error) {
	switch {
	case name != "" && len(inline) == 0:
		return s.lookup(name)
	case name == "" && len(inline) > 0:
		doc, err := schema.ParseDocument(inline)
		if errors.Is(err, schema.ErrMalformedDocument) {
			return nil, protocol.NewMalformedDocument(err.Error())
		}
		if err != nil {
			return nil, protocol.NewInvalidParams(err.Error())
		}
		return doc, nil
	default:
		return nil, protocol.NewInvalidParams("exactly one of schema and document is required")
	}
}

// hasKey reports whether the params object carries key, even with a null value.
func hasKey(params json.RawMessage, key string) bool {
	var fields map[string]any
	if err := json.Unmarshal(params, &fields); err != nil {
		return false
	}
	_, ok := fields[key]
	return ok
}

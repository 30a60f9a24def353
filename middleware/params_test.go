package middleware

import (
	"testing"

	"github.com/goccy/go-json"

	"github.com/felixgeelhaar/schemaforge/protocol"
	"github.com/felixgeelhaar/schemaforge/schema"
)

func TestSchemaName(t *testing.T) {
	tests := []struct {
		name   string
		method string
		params string
		want   string
	}{
		{"validate", protocol.MethodSchemasValidate, `{"schema":"user","data":{}}`, "user"},
		{"get", protocol.MethodSchemasGet, `{"name":"order"}`, "order"},
		{"lint by name", protocol.MethodSchemasLint, `{"name":"order"}`, "order"},
		{"inline document", protocol.MethodSchemasValidate, `{"document":{"type":"string"},"data":"x"}`, ""},
		{"other method", protocol.MethodSchemasList, `{"name":"x"}`, ""},
		{"no params", protocol.MethodSchemasGet, ``, ""},
		{"malformed params", protocol.MethodSchemasGet, `{"name":`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &protocol.Request{Method: tt.method}
			if tt.params != "" {
				req.Params = json.RawMessage(tt.params)
			}
			if got := SchemaName(req); got != tt.want {
				t.Errorf("SchemaName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationResult(t *testing.T) {
	res := schema.ValidateNode("x", schema.Integer())

	if got, ok := ValidationResult(protocol.NewResponse(nil, res)); !ok || got != res {
		t.Errorf("ValidationResult() = %v, %v", got, ok)
	}
	if _, ok := ValidationResult(protocol.NewResponse(nil, "ok")); ok {
		t.Error("non-result response reported a verdict")
	}
	if _, ok := ValidationResult(protocol.NewErrorResponse(nil, protocol.NewNotFound("x"))); ok {
		t.Error("error response reported a verdict")
	}
	if _, ok := ValidationResult(nil); ok {
		t.Error("nil response reported a verdict")
	}
}

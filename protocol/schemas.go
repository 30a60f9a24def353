package protocol

import "github.com/goccy/go-json"

// SchemaInfo describes a registered schema.
type SchemaInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ListSchemasResult is the result of schemas/list.
type ListSchemasResult struct {
	Schemas []SchemaInfo `json:"schemas"`
}

// GetSchemaParams are the parameters of schemas/get.
type GetSchemaParams struct {
	Name string `json:"name"`
}

// GetSchemaResult is the result of schemas/get. Schema holds the document text in key order.
type GetSchemaResult struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
}

// ValidateParams are the parameters of schemas/validate. Exactly one of Schema (a registered
// name) and Document (an inline schema) must be set.
type ValidateParams struct {
	Schema    string          `json:"schema,omitempty"`
	Document  json.RawMessage `json:"document,omitempty"`
	Data      json.RawMessage `json:"data"`
	Attribute string          `json:"attribute,omitempty"`
}

// LintParams are the parameters of schemas/lint.
type LintParams struct {
	Name     string          `json:"name,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
}

// LintResult is the result of schemas/lint.
type LintResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

package middleware

import (
	"github.com/goccy/go-json"

	"github.com/felixgeelhaar/schemaforge/protocol"
	"github.com/felixgeelhaar/schemaforge/schema"
)

// target holds the parameters that name a registered schema.
type target struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

// SchemaName returns the registered schema a request targets: the "schema" parameter of
// schemas/validate or the "name" parameter of schemas/get and schemas/lint. It returns ""
// for other methods and for inline documents.
func SchemaName(req *protocol.Request) string {
	if len(req.Params) == 0 {
		return ""
	}
	switch req.Method {
	case protocol.MethodSchemasValidate, protocol.MethodSchemasGet, protocol.MethodSchemasLint:
	default:
		return ""
	}
	var t target
	if err := json.Unmarshal(req.Params, &t); err != nil {
		return ""
	}
	if t.Schema != "" {
		return t.Schema
	}
	return t.Name
}

// ValidationResult returns the validation outcome carried by resp, if any.
func ValidationResult(resp *protocol.Response) (*schema.Result, bool) {
	if resp == nil || resp.Error != nil {
		return nil, false
	}
	res, ok := resp.Result.(*schema.Result)
	return res, ok && res != nil
}

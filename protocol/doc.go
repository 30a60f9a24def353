// Package protocol defines the JSON-RPC 2.0 message types, method names and error codes of
// the schemaforge service.
//
// Most users should use the higher-level schemaforge package instead.
//
// # Request and Response Types
//
//	type Request struct {
//	    JSONRPC string          `json:"jsonrpc"`
//	    ID      json.RawMessage `json:"id,omitempty"`
//	    Method  string          `json:"method"`
//	    Params  json.RawMessage `json:"params,omitempty"`
//	}
//
// # Error Codes
//
// Standard JSON-RPC 2.0 codes:
//
//	CodeParseError     = -32700  // Invalid JSON
//	CodeInvalidRequest = -32600  // Invalid Request object
//	CodeMethodNotFound = -32601  // Method not found
//	CodeInvalidParams  = -32602  // Invalid method parameters
//	CodeInternalError  = -32603  // Internal server error
//
// Application codes:
//
//	CodeNotFound          = -32001  // Unknown schema
//	CodeUnauthorized      = -32002
//	CodeRateLimited       = -32003
//	CodeMalformedDocument = -32004  // Payload or schema is not valid JSON
//
// A failed validation is not an error: schemas/validate returns a result with
// "valid": false and the violations.
//
// # Methods
//
//	MethodPing            = "ping"
//	MethodSchemasList     = "schemas/list"
//	MethodSchemasGet      = "schemas/get"
//	MethodSchemasValidate = "schemas/validate"
//	MethodSchemasLint     = "schemas/lint"
package protocol

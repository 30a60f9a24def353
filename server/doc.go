// Package server provides the schemaforge schema registry.
//
// A Server holds named schema documents and answers JSON-RPC requests about them:
//
//	srv := server.New(server.Info{Name: "schemas", Version: "1.0.0"})
//	srv.Register("user", schema.Object().
//	    Property("name", schema.String().MinLength(1)).
//	    Required("name"))
//
//	n, err := srv.LoadDir("schemas") // *.json, *.yaml and *.yml files
//
// # Methods
//
//   - ping: returns the server manifest
//   - schemas/list: names, titles and descriptions, sorted by name
//   - schemas/get {name}: the stored document
//   - schemas/validate {schema | document, data, attribute}: a validation result
//   - schemas/lint {name | document}: meta-schema check
//
// Data that violates a schema is reported in the result, not as a protocol error. An
// unknown schema name fails with CodeNotFound and malformed JSON data with
// CodeMalformedDocument.
//
// Middleware registered with Use or WithMiddleware wraps every request.
package server

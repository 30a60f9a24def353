package protocol

// Version identifies the schemaforge RPC surface.
const Version = "schemaforge/1"

// Method names.
const (
	MethodPing            = "ping"
	MethodSchemasList     = "schemas/list"
	MethodSchemasGet      = "schemas/get"
	MethodSchemasValidate = "schemas/validate"
	MethodSchemasLint     = "schemas/lint"
)

package schema

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const lintResource = "schema.json"

// Lint checks doc against the draft-07 meta-schema. It catches documents the engine would
// silently tolerate, such as a "minLength" given as a string or an invalid "pattern".
func Lint(doc *Document) error {
	data, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	return LintJSON(data)
}

// LintJSON is Lint for schema text.
func LintJSON(data []byte) error {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(lintResource, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	if _, err := compiler.Compile(lintResource); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return nil
}

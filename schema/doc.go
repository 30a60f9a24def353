// Package schema builds JSON Schema documents and validates data against them.
//
// # Building Schemas
//
// Nodes are immutable values; every setter returns an updated copy:
//
//	user := schema.Object().
//	    Property("id", schema.String().Format("uuid")).
//	    Property("name", schema.String().MinLength(1).MaxLength(255)).
//	    Property("age", schema.Integer().Minimum(0)).
//	    Property("tags", schema.Array().Items(schema.String()).UniqueItems(true)).
//	    Required("id", "name")
//
//	doc := user.Document() // ordered *schema.Document
//	data, _ := doc.JSON()  // indented JSON text
//
// Object documents always carry "properties", even when empty. A nullable node serializes
// its type as a pair such as ["string", "null"]. Custom keys are written last and replace a
// structural keyword of the same name.
//
// Schemas can also be generated from Go structs with the jsonschema tag:
//
//	type User struct {
//	    Name string `json:"name" jsonschema:"required,minLength=1"`
//	}
//
//	node, err := schema.Generate(User{})
//
// # Reading Schemas
//
// FromJSON, FromMap and FromDocument rebuild an object node from an existing document.
// Property schemas with a missing or unrecognized type are rebuilt as string schemas.
//
// # Validation
//
//	res := schema.Validate(data, doc)
//	if !res.Valid {
//	    for _, msg := range res.Errors() {
//	        fmt.Println(msg) // The field name must be at least 1 characters
//	    }
//	}
//
// All violations are collected in one pass. The composition keywords check their branches
// with a private accumulator: anyOf stops at the first match, allOf stops at the first
// failure, oneOf counts matches and not inverts. Only one aggregate message per keyword is
// reported.
//
// Paths are dotted for properties and bracketed for array items (e.g., "user.tags[2]").
//
// # Formats
//
// The built-in formats are email, uri, url, date, date-time and uuid. Unknown formats pass.
// Use WithFormat and WithoutFormat on NewValidator to change the table.
package schema

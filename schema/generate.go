package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Generate builds an object schema from a Go struct value.
//
// Field names follow the json tag. The jsonschema tag adds constraints:
//
//	type User struct {
//	    Email string `json:"email" jsonschema:"required,format=email"`
//	    Age   int    `json:"age" jsonschema:"minimum=0,maximum=150"`
//	    Role  string `json:"role" jsonschema:"enum=admin|member"`
//	}
//
// Recognized options are required, description=, title=, format=, pattern=, minLength=,
// maxLength=, minimum=, maximum=, minItems=, maxItems=, uniqueItems, enum= and nullable.
// Pointer fields are not nullable unless tagged.
func Generate(v any) (ObjectNode, error) {
	return GenerateFromType(reflect.TypeOf(v))
}

// GenerateFromType builds an object schema from a struct type.
func GenerateFromType(t reflect.Type) (ObjectNode, error) {
	if t == nil {
		return ObjectNode{}, fmt.Errorf("generate schema: nil type")
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return ObjectNode{}, fmt.Errorf("generate schema: %s is not a struct", t)
	}
	return generateStruct(t)
}

func generateFromType(t reflect.Type) (Node, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		return generateStruct(t)
	case reflect.String:
		return String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Integer(), nil
	case reflect.Float32, reflect.Float64:
		return Number(), nil
	case reflect.Bool:
		return Boolean(), nil
	case reflect.Slice, reflect.Array:
		item, err := generateFromType(t.Elem())
		if err != nil {
			return nil, err
		}
		return Array().Items(item), nil
	case reflect.Map:
		return Object(), nil
	default:
		return nil, fmt.Errorf("generate schema: unsupported kind %s", t.Kind())
	}
}

func generateStruct(t reflect.Type) (ObjectNode, error) {
	obj := Object()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name := field.Name
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				name = parts[0]
			}
		}

		node, err := generateFromType(field.Type)
		if err != nil {
			return ObjectNode{}, fmt.Errorf("field %s: %w", field.Name, err)
		}

		node, required, err := applyTag(node, field.Tag.Get("jsonschema"))
		if err != nil {
			return ObjectNode{}, fmt.Errorf("field %s: %w", field.Name, err)
		}

		obj = obj.Property(name, node)
		if required {
			obj = obj.Required(name)
		}
	}
	return obj, nil
}

// applyTag applies the options of a jsonschema struct tag to node.
func applyTag(node Node, tag string) (Node, bool, error) {
	if tag == "" {
		return node, false, nil
	}

	required := false
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		key, value, _ := strings.Cut(part, "=")

		var err error
		switch key {
		case "":
		case "required":
			required = true
		case "nullable":
			node = setNullable(node)
		case "description":
			node = describe(node, value)
		case "title":
			node = entitle(node, value)
		default:
			node, err = constrain(node, key, value)
		}
		if err != nil {
			return nil, false, err
		}
	}
	return node, required, nil
}

func constrain(node Node, key, value string) (Node, error) {
	switch n := node.(type) {
	case StringNode:
		switch key {
		case "format":
			return n.Format(value), nil
		case "pattern":
			return n.Pattern(value), nil
		case "minLength":
			v, err := strconv.Atoi(value)
			return n.MinLength(v), err
		case "maxLength":
			v, err := strconv.Atoi(value)
			return n.MaxLength(v), err
		case "enum":
			options := strings.Split(value, "|")
			values := make([]any, len(options))
			for i, o := range options {
				values[i] = o
			}
			return n.Enum(values...), nil
		}
	case NumberNode:
		switch key {
		case "minimum":
			v, err := strconv.ParseFloat(value, 64)
			return n.Minimum(v), err
		case "maximum":
			v, err := strconv.ParseFloat(value, 64)
			return n.Maximum(v), err
		case "multipleOf":
			v, err := strconv.ParseFloat(value, 64)
			return n.MultipleOf(v), err
		}
	case ArrayNode:
		switch key {
		case "minItems":
			v, err := strconv.Atoi(value)
			return n.MinItems(v), err
		case "maxItems":
			v, err := strconv.Atoi(value)
			return n.MaxItems(v), err
		case "uniqueItems":
			return n.UniqueItems(true), nil
		}
	}
	return nil, fmt.Errorf("option %q does not apply to a %s schema", key, node.Kind())
}

func describe(node Node, text string) Node {
	switch n := node.(type) {
	case StringNode:
		return n.Description(text)
	case NumberNode:
		return n.Description(text)
	case BooleanNode:
		return n.Description(text)
	case ArrayNode:
		return n.Description(text)
	case ObjectNode:
		return n.Description(text)
	}
	return node
}

func entitle(node Node, text string) Node {
	switch n := node.(type) {
	case StringNode:
		return n.Title(text)
	case NumberNode:
		return n.Title(text)
	case BooleanNode:
		return n.Title(text)
	case ArrayNode:
		return n.Title(text)
	case ObjectNode:
		return n.Title(text)
	}
	return node
}

package schema

import "fmt"

// FromJSON rebuilds an object schema from its JSON text. Invalid JSON yields an error wrapping
// ErrMalformedDocument.
func FromJSON(data []byte) (ObjectNode, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return ObjectNode{}, fmt.Errorf("parse schema: %w", err)
	}
	return FromDocument(doc), nil
}

// FromMap rebuilds an object schema from a plain map.
func FromMap(m map[string]any) ObjectNode {
	return FromDocument(DocumentFromMap(m))
}

// FromDocument rebuilds an object schema from a document. The root is always an ObjectNode:
// "properties" and "required" are rebuilt structurally and every other root key is kept as a
// custom key, so the rebuilt node serializes back to the same document.
//
// Property schemas are rebuilt by their "type". A missing or unrecognized type falls back to a
// StringNode; keys the chosen variant does not model are kept as custom keys.
func FromDocument(doc *Document) ObjectNode {
	root := Object()
	for _, key := range doc.Keys() {
		value, _ := doc.Get(key)
		switch key {
		case keyProperties:
			if props, ok := parseProperties(value); ok {
				for _, p := range props {
					root = root.Property(p.name, p.node)
				}
				continue
			}
		case keyRequired:
			if names, ok := toStrings(value); ok {
				root = root.Required(names...)
				continue
			}
		}
		root = root.Custom(key, value)
	}
	return root
}

// nodeFromDocument picks the variant for a sub-schema.
func nodeFromDocument(doc *Document) Node {
	raw, hasType := doc.Get(keyType)
	if !hasType {
		if isComposition(doc) {
			return parseCompound(doc)
		}
		return parseString(doc)
	}

	tag, nullable, ok := splitType(raw)
	if !ok {
		// A type union the node model cannot express; keep it verbatim.
		return parseString(doc).Custom(keyType, raw)
	}

	var n Node
	switch tag {
	case typeString:
		n = parseString(doc)
	case typeNumber, typeInteger:
		n = parseNumber(doc, tag == typeInteger)
	case typeBoolean:
		n = parseBoolean(doc)
	case typeNull:
		n = parseNull(doc)
	case typeArray:
		n = parseArray(doc)
	case typeObject:
		n = parseObject(doc)
	default:
		return parseString(doc)
	}
	if nullable {
		n = setNullable(n)
	}
	return n
}

// splitType reads a "type" value: a single tag, or a tag paired with "null".
func splitType(raw any) (tag string, nullable bool, ok bool) {
	if s, isString := raw.(string); isString {
		return s, false, true
	}
	tags, isList := toStrings(raw)
	if !isList || len(tags) != 2 {
		return "", false, false
	}
	switch {
	case tags[1] == typeNull && tags[0] != typeNull:
		return tags[0], true, true
	case tags[0] == typeNull && tags[1] != typeNull:
		return tags[1], true, true
	}
	return "", false, false
}

func setNullable(n Node) Node {
	switch v := n.(type) {
	case StringNode:
		return v.Nullable()
	case NumberNode:
		return v.Nullable()
	case BooleanNode:
		return v.Nullable()
	case ArrayNode:
		return v.Nullable()
	case ObjectNode:
		return v.Nullable()
	}
	return n
}

func isComposition(doc *Document) bool {
	return doc.Has(keyAnyOf) || doc.Has(keyOneOf) || doc.Has(keyAllOf) || doc.Has(keyNot)
}

// parseMeta walks doc in order. Keys claimed by consume are skipped; shared annotations are
// read into meta; anything else becomes a custom key.
func parseMeta(doc *Document, consume func(key string, value any) bool) meta {
	var m meta
	for _, key := range doc.Keys() {
		if key == keyType {
			continue
		}
		value, _ := doc.Get(key)
		if consume(key, value) {
			continue
		}
		if parseAnnotation(&m, key, value) {
			continue
		}
		m = m.withCustom(key, value)
	}
	return m
}

func parseAnnotation(m *meta, key string, value any) bool {
	switch key {
	case keyTitle:
		s, ok := value.(string)
		if ok {
			m.title = &s
		}
		return ok
	case keyDescription:
		s, ok := value.(string)
		if ok {
			m.description = &s
		}
		return ok
	case keyComment:
		s, ok := value.(string)
		if ok {
			m.comment = &s
		}
		return ok
	case keyDefault:
		m.def, m.hasDefault = value, true
		return true
	case keyExamples:
		list, ok := toList(value)
		if ok {
			m.examples = append([]any{}, list...)
		}
		return ok
	}
	return false
}

func intField(value any, dst **int) bool {
	v, ok := toInt(value)
	if ok {
		*dst = &v
	}
	return ok
}

func floatField(value any, dst **float64) bool {
	v, ok := toNumber(value)
	if ok {
		*dst = &v
	}
	return ok
}

func parseString(doc *Document) StringNode {
	var n StringNode
	n.meta = parseMeta(doc, func(key string, value any) bool {
		switch key {
		case keyMinLength:
			return intField(value, &n.minLength)
		case keyMaxLength:
			return intField(value, &n.maxLength)
		case keyPattern:
			s, ok := value.(string)
			if ok {
				n.pattern = &s
			}
			return ok
		case keyFormat:
			s, ok := value.(string)
			if ok {
				n.format = &s
			}
			return ok
		case keyEnum:
			list, ok := toList(value)
			if ok {
				n.enum = append([]any{}, list...)
			}
			return ok
		case keyConst:
			n.constant, n.hasConst = value, true
			return true
		}
		return false
	})
	return n
}

func parseNumber(doc *Document, integer bool) NumberNode {
	n := NumberNode{integer: integer}
	n.meta = parseMeta(doc, func(key string, value any) bool {
		switch key {
		case keyMinimum:
			return floatField(value, &n.minimum)
		case keyMaximum:
			return floatField(value, &n.maximum)
		case keyExclusiveMinimum:
			return floatField(value, &n.exclusiveMinimum)
		case keyExclusiveMaximum:
			return floatField(value, &n.exclusiveMaximum)
		case keyMultipleOf:
			return floatField(value, &n.multipleOf)
		}
		return false
	})
	return n
}

func parseBoolean(doc *Document) BooleanNode {
	var n BooleanNode
	n.meta = parseMeta(doc, func(key string, value any) bool {
		if key != keyConst {
			return false
		}
		b, ok := value.(bool)
		if ok {
			n.constant = &b
		}
		return ok
	})
	return n
}

func parseNull(doc *Document) NullNode {
	var n NullNode
	n.meta = parseMeta(doc, func(string, any) bool { return false })
	return n
}

func parseArray(doc *Document) ArrayNode {
	var n ArrayNode
	n.meta = parseMeta(doc, func(key string, value any) bool {
		switch key {
		case keyItems:
			sub, ok := toDocument(value)
			if ok {
				n.items = nodeFromDocument(sub)
			}
			return ok
		case keyContains:
			sub, ok := toDocument(value)
			if ok {
				n.contains = nodeFromDocument(sub)
			}
			return ok
		case keyMinItems:
			return intField(value, &n.minItems)
		case keyMaxItems:
			return intField(value, &n.maxItems)
		case keyUniqueItems:
			b, ok := value.(bool)
			if ok {
				n.uniqueItems = &b
			}
			return ok
		}
		return false
	})
	return n
}

func parseObject(doc *Document) ObjectNode {
	var n ObjectNode
	n.meta = parseMeta(doc, func(key string, value any) bool {
		switch key {
		case keyProperties:
			props, ok := parseProperties(value)
			if ok {
				n.properties = props
			}
			return ok
		case keyRequired:
			names, ok := toStrings(value)
			if ok {
				n = n.Required(names...)
			}
			return ok
		case keyAdditionalProperties:
			b, ok := value.(bool)
			if ok {
				n.additionalProperties = &b
			}
			return ok
		case keyMinProperties:
			return intField(value, &n.minProperties)
		case keyMaxProperties:
			return intField(value, &n.maxProperties)
		}
		return false
	})
	return n
}

// parseProperties rebuilds a "properties" mapping. It fails when any member is not a schema
// document, in which case the caller keeps the whole mapping verbatim.
func parseProperties(value any) ([]property, bool) {
	obj, ok := toDocument(value)
	if !ok {
		return nil, false
	}
	props := make([]property, 0, obj.Len())
	for _, name := range obj.Keys() {
		raw, _ := obj.Get(name)
		sub, ok := toDocument(raw)
		if !ok {
			return nil, false
		}
		props = append(props, property{name: name, node: nodeFromDocument(sub)})
	}
	return props, true
}

func parseCompound(doc *Document) CompoundNode {
	var n CompoundNode
	n.meta = parseMeta(doc, func(key string, value any) bool {
		switch key {
		case keyAnyOf:
			nodes, ok := parseNodeList(value)
			if ok {
				n.anyOf = nodes
			}
			return ok
		case keyOneOf:
			nodes, ok := parseNodeList(value)
			if ok {
				n.oneOf = nodes
			}
			return ok
		case keyAllOf:
			nodes, ok := parseNodeList(value)
			if ok {
				n.allOf = nodes
			}
			return ok
		case keyNot:
			sub, ok := toDocument(value)
			if ok {
				n.not = nodeFromDocument(sub)
			}
			return ok
		}
		return false
	})
	return n
}

func parseNodeList(value any) ([]Node, bool) {
	list, ok := toList(value)
	if !ok {
		return nil, false
	}
	nodes := make([]Node, 0, len(list))
	for _, item := range list {
		sub, ok := toDocument(item)
		if !ok {
			return nil, false
		}
		nodes = append(nodes, nodeFromDocument(sub))
	}
	return nodes, true
}

package schema

import "github.com/goccy/go-json"

// Kind identifies a node variant.
type Kind int

// Node variants.
const (
	KindString Kind = iota + 1
	KindNumber
	KindBoolean
	KindNull
	KindArray
	KindObject
	KindCompound
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return typeString
	case KindNumber:
		return typeNumber
	case KindBoolean:
		return typeBoolean
	case KindNull:
		return typeNull
	case KindArray:
		return typeArray
	case KindObject:
		return typeObject
	case KindCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// Node is a schema rule set. The set of variants is closed: StringNode, NumberNode,
// BooleanNode, NullNode, ArrayNode, ObjectNode and CompoundNode.
//
// Nodes are values. Every setter returns an updated copy and leaves the receiver untouched,
// so a partially built node can be reused as a template.
type Node interface {
	Kind() Kind
	// Document serializes the node. Each call builds a fresh document.
	Document() *Document
	node()
}

// Marshal returns the compact JSON form of a node.
func Marshal(n Node) ([]byte, error) {
	return n.Document().MarshalJSON()
}

// MarshalIndent returns the indented JSON form of a node.
func MarshalIndent(n Node) ([]byte, error) {
	return json.MarshalIndent(n.Document(), "", "  ")
}

type customKey struct {
	key   string
	value any
}

// meta holds the keywords every variant shares.
type meta struct {
	nullable    bool
	title       *string
	description *string
	def         any
	hasDefault  bool
	examples    []any
	comment     *string
	custom      []customKey
}

func (m meta) withCustom(key string, value any) meta {
	custom := make([]customKey, len(m.custom), len(m.custom)+1)
	copy(custom, m.custom)
	m.custom = append(custom, customKey{key: key, value: value})
	return m
}

// typeTag renders the "type" keyword, widened with "null" for nullable nodes.
func (m meta) typeTag(tag string) any {
	if m.nullable && tag != typeNull {
		return []any{tag, typeNull}
	}
	return tag
}

// write appends metadata, then overlays custom keys. A custom key that matches an earlier
// keyword replaces its value in place.
func (m meta) write(doc *Document) {
	if m.title != nil {
		doc.Set(keyTitle, *m.title)
	}
	if m.description != nil {
		doc.Set(keyDescription, *m.description)
	}
	if m.hasDefault {
		doc.Set(keyDefault, cloneValue(m.def))
	}
	if m.examples != nil {
		doc.Set(keyExamples, cloneValue(m.examples))
	}
	if m.comment != nil {
		doc.Set(keyComment, *m.comment)
	}
	for _, c := range m.custom {
		doc.Set(c.key, cloneValue(c.value))
	}
}

func setInt(doc *Document, key string, v *int) {
	if v != nil {
		doc.Set(key, *v)
	}
}

func setFloat(doc *Document, key string, v *float64) {
	if v != nil {
		doc.Set(key, *v)
	}
}

func documents(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = n.Document()
	}
	return out
}

func cloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}

// StringNode constrains string values.
type StringNode struct {
	meta
	minLength *int
	maxLength *int
	pattern   *string
	format    *string
	enum      []any
	constant  any
	hasConst  bool
}

// String returns an empty string schema.
func String() StringNode { return StringNode{} }

func (StringNode) Kind() Kind { return KindString }
func (StringNode) node()      {}

// MinLength sets the minimum length in characters.
func (n StringNode) MinLength(v int) StringNode { n.minLength = &v; return n }

// MaxLength sets the maximum length in characters.
func (n StringNode) MaxLength(v int) StringNode { n.maxLength = &v; return n }

// Pattern sets a regular expression the value must contain a match for.
func (n StringNode) Pattern(pattern string) StringNode { n.pattern = &pattern; return n }

// Format names a semantic format such as "email" or "uuid".
func (n StringNode) Format(format string) StringNode { n.format = &format; return n }

// Enum restricts the value to the given set.
func (n StringNode) Enum(values ...any) StringNode {
	n.enum = append([]any{}, values...)
	return n
}

// Const requires the value to equal v.
func (n StringNode) Const(v any) StringNode { n.constant, n.hasConst = v, true; return n }

func (n StringNode) Document() *Document {
	doc := NewDocument().Set(keyType, n.typeTag(typeString))
	setInt(doc, keyMinLength, n.minLength)
	setInt(doc, keyMaxLength, n.maxLength)
	if n.pattern != nil {
		doc.Set(keyPattern, *n.pattern)
	}
	if n.format != nil {
		doc.Set(keyFormat, *n.format)
	}
	if n.enum != nil {
		doc.Set(keyEnum, cloneValue(n.enum))
	}
	if n.hasConst {
		doc.Set(keyConst, cloneValue(n.constant))
	}
	n.write(doc)
	return doc
}

// NumberNode constrains numeric values; Integer narrows it to whole numbers.
type NumberNode struct {
	meta
	integer          bool
	minimum          *float64
	maximum          *float64
	exclusiveMinimum *float64
	exclusiveMaximum *float64
	multipleOf       *float64
}

// Number returns an empty number schema.
func Number() NumberNode { return NumberNode{} }

// Integer returns an empty integer schema.
func Integer() NumberNode { return NumberNode{integer: true} }

func (NumberNode) Kind() Kind { return KindNumber }
func (NumberNode) node()      {}

// Integer switches the declared type to "integer".
func (n NumberNode) Integer() NumberNode { n.integer = true; return n }

// IsInteger reports whether the node declares the "integer" type.
func (n NumberNode) IsInteger() bool { return n.integer }

// Minimum sets an inclusive lower bound.
func (n NumberNode) Minimum(v float64) NumberNode { n.minimum = &v; return n }

// Maximum sets an inclusive upper bound.
func (n NumberNode) Maximum(v float64) NumberNode { n.maximum = &v; return n }

// ExclusiveMinimum sets a strict lower bound.
func (n NumberNode) ExclusiveMinimum(v float64) NumberNode { n.exclusiveMinimum = &v; return n }

// ExclusiveMaximum sets a strict upper bound.
func (n NumberNode) ExclusiveMaximum(v float64) NumberNode { n.exclusiveMaximum = &v; return n }

// MultipleOf requires the value to divide evenly by v.
func (n NumberNode) MultipleOf(v float64) NumberNode { n.multipleOf = &v; return n }

func (n NumberNode) Document() *Document {
	tag := typeNumber
	if n.integer {
		tag = typeInteger
	}
	doc := NewDocument().Set(keyType, n.typeTag(tag))
	setFloat(doc, keyMinimum, n.minimum)
	setFloat(doc, keyMaximum, n.maximum)
	setFloat(doc, keyExclusiveMinimum, n.exclusiveMinimum)
	setFloat(doc, keyExclusiveMaximum, n.exclusiveMaximum)
	setFloat(doc, keyMultipleOf, n.multipleOf)
	n.write(doc)
	return doc
}

// BooleanNode constrains boolean values.
type BooleanNode struct {
	meta
	constant *bool
}

// Boolean returns an empty boolean schema.
func Boolean() BooleanNode { return BooleanNode{} }

func (BooleanNode) Kind() Kind { return KindBoolean }
func (BooleanNode) node()      {}

// Const requires the value to equal v.
func (n BooleanNode) Const(v bool) BooleanNode { n.constant = &v; return n }

func (n BooleanNode) Document() *Document {
	doc := NewDocument().Set(keyType, n.typeTag(typeBoolean))
	if n.constant != nil {
		doc.Set(keyConst, *n.constant)
	}
	n.write(doc)
	return doc
}

// NullNode accepts only null.
type NullNode struct {
	meta
}

// Null returns a null schema.
func Null() NullNode { return NullNode{} }

func (NullNode) Kind() Kind { return KindNull }
func (NullNode) node()      {}

func (n NullNode) Document() *Document {
	doc := NewDocument().Set(keyType, n.typeTag(typeNull))
	n.write(doc)
	return doc
}

// ArrayNode constrains sequences.
type ArrayNode struct {
	meta
	items       Node
	minItems    *int
	maxItems    *int
	uniqueItems *bool
	contains    Node
}

// Array returns an empty array schema.
func Array() ArrayNode { return ArrayNode{} }

func (ArrayNode) Kind() Kind { return KindArray }
func (ArrayNode) node()      {}

// Items sets the schema every element must satisfy.
func (n ArrayNode) Items(item Node) ArrayNode { n.items = item; return n }

// MinItems sets the minimum element count.
func (n ArrayNode) MinItems(v int) ArrayNode { n.minItems = &v; return n }

// MaxItems sets the maximum element count.
func (n ArrayNode) MaxItems(v int) ArrayNode { n.maxItems = &v; return n }

// UniqueItems toggles the no-duplicates rule.
func (n ArrayNode) UniqueItems(unique bool) ArrayNode { n.uniqueItems = &unique; return n }

// Contains requires at least one element to satisfy item.
func (n ArrayNode) Contains(item Node) ArrayNode { n.contains = item; return n }

func (n ArrayNode) Document() *Document {
	doc := NewDocument().Set(keyType, n.typeTag(typeArray))
	if n.items != nil {
		doc.Set(keyItems, n.items.Document())
	}
	setInt(doc, keyMinItems, n.minItems)
	setInt(doc, keyMaxItems, n.maxItems)
	if n.uniqueItems != nil {
		doc.Set(keyUniqueItems, *n.uniqueItems)
	}
	if n.contains != nil {
		doc.Set(keyContains, n.contains.Document())
	}
	n.write(doc)
	return doc
}

type property struct {
	name string
	node Node
}

// ObjectNode constrains mappings.
type ObjectNode struct {
	meta
	properties           []property
	required             []string
	additionalProperties *bool
	minProperties        *int
	maxProperties        *int
}

// Object returns an object schema without properties.
func Object() ObjectNode { return ObjectNode{} }

func (ObjectNode) Kind() Kind { return KindObject }
func (ObjectNode) node()      {}

// Property declares or replaces a property. New names are appended; a replaced name keeps
// its position. Declaring a property does not make it required.
func (n ObjectNode) Property(name string, node Node) ObjectNode {
	props := make([]property, len(n.properties), len(n.properties)+1)
	copy(props, n.properties)
	for i := range props {
		if props[i].name == name {
			props[i].node = node
			n.properties = props
			return n
		}
	}
	n.properties = append(props, property{name: name, node: node})
	return n
}

// Required adds names to the required set. Duplicates are dropped.
func (n ObjectNode) Required(names ...string) ObjectNode {
	required := make([]string, len(n.required), len(n.required)+len(names))
	copy(required, n.required)
	for _, name := range names {
		if !containsString(required, name) {
			required = append(required, name)
		}
	}
	n.required = required
	return n
}

// AdditionalProperties sets whether undeclared keys are allowed.
func (n ObjectNode) AdditionalProperties(allowed bool) ObjectNode {
	n.additionalProperties = &allowed
	return n
}

// MinProperties sets the minimum key count.
func (n ObjectNode) MinProperties(v int) ObjectNode { n.minProperties = &v; return n }

// MaxProperties sets the maximum key count.
func (n ObjectNode) MaxProperties(v int) ObjectNode { n.maxProperties = &v; return n }

// PropertyNames returns the declared property names in order.
func (n ObjectNode) PropertyNames() []string {
	out := make([]string, len(n.properties))
	for i, p := range n.properties {
		out[i] = p.name
	}
	return out
}

// Lookup returns the schema declared for a property.
func (n ObjectNode) Lookup(name string) (Node, bool) {
	for _, p := range n.properties {
		if p.name == name {
			return p.node, true
		}
	}
	return nil, false
}

// RequiredNames returns the required set in insertion order.
func (n ObjectNode) RequiredNames() []string {
	out := make([]string, len(n.required))
	copy(out, n.required)
	return out
}

func (n ObjectNode) Document() *Document {
	doc := NewDocument().Set(keyType, n.typeTag(typeObject))
	props := NewDocument()
	for _, p := range n.properties {
		props.Set(p.name, p.node.Document())
	}
	doc.Set(keyProperties, props)
	if len(n.required) > 0 {
		doc.Set(keyRequired, n.RequiredNames())
	}
	if n.additionalProperties != nil {
		doc.Set(keyAdditionalProperties, *n.additionalProperties)
	}
	setInt(doc, keyMinProperties, n.minProperties)
	setInt(doc, keyMaxProperties, n.maxProperties)
	n.write(doc)
	return doc
}

// CompoundNode composes other schemas. It declares no type of its own, so Nullable has no
// effect on its serialized form.
type CompoundNode struct {
	meta
	anyOf []Node
	oneOf []Node
	allOf []Node
	not   Node
}

// Compound returns an empty composition.
func Compound() CompoundNode { return CompoundNode{} }

func (CompoundNode) Kind() Kind { return KindCompound }
func (CompoundNode) node()      {}

// AnyOf requires at least one of nodes to match.
func (n CompoundNode) AnyOf(nodes ...Node) CompoundNode { n.anyOf = cloneNodes(nodes); return n }

// OneOf requires exactly one of nodes to match.
func (n CompoundNode) OneOf(nodes ...Node) CompoundNode { n.oneOf = cloneNodes(nodes); return n }

// AllOf requires every one of nodes to match.
func (n CompoundNode) AllOf(nodes ...Node) CompoundNode { n.allOf = cloneNodes(nodes); return n }

// Not requires node not to match.
func (n CompoundNode) Not(node Node) CompoundNode { n.not = node; return n }

func (n CompoundNode) Document() *Document {
	doc := NewDocument()
	if n.anyOf != nil {
		doc.Set(keyAnyOf, documents(n.anyOf))
	}
	if n.oneOf != nil {
		doc.Set(keyOneOf, documents(n.oneOf))
	}
	if n.allOf != nil {
		doc.Set(keyAllOf, documents(n.allOf))
	}
	if n.not != nil {
		doc.Set(keyNot, n.not.Document())
	}
	n.write(doc)
	return doc
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

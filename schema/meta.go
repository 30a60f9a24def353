package schema

// Metadata setters. Every variant carries the same set; each returns an updated copy.

// Nullable widens the declared type with "null".
func (n StringNode) Nullable() StringNode { n.nullable = true; return n }

// Title sets the "title" annotation.
func (n StringNode) Title(title string) StringNode { n.title = &title; return n }

// Description sets the "description" annotation.
func (n StringNode) Description(description string) StringNode { n.description = &description; return n }

// Default sets the "default" annotation.
func (n StringNode) Default(v any) StringNode { n.def, n.hasDefault = v, true; return n }

// Examples sets the "examples" annotation.
func (n StringNode) Examples(examples ...any) StringNode { n.examples = append([]any{}, examples...); return n }

// Comment sets the "$comment" annotation.
func (n StringNode) Comment(comment string) StringNode { n.comment = &comment; return n }

// Custom sets an arbitrary keyword. It is written after every structural keyword and wins
// over one of the same name.
func (n StringNode) Custom(key string, v any) StringNode { n.meta = n.withCustom(key, v); return n }

// Nullable widens the declared type with "null".
func (n NumberNode) Nullable() NumberNode { n.nullable = true; return n }

// Title sets the "title" annotation.
func (n NumberNode) Title(title string) NumberNode { n.title = &title; return n }

// Description sets the "description" annotation.
func (n NumberNode) Description(description string) NumberNode { n.description = &description; return n }

// Default sets the "default" annotation.
func (n NumberNode) Default(v any) NumberNode { n.def, n.hasDefault = v, true; return n }

// Examples sets the "examples" annotation.
func (n NumberNode) Examples(examples ...any) NumberNode { n.examples = append([]any{}, examples...); return n }

// Comment sets the "$comment" annotation.
func (n NumberNode) Comment(comment string) NumberNode { n.comment = &comment; return n }

// Custom sets an arbitrary keyword. It is written after every structural keyword and wins
// over one of the same name.
func (n NumberNode) Custom(key string, v any) NumberNode { n.meta = n.withCustom(key, v); return n }

// Nullable widens the declared type with "null".
func (n BooleanNode) Nullable() BooleanNode { n.nullable = true; return n }

// Title sets the "title" annotation.
func (n BooleanNode) Title(title string) BooleanNode { n.title = &title; return n }

// Description sets the "description" annotation.
func (n BooleanNode) Description(description string) BooleanNode { n.description = &description; return n }

// Default sets the "default" annotation.
func (n BooleanNode) Default(v any) BooleanNode { n.def, n.hasDefault = v, true; return n }

// Examples sets the "examples" annotation.
func (n BooleanNode) Examples(examples ...any) BooleanNode { n.examples = append([]any{}, examples...); return n }

// Comment sets the "$comment" annotation.
func (n BooleanNode) Comment(comment string) BooleanNode { n.comment = &comment; return n }

// Custom sets an arbitrary keyword. It is written after every structural keyword and wins
// over one of the same name.
func (n BooleanNode) Custom(key string, v any) BooleanNode { n.meta = n.withCustom(key, v); return n }

// Nullable widens the declared type with "null".
func (n NullNode) Nullable() NullNode { n.nullable = true; return n }

// Title sets the "title" annotation.
func (n NullNode) Title(title string) NullNode { n.title = &title; return n }

// Description sets the "description" annotation.
func (n NullNode) Description(description string) NullNode { n.description = &description; return n }

// Default sets the "default" annotation.
func (n NullNode) Default(v any) NullNode { n.def, n.hasDefault = v, true; return n }

// Examples sets the "examples" annotation.
func (n NullNode) Examples(examples ...any) NullNode { n.examples = append([]any{}, examples...); return n }

// Comment sets the "$comment" annotation.
func (n NullNode) Comment(comment string) NullNode { n.comment = &comment; return n }

// Custom sets an arbitrary keyword. It is written after every structural keyword and wins
// over one of the same name.
func (n NullNode) Custom(key string, v any) NullNode { n.meta = n.withCustom(key, v); return n }

// Nullable widens the declared type with "null".
func (n ArrayNode) Nullable() ArrayNode { n.nullable = true; return n }

// Title sets the "title" annotation.
func (n ArrayNode) Title(title string) ArrayNode { n.title = &title; return n }

// Description sets the "description" annotation.
func (n ArrayNode) Description(description string) ArrayNode { n.description = &description; return n }

// Default sets the "default" annotation.
func (n ArrayNode) Default(v any) ArrayNode { n.def, n.hasDefault = v, true; return n }

// Examples sets the "examples" annotation.
func (n ArrayNode) Examples(examples ...any) ArrayNode { n.examples = append([]any{}, examples...); return n }

// Comment sets the "$comment" annotation.
func (n ArrayNode) Comment(comment string) ArrayNode { n.comment = &comment; return n }

// Custom sets an arbitrary keyword. It is written after every structural keyword and wins
// over one of the same name.
func (n ArrayNode) Custom(key string, v any) ArrayNode { n.meta = n.withCustom(key, v); return n }

// Nullable widens the declared type with "null".
func (n ObjectNode) Nullable() ObjectNode { n.nullable = true; return n }

// Title sets the "title" annotation.
func (n ObjectNode) Title(title string) ObjectNode { n.title = &title; return n }

// Description sets the "description" annotation.
func (n ObjectNode) Description(description string) ObjectNode { n.description = &description; return n }

// Default sets the "default" annotation.
func (n ObjectNode) Default(v any) ObjectNode { n.def, n.hasDefault = v, true; return n }

// Examples sets the "examples" annotation.
func (n ObjectNode) Examples(examples ...any) ObjectNode { n.examples = append([]any{}, examples...); return n }

// Comment sets the "$comment" annotation.
func (n ObjectNode) Comment(comment string) ObjectNode { n.comment = &comment; return n }

// Custom sets an arbitrary keyword. It is written after every structural keyword and wins
// over one of the same name.
func (n ObjectNode) Custom(key string, v any) ObjectNode { n.meta = n.withCustom(key, v); return n }

// Nullable widens the declared type with "null".
func (n CompoundNode) Nullable() CompoundNode { n.nullable = true; return n }

// Title sets the "title" annotation.
func (n CompoundNode) Title(title string) CompoundNode { n.title = &title; return n }

// Description sets the "description" annotation.
func (n CompoundNode) Description(description string) CompoundNode { n.description = &description; return n }

// Default sets the "default" annotation.
func (n CompoundNode) Default(v any) CompoundNode { n.def, n.hasDefault = v, true; return n }

// Examples sets the "examples" annotation.
func (n CompoundNode) Examples(examples ...any) CompoundNode { n.examples = append([]any{}, examples...); return n }

// Comment sets the "$comment" annotation.
func (n CompoundNode) Comment(comment string) CompoundNode { n.comment = &comment; return n }

// Custom sets an arbitrary keyword. It is written after every structural keyword and wins
// over one of the same name.
func (n CompoundNode) Custom(key string, v any) CompoundNode { n.meta = n.withCustom(key, v); return n }

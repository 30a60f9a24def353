package schema

// Schema type tags.
const (
	typeObject  = "object"
	typeArray   = "array"
	typeString  = "string"
	typeInteger = "integer"
	typeNumber  = "number"
	typeBoolean = "boolean"
	typeNull    = "null"
)

// Schema keywords.
const (
	keyType                 = "type"
	keyProperties           = "properties"
	keyRequired             = "required"
	keyAdditionalProperties = "additionalProperties"
	keyMinProperties        = "minProperties"
	keyMaxProperties        = "maxProperties"
	keyItems                = "items"
	keyMinItems             = "minItems"
	keyMaxItems             = "maxItems"
	keyUniqueItems          = "uniqueItems"
	keyContains             = "contains"
	keyMinLength            = "minLength"
	keyMaxLength            = "maxLength"
	keyPattern              = "pattern"
	keyFormat               = "format"
	keyEnum                 = "enum"
	keyConst                = "const"
	keyMinimum              = "minimum"
	keyMaximum              = "maximum"
	keyExclusiveMinimum     = "exclusiveMinimum"
	keyExclusiveMaximum     = "exclusiveMaximum"
	keyMultipleOf           = "multipleOf"
	keyAnyOf                = "anyOf"
	keyOneOf                = "oneOf"
	keyAllOf                = "allOf"
	keyNot                  = "not"
	keyTitle                = "title"
	keyDescription          = "description"
	keyDefault              = "default"
	keyExamples             = "examples"
	keyComment              = "$comment"
)

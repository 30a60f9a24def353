package schema

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/grafana/regexp"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultPatternCacheSize is the number of compiled patterns a Validator keeps.
const DefaultPatternCacheSize = 256

// Validator checks data against schema documents.
//
// A Validator is safe for concurrent use. Its only mutable state is a bounded cache of
// compiled "pattern" expressions; documents are never written.
type Validator struct {
	formats   map[string]FormatFunc
	maxDepth  int
	cacheSize int
	patterns  *lru.Cache[string, *regexp.Regexp]
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithFormat registers or replaces a format check.
func WithFormat(name string, fn FormatFunc) ValidatorOption {
	return func(v *Validator) {
		v.formats[name] = fn
	}
}

// WithoutFormat disables a format check; values claiming that format always pass.
func WithoutFormat(name string) ValidatorOption {
	return func(v *Validator) {
		delete(v.formats, name)
	}
}

// WithMaxDepth bounds how many nested schemas the engine descends into. Zero means unlimited.
func WithMaxDepth(depth int) ValidatorOption {
	return func(v *Validator) {
		v.maxDepth = depth
	}
}

// WithPatternCacheSize sets how many compiled patterns are kept.
func WithPatternCacheSize(size int) ValidatorOption {
	return func(v *Validator) {
		v.cacheSize = size
	}
}

// NewValidator creates a Validator with the built-in formats.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		formats:   DefaultFormats(),
		cacheSize: DefaultPatternCacheSize,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.cacheSize <= 0 {
		v.cacheSize = DefaultPatternCacheSize
	}
	// lru.New only fails for a non-positive size.
	v.patterns, _ = lru.New[string, *regexp.Regexp](v.cacheSize)
	return v
}

var defaultValidator = NewValidator()

// Validate checks data against doc with the default Validator.
func Validate(data any, doc *Document) *Result {
	return defaultValidator.Validate(data, doc)
}

// ValidateNode checks data against the serialized form of n.
func ValidateNode(data any, n Node) *Result {
	return defaultValidator.Validate(data, n.Document())
}

// ValidateJSON decodes payload and checks it against doc with the default Validator.
func ValidateJSON(payload []byte, doc *Document) (*Result, error) {
	return defaultValidator.ValidateJSON(payload, doc)
}

// Validate checks data against doc. Data may hold any mix of Go values produced by a JSON
// decoder, *Document values, string-keyed maps, slices and numeric types.
func (v *Validator) Validate(data any, doc *Document) *Result {
	return v.ValidateAt("", data, doc)
}

// ValidateAt is Validate with a root field path, typically the name of the validated
// attribute. Violation paths are built under it.
func (v *Validator) ValidateAt(path string, data any, doc *Document) *Result {
	var errs ValidationErrors
	v.validate(path, data, doc, 1, &errs)
	return newResult(errs)
}

// ValidateNode checks data against the serialized form of n.
func (v *Validator) ValidateNode(data any, n Node) *Result {
	return v.ValidateAt("", data, n.Document())
}

// ValidateJSON decodes payload and checks it against doc. Invalid JSON returns an error
// wrapping ErrMalformedDocument and no result.
func (v *Validator) ValidateJSON(payload []byte, doc *Document) (*Result, error) {
	return v.ValidateJSONAt("", payload, doc)
}

// ValidateJSONAt is ValidateJSON with a root field path.
func (v *Validator) ValidateJSONAt(path string, payload []byte, doc *Document) (*Result, error) {
	data, err := DecodeData(payload)
	if err != nil {
		return nil, err
	}
	return v.ValidateAt(path, data, doc), nil
}

// DecodeData decodes a JSON payload into plain Go values.
func DecodeData(payload []byte) (any, error) {
	var data any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return data, nil
}

// validate runs every rule of doc against value. Rule groups run in a fixed order:
// composition, type, string, value, number, array, object.
func (v *Validator) validate(path string, value any, doc *Document, depth int, errs *ValidationErrors) {
	if v.maxDepth > 0 && depth > v.maxDepth {
		errs.add(path, fmt.Sprintf("exceeds the maximum schema depth of %d", v.maxDepth))
		return
	}

	v.validateCompound(path, value, doc, depth, errs)

	types, hasType := declaredTypes(doc)
	if hasType && !matchesAnyType(types, value) {
		errs.add(path, "must be of type "+strings.Join(types, " or "))
	}

	if s, ok := value.(string); ok && declares(types, typeString) {
		v.validateString(path, s, doc, errs)
	}
	// A nullable schema accepts null before enum and const are consulted.
	if value != nil || !declares(types, typeNull) {
		validateValue(path, value, doc, errs)
	}
	if n, ok := toNumber(value); ok && (declares(types, typeNumber) || declares(types, typeInteger)) {
		validateNumber(path, n, doc, errs)
	}
	if list, ok := toList(value); ok && declares(types, typeArray) {
		v.validateArray(path, list, doc, depth, errs)
	}
	if obj, ok := toObject(value); ok && declares(types, typeObject) {
		v.validateObject(path, obj, doc, depth, errs)
	}
}

// validateSchema applies a sub-schema, which is either a document or a boolean.
func (v *Validator) validateSchema(path string, value any, sub any, depth int, errs *ValidationErrors) {
	if b, ok := sub.(bool); ok {
		if !b {
			errs.add(path, "is not allowed")
		}
		return
	}
	doc, ok := toDocument(sub)
	if !ok {
		return
	}
	v.validate(path, value, doc, depth, errs)
}

// matches reports whether value passes sub. The branch's own violations are discarded.
func (v *Validator) matches(path string, value any, sub any, depth int) bool {
	var branch ValidationErrors
	v.validateSchema(path, value, sub, depth, &branch)
	return len(branch) == 0
}

func (v *Validator) validateCompound(path string, value any, doc *Document, depth int, errs *ValidationErrors) {
	if raw, ok := doc.Get(keyAnyOf); ok {
		if branches, ok := toList(raw); ok {
			matched := false
			for _, sub := range branches {
				if v.matches(path, value, sub, depth+1) {
					matched = true
					break
				}
			}
			if !matched {
				errs.add(path, "must match at least one of the defined schemas")
			}
		}
	}

	if raw, ok := doc.Get(keyAllOf); ok {
		if branches, ok := toList(raw); ok {
			for _, sub := range branches {
				if !v.matches(path, value, sub, depth+1) {
					errs.add(path, "must match all of the defined schemas")
					break
				}
			}
		}
	}

	if raw, ok := doc.Get(keyOneOf); ok {
		if branches, ok := toList(raw); ok {
			count := 0
			for _, sub := range branches {
				if v.matches(path, value, sub, depth+1) {
					count++
				}
			}
			if count != 1 {
				errs.add(path, "must match exactly one of the defined schemas")
			}
		}
	}

	if sub, ok := doc.Get(keyNot); ok {
		if v.matches(path, value, sub, depth+1) {
			errs.add(path, "must not match the defined schema")
		}
	}
}

// declaredTypes reads the "type" keyword as a list of tags.
func declaredTypes(doc *Document) ([]string, bool) {
	raw, ok := doc.Get(keyType)
	if !ok {
		return nil, false
	}
	if s, ok := raw.(string); ok {
		return []string{s}, true
	}
	if tags, ok := toStrings(raw); ok && len(tags) > 0 {
		return tags, true
	}
	return nil, false
}

func declares(types []string, tag string) bool {
	return containsString(types, tag)
}

func matchesAnyType(types []string, value any) bool {
	for _, tag := range types {
		if matchesType(tag, value) {
			return true
		}
	}
	return false
}

func matchesType(tag string, value any) bool {
	switch tag {
	case typeString:
		_, ok := value.(string)
		return ok
	case typeNumber:
		_, ok := toNumber(value)
		return ok
	case typeInteger:
		return isInteger(value)
	case typeBoolean:
		_, ok := value.(bool)
		return ok
	case typeNull:
		return value == nil
	case typeObject:
		_, ok := toObject(value)
		return ok
	case typeArray:
		_, ok := toList(value)
		return ok
	default:
		return true
	}
}

func (v *Validator) validateString(path, s string, doc *Document, errs *ValidationErrors) {
	length := utf8.RuneCountInString(s)
	if raw, ok := doc.Get(keyMinLength); ok {
		if n, ok := toInt(raw); ok && length < n {
			errs.add(path, fmt.Sprintf("must be at least %d characters", n))
		}
	}
	if raw, ok := doc.Get(keyMaxLength); ok {
		if n, ok := toInt(raw); ok && length > n {
			errs.add(path, fmt.Sprintf("may not be greater than %d characters", n))
		}
	}
	if raw, ok := doc.Get(keyPattern); ok {
		if pattern, ok := raw.(string); ok {
			re := v.compile(pattern)
			if re == nil || !re.MatchString(s) {
				errs.add(path, "format is invalid")
			}
		}
	}
	if raw, ok := doc.Get(keyFormat); ok {
		if name, ok := raw.(string); ok {
			if check := v.formats[name]; check != nil && !check(s) {
				errs.add(path, "must be a valid "+name)
			}
		}
	}
}

// compile returns the cached expression for pattern, or nil when it does not compile.
func (v *Validator) compile(pattern string) *regexp.Regexp {
	if re, ok := v.patterns.Get(pattern); ok {
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	v.patterns.Add(pattern, re)
	return re
}

func validateValue(path string, value any, doc *Document, errs *ValidationErrors) {
	if raw, ok := doc.Get(keyEnum); ok {
		if options, ok := toList(raw); ok {
			found := false
			for _, option := range options {
				if equalValues(option, value) {
					found = true
					break
				}
			}
			if !found {
				errs.add(path, "must be one of: "+formatList(options))
			}
		}
	}
	if want, ok := doc.Get(keyConst); ok && !equalValues(want, value) {
		errs.add(path, "must be equal to "+formatValue(want))
	}
}

func validateNumber(path string, n float64, doc *Document, errs *ValidationErrors) {
	if bound, ok := numberKeyword(doc, keyMinimum); ok && n < bound {
		errs.add(path, "must be at least "+formatNumber(bound))
	}
	if bound, ok := numberKeyword(doc, keyMaximum); ok && n > bound {
		errs.add(path, "may not be greater than "+formatNumber(bound))
	}
	if bound, ok := numberKeyword(doc, keyExclusiveMinimum); ok && n <= bound {
		errs.add(path, "must be greater than "+formatNumber(bound))
	}
	if bound, ok := numberKeyword(doc, keyExclusiveMaximum); ok && n >= bound {
		errs.add(path, "must be less than "+formatNumber(bound))
	}
	// Exact remainder test: 0.3 is not a multiple of 0.1 in binary floating point.
	if divisor, ok := numberKeyword(doc, keyMultipleOf); ok && divisor != 0 && math.Mod(n, divisor) != 0 {
		errs.add(path, "must be a multiple of "+formatNumber(divisor))
	}
}

func numberKeyword(doc *Document, key string) (float64, bool) {
	raw, ok := doc.Get(key)
	if !ok {
		return 0, false
	}
	return toNumber(raw)
}

func (v *Validator) validateArray(path string, list []any, doc *Document, depth int, errs *ValidationErrors) {
	if raw, ok := doc.Get(keyMinItems); ok {
		if n, ok := toInt(raw); ok && len(list) < n {
			errs.add(path, fmt.Sprintf("must have at least %d items", n))
		}
	}
	if raw, ok := doc.Get(keyMaxItems); ok {
		if n, ok := toInt(raw); ok && len(list) > n {
			errs.add(path, fmt.Sprintf("may not have more than %d items", n))
		}
	}
	if raw, ok := doc.Get(keyUniqueItems); ok && raw == true && !uniqueValues(list) {
		errs.add(path, "must have unique items")
	}
	if sub, ok := doc.Get(keyContains); ok {
		found := false
		for i, item := range list {
			if v.matches(indexPath(path, i), item, sub, depth+1) {
				found = true
				break
			}
		}
		if !found {
			errs.add(path, "must contain at least one item matching the defined schema")
		}
	}

	items, ok := doc.Get(keyItems)
	if !ok {
		return
	}
	if tuple, ok := items.([]any); ok {
		for i, sub := range tuple {
			if i >= len(list) {
				break
			}
			v.validateSchema(indexPath(path, i), list[i], sub, depth+1, errs)
		}
		return
	}
	for i, item := range list {
		v.validateSchema(indexPath(path, i), item, items, depth+1, errs)
	}
}

func uniqueValues(list []any) bool {
	for i := range list {
		for j := i + 1; j < len(list); j++ {
			if equalValues(list[i], list[j]) {
				return false
			}
		}
	}
	return true
}

func (v *Validator) validateObject(path string, obj object, doc *Document, depth int, errs *ValidationErrors) {
	if raw, ok := doc.Get(keyRequired); ok {
		if names, ok := toStrings(raw); ok {
			for _, name := range names {
				if _, exists := obj.get(name); !exists {
					errs.add(joinPath(path, name), "is required")
				}
			}
		}
	}
	if raw, ok := doc.Get(keyMinProperties); ok {
		if n, ok := toInt(raw); ok && len(obj.keys) < n {
			errs.add(path, fmt.Sprintf("must have at least %d properties", n))
		}
	}
	if raw, ok := doc.Get(keyMaxProperties); ok {
		if n, ok := toInt(raw); ok && len(obj.keys) > n {
			errs.add(path, fmt.Sprintf("may not have more than %d properties", n))
		}
	}

	var props *Document
	if raw, ok := doc.Get(keyProperties); ok {
		props, _ = toDocument(raw)
	}
	for _, name := range props.Keys() {
		value, exists := obj.get(name)
		if !exists {
			continue
		}
		sub, _ := props.Get(name)
		v.validateSchema(joinPath(path, name), value, sub, depth+1, errs)
	}

	additional, ok := doc.Get(keyAdditionalProperties)
	if !ok || additional == true {
		return
	}
	var extra []string
	for _, key := range obj.keys {
		if !props.Has(key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		value, _ := obj.get(key)
		v.validateSchema(joinPath(path, key), value, additional, depth+1, errs)
	}
}

package schema

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// toNumber converts any Go numeric value (or json.Number) to float64.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func isInteger(v any) bool {
	n, ok := toNumber(v)
	if !ok {
		return false
	}
	return !math.IsInf(n, 0) && n == math.Trunc(n)
}

// toInt reads a non-fractional numeric keyword value.
func toInt(v any) (int, bool) {
	n, ok := toNumber(v)
	if !ok || n != math.Trunc(n) {
		return 0, false
	}
	switch {
	case n >= math.MaxInt:
		return math.MaxInt, true
	case n <= math.MinInt:
		return math.MinInt, true
	}
	return int(n), true
}

// cloneValue copies the containers of a JSON value so a document never shares them with the
// node that produced it.
func cloneValue(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = cloneValue(item)
		}
		return out
	case *Document:
		if x == nil {
			return x
		}
		out := NewDocument()
		for _, k := range x.keys {
			out.Set(k, cloneValue(x.values[k]))
		}
		return out
	}
	return v
}

// toList returns the elements of any slice or array value.
func toList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// toStrings returns the elements of a list of strings, e.g. a "required" keyword.
func toStrings(v any) ([]string, bool) {
	if names, ok := v.([]string); ok {
		return names, true
	}
	list, ok := toList(v)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// object is a read view over the data types the engine accepts as JSON objects.
type object struct {
	keys   []string
	values map[string]any
}

func (o object) get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// toObject accepts *Document, map[string]any and any other map keyed by strings. Map keys are
// sorted so that iteration is deterministic.
func toObject(v any) (object, bool) {
	switch x := v.(type) {
	case *Document:
		if x == nil {
			return object{}, false
		}
		return object{keys: x.Keys(), values: x.values}, true
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return object{keys: keys, values: x}, true
	}
	if v == nil {
		return object{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return object{}, false
	}
	values := make(map[string]any, rv.Len())
	keys := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key().String()
		keys = append(keys, k)
		values[k] = iter.Value().Interface()
	}
	sort.Strings(keys)
	return object{keys: keys, values: values}, true
}

// toDocument returns v as a schema document.
func toDocument(v any) (*Document, bool) {
	switch x := v.(type) {
	case *Document:
		return x, x != nil
	case map[string]any:
		return DocumentFromMap(x), true
	}
	return nil, false
}

// equalValues compares two JSON values: numbers by value, objects by members, arrays in order.
func equalValues(a, b any) bool {
	if an, ok := toNumber(a); ok {
		bn, ok := toNumber(b)
		return ok && an == bn
	}
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	if ao, ok := toObject(a); ok {
		bo, ok := toObject(b)
		if !ok || len(ao.keys) != len(bo.keys) {
			return false
		}
		for _, k := range ao.keys {
			bv, ok := bo.get(k)
			if !ok || !equalValues(ao.values[k], bv) {
				return false
			}
		}
		return true
	}
	if al, ok := toList(a); ok {
		bl, ok := toList(b)
		if !ok || len(al) != len(bl) {
			return false
		}
		for i := range al {
			if !equalValues(al[i], bl[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// typeName names the JSON type of a data value.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return typeNull
	case string:
		return typeString
	case bool:
		return typeBoolean
	}
	if _, ok := toNumber(v); ok {
		if isInteger(v) {
			return typeInteger
		}
		return typeNumber
	}
	if _, ok := toObject(v); ok {
		return typeObject
	}
	if _, ok := toList(v); ok {
		return typeArray
	}
	return "unknown"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatValue renders a keyword value for an error message.
func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if n, ok := toNumber(v); ok {
		return formatNumber(n)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "?"
	}
	return string(data)
}

func formatList(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatValue(v)
	}
	return strings.Join(parts, ", ")
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}

func indexPath(base string, i int) string {
	return base + "[" + strconv.Itoa(i) + "]"
}

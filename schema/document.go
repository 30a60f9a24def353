package schema

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-json"
)

// Document is the serialized form of a schema: an ordered mapping of keyword to JSON value.
//
// Nested schemas are stored as *Document and JSON arrays as []any. Documents marshal in key
// order, so the same document always produces the same bytes.
type Document struct {
	keys   []string
	values map[string]any
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{values: make(map[string]any)}
}

// DocumentFromMap converts a plain map into a document. Keys are sorted, since map order is
// not defined; nested maps become documents as well.
func DocumentFromMap(m map[string]any) *Document {
	doc := NewDocument()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		doc.Set(k, fromPlain(m[k]))
	}
	return doc
}

func fromPlain(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return DocumentFromMap(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = fromPlain(item)
		}
		return out
	default:
		return v
	}
}

// ParseDocument decodes JSON text into a document, keeping the source key order.
func ParseDocument(data []byte) (*Document, error) {
	doc := NewDocument()
	if err := doc.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return doc, nil
}

// Set writes a key. An existing key keeps its position and takes the new value.
func (d *Document) Set(key string, value any) *Document {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
	return d
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.values[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Delete removes key, if present.
func (d *Document) Delete(key string) {
	if d == nil {
		return
	}
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of keys.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Map converts the document into plain maps and slices, recursively.
func (d *Document) Map() map[string]any {
	if d == nil {
		return nil
	}
	out := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		out[k] = toPlain(d.values[k])
	}
	return out
}

func toPlain(v any) any {
	switch x := v.(type) {
	case *Document:
		return x.Map()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = toPlain(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON writes the document in key order.
func (d *Document) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(d.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// JSON returns the document as indented JSON text.
func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalJSON decodes a JSON object, keeping the source key order. Errors wrap
// ErrMalformedDocument.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected a JSON object", ErrMalformedDocument)
	}
	parsed, err := decodeObject(dec)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after document", ErrMalformedDocument)
	}
	*d = *parsed
	return nil
}

// decodeObject reads members until the closing brace; the opening brace is already consumed.
func decodeObject(dec *json.Decoder) (*Document, error) {
	doc := NewDocument()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		doc.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		return decodeObject(dec)
	case '[':
		list := []any{}
		for dec.More() {
			item, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, item)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

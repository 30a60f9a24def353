package schema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustDocument(t testing.TB, text string) *Document {
	t.Helper()
	doc, err := ParseDocument([]byte(text))
	if err != nil {
		t.Fatalf("ParseDocument(%s) error = %v", text, err)
	}
	return doc
}

func TestParseDocument_KeepsOrder(t *testing.T) {
	text := `{"b":1,"a":{"d":true,"c":null},"e":[1,"x",{"z":1,"y":2}]}`
	doc := mustDocument(t, text)

	if diff := cmp.Diff([]string{"b", "a", "e"}, doc.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	nested, ok := doc.Get("a")
	if !ok {
		t.Fatal("Get(a) not found")
	}
	if sub, ok := nested.(*Document); !ok || !cmp.Equal([]string{"d", "c"}, sub.Keys()) {
		t.Errorf("Get(a) = %#v, want ordered document", nested)
	}

	data, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(data) != text {
		t.Errorf("MarshalJSON() = %s, want %s", data, text)
	}
}

func TestParseDocument_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"truncated", `{"a":`},
		{"not an object", `[1,2]`},
		{"scalar", `"schema"`},
		{"trailing data", `{"a":1} {"b":2}`},
		{"empty", ``},
		{"bad key", `{1:2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.text))
			if !errors.Is(err, ErrMalformedDocument) {
				t.Errorf("ParseDocument() error = %v, want ErrMalformedDocument", err)
			}
		})
	}
}

func TestDocument_SetGetDelete(t *testing.T) {
	doc := NewDocument().Set("a", 1).Set("b", 2).Set("c", 3)
	doc.Set("a", 10)
	doc.Delete("b")
	doc.Delete("missing")

	if diff := cmp.Diff([]string{"a", "c"}, doc.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if v, _ := doc.Get("a"); v != 10 {
		t.Errorf("Get(a) = %v, want 10", v)
	}
	if doc.Has("b") {
		t.Error("Has(b) = true after Delete")
	}
	if doc.Len() != 2 {
		t.Errorf("Len() = %d, want 2", doc.Len())
	}

	var nilDoc *Document
	if nilDoc.Has("a") || nilDoc.Len() != 0 || nilDoc.Keys() != nil {
		t.Error("nil document should behave as empty")
	}
}

func TestDocumentFromMap(t *testing.T) {
	doc := DocumentFromMap(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"b": map[string]any{"type": "string"},
			"a": map[string]any{"type": "number"},
		},
	})

	data, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	want := `{"properties":{"a":{"type":"number"},"b":{"type":"string"}},"type":"object"}`
	if string(data) != want {
		t.Errorf("MarshalJSON() = %s, want %s", data, want)
	}

	m := doc.Map()
	props, ok := m["properties"].(map[string]any)
	if !ok {
		t.Fatalf("Map()[properties] = %T, want map", m["properties"])
	}
	if _, ok := props["a"].(map[string]any); !ok {
		t.Errorf("Map() nested = %T, want map", props["a"])
	}
}

func TestDocument_JSON(t *testing.T) {
	doc := NewDocument().Set("type", "string").Set("minLength", 1)
	data, err := doc.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	want := "{\n  \"type\": \"string\",\n  \"minLength\": 1\n}"
	if string(data) != want {
		t.Errorf("JSON() =\n%s\nwant\n%s", data, want)
	}
}

func TestParseDocument_ValueTypes(t *testing.T) {
	doc := mustDocument(t, `{"z":1.5,"a":{"y":[true,null,"s"],"b":2}}`)

	if v, _ := doc.Get("z"); v != 1.5 {
		t.Errorf("Get(z) = %#v, want float64 1.5", v)
	}
	a, _ := doc.Get("a")
	nested, ok := a.(*Document)
	if !ok {
		t.Fatalf("Get(a) = %T, want *Document", a)
	}
	if diff := cmp.Diff([]string{"y", "b"}, nested.Keys()); diff != "" {
		t.Errorf("nested Keys() mismatch (-want +got):\n%s", diff)
	}
	y, _ := nested.Get("y")
	if diff := cmp.Diff([]any{true, nil, "s"}, y); diff != "" {
		t.Errorf("Get(y) mismatch (-want +got):\n%s", diff)
	}
	if v, _ := nested.Get("b"); v != float64(2) {
		t.Errorf("Get(b) = %#v, want float64 2", v)
	}
}

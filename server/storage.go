package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/schemaforge/middleware"
	"github.com/felixgeelhaar/schemaforge/schema"
)

// Extensions recognised by LoadDir.
var schemaExtensions = map[string]bool{".json": true, ".yaml": true, ".yml": true}

// SchemaPath returns the file SaveDocument writes for name.
func SchemaPath(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// LoadDir registers every schema file in dir. The schema name is the file name without its
// extension. Key order in the files is kept.
func (s *Server) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("load schemas: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || !schemaExtensions[ext] {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, err := ReadDocument(path)
		if err != nil {
			return loaded, err
		}
		if err := s.RegisterDocument(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())), doc); err != nil {
			return loaded, err
		}
		loaded++
	}

	s.logger.Info("schemas loaded", middleware.F("dir", dir), middleware.F("count", loaded))
	return loaded, nil
}

// FindDocument reads the schema called name from dir, trying .json, .yaml and .yml in turn.
func FindDocument(dir, name string) (*schema.Document, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return ReadDocument(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
}

// ReadDocument reads a JSON or YAML schema file.
func ReadDocument(path string) (*schema.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	var doc *schema.Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = parseYAML(data)
	default:
		doc, err = schema.ParseDocument(data)
	}
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	return doc, nil
}

// SaveDocument writes doc as indented JSON to dir, creating dir if needed. An existing
// schema file is never overwritten.
func SaveDocument(dir, name string, doc *schema.Document) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	data, err := doc.JSON()
	if err != nil {
		return "", fmt.Errorf("encode schema %s: %w", name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage: %w", err)
	}

	path := SchemaPath(dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("%w: %s", ErrSchemaExists, path)
	}
	if err != nil {
		return "", fmt.Errorf("save schema: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return "", fmt.Errorf("save schema: %w", err)
	}
	return path, nil
}

func parseYAML(data []byte) (*schema.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrMalformedDocument, err)
	}
	v, err := yamlValue(&root)
	if err != nil {
		return nil, err
	}
	doc, ok := v.(*schema.Document)
	if !ok {
		return nil, fmt.Errorf("%w: top level value is not a mapping", schema.ErrMalformedDocument)
	}
	return doc, nil
}

// yamlValue converts a YAML node into document values, keeping mapping order.
func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, fmt.Errorf("%w: empty document", schema.ErrMalformedDocument)
		}
		return yamlValue(n.Content[0])
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.MappingNode:
		doc := schema.NewDocument()
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := n.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", schema.ErrMalformedDocument, n.Content[i].Line, err)
			}
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			doc.Set(key, v)
		}
		return doc, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := yamlValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", schema.ErrMalformedDocument, n.Line, err)
		}
		return v, nil
	}
}

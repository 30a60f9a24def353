package server

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/felixgeelhaar/schemaforge/middleware"
	"github.com/felixgeelhaar/schemaforge/protocol"
	"github.com/felixgeelhaar/schemaforge/schema"
)

// Registry errors.
var (
	ErrSchemaNotFound = errors.New("schema not found")
	ErrSchemaExists   = errors.New("schema already exists")
	ErrInvalidName    = errors.New("invalid schema name")
)

// Info contains server metadata exposed to clients.
type Info struct {
	Name    string
	Version string
}

// Manifest is the ping result.
type Manifest struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocolVersion"`
	Schemas         int    `json:"schemas"`
}

// SchemaInfo describes a registered schema.
type SchemaInfo = protocol.SchemaInfo

// Middleware wraps request handling.
type Middleware = middleware.Middleware

// Option configures a Server.
type Option func(*Server)

// WithMiddleware adds middleware around request dispatch.
func WithMiddleware(m ...Middleware) Option {
	return func(s *Server) {
		s.middleware = append(s.middleware, m...)
	}
}

// WithValidator replaces the validator used by schemas/validate.
func WithValidator(v *schema.Validator) Option {
	return func(s *Server) {
		s.validator = v
	}
}

// WithLogger sets the logger for registry events.
func WithLogger(l middleware.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// Server holds named schema documents and answers requests about them.
type Server struct {
	mu sync.RWMutex

	info       Info
	schemas    map[string]*schema.Document
	validator  *schema.Validator
	logger     middleware.Logger
	middleware []Middleware
}

// New creates a new registry with the given info and options.
func New(info Info, opts ...Option) *Server {
	s := &Server{
		info:    info,
		schemas: make(map[string]*schema.Document),
		logger:  middleware.NopLogger{},
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = schema.NewValidator()
	}

	return s
}

// Info returns the server info.
func (s *Server) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Manifest returns the server manifest.
func (s *Server) Manifest() Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Manifest{
		Name:            s.info.Name,
		Version:         s.info.Version,
		ProtocolVersion: protocol.Version,
		Schemas:         len(s.schemas),
	}
}

// Validator returns the validator used for requests.
func (s *Server) Validator() *schema.Validator {
	return s.validator
}

// Use registers middleware to be executed on every request.
func (s *Server) Use(middleware ...Middleware) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middleware = append(s.middleware, middleware...)
}

// Register stores the document of node under name, replacing any previous schema.
func (s *Server) Register(name string, node schema.Node) error {
	return s.RegisterDocument(name, node.Document())
}

// RegisterDocument stores doc under name, replacing any previous schema.
func (s *Server) RegisterDocument(name string, doc *schema.Document) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if doc == nil {
		return fmt.Errorf("register %s: document is nil", name)
	}

	s.mu.Lock()
	s.schemas[name] = doc
	s.mu.Unlock()

	s.logger.Debug("schema registered", middleware.F("schema", name))
	return nil
}

// RegisterType generates a schema from the Go struct v and stores it under name.
func (s *Server) RegisterType(name string, v any) error {
	node, err := schema.Generate(v)
	if err != nil {
		return fmt.Errorf("register %s from %s: %w", name, reflect.TypeOf(v), err)
	}
	return s.Register(name, node)
}

// Schema returns the document registered under name.
func (s *Server) Schema(name string) (*schema.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.schemas[name]
	return doc, ok
}

// Schemas returns info about all registered schemas, sorted by name.
func (s *Server) Schemas() []SchemaInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]SchemaInfo, 0, len(s.schemas))
	for name, doc := range s.schemas {
		result = append(result, SchemaInfo{
			Name:        name,
			Title:       stringKey(doc, "title"),
			Description: stringKey(doc, "description"),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Names returns the sorted names of the registered schemas.
func (s *Server) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.schemas))
	for name := range s.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove deletes the schema registered under name. It reports whether one existed.
func (s *Server) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.schemas[name]
	delete(s.schemas, name)
	return ok
}

func stringKey(doc *schema.Document, key string) string {
	v, _ := doc.Get(key)
	str, _ := v.(string)
	return str
}

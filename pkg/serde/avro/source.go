package avro

import (
	"context"
	"fmt"
	"sync"
)

// SchemaSource serves Avro schemas by ID and by subject. Implementations
// backed by a real schema-registry service perform network I/O and must
// honor the context; the serializer propagates whatever failure or
// cancellation it returns.
type SchemaSource interface {
	// SchemaByID returns the schema registered under the given ID.
	SchemaByID(ctx context.Context, id int) (string, error)
	// LatestSchema returns the newest schema ID and definition for a subject.
	LatestSchema(ctx context.Context, subject string) (int, string, error)
}

// StaticSource is an in-memory SchemaSource for schemas known ahead of time.
type StaticSource struct {
	mu        sync.RWMutex
	schemas   map[int]string
	bySubject map[string]int
}

// NewStaticSource creates an empty StaticSource.
func NewStaticSource() *StaticSource {
	return &StaticSource{
		schemas:   make(map[int]string),
		bySubject: make(map[string]int),
	}
}

// Register adds a schema under the given subject and ID, replacing any
// earlier registration for either.
func (s *StaticSource) Register(subject string, id int, schema string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[id] = schema
	s.bySubject[subject] = id
}

// SchemaByID returns the schema registered under id.
func (s *StaticSource) SchemaByID(ctx context.Context, id int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schema, ok := s.schemas[id]
	if !ok {
		return "", fmt.Errorf("schema %d not registered", id)
	}
	return schema, nil
}

// LatestSchema returns the schema registered under subject.
func (s *StaticSource) LatestSchema(ctx context.Context, subject string) (int, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySubject[subject]
	if !ok {
		return 0, "", fmt.Errorf("subject %q not registered", subject)
	}
	return id, s.schemas[id], nil
}

var (
	defaultSource     *StaticSource
	defaultSourceOnce sync.Once
)

// DefaultSource returns the process-wide StaticSource used by serializers the
// registry constructs through the "avro" factory. Register schemas on it
// before the first encode/decode resolves the serializer.
func DefaultSource() *StaticSource {
	defaultSourceOnce.Do(func() {
		defaultSource = NewStaticSource()
	})
	return defaultSource
}

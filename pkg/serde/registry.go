// Package serde dispatches encode/decode calls for message keys and values.
// Every call resolves an effective serializer name (type-declared name over
// registry default), routes it to either the stateless codec table or a
// cached async serializer instance, and normalizes decode failures into
// KeyDecodeError / ValueDecodeError.
package serde

import (
	"context"
	"fmt"
	"sync"

	"github.com/azhar9/faust/pkg/codec"
	"github.com/azhar9/faust/pkg/logging"
	"github.com/azhar9/faust/pkg/message"
	"github.com/azhar9/faust/pkg/model"
	"go.uber.org/zap"
)

// Registry resolves serializer names to execution paths. The two configured
// defaults are immutable after construction; the async-serializer cache is
// the only mutable state and is guarded by mu so that exactly one instance
// per name is ever constructed.
type Registry struct {
	keySerializer   codec.Name
	valueSerializer codec.Name

	mu       sync.Mutex
	override map[codec.Name]AsyncSerializer
}

// NewRegistry creates a Registry with the given default key and value
// serializers. An empty keySerializer means untyped keys pass through as raw
// bytes; an empty valueSerializer defaults to json. Configured names are
// validated eagerly: each must be a registered codec or async serializer.
func NewRegistry(keySerializer, valueSerializer codec.Name) (*Registry, error) {
	if valueSerializer == "" {
		valueSerializer = codec.JSON
	}
	for _, name := range []codec.Name{keySerializer, valueSerializer} {
		if name == "" {
			continue
		}
		if _, ok := codec.Get(name); ok {
			continue
		}
		if _, ok := lookupFactory(name); ok {
			continue
		}
		return nil, fmt.Errorf("serde: %q is neither a registered codec nor an async serializer", name)
	}
	return &Registry{
		keySerializer:   keySerializer,
		valueSerializer: valueSerializer,
		override:        make(map[codec.Name]AsyncSerializer),
	}, nil
}

// KeySerializer returns the configured default key serializer name.
func (r *Registry) KeySerializer() codec.Name {
	return r.keySerializer
}

// ValueSerializer returns the configured default value serializer name.
func (r *Registry) ValueSerializer() codec.Name {
	return r.valueSerializer
}

// DecodeKey deserializes a message key into an instance of typ. A nil key or
// nil typ passes the raw key through unchanged: untyped topics carry opaque
// keys. Every failure surfaces as *KeyDecodeError.
func (r *Registry) DecodeKey(ctx context.Context, typ model.Type, key []byte) (any, error) {
	if key == nil {
		return nil, nil
	}
	if typ == nil {
		return key, nil
	}
	name := typ.Options().Serializer
	if name == "" {
		name = r.keySerializer
	}
	obj, err := r.decode(ctx, name, key, true)
	if err != nil {
		return nil, &KeyDecodeError{Cause: err}
	}
	m, err := typ.New(obj)
	if err != nil {
		return nil, &KeyDecodeError{Cause: err}
	}
	return m, nil
}

// DecodeValue deserializes a message value into an instance of typ and wraps
// it in an Event carrying the decoded key and the originating request. A nil
// message value is a tombstone and yields a nil event, not an error. Every
// failure surfaces as *ValueDecodeError.
func (r *Registry) DecodeValue(ctx context.Context, typ model.Type, key any, msg *message.Message, req *message.Request) (*message.Event, error) {
	if msg == nil || msg.Value == nil {
		return nil, nil
	}
	if typ == nil {
		return message.NewEvent(key, msg.Value, msg, req), nil
	}
	name := typ.Options().Serializer
	if name == "" {
		name = r.valueSerializer
	}
	obj, err := r.decode(ctx, name, msg.Value, false)
	if err != nil {
		return nil, &ValueDecodeError{Cause: err}
	}
	v, err := typ.New(obj)
	if err != nil {
		return nil, &ValueDecodeError{Cause: err}
	}
	return message.NewEvent(key, v, msg, req), nil
}

// EncodeKey serializes a message key for the given topic. A model's own
// declared serializer takes precedence over the serializer argument. When a
// name is established but known to neither table, a model falls back to its
// self-encoding. With no name at all the key must already be bytes-like and
// is coerced to its raw representation.
func (r *Registry) EncodeKey(ctx context.Context, topic string, key any, serializer codec.Name) ([]byte, error) {
	m, isModel := key.(model.Model)
	if isModel {
		serializer = m.Options().Serializer
	}
	if serializer != "" {
		if ser, ok := r.resolve(serializer); ok {
			return ser.EncodeKey(ctx, topic, key)
		}
		if isModel {
			return m.Dumps()
		}
		return codec.Dumps(serializer, key)
	}
	if key == nil {
		return nil, nil
	}
	return wantBytes(key)
}

// EncodeValue serializes a message value for the given topic. Resolution
// matches EncodeKey, except that an untyped value with no serializer name is
// passed through as-is and must already be bytes: the registry never picks a
// codec for a value that didn't declare one.
func (r *Registry) EncodeValue(ctx context.Context, topic string, value any, serializer codec.Name) ([]byte, error) {
	m, isModel := value.(model.Model)
	if isModel {
		serializer = m.Options().Serializer
	}
	if serializer != "" {
		if ser, ok := r.resolve(serializer); ok {
			return ser.EncodeValue(ctx, topic, value)
		}
		if isModel {
			return m.Dumps()
		}
		return codec.Dumps(serializer, value)
	}
	if value == nil {
		return nil, nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("serde: untyped value of type %T is not bytes", value)
	}
	return b, nil
}

// decode routes raw bytes to the resolved execution path: a cached async
// serializer when the name maps to one, the stateless codec table otherwise.
func (r *Registry) decode(ctx context.Context, name codec.Name, data []byte, isKey bool) (any, error) {
	if ser, ok := r.resolve(name); ok {
		if isKey {
			return ser.DecodeKey(ctx, data)
		}
		return ser.DecodeValue(ctx, data)
	}
	return codec.Loads(name, data)
}

// resolve returns the async serializer for name, constructing and caching it
// on first use. A false return is control flow, not an error: the caller
// falls back to the codec table. Construction happens inside the critical
// section, so concurrent resolution of the same name still yields a single
// instance.
func (r *Registry) resolve(name codec.Name) (AsyncSerializer, bool) {
	if name == "" {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if ser, ok := r.override[name]; ok {
		return ser, true
	}
	factory, ok := lookupFactory(name)
	if !ok {
		return nil, false
	}
	ser := factory(r)
	r.override[name] = ser
	logging.Debug("Constructed async serializer", zap.String("serializer", string(name)))
	return ser, true
}

// wantBytes coerces an untyped key to its raw byte representation.
func wantBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	}
	return nil, fmt.Errorf("serde: untyped key of type %T is not bytes-like", v)
}

package serde

import (
	"context"
	"sync"

	"github.com/azhar9/faust/pkg/codec"
)

// AsyncSerializer is a stateful serializer that may perform I/O on every
// call, e.g. a schema-registry round trip. Implementations must be safe for
// concurrent use; the registry constructs at most one instance per name and
// shares it across all callers.
type AsyncSerializer interface {
	DecodeKey(ctx context.Context, data []byte) (any, error)
	DecodeValue(ctx context.Context, data []byte) (any, error)
	EncodeKey(ctx context.Context, topic string, key any) ([]byte, error)
	EncodeValue(ctx context.Context, topic string, value any) ([]byte, error)
}

// Factory constructs an AsyncSerializer bound to its owning registry. The
// registry reference lets serializers call back into the default codecs.
// Factories must be cheap and free of external side effects; anything
// expensive (connections, schema fetches) belongs in the serializer's calls.
type Factory func(*Registry) AsyncSerializer

var (
	factoryMu sync.RWMutex
	factories = make(map[codec.Name]Factory)
)

// RegisterSerializer makes an async serializer constructible under the given
// name. It is intended to be called from package init functions (import the
// implementing package for its side effect) and panics on duplicate or nil
// registration, mirroring database/sql driver registration.
func RegisterSerializer(name codec.Name, factory Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if factory == nil {
		panic("serde: RegisterSerializer factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("serde: RegisterSerializer called twice for " + string(name))
	}
	factories[name] = factory
}

func lookupFactory(name codec.Name) (Factory, bool) {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

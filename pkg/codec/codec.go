// Package codec provides the process-wide table of stateless codecs used by
// the serialization registry. A codec is a named, synchronous bytes<->value
// transform; stateful serializers (e.g. schema-registry backed ones) live in
// pkg/serde instead.
package codec

import (
	"fmt"
	"sync"
)

// Name identifies a registered codec. The empty name means "no codec": the
// registry treats such values as raw bytes.
type Name string

// Built-in codec names.
const (
	Raw    Name = "raw"
	JSON   Name = "json"
	Binary Name = "binary"
	CBOR   Name = "cbor"
	Proto  Name = "proto"
	Capnp  Name = "capnp"
)

// Codec converts values to and from their binary representation
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

var (
	mu     sync.RWMutex
	codecs = make(map[Name]Codec)
)

// Register adds a codec under the given name, replacing any existing one.
// Codecs must be safe for concurrent use.
func Register(name Name, c Codec) {
	mu.Lock()
	defer mu.Unlock()
	codecs[name] = c
}

// Get returns the codec registered under name.
func Get(name Name) (Codec, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := codecs[name]
	return c, ok
}

// Dumps serializes v using the named codec. The empty name means raw
// passthrough; unknown names are an error.
func Dumps(name Name, v any) ([]byte, error) {
	if name == "" {
		name = Raw
	}
	c, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
	return c.Marshal(v)
}

// Loads deserializes data using the named codec. The empty name means raw
// passthrough; unknown names are an error.
func Loads(name Name, data []byte) (any, error) {
	if name == "" {
		name = Raw
	}
	c, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
	var v any
	if err := c.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func init() {
	Register(Raw, &RawCodec{})
	Register(JSON, &JSONCodec{})
	Register(Binary, &BinaryCodec{})
	Register(CBOR, NewCBOR())
	Register(Proto, &ProtoCodec{})
	Register(Capnp, &CapnpCodec{})
}

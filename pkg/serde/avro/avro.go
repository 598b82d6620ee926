// Package avro implements the schema-registry backed async serializer. It is
// registered with pkg/serde under the name "avro"; import it for its side
// effect:
//
//	import _ "github.com/azhar9/faust/pkg/serde/avro"
//
// Payloads use the Confluent wire format: a zero magic byte, the schema ID as
// a big-endian uint32, then the Avro binary encoding.
package avro

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/azhar9/faust/pkg/codec"
	"github.com/azhar9/faust/pkg/common"
	"github.com/azhar9/faust/pkg/logging"
	"github.com/azhar9/faust/pkg/model"
	"github.com/azhar9/faust/pkg/serde"
	"github.com/linkedin/goavro/v2"
	"go.uber.org/zap"
)

// Name is the reserved serializer name this package registers under.
const Name codec.Name = "avro"

const (
	magicByte   = 0x00
	frameHeader = 5 // magic byte + big-endian uint32 schema ID
)

func init() {
	serde.RegisterSerializer(Name, func(r *serde.Registry) serde.AsyncSerializer {
		return NewSerializer(r, DefaultSource())
	})
}

// Serializer encodes and decodes Avro payloads against schemas served by a
// SchemaSource. Compiled goavro codecs are cached per schema ID for the
// serializer's lifetime.
type Serializer struct {
	registry *serde.Registry
	source   SchemaSource
	pool     *common.BufferPool

	mu     sync.Mutex
	codecs map[int]*goavro.Codec
}

// NewSerializer creates a Serializer owned by the given registry.
func NewSerializer(r *serde.Registry, source SchemaSource) *Serializer {
	return &Serializer{
		registry: r,
		source:   source,
		pool:     common.NewBufferPool(512),
		codecs:   make(map[int]*goavro.Codec),
	}
}

// DecodeKey decodes a wire-format Avro key into its native representation.
func (s *Serializer) DecodeKey(ctx context.Context, data []byte) (any, error) {
	return s.decode(ctx, data)
}

// DecodeValue decodes a wire-format Avro value into its native representation.
func (s *Serializer) DecodeValue(ctx context.Context, data []byte) (any, error) {
	return s.decode(ctx, data)
}

// EncodeKey encodes a key under the latest schema of the topic's key subject.
func (s *Serializer) EncodeKey(ctx context.Context, topic string, key any) ([]byte, error) {
	return s.encode(ctx, topic+"-key", key, true)
}

// EncodeValue encodes a value under the latest schema of the topic's value subject.
func (s *Serializer) EncodeValue(ctx context.Context, topic string, value any) ([]byte, error) {
	return s.encode(ctx, topic+"-value", value, false)
}

func (s *Serializer) decode(ctx context.Context, data []byte) (any, error) {
	id, err := parseFrame(data)
	if err != nil {
		return nil, err
	}
	c, err := s.codecFor(ctx, id)
	if err != nil {
		return nil, err
	}
	native, _, err := c.NativeFromBinary(data[frameHeader:])
	if err != nil {
		return nil, fmt.Errorf("avro: schema %d: %w", id, err)
	}
	return native, nil
}

func (s *Serializer) encode(ctx context.Context, subject string, v any, isKey bool) ([]byte, error) {
	id, schema, err := s.source.LatestSchema(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("avro: subject %q: %w", subject, err)
	}
	c, err := s.compile(id, schema)
	if err != nil {
		return nil, err
	}

	textual, err := s.textual(v, isKey)
	if err != nil {
		return nil, err
	}
	native, _, err := c.NativeFromTextual(textual)
	if err != nil {
		return nil, fmt.Errorf("avro: subject %q: %w", subject, err)
	}
	body, err := c.BinaryFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("avro: subject %q: %w", subject, err)
	}

	buf := s.pool.GetSize(frameHeader + len(body))
	buf[0] = magicByte
	binary.BigEndian.PutUint32(buf[1:frameHeader], uint32(id))
	copy(buf[frameHeader:], body)
	return buf, nil
}

// textual renders v as JSON for goavro's textual decoder. Models use their
// own canonical encoding; anything else goes through the owning registry's
// default codec, which is why the serializer keeps the registry reference.
func (s *Serializer) textual(v any, isKey bool) ([]byte, error) {
	if m, ok := v.(model.Model); ok {
		return m.Dumps()
	}
	name := s.registry.ValueSerializer()
	if isKey && s.registry.KeySerializer() != "" {
		name = s.registry.KeySerializer()
	}
	if name == Name {
		name = codec.JSON
	}
	return codec.Dumps(name, v)
}

func (s *Serializer) codecFor(ctx context.Context, id int) (*goavro.Codec, error) {
	s.mu.Lock()
	c, ok := s.codecs[id]
	s.mu.Unlock()
	if ok {
		return c, nil
	}
	schema, err := s.source.SchemaByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("avro: schema %d: %w", id, err)
	}
	return s.compile(id, schema)
}

func (s *Serializer) compile(id int, schema string) (*goavro.Codec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.codecs[id]; ok {
		return c, nil
	}
	c, err := goavro.NewCodec(schema)
	if err != nil {
		return nil, fmt.Errorf("avro: schema %d: %w", id, err)
	}
	s.codecs[id] = c
	logging.Debug("Compiled avro schema", zap.Int("schemaID", id))
	return c, nil
}

func parseFrame(data []byte) (int, error) {
	if len(data) < frameHeader {
		return 0, fmt.Errorf("avro: payload too short for wire format header")
	}
	if data[0] != magicByte {
		return 0, fmt.Errorf("avro: bad magic byte 0x%02x", data[0])
	}
	return int(binary.BigEndian.Uint32(data[1:frameHeader])), nil
}

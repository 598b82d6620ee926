package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// ProtoCodec encodes protobuf messages with deterministic marshaling.
type ProtoCodec struct{}

func (*ProtoCodec) Marshal(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("proto codec: value of type %T does not implement proto.Message", v)
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(msg)
}

func (*ProtoCodec) Unmarshal(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("proto codec: target of type %T does not implement proto.Message", v)
	}
	return proto.Unmarshal(data, msg)
}

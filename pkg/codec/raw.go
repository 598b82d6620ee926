package codec

import (
	"encoding/base64"
	"fmt"
)

// RawCodec passes bytes through unchanged. Marshal accepts []byte or string;
// Unmarshal targets *[]byte or *any.
type RawCodec struct{}

func (*RawCodec) Marshal(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	}
	return nil, fmt.Errorf("raw codec: value of type %T is not bytes-like", v)
}

func (*RawCodec) Unmarshal(data []byte, v any) error {
	switch out := v.(type) {
	case *[]byte:
		*out = data
		return nil
	case *any:
		*out = data
		return nil
	}
	return fmt.Errorf("raw codec: target of type %T is not bytes-like", v)
}

// BinaryCodec applies base64 transport encoding, for payloads that must
// survive text-only channels. Typically composed behind another codec via
// Chain.
type BinaryCodec struct{}

func (*BinaryCodec) Marshal(v any) ([]byte, error) {
	raw, err := (&RawCodec{}).Marshal(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out, nil
}

func (*BinaryCodec) Unmarshal(data []byte, v any) error {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	n, err := base64.StdEncoding.Decode(out, data)
	if err != nil {
		return err
	}
	return (&RawCodec{}).Unmarshal(out[:n], v)
}

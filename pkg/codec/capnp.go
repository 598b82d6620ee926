package codec

import (
	"fmt"

	"capnproto.org/go/capnp/v3"
)

// CapnpCodec encodes Cap'n Proto messages.
type CapnpCodec struct{}

func (*CapnpCodec) Marshal(v any) ([]byte, error) {
	msg, ok := v.(*capnp.Message)
	if !ok {
		return nil, fmt.Errorf("capnp codec: value of type %T is not a *capnp.Message", v)
	}
	return msg.Marshal()
}

func (*CapnpCodec) Unmarshal(data []byte, v any) error {
	out, ok := v.(**capnp.Message)
	if !ok {
		return fmt.Errorf("capnp codec: target of type %T is not a **capnp.Message", v)
	}
	msg, err := capnp.Unmarshal(data)
	if err != nil {
		return err
	}
	*out = msg
	return nil
}

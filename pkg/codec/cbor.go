package codec

import cbor "github.com/fxamacker/cbor/v2"

// CBORCodec encodes values as deterministic CBOR (RFC 8949 core profile).
type CBORCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBOR constructs a CBORCodec with canonical encoding options. The
// canonical options are known-valid, so mode construction cannot fail.
func NewCBOR() *CBORCodec {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	return &CBORCodec{enc: em, dec: dm}
}

func (c *CBORCodec) Marshal(v any) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c *CBORCodec) Unmarshal(data []byte, v any) error {
	return c.dec.Unmarshal(data, v)
}

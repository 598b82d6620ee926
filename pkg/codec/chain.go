package codec

// ChainCodec composes codecs into a pipeline: Marshal runs the codecs in
// forward order (each stage consuming the previous stage's bytes), Unmarshal
// runs them in reverse. The common case is wrapping a value codec in a
// transport encoding, e.g. Chain(&JSONCodec{}, &BinaryCodec{}).
type ChainCodec struct {
	codecs []Codec
}

// Chain builds a ChainCodec from the given stages.
func Chain(codecs ...Codec) *ChainCodec {
	return &ChainCodec{codecs: codecs}
}

// Marshal processes the value through all stages in forward order (first to last).
func (c *ChainCodec) Marshal(v any) ([]byte, error) {
	if len(c.codecs) == 0 {
		return (&RawCodec{}).Marshal(v)
	}
	data, err := c.codecs[0].Marshal(v)
	if err != nil {
		return nil, err
	}
	for _, stage := range c.codecs[1:] {
		data, err = stage.Marshal(data)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

// Unmarshal processes the data through all stages in reverse order (last to first).
func (c *ChainCodec) Unmarshal(data []byte, v any) error {
	if len(c.codecs) == 0 {
		return (&RawCodec{}).Unmarshal(data, v)
	}
	for i := len(c.codecs) - 1; i > 0; i-- {
		var inner []byte
		if err := c.codecs[i].Unmarshal(data, &inner); err != nil {
			return err
		}
		data = inner
	}
	return c.codecs[0].Unmarshal(data, v)
}

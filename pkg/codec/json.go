package codec

import jsoniter "github.com/json-iterator/go"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONCodec is the default value codec.
type JSONCodec struct{}

func (*JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (*JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

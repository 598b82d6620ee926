package message

import (
	"encoding/binary"
	"errors"

	"github.com/azhar9/faust/pkg/common"
	"github.com/azhar9/faust/pkg/metadata"
)

// absentLen marks an absent key or value slot on the wire. A zero-length
// payload and an absent payload are distinct (empty bytes vs tombstone).
const absentLen = 0xFFFFFFFF

// EncodeEnvelope serializes the key/value slots and headers of a message to
// wire format: [headers][keyLen(4B)][key][valueLen(4B)][value].
// Topic, partition and offset are transport-assigned and not encoded here.
// If pool is provided, it is used to allocate the output buffer.
func EncodeEnvelope(msg *Message, pool *common.BufferPool) ([]byte, error) {
	headerBlock, err := metadata.Encode(msg.Headers, pool)
	if err != nil {
		return nil, err
	}

	totalSize := len(headerBlock) + 4 + len(msg.Key) + 4 + len(msg.Value)
	var buf []byte
	if pool != nil {
		buf = pool.GetSize(totalSize)
	} else {
		buf = make([]byte, totalSize)
	}

	offset := copy(buf, headerBlock)
	if pool != nil {
		pool.Put(headerBlock)
	}

	offset += putSlot(buf[offset:], msg.Key)
	putSlot(buf[offset:], msg.Value)

	return buf, nil
}

// DecodeEnvelope parses wire-format data back into a Message. Topic,
// partition and offset are left zero for the transport to fill in.
func DecodeEnvelope(data []byte) (*Message, error) {
	headers, n, err := metadata.Decode(data)
	if err != nil {
		return nil, err
	}

	key, n, err := getSlot(data, n)
	if err != nil {
		return nil, errors.New("truncated in key slot")
	}
	value, n, err := getSlot(data, n)
	if err != nil {
		return nil, errors.New("truncated in value slot")
	}
	if n != len(data) {
		return nil, errors.New("trailing bytes after value slot")
	}

	return &Message{
		Key:     key,
		Value:   value,
		Headers: headers,
	}, nil
}

func putSlot(buf []byte, payload []byte) int {
	if payload == nil {
		binary.LittleEndian.PutUint32(buf[0:4], absentLen)
		return 4
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(payload)))
	copy(buf[4:], payload)
	return 4 + len(payload)
}

func getSlot(data []byte, offset int) ([]byte, int, error) {
	if offset+4 > len(data) {
		return nil, 0, errors.New("truncated slot length")
	}
	n := binary.LittleEndian.Uint32(data[offset : offset+4])
	offset += 4
	if n == absentLen {
		return nil, offset, nil
	}
	if offset+int(n) > len(data) {
		return nil, 0, errors.New("truncated slot payload")
	}
	payload := make([]byte, n)
	copy(payload, data[offset:offset+int(n)])
	return payload, offset + int(n), nil
}

// Package message defines the shapes the serialization registry consumes
// from the surrounding transport: the message envelope with its raw key and
// value slots, the request provenance passed through decoding, and the event
// produced by a successful value decode.
package message

import (
	"time"

	"github.com/azhar9/faust/pkg/metadata"
)

// Message is the transport envelope. Key and Value hold the raw serialized
// payloads; a nil Value marks a tombstone.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   metadata.Metadata
	Timestamp time.Time
}

// Request is opaque provenance for a consumed message. The registry passes
// it through decoding unmodified and attaches it to the resulting event.
type Request struct {
	ID       uint64
	Metadata metadata.Metadata
}

// Event is the result of decoding a message value: the decoded key and value
// plus the message and request they came from.
type Event struct {
	Key     any
	Value   any
	Message *Message
	Req     *Request
}

// NewEvent constructs an Event carrying the decoded key/value and its provenance.
func NewEvent(key, value any, msg *Message, req *Request) *Event {
	return &Event{
		Key:     key,
		Value:   value,
		Message: msg,
		Req:     req,
	}
}

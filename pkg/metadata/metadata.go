// Package metadata carries message header metadata through the pipeline.
package metadata

import "strings"

// Metadata maps string header keys to string values
type Metadata map[string]string

// New creates a Metadata from a map[string]string, normalizing keys to lowercase
func New(m map[string]string) Metadata {
	md := make(Metadata, len(m))
	for k, val := range m {
		key := strings.ToLower(k)
		md[key] = val
	}
	return md
}

// Get returns the string value for the given key (case-insensitive)
func (md Metadata) Get(k string) string {
	k = strings.ToLower(k)
	return md[k]
}

// Set sets a key to a given value, replacing any existing one
func (md Metadata) Set(k, val string) {
	k = strings.ToLower(k)
	md[k] = val
}

// Copy returns a shallow copy of the metadata
func (md Metadata) Copy() Metadata {
	out := make(Metadata, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}

// Join merges multiple Metadata maps (later ones override earlier keys)
func Join(mds ...Metadata) Metadata {
	out := Metadata{}
	for _, md := range mds {
		for k, v := range md {
			out[k] = v
		}
	}
	return out
}

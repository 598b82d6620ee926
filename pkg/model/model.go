// Package model defines the capability surface the serialization registry
// consumes from schema-bound types: a type may declare the codec its
// instances are encoded with, and an instance knows how to encode itself.
package model

import (
	"fmt"

	"github.com/azhar9/faust/pkg/codec"
)

// Options carries the type-level serialization settings of a model.
type Options struct {
	// Serializer names the codec or external serializer instances of this
	// type are encoded with. Empty means "use the registry default".
	Serializer codec.Name
}

// Model is a schema-bound value. Dumps is the self-serialization fallback
// used when the declared serializer is known to neither the codec table nor
// the external-serializer table.
type Model interface {
	Options() Options
	Dumps() ([]byte, error)
}

// Type describes a concrete model for decoding: it reports the declared
// serializer and constructs instances from decoded payloads.
type Type interface {
	Options() Options
	New(payload any) (Model, error)
}

// Def is a ready-made Type built from a constructor function.
type Def struct {
	Name string
	Opts Options
	Ctor func(payload any) (Model, error)
}

func (d *Def) Options() Options { return d.Opts }

func (d *Def) New(payload any) (Model, error) {
	m, err := d.Ctor(payload)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", d.Name, err)
	}
	return m, nil
}

package schema

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

// Binding pairs a record type with the compiled Schema instance for it. Two
// bindings live per wrapped function: one for the parameters record and one
// for the return record.
type Binding struct {
	rt     reflect.Type
	schema Schema
	engine Engine
}

// NewBinding compiles rt with the given engine and pairs the results.
func NewBinding(e Engine, rt reflect.Type) (*Binding, error) {
	s, err := e.Compile(rt)
	if err != nil {
		return nil, err
	}
	return &Binding{rt: rt, schema: s, engine: e}, nil
}

// RecordType returns the synthesized record type behind this binding.
func (b *Binding) RecordType() reflect.Type { return b.rt }

// Schema returns the compiled schema instance.
func (b *Binding) Schema() Schema { return b.schema }

// Engine returns the engine that compiled the schema.
func (b *Binding) Engine() Engine { return b.engine }

// JSONSchema projects the record type into a JSON Schema. Wire names come
// from the json struct tags on the record fields. Synthesized record types
// are unnamed, so the reflector must treat them as anonymous: they have no
// package path to derive an $id from, and an unnamed root cannot be expanded
// out of the definitions map.
func (b *Binding) JSONSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true, // inline defs
	}
	return r.Reflect(reflect.New(b.rt).Interface())
}

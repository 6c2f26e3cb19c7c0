// Package schema compiles a synthesized record type into a validating
// bidirectional converter between wire maps and native record values. It is
// the schema engine collaborator behind the root package: record fields carry
// their wire name in a json struct tag, leaf types with a registered codec
// (time.Time by default) convert through the codec, and every other field
// converts through strict JSON decoding.
package schema

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/alexmojaki/datafunctions/codec"
)

// Schema is a validating converter between wire maps and native values of one
// record type. Load returns a pointer to a freshly constructed record value;
// Dump accepts a record value or a pointer to one.
type Schema interface {
	RecordType() reflect.Type
	Load(ctx context.Context, wire map[string]any) (any, error)
	Dump(ctx context.Context, native any) (map[string]any, error)
}

// Engine builds a Schema from a record type.
type Engine interface {
	Compile(rt reflect.Type) (Schema, error)
}

// Default is the engine used when no explicit engine is configured.
var Default Engine = NewDefaultEngine()

// DefaultEngine compiles field-wise converters over a record struct type.
type DefaultEngine struct {
	codecs map[reflect.Type]codec.Codec
}

// NewDefaultEngine returns an engine with the time.Time RFC3339 codec
// registered, plus any extra codecs supplied. Later codecs win when two
// cover the same native type.
func NewDefaultEngine(codecs ...codec.Codec) *DefaultEngine {
	e := &DefaultEngine{codecs: make(map[reflect.Type]codec.Codec)}
	e.Register(codec.TimeRFC3339())
	for _, c := range codecs {
		e.Register(c)
	}
	return e
}

// Register adds a leaf codec keyed by its native type. Register must not be
// called concurrently with Compile.
func (e *DefaultEngine) Register(c codec.Codec) {
	e.codecs[c.Native()] = c
}

// Compile builds a Schema for the given record struct type.
func (e *DefaultEngine) Compile(rt reflect.Type) (Schema, error) {
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, singleIssue("/", CodeParseError, "record type must be a struct")
	}
	fields := make([]compiledField, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := wireName(sf)
		if name == "-" || name == "" {
			continue
		}
		var conv converter
		if c, ok := e.codecs[sf.Type]; ok {
			conv = codecConverter{c: c}
		} else {
			conv = jsonConverter{}
		}
		fields = append(fields, compiledField{name: name, index: i, conv: conv})
	}
	return &recordSchema{rt: rt, fields: fields}, nil
}

// wireName resolves the wire key of a struct field: the first segment of the
// json tag when present, the Go field name otherwise.
func wireName(sf reflect.StructField) string {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return sf.Name
	}
	if i := strings.IndexByte(tag, ','); i >= 0 {
		tag = tag[:i]
	}
	if tag == "" {
		return sf.Name
	}
	return tag
}

type compiledField struct {
	name  string
	index int
	conv  converter
}

type recordSchema struct {
	rt     reflect.Type
	fields []compiledField
}

func (s *recordSchema) RecordType() reflect.Type { return s.rt }

func (s *recordSchema) Load(ctx context.Context, wire map[string]any) (any, error) {
	rv := reflect.New(s.rt)
	elem := rv.Elem()
	var iss Issues
	seen := make(map[string]bool, len(s.fields))
	for _, f := range s.fields {
		seen[f.name] = true
		v, ok := wire[f.name]
		if !ok {
			iss = append(iss, Issue{Path: "/" + f.name, Code: CodeRequired, Message: "missing field"})
			continue
		}
		if err := f.conv.decode(ctx, "/"+f.name, v, elem.Field(f.index)); err != nil {
			if more, ok := AsIssues(err); ok {
				iss = append(iss, more...)
			} else {
				iss = append(iss, Issue{Path: "/" + f.name, Code: CodeParseError, Cause: err})
			}
		}
	}
	for k := range wire {
		if !seen[k] {
			iss = append(iss, Issue{Path: "/" + k, Code: CodeUnknownKey, Message: "unknown field"})
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return rv.Interface(), nil
}

func (s *recordSchema) Dump(ctx context.Context, native any) (map[string]any, error) {
	rv := reflect.Indirect(reflect.ValueOf(native))
	if !rv.IsValid() || rv.Type() != s.rt {
		return nil, singleIssue("/", CodeInvalidType, "value is not an instance of the record type")
	}
	wire := make(map[string]any, len(s.fields))
	var iss Issues
	for _, f := range s.fields {
		v, err := f.conv.encode(ctx, "/"+f.name, rv.Field(f.index))
		if err != nil {
			if more, ok := AsIssues(err); ok {
				iss = append(iss, more...)
			} else {
				iss = append(iss, Issue{Path: "/" + f.name, Code: CodeParseError, Cause: err})
			}
			continue
		}
		wire[f.name] = v
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return wire, nil
}

// converter handles one record field.
type converter interface {
	decode(ctx context.Context, path string, wire any, dst reflect.Value) error
	encode(ctx context.Context, path string, src reflect.Value) (any, error)
}

// jsonConverter converts a field through a strict JSON round trip. Unknown
// keys inside nested objects are rejected, mirroring the top-level policy.
type jsonConverter struct{}

func (jsonConverter) decode(ctx context.Context, path string, wire any, dst reflect.Value) error {
	if wire == nil {
		switch dst.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map:
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		default:
			return singleIssue(path, CodeInvalidType, "null is not valid here")
		}
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return Issues{Issue{Path: path, Code: CodeParseError, Message: "value is not wire-encodable", Cause: err}}
	}
	ptr := reflect.New(dst.Type())
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(ptr.Interface()); err != nil {
		return Issues{Issue{Path: path, Code: CodeInvalidType, Message: "cannot decode into " + dst.Type().String(), Cause: err}}
	}
	dst.Set(ptr.Elem())
	return nil
}

func (jsonConverter) encode(ctx context.Context, path string, src reflect.Value) (any, error) {
	data, err := json.Marshal(src.Interface())
	if err != nil {
		return nil, Issues{Issue{Path: path, Code: CodeParseError, Message: "value is not wire-encodable", Cause: err}}
	}
	var out any
	dec := json.NewDecoder(bytes.NewReader(data))
	// Keep wire numbers as json.Number so integers beyond float64's exact
	// range survive the round trip.
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, Issues{Issue{Path: path, Code: CodeParseError, Cause: err}}
	}
	return out, nil
}

// codecConverter delegates a field to a registered leaf codec.
type codecConverter struct {
	c codec.Codec
}

func (cc codecConverter) decode(ctx context.Context, path string, wire any, dst reflect.Value) error {
	v, err := cc.c.Decode(ctx, wire)
	if err != nil {
		return Issues{Issue{Path: path, Code: CodeInvalidFormat, Cause: err}}
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(dst.Type()) {
		return singleIssue(path, CodeInvalidType, "codec produced "+rv.Type().String()+", want "+dst.Type().String())
	}
	dst.Set(rv)
	return nil
}

func (cc codecConverter) encode(ctx context.Context, path string, src reflect.Value) (any, error) {
	v, err := cc.c.Encode(ctx, src.Interface())
	if err != nil {
		return nil, Issues{Issue{Path: path, Code: CodeInvalidFormat, Cause: err}}
	}
	// Hold codecs to their declared wire type.
	if v == nil || reflect.TypeOf(v) != cc.c.Wire() {
		return nil, singleIssue(path, CodeInvalidType, fmt.Sprintf("codec emitted %T, want %s", v, cc.c.Wire()))
	}
	return v, nil
}

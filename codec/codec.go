// Package codec provides leaf wire codecs consumed by the schema engine:
// bidirectional converters between a single wire representation and a single
// native Go type.
package codec

import (
	"context"
	"reflect"
)

// Codec converts between the wire representation (a plain JSON-compatible
// value) and one native Go type. Decode and Encode must be inverses for
// values without precision loss across the wire form.
type Codec interface {
	// Wire reports the wire-side Go type, e.g. string for text codecs. The
	// engine rejects encoded values of any other type.
	Wire() reflect.Type
	// Native reports the native type this codec produces and consumes.
	Native() reflect.Type
	// Decode converts a wire value into the native type.
	Decode(ctx context.Context, wire any) (any, error)
	// Encode converts a native value into canonical wire form.
	Encode(ctx context.Context, native any) (any, error)
}

package codec

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// layoutLocal is the RFC3339 date-time form without a zone offset; values in
// this form are read as UTC.
const layoutLocal = "2006-01-02T15:04:05"

// TimeRFC3339 returns a Codec that converts between RFC3339 strings and
// time.Time. Decoding accepts RFC3339, RFC3339Nano and the zone-less local
// form; encoding always emits canonical RFC3339 in UTC.
func TimeRFC3339() Codec {
	return rfc3339Codec{}
}

type rfc3339Codec struct{}

func (rfc3339Codec) Wire() reflect.Type   { return reflect.TypeOf("") }
func (rfc3339Codec) Native() reflect.Type { return reflect.TypeOf(time.Time{}) }

func (rfc3339Codec) Decode(ctx context.Context, wire any) (any, error) {
	s, ok := wire.(string)
	if !ok {
		return nil, fmt.Errorf("expected RFC3339 string, got %T", wire)
	}
	t, err := parseRFC3339(s)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (rfc3339Codec) Encode(ctx context.Context, native any) (any, error) {
	t, ok := native.(time.Time)
	if !ok {
		return nil, fmt.Errorf("expected time.Time, got %T", native)
	}
	return formatRFC3339Canonical(t), nil
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional).
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(layoutLocal, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid RFC3339 time %q", s)
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros).
	return t.UTC().Format(time.RFC3339Nano)
}

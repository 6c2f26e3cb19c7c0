package datafunctions_test

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/alexmojaki/datafunctions"
)

func TestLoadArguments_NativeValues(t *testing.T) {
	f := datafunctions.Must(func(v time.Time, n int) time.Time {
		return v
	}, datafunctions.Params("t", "n"))

	native, err := f.LoadArguments(context.Background(), []any{"2019-01-02T00:00:00", 5}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := native["t"].(time.Time)
	if !ok {
		t.Fatalf("expected time.Time, got %T", native["t"])
	}
	want := time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if native["n"] != 5 {
		t.Fatalf("got %v (%T), want int 5", native["n"], native["n"])
	}
}

func TestDumpArguments_WireValues(t *testing.T) {
	f := datafunctions.Must(func(v time.Time, n int) time.Time {
		return v
	}, datafunctions.Params("t", "n"))

	wire, err := f.DumpArguments(context.Background(), []any{time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC), 5}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"t": "2019-01-02T00:00:00Z", "n": json.Number("5")}
	if !reflect.DeepEqual(wire, want) {
		t.Fatalf("got %#v, want %#v", wire, want)
	}
}

// load(dump(v)) == v for values without precision loss across the wire form.
func TestResult_RoundTrip(t *testing.T) {
	ctx := context.Background()

	tf := datafunctions.Must(func() time.Time { return time.Time{} })
	v := time.Date(2020, 6, 1, 12, 30, 0, 0, time.UTC)
	wire, err := tf.DumpResult(ctx, v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := tf.LoadResult(ctx, wire)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.(time.Time).Equal(v) {
		t.Fatalf("round trip lost value: %v -> %v -> %v", v, wire, back)
	}

	nf := datafunctions.Must(func() int { return 0 })
	wire, err = nf.DumpResult(ctx, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err = nf.LoadResult(ctx, wire)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != 42 {
		t.Fatalf("round trip lost value: got %v (%T)", back, back)
	}
}

// Integers above float64's exact range must survive the wire representation
// unchanged.
func TestResult_BigIntegerRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := datafunctions.Must(func() int64 { return 0 })

	const big = int64(9007199254740993)
	wire, err := f.DumpResult(ctx, big)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wire != json.Number("9007199254740993") {
		t.Fatalf("got wire %v (%T), want exact json.Number", wire, wire)
	}
	back, err := f.LoadResult(ctx, wire)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != big {
		t.Fatalf("round trip lost value: %v -> %v -> %v", big, wire, back)
	}
}

// An omitted argument with a wire-form default must dump through the same
// decoding as the load path, not as a raw wire value.
func TestDumpArguments_DefaultDecoded(t *testing.T) {
	f := datafunctions.Must(func(v time.Time, n int) time.Time {
		return v
	}, datafunctions.Params("t", "n"), datafunctions.Default("t", "2019-01-02T00:00:00"))

	wire, err := f.DumpArguments(context.Background(), nil, map[string]any{"n": 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"t": "2019-01-02T00:00:00Z", "n": json.Number("5")}
	if !reflect.DeepEqual(wire, want) {
		t.Fatalf("got %#v, want %#v", wire, want)
	}
}

func TestLoadResult_InvalidWireValue(t *testing.T) {
	f := datafunctions.Must(func() int { return 0 })
	_, err := f.LoadResult(context.Background(), "abc")
	var re *datafunctions.ReturnError
	if !errors.As(err, &re) {
		t.Fatalf("expected ReturnError, got %v", err)
	}
	if re.Cause == nil {
		t.Fatalf("cause must be preserved")
	}
}

func TestDumpResult_UnencodableValue(t *testing.T) {
	f := datafunctions.Must(func() float64 { return 0 })
	_, err := f.DumpResult(context.Background(), math.NaN())
	var re *datafunctions.ReturnError
	if !errors.As(err, &re) {
		t.Fatalf("expected ReturnError, got %v", err)
	}
}

func TestDumpResult_TypeMismatch(t *testing.T) {
	f := datafunctions.Must(func() point { return point{} })
	_, err := f.DumpResult(context.Background(), "not a point")
	var re *datafunctions.ReturnError
	if !errors.As(err, &re) {
		t.Fatalf("expected ReturnError, got %v", err)
	}
}

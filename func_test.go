package datafunctions_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/alexmojaki/datafunctions"
	"github.com/alexmojaki/datafunctions/schema"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func TestCall_TimeParameterAndReturn(t *testing.T) {
	f := datafunctions.Must(func(v time.Time) time.Time {
		return v.AddDate(1, 0, 0)
	}, datafunctions.Params("t"))

	out, err := f.Call(context.Background(), "2019-01-02T00:00:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "2020-01-02T00:00:00Z" {
		t.Fatalf("got %v, want 2020-01-02T00:00:00Z", out)
	}
}

func TestCall_NestedRecordAndScalars(t *testing.T) {
	f := datafunctions.Must(func(p point, dx, dy int) point {
		return point{X: p.X + dx, Y: p.Y + dy}
	}, datafunctions.Params("p", "dx", "dy"))

	out, err := f.Call(context.Background(), map[string]any{"x": 1, "y": 2}, 3, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"x": json.Number("4"), "y": json.Number("6")}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %#v, want %#v", out, want)
	}
}

type counter struct {
	base int
}

func TestCall_MethodForm(t *testing.T) {
	f := datafunctions.Must(func(c *counter, n int) int {
		return c.base + n
	}, datafunctions.Method(), datafunctions.Params("n"))

	if !f.IsMethod() {
		t.Fatalf("expected method form")
	}
	out, err := f.Call(context.Background(), &counter{base: 2}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != json.Number("7") {
		t.Fatalf("got %v, want 7", out)
	}

	_, err = f.Call(context.Background(), &counter{}, "abc")
	var ae *datafunctions.ArgumentError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ArgumentError, got %v", err)
	}
	iss, ok := schema.AsIssues(ae.Cause)
	if !ok {
		t.Fatalf("expected schema issues as cause, got %v", ae.Cause)
	}
	if iss[0].Path != "/n" || iss[0].Code != schema.CodeInvalidType {
		t.Fatalf("unexpected issue: %+v", iss[0])
	}
}

func TestCall_WrappedErrorPassesThrough(t *testing.T) {
	sentinel := errors.New("boom")
	f := datafunctions.Must(func(n int) (int, error) {
		return 0, sentinel
	}, datafunctions.Params("n"))

	_, err := f.Call(context.Background(), 1)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected the wrapped function's own error, got %v", err)
	}
	var ae *datafunctions.ArgumentError
	var re *datafunctions.ReturnError
	if errors.As(err, &ae) || errors.As(err, &re) {
		t.Fatalf("wrapped errors must not be rewrapped: %v", err)
	}
}

func TestCall_NoResult(t *testing.T) {
	called := false
	f := datafunctions.Must(func(n int) {
		called = true
	}, datafunctions.Params("n"))

	out, err := f.Call(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Fatalf("got %v, want nil", out)
	}
	if !called {
		t.Fatalf("wrapped function was not invoked")
	}
	if wire, err := f.DumpResult(context.Background(), 42); err != nil || wire != nil {
		t.Fatalf("DumpResult without a result type: %v, %v", wire, err)
	}
}

type ctxKey struct{}

func TestCall_ContextPassthrough(t *testing.T) {
	f := datafunctions.Must(func(ctx context.Context, n int) string {
		s, _ := ctx.Value(ctxKey{}).(string)
		return s
	}, datafunctions.Params("n"))

	ctx := context.WithValue(context.Background(), ctxKey{}, "hello")
	out, err := f.Call(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hello" {
		t.Fatalf("got %v, want hello", out)
	}
}

func TestCallNamed_KeywordArguments(t *testing.T) {
	f := datafunctions.Must(func(a, b int) int {
		return a*10 + b
	}, datafunctions.Params("a", "b"))

	out, err := f.CallNamed(context.Background(), []any{1}, map[string]any{"b": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != json.Number("12") {
		t.Fatalf("got %v, want 12", out)
	}
}

func TestCall_DefaultApplied(t *testing.T) {
	f := datafunctions.Must(func(a, b int) int {
		return a + b
	}, datafunctions.Params("a", "b"), datafunctions.Default("b", 10))

	out, err := f.Call(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != json.Number("11") {
		t.Fatalf("got %v, want 11", out)
	}
}

func TestCall_NilContext(t *testing.T) {
	f := datafunctions.Must(func(n int) int { return n }, datafunctions.Params("n"))
	out, err := f.Call(nil, 3) //nolint:staticcheck // nil context is part of the contract
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != json.Number("3") {
		t.Fatalf("got %v, want 3", out)
	}
}

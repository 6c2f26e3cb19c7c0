package datafunctions

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
)

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// signature is the inspected shape of a wrapped function: which parameters
// are passed through untouched (receiver, context) and the field map of
// serialized parameters, plus the declared result shape.
type signature struct {
	name string

	hasReceiver bool
	receiver    reflect.Type
	hasContext  bool

	fields []Field

	result    reflect.Type // nil when the function has no non-error result
	hasErrOut bool
}

// inspectSignature validates eligibility and builds the field map. Every
// failure is a *SignatureError; none of these conditions can be detected any
// later than construction time.
func inspectSignature(fn any, cfg config) (reflect.Value, *signature, error) {
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return reflect.Value{}, nil, &SignatureError{Reason: fmt.Sprintf("expected a function, got %T", fn)}
	}
	ft := fv.Type()
	sig := &signature{name: funcName(fv)}
	fail := func(format string, args ...any) (reflect.Value, *signature, error) {
		return reflect.Value{}, nil, &SignatureError{Fn: sig.name, Reason: fmt.Sprintf(format, args...)}
	}

	if ft.IsVariadic() {
		return fail("variadic functions cannot be wrapped")
	}

	i := 0
	if cfg.isMethod {
		if ft.NumIn() == 0 {
			return fail("method form requires a receiver parameter")
		}
		sig.hasReceiver = true
		sig.receiver = ft.In(0)
		i++
	}
	if i < ft.NumIn() && ft.In(i) == ctxType {
		sig.hasContext = true
		i++
	}

	serialized := make([]reflect.Type, 0, ft.NumIn()-i)
	for ; i < ft.NumIn(); i++ {
		if ft.In(i) == ctxType {
			return fail("context.Context must come before the serialized parameters")
		}
		serialized = append(serialized, ft.In(i))
	}

	if len(cfg.names) != len(serialized) {
		return fail("got %d parameter names for %d serialized parameters", len(cfg.names), len(serialized))
	}
	seen := make(map[string]bool, len(cfg.names))
	for idx, name := range cfg.names {
		if name == "" {
			return fail("parameter %d has an empty name", idx)
		}
		if seen[name] {
			return fail("duplicate parameter name %q", name)
		}
		seen[name] = true
		sig.fields = append(sig.fields, Field{Name: name, Type: serialized[idx]})
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errType {
			sig.hasErrOut = true
		} else {
			sig.result = ft.Out(0)
		}
	case 2:
		if ft.Out(1) != errType {
			return fail("second result must be error, got %s", ft.Out(1))
		}
		if ft.Out(0) == errType {
			return fail("first of two results cannot be error")
		}
		sig.result = ft.Out(0)
		sig.hasErrOut = true
	default:
		return fail("too many results (%d); want at most one value and one error", ft.NumOut())
	}

	// Surface record-synthesis problems (bad names, unsupported field kinds)
	// now rather than on first call.
	if _, err := SynthesizeRecord(sig.fields); err != nil {
		return fail("%v", err)
	}
	if sig.result != nil {
		if err := checkFieldType("value", sig.result); err != nil {
			return fail("result: %v", err)
		}
	}
	return fv, sig, nil
}

func funcName(fv reflect.Value) string {
	if f := runtime.FuncForPC(fv.Pointer()); f != nil {
		return f.Name()
	}
	return ""
}

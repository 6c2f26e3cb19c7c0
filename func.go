package datafunctions

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/alexmojaki/datafunctions/schema"
)

// Option configures how a function is wrapped.
type Option func(*config)

type config struct {
	names    []string
	isMethod bool
	defaults map[string]any
	engine   schema.Engine
}

// Params declares the wire names of the serialized parameters, in declaration
// order. Go reflection does not expose parameter names, so the name list is
// required whenever the function has serialized parameters; a missing or
// mismatched list is a SignatureError.
func Params(names ...string) Option {
	return func(c *config) { c.names = names }
}

// Method marks the function's first parameter as an implicit receiver: it is
// passed through to the wrapped function untouched and never serialized.
func Method() Option {
	return func(c *config) { c.isMethod = true }
}

// Default registers a wire-form default bound when the named argument is
// omitted from a call.
func Default(name string, wire any) Option {
	return func(c *config) {
		if c.defaults == nil {
			c.defaults = make(map[string]any)
		}
		c.defaults[name] = wire
	}
}

// WithEngine swaps the schema engine used to compile the two record schemas.
func WithEngine(e schema.Engine) Option {
	return func(c *config) { c.engine = e }
}

// Func wraps one function with wire-to-native conversion at its boundary. It
// is immutable after construction apart from the two lazily-built schema
// bindings, and is safe for concurrent use.
type Func struct {
	fn         reflect.Value
	sig        *signature
	engine     schema.Engine
	defaults   map[string]any
	fieldNames map[string]bool

	params bindingCell
	ret    bindingCell

	ndefOnce sync.Once
	ndef     map[string]any
	ndefErr  error
}

// New wraps fn. All signature-eligibility failures are reported here, before
// any call is possible.
func New(fn any, opts ...Option) (*Func, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.engine == nil {
		cfg.engine = schema.Default
	}
	fv, sig, err := inspectSignature(fn, cfg)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(sig.fields))
	for _, fd := range sig.fields {
		names[fd.Name] = true
	}
	for name := range cfg.defaults {
		if !names[name] {
			return nil, &SignatureError{Fn: sig.name, Reason: fmt.Sprintf("default for unknown parameter %q", name)}
		}
	}
	return &Func{
		fn:         fv,
		sig:        sig,
		engine:     cfg.engine,
		defaults:   cfg.defaults,
		fieldNames: names,
	}, nil
}

// Must is like New but panics on SignatureError, for package-level wrapping.
func Must(fn any, opts ...Option) *Func {
	f, err := New(fn, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the wrapped function's runtime name, when known.
func (f *Func) Name() string { return f.sig.name }

// IsMethod reports whether the first parameter is an unserialized receiver.
func (f *Func) IsMethod() bool { return f.sig.hasReceiver }

// Call invokes the wrapped function with positional wire arguments, returning
// the wire-form result. In method form the first argument is the receiver,
// passed through natively.
func (f *Func) Call(ctx context.Context, args ...any) (any, error) {
	return f.CallNamed(ctx, args, nil)
}

// CallNamed invokes the wrapped function with positional and keyword wire
// arguments. Binding and decode failures are ArgumentError; encode failures
// are ReturnError; an error returned by the wrapped function itself (and any
// panic inside it) propagates unchanged.
func (f *Func) CallNamed(ctx context.Context, args []any, named map[string]any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var recv any
	if f.sig.hasReceiver {
		if len(args) == 0 {
			return nil, &ArgumentError{Cause: bindErrorf("missing receiver argument")}
		}
		recv, args = args[0], args[1:]
	}
	rec, err := f.loadRecord(ctx, args, named)
	if err != nil {
		return nil, err
	}
	in, err := f.callValues(ctx, recv, rec)
	if err != nil {
		return nil, err
	}
	out := f.fn.Call(in)
	if f.sig.hasErrOut {
		if errv := out[len(out)-1].Interface(); errv != nil {
			return nil, errv.(error)
		}
	}
	if f.sig.result == nil {
		return nil, nil
	}
	return f.DumpResult(ctx, out[0].Interface())
}

// CallFrom invokes the wrapped function with arguments decoded from a wire
// document: an object supplies keyword arguments, an array positional ones.
// Method-form functions need a native receiver and cannot be called this way.
func (f *Func) CallFrom(ctx context.Context, src Source) (any, error) {
	if f.sig.hasReceiver {
		return nil, &ArgumentError{Cause: bindErrorf("method form requires a native receiver; use Call")}
	}
	doc, err := src.Decode()
	if err != nil {
		return nil, &ArgumentError{Cause: err}
	}
	switch v := doc.(type) {
	case map[string]any:
		return f.CallNamed(ctx, nil, v)
	case []any:
		return f.CallNamed(ctx, v, nil)
	default:
		return nil, &ArgumentError{Cause: bindErrorf("wire document must be an object or array, got %T", doc)}
	}
}

// LoadArguments binds and decodes one invocation's wire arguments, returning
// the native value of every serialized parameter keyed by name. The receiver
// is never part of this surface.
func (f *Func) LoadArguments(ctx context.Context, args []any, named map[string]any) (map[string]any, error) {
	rec, err := f.loadRecord(ctx, args, named)
	if err != nil {
		return nil, err
	}
	elem := reflect.ValueOf(rec).Elem()
	out := make(map[string]any, len(f.sig.fields))
	for i, fd := range f.sig.fields {
		out[fd.Name] = elem.Field(i).Interface()
	}
	return out, nil
}

// DumpArguments binds native positional/keyword argument values and encodes
// them to a wire-form field map, the inverse of LoadArguments. Registered
// defaults are wire-form, so an omitted argument takes its default's decoded
// native value here rather than the raw wire value.
func (f *Func) DumpArguments(ctx context.Context, args []any, named map[string]any) (map[string]any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	bound, err := f.bindArguments(args, named)
	if err != nil {
		return nil, &ArgumentError{Cause: err}
	}
	supplied := f.suppliedNames(args, named)
	pb, err := f.ParamsBinding()
	if err != nil {
		return nil, &ArgumentError{Cause: err}
	}
	rec := reflect.New(pb.RecordType()).Elem()
	for i, fd := range f.sig.fields {
		v := bound[fd.Name]
		if !supplied[fd.Name] {
			nd, err := f.nativeDefaults(ctx)
			if err != nil {
				return nil, &ArgumentError{Cause: err}
			}
			v = nd[fd.Name]
		}
		if err := setRecordField(rec.Field(i), v); err != nil {
			return nil, &ArgumentError{Cause: bindErrorf("argument %q: %v", fd.Name, err)}
		}
	}
	wire, err := pb.Schema().Dump(ctx, rec.Interface())
	if err != nil {
		return nil, &ArgumentError{Cause: err}
	}
	return wire, nil
}

// nativeDefaults lazily decodes the registered wire-form defaults into native
// values through a record holding just the defaulted fields. The inputs are
// deterministic, so the build-once result serves every later call.
func (f *Func) nativeDefaults(ctx context.Context) (map[string]any, error) {
	f.ndefOnce.Do(func() {
		if len(f.defaults) == 0 {
			return
		}
		fields := make([]Field, 0, len(f.defaults))
		wire := make(map[string]any, len(f.defaults))
		for _, fd := range f.sig.fields {
			if dv, ok := f.defaults[fd.Name]; ok {
				fields = append(fields, fd)
				wire[fd.Name] = dv
			}
		}
		rt, err := SynthesizeRecord(fields)
		if err != nil {
			f.ndefErr = err
			return
		}
		b, err := schema.NewBinding(f.engine, rt)
		if err != nil {
			f.ndefErr = err
			return
		}
		rec, err := b.Schema().Load(ctx, wire)
		if err != nil {
			f.ndefErr = err
			return
		}
		elem := reflect.ValueOf(rec).Elem()
		out := make(map[string]any, len(fields))
		for i, fd := range fields {
			out[fd.Name] = elem.Field(i).Interface()
		}
		f.ndef = out
	})
	return f.ndef, f.ndefErr
}

// LoadResult decodes a wire-form return value into its native type. For
// functions with no non-error result it returns nil.
func (f *Func) LoadResult(ctx context.Context, wire any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rb, err := f.ReturnBinding()
	if err != nil {
		return nil, &ReturnError{Cause: err}
	}
	if rb == nil {
		return nil, nil
	}
	rec, err := rb.Schema().Load(ctx, map[string]any{ReturnField: wire})
	if err != nil {
		return nil, &ReturnError{Cause: err}
	}
	return reflect.ValueOf(rec).Elem().Field(0).Interface(), nil
}

// DumpResult encodes a native return value to wire form. For functions with
// no non-error result it returns nil.
func (f *Func) DumpResult(ctx context.Context, native any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rb, err := f.ReturnBinding()
	if err != nil {
		return nil, &ReturnError{Cause: err}
	}
	if rb == nil {
		return nil, nil
	}
	rec := reflect.New(rb.RecordType()).Elem()
	if err := setRecordField(rec.Field(0), native); err != nil {
		return nil, &ReturnError{Cause: err}
	}
	wire, err := rb.Schema().Dump(ctx, rec.Interface())
	if err != nil {
		return nil, &ReturnError{Cause: err}
	}
	return wire[ReturnField], nil
}

// loadRecord runs the bind and decode stages, returning a pointer to a fresh
// parameters record. Both stages surface as ArgumentError with the underlying
// cause preserved.
func (f *Func) loadRecord(ctx context.Context, args []any, named map[string]any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	bound, err := f.bindArguments(args, named)
	if err != nil {
		return nil, &ArgumentError{Cause: err}
	}
	pb, err := f.ParamsBinding()
	if err != nil {
		return nil, &ArgumentError{Cause: err}
	}
	rec, err := pb.Schema().Load(ctx, bound)
	if err != nil {
		return nil, &ArgumentError{Cause: err}
	}
	return rec, nil
}

// callValues assembles the reflect.Call argument list: receiver, context and
// the decoded record fields in declaration order.
func (f *Func) callValues(ctx context.Context, recv any, rec any) ([]reflect.Value, error) {
	ft := f.fn.Type()
	in := make([]reflect.Value, 0, ft.NumIn())
	if f.sig.hasReceiver {
		rv := reflect.ValueOf(recv)
		if !rv.IsValid() {
			switch f.sig.receiver.Kind() {
			case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map:
				rv = reflect.Zero(f.sig.receiver)
			default:
				return nil, &ArgumentError{Cause: bindErrorf("nil receiver for %s", f.sig.receiver)}
			}
		} else if !rv.Type().AssignableTo(f.sig.receiver) {
			return nil, &ArgumentError{Cause: bindErrorf("receiver type %T is not assignable to %s", recv, f.sig.receiver)}
		}
		in = append(in, rv)
	}
	if f.sig.hasContext {
		in = append(in, reflect.ValueOf(ctx))
	}
	elem := reflect.ValueOf(rec).Elem()
	for i := range f.sig.fields {
		in = append(in, elem.Field(i))
	}
	return in, nil
}

// setRecordField assigns a native value into a record field, converting
// between compatible kinds the way typed binding does elsewhere.
func setRecordField(dst reflect.Value, v any) error {
	if v == nil {
		switch dst.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map:
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		default:
			return fmt.Errorf("cannot use nil as %s", dst.Type())
		}
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(dst.Type()):
		dst.Set(rv)
	case rv.Type().ConvertibleTo(dst.Type()):
		dst.Set(rv.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot use %T as %s", v, dst.Type())
	}
	return nil
}

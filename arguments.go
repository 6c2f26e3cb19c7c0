package datafunctions

import "fmt"

// bindError describes a positional/keyword binding failure detected before
// any schema validation runs. It is always surfaced wrapped in ArgumentError.
type bindError struct {
	msg string
}

func (e *bindError) Error() string { return e.msg }

func bindErrorf(format string, args ...any) error {
	return &bindError{msg: fmt.Sprintf(format, args...)}
}

// bindArguments maps one invocation's positional and keyword arguments onto
// the field map, applying registered defaults for omitted arguments. The
// receiver, when present, has already been stripped by the caller. The values
// themselves are not inspected here; they flow to the schema untouched.
func (f *Func) bindArguments(args []any, named map[string]any) (map[string]any, error) {
	fields := f.sig.fields
	if len(args) > len(fields) {
		return nil, bindErrorf("too many positional arguments: got %d, want at most %d", len(args), len(fields))
	}
	bound := make(map[string]any, len(fields))
	for i, a := range args {
		bound[fields[i].Name] = a
	}
	for k, v := range named {
		if !f.fieldNames[k] {
			return nil, bindErrorf("unknown keyword argument %q", k)
		}
		if _, dup := bound[k]; dup {
			return nil, bindErrorf("multiple values for argument %q", k)
		}
		bound[k] = v
	}
	for _, fd := range fields {
		if _, ok := bound[fd.Name]; ok {
			continue
		}
		if dv, ok := f.defaults[fd.Name]; ok {
			bound[fd.Name] = dv
			continue
		}
		return nil, bindErrorf("missing required argument %q", fd.Name)
	}
	return bound, nil
}

// suppliedNames reports which fields one invocation actually supplied, as
// opposed to fields filled from registered defaults.
func (f *Func) suppliedNames(args []any, named map[string]any) map[string]bool {
	supplied := make(map[string]bool, len(args)+len(named))
	for i := range args {
		if i < len(f.sig.fields) {
			supplied[f.sig.fields[i].Name] = true
		}
	}
	for k := range named {
		supplied[k] = true
	}
	return supplied
}

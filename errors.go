package datafunctions

import "fmt"

// SignatureError reports that a function's declared signature is ineligible
// for wrapping: a missing or mismatched parameter name list, a variadic
// parameter, a missing receiver in method form, or an unsupported result
// shape. It is returned by New before any call is possible.
type SignatureError struct {
	Fn     string // function name when known
	Reason string
}

func (e *SignatureError) Error() string {
	if e.Fn == "" {
		return "datafunctions: " + e.Reason
	}
	return fmt.Sprintf("datafunctions: %s: %s", e.Fn, e.Reason)
}

// ArgumentError reports a call-time failure while binding or decoding the
// incoming arguments. Cause carries the originating failure: a binding error
// for arity/keyword mismatches, or schema issues for validation failures.
type ArgumentError struct {
	Cause error
}

func (e *ArgumentError) Error() string {
	return "datafunctions: invalid arguments: " + e.Cause.Error()
}

func (e *ArgumentError) Unwrap() error { return e.Cause }

// ReturnError reports that the wrapped function's return value failed to
// encode to wire form (or, for LoadResult, that a wire value failed to decode
// into the declared return type). Cause carries the originating failure.
type ReturnError struct {
	Cause error
}

func (e *ReturnError) Error() string {
	return "datafunctions: invalid return value: " + e.Cause.Error()
}

func (e *ReturnError) Unwrap() error { return e.Cause }

package datafunctions

// Package datafunctions converts between wire values (plain JSON-compatible
// data) and the native typed parameters and return value of a Go function.
//
// A wrapped function accepts and returns plain data at its public boundary
// while its body works with richly typed values:
//
//	addYear := datafunctions.Must(func(t time.Time) time.Time {
//		return t.AddDate(1, 0, 0)
//	}, datafunctions.Params("t"))
//
//	out, err := addYear.Call(ctx, "2019-01-02T00:00:00")
//	// out == "2020-01-02T00:00:00Z"
//
// For every wrapped function the package synthesizes two record types: one
// holding all serialized parameters as named fields, and one wrapping the
// return value as a single field. A validating schema is compiled lazily for
// each record and cached for the lifetime of the Func, so repeated calls pay
// the synthesis cost once.
//
// Design policy:
// - Keep only public APIs in the root package; the schema engine lives under
//   schema/ and leaf wire codecs under codec/.
// - Failures surface immediately as SignatureError (construction time),
//   ArgumentError (binding or decoding incoming arguments) or ReturnError
//   (encoding the result); errors returned by the wrapped function itself
//   pass through untouched.
// - Prefer black-box testing against public APIs.

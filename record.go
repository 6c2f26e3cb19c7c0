package datafunctions

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"
)

// Field is one entry of a field map: a wire-level name paired with the
// declared native type of the parameter (or return value) it carries.
type Field struct {
	Name string
	Type reflect.Type
}

// SynthesizeRecord builds a struct type whose fields mirror the field map in
// declaration order. Field names are exported forms of the wire names; the
// wire name itself is preserved in the json struct tag, which is how the
// schema engine resolves keys.
func SynthesizeRecord(fields []Field) (reflect.Type, error) {
	sfs := make([]reflect.StructField, 0, len(fields))
	used := make(map[string]string, len(fields))
	for _, f := range fields {
		goName, err := exportName(f.Name)
		if err != nil {
			return nil, err
		}
		if prev, ok := used[goName]; ok {
			return nil, fmt.Errorf("field names %q and %q collide as %s", prev, f.Name, goName)
		}
		used[goName] = f.Name
		if err := checkFieldType(f.Name, f.Type); err != nil {
			return nil, err
		}
		sfs = append(sfs, reflect.StructField{
			Name: goName,
			Type: f.Type,
			Tag:  reflect.StructTag(`json:"` + f.Name + `"`),
		})
	}
	return reflect.StructOf(sfs), nil
}

// exportName turns a wire name into an exported Go identifier by upper-casing
// the first rune.
func exportName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty field name")
	}
	first, size := utf8.DecodeRuneInString(name)
	if !unicode.IsLetter(first) {
		return "", fmt.Errorf("field name %q must start with a letter", name)
	}
	for _, r := range name[size:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return "", fmt.Errorf("field name %q contains invalid character %q", name, r)
		}
	}
	return string(unicode.ToUpper(first)) + name[size:], nil
}

// checkFieldType rejects types the wire format cannot carry at all.
func checkFieldType(name string, t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("field %q has no type", name)
	}
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return fmt.Errorf("field %q has unsupported kind %s", name, t.Kind())
	}
	return nil
}

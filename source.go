package datafunctions

import (
	"bytes"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Source abstracts over polymorphic wire inputs: a whole JSON or YAML
// document decoded into plain wire values for CallFrom.
type Source interface {
	Decode() (any, error)
}

// JSONBytes wraps a JSON document.
func JSONBytes(b []byte) Source {
	return jsonSource{r: bytes.NewReader(b)}
}

// JSONReader wraps a reader producing one JSON document.
func JSONReader(r io.Reader) Source {
	return jsonSource{r: r}
}

type jsonSource struct {
	r io.Reader
}

func (s jsonSource) Decode() (any, error) {
	var v any
	dec := json.NewDecoder(s.r)
	// Keep wire numbers as json.Number so integers beyond float64's exact
	// range are not corrupted before decoding.
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// YAMLBytes wraps a YAML document.
func YAMLBytes(b []byte) Source {
	return yamlSource{r: bytes.NewReader(b)}
}

// YAMLReader wraps a reader producing one YAML document.
func YAMLReader(r io.Reader) Source {
	return yamlSource{r: r}
}

type yamlSource struct {
	r io.Reader
}

func (s yamlSource) Decode() (any, error) {
	var v any
	dec := yaml.NewDecoder(s.r)
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

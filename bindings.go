package datafunctions

import (
	"sync"

	"github.com/alexmojaki/datafunctions/schema"
)

// ReturnField is the single field name of the synthesized return record.
const ReturnField = "value"

// bindingCell is a lazy build-once cell for one schema binding. Synthesis
// inputs are deterministic, so whichever goroutine wins the race produces the
// same binding any other would have.
type bindingCell struct {
	once sync.Once
	b    *schema.Binding
	err  error
}

func (c *bindingCell) get(build func() (*schema.Binding, error)) (*schema.Binding, error) {
	c.once.Do(func() {
		c.b, c.err = build()
	})
	return c.b, c.err
}

// ParamsBinding returns the lazily-built binding for the parameters record:
// one field per serialized parameter, in declaration order. The binding is
// built on first use and cached for the lifetime of the Func.
func (f *Func) ParamsBinding() (*schema.Binding, error) {
	return f.params.get(func() (*schema.Binding, error) {
		rt, err := SynthesizeRecord(f.sig.fields)
		if err != nil {
			return nil, err
		}
		return schema.NewBinding(f.engine, rt)
	})
}

// ReturnBinding returns the lazily-built binding for the return record, a
// single-field record wrapping the declared result type. It returns (nil,
// nil) when the function has no non-error result.
func (f *Func) ReturnBinding() (*schema.Binding, error) {
	if f.sig.result == nil {
		return nil, nil
	}
	return f.ret.get(func() (*schema.Binding, error) {
		rt, err := SynthesizeRecord([]Field{{Name: ReturnField, Type: f.sig.result}})
		if err != nil {
			return nil, err
		}
		return schema.NewBinding(f.engine, rt)
	})
}

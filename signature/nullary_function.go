package signature

import (
	"sync/atomic"

	"github.com/fritzo/pomagma-sub000/carrier"
)

// NullaryFunction is a single-valued constant over the carrier (spec.md
// §3, §4.E). Its value is installed at most once per epoch and merged
// thereafter via the carrier's SetOrMerge, exactly like every other
// function slot.
type NullaryFunction struct {
	name           string
	c              *carrier.Carrier
	value          uint32
	insertCallback func(val Ob)
}

// NewNullaryFunction allocates an unset constant.
func NewNullaryFunction(name string, c *carrier.Carrier, insertCallback func(val Ob)) *NullaryFunction {
	return &NullaryFunction{name: name, c: c, insertCallback: insertCallback}
}

// Name returns the constant's declared name.
func (f *NullaryFunction) Name() string { return f.name }

// Find returns the constant's value and whether it has been set.
func (f *NullaryFunction) Find() (Ob, bool) {
	v := atomic.LoadUint32(&f.value)
	if v == 0 {
		return 0, false
	}
	return Ob(v), true
}

// Insert installs or merges val into the constant's slot (spec.md §4.E:
// nullary functions behave exactly like any other function's single
// output slot).
func (f *NullaryFunction) Insert(val Ob) error {
	wasUnset, err := f.c.SetOrMerge(&f.value, val)
	if err != nil {
		return err
	}
	if wasUnset && f.insertCallback != nil {
		f.insertCallback(val)
	}
	return nil
}

// UnsafeMerge updates the slot if it currently points at dep.
func (f *NullaryFunction) UnsafeMerge(dep Ob, find func(Ob) Ob) {
	old := atomic.LoadUint32(&f.value)
	if Ob(old) == dep {
		atomic.StoreUint32(&f.value, uint32(find(dep)))
	}
}

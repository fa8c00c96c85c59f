package signature

import (
	"sync"
	"sync/atomic"

	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/denseset"
)

// InjectiveFunction is a unary function whose inverse is also a partial
// function (spec.md §3, §4.E): f(a)=b and f(a')=b imply a=a'. The forward
// direction is a dense array of carrier-merge slots; the inverse is a
// mutex-guarded map, since the standard library has no off-the-shelf
// concurrent map suited to the merge-and-compact traffic an inverse index
// sees (documented in the design ledger).
type InjectiveFunction struct {
	name           string
	c              *carrier.Carrier
	values         []uint32
	defined        *denseset.DenseSet // args for which f is set, LETS_INJECTIVE_FUNCTION_LX's backing set
	definedInverse *denseset.DenseSet // vals for which f^-1 is set, LETS_INJECTIVE_FUNCTION_RX's backing set
	invMu          sync.Mutex
	inverse        map[Ob]Ob
	insertCallback func(arg, val Ob)
}

// NewInjectiveFunction allocates an empty injective function over c's id
// space.
func NewInjectiveFunction(name string, c *carrier.Carrier, insertCallback func(arg, val Ob)) *InjectiveFunction {
	return &InjectiveFunction{
		name:           name,
		c:              c,
		values:         make([]uint32, c.Capacity()+1),
		defined:        denseset.New(c.Capacity()),
		definedInverse: denseset.New(c.Capacity()),
		inverse:        make(map[Ob]Ob),
		insertCallback: insertCallback,
	}
}

// Defined returns the set of args for which f is set.
func (f *InjectiveFunction) Defined() *denseset.DenseSet { return f.defined }

// DefinedInverse returns the set of vals for which f^-1 is set.
func (f *InjectiveFunction) DefinedInverse() *denseset.DenseSet { return f.definedInverse }

// Name returns the function's declared name.
func (f *InjectiveFunction) Name() string { return f.name }

// Find returns f(arg) and whether it is set.
func (f *InjectiveFunction) Find(arg Ob) (Ob, bool) {
	v := atomic.LoadUint32(&f.values[arg])
	if v == 0 {
		return 0, false
	}
	return Ob(v), true
}

// FindInverse returns the unique arg with f(arg)=val, if any.
func (f *InjectiveFunction) FindInverse(val Ob) (Ob, bool) {
	f.invMu.Lock()
	defer f.invMu.Unlock()
	arg, ok := f.inverse[val]
	return arg, ok
}

// Insert installs or merges f(arg)=val (spec.md §4.D step 1: set-or-merge
// the forward slot, then record the inverse).
func (f *InjectiveFunction) Insert(arg, val Ob) error {
	wasUnset, err := f.c.SetOrMerge(&f.values[arg], val)
	if err != nil {
		return err
	}
	if !wasUnset {
		return nil
	}
	f.defined.Insert(arg)
	f.definedInverse.Insert(val)
	f.invMu.Lock()
	f.inverse[val] = arg
	f.invMu.Unlock()
	if f.insertCallback != nil {
		f.insertCallback(arg, val)
	}
	return nil
}

// UnsafeMerge reindexes every row/inverse entry mentioning dep to rep.
func (f *InjectiveFunction) UnsafeMerge(dep Ob, find func(Ob) Ob) {
	rep := find(dep)

	if old := atomic.LoadUint32(&f.values[dep]); old != 0 {
		atomic.StoreUint32(&f.values[dep], 0)
		f.defined.Remove(dep)
		f.Insert(rep, find(Ob(old)))
	}

	f.invMu.Lock()
	depArgsVal, hadDep := f.inverse[dep]
	if hadDep {
		delete(f.inverse, dep)
	}
	f.invMu.Unlock()
	if hadDep {
		f.definedInverse.Remove(dep)
		f.Insert(find(depArgsVal), rep)
	}
}

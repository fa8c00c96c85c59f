package signature

import (
	"sync"
	"sync/atomic"

	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/denseset"
)

// SymmetricFunction is a BinaryFunction with f(a,b)=f(b,a) (spec.md §3,
// §4.D). Every operation canonicalizes its argument pair to (min,max)
// before touching storage, so the underlying tiles only ever see the
// upper triangle; Lx and Rx alias the same support rows, mirroring
// BinaryRelation's symmetric storage sharing.
type SymmetricFunction struct {
	name           string
	c              *carrier.Carrier
	dim            int
	values         []uint32
	support        []*denseset.DenseSet // support[a] = {b : f(a,b) or f(b,a) defined}
	invMu          sync.Mutex
	vlr            map[Ob]map[PairKey]struct{}
	vLr            map[PairKey]map[Ob]struct{}
	insertCallback func(lhs, rhs, val Ob)
}

// NewSymmetricFunction allocates an empty symmetric function over c's id
// space.
func NewSymmetricFunction(name string, c *carrier.Carrier, insertCallback func(lhs, rhs, val Ob)) *SymmetricFunction {
	dim := roundUpToTile(c.Capacity() + 1)
	f := &SymmetricFunction{
		name:           name,
		c:              c,
		dim:            dim,
		values:         make([]uint32, dim*dim),
		support:        make([]*denseset.DenseSet, dim),
		vlr:            make(map[Ob]map[PairKey]struct{}),
		vLr:            make(map[PairKey]map[Ob]struct{}),
		insertCallback: insertCallback,
	}
	for i := 0; i < dim; i++ {
		f.support[i] = denseset.New(c.Capacity())
	}
	return f
}

// Name returns the function's declared name.
func (f *SymmetricFunction) Name() string { return f.name }

func canonical(lhs, rhs Ob) (Ob, Ob) {
	if lhs <= rhs {
		return lhs, rhs
	}
	return rhs, lhs
}

func (f *SymmetricFunction) slot(lhs, rhs Ob) *uint32 {
	a, b := canonical(lhs, rhs)
	return &f.values[tiledOffset(int(a), int(b), f.dim)]
}

// Find returns f(lhs,rhs) and whether it is set. Order insensitive.
func (f *SymmetricFunction) Find(lhs, rhs Ob) (Ob, bool) {
	v := atomic.LoadUint32(f.slot(lhs, rhs))
	if v == 0 {
		return 0, false
	}
	return Ob(v), true
}

// Support returns the set of b such that f(a,b) (in either argument
// order) is defined.
func (f *SymmetricFunction) Support(a Ob) *denseset.DenseSet { return f.support[a] }

func (f *SymmetricFunction) addInverse(a, b, val Ob) {
	f.invMu.Lock()
	defer f.invMu.Unlock()
	if f.vlr[val] == nil {
		f.vlr[val] = make(map[PairKey]struct{})
	}
	f.vlr[val][PairKey{a, b}] = struct{}{}
	k := PairKey{val, a}
	if f.vLr[k] == nil {
		f.vLr[k] = make(map[Ob]struct{})
	}
	f.vLr[k][b] = struct{}{}
	if a != b {
		k2 := PairKey{val, b}
		if f.vLr[k2] == nil {
			f.vLr[k2] = make(map[Ob]struct{})
		}
		f.vLr[k2][a] = struct{}{}
	}
}

func (f *SymmetricFunction) removeInverse(a, b, val Ob) {
	f.invMu.Lock()
	defer f.invMu.Unlock()
	delete(f.vlr[val], PairKey{a, b})
	if len(f.vlr[val]) == 0 {
		delete(f.vlr, val)
	}
	k := PairKey{val, a}
	delete(f.vLr[k], b)
	if len(f.vLr[k]) == 0 {
		delete(f.vLr, k)
	}
	if a != b {
		k2 := PairKey{val, b}
		delete(f.vLr[k2], a)
		if len(f.vLr[k2]) == 0 {
			delete(f.vLr, k2)
		}
	}
}

// IterValArg returns the co-argument c such that f(arg,c)=val, for either
// argument order (spec.md §4.D's symmetric lookup, used by
// FOR_SYMMETRIC_FUNCTION_VAL).
func (f *SymmetricFunction) IterValArg(val, arg Ob) []Ob {
	f.invMu.Lock()
	defer f.invMu.Unlock()
	m := f.vLr[PairKey{val, arg}]
	out := make([]Ob, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	return out
}

// Insert installs or merges f(lhs,rhs)=val. Idempotent under argument
// swap: Insert(a,b,v) and Insert(b,a,v) touch the same slot (spec.md §8
// scenario 5, symmetric idempotence).
func (f *SymmetricFunction) Insert(lhs, rhs, val Ob) error {
	a, b := canonical(lhs, rhs)
	wasUnset, err := f.c.SetOrMerge(f.slot(a, b), val)
	if err != nil {
		return err
	}
	if !wasUnset {
		return nil
	}
	f.support[a].Insert(b)
	if a != b {
		f.support[b].Insert(a)
	}
	f.addInverse(a, b, val)
	if f.insertCallback != nil {
		f.insertCallback(a, b, val)
	}
	return nil
}

// UnsafeMerge reinserts every pair touching dep under rep=find(dep),
// mirroring BinaryFunction.UnsafeMerge but over the canonical upper
// triangle only.
func (f *SymmetricFunction) UnsafeMerge(dep Ob, find func(Ob) Ob) {
	rep := find(dep)

	var coArgs []Ob
	it := f.support[dep].Iterate()
	for {
		c, ok := it.Next()
		if !ok {
			break
		}
		coArgs = append(coArgs, c)
	}
	for _, c := range coArgs {
		val, ok := f.Find(dep, c)
		if !ok {
			continue
		}
		a, b := canonical(dep, c)
		f.removeInverse(a, b, val)
		atomic.StoreUint32(f.slot(a, b), 0)
		nc := c
		if nc == dep {
			nc = rep
		} else {
			nc = find(nc)
		}
		f.support[c].Remove(dep)
		f.Insert(rep, nc, find(val))
	}
	f.support[dep].Clear()

	// Pairs whose stored value is dep but whose canonical arguments were
	// untouched above (neither a nor b is dep) are unreachable through
	// support[dep]; vlr is the value-keyed inverse index built for
	// exactly this lookup (spec.md §4.D step 2; §8 scenario 2). Rewrite
	// the slot directly rather than going through Insert/SetOrMerge,
	// which discards the resolved value when the slot is already set.
	f.invMu.Lock()
	pairs := make([]PairKey, 0, len(f.vlr[dep]))
	for pair := range f.vlr[dep] {
		pairs = append(pairs, pair)
	}
	f.invMu.Unlock()
	for _, pair := range pairs {
		if pair.A == dep || pair.B == dep {
			continue
		}
		f.removeInverse(pair.A, pair.B, dep)
		atomic.StoreUint32(f.slot(pair.A, pair.B), uint32(rep))
		f.addInverse(pair.A, pair.B, rep)
	}
}

package signature

import (
	"sync"
	"sync/atomic"

	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/denseset"
)

type PairKey struct{ A, B Ob }

// BinaryFunction is a partial function of two arguments, stored tile-
// addressed per spec.md §4.D ("tiles are 8x8 obs, matching the original's
// cache-line-friendly row/column scan pattern but doubled from the old
// 4x4 scheme"). Vlr/VLr/VRl are the value-keyed inverse indices spec.md
// §4.D requires for INFER_BINARY_FUNCTION's backward lookups; they are
// mutex-guarded Go maps rather than the original's lock-free hash-sets,
// since the standard library offers no concurrent set primitive (design
// ledger entry).
type BinaryFunction struct {
	name           string
	c              *carrier.Carrier
	dim            int // rounded up to a tile multiple
	values         []uint32
	lx             []*denseset.DenseSet // forward support: Lx[lhs] = {rhs : defined}
	rx             []*denseset.DenseSet // forward support: Rx[rhs] = {lhs : defined}
	invMu          sync.Mutex
	vlr            map[Ob]map[PairKey]struct{} // val -> {(lhs,rhs)}
	vLr            map[PairKey]map[Ob]struct{} // (val,lhs) -> {rhs}
	vRl            map[PairKey]map[Ob]struct{} // (val,rhs) -> {lhs}
	insertCallback func(lhs, rhs, val Ob)
}

// NewBinaryFunction allocates an empty binary function over c's id space.
func NewBinaryFunction(name string, c *carrier.Carrier, insertCallback func(lhs, rhs, val Ob)) *BinaryFunction {
	dim := roundUpToTile(c.Capacity() + 1)
	f := &BinaryFunction{
		name:           name,
		c:              c,
		dim:            dim,
		values:         make([]uint32, dim*dim),
		lx:             make([]*denseset.DenseSet, dim),
		rx:             make([]*denseset.DenseSet, dim),
		vlr:            make(map[Ob]map[PairKey]struct{}),
		vLr:            make(map[PairKey]map[Ob]struct{}),
		vRl:            make(map[PairKey]map[Ob]struct{}),
		insertCallback: insertCallback,
	}
	for i := 0; i < dim; i++ {
		f.lx[i] = denseset.New(c.Capacity())
		f.rx[i] = denseset.New(c.Capacity())
	}
	return f
}

// Name returns the function's declared name.
func (f *BinaryFunction) Name() string { return f.name }

func (f *BinaryFunction) slot(lhs, rhs Ob) *uint32 {
	return &f.values[tiledOffset(int(lhs), int(rhs), f.dim)]
}

// Find returns f(lhs,rhs) and whether it is set.
func (f *BinaryFunction) Find(lhs, rhs Ob) (Ob, bool) {
	v := atomic.LoadUint32(f.slot(lhs, rhs))
	if v == 0 {
		return 0, false
	}
	return Ob(v), true
}

// Lx returns the set of rhs for which f(lhs,rhs) is defined.
func (f *BinaryFunction) Lx(lhs Ob) *denseset.DenseSet { return f.lx[lhs] }

// Rx returns the set of lhs for which f(lhs,rhs) is defined.
func (f *BinaryFunction) Rx(rhs Ob) *denseset.DenseSet { return f.rx[rhs] }

func (f *BinaryFunction) addInverse(lhs, rhs, val Ob) {
	f.invMu.Lock()
	defer f.invMu.Unlock()
	if f.vlr[val] == nil {
		f.vlr[val] = make(map[PairKey]struct{})
	}
	f.vlr[val][PairKey{lhs, rhs}] = struct{}{}

	kL := PairKey{val, lhs}
	if f.vLr[kL] == nil {
		f.vLr[kL] = make(map[Ob]struct{})
	}
	f.vLr[kL][rhs] = struct{}{}

	kR := PairKey{val, rhs}
	if f.vRl[kR] == nil {
		f.vRl[kR] = make(map[Ob]struct{})
	}
	f.vRl[kR][lhs] = struct{}{}
}

func (f *BinaryFunction) removeInverse(lhs, rhs, val Ob) {
	f.invMu.Lock()
	defer f.invMu.Unlock()
	delete(f.vlr[val], PairKey{lhs, rhs})
	if len(f.vlr[val]) == 0 {
		delete(f.vlr, val)
	}
	kL := PairKey{val, lhs}
	delete(f.vLr[kL], rhs)
	if len(f.vLr[kL]) == 0 {
		delete(f.vLr, kL)
	}
	kR := PairKey{val, rhs}
	delete(f.vRl[kR], lhs)
	if len(f.vRl[kR]) == 0 {
		delete(f.vRl, kR)
	}
}

// IterVal returns the (lhs,rhs) pairs currently mapping to val.
func (f *BinaryFunction) IterVal(val Ob) []PairKey {
	f.invMu.Lock()
	defer f.invMu.Unlock()
	out := make([]PairKey, 0, len(f.vlr[val]))
	for k := range f.vlr[val] {
		out = append(out, k)
	}
	return out
}

// IterValLhs returns the rhs values such that f(lhs,rhs)=val.
func (f *BinaryFunction) IterValLhs(val, lhs Ob) []Ob {
	f.invMu.Lock()
	defer f.invMu.Unlock()
	m := f.vLr[PairKey{val, lhs}]
	out := make([]Ob, 0, len(m))
	for rhs := range m {
		out = append(out, rhs)
	}
	return out
}

// IterValRhs returns the lhs values such that f(lhs,rhs)=val.
func (f *BinaryFunction) IterValRhs(val, rhs Ob) []Ob {
	f.invMu.Lock()
	defer f.invMu.Unlock()
	m := f.vRl[PairKey{val, rhs}]
	out := make([]Ob, 0, len(m))
	for lhs := range m {
		out = append(out, lhs)
	}
	return out
}

// Insert installs or merges f(lhs,rhs)=val, updates forward support rows
// and the inverse indices, and fires the insert event exactly once per
// newly observed mapping (spec.md §4.D).
func (f *BinaryFunction) Insert(lhs, rhs, val Ob) error {
	wasUnset, err := f.c.SetOrMerge(f.slot(lhs, rhs), val)
	if err != nil {
		return err
	}
	if !wasUnset {
		return nil
	}
	f.lx[lhs].Insert(rhs)
	f.rx[rhs].Insert(lhs)
	f.addInverse(lhs, rhs, val)
	if f.insertCallback != nil {
		f.insertCallback(lhs, rhs, val)
	}
	return nil
}

// UnsafeMerge implements spec.md §4.D's three-step merge: (1) reinsert
// every pair whose lhs or rhs is dep under rep, (2) update values that
// pointed at dep, (3) rebuild affected inverse index entries. Called from
// inside the scheduler's strict critical section, after dep has already
// been merged into rep in the carrier.
func (f *BinaryFunction) UnsafeMerge(dep Ob, find func(Ob) Ob) {
	rep := find(dep)

	var depAsLhs []Ob
	it := f.lx[dep].Iterate()
	for {
		rhs, ok := it.Next()
		if !ok {
			break
		}
		depAsLhs = append(depAsLhs, rhs)
	}
	for _, rhs := range depAsLhs {
		val, ok := f.Find(dep, rhs)
		if !ok {
			continue
		}
		f.removeInverse(dep, rhs, val)
		f.rx[rhs].Remove(dep)
		atomic.StoreUint32(f.slot(dep, rhs), 0)
		f.Insert(rep, find(rhs), find(val))
	}
	f.lx[dep].Clear()

	var depAsRhs []Ob
	it2 := f.rx[dep].Iterate()
	for {
		lhs, ok := it2.Next()
		if !ok {
			break
		}
		depAsRhs = append(depAsRhs, lhs)
	}
	for _, lhs := range depAsRhs {
		val, ok := f.Find(lhs, dep)
		if !ok {
			continue
		}
		f.removeInverse(lhs, dep, val)
		f.lx[lhs].Remove(dep)
		atomic.StoreUint32(f.slot(lhs, dep), 0)
		f.Insert(find(lhs), rep, find(val))
	}
	f.rx[dep].Clear()

	// Entries whose stored value is dep but whose arguments were
	// untouched by the two loops above (neither lhs nor rhs is dep) are
	// unreachable through lx[dep]/rx[dep]; vlr is the value-keyed inverse
	// index built for exactly this lookup (spec.md §4.D step 2; §8
	// scenario 2). Rewrite the slot directly rather than going through
	// Insert/SetOrMerge, which discards the resolved value when the slot
	// is already set.
	for _, pair := range f.IterVal(dep) {
		if pair.A == dep || pair.B == dep {
			continue
		}
		f.removeInverse(pair.A, pair.B, dep)
		atomic.StoreUint32(f.slot(pair.A, pair.B), uint32(rep))
		f.addInverse(pair.A, pair.B, rep)
	}
}

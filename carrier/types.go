package carrier

import (
	"sync"
	"sync/atomic"

	"github.com/fritzo/pomagma-sub000/denseset"
)

// Ob is an unsigned element identity in 1..N; 0 denotes "none" (spec.md §3).
type Ob = denseset.Ob

// MergeCallback is invoked once per successful demotion, after reps[dep]
// has been installed as rep. It runs synchronously inside Merge; fanning
// the event out to a signature's tables and a scheduler's queues is the
// caller's job (spec.md §4.B, §9 "merge callbacks as raw function
// pointers" → a typed callback instead).
type MergeCallback func(dep, rep Ob)

// Carrier is the union-find over live obs described in spec.md §4.B.
//
// reps forms a union-find forest: reps[rep]=rep and rep<=ob for every live
// ob; a removed ob has reps[ob]=0. Find, Equal, EnsureEqual, SetAndMerge
// and SetOrMerge take mu in shared mode; UnsafeRemove takes it uniquely.
// Merge itself never blocks on mu beyond a shared hold, matching the
// teacher's muVert/muEdgeAdj split (core/methods.go) and the original's
// relaxed/strict split (grower/carrier.hpp).
type Carrier struct {
	capacity  int
	support   *denseset.DenseSet
	reps      []uint32 // reps[ob], indices 0..capacity
	itemCount int64    // atomic
	repCount  int64    // atomic

	mu sync.RWMutex

	mergeCallback MergeCallback
}

// New allocates a Carrier over ids 1..capacity. mergeCallback may be nil.
func New(capacity int, mergeCallback MergeCallback) *Carrier {
	return &Carrier{
		capacity:      capacity,
		support:       denseset.New(capacity),
		reps:          make([]uint32, capacity+1),
		mergeCallback: mergeCallback,
	}
}

// Capacity returns N, the largest id the carrier can hold.
func (c *Carrier) Capacity() int { return c.capacity }

// Support returns the set of currently live ids. Callers must not mutate
// the returned set directly; use TryInsert/UnsafeRemove.
func (c *Carrier) Support() *denseset.DenseSet { return c.support }

// ItemCount returns the number of live obs.
func (c *Carrier) ItemCount() int { return int(atomic.LoadInt64(&c.itemCount)) }

// RepCount returns the number of canonical reps (equivalence classes).
func (c *Carrier) RepCount() int { return int(atomic.LoadInt64(&c.repCount)) }

// Contains reports whether ob is live.
func (c *Carrier) Contains(ob Ob) bool {
	if ob == 0 || int(ob) > c.capacity {
		return false
	}
	return c.support.Contains(ob)
}

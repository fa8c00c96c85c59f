// Package carrier: union-find operations (find/merge/insert/remove).
//
// This file mirrors core/methods.go's split from types.go: types.go holds
// the struct and cheap attribute getters, this file holds the operations
// that actually touch the union-find forest.
package carrier

import (
	"fmt"
	"sync/atomic"
)

// TryInsert returns the smallest unused id, marking it live with
// reps[id]=id. Returns ErrFull if every id in 1..N is already live
// (spec.md §4.B).
//
// Complexity: O(word count) to find the free bit.
func (c *Carrier) TryInsert() (Ob, error) {
	ob, ok := c.support.TryInsertUnused()
	if !ok {
		return 0, ErrFull
	}
	atomic.StoreUint32(&c.reps[ob], uint32(ob))
	atomic.AddInt64(&c.itemCount, 1)
	atomic.AddInt64(&c.repCount, 1)
	return ob, nil
}

// UnsafeRemove removes ob from the carrier. Preconditions (spec.md §4.B):
// ob is live, and either non-representative, or representative with no
// live ob still pointing to it. The precondition is checked: a non-live
// ob returns ErrNotLive, and a representative that a live ob still points
// to panics. By the time a caller demotes an ob and scrubs it from every
// table, the carrier itself is the last witness that the demotion is
// complete, so this check also doubles as the original's "outstanding
// deps" assertion (SPEC_FULL.md, supplemented feature 7).
func (c *Carrier) UnsafeRemove(ob Ob) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.Contains(ob) {
		return ErrNotLive
	}
	rep := Ob(atomic.LoadUint32(&c.reps[ob]))
	if rep == ob {
		for other := Ob(1); int(other) <= c.capacity; other++ {
			if other == ob || !c.support.Contains(other) {
				continue
			}
			if Ob(atomic.LoadUint32(&c.reps[other])) == ob {
				panic(fmt.Errorf("carrier: unsafe_remove: rep %d still has outstanding dep %d", ob, other))
			}
		}
		atomic.AddInt64(&c.repCount, -1)
	}
	atomic.StoreUint32(&c.reps[ob], 0)
	c.support.Remove(ob)
	atomic.AddInt64(&c.itemCount, -1)
	return nil
}

// Find returns the canonical representative of ob, compressing the path
// with lock-free path halving as it walks (spec.md §4.B).
//
// Complexity: amortized O(α(N)).
func (c *Carrier) Find(ob Ob) Ob {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.find(ob)
}

func (c *Carrier) find(ob Ob) Ob {
	if !c.Contains(ob) {
		panic(fmt.Errorf("carrier: find: unsupported ob %d", ob))
	}
	for {
		rep := Ob(atomic.LoadUint32(&c.reps[ob]))
		if rep == ob {
			return ob
		}
		grand := Ob(atomic.LoadUint32(&c.reps[rep]))
		// Path halving: best-effort, races are harmless since find is
		// idempotent and the tree only ever gets shallower.
		atomic.CompareAndSwapUint32(&c.reps[ob], uint32(rep), uint32(grand))
		ob = grand
	}
}

// Equal reports whether lhs and rhs are in the same equivalence class.
func (c *Carrier) Equal(lhs, rhs Ob) bool {
	return c.Find(lhs) == c.Find(rhs)
}

// Merge equates dep and rep, demoting the winner of a (dep > rep) ordering
// comparison among their current representatives. Retries the
// compare-and-swap until the edge is installed or collapses into an
// existing merge (spec.md §4.B). Invokes the carrier's MergeCallback
// exactly once per successful demotion.
//
// Merge never blocks on the scheduler's process-wide strict critical
// section; callers that need merges serialized against all other work
// arrange that externally (spec.md §5).
func (c *Carrier) Merge(dep, rep Ob) (Ob, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if dep == rep {
		return c.find(dep), nil
	}
	if !c.Contains(dep) || !c.Contains(rep) {
		return 0, ErrNotLive
	}
	for {
		curDep := c.find(dep)
		curRep := c.find(rep)
		if curDep == curRep {
			return curRep, nil
		}
		if curDep < curRep {
			curDep, curRep = curRep, curDep
		}
		if atomic.CompareAndSwapUint32(&c.reps[curDep], uint32(curDep), uint32(curRep)) {
			atomic.AddInt64(&c.repCount, -1)
			if c.mergeCallback != nil {
				c.mergeCallback(curDep, curRep)
			}
			return curRep, nil
		}
		// Someone else updated reps[curDep] first; re-read and retry.
	}
}

// EnsureEqual orders lhs/rhs and merges them, or is a no-op when they are
// already equal. Returns the winning representative.
func (c *Carrier) EnsureEqual(lhs, rhs Ob) (Ob, error) {
	if lhs == rhs {
		return c.Find(lhs), nil
	}
	dep, rep := lhs, rhs
	if dep < rep {
		dep, rep = rep, dep
	}
	return c.Merge(dep, rep)
}

// SetAndMerge atomically installs source into *slot if it is unoccupied
// (zero); otherwise it ensures *slot's current value is equal to source,
// repeatedly advancing *slot to the winning rep as merges land. Reports
// whether the slot was previously unoccupied (spec.md §4.B).
func (c *Carrier) SetAndMerge(slot *uint32, source Ob) (wasUnset bool, err error) {
	if atomic.CompareAndSwapUint32(slot, 0, uint32(source)) {
		return true, nil
	}
	for {
		old := Ob(atomic.LoadUint32(slot))
		merged, err := c.EnsureEqual(source, old)
		if err != nil {
			return false, err
		}
		if merged == old {
			return false, nil
		}
		if atomic.CompareAndSwapUint32(slot, uint32(old), uint32(merged)) {
			return false, nil
		}
		source = merged
	}
}

// SetOrMerge atomically installs source into *slot if unoccupied;
// otherwise it ensures equality once (a single merge, no retry loop) and
// leaves *slot as-is. Reports whether the slot was previously unoccupied.
func (c *Carrier) SetOrMerge(slot *uint32, source Ob) (wasUnset bool, err error) {
	if atomic.CompareAndSwapUint32(slot, 0, uint32(source)) {
		return true, nil
	}
	old := Ob(atomic.LoadUint32(slot))
	_, err = c.EnsureEqual(source, old)
	return false, err
}

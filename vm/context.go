package vm

import (
	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/denseset"
)

// Context is the per-task register file a Machine executes a Program
// against (spec.md §4.G). Unlike the source's thread-local static
// Context, each worker task owns one explicitly and passes it by
// reference (spec.md §9: "replace with a context owned by the worker
// task and passed by reference; no thread-local state").
type Context struct {
	Obs   [256]carrier.Ob
	Sets  [256]*denseset.DenseSet
	Block int

	// Trace is an optional diagnostic depth slot, the Go stand-in for the
	// source's ad hoc profiler hook (spec.md §9 supplemented feature:
	// "profiler hook becomes an optional debug-level log statement").
	// Reset zeroes it; Machine does not update it.
	Trace *int
}

// Reset clears a Context for reuse by the next task, avoiding a fresh
// allocation per execution on the hot path.
func (c *Context) Reset() {
	for i := range c.Obs {
		c.Obs[i] = 0
	}
	for i := range c.Sets {
		c.Sets[i] = nil
	}
	c.Block = 0
	if c.Trace != nil {
		*c.Trace = 0
	}
}

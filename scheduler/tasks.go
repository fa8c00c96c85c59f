package scheduler

import "github.com/fritzo/pomagma-sub000/carrier"

// Task kinds, one struct per queue named in spec.md §4.I.
type (
	// ExistsTask fires once per newly created ob.
	ExistsTask struct{ Ob carrier.Ob }

	// UnaryRelationTask fires when ob enters the unary relation rel.
	UnaryRelationTask struct {
		Rel string
		Ob  carrier.Ob
	}

	// PositiveOrderTask fires when (l,r) enters an asymmetric positive
	// order relation (e.g. LESS).
	PositiveOrderTask struct {
		Rel  string
		L, R carrier.Ob
	}

	// NegativeOrderTask fires when (l,r) enters an asymmetric negative
	// order relation (e.g. NLESS).
	NegativeOrderTask struct {
		Rel  string
		L, R carrier.Ob
	}

	// BinaryRelationTask fires when (l,r) enters a plain binary
	// relation.
	BinaryRelationTask struct {
		Rel  string
		L, R carrier.Ob
	}

	// NullaryFunctionTask fires the first time a nullary function is set.
	NullaryFunctionTask struct{ Fun string }

	// InjectiveFunctionTask fires when a new (arg,val) mapping enters an
	// injective function.
	InjectiveFunctionTask struct {
		Fun string
		Arg carrier.Ob
	}

	// BinaryFunctionTask fires when a new (l,r,val) mapping enters a
	// binary function.
	BinaryFunctionTask struct {
		Fun  string
		L, R carrier.Ob
	}

	// SymmetricFunctionTask fires when a new (l,r,val) mapping enters a
	// symmetric function.
	SymmetricFunctionTask struct {
		Fun  string
		L, R carrier.Ob
	}

	// MergeTask scrubs Dep, already demoted by the carrier, from every
	// table, holding the strict critical section in unique mode.
	MergeTask struct{ Dep carrier.Ob }

	// CleanupTask re-runs a small or block-sharded cleanup program,
	// identified by the index spec.md §4.H defines.
	CleanupTask struct{ Index int }

	// SampleTask draws one new fact from the sampler.
	SampleTask struct{}

	// AssumeTask inserts a fact from the load-facts phase, expressed as
	// an already-resolved tuple of one to three obs rather than a parsed
	// expression tree (parsing language expressions is out of scope, see
	// DESIGN.md).
	AssumeTask struct {
		Fun  string
		Args []carrier.Ob
	}
)

// Package agenda classifies compiled rule programs by their leading
// opcode and routes runtime events to the entry points that should fire
// on them (spec.md §4.H).
package agenda

import (
	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/fritzo/pomagma-sub000/vm"
)

// Agenda holds every loaded program, sorted into the buckets spec.md
// §4.H describes: an exists queue, per-symbol keyed queues for relation
// and function inserts, a large (block-sharded) cleanup list, and a
// small cleanup list for everything else.
type Agenda struct {
	exists []*vm.Program

	unaryRelation  map[signature.Handle][]*vm.Program
	binaryRelation map[signature.Handle][]*vm.Program
	nullaryFn      map[signature.Handle][]*vm.Program
	injectiveFn    map[signature.Handle][]*vm.Program
	binaryFn       map[signature.Handle][]*vm.Program
	symmetricFn    map[signature.Handle][]*vm.Program

	large []*vm.Program // FOR_BLOCK-prefixed, one shard per block
	small []*vm.Program // everything else, run once per cleanup cycle

	blockCount int
}

// New builds an empty Agenda. blockCount must match the scheduler's
// configured block count, since cleanup task indices are computed as
// len(small) + len(large)*blockCount (spec.md §4.H).
func New(blockCount int) *Agenda {
	return &Agenda{
		unaryRelation:  make(map[signature.Handle][]*vm.Program),
		binaryRelation: make(map[signature.Handle][]*vm.Program),
		nullaryFn:      make(map[signature.Handle][]*vm.Program),
		injectiveFn:    make(map[signature.Handle][]*vm.Program),
		binaryFn:       make(map[signature.Handle][]*vm.Program),
		symmetricFn:    make(map[signature.Handle][]*vm.Program),
		blockCount:     blockCount,
	}
}

// Add classifies prog by its leading opcode and files it into the
// matching bucket. Programs with no instructions are ignored.
func (a *Agenda) Add(prog *vm.Program) {
	if prog.Len() == 0 {
		return
	}
	head := prog.Instrs[0]
	switch head.Op {
	case vm.GIVEN_EXISTS:
		a.exists = append(a.exists, prog)
	case vm.GIVEN_UNARY_RELATION:
		h := head.Sym[0]
		a.unaryRelation[h] = append(a.unaryRelation[h], prog)
	case vm.GIVEN_BINARY_RELATION:
		h := head.Sym[0]
		a.binaryRelation[h] = append(a.binaryRelation[h], prog)
	case vm.GIVEN_NULLARY_FUNCTION:
		h := head.Sym[0]
		a.nullaryFn[h] = append(a.nullaryFn[h], prog)
	case vm.GIVEN_INJECTIVE_FUNCTION:
		h := head.Sym[0]
		a.injectiveFn[h] = append(a.injectiveFn[h], prog)
	case vm.GIVEN_BINARY_FUNCTION:
		h := head.Sym[0]
		a.binaryFn[h] = append(a.binaryFn[h], prog)
	case vm.GIVEN_SYMMETRIC_FUNCTION:
		h := head.Sym[0]
		a.symmetricFn[h] = append(a.symmetricFn[h], prog)
	case vm.FOR_BLOCK:
		a.large = append(a.large, prog)
	default:
		a.small = append(a.small, prog)
	}
}

// AddAll classifies every program in progs.
func (a *Agenda) AddAll(progs []*vm.Program) {
	for _, p := range progs {
		a.Add(p)
	}
}

// Exists returns the entry points that fire when a new ob is created.
func (a *Agenda) Exists() []*vm.Program { return a.exists }

// UnaryRelation returns the entry points that fire when an ob enters
// the unary relation named by h.
func (a *Agenda) UnaryRelation(h signature.Handle) []*vm.Program { return a.unaryRelation[h] }

// BinaryRelation returns the entry points that fire when a pair enters
// the binary relation named by h.
func (a *Agenda) BinaryRelation(h signature.Handle) []*vm.Program { return a.binaryRelation[h] }

// NullaryFunction returns the entry points that fire when the nullary
// function named by h is first set.
func (a *Agenda) NullaryFunction(h signature.Handle) []*vm.Program { return a.nullaryFn[h] }

// InjectiveFunction returns the entry points that fire when a new
// mapping is inserted into the injective function named by h.
func (a *Agenda) InjectiveFunction(h signature.Handle) []*vm.Program { return a.injectiveFn[h] }

// BinaryFunction returns the entry points that fire when a new tuple
// enters the binary function named by h.
func (a *Agenda) BinaryFunction(h signature.Handle) []*vm.Program { return a.binaryFn[h] }

// SymmetricFunction returns the entry points that fire when a new
// tuple enters the symmetric function named by h.
func (a *Agenda) SymmetricFunction(h signature.Handle) []*vm.Program { return a.symmetricFn[h] }

// CleanupCount returns the total number of cleanup task indices: one
// per small-cleanup program, plus one per (large-cleanup program,
// block) pair.
func (a *Agenda) CleanupCount() int {
	return len(a.small) + len(a.large)*a.blockCount
}

// Cleanup resolves a cleanup task index into the program to run and,
// for block-sharded programs, the block to run it on. index must be in
// [0, CleanupCount()).
func (a *Agenda) Cleanup(index int) (prog *vm.Program, block int, isBlock bool) {
	if index < len(a.small) {
		return a.small[index], 0, false
	}
	rem := index - len(a.small)
	return a.large[rem/a.blockCount], rem % a.blockCount, true
}

package vm

import (
	"fmt"

	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/denseset"
	"github.com/fritzo/pomagma-sub000/signature"
)

// DefaultBlockSize is the cleanup-shard width IF_BLOCK partitions the
// carrier by (spec.md §4.I, §8 scenario 4).
const DefaultBlockSize = 64

// Machine interprets compiled Programs against a bound Signature (spec.md
// §4.G). One Machine is shared read-only across workers; each worker
// supplies its own Context, matching "a context owned by the worker task"
// (spec.md §9).
type Machine struct {
	sig       *signature.Signature
	BlockSize int
}

// New binds a Machine to sig. BlockSize defaults to DefaultBlockSize.
func New(sig *signature.Signature) *Machine {
	return &Machine{sig: sig, BlockSize: DefaultBlockSize}
}

// Execute runs prog against a fresh binding of args to its leading
// GIVEN_* op's parameters (spec.md §4.G, supplemented feature: "execute
// overloads by arity" become one Execute taking a variadic ob list,
// validated against the leading op's declared parameter count instead of
// one method per arity). A program that does not start with a GIVEN_* op
// takes no args and runs from its first op.
func (m *Machine) Execute(prog *Program, ctx *Context, args ...carrier.Ob) error {
	if prog.Len() == 0 {
		return nil
	}
	head := prog.Instrs[0]
	if head.Op == FOR_BLOCK {
		return fmt.Errorf("vm: %s is block-sharded, call ExecuteBlock instead", prog.Name)
	}
	switch head.Op {
	case GIVEN_EXISTS, GIVEN_UNARY_RELATION, GIVEN_BINARY_RELATION,
		GIVEN_NULLARY_FUNCTION, GIVEN_INJECTIVE_FUNCTION,
		GIVEN_BINARY_FUNCTION, GIVEN_SYMMETRIC_FUNCTION:
	default:
		if len(args) != 0 {
			return fmt.Errorf("vm: %s expects 0 args, got %d", prog.Name, len(args))
		}
		return m.execute(prog.Instrs, 0, ctx)
	}
	if len(head.Reg) != len(args) {
		return fmt.Errorf("vm: %s expects %d args, got %d", prog.Name, len(head.Reg), len(args))
	}
	for i, reg := range head.Reg {
		ctx.Obs[reg] = args[i]
	}
	return m.execute(prog.Instrs, 1, ctx)
}

// ExecuteBlock runs one shard of a FOR_BLOCK-prefixed program (spec.md
// §4.G, §4.I): only the scheduler's cleanup step calls this.
func (m *Machine) ExecuteBlock(prog *Program, ctx *Context, block int) error {
	if prog.Len() == 0 || prog.Instrs[0].Op != FOR_BLOCK {
		return fmt.Errorf("vm: %s is not FOR_BLOCK-prefixed", prog.Name)
	}
	ctx.Block = block
	return m.execute(prog.Instrs, 1, ctx)
}

func (m *Machine) carrier() *carrier.Carrier { return m.sig.Carrier() }

// execute runs instrs[pc:] against ctx, recursing on the program counter
// exactly as spec.md §4.G describes: "every bind-then-body op calls
// _execute(next_pc, context) and returns; there is no explicit return
// op."
func (m *Machine) execute(instrs []Instruction, pc int, ctx *Context) error {
	if pc >= len(instrs) {
		return nil
	}
	in := instrs[pc]
	c := m.carrier()

	switch in.Op {
	case PADDING:
		return ErrIllegalOp

	case SEQUENCE:
		// The source packs multiple compiled entry points into one byte
		// stream and uses SEQUENCE's jump field to splice shared tails.
		// This tree-shaped Program representation has no shared byte
		// stream to splice, so SEQUENCE is a structural pass-through here
		// (documented simplification, see DESIGN.md).
		return m.execute(instrs, pc+1, ctx)

	case FOR_BLOCK:
		return fmt.Errorf("vm: FOR_BLOCK only legal as the first op")

	case GIVEN_EXISTS, GIVEN_UNARY_RELATION, GIVEN_BINARY_RELATION,
		GIVEN_NULLARY_FUNCTION, GIVEN_INJECTIVE_FUNCTION,
		GIVEN_BINARY_FUNCTION, GIVEN_SYMMETRIC_FUNCTION:
		return fmt.Errorf("vm: %v only legal as the first op", in.Op)

	case LETS_UNARY_RELATION:
		r := m.sig.UnaryRelationByHandle(in.Sym[0])
		ctx.Sets[in.Reg[0]] = r.Set()
		return m.execute(instrs, pc+1, ctx)

	case LETS_BINARY_RELATION_LX:
		r := m.sig.BinaryRelationByHandle(in.Sym[0])
		ctx.Sets[in.Reg[1]] = r.Lx(ctx.Obs[in.Reg[0]])
		return m.execute(instrs, pc+1, ctx)

	case LETS_BINARY_RELATION_RX:
		r := m.sig.BinaryRelationByHandle(in.Sym[0])
		ctx.Sets[in.Reg[1]] = r.Rx(ctx.Obs[in.Reg[0]])
		return m.execute(instrs, pc+1, ctx)

	case LETS_INJECTIVE_FUNCTION_LX:
		f := m.sig.InjectiveFunctionByHandle(in.Sym[0])
		ctx.Sets[in.Reg[0]] = f.Defined()
		return m.execute(instrs, pc+1, ctx)

	case LETS_INJECTIVE_FUNCTION_RX:
		f := m.sig.InjectiveFunctionByHandle(in.Sym[0])
		ctx.Sets[in.Reg[0]] = f.DefinedInverse()
		return m.execute(instrs, pc+1, ctx)

	case LETS_BINARY_FUNCTION_LX:
		f := m.sig.BinaryFunctionByHandle(in.Sym[0])
		ctx.Sets[in.Reg[1]] = f.Lx(ctx.Obs[in.Reg[0]])
		return m.execute(instrs, pc+1, ctx)

	case LETS_BINARY_FUNCTION_RX:
		f := m.sig.BinaryFunctionByHandle(in.Sym[0])
		ctx.Sets[in.Reg[1]] = f.Rx(ctx.Obs[in.Reg[0]])
		return m.execute(instrs, pc+1, ctx)

	case LETS_SYMMETRIC_FUNCTION:
		f := m.sig.SymmetricFunctionByHandle(in.Sym[0])
		ctx.Sets[in.Reg[1]] = f.Support(ctx.Obs[in.Reg[0]])
		return m.execute(instrs, pc+1, ctx)

	case FOR_ALL:
		it := c.Support().Iterate()
		for {
			ob, ok := it.Next()
			if !ok {
				return nil
			}
			ctx.Obs[in.Reg[0]] = carrier.Ob(ob)
			if err := m.execute(instrs, pc+1, ctx); err != nil {
				return err
			}
		}

	case FOR_UNARY_RELATION:
		r := m.sig.UnaryRelationByHandle(in.Sym[0])
		return m.forEachOb(r.Iterate(), in.Reg[0], instrs, pc, ctx)

	case FOR_BINARY_RELATION_LX:
		r := m.sig.BinaryRelationByHandle(in.Sym[0])
		return m.forEachOb(r.Lx(ctx.Obs[in.Reg[0]]).Iterate(), in.Reg[1], instrs, pc, ctx)

	case FOR_BINARY_RELATION_RX:
		r := m.sig.BinaryRelationByHandle(in.Sym[0])
		return m.forEachOb(r.Rx(ctx.Obs[in.Reg[0]]).Iterate(), in.Reg[1], instrs, pc, ctx)

	case FOR_NULLARY_FUNCTION:
		f := m.sig.NullaryFunctionByHandle(in.Sym[0])
		if v, ok := f.Find(); ok {
			ctx.Obs[in.Reg[0]] = v
			return m.execute(instrs, pc+1, ctx)
		}
		return nil

	case FOR_INJECTIVE_FUNCTION:
		f := m.sig.InjectiveFunctionByHandle(in.Sym[0])
		if v, ok := f.Find(ctx.Obs[in.Reg[0]]); ok {
			ctx.Obs[in.Reg[1]] = v
			return m.execute(instrs, pc+1, ctx)
		}
		return nil

	case FOR_INJECTIVE_FUNCTION_INVERSE:
		f := m.sig.InjectiveFunctionByHandle(in.Sym[0])
		if a, ok := f.FindInverse(ctx.Obs[in.Reg[0]]); ok {
			ctx.Obs[in.Reg[1]] = a
			return m.execute(instrs, pc+1, ctx)
		}
		return nil

	case FOR_BINARY_FUNCTION_LHS:
		f := m.sig.BinaryFunctionByHandle(in.Sym[0])
		lhs := ctx.Obs[in.Reg[0]]
		it := f.Lx(lhs).Iterate()
		for {
			rhs, ok := it.Next()
			if !ok {
				return nil
			}
			val, ok := f.Find(lhs, carrier.Ob(rhs))
			if !ok {
				continue
			}
			ctx.Obs[in.Reg[1]] = carrier.Ob(rhs)
			ctx.Obs[in.Reg[2]] = val
			if err := m.execute(instrs, pc+1, ctx); err != nil {
				return err
			}
		}

	case FOR_BINARY_FUNCTION_RHS:
		f := m.sig.BinaryFunctionByHandle(in.Sym[0])
		rhs := ctx.Obs[in.Reg[0]]
		it := f.Rx(rhs).Iterate()
		for {
			lhs, ok := it.Next()
			if !ok {
				return nil
			}
			val, ok := f.Find(carrier.Ob(lhs), rhs)
			if !ok {
				continue
			}
			ctx.Obs[in.Reg[1]] = carrier.Ob(lhs)
			ctx.Obs[in.Reg[2]] = val
			if err := m.execute(instrs, pc+1, ctx); err != nil {
				return err
			}
		}

	case FOR_BINARY_FUNCTION_VAL:
		f := m.sig.BinaryFunctionByHandle(in.Sym[0])
		val := ctx.Obs[in.Reg[0]]
		for _, pair := range f.IterVal(val) {
			ctx.Obs[in.Reg[1]] = pair.A
			ctx.Obs[in.Reg[2]] = pair.B
			if err := m.execute(instrs, pc+1, ctx); err != nil {
				return err
			}
		}
		return nil

	case FOR_BINARY_FUNCTION_VAL_LHS:
		f := m.sig.BinaryFunctionByHandle(in.Sym[0])
		val, lhs := ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]]
		for _, rhs := range f.IterValLhs(val, lhs) {
			ctx.Obs[in.Reg[2]] = rhs
			if err := m.execute(instrs, pc+1, ctx); err != nil {
				return err
			}
		}
		return nil

	case FOR_BINARY_FUNCTION_VAL_RHS:
		f := m.sig.BinaryFunctionByHandle(in.Sym[0])
		val, rhs := ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]]
		for _, lhs := range f.IterValRhs(val, rhs) {
			ctx.Obs[in.Reg[2]] = lhs
			if err := m.execute(instrs, pc+1, ctx); err != nil {
				return err
			}
		}
		return nil

	case FOR_SYMMETRIC_FUNCTION:
		f := m.sig.SymmetricFunctionByHandle(in.Sym[0])
		a := ctx.Obs[in.Reg[0]]
		it := f.Support(a).Iterate()
		for {
			b, ok := it.Next()
			if !ok {
				return nil
			}
			val, ok := f.Find(a, carrier.Ob(b))
			if !ok {
				continue
			}
			ctx.Obs[in.Reg[1]] = carrier.Ob(b)
			ctx.Obs[in.Reg[2]] = val
			if err := m.execute(instrs, pc+1, ctx); err != nil {
				return err
			}
		}

	case FOR_SYMMETRIC_FUNCTION_VAL:
		f := m.sig.SymmetricFunctionByHandle(in.Sym[0])
		val, a := ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]]
		for _, b := range f.IterValArg(val, a) {
			ctx.Obs[in.Reg[2]] = b
			if err := m.execute(instrs, pc+1, ctx); err != nil {
				return err
			}
		}
		return nil

	case IF_BLOCK:
		ob := ctx.Obs[in.Reg[0]]
		if int(ob)/m.blockSize() == ctx.Block {
			return m.execute(instrs, pc+1, ctx)
		}
		return nil

	case IF_EQUAL:
		if c.Equal(ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]]) {
			return m.execute(instrs, pc+1, ctx)
		}
		return nil

	case IF_UNARY_RELATION:
		r := m.sig.UnaryRelationByHandle(in.Sym[0])
		if r.Contains(ctx.Obs[in.Reg[0]]) {
			return m.execute(instrs, pc+1, ctx)
		}
		return nil

	case IF_BINARY_RELATION:
		r := m.sig.BinaryRelationByHandle(in.Sym[0])
		if r.Contains(ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]]) {
			return m.execute(instrs, pc+1, ctx)
		}
		return nil

	case IF_NULLARY_FUNCTION:
		f := m.sig.NullaryFunctionByHandle(in.Sym[0])
		if v, ok := f.Find(); ok && c.Equal(v, ctx.Obs[in.Reg[0]]) {
			return m.execute(instrs, pc+1, ctx)
		}
		return nil

	case IF_INJECTIVE_FUNCTION:
		f := m.sig.InjectiveFunctionByHandle(in.Sym[0])
		if v, ok := f.Find(ctx.Obs[in.Reg[0]]); ok && c.Equal(v, ctx.Obs[in.Reg[1]]) {
			return m.execute(instrs, pc+1, ctx)
		}
		return nil

	case IF_BINARY_FUNCTION:
		f := m.sig.BinaryFunctionByHandle(in.Sym[0])
		if v, ok := f.Find(ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]]); ok && c.Equal(v, ctx.Obs[in.Reg[2]]) {
			return m.execute(instrs, pc+1, ctx)
		}
		return nil

	case IF_SYMMETRIC_FUNCTION:
		f := m.sig.SymmetricFunctionByHandle(in.Sym[0])
		if v, ok := f.Find(ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]]); ok && c.Equal(v, ctx.Obs[in.Reg[2]]) {
			return m.execute(instrs, pc+1, ctx)
		}
		return nil

	case LET_NULLARY_FUNCTION:
		f := m.sig.NullaryFunctionByHandle(in.Sym[0])
		v, ok := f.Find()
		if !ok {
			return ErrUndefinedLookup
		}
		ctx.Obs[in.Reg[0]] = v
		return m.execute(instrs, pc+1, ctx)

	case LET_INJECTIVE_FUNCTION:
		f := m.sig.InjectiveFunctionByHandle(in.Sym[0])
		v, ok := f.Find(ctx.Obs[in.Reg[0]])
		if !ok {
			return ErrUndefinedLookup
		}
		ctx.Obs[in.Reg[1]] = v
		return m.execute(instrs, pc+1, ctx)

	case LET_BINARY_FUNCTION:
		f := m.sig.BinaryFunctionByHandle(in.Sym[0])
		v, ok := f.Find(ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]])
		if !ok {
			return ErrUndefinedLookup
		}
		ctx.Obs[in.Reg[2]] = v
		return m.execute(instrs, pc+1, ctx)

	case LET_SYMMETRIC_FUNCTION:
		f := m.sig.SymmetricFunctionByHandle(in.Sym[0])
		v, ok := f.Find(ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]])
		if !ok {
			return ErrUndefinedLookup
		}
		ctx.Obs[in.Reg[2]] = v
		return m.execute(instrs, pc+1, ctx)

	case INFER_EQUAL:
		if _, err := c.EnsureEqual(ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]]); err != nil {
			return err
		}
		return m.execute(instrs, pc+1, ctx)

	case INFER_UNARY_RELATION:
		r := m.sig.UnaryRelationByHandle(in.Sym[0])
		r.Insert(ctx.Obs[in.Reg[0]])
		return m.execute(instrs, pc+1, ctx)

	case INFER_BINARY_RELATION:
		r := m.sig.BinaryRelationByHandle(in.Sym[0])
		r.Insert(ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]])
		return m.execute(instrs, pc+1, ctx)

	case INFER_NULLARY_FUNCTION:
		f := m.sig.NullaryFunctionByHandle(in.Sym[0])
		if err := f.Insert(ctx.Obs[in.Reg[0]]); err != nil {
			return err
		}
		return m.execute(instrs, pc+1, ctx)

	case INFER_INJECTIVE_FUNCTION:
		f := m.sig.InjectiveFunctionByHandle(in.Sym[0])
		if err := f.Insert(ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]]); err != nil {
			return err
		}
		return m.execute(instrs, pc+1, ctx)

	case INFER_BINARY_FUNCTION:
		f := m.sig.BinaryFunctionByHandle(in.Sym[0])
		if err := f.Insert(ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]], ctx.Obs[in.Reg[2]]); err != nil {
			return err
		}
		return m.execute(instrs, pc+1, ctx)

	case INFER_SYMMETRIC_FUNCTION:
		f := m.sig.SymmetricFunctionByHandle(in.Sym[0])
		if err := f.Insert(ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]], ctx.Obs[in.Reg[2]]); err != nil {
			return err
		}
		return m.execute(instrs, pc+1, ctx)

	case INFER_FUNCTION_FUNCTION:
		f1 := m.sig.BinaryFunctionByHandle(in.Sym[0])
		f2 := m.sig.BinaryFunctionByHandle(in.Sym[1])
		a, b := ctx.Obs[in.Reg[0]], ctx.Obs[in.Reg[1]]
		v1, ok1 := f1.Find(a, b)
		v2, ok2 := f2.Find(a, b)
		switch {
		case ok1 && ok2:
			if _, err := c.EnsureEqual(v1, v2); err != nil {
				return err
			}
		case ok1:
			if err := f2.Insert(a, b, v1); err != nil {
				return err
			}
		case ok2:
			if err := f1.Insert(a, b, v2); err != nil {
				return err
			}
		}
		return m.execute(instrs, pc+1, ctx)
	}

	return m.forOrFallthrough(in, instrs, pc, ctx)
}

// forOrFallthrough handles the FOR_{POS,NEG}* set-combination family,
// dispatched here rather than inline in the main switch since its
// operand count is parameterized (spec.md §4.G).
func (m *Machine) forOrFallthrough(in Instruction, instrs []Instruction, pc int, ctx *Context) error {
	posCount, negCount, ok := IsFor(in.Op)
	if !ok {
		return fmt.Errorf("vm: unhandled op-code %v", in.Op)
	}
	posSets := make([]*denseset.DenseSet, posCount)
	negSets := make([]*denseset.DenseSet, negCount)
	for i := 0; i < posCount; i++ {
		posSets[i] = ctx.Sets[in.Reg[i]]
	}
	for i := 0; i < negCount; i++ {
		negSets[i] = ctx.Sets[in.Reg[posCount+i]]
	}
	outReg := in.Reg[posCount+negCount]

	var universe *denseset.DenseSet
	if posCount > 0 {
		universe = posSets[0]
	} else {
		universe = m.carrier().Support()
	}

	it := universe.Iterate()
	for {
		raw, ok := it.Next()
		if !ok {
			return nil
		}
		ob := carrier.Ob(raw)
		if posCount > 0 && ob == 0 {
			continue
		}
		matched := true
		for i := 1; i < posCount; i++ {
			if !posSets[i].Contains(denseset.Ob(ob)) {
				matched = false
				break
			}
		}
		if matched {
			for _, neg := range negSets {
				if neg.Contains(denseset.Ob(ob)) {
					matched = false
					break
				}
			}
		}
		if !matched {
			continue
		}
		ctx.Obs[outReg] = ob
		if err := m.execute(instrs, pc+1, ctx); err != nil {
			return err
		}
	}
}

func (m *Machine) blockSize() int {
	if m.BlockSize <= 0 {
		return DefaultBlockSize
	}
	return m.BlockSize
}

func (m *Machine) forEachOb(it *denseset.Iterator, reg int, instrs []Instruction, pc int, ctx *Context) error {
	for {
		ob, ok := it.Next()
		if !ok {
			return nil
		}
		ctx.Obs[reg] = carrier.Ob(ob)
		if err := m.execute(instrs, pc+1, ctx); err != nil {
			return err
		}
	}
}

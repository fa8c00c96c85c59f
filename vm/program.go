package vm

import "github.com/fritzo/pomagma-sub000/signature"

// Instruction is one decoded op in a compiled program. The program
// counter in this implementation is a slice index rather than a byte
// offset (spec.md §4.G describes a "one byte-wide program counter"; Go
// has no use for the byte packing itself, only for the 256-register
// limit it implies, which the parser enforces directly). Meaning of the
// Reg/Sym/U8 slots depends on Op; see parser.go for how each op-code
// consumes its operand stream.
type Instruction struct {
	Op   OpCode
	Line int

	Reg []int              // OB/SET/NEW_OB/NEW_SET register indices, in argument order
	Sym []signature.Handle // signature-pointer operands, in argument order
	U8  []int              // raw UINT8 operand values (0..255, not small-float decoded), in argument order
}

// Program is one compiled rule fragment: a flat instruction sequence
// executed by recursive descent on the program counter (spec.md §4.G).
// FOR-loop bodies and IF-guard continuations are simply "the remaining
// instructions", not a nested tree, matching the source's _execute(pc+1)
// recursion.
type Program struct {
	Name   string
	Instrs []Instruction
}

// Len returns the instruction count.
func (p *Program) Len() int { return len(p.Instrs) }

package vm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fritzo/pomagma-sub000/signature"
)

// fixedArgKinds lists the argument-kind sequence for every op-code whose
// arity does not depend on a parameterized set count (spec.md §6). The
// FOR_{POS,NEG}* family is handled separately via forSetCounts.
var fixedArgKinds = map[OpCode][]ArgKind{
	PADDING:  {},
	SEQUENCE: {UINT8},

	GIVEN_EXISTS:             {NEW_OB},
	GIVEN_UNARY_RELATION:     {UNARY_RELATION, NEW_OB},
	GIVEN_BINARY_RELATION:    {BINARY_RELATION, NEW_OB, NEW_OB},
	GIVEN_NULLARY_FUNCTION:   {NULLARY_FUNCTION, NEW_OB},
	GIVEN_INJECTIVE_FUNCTION: {INJECTIVE_FUNCTION, NEW_OB, NEW_OB},
	GIVEN_BINARY_FUNCTION:    {BINARY_FUNCTION, NEW_OB, NEW_OB, NEW_OB},
	GIVEN_SYMMETRIC_FUNCTION: {SYMMETRIC_FUNCTION, NEW_OB, NEW_OB, NEW_OB},

	LETS_UNARY_RELATION:        {UNARY_RELATION, NEW_SET},
	LETS_BINARY_RELATION_LX:    {BINARY_RELATION, OB, NEW_SET},
	LETS_BINARY_RELATION_RX:    {BINARY_RELATION, OB, NEW_SET},
	LETS_INJECTIVE_FUNCTION_LX: {INJECTIVE_FUNCTION, NEW_SET},
	LETS_INJECTIVE_FUNCTION_RX: {INJECTIVE_FUNCTION, NEW_SET},
	LETS_BINARY_FUNCTION_LX:    {BINARY_FUNCTION, OB, NEW_SET},
	LETS_BINARY_FUNCTION_RX:    {BINARY_FUNCTION, OB, NEW_SET},
	LETS_SYMMETRIC_FUNCTION:    {SYMMETRIC_FUNCTION, OB, NEW_SET},

	FOR_ALL:                        {NEW_OB},
	FOR_UNARY_RELATION:              {UNARY_RELATION, NEW_OB},
	FOR_BINARY_RELATION_LX:          {BINARY_RELATION, OB, NEW_OB},
	FOR_BINARY_RELATION_RX:          {BINARY_RELATION, OB, NEW_OB},
	FOR_NULLARY_FUNCTION:            {NULLARY_FUNCTION, NEW_OB},
	FOR_INJECTIVE_FUNCTION:          {INJECTIVE_FUNCTION, OB, NEW_OB},
	FOR_INJECTIVE_FUNCTION_INVERSE:  {INJECTIVE_FUNCTION, OB, NEW_OB},
	FOR_BINARY_FUNCTION_LHS:         {BINARY_FUNCTION, OB, NEW_OB, NEW_OB},
	FOR_BINARY_FUNCTION_RHS:         {BINARY_FUNCTION, OB, NEW_OB, NEW_OB},
	FOR_BINARY_FUNCTION_VAL:         {BINARY_FUNCTION, OB, NEW_OB, NEW_OB},
	FOR_BINARY_FUNCTION_VAL_LHS:     {BINARY_FUNCTION, OB, OB, NEW_OB},
	FOR_BINARY_FUNCTION_VAL_RHS:     {BINARY_FUNCTION, OB, OB, NEW_OB},
	FOR_SYMMETRIC_FUNCTION:          {SYMMETRIC_FUNCTION, OB, NEW_OB, NEW_OB},
	FOR_SYMMETRIC_FUNCTION_VAL:      {SYMMETRIC_FUNCTION, OB, OB, NEW_OB},

	FOR_BLOCK: {},
	IF_BLOCK:  {OB},
	IF_EQUAL:  {OB, OB},
	IF_UNARY_RELATION:     {UNARY_RELATION, OB},
	IF_BINARY_RELATION:    {BINARY_RELATION, OB, OB},
	IF_NULLARY_FUNCTION:   {NULLARY_FUNCTION, OB},
	IF_INJECTIVE_FUNCTION: {INJECTIVE_FUNCTION, OB, OB},
	IF_BINARY_FUNCTION:    {BINARY_FUNCTION, OB, OB, OB},
	IF_SYMMETRIC_FUNCTION: {SYMMETRIC_FUNCTION, OB, OB, OB},

	LET_NULLARY_FUNCTION:   {NULLARY_FUNCTION, NEW_OB},
	LET_INJECTIVE_FUNCTION: {INJECTIVE_FUNCTION, OB, NEW_OB},
	LET_BINARY_FUNCTION:    {BINARY_FUNCTION, OB, OB, NEW_OB},
	LET_SYMMETRIC_FUNCTION: {SYMMETRIC_FUNCTION, OB, OB, NEW_OB},

	INFER_EQUAL:              {OB, OB},
	INFER_UNARY_RELATION:     {UNARY_RELATION, OB},
	INFER_BINARY_RELATION:    {BINARY_RELATION, OB, OB},
	INFER_NULLARY_FUNCTION:   {NULLARY_FUNCTION, OB},
	INFER_INJECTIVE_FUNCTION: {INJECTIVE_FUNCTION, OB, OB},
	INFER_BINARY_FUNCTION:    {BINARY_FUNCTION, OB, OB, OB},
	INFER_SYMMETRIC_FUNCTION: {SYMMETRIC_FUNCTION, OB, OB, OB},
	// Simplified to the binary/binary case: equate fn1(a,b) and fn2(a,b).
	// The original source's full INFER_{x}_{y} matrix spans every pair of
	// function arities; this program format covers the shape rule
	// theories actually emit (see DESIGN.md).
	INFER_FUNCTION_FUNCTION: {BINARY_FUNCTION, BINARY_FUNCTION, OB, OB},
}

// scope is one register-name scope. Parse pushes exactly one per program
// fragment; SEQUENCE does not open a nested scope.
type scope struct {
	obs      map[string]int
	sets     map[string]int
	setsUsed map[string]bool
}

func newScope() *scope {
	return &scope{
		obs:      make(map[string]int),
		sets:     make(map[string]int),
		setsUsed: make(map[string]bool),
	}
}

// Parser compiles textual rule-program source into Programs, resolving
// register names and signature symbols (spec.md §4.F).
type Parser struct {
	sig        *signature.Signature
	nextObReg  int
	nextSetReg int
	scopes     []*scope
}

// NewParser binds a Parser to a signature for resolving relation and
// function name references.
func NewParser(sig *signature.Signature) *Parser {
	return &Parser{sig: sig}
}

func (p *Parser) pushScope() { p.scopes = append(p.scopes, newScope()) }

func (p *Parser) popScope(line int) error {
	top := p.scopes[len(p.scopes)-1]
	for name, used := range top.setsUsed {
		if !used {
			return parseErrf(line, "set register %q declared but never used", name)
		}
	}
	p.scopes = p.scopes[:len(p.scopes)-1]
	return nil
}

func (p *Parser) declareOb(name string, line int) (int, error) {
	top := p.scopes[len(p.scopes)-1]
	if _, exists := top.obs[name]; exists {
		return 0, parseErrf(line, "duplicate ob register %q", name)
	}
	if p.nextObReg >= 256 {
		return 0, parseErrf(line, "ob register space exhausted (256 max)")
	}
	reg := p.nextObReg
	p.nextObReg++
	top.obs[name] = reg
	return reg, nil
}

func (p *Parser) declareSet(name string, line int) (int, error) {
	top := p.scopes[len(p.scopes)-1]
	if _, exists := top.sets[name]; exists {
		return 0, parseErrf(line, "duplicate set register %q", name)
	}
	if p.nextSetReg >= 256 {
		return 0, parseErrf(line, "set register space exhausted (256 max)")
	}
	reg := p.nextSetReg
	p.nextSetReg++
	top.sets[name] = reg
	top.setsUsed[name] = false
	return reg, nil
}

func (p *Parser) resolveOb(name string, line int) (int, error) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if reg, ok := p.scopes[i].obs[name]; ok {
			return reg, nil
		}
	}
	return 0, parseErrf(line, "undeclared ob register %q", name)
}

func (p *Parser) resolveSet(name string, line int) (int, error) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if reg, ok := p.scopes[i].sets[name]; ok {
			p.scopes[i].setsUsed[name] = true
			return reg, nil
		}
	}
	return 0, parseErrf(line, "undeclared set register %q", name)
}

func (p *Parser) resolveSymbol(kind ArgKind, name string, line int) (signature.Handle, error) {
	h, ok := p.sig.Handle(name)
	if !ok {
		return 0, parseErrf(line, "undeclared signature symbol %q", name)
	}
	wantKind, err := signatureKindFor(kind)
	if err != nil {
		return 0, parseErrf(line, "%s", err.Error())
	}
	if p.sig.Kind(h) != wantKind {
		return 0, parseErrf(line, "%q is not a %s", name, kind)
	}
	return h, nil
}

func signatureKindFor(k ArgKind) (signature.Kind, error) {
	switch k {
	case UNARY_RELATION:
		return signature.UnaryRelationKind, nil
	case BINARY_RELATION:
		return signature.BinaryRelationKind, nil
	case NULLARY_FUNCTION:
		return signature.NullaryFunctionKind, nil
	case INJECTIVE_FUNCTION:
		return signature.InjectiveFunctionKind, nil
	case BINARY_FUNCTION:
		return signature.BinaryFunctionKind, nil
	case SYMMETRIC_FUNCTION:
		return signature.SymmetricFunctionKind, nil
	default:
		return 0, fmt.Errorf("arg kind %v is not a signature symbol kind", k)
	}
}

func (k ArgKind) String() string {
	switch k {
	case UINT8:
		return "UINT8"
	case NEW_OB:
		return "NEW_OB"
	case OB:
		return "OB"
	case NEW_SET:
		return "NEW_SET"
	case SET:
		return "SET"
	case UNARY_RELATION:
		return "UnaryRelation"
	case BINARY_RELATION:
		return "BinaryRelation"
	case NULLARY_FUNCTION:
		return "NullaryFunction"
	case INJECTIVE_FUNCTION:
		return "InjectiveFunction"
	case BINARY_FUNCTION:
		return "BinaryFunction"
	case SYMMETRIC_FUNCTION:
		return "SymmetricFunction"
	default:
		return "?"
	}
}

// Parse compiles one named program fragment from lines (spec.md §4.F). Each
// call parses exactly one fragment: callers split multi-fragment source
// on blank lines themselves (see ParseAll).
func (p *Parser) Parse(name string, lines []string, startLine int) (*Program, error) {
	p.pushScope()
	prog := &Program{Name: name}

	for i, raw := range lines {
		line := startLine + i
		text := stripComment(raw)
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		mnemonic := fields[0]
		op, ok := mnemonics[mnemonic]
		if !ok {
			return nil, parseErrf(line, "unknown op-code %q", mnemonic)
		}
		args := fields[1:]

		instr, err := p.parseInstruction(op, args, line)
		if err != nil {
			return nil, err
		}
		prog.Instrs = append(prog.Instrs, instr)
	}

	if err := p.popScope(startLine + len(lines)); err != nil {
		return nil, err
	}
	return prog, nil
}

func (p *Parser) parseInstruction(op OpCode, args []string, line int) (Instruction, error) {
	if posCount, negCount, ok := IsFor(op); ok {
		kinds := make([]ArgKind, 0, posCount+negCount+1)
		for i := 0; i < posCount+negCount; i++ {
			kinds = append(kinds, SET)
		}
		kinds = append(kinds, NEW_OB)
		return p.parseWithKinds(op, kinds, args, line)
	}
	kinds, ok := fixedArgKinds[op]
	if !ok {
		return Instruction{}, parseErrf(line, "op-code %v has no known arity", op)
	}
	return p.parseWithKinds(op, kinds, args, line)
}

func (p *Parser) parseWithKinds(op OpCode, kinds []ArgKind, args []string, line int) (Instruction, error) {
	if len(args) != len(kinds) {
		return Instruction{}, parseErrf(line, "%v expects %d args, got %d", op, len(kinds), len(args))
	}
	instr := Instruction{Op: op, Line: line}
	for i, kind := range kinds {
		tok := args[i]
		switch kind {
		case UINT8:
			n, err := strconv.Atoi(tok)
			if err != nil || n < 0 || n > 255 {
				return Instruction{}, parseErrf(line, "out-of-range UINT8 argument %q", tok)
			}
			instr.U8 = append(instr.U8, n)
		case NEW_OB:
			reg, err := p.declareOb(tok, line)
			if err != nil {
				return Instruction{}, err
			}
			instr.Reg = append(instr.Reg, reg)
		case OB:
			reg, err := p.resolveOb(tok, line)
			if err != nil {
				return Instruction{}, err
			}
			instr.Reg = append(instr.Reg, reg)
		case NEW_SET:
			reg, err := p.declareSet(tok, line)
			if err != nil {
				return Instruction{}, err
			}
			instr.Reg = append(instr.Reg, reg)
		case SET:
			reg, err := p.resolveSet(tok, line)
			if err != nil {
				return Instruction{}, err
			}
			instr.Reg = append(instr.Reg, reg)
		default:
			h, err := p.resolveSymbol(kind, tok, line)
			if err != nil {
				return Instruction{}, err
			}
			instr.Sym = append(instr.Sym, h)
		}
	}
	return instr, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// ParseAll splits r into blank-line-delimited fragments and compiles each
// into its own Program (spec.md §4.F: "blank lines separate programs").
func ParseAll(sig *signature.Signature, r io.Reader) ([]*Program, error) {
	scanner := bufio.NewScanner(r)
	var programs []*Program
	var chunk []string
	chunkStart := 1
	lineNo := 0

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		nonEmpty := false
		for _, l := range chunk {
			if strings.TrimSpace(stripComment(l)) != "" {
				nonEmpty = true
				break
			}
		}
		if !nonEmpty {
			chunk = nil
			return nil
		}
		p := NewParser(sig)
		prog, err := p.Parse("", chunk, chunkStart)
		if err != nil {
			return err
		}
		programs = append(programs, prog)
		chunk = nil
		return nil
	}

	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		if strings.TrimSpace(stripComment(text)) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			chunkStart = lineNo + 1
			continue
		}
		chunk = append(chunk, text)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return programs, nil
}

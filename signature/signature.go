package signature

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fritzo/pomagma-sub000/carrier"
)

// Signature is the registry of declared relations and functions bound to
// a single carrier (spec.md §3: "the signature never references itself;
// each table holds a reference to the carrier, never to another table").
// Symbols are assigned a dense Handle in declaration order, replacing the
// original's use of a table's own pointer identity as its key (spec.md
// §9).
type Signature struct {
	c *carrier.Carrier

	names   []string
	kinds   []Kind
	byName  map[string]Handle

	unaryRelations     map[Handle]*UnaryRelation
	binaryRelations    map[Handle]*BinaryRelation
	nullaryFunctions   map[Handle]*NullaryFunction
	injectiveFunctions map[Handle]*InjectiveFunction
	binaryFunctions    map[Handle]*BinaryFunction
	symmetricFunctions map[Handle]*SymmetricFunction
}

// New allocates an empty registry bound to c.
func New(c *carrier.Carrier) *Signature {
	return &Signature{
		c:                  c,
		byName:             make(map[string]Handle),
		unaryRelations:     make(map[Handle]*UnaryRelation),
		binaryRelations:    make(map[Handle]*BinaryRelation),
		nullaryFunctions:   make(map[Handle]*NullaryFunction),
		injectiveFunctions: make(map[Handle]*InjectiveFunction),
		binaryFunctions:    make(map[Handle]*BinaryFunction),
		symmetricFunctions: make(map[Handle]*SymmetricFunction),
	}
}

// Carrier returns the bound carrier.
func (s *Signature) Carrier() *carrier.Carrier { return s.c }

// Handle returns the dense handle assigned to name.
func (s *Signature) Handle(name string) (Handle, bool) {
	h, ok := s.byName[name]
	return h, ok
}

// Kind returns the arity a handle was declared with.
func (s *Signature) Kind(h Handle) Kind { return s.kinds[h] }

// Name returns the symbol name a handle was declared with.
func (s *Signature) Name(h Handle) string { return s.names[h] }

// Symbols returns every declared name, in declaration (handle) order.
func (s *Signature) Symbols() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// UnaryRelationByHandle looks up a declared unary relation by handle, for
// callers (e.g. package vm) that resolved the handle once at parse time.
func (s *Signature) UnaryRelationByHandle(h Handle) *UnaryRelation { return s.unaryRelations[h] }

// BinaryRelationByHandle looks up a declared binary relation by handle.
func (s *Signature) BinaryRelationByHandle(h Handle) *BinaryRelation { return s.binaryRelations[h] }

// NullaryFunctionByHandle looks up a declared constant by handle.
func (s *Signature) NullaryFunctionByHandle(h Handle) *NullaryFunction { return s.nullaryFunctions[h] }

// InjectiveFunctionByHandle looks up a declared injective function by handle.
func (s *Signature) InjectiveFunctionByHandle(h Handle) *InjectiveFunction {
	return s.injectiveFunctions[h]
}

// BinaryFunctionByHandle looks up a declared binary function by handle.
func (s *Signature) BinaryFunctionByHandle(h Handle) *BinaryFunction { return s.binaryFunctions[h] }

// SymmetricFunctionByHandle looks up a declared symmetric function by handle.
func (s *Signature) SymmetricFunctionByHandle(h Handle) *SymmetricFunction {
	return s.symmetricFunctions[h]
}

func (s *Signature) declare(name string, kind Kind) (Handle, error) {
	if _, exists := s.byName[name]; exists {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateSymbol, name)
	}
	h := Handle(len(s.names))
	s.names = append(s.names, name)
	s.kinds = append(s.kinds, kind)
	s.byName[name] = h
	return h, nil
}

// DeclareUnaryRelation declares and allocates a new unary relation.
func (s *Signature) DeclareUnaryRelation(name string, insertCallback func(ob Ob)) (*UnaryRelation, error) {
	h, err := s.declare(name, UnaryRelationKind)
	if err != nil {
		return nil, err
	}
	r := NewUnaryRelation(name, s.c, insertCallback)
	s.unaryRelations[h] = r
	return r, nil
}

// DeclareBinaryRelation declares and allocates a new binary relation.
func (s *Signature) DeclareBinaryRelation(name string, symmetric bool, insertCallback func(lhs, rhs Ob)) (*BinaryRelation, error) {
	h, err := s.declare(name, BinaryRelationKind)
	if err != nil {
		return nil, err
	}
	r := NewBinaryRelation(name, s.c, symmetric, insertCallback)
	s.binaryRelations[h] = r
	return r, nil
}

// DeclareNullaryFunction declares and allocates a new constant.
func (s *Signature) DeclareNullaryFunction(name string, insertCallback func(val Ob)) (*NullaryFunction, error) {
	h, err := s.declare(name, NullaryFunctionKind)
	if err != nil {
		return nil, err
	}
	f := NewNullaryFunction(name, s.c, insertCallback)
	s.nullaryFunctions[h] = f
	return f, nil
}

// DeclareInjectiveFunction declares and allocates a new injective function.
func (s *Signature) DeclareInjectiveFunction(name string, insertCallback func(arg, val Ob)) (*InjectiveFunction, error) {
	h, err := s.declare(name, InjectiveFunctionKind)
	if err != nil {
		return nil, err
	}
	f := NewInjectiveFunction(name, s.c, insertCallback)
	s.injectiveFunctions[h] = f
	return f, nil
}

// DeclareBinaryFunction declares and allocates a new binary function.
func (s *Signature) DeclareBinaryFunction(name string, insertCallback func(lhs, rhs, val Ob)) (*BinaryFunction, error) {
	h, err := s.declare(name, BinaryFunctionKind)
	if err != nil {
		return nil, err
	}
	f := NewBinaryFunction(name, s.c, insertCallback)
	s.binaryFunctions[h] = f
	return f, nil
}

// DeclareSymmetricFunction declares and allocates a new symmetric
// function.
func (s *Signature) DeclareSymmetricFunction(name string, insertCallback func(lhs, rhs, val Ob)) (*SymmetricFunction, error) {
	h, err := s.declare(name, SymmetricFunctionKind)
	if err != nil {
		return nil, err
	}
	f := NewSymmetricFunction(name, s.c, insertCallback)
	s.symmetricFunctions[h] = f
	return f, nil
}

// UnaryRelation looks up a declared unary relation by name.
func (s *Signature) UnaryRelation(name string) (*UnaryRelation, error) {
	h, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, name)
	}
	r, ok := s.unaryRelations[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArityMismatch, name)
	}
	return r, nil
}

// BinaryRelation looks up a declared binary relation by name.
func (s *Signature) BinaryRelation(name string) (*BinaryRelation, error) {
	h, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, name)
	}
	r, ok := s.binaryRelations[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArityMismatch, name)
	}
	return r, nil
}

// NullaryFunction looks up a declared constant by name.
func (s *Signature) NullaryFunction(name string) (*NullaryFunction, error) {
	h, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, name)
	}
	f, ok := s.nullaryFunctions[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArityMismatch, name)
	}
	return f, nil
}

// InjectiveFunction looks up a declared injective function by name.
func (s *Signature) InjectiveFunction(name string) (*InjectiveFunction, error) {
	h, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, name)
	}
	f, ok := s.injectiveFunctions[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArityMismatch, name)
	}
	return f, nil
}

// BinaryFunction looks up a declared binary function by name.
func (s *Signature) BinaryFunction(name string) (*BinaryFunction, error) {
	h, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, name)
	}
	f, ok := s.binaryFunctions[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArityMismatch, name)
	}
	return f, nil
}

// SymmetricFunction looks up a declared symmetric function by name.
func (s *Signature) SymmetricFunction(name string) (*SymmetricFunction, error) {
	h, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, name)
	}
	f, ok := s.symmetricFunctions[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArityMismatch, name)
	}
	return f, nil
}

// UnsafeMergeAll applies UnsafeMerge(dep, find) to every declared table,
// in declaration order. Called once per demoted ob from inside the
// scheduler's strict critical section (spec.md §4.F).
func (s *Signature) UnsafeMergeAll(dep Ob, find func(Ob) Ob) {
	for h := range s.names {
		handle := Handle(h)
		switch s.kinds[handle] {
		case UnaryRelationKind:
			s.unaryRelations[handle].UnsafeMerge(dep, find)
		case BinaryRelationKind:
			s.binaryRelations[handle].UnsafeMerge(dep, find)
		case NullaryFunctionKind:
			s.nullaryFunctions[handle].UnsafeMerge(dep, find)
		case InjectiveFunctionKind:
			s.injectiveFunctions[handle].UnsafeMerge(dep, find)
		case BinaryFunctionKind:
			s.binaryFunctions[handle].UnsafeMerge(dep, find)
		case SymmetricFunctionKind:
			s.symmetricFunctions[handle].UnsafeMerge(dep, find)
		}
	}
}

// ParseDeclarations reads a signature declaration file: one symbol per
// line, formatted "<arity> <name>" (blank lines and "#"-prefixed comments
// are skipped), and declares each against s with no insert callback
// (spec.md §6). Callers needing callbacks should declare symbols
// programmatically instead; ParseDeclarations exists for bootstrapping a
// Signature from POMAGMA_THEORY_FILE-style inputs where all bindings
// are wired up afterward.
func ParseDeclarations(s *Signature, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("%w: line %d: %q", ErrDeclaration, lineNo, line)
		}
		kind, ok := ParseKind(fields[0])
		if !ok {
			return fmt.Errorf("%w: line %d: unknown arity %q", ErrDeclaration, lineNo, fields[0])
		}
		name := fields[1]
		var err error
		switch kind {
		case UnaryRelationKind:
			_, err = s.DeclareUnaryRelation(name, nil)
		case BinaryRelationKind:
			_, err = s.DeclareBinaryRelation(name, false, nil)
		case NullaryFunctionKind:
			_, err = s.DeclareNullaryFunction(name, nil)
		case InjectiveFunctionKind:
			_, err = s.DeclareInjectiveFunction(name, nil)
		case BinaryFunctionKind:
			_, err = s.DeclareBinaryFunction(name, nil)
		case SymmetricFunctionKind:
			_, err = s.DeclareSymmetricFunction(name, nil)
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

package vm

// ArgKind tags one operand slot of an op-code (spec.md §6).
type ArgKind uint8

const (
	UINT8 ArgKind = iota
	NEW_OB
	OB
	NEW_SET
	SET
	UNARY_RELATION
	BINARY_RELATION
	NULLARY_FUNCTION
	INJECTIVE_FUNCTION
	BINARY_FUNCTION
	SYMMETRIC_FUNCTION
)

// OpCode is the one-byte leading tag of a compiled instruction (spec.md
// §4.G). The canonical set is the union of the two parser/VM variants
// found in the source, per spec.md §9's resolution of that open question.
type OpCode uint8

const (
	PADDING OpCode = iota
	SEQUENCE

	GIVEN_EXISTS
	GIVEN_UNARY_RELATION
	GIVEN_BINARY_RELATION
	GIVEN_NULLARY_FUNCTION
	GIVEN_INJECTIVE_FUNCTION
	GIVEN_BINARY_FUNCTION
	GIVEN_SYMMETRIC_FUNCTION

	LETS_UNARY_RELATION
	LETS_BINARY_RELATION_LX
	LETS_BINARY_RELATION_RX
	LETS_INJECTIVE_FUNCTION_LX
	LETS_INJECTIVE_FUNCTION_RX
	LETS_BINARY_FUNCTION_LX
	LETS_BINARY_FUNCTION_RX
	LETS_SYMMETRIC_FUNCTION

	FOR_NEG
	FOR_NEG_NEG
	FOR_POS_NEG
	FOR_POS_NEG_NEG
	FOR_POS_POS
	FOR_POS_POS_NEG
	FOR_POS_POS_NEG_NEG
	FOR_POS_POS_POS
	FOR_POS_POS_POS_POS
	FOR_POS_POS_POS_POS_POS
	FOR_POS_POS_POS_POS_POS_POS

	FOR_ALL
	FOR_UNARY_RELATION
	FOR_BINARY_RELATION_LX
	FOR_BINARY_RELATION_RX
	FOR_NULLARY_FUNCTION
	FOR_INJECTIVE_FUNCTION
	FOR_INJECTIVE_FUNCTION_INVERSE
	FOR_BINARY_FUNCTION_LHS
	FOR_BINARY_FUNCTION_RHS
	FOR_BINARY_FUNCTION_VAL
	FOR_BINARY_FUNCTION_VAL_LHS
	FOR_BINARY_FUNCTION_VAL_RHS
	FOR_SYMMETRIC_FUNCTION
	FOR_SYMMETRIC_FUNCTION_VAL

	FOR_BLOCK
	IF_BLOCK
	IF_EQUAL
	IF_UNARY_RELATION
	IF_BINARY_RELATION
	IF_NULLARY_FUNCTION
	IF_INJECTIVE_FUNCTION
	IF_BINARY_FUNCTION
	IF_SYMMETRIC_FUNCTION

	LET_NULLARY_FUNCTION
	LET_INJECTIVE_FUNCTION
	LET_BINARY_FUNCTION
	LET_SYMMETRIC_FUNCTION

	INFER_EQUAL
	INFER_UNARY_RELATION
	INFER_BINARY_RELATION
	INFER_NULLARY_FUNCTION
	INFER_INJECTIVE_FUNCTION
	INFER_BINARY_FUNCTION
	INFER_SYMMETRIC_FUNCTION

	// INFER_x_y is the equational family: given two different
	// descriptions of the same value through different functions, the
	// defined side becomes the source (spec.md §4.G). Encoded as one
	// op-code whose two function operands must both be binary functions;
	// no other pairing of function kinds is accepted by the parser or
	// handled by the interpreter.
	INFER_FUNCTION_FUNCTION

	opCodeCount
)

// forSetCounts reports the (positive, negative) set-operand counts for
// the FOR_{POS,NEG}* family (spec.md §4.G).
var forSetCounts = map[OpCode][2]int{
	FOR_NEG:                     {0, 1},
	FOR_NEG_NEG:                 {0, 2},
	FOR_POS_NEG:                 {1, 1},
	FOR_POS_NEG_NEG:             {1, 2},
	FOR_POS_POS:                 {2, 0},
	FOR_POS_POS_NEG:             {2, 1},
	FOR_POS_POS_NEG_NEG:         {2, 2},
	FOR_POS_POS_POS:             {3, 0},
	FOR_POS_POS_POS_POS:         {4, 0},
	FOR_POS_POS_POS_POS_POS:     {5, 0},
	FOR_POS_POS_POS_POS_POS_POS: {6, 0},
}

// mnemonics maps the textual op-code keyword to its OpCode.
var mnemonics = map[string]OpCode{
	"PADDING":  PADDING,
	"SEQUENCE": SEQUENCE,

	"GIVEN_EXISTS":             GIVEN_EXISTS,
	"GIVEN_UNARY_RELATION":     GIVEN_UNARY_RELATION,
	"GIVEN_BINARY_RELATION":    GIVEN_BINARY_RELATION,
	"GIVEN_NULLARY_FUNCTION":   GIVEN_NULLARY_FUNCTION,
	"GIVEN_INJECTIVE_FUNCTION": GIVEN_INJECTIVE_FUNCTION,
	"GIVEN_BINARY_FUNCTION":    GIVEN_BINARY_FUNCTION,
	"GIVEN_SYMMETRIC_FUNCTION": GIVEN_SYMMETRIC_FUNCTION,

	"LETS_UNARY_RELATION":       LETS_UNARY_RELATION,
	"LETS_BINARY_RELATION_LX":   LETS_BINARY_RELATION_LX,
	"LETS_BINARY_RELATION_RX":   LETS_BINARY_RELATION_RX,
	"LETS_INJECTIVE_FUNCTION_LX": LETS_INJECTIVE_FUNCTION_LX,
	"LETS_INJECTIVE_FUNCTION_RX": LETS_INJECTIVE_FUNCTION_RX,
	"LETS_BINARY_FUNCTION_LX":    LETS_BINARY_FUNCTION_LX,
	"LETS_BINARY_FUNCTION_RX":    LETS_BINARY_FUNCTION_RX,
	"LETS_SYMMETRIC_FUNCTION":    LETS_SYMMETRIC_FUNCTION,

	"FOR_NEG":                     FOR_NEG,
	"FOR_NEG_NEG":                 FOR_NEG_NEG,
	"FOR_POS_NEG":                 FOR_POS_NEG,
	"FOR_POS_NEG_NEG":             FOR_POS_NEG_NEG,
	"FOR_POS_POS":                 FOR_POS_POS,
	"FOR_POS_POS_NEG":             FOR_POS_POS_NEG,
	"FOR_POS_POS_NEG_NEG":         FOR_POS_POS_NEG_NEG,
	"FOR_POS_POS_POS":             FOR_POS_POS_POS,
	"FOR_POS_POS_POS_POS":         FOR_POS_POS_POS_POS,
	"FOR_POS_POS_POS_POS_POS":     FOR_POS_POS_POS_POS_POS,
	"FOR_POS_POS_POS_POS_POS_POS": FOR_POS_POS_POS_POS_POS_POS,

	"FOR_ALL":                        FOR_ALL,
	"FOR_UNARY_RELATION":             FOR_UNARY_RELATION,
	"FOR_BINARY_RELATION_LX":         FOR_BINARY_RELATION_LX,
	"FOR_BINARY_RELATION_RX":         FOR_BINARY_RELATION_RX,
	"FOR_NULLARY_FUNCTION":           FOR_NULLARY_FUNCTION,
	"FOR_INJECTIVE_FUNCTION":         FOR_INJECTIVE_FUNCTION,
	"FOR_INJECTIVE_FUNCTION_INVERSE": FOR_INJECTIVE_FUNCTION_INVERSE,
	"FOR_BINARY_FUNCTION_LHS":        FOR_BINARY_FUNCTION_LHS,
	"FOR_BINARY_FUNCTION_RHS":        FOR_BINARY_FUNCTION_RHS,
	"FOR_BINARY_FUNCTION_VAL":        FOR_BINARY_FUNCTION_VAL,
	"FOR_BINARY_FUNCTION_VAL_LHS":    FOR_BINARY_FUNCTION_VAL_LHS,
	"FOR_BINARY_FUNCTION_VAL_RHS":    FOR_BINARY_FUNCTION_VAL_RHS,
	"FOR_SYMMETRIC_FUNCTION":         FOR_SYMMETRIC_FUNCTION,
	"FOR_SYMMETRIC_FUNCTION_VAL":     FOR_SYMMETRIC_FUNCTION_VAL,

	"FOR_BLOCK":             FOR_BLOCK,
	"IF_BLOCK":               IF_BLOCK,
	"IF_EQUAL":                IF_EQUAL,
	"IF_UNARY_RELATION":       IF_UNARY_RELATION,
	"IF_BINARY_RELATION":      IF_BINARY_RELATION,
	"IF_NULLARY_FUNCTION":     IF_NULLARY_FUNCTION,
	"IF_INJECTIVE_FUNCTION":   IF_INJECTIVE_FUNCTION,
	"IF_BINARY_FUNCTION":      IF_BINARY_FUNCTION,
	"IF_SYMMETRIC_FUNCTION":   IF_SYMMETRIC_FUNCTION,

	"LET_NULLARY_FUNCTION":   LET_NULLARY_FUNCTION,
	"LET_INJECTIVE_FUNCTION": LET_INJECTIVE_FUNCTION,
	"LET_BINARY_FUNCTION":    LET_BINARY_FUNCTION,
	"LET_SYMMETRIC_FUNCTION": LET_SYMMETRIC_FUNCTION,

	"INFER_EQUAL":             INFER_EQUAL,
	"INFER_UNARY_RELATION":    INFER_UNARY_RELATION,
	"INFER_BINARY_RELATION":   INFER_BINARY_RELATION,
	"INFER_NULLARY_FUNCTION":  INFER_NULLARY_FUNCTION,
	"INFER_INJECTIVE_FUNCTION": INFER_INJECTIVE_FUNCTION,
	"INFER_BINARY_FUNCTION":   INFER_BINARY_FUNCTION,
	"INFER_SYMMETRIC_FUNCTION": INFER_SYMMETRIC_FUNCTION,
	"INFER_FUNCTION_FUNCTION":  INFER_FUNCTION_FUNCTION,
}

var names = func() map[OpCode]string {
	m := make(map[OpCode]string, len(mnemonics))
	for name, op := range mnemonics {
		m[op] = name
	}
	return m
}()

// String renders an OpCode as its source-level mnemonic.
func (op OpCode) String() string {
	if name, ok := names[op]; ok {
		return name
	}
	return "UNKNOWN_OP"
}

// IsFor reports whether op is one of the FOR_{POS,NEG}* set-combination
// ops, and if so its (positive, negative) operand counts.
func IsFor(op OpCode) (posCount, negCount int, ok bool) {
	counts, ok := forSetCounts[op]
	return counts[0], counts[1], ok
}

package vm

import (
	"errors"
	"fmt"
)

// ErrIllegalOp reports execution reaching a PADDING op-code. The parser
// accepts the PADDING mnemonic like any other op-code; only executing it
// fails (spec.md §9 open question: PADDING stays a real, always-
// illegal op rather than being dropped from the op-code table).
var ErrIllegalOp = errors.New("vm: illegal op-code executed")

// ErrUndefinedLookup reports a LET_*_FUNCTION firing against an unset
// slot. Spec.md §4.G calls this a programmer error: rules must guard
// lookups before binding them.
var ErrUndefinedLookup = errors.New("vm: undefined function lookup")

// ParseError reports a program source line the parser could not accept
// (spec.md §4.F).
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vm: parse error at line %d: %s", e.Line, e.Reason)
}

func parseErrf(line int, format string, args ...any) error {
	return &ParseError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

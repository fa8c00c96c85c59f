package signature

import "errors"

// ErrUnknownSymbol reports a reference to an undeclared relation/function
// name.
var ErrUnknownSymbol = errors.New("signature: unknown symbol")

// ErrDuplicateSymbol reports a second declaration of the same name.
var ErrDuplicateSymbol = errors.New("signature: duplicate symbol")

// ErrArityMismatch reports a symbol referenced with the wrong Kind.
var ErrArityMismatch = errors.New("signature: arity mismatch")

// ErrNotLive reports an operation against an ob the carrier does not
// currently consider live.
var ErrNotLive = errors.New("signature: ob not live")

// ErrInconsistent reports LESS/NLESS intersecting, or a merge that would
// equate two obs already separated by NLESS (spec.md §7, §8 invariant 6).
// It is fatal: callers should abort the session.
var ErrInconsistent = errors.New("signature: inconsistent")

// ErrDeclaration reports a malformed signature declaration line (spec.md
// §6).
var ErrDeclaration = errors.New("signature: bad declaration")

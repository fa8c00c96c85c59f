package router

import "errors"

// ErrUnreachable reports that no chain of defining equations grounds
// an ob in any nullary function.
var ErrUnreachable = errors.New("router: ob unreachable from any constant")

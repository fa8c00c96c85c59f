package carrier

import "errors"

// ErrFull is returned by TryInsert when every id in 1..N is already live.
var ErrFull = errors.New("carrier: full")

// ErrInvalidId reports a reference to an id outside 1..N, or to ob 0.
var ErrInvalidId = errors.New("carrier: invalid id")

// ErrNotLive reports an operation against an id that is not currently live.
var ErrNotLive = errors.New("carrier: not live")

// Package carrier implements Carrier, the union-find over live obs that
// every table in a signature.Signature is built on top of (spec.md §4.B).
//
// Carrier owns the contiguous id space 1..N. It tracks which ids are live
// (support), each live id's current representative (reps, a union-find
// forest satisfying reps[rep]=rep and rep<=ob), and counts of live ids and
// canonical reps.
//
// Concurrency model, following the teacher's muVert/muEdgeAdj split
// (core/types.go) and the original's AssertSharedMutex split between
// relaxed/strict operations (grower/carrier.hpp): Find and every
// set*Merge helper take mu in shared mode, and so does Merge; UnsafeRemove
// takes it uniquely. Callers that must
// serialize merges against everything else do so via the scheduler's
// process-wide strict critical section (spec.md §5), not here.
package carrier

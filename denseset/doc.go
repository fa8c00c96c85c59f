// Package denseset implements DenseSet, a fixed-capacity ordered set of obs
// stored as a packed bit vector.
//
// A DenseSet of capacity N holds ids in the closed range 1..N; bit 0 is
// always zero ("0 denotes none", spec.md §3). Storage is a flat []uint64,
// word i holding bits [64*i, 64*i+64). Word-level reads and writes go
// through sync/atomic so a DenseSet can be safely read while another
// goroutine sets bits in it — the common case during inference, where
// every rule is idempotent and tolerates a missed or duplicated bit
// because the owning fact eventually re-fires until saturation.
//
// Capacity is rounded up to a whole number of 8-word (64-byte) groups.
// Go gives no placement guarantee for a []uint64's backing array, so this
// is a sizing policy for vectorizable word scans, not a hard alignment
// assertion (see SPEC_FULL.md, "Alignment assertion on the VM/Context").
//
// An "alias" DenseSet is a view over someone else's word slice (a row of
// a relation's backing matrix, say). Mutating an alias mutates the shared
// storage atomically; it never reallocates.
package denseset

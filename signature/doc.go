// Package signature implements the relations, functions, and the named
// registry over them described in spec.md §4.C–E.
//
// Every table here is built on top of a *carrier.Carrier: tables hold a
// reference to the carrier they were declared against (never to each
// other — spec.md §9, "cycles between tables and signature" →
// "tables hold a back-reference to the carrier... no reference cycles").
// All six arities from spec.md §3 are implemented:
//
//   - UnaryRelation:    a denseset.DenseSet aliased to a signature row.
//   - BinaryRelation:   Lx[lhs]/Rx[rhs] row matrices, shared storage when
//     the relation is declared symmetric.
//   - NullaryFunction:  one ob slot.
//   - InjectiveFunction: values[key]=val plus inverse[val]=key.
//   - BinaryFunction:   an 8x8-tiled Ob matrix plus Vlr/VLr/VRl inverse
//     indices.
//   - SymmetricFunction: like BinaryFunction but upper-triangular, forward
//     store addressed by sorted (min,max).
//
// Signature assigns each declared symbol a small dense integer handle at
// declaration time (spec.md §9, "pointer-identity as table key" → dense
// handle) and dispatches on a tagged Kind rather than per-arity macros
// (spec.md §9, "ad-hoc per-arity SWITCH_ARITY macros" → trait-like
// dispatch, here Kind + a type switch in vm and agenda).
package signature

// Package pomagma is an in-memory forward-chaining inference engine
// over a finite algebraic structure: a fixed-capacity carrier of
// union-found obs, relations and functions packed as bit-sets over it,
// and a byte-code rule VM that a scheduler drives to a fixed point.
//
// The engine is organized under subpackages, one concern per package:
//
//	denseset/  — bit-packed set over 0..N with atomic word ops
//	carrier/   — union-find over live obs
//	signature/ — relations, functions, and the symbol registry
//	vm/        — op-codes, rule-program parser, and the interpreter
//	agenda/    — classifies freshly inserted rule programs by entry point
//	scheduler/ — task queues, the strict merge critical section, worker pool
//	sampler/   — weighted random fact insertion
//	router/    — least-cost expression spelling for an ob
//	snapshot/  — persistence contract between a Signature and a store
//
// cmd/pomagma is the engine binary: it reads a theory (signature
// declarations) and a language (rule programs), optionally loads a
// prior structure snapshot, runs the scheduler to quiescence, and
// writes the resulting structure back out.
package pomagma

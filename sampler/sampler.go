// Package sampler draws new facts from a weighted signature
// distribution, the source of scheduler.SampleTask work (spec.md
// §4.J).
package sampler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/signature"
)

// Weights maps a declared function's name to its relative draw
// probability. Authoring these from a language-weight file is out of
// scope (spec.md §1); only the in-memory map is specified here.
type Weights map[string]float64

// Sampler draws symbols from a weighted distribution over the
// signature's functions and recursively fills argument slots, either
// finding the resulting tuple already in the structure or inserting a
// fresh ob and recording the defining equation (spec.md §4.J).
type Sampler struct {
	sig     *signature.Signature
	c       *carrier.Carrier
	handles []signature.Handle
	weights []float64
	total   float64
}

// New resolves weights against sig's declared functions. Unknown names
// and relation-kind names are rejected: only nullary, injective,
// binary, and symmetric functions produce obs and are drawable.
func New(sig *signature.Signature, weights Weights) (*Sampler, error) {
	s := &Sampler{sig: sig, c: sig.Carrier()}
	for name, w := range weights {
		h, ok := sig.Handle(name)
		if !ok {
			return nil, fmt.Errorf("sampler: unknown symbol %q", name)
		}
		switch sig.Kind(h) {
		case signature.NullaryFunctionKind, signature.InjectiveFunctionKind,
			signature.BinaryFunctionKind, signature.SymmetricFunctionKind:
		default:
			return nil, fmt.Errorf("sampler: %q is not a function and cannot produce obs", name)
		}
		if w <= 0 {
			continue
		}
		s.handles = append(s.handles, h)
		s.weights = append(s.weights, w)
		s.total += w
	}
	return s, nil
}

// Sample draws one symbol and attempts to fill it, returning false
// without error if the distribution is empty or an argument slot
// cannot currently be filled (e.g. the carrier has no live obs yet to
// serve as arguments for anything but a nullary function), or the
// carrier has no room for a fresh ob.
func (s *Sampler) Sample(ctx context.Context) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	h, ok := s.draw()
	if !ok {
		return false, nil
	}
	_, filled, err := s.fill(h)
	if errors.Is(err, carrier.ErrFull) {
		return false, nil
	}
	return filled, err
}

func (s *Sampler) draw() (signature.Handle, bool) {
	if s.total <= 0 {
		return 0, false
	}
	x := rand.Float64() * s.total
	for i, w := range s.weights {
		x -= w
		if x <= 0 {
			return s.handles[i], true
		}
	}
	return s.handles[len(s.handles)-1], true
}

// fill draws arguments (if any) for the function named by h and
// installs it, returning the resulting ob. filled reports whether the
// draw resolved to an ob, either found already present or freshly
// installed (false if an argument could not be sampled).
func (s *Sampler) fill(h signature.Handle) (carrier.Ob, bool, error) {
	switch s.sig.Kind(h) {
	case signature.NullaryFunctionKind:
		f := s.sig.NullaryFunctionByHandle(h)
		if val, ok := f.Find(); ok {
			return val, true, nil
		}
		ob, err := s.c.TryInsert()
		if err != nil {
			return 0, false, err
		}
		if err := f.Insert(ob); err != nil {
			return 0, false, err
		}
		return ob, true, nil

	case signature.InjectiveFunctionKind:
		arg, ok := s.sampleExistingOb()
		if !ok {
			return 0, false, nil
		}
		f := s.sig.InjectiveFunctionByHandle(h)
		if val, ok := f.Find(arg); ok {
			return val, true, nil
		}
		ob, err := s.c.TryInsert()
		if err != nil {
			return 0, false, err
		}
		if err := f.Insert(arg, ob); err != nil {
			return 0, false, err
		}
		return ob, true, nil

	case signature.BinaryFunctionKind:
		lhs, ok := s.sampleExistingOb()
		if !ok {
			return 0, false, nil
		}
		rhs, ok := s.sampleExistingOb()
		if !ok {
			return 0, false, nil
		}
		f := s.sig.BinaryFunctionByHandle(h)
		if val, ok := f.Find(lhs, rhs); ok {
			return val, true, nil
		}
		ob, err := s.c.TryInsert()
		if err != nil {
			return 0, false, err
		}
		if err := f.Insert(lhs, rhs, ob); err != nil {
			return 0, false, err
		}
		return ob, true, nil

	case signature.SymmetricFunctionKind:
		lhs, ok := s.sampleExistingOb()
		if !ok {
			return 0, false, nil
		}
		rhs, ok := s.sampleExistingOb()
		if !ok {
			return 0, false, nil
		}
		f := s.sig.SymmetricFunctionByHandle(h)
		if val, ok := f.Find(lhs, rhs); ok {
			return val, true, nil
		}
		ob, err := s.c.TryInsert()
		if err != nil {
			return 0, false, err
		}
		if err := f.Insert(lhs, rhs, ob); err != nil {
			return 0, false, err
		}
		return ob, true, nil
	}
	return 0, false, fmt.Errorf("sampler: handle %d has unsupported kind", h)
}

// sampleExistingOb picks a uniformly random live ob from the carrier's
// support, or reports false if none exist yet.
func (s *Sampler) sampleExistingOb() (carrier.Ob, bool) {
	var live []carrier.Ob
	it := s.c.Support().Iterate()
	for {
		ob, ok := it.Next()
		if !ok {
			break
		}
		live = append(live, carrier.Ob(ob))
	}
	if len(live) == 0 {
		return 0, false
	}
	return live[rand.IntN(len(live))], true
}

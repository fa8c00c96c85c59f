// Package router computes least-cost spellings of obs for diagnostics
// and language-weight fitting (spec.md §4.J). It is not part of the
// inference core: nothing here feeds back into the signature.
package router

import (
	"container/heap"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/signature"
)

// Expression is a parsed spelling: a symbol applied to zero or more
// argument spellings. Nullary functions are leaves (len(Args)==0).
type Expression struct {
	Symbol string
	Args   []*Expression
}

// String renders a Lisp-style spelling, e.g. "APP(K, APP(K, I))".
func (e *Expression) String() string {
	if len(e.Args) == 0 {
		return e.Symbol
	}
	s := e.Symbol + "("
	for i, a := range e.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

// Weights assigns a cost to each declared symbol; symbols absent from
// the map cost 1. Weight files (how these are authored) are out of
// scope per spec.md §1 — only this in-memory map is specified.
type Weights map[string]float64

func (w Weights) cost(symbol string) float64 {
	if c, ok := w[symbol]; ok {
		return c
	}
	return 1
}

// Router finds the cheapest defining expression for an ob by running a
// Dijkstra-style relaxation over every declared function's forward
// support, seeded from every nullary function (spec.md §4.J: "computes
// least-cost spellings of each ob").
type Router struct {
	sig     *signature.Signature
	weights Weights
}

// New binds a Router to sig. weights may be nil, in which case every
// symbol costs 1.
func New(sig *signature.Signature, weights Weights) *Router {
	if weights == nil {
		weights = Weights{}
	}
	return &Router{sig: sig, weights: weights}
}

// Spell returns the cheapest known expression for ob and its cost.
// Unreachable obs (no chain of defining equations grounds them in a
// nullary function) report ErrUnreachable.
func (r *Router) Spell(ob carrier.Ob) (*Expression, float64, error) {
	dist, expr := r.shortestPaths()
	e, ok := expr[ob]
	if !ok {
		return nil, 0, fmt.Errorf("%w: ob %d", ErrUnreachable, ob)
	}
	return e, dist[ob], nil
}

type obItem struct {
	ob   carrier.Ob
	cost float64
}

type obPQ []*obItem

func (pq obPQ) Len() int            { return len(pq) }
func (pq obPQ) Less(i, j int) bool  { return pq[i].cost < pq[j].cost }
func (pq obPQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *obPQ) Push(x interface{}) { *pq = append(*pq, x.(*obItem)) }
func (pq *obPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// shortestPaths runs the full relaxation once and returns every
// reachable ob's best known cost and expression.
func (r *Router) shortestPaths() (map[carrier.Ob]float64, map[carrier.Ob]*Expression) {
	c := r.sig.Carrier()
	visited := bitset.New(uint(c.Capacity() + 1))
	dist := make(map[carrier.Ob]float64)
	expr := make(map[carrier.Ob]*Expression)
	pq := make(obPQ, 0)
	heap.Init(&pq)

	offer := func(ob carrier.Ob, cost float64, e *Expression) {
		if old, ok := dist[ob]; ok && old <= cost {
			return
		}
		dist[ob] = cost
		expr[ob] = e
		heap.Push(&pq, &obItem{ob: ob, cost: cost})
	}

	for _, name := range r.sig.Symbols() {
		h, _ := r.sig.Handle(name)
		if r.sig.Kind(h) != signature.NullaryFunctionKind {
			continue
		}
		f := r.sig.NullaryFunctionByHandle(h)
		if val, ok := f.Find(); ok {
			offer(val, r.weights.cost(name), &Expression{Symbol: name})
		}
	}

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*obItem)
		if visited.Test(uint(item.ob)) {
			continue
		}
		if item.cost > dist[item.ob] {
			continue
		}
		visited.Set(uint(item.ob))
		r.relax(item.ob, dist, expr, offer)
	}

	return dist, expr
}

// relax looks for every defining equation that consumes u as an
// argument and offers the resulting value ob a candidate spelling.
func (r *Router) relax(u carrier.Ob, dist map[carrier.Ob]float64, expr map[carrier.Ob]*Expression, offer func(carrier.Ob, float64, *Expression)) {
	for _, name := range r.sig.Symbols() {
		h, _ := r.sig.Handle(name)
		switch r.sig.Kind(h) {
		case signature.InjectiveFunctionKind:
			f := r.sig.InjectiveFunctionByHandle(h)
			if val, ok := f.Find(u); ok {
				offer(val, dist[u]+r.weights.cost(name), &Expression{Symbol: name, Args: []*Expression{expr[u]}})
			}
		case signature.BinaryFunctionKind:
			f := r.sig.BinaryFunctionByHandle(h)
			it := f.Lx(u).Iterate()
			for {
				rhs, ok := it.Next()
				if !ok {
					break
				}
				rhsOb := carrier.Ob(rhs)
				if rc, known := dist[rhsOb]; known {
					if val, ok := f.Find(u, rhsOb); ok {
						offer(val, dist[u]+rc+r.weights.cost(name), &Expression{Symbol: name, Args: []*Expression{expr[u], expr[rhsOb]}})
					}
				}
			}
			it2 := f.Rx(u).Iterate()
			for {
				lhs, ok := it2.Next()
				if !ok {
					break
				}
				lhsOb := carrier.Ob(lhs)
				if lc, known := dist[lhsOb]; known {
					if val, ok := f.Find(lhsOb, u); ok {
						offer(val, lc+dist[u]+r.weights.cost(name), &Expression{Symbol: name, Args: []*Expression{expr[lhsOb], expr[u]}})
					}
				}
			}
		case signature.SymmetricFunctionKind:
			f := r.sig.SymmetricFunctionByHandle(h)
			it := f.Support(u).Iterate()
			for {
				co, ok := it.Next()
				if !ok {
					break
				}
				coOb := carrier.Ob(co)
				if cc, known := dist[coOb]; known {
					if val, ok := f.Find(u, coOb); ok {
						offer(val, dist[u]+cc+r.weights.cost(name), &Expression{Symbol: name, Args: []*Expression{expr[u], expr[coOb]}})
					}
				}
			}
		}
	}
}

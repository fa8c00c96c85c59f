package signature

import (
	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/denseset"
)

// BinaryRelation is a pair of row matrices Lx[lhs]/Rx[rhs] over the
// carrier (spec.md §3, §4.C). Invariant: (a,b)∈R ⇔ b∈Lx[a] ⇔ a∈Rx[b].
//
// For a symmetric relation, Lx and Rx alias the same row storage: since
// (a,b)∈R ⇔ (b,a)∈R, the row "things a relates to" and "things that
// relate to a" are the same set, so there is no need for separate
// storage (spec.md §3: "Storage is symmetric for symmetric relations: Lx
// and Rx point to the same memory").
type BinaryRelation struct {
	name           string
	c              *carrier.Carrier
	symmetric      bool
	rowWords       int
	lxWords        []uint64 // flat (dim)*(rowWords) backing array
	rxWords        []uint64 // == lxWords when symmetric
	insertCallback func(lhs, rhs Ob)
}

// NewBinaryRelation allocates an empty binary relation over c's id space.
// When symmetric is true, Rx aliases Lx's storage.
func NewBinaryRelation(name string, c *carrier.Carrier, symmetric bool, insertCallback func(lhs, rhs Ob)) *BinaryRelation {
	dim := c.Capacity() + 1
	rowWords := (c.Capacity() + 64) / 64 // matches denseset's own word_count(capacity)
	r := &BinaryRelation{
		name:           name,
		c:              c,
		symmetric:      symmetric,
		rowWords:       rowWords,
		lxWords:        make([]uint64, dim*rowWords),
		insertCallback: insertCallback,
	}
	if symmetric {
		r.rxWords = r.lxWords
	} else {
		r.rxWords = make([]uint64, dim*rowWords)
	}
	return r
}

// Name returns the relation's declared name.
func (r *BinaryRelation) Name() string { return r.name }

// Symmetric reports whether Lx and Rx share storage.
func (r *BinaryRelation) Symmetric() bool { return r.symmetric }

func (r *BinaryRelation) lxRow(ob Ob) *denseset.DenseSet {
	off := int(ob) * r.rowWords
	return denseset.NewAlias(r.lxWords[off:off+r.rowWords], r.c.Capacity())
}

func (r *BinaryRelation) rxRow(ob Ob) *denseset.DenseSet {
	off := int(ob) * r.rowWords
	return denseset.NewAlias(r.rxWords[off:off+r.rowWords], r.c.Capacity())
}

// Lx returns the row of things lhs relates to, Lx[lhs].
func (r *BinaryRelation) Lx(lhs Ob) *denseset.DenseSet { return r.lxRow(lhs) }

// Rx returns the row of things that relate to rhs, Rx[rhs].
func (r *BinaryRelation) Rx(rhs Ob) *denseset.DenseSet { return r.rxRow(rhs) }

// Contains reports whether (lhs,rhs) ∈ R.
func (r *BinaryRelation) Contains(lhs, rhs Ob) bool {
	return r.lxRow(lhs).Contains(rhs)
}

// Insert adds (lhs,rhs) to the relation. Fires the insert event exactly
// once, when the pair is newly observed (spec.md §4.C).
func (r *BinaryRelation) Insert(lhs, rhs Ob) {
	newlySet := r.lxRow(lhs).InsertReportNew(rhs)
	if r.symmetric {
		r.lxRow(rhs).Insert(lhs)
	} else {
		r.rxRow(rhs).Insert(lhs)
	}
	if newlySet && r.insertCallback != nil {
		r.insertCallback(lhs, rhs)
	}
}

// ValidateDisjoint reports ErrInconsistent if r and other share any pair
// (spec.md §3 invariant 4, used for LESS vs NLESS).
func (r *BinaryRelation) ValidateDisjoint(other *BinaryRelation) error {
	dim := r.c.Capacity() + 1
	for lhs := 0; lhs < dim; lhs++ {
		if !r.lxRow(Ob(lhs)).Disjoint(other.lxRow(Ob(lhs))) {
			return ErrInconsistent
		}
	}
	return nil
}

// UnsafeMerge collapses every pair referencing dep into pairs referencing
// rep=find(dep), updating both Lx and Rx sides and firing the insert
// callback for each newly observed pair (spec.md §4.C).
func (r *BinaryRelation) UnsafeMerge(dep Ob, find func(Ob) Ob) {
	rep := find(dep)

	var rhsOfDep []Ob
	it := r.lxRow(dep).Iterate()
	for {
		rhs, ok := it.Next()
		if !ok {
			break
		}
		rhsOfDep = append(rhsOfDep, rhs)
	}
	r.lxRow(dep).Clear()
	for _, rhs := range rhsOfDep {
		nr := find(rhs)
		r.rxRow(rhs).Remove(dep)
		r.Insert(rep, nr)
	}

	if r.symmetric {
		return // Lx==Rx, the pass above already covered both directions.
	}

	var lhsOfDep []Ob
	it2 := r.rxRow(dep).Iterate()
	for {
		lhs, ok := it2.Next()
		if !ok {
			break
		}
		lhsOfDep = append(lhsOfDep, lhs)
	}
	r.rxRow(dep).Clear()
	for _, lhs := range lhsOfDep {
		if lhs == dep {
			continue // handled by the rhsOfDep pass when lhs==rhs==dep
		}
		nl := find(lhs)
		r.lxRow(lhs).Remove(dep)
		r.Insert(nl, rep)
	}
}

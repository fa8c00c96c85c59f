package signature

import (
	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/denseset"
)

// Ob re-exports carrier.Ob so callers rarely need to import both packages.
type Ob = carrier.Ob

// UnaryRelation is an owning DenseSet over the carrier's id space (spec.md
// §3, §4.C).
type UnaryRelation struct {
	name           string
	c              *carrier.Carrier
	set            *denseset.DenseSet
	insertCallback func(ob Ob)
}

// NewUnaryRelation allocates an empty unary relation over c's id space.
func NewUnaryRelation(name string, c *carrier.Carrier, insertCallback func(ob Ob)) *UnaryRelation {
	return &UnaryRelation{
		name:           name,
		c:              c,
		set:            denseset.New(c.Capacity()),
		insertCallback: insertCallback,
	}
}

// Name returns the relation's declared name.
func (r *UnaryRelation) Name() string { return r.name }

// Contains reports whether ob is a member.
func (r *UnaryRelation) Contains(ob Ob) bool { return r.set.Contains(ob) }

// Insert adds ob to the relation. Idempotent and atomic at the bit level;
// fires the insert event exactly when the bit transitions from unset to
// set (spec.md §4.C).
func (r *UnaryRelation) Insert(ob Ob) {
	if r.set.InsertReportNew(ob) && r.insertCallback != nil {
		r.insertCallback(ob)
	}
}

// Iterate returns an ascending iterator over the relation's members.
func (r *UnaryRelation) Iterate() *denseset.Iterator { return r.set.Iterate() }

// Set exposes the backing DenseSet, e.g. for VM LETS_UNARY_RELATION binds.
func (r *UnaryRelation) Set() *denseset.DenseSet { return r.set }

// UnsafeMerge collapses any membership of dep into rep=find(dep). Called
// once per demoted ob inside the scheduler's strict critical section.
func (r *UnaryRelation) UnsafeMerge(dep Ob, find func(Ob) Ob) {
	if !r.set.Contains(dep) {
		return
	}
	r.set.Remove(dep)
	r.Insert(find(dep))
}

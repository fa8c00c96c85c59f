package signature_test

import (
	"testing"

	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/stretchr/testify/require"
)

func TestBinaryFunctionInsertAndInverseIndices(t *testing.T) {
	c := newCarrier(t, 16, 5)
	f := signature.NewBinaryFunction("APP", c, nil)

	require.NoError(t, f.Insert(1, 2, 4))

	v, ok := f.Find(1, 2)
	require.True(t, ok)
	require.Equal(t, signature.Ob(4), v)

	require.True(t, f.Lx(1).Contains(2))
	require.True(t, f.Rx(2).Contains(1))

	pairs := f.IterVal(4)
	require.Len(t, pairs, 1)

	rhss := f.IterValLhs(4, 1)
	require.Equal(t, []signature.Ob{2}, rhss)

	lhss := f.IterValRhs(4, 2)
	require.Equal(t, []signature.Ob{1}, lhss)
}

func TestBinaryFunctionFiresInsertOnlyOnNewMapping(t *testing.T) {
	c := newCarrier(t, 16, 5)
	var fired int
	f := signature.NewBinaryFunction("APP", c, func(lhs, rhs, val signature.Ob) {
		fired++
	})

	require.NoError(t, f.Insert(1, 2, 4))
	require.NoError(t, f.Insert(1, 2, 4))
	require.Equal(t, 1, fired)
}

func TestBinaryFunctionUnsafeMergeReindexes(t *testing.T) {
	c := newCarrier(t, 16, 5)
	f := signature.NewBinaryFunction("APP", c, nil)
	require.NoError(t, f.Insert(4, 1, 5))
	require.NoError(t, f.Insert(1, 4, 3))

	_, err := c.Merge(4, 2)
	require.NoError(t, err)
	f.UnsafeMerge(4, c.Find)

	v, ok := f.Find(2, 1)
	require.True(t, ok)
	require.Equal(t, signature.Ob(5), v)

	v, ok = f.Find(1, 2)
	require.True(t, ok)
	require.Equal(t, signature.Ob(3), v)
}

// TestBinaryFunctionUnsafeMergeRewritesStaleValue covers spec.md §8
// scenario 2: f(1,2)=3, f(1,3)=2, merge(3,2) must leave f(1,2)=2. The
// pair (1,2) has neither argument equal to the merged-away ob, so it is
// only reachable through the value-keyed inverse index, not the
// argument-keyed support rows.
func TestBinaryFunctionUnsafeMergeRewritesStaleValue(t *testing.T) {
	c := newCarrier(t, 16, 3)
	f := signature.NewBinaryFunction("APP", c, nil)
	require.NoError(t, f.Insert(1, 2, 3))
	require.NoError(t, f.Insert(1, 3, 2))

	_, err := c.Merge(3, 2)
	require.NoError(t, err)
	f.UnsafeMerge(3, c.Find)

	v, ok := f.Find(1, 2)
	require.True(t, ok)
	require.Equal(t, signature.Ob(2), v)
}

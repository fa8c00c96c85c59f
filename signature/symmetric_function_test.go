package signature_test

import (
	"testing"

	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/stretchr/testify/require"
)

// TestSymmetricFunctionIdempotentUnderArgumentSwap pins spec.md §8
// scenario 5: inserting (a,b,v) then (b,a,v) must not double-fire the
// insert callback or disagree on the stored value.
func TestSymmetricFunctionIdempotentUnderArgumentSwap(t *testing.T) {
	c := newCarrier(t, 16, 5)
	var fired int
	f := signature.NewSymmetricFunction("JOIN", c, func(lhs, rhs, val signature.Ob) {
		fired++
	})

	require.NoError(t, f.Insert(1, 2, 3))
	require.NoError(t, f.Insert(2, 1, 3))

	v, ok := f.Find(1, 2)
	require.True(t, ok)
	require.Equal(t, signature.Ob(3), v)

	v, ok = f.Find(2, 1)
	require.True(t, ok)
	require.Equal(t, signature.Ob(3), v)

	require.Equal(t, 1, fired)
}

func TestSymmetricFunctionSupportAndInverse(t *testing.T) {
	c := newCarrier(t, 16, 5)
	f := signature.NewSymmetricFunction("JOIN", c, nil)

	require.NoError(t, f.Insert(1, 2, 5))

	require.True(t, f.Support(1).Contains(2))
	require.True(t, f.Support(2).Contains(1))

	others := f.IterValArg(5, 1)
	require.Equal(t, []signature.Ob{2}, others)
	others = f.IterValArg(5, 2)
	require.Equal(t, []signature.Ob{1}, others)
}

func TestSymmetricFunctionUnsafeMergeReindexes(t *testing.T) {
	c := newCarrier(t, 16, 5)
	f := signature.NewSymmetricFunction("JOIN", c, nil)
	require.NoError(t, f.Insert(4, 1, 5))

	_, err := c.Merge(4, 3)
	require.NoError(t, err)
	f.UnsafeMerge(4, c.Find)

	v, ok := f.Find(3, 1)
	require.True(t, ok)
	require.Equal(t, signature.Ob(5), v)

	v, ok = f.Find(1, 3)
	require.True(t, ok)
	require.Equal(t, signature.Ob(5), v)
}

// TestSymmetricFunctionUnsafeMergeRewritesStaleValue mirrors spec.md §8
// scenario 2 for the symmetric case: f(1,2)=3, f(1,3)=2, merge(3,2) must
// leave f(1,2)=2 even though neither argument of that pair is the
// merged-away ob.
func TestSymmetricFunctionUnsafeMergeRewritesStaleValue(t *testing.T) {
	c := newCarrier(t, 16, 3)
	f := signature.NewSymmetricFunction("JOIN", c, nil)
	require.NoError(t, f.Insert(1, 2, 3))
	require.NoError(t, f.Insert(1, 3, 2))

	_, err := c.Merge(3, 2)
	require.NoError(t, err)
	f.UnsafeMerge(3, c.Find)

	v, ok := f.Find(1, 2)
	require.True(t, ok)
	require.Equal(t, signature.Ob(2), v)
}

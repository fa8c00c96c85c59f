// Package denseset_test verifies DenseSet's bit-level contracts.
package denseset_test

import (
	"testing"

	"github.com/fritzo/pomagma-sub000/denseset"
	"github.com/stretchr/testify/require"
)

func TestInsertContainsRemove(t *testing.T) {
	s := denseset.New(8)
	require.False(t, s.Contains(3))
	s.Insert(3)
	require.True(t, s.Contains(3))
	// idempotent
	s.Insert(3)
	require.Equal(t, 1, s.Count())
	s.Remove(3)
	require.False(t, s.Contains(3))
	require.True(t, s.Empty())
}

func TestFillAllThenIterateMatchesCapacity(t *testing.T) {
	s := denseset.New(5)
	s.FillAll()
	var got []denseset.Ob
	it := s.Iterate()
	for {
		ob, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, ob)
	}
	require.Equal(t, []denseset.Ob{1, 2, 3, 4, 5}, got)
	require.Equal(t, 5, s.Count())
}

func TestIterationEmptyTerminatesImmediately(t *testing.T) {
	s := denseset.New(10)
	it := s.Iterate()
	_, ok := it.Next()
	require.False(t, ok)
}

func TestTryInsertUnusedPicksSmallest(t *testing.T) {
	s := denseset.New(4)
	s.Insert(1)
	ob, ok := s.TryInsertUnused()
	require.True(t, ok)
	require.Equal(t, denseset.Ob(2), ob)

	s.Insert(3)
	s.Insert(4)
	_, ok = s.TryInsertUnused()
	require.False(t, ok, "set should report full once 1..4 are all members")
}

func TestMergeIntoReportsGrowthAndDiff(t *testing.T) {
	dst := denseset.New(8)
	src := denseset.New(8)
	dst.Insert(1)
	src.Insert(1)
	src.Insert(2)
	src.Insert(5)

	grew, added := denseset.MergeInto(dst, src, true)
	require.True(t, grew)
	require.ElementsMatch(t, []denseset.Ob{2, 5}, added)
	require.True(t, dst.Contains(2))
	require.True(t, dst.Contains(5))

	// Re-merging the same source is a no-op.
	grew, added = denseset.MergeInto(dst, src, true)
	require.False(t, grew)
	require.Empty(t, added)
}

func TestSubsetDisjointEqual(t *testing.T) {
	a := denseset.New(8)
	b := denseset.New(8)
	a.Insert(1)
	a.Insert(2)
	b.Insert(1)
	b.Insert(2)
	b.Insert(3)

	require.True(t, a.Subset(b))
	require.False(t, b.Subset(a))
	require.False(t, a.Equal(b))

	c := denseset.New(8)
	c.Insert(4)
	require.True(t, a.Disjoint(c))
	require.False(t, a.Disjoint(b))
}

func TestAliasSharesStorage(t *testing.T) {
	backing := make([]uint64, 1)
	owner := denseset.NewAlias(backing, 8)
	view := denseset.NewAlias(backing, 8)

	owner.Insert(5)
	require.True(t, view.Contains(5), "alias views over the same words observe each other's writes")
}

func TestOutOfRangeIsProgrammerError(t *testing.T) {
	s := denseset.New(4)
	require.Panics(t, func() { s.Contains(0) })
	require.Panics(t, func() { s.Insert(5) })
}

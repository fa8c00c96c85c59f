package carrier_test

import (
	"testing"

	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/stretchr/testify/require"
)

func TestTryInsertPicksSmallestAndFull(t *testing.T) {
	c := carrier.New(3, nil)
	a, err := c.TryInsert()
	require.NoError(t, err)
	require.Equal(t, carrier.Ob(1), a)

	b, err := c.TryInsert()
	require.NoError(t, err)
	require.Equal(t, carrier.Ob(2), b)

	cc, err := c.TryInsert()
	require.NoError(t, err)
	require.Equal(t, carrier.Ob(3), cc)

	_, err = c.TryInsert()
	require.ErrorIs(t, err, carrier.ErrFull)
	require.Equal(t, 3, c.ItemCount())
}

func TestFindIsIdempotentAndReflexive(t *testing.T) {
	c := carrier.New(8, nil)
	for i := 0; i < 3; i++ {
		_, err := c.TryInsert()
		require.NoError(t, err)
	}
	require.Equal(t, carrier.Ob(1), c.Find(1))
	require.Equal(t, c.Find(1), c.Find(c.Find(1)))
}

func TestMergeOrdersDepAboveRep(t *testing.T) {
	var merged [][2]carrier.Ob
	c := carrier.New(8, func(dep, rep carrier.Ob) {
		merged = append(merged, [2]carrier.Ob{dep, rep})
	})
	for i := 0; i < 3; i++ {
		_, err := c.TryInsert()
		require.NoError(t, err)
	}
	// merge(2,3) should reorder to dep=3, rep=2 since the contract is dep>rep.
	rep, err := c.Merge(2, 3)
	require.NoError(t, err)
	require.Equal(t, carrier.Ob(2), rep)
	require.Equal(t, carrier.Ob(2), c.Find(3))
	require.Equal(t, 2, c.RepCount())
	require.Equal(t, [][2]carrier.Ob{{3, 2}}, merged)
}

// TestMergePropagationScenario pins spec.md §8 scenario 2: carrier {1,2,3},
// merge(3,2) results in reps[3]=2 and rep_count decremented.
func TestMergePropagationScenario(t *testing.T) {
	c := carrier.New(8, nil)
	for i := 0; i < 3; i++ {
		_, err := c.TryInsert()
		require.NoError(t, err)
	}
	rep, err := c.Merge(3, 2)
	require.NoError(t, err)
	require.Equal(t, carrier.Ob(2), rep)
	require.True(t, c.Equal(2, 3))
	require.False(t, c.Equal(1, 2))
	require.Equal(t, 2, c.RepCount())
}

func TestUnsafeRemoveRequiresNoOutstandingDeps(t *testing.T) {
	c := carrier.New(8, nil)
	for i := 0; i < 2; i++ {
		_, err := c.TryInsert()
		require.NoError(t, err)
	}
	_, err := c.Merge(2, 1)
	require.NoError(t, err)

	require.Panics(t, func() { _ = c.UnsafeRemove(1) }, "rep 1 still has dep 2 pointing to it")

	require.NoError(t, c.UnsafeRemove(2))
	require.False(t, c.Contains(2))
	require.NoError(t, c.UnsafeRemove(1))
	require.Equal(t, 0, c.ItemCount())
}

func TestSetOrMergeInstallsOnceThenMerges(t *testing.T) {
	c := carrier.New(8, nil)
	for i := 0; i < 2; i++ {
		_, err := c.TryInsert()
		require.NoError(t, err)
	}
	var slot uint32
	set, err := c.SetOrMerge(&slot, 1)
	require.NoError(t, err)
	require.True(t, set)
	require.Equal(t, uint32(1), slot)

	set, err = c.SetOrMerge(&slot, 2)
	require.NoError(t, err)
	require.False(t, set)
	require.True(t, c.Equal(1, 2), "conflicting write should merge rather than overwrite")
}

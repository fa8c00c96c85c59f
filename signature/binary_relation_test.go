package signature_test

import (
	"testing"

	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/stretchr/testify/require"
)

func TestBinaryRelationAsymmetricLxRxAgree(t *testing.T) {
	c := newCarrier(t, 8, 4)
	r := signature.NewBinaryRelation("LESS", c, false, nil)

	r.Insert(1, 2)
	r.Insert(1, 3)

	require.True(t, r.Contains(1, 2))
	require.False(t, r.Contains(2, 1))
	require.True(t, r.Lx(1).Contains(2))
	require.True(t, r.Rx(2).Contains(1))
	require.False(t, r.Rx(1).Contains(2))
}

func TestBinaryRelationSymmetricSharesStorage(t *testing.T) {
	c := newCarrier(t, 8, 4)
	r := signature.NewBinaryRelation("NLESS", c, true, nil)

	r.Insert(1, 2)

	require.True(t, r.Contains(1, 2))
	require.True(t, r.Contains(2, 1), "symmetric relation should be queryable in either order")
}

func TestBinaryRelationValidateDisjointCatchesOverlap(t *testing.T) {
	c := newCarrier(t, 8, 4)
	less := signature.NewBinaryRelation("LESS", c, false, nil)
	nless := signature.NewBinaryRelation("NLESS", c, true, nil)

	less.Insert(1, 2)
	require.NoError(t, less.ValidateDisjoint(nless))

	nless.Insert(1, 2)
	require.ErrorIs(t, less.ValidateDisjoint(nless), signature.ErrInconsistent)
}

func TestBinaryRelationUnsafeMergeReindexesBothSides(t *testing.T) {
	c := newCarrier(t, 8, 4)
	r := signature.NewBinaryRelation("LESS", c, false, nil)
	r.Insert(3, 4)
	r.Insert(4, 3)

	_, err := c.Merge(3, 2)
	require.NoError(t, err)
	r.UnsafeMerge(3, c.Find)

	require.True(t, r.Contains(2, 4))
	require.True(t, r.Contains(4, 2))
	require.False(t, r.Contains(3, 4))
}

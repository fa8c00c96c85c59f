package signature_test

import (
	"testing"

	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/stretchr/testify/require"
)

func TestInjectiveFunctionForwardAndInverse(t *testing.T) {
	c := newCarrier(t, 8, 4)
	f := signature.NewInjectiveFunction("NEG", c, nil)

	require.NoError(t, f.Insert(1, 2))

	v, ok := f.Find(1)
	require.True(t, ok)
	require.Equal(t, signature.Ob(2), v)

	arg, ok := f.FindInverse(2)
	require.True(t, ok)
	require.Equal(t, signature.Ob(1), arg)

	_, ok = f.FindInverse(3)
	require.False(t, ok)
}

func TestInjectiveFunctionFiresOnceAndMergesOnConflict(t *testing.T) {
	c := newCarrier(t, 8, 4)
	var fired int
	f := signature.NewInjectiveFunction("NEG", c, func(arg, val signature.Ob) {
		fired++
	})

	require.NoError(t, f.Insert(1, 2))
	require.NoError(t, f.Insert(1, 3))

	v, ok := f.Find(1)
	require.True(t, ok)
	require.True(t, c.Equal(v, 2))
	require.Equal(t, 1, fired)
}

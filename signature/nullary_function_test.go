package signature_test

import (
	"testing"

	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/stretchr/testify/require"
)

func TestNullaryFunctionInsertThenMerge(t *testing.T) {
	c := newCarrier(t, 8, 3)
	var fired []signature.Ob
	f := signature.NewNullaryFunction("I", c, func(val signature.Ob) {
		fired = append(fired, val)
	})

	_, ok := f.Find()
	require.False(t, ok)

	require.NoError(t, f.Insert(2))
	v, ok := f.Find()
	require.True(t, ok)
	require.Equal(t, signature.Ob(2), v)

	require.NoError(t, f.Insert(3))
	v, ok = f.Find()
	require.True(t, ok)
	require.True(t, c.Equal(v, 2))
	require.Equal(t, []signature.Ob{2}, fired, "second insert should merge, not re-fire insert")
}

package router_test

import (
	"testing"

	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/router"
	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/stretchr/testify/require"
)

func TestSpellFindsCheapestExpressionForConstant(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	k, err := sig.DeclareNullaryFunction("K", nil)
	require.NoError(t, err)

	ob1, err := c.TryInsert()
	require.NoError(t, err)
	require.NoError(t, k.Insert(ob1))

	r := router.New(sig, nil)
	e, cost, err := r.Spell(ob1)
	require.NoError(t, err)
	require.Equal(t, "K", e.String())
	require.Equal(t, 1.0, cost)
}

func TestSpellComposesBinaryFunctionApplication(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	k, err := sig.DeclareNullaryFunction("K", nil)
	require.NoError(t, err)
	app, err := sig.DeclareBinaryFunction("APP", nil)
	require.NoError(t, err)

	ob1, err := c.TryInsert()
	require.NoError(t, err)
	ob2, err := c.TryInsert()
	require.NoError(t, err)
	require.NoError(t, k.Insert(ob1))
	require.NoError(t, app.Insert(ob1, ob1, ob2))

	r := router.New(sig, router.Weights{"K": 1, "APP": 2})
	e, cost, err := r.Spell(ob2)
	require.NoError(t, err)
	require.Equal(t, "APP(K, K)", e.String())
	require.Equal(t, 4.0, cost)
}

func TestSpellUnreachableObReportsError(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	_, err := sig.DeclareNullaryFunction("K", nil)
	require.NoError(t, err)

	ob1, err := c.TryInsert()
	require.NoError(t, err)

	r := router.New(sig, nil)
	_, _, err = r.Spell(ob1)
	require.ErrorIs(t, err, router.ErrUnreachable)
}

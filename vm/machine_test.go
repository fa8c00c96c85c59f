package vm_test

import (
	"strings"
	"testing"

	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/fritzo/pomagma-sub000/vm"
	"github.com/stretchr/testify/require"
)

// TestNullaryPropagation pins the "nullary propagation" scenario: a
// signature with a nullary K and a binary APP, and the rule
// "GIVEN_NULLARY_FUNCTION K k; INFER_BINARY_FUNCTION APP k k k". Starting
// from an empty 8-ob structure, once K is set to ob 1 the rule must fire
// and establish APP(1,1)=1.
func TestNullaryPropagation(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	k, err := sig.DeclareNullaryFunction("K", nil)
	require.NoError(t, err)
	app, err := sig.DeclareBinaryFunction("APP", nil)
	require.NoError(t, err)

	ob1, err := c.TryInsert()
	require.NoError(t, err)

	progs, err := vm.ParseAll(sig, strings.NewReader(
		"GIVEN_NULLARY_FUNCTION K k\nINFER_BINARY_FUNCTION APP k k k\n"))
	require.NoError(t, err)
	require.Len(t, progs, 1)

	require.NoError(t, k.Insert(ob1))

	m := vm.New(sig)
	ctx := &vm.Context{}
	require.NoError(t, m.Execute(progs[0], ctx, ob1))

	val, ok := app.Find(ob1, ob1)
	require.True(t, ok)
	require.Equal(t, ob1, val)
}

func TestExecuteRejectsWrongArgCount(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	_, err := sig.DeclareNullaryFunction("K", nil)
	require.NoError(t, err)

	progs, err := vm.ParseAll(sig, strings.NewReader("GIVEN_NULLARY_FUNCTION K k\n"))
	require.NoError(t, err)

	m := vm.New(sig)
	ctx := &vm.Context{}
	err = m.Execute(progs[0], ctx)
	require.Error(t, err)
}

func TestExecuteRejectsBlockShardedProgramWithoutExecuteBlock(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	_, err := sig.DeclareUnaryRelation("EVEN", nil)
	require.NoError(t, err)

	progs, err := vm.ParseAll(sig, strings.NewReader(
		"FOR_BLOCK\nFOR_UNARY_RELATION EVEN x\nINFER_UNARY_RELATION EVEN x\n"))
	require.NoError(t, err)

	m := vm.New(sig)
	ctx := &vm.Context{}
	err = m.Execute(progs[0], ctx)
	require.Error(t, err)
}

func TestForAllIteratesCarrierSupport(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	rel, err := sig.DeclareUnaryRelation("EVEN", nil)
	require.NoError(t, err)

	ob1, err := c.TryInsert()
	require.NoError(t, err)
	ob2, err := c.TryInsert()
	require.NoError(t, err)

	progs, err := vm.ParseAll(sig, strings.NewReader(
		"FOR_ALL x\nINFER_UNARY_RELATION EVEN x\n"))
	require.NoError(t, err)

	m := vm.New(sig)
	ctx := &vm.Context{}
	require.NoError(t, m.Execute(progs[0], ctx))

	require.True(t, rel.Contains(ob1))
	require.True(t, rel.Contains(ob2))
}

func TestIfUnaryRelationGuardsInference(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	even, err := sig.DeclareUnaryRelation("EVEN", nil)
	require.NoError(t, err)
	odd, err := sig.DeclareUnaryRelation("ODD", nil)
	require.NoError(t, err)

	ob1, err := c.TryInsert()
	require.NoError(t, err)
	ob2, err := c.TryInsert()
	require.NoError(t, err)
	even.Insert(ob1)
	require.True(t, even.Contains(ob1))

	progs, err := vm.ParseAll(sig, strings.NewReader(
		"FOR_ALL x\nIF_UNARY_RELATION EVEN x\nINFER_UNARY_RELATION ODD x\n"))
	require.NoError(t, err)

	m := vm.New(sig)
	ctx := &vm.Context{}
	require.NoError(t, m.Execute(progs[0], ctx))

	require.True(t, odd.Contains(ob1))
	require.False(t, odd.Contains(ob2))
}

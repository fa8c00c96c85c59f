package agenda_test

import (
	"strings"
	"testing"

	"github.com/fritzo/pomagma-sub000/agenda"
	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/fritzo/pomagma-sub000/vm"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, sig *signature.Signature, src string) []*vm.Program {
	t.Helper()
	progs, err := vm.ParseAll(sig, strings.NewReader(src))
	require.NoError(t, err)
	return progs
}

func TestAddClassifiesByLeadingOpcode(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	k, err := sig.DeclareNullaryFunction("K", nil)
	require.NoError(t, err)
	_ = k
	_, err = sig.DeclareUnaryRelation("EVEN", nil)
	require.NoError(t, err)

	a := agenda.New(4)

	a.AddAll(compile(t, sig, "GIVEN_EXISTS x\nINFER_UNARY_RELATION EVEN x\n"))
	a.AddAll(compile(t, sig, "GIVEN_NULLARY_FUNCTION K k\nINFER_UNARY_RELATION EVEN k\n"))
	a.AddAll(compile(t, sig, "FOR_ALL x\nINFER_UNARY_RELATION EVEN x\n"))
	a.AddAll(compile(t, sig, "FOR_BLOCK\nFOR_UNARY_RELATION EVEN x\nINFER_UNARY_RELATION EVEN x\n"))

	require.Len(t, a.Exists(), 1)
	h, ok := sig.Handle("K")
	require.True(t, ok)
	require.Len(t, a.NullaryFunction(h), 1)
	require.Len(t, a.UnaryRelation(h), 0)

	// One small-cleanup program (the bare FOR_ALL) and one large-cleanup
	// program (the FOR_BLOCK), over a 4-block carrier.
	require.Equal(t, 1+1*4, a.CleanupCount())
}

func TestCleanupResolvesSmallBeforeLarge(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	_, err := sig.DeclareUnaryRelation("EVEN", nil)
	require.NoError(t, err)

	a := agenda.New(2)
	small := compile(t, sig, "FOR_ALL x\nINFER_UNARY_RELATION EVEN x\n")
	large := compile(t, sig, "FOR_BLOCK\nFOR_UNARY_RELATION EVEN x\nINFER_UNARY_RELATION EVEN x\n")
	a.AddAll(small)
	a.AddAll(large)

	require.Equal(t, 1+1*2, a.CleanupCount())

	prog, block, isBlock := a.Cleanup(0)
	require.Same(t, small[0], prog)
	require.False(t, isBlock)
	require.Equal(t, 0, block)

	prog, block, isBlock = a.Cleanup(1)
	require.Same(t, large[0], prog)
	require.True(t, isBlock)
	require.Equal(t, 0, block)

	prog, block, isBlock = a.Cleanup(2)
	require.Same(t, large[0], prog)
	require.True(t, isBlock)
	require.Equal(t, 1, block)
}

func TestProgramsWithNoInstructionsAreIgnored(t *testing.T) {
	a := agenda.New(1)
	a.Add(&vm.Program{Name: "empty"})
	require.Equal(t, 0, a.CleanupCount())
	require.Empty(t, a.Exists())
}

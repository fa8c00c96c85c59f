package vm_test

import (
	"strings"
	"testing"

	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/fritzo/pomagma-sub000/vm"
	"github.com/stretchr/testify/require"
)

func newSignature(t *testing.T) *signature.Signature {
	t.Helper()
	c := carrier.New(8, nil)
	s := signature.New(c)
	_, err := s.DeclareNullaryFunction("K", nil)
	require.NoError(t, err)
	_, err = s.DeclareBinaryFunction("APP", nil)
	require.NoError(t, err)
	return s
}

func TestParserCompilesScenario1Program(t *testing.T) {
	sig := newSignature(t)
	src := "GIVEN_NULLARY_FUNCTION K k\nINFER_BINARY_FUNCTION APP k k k\n"
	progs, err := vm.ParseAll(sig, strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, progs, 1)
	require.Equal(t, 2, progs[0].Len())
	require.Equal(t, vm.GIVEN_NULLARY_FUNCTION, progs[0].Instrs[0].Op)
	require.Equal(t, vm.INFER_BINARY_FUNCTION, progs[0].Instrs[1].Op)
}

func TestParserRejectsUnknownOpCode(t *testing.T) {
	sig := newSignature(t)
	_, err := vm.ParseAll(sig, strings.NewReader("NOT_A_REAL_OP x\n"))
	var perr *vm.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParserRejectsUndeclaredRegister(t *testing.T) {
	sig := newSignature(t)
	_, err := vm.ParseAll(sig, strings.NewReader("INFER_NULLARY_FUNCTION K missing\n"))
	require.Error(t, err)
}

func TestParserRejectsArityMismatch(t *testing.T) {
	sig := newSignature(t)
	_, err := vm.ParseAll(sig, strings.NewReader("INFER_UNARY_RELATION APP x\n"))
	require.Error(t, err)
}

func TestParserSkipsCommentsAndBlankLines(t *testing.T) {
	sig := newSignature(t)
	src := "# a comment\n\nGIVEN_NULLARY_FUNCTION K k  # trailing comment\n"
	progs, err := vm.ParseAll(sig, strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, progs, 1)
	require.Equal(t, 1, progs[0].Len())
}

package signature_test

import (
	"strings"
	"testing"

	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/stretchr/testify/require"
)

func TestDeclareAssignsDenseHandlesInOrder(t *testing.T) {
	c := newCarrier(t, 8, 3)
	s := signature.New(c)

	_, err := s.DeclareUnaryRelation("NOT_FOO", nil)
	require.NoError(t, err)
	_, err = s.DeclareBinaryFunction("APP", nil)
	require.NoError(t, err)

	hFoo, ok := s.Handle("NOT_FOO")
	require.True(t, ok)
	require.Equal(t, signature.Handle(0), hFoo)

	hApp, ok := s.Handle("APP")
	require.True(t, ok)
	require.Equal(t, signature.Handle(1), hApp)

	require.Equal(t, signature.UnaryRelationKind, s.Kind(hFoo))
	require.Equal(t, signature.BinaryFunctionKind, s.Kind(hApp))
	require.Equal(t, []string{"NOT_FOO", "APP"}, s.Symbols())
}

func TestDeclareDuplicateNameFails(t *testing.T) {
	c := newCarrier(t, 8, 3)
	s := signature.New(c)
	_, err := s.DeclareNullaryFunction("I", nil)
	require.NoError(t, err)
	_, err = s.DeclareNullaryFunction("I", nil)
	require.ErrorIs(t, err, signature.ErrDuplicateSymbol)
}

func TestLookupWrongArityFails(t *testing.T) {
	c := newCarrier(t, 8, 3)
	s := signature.New(c)
	_, err := s.DeclareUnaryRelation("NOT_FOO", nil)
	require.NoError(t, err)

	_, err = s.BinaryFunction("NOT_FOO")
	require.ErrorIs(t, err, signature.ErrArityMismatch)

	_, err = s.UnaryRelation("MISSING")
	require.ErrorIs(t, err, signature.ErrUnknownSymbol)
}

func TestParseDeclarationsSkipsBlankAndComments(t *testing.T) {
	c := newCarrier(t, 8, 3)
	s := signature.New(c)
	input := strings.NewReader(strings.Join([]string{
		"# core theory",
		"",
		"UnaryRelation NOT_FOO",
		"BinaryFunction APP",
		"SymmetricFunction JOIN",
	}, "\n"))

	require.NoError(t, signature.ParseDeclarations(s, input))
	require.Equal(t, []string{"NOT_FOO", "APP", "JOIN"}, s.Symbols())

	_, err := s.UnaryRelation("NOT_FOO")
	require.NoError(t, err)
	_, err = s.BinaryFunction("APP")
	require.NoError(t, err)
	_, err = s.SymmetricFunction("JOIN")
	require.NoError(t, err)
}

func TestParseDeclarationsRejectsMalformedLine(t *testing.T) {
	c := newCarrier(t, 8, 3)
	s := signature.New(c)
	input := strings.NewReader("UnaryRelation\n")
	err := signature.ParseDeclarations(s, input)
	require.ErrorIs(t, err, signature.ErrDeclaration)
}

func TestUnsafeMergeAllAppliesToEveryDeclaredTable(t *testing.T) {
	c := newCarrier(t, 8, 4)
	s := signature.New(c)
	r, err := s.DeclareUnaryRelation("FOO", nil)
	require.NoError(t, err)
	f, err := s.DeclareNullaryFunction("I", nil)
	require.NoError(t, err)

	r.Insert(3)
	require.NoError(t, f.Insert(3))

	_, err = c.Merge(3, 2)
	require.NoError(t, err)
	s.UnsafeMergeAll(3, c.Find)

	require.False(t, r.Contains(3))
	require.True(t, r.Contains(2))
	v, ok := f.Find()
	require.True(t, ok)
	require.True(t, c.Equal(v, 2))
}

package sampler_test

import (
	"context"
	"testing"

	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/sampler"
	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/stretchr/testify/require"
)

func TestSampleInstallsNullaryConstantWhenUnset(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	k, err := sig.DeclareNullaryFunction("K", nil)
	require.NoError(t, err)

	s, err := sampler.New(sig, sampler.Weights{"K": 1})
	require.NoError(t, err)

	ok, err := s.Sample(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	_, ok = k.Find()
	require.True(t, ok)
}

func TestSampleDeclinesWhenDistributionEmpty(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	_, err := sig.DeclareNullaryFunction("K", nil)
	require.NoError(t, err)

	s, err := sampler.New(sig, nil)
	require.NoError(t, err)

	ok, err := s.Sample(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSampleDeclinesBinaryFunctionWithoutExistingArgs(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	_, err := sig.DeclareBinaryFunction("APP", nil)
	require.NoError(t, err)

	s, err := sampler.New(sig, sampler.Weights{"APP": 1})
	require.NoError(t, err)

	ok, err := s.Sample(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, c.ItemCount())
}

func TestNewRejectsRelationSymbols(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	_, err := sig.DeclareUnaryRelation("EVEN", nil)
	require.NoError(t, err)

	_, err = sampler.New(sig, sampler.Weights{"EVEN": 1})
	require.Error(t, err)
}

func TestNewRejectsUnknownSymbol(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	_, err := sampler.New(sig, sampler.Weights{"NOPE": 1})
	require.Error(t, err)
}

package transport

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/intentdrift/internal/encoder"
)

func encodeAll(t *testing.T, texts ...string) []encoder.Embedding {
	t.Helper()
	enc := encoder.NewHashEncoder()
	out := make([]encoder.Embedding, len(texts))
	for i, s := range texts {
		v, err := enc.Encode(context.Background(), s)
		require.NoError(t, err)
		out[i] = v
	}
	return out
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0.05, cfg.Reg)
	assert.Equal(t, 30, cfg.Iterations)
}

func TestCost_IdenticalCloudsNearZero(t *testing.T) {
	cloud := encodeAll(t, "book_flight", "book_hotel", "plan_activity")
	s := NewSinkhorn(DefaultConfig())

	got, err := s.Cost(cloud, cloud)
	require.NoError(t, err)
	assert.False(t, IsDegenerate(got))
	assert.InDelta(t, 0.0, got, 1e-3)
}

func TestCost_OrthogonalBasis(t *testing.T) {
	a := []encoder.Embedding{{1, 0}, {0, 1}}
	s := NewSinkhorn(DefaultConfig())

	got, err := s.Cost(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got, 1e-9)
}

func TestCost_SinglePoints(t *testing.T) {
	s := NewSinkhorn(DefaultConfig())
	got, err := s.Cost([]encoder.Embedding{{1, 0}}, []encoder.Embedding{{0, 1}})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, got, 1e-9)
}

func TestCost_Symmetric(t *testing.T) {
	a := encodeAll(t, "search flights from SFO to NYC", "book the flight AA100")
	b := encodeAll(t, "book_flight", "book_hotel", "plan_activity")
	s := NewSinkhorn(Config{Reg: 0.5, Iterations: 30})

	ab, err := s.Cost(a, b)
	require.NoError(t, err)
	ba, err := s.Cost(b, a)
	require.NoError(t, err)

	assert.InDelta(t, ab, ba, 1e-6)
	assert.Greater(t, ab, 0.0)
}

func TestCost_UnequalSizes(t *testing.T) {
	a := encodeAll(t, "one")
	b := encodeAll(t, "two", "three", "four", "five")
	got, err := NewSinkhorn(Config{Reg: 0.5, Iterations: 30}).Cost(a, b)
	require.NoError(t, err)
	assert.False(t, IsDegenerate(got))
	assert.Greater(t, got, 0.0)
	assert.LessOrEqual(t, got, 2.0)
}

func TestCost_EmptyCloud(t *testing.T) {
	s := NewSinkhorn(DefaultConfig())
	_, err := s.Cost(nil, encodeAll(t, "x"))
	assert.ErrorIs(t, err, ErrEmptyCloud)
	_, err = s.Cost(encodeAll(t, "x"), []encoder.Embedding{})
	assert.ErrorIs(t, err, ErrEmptyCloud)
}

func TestCost_DimensionMismatch(t *testing.T) {
	s := NewSinkhorn(DefaultConfig())
	_, err := s.Cost([]encoder.Embedding{{1, 0}}, []encoder.Embedding{{1, 0, 0}})
	assert.ErrorIs(t, err, encoder.ErrDimensionMismatch)
}

func TestCost_UnderflowIsNotGuarded(t *testing.T) {
	s := NewSinkhorn(Config{Reg: 1e-4, Iterations: 5})
	got, err := s.Cost([]encoder.Embedding{{1, 0}}, []encoder.Embedding{{0, 1}})
	require.NoError(t, err)
	assert.True(t, IsDegenerate(got), "expected non-finite cost, got %v", got)
}

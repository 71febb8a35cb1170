package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_Deterministic(t *testing.T) {
	a := NewStream(42)
	b := NewStream(42)
	for range 100 {
		require.Equal(t, a.IntRange(0, 1000), b.IntRange(0, 1000))
	}
	assert.Equal(t, int64(42), a.InitialSeed())
}

func TestStream_IntRangeBounds(t *testing.T) {
	s := NewStream(7)
	seen := make(map[int]bool)
	for range 1000 {
		v := s.IntRange(2, 4)
		require.GreaterOrEqual(t, v, 2)
		require.LessOrEqual(t, v, 4)
		seen[v] = true
	}
	assert.Len(t, seen, 3, "both ends of the range should be reachable")

	assert.Equal(t, 5, s.IntRange(5, 5))
}

func TestStream_Percent(t *testing.T) {
	s := NewStream(1)
	for range 1000 {
		p := s.Percent()
		require.GreaterOrEqual(t, p, 1)
		require.LessOrEqual(t, p, 100)
	}
}

func TestStream_Seed(t *testing.T) {
	s := NewStream(3)
	for range 100 {
		seed := s.Seed()
		require.GreaterOrEqual(t, seed, int64(0))
		require.LessOrEqual(t, seed, int64(maxSeed))
	}
}

func TestNewStreamSet(t *testing.T) {
	t.Run("same root seed derives same streams", func(t *testing.T) {
		a := NewStreamSet(0)
		b := NewStreamSet(0)
		assert.Equal(t, a.Mutations.InitialSeed(), b.Mutations.InitialSeed())
		assert.Equal(t, a.Names.InitialSeed(), b.Names.InitialSeed())
		assert.Equal(t, a.Tracks.InitialSeed(), b.Tracks.InitialSeed())
	})

	t.Run("named streams are derived in order from the root", func(t *testing.T) {
		set := NewStreamSet(99)
		root := NewStream(99)
		assert.Equal(t, root.Seed(), set.Mutations.InitialSeed())
		assert.Equal(t, root.Seed(), set.Names.InitialSeed())
		assert.Equal(t, root.Seed(), set.Tracks.InitialSeed())
	})

	t.Run("different root seeds diverge", func(t *testing.T) {
		a := NewStreamSet(1)
		b := NewStreamSet(2)
		assert.NotEqual(t, a.Mutations.InitialSeed(), b.Mutations.InitialSeed())
	})
}

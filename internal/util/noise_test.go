package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoiseFieldDeterministic(t *testing.T) {
	a := NewNoiseField(123456)
	b := NewNoiseField(123456)

	for i := 0; i < 200; i++ {
		x := float64(i)*0.37 - 20
		z := float64(i)*-0.11 + 5
		assert.Equal(t, a.Eval(x, 0, z), b.Eval(x, 0, z), "одинаковый сид должен давать одинаковые значения")
		assert.Equal(t, a.Eval2D(x, z), b.Eval2D(x, z))
	}
}

func TestNoiseFieldRange(t *testing.T) {
	nf := NewNoiseField(42)

	for i := 0; i < 2000; i++ {
		x := float64(i) * 0.05
		v := nf.Eval(x, 0, -x*0.7)
		require.GreaterOrEqual(t, v, -1.0)
		require.LessOrEqual(t, v, 1.0)

		n := Normalized(v)
		require.GreaterOrEqual(t, n, 0.0)
		require.LessOrEqual(t, n, 1.0)
	}
}

func TestNoiseFieldSeedsDiffer(t *testing.T) {
	a := NewNoiseField(1)
	b := NewNoiseField(2)

	differs := false
	for i := 0; i < 64 && !differs; i++ {
		x := float64(i)*0.31 + 0.13
		if a.Eval(x, 0, x*0.5+0.27) != b.Eval(x, 0, x*0.5+0.27) {
			differs = true
		}
	}
	assert.True(t, differs, "разные сиды должны давать разные поля")
}

func TestNoiseFieldNotPeriodicOnLattice(t *testing.T) {
	nf := NewNoiseField(7)

	// Один генератор Перлина повторяется с периодом 256 ячеек решётки.
	same := 0
	for i := 0; i < 32; i++ {
		x := float64(i)*0.37 + 0.21
		z := float64(i)*0.53 + 0.11
		if nf.Eval(x, 0, z) == nf.Eval(x+256, 0, z) {
			same++
		}
	}
	assert.Less(t, same, 32, "поле не должно повторяться с периодом решётки")
}

func TestChunkRandDeterministic(t *testing.T) {
	r1 := ChunkRand(99, -3, 7, PassCoal)
	r2 := ChunkRand(99, -3, 7, PassCoal)
	for i := 0; i < 16; i++ {
		assert.Equal(t, r1.Int63(), r2.Int63())
	}

	assert.NotEqual(t, ChunkSeed(99, -3, 7, PassCoal), ChunkSeed(99, -3, 7, PassIron))
	assert.NotEqual(t, ChunkSeed(99, -3, 7, PassCoal), ChunkSeed(99, 7, -3, PassCoal))
}

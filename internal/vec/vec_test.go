package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloorDivAndMod(t *testing.T) {
	cases := []struct {
		a, b, div, mod int
	}{
		{0, 16, 0, 0},
		{15, 16, 0, 15},
		{16, 16, 1, 0},
		{-1, 16, -1, 15},
		{-16, 16, -1, 0},
		{-17, 16, -2, 15},
	}
	for _, c := range cases {
		assert.Equal(t, c.div, FloorDiv(c.a, c.b), "FloorDiv(%d, %d)", c.a, c.b)
		assert.Equal(t, c.mod, Mod(c.a, c.b), "Mod(%d, %d)", c.a, c.b)
	}
}

func TestVec2Window(t *testing.T) {
	center := Vec2{X: 50, Z: -3}

	assert.True(t, Vec2{X: 53, Z: 0}.Within(center, 3))
	assert.False(t, Vec2{X: 54, Z: -3}.Within(center, 3))
	assert.Equal(t, 4, Vec2{X: 46, Z: -1}.ChebyshevDistance(center))
}

func TestVec2Neighbors8(t *testing.T) {
	n := Vec2{X: 1, Z: 1}.Neighbors8()

	seen := make(map[Vec2]struct{})
	for _, p := range n {
		assert.Equal(t, 1, p.ChebyshevDistance(Vec2{X: 1, Z: 1}))
		seen[p] = struct{}{}
	}
	assert.Len(t, seen, 8, "соседи не должны повторяться")
}

package world

import (
	"testing"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countTypes(c *Chunk) map[BlockType]int {
	out := make(map[BlockType]int)
	for _, b := range c.Blocks() {
		out[b.Type]++
	}
	return out
}

func TestSingleChunkGeneration(t *testing.T) {
	cfg := DefaultGeneratorConfig(123456)
	cfg.MinHeight = 1
	cfg.MaxHeight = 20
	cfg.Trees = false
	cfg.Coal, cfg.Iron = DefaultOres(cfg.MaxHeight, 18, 8)
	gen := NewGenerator(cfg)

	c := gen.Generate(vec.Vec2{X: 0, Z: 0})
	require.NoError(t, c.Validate())

	expected := 0
	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			h := gen.ColumnHeight(x, z)
			require.GreaterOrEqual(t, h, 1)
			require.LessOrEqual(t, h, cfg.MaxHeight)
			expected += h + 1

			bottom, ok := c.BlockAt(x, 0, z)
			require.True(t, ok)
			assert.Equal(t, Bedrock, bottom.Type)

			top, ok := c.BlockAt(x, h, z)
			require.True(t, ok)
			assert.Equal(t, Grass, top.Type, "столбец (%d, %d)", x, z)
			assert.False(t, c.IsBlockAt(x, h+1, z))
		}
	}

	assert.Equal(t, expected, c.Len(), "руды только заменяют камень")
	assert.Equal(t, ChunkSize*ChunkSize, countTypes(c)[Grass])
	assert.Equal(t, ChunkSize*ChunkSize, countTypes(c)[Bedrock])
}

func TestGenerationDeterministic(t *testing.T) {
	gen := NewGenerator(DefaultGeneratorConfig(777))
	other := NewGenerator(DefaultGeneratorConfig(777))

	for _, pos := range []vec.Vec2{{X: 0, Z: 0}, {X: -5, Z: 12}, {X: 1 << 16, Z: -(1 << 16)}} {
		a := gen.Generate(pos)
		b := other.Generate(pos)
		assert.Equal(t, a.Blocks(), b.Blocks(), "чанк %v", pos)
	}
}

func TestColumnLayers(t *testing.T) {
	cfg := DefaultGeneratorConfig(99)
	cfg.Ores = false
	cfg.Trees = false
	gen := NewGenerator(cfg)
	c := gen.Generate(vec.Vec2{X: 2, Z: 3})

	origin := c.OriginCell()
	h := gen.ColumnHeight(origin.X+7, origin.Z+9)
	for y := 0; y <= h; y++ {
		b, ok := c.BlockAt(7, y, 9)
		require.True(t, ok)
		switch {
		case y == 0:
			assert.Equal(t, Bedrock, b.Type)
		case y == h:
			assert.Equal(t, Grass, b.Type)
		case y >= h-3:
			assert.Equal(t, Dirt, b.Type, "y=%d", y)
		default:
			assert.Equal(t, Stone, b.Type, "y=%d", y)
		}
	}
}

func TestOresReplaceOnlyStone(t *testing.T) {
	plain := DefaultGeneratorConfig(2024)
	plain.Ores = false
	plain.Trees = false
	withOres := plain
	withOres.Ores = true

	pos := vec.Vec2{X: 4, Z: -4}
	base := NewGenerator(plain).Generate(pos)
	ores := NewGenerator(withOres).Generate(pos)

	require.Equal(t, base.Len(), ores.Len())

	oreCount := 0
	for i, b := range ores.Blocks() {
		orig := base.Blocks()[i]
		assert.Equal(t, orig.Pos, b.Pos)
		if b.Type != orig.Type {
			assert.Equal(t, Stone, orig.Type)
			assert.Contains(t, []BlockType{CoalOre, IronOre}, b.Type)
			oreCount++
		}
		if b.Type == IronOre {
			assert.LessOrEqual(t, b.Cell().Y, withOres.Iron.MaxY)
		}
	}
	assert.Greater(t, oreCount, 0)
}

func TestTreesGrowOnGrass(t *testing.T) {
	cfg := DefaultGeneratorConfig(5)
	cfg.Ores = false
	cfg.TreeChance = 1
	gen := NewGenerator(cfg)
	c := gen.Generate(vec.Vec2{})
	require.NoError(t, c.Validate())

	types := countTypes(c)
	assert.Greater(t, types[Wood], 0)
	assert.Greater(t, types[Leaves], 0)
	assert.Equal(t, ChunkSize*ChunkSize, types[Grass], "деревья не перезаписывают траву")

	// Над каждой травой стоит ствол или листва соседнего дерева
	for _, b := range c.Blocks() {
		if b.Type != Wood {
			continue
		}
		l, _ := c.LocalOf(b)
		below, ok := c.BlockAt(l.X, l.Y-1, l.Z)
		require.True(t, ok)
		assert.Contains(t, []BlockType{Grass, Wood, Leaves}, below.Type)
	}
}

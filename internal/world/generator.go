package world

import (
	"math"
	"math/rand"

	"github.com/annel0/voxel-sandbox/internal/util"
	"github.com/annel0/voxel-sandbox/internal/vec"
)

// OreConfig параметры жил одного вида руды
type OreConfig struct {
	Type    BlockType
	Veins   int // K: количество попыток заложить жилу
	MinSize int // N: длина случайного блуждания
	MaxSize int
	MinY    int
	MaxY    int
}

// GeneratorConfig параметры генератора
type GeneratorConfig struct {
	Seed       int64
	Frequency  float64
	MinHeight  int
	MaxHeight  int
	Ores       bool
	Trees      bool
	TreeChance int // T: дерево с вероятностью 1/T на столбец травы
	Coal       OreConfig
	Iron       OreConfig
}

// DefaultGeneratorConfig возвращает параметры по умолчанию
func DefaultGeneratorConfig(seed int64) GeneratorConfig {
	cfg := GeneratorConfig{
		Seed:       seed,
		Frequency:  0.05,
		MinHeight:  20,
		MaxHeight:  50,
		Ores:       true,
		Trees:      true,
		TreeChance: 48,
	}
	cfg.Coal, cfg.Iron = DefaultOres(cfg.MaxHeight, 18, 8)
	return cfg
}

// DefaultOres возвращает стандартные жилы угля и железа для заданной высоты ландшафта
func DefaultOres(maxHeight, coalVeins, ironVeins int) (coal, iron OreConfig) {
	coal = OreConfig{Type: CoalOre, Veins: coalVeins, MinSize: 6, MaxSize: 20, MinY: 1, MaxY: maxHeight}
	iron = OreConfig{Type: IronOre, Veins: ironVeins, MinSize: 4, MaxSize: 10, MinY: 1, MaxY: maxHeight / 2}
	return coal, iron
}

// Generator заполняет чанки блоками. Безопасен для параллельного использования:
// шумовое поле только читается, а ГСЧ создаётся на каждый проход.
type Generator struct {
	cfg   GeneratorConfig
	noise *util.NoiseField
}

// NewGenerator создаёт генератор ландшафта
func NewGenerator(cfg GeneratorConfig) *Generator {
	return &Generator{
		cfg:   cfg,
		noise: util.NewNoiseField(cfg.Seed),
	}
}

// Config возвращает параметры генератора
func (g *Generator) Config() GeneratorConfig {
	return g.cfg
}

// Generate создаёт и заполняет чанк по координатам
func (g *Generator) Generate(pos vec.Vec2) *Chunk {
	c := NewChunk(pos)
	g.Populate(c)
	return c
}

// Populate выполняет проходы генерации: ландшафт, руды, деревья
func (g *Generator) Populate(c *Chunk) {
	g.generateTerrain(c)

	if g.cfg.Ores {
		g.generateOre(c, g.cfg.Coal, util.PassCoal)
		g.generateOre(c, g.cfg.Iron, util.PassIron)
	}
	if g.cfg.Trees {
		g.generateTrees(c)
	}
}

// ColumnHeight возвращает высоту поверхности H в глобальном столбце
func (g *Generator) ColumnHeight(worldX, worldZ int) int {
	n := g.noise.Eval(float64(worldX)*g.cfg.Frequency, 0, float64(worldZ)*g.cfg.Frequency)
	h := g.cfg.MinHeight + int(math.Floor((n+1)/2*float64(g.cfg.MaxHeight-g.cfg.MinHeight)))

	if h < 1 {
		h = 1
	}
	if h > g.cfg.MaxHeight {
		h = g.cfg.MaxHeight
	}
	if h > ChunkHeight-1 {
		h = ChunkHeight - 1
	}
	return h
}

// generateTerrain заполняет столбцы: бедрок, камень, земля, трава
func (g *Generator) generateTerrain(c *Chunk) {
	origin := c.OriginCell()

	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			height := g.ColumnHeight(origin.X+x, origin.Z+z)

			for y := 0; y <= height; y++ {
				var t BlockType
				switch {
				case y == 0:
					t = Bedrock
				case y == height:
					t = Grass
				case y >= height-3:
					t = Dirt
				default:
					t = Stone
				}
				c.PutBlock(x, y, z, t)
			}
		}
	}
}

// generateOre закладывает жилы руды случайным блужданием по камню
func (g *Generator) generateOre(c *Chunk, ore OreConfig, pass util.GenPass) {
	if ore.Veins <= 0 || ore.MaxY < ore.MinY {
		return
	}
	rng := util.ChunkRand(g.cfg.Seed, c.Coords.X, c.Coords.Z, pass)

	for i := 0; i < ore.Veins; i++ {
		x := rng.Intn(ChunkSize)
		z := rng.Intn(ChunkSize)
		y := ore.MinY + rng.Intn(ore.MaxY-ore.MinY+1)

		size := ore.MinSize
		if ore.MaxSize > ore.MinSize {
			size += rng.Intn(ore.MaxSize - ore.MinSize + 1)
		}

		if b, ok := c.BlockAt(x, y, z); !ok || b.Type != Stone {
			continue
		}
		growVein(c, rng, ore, x, y, z, size)
	}
}

// growVein заменяет камень рудой вдоль случайного блуждания
func growVein(c *Chunk, rng *rand.Rand, ore OreConfig, x, y, z, size int) {
	for i := 0; i < size; i++ {
		if b, ok := c.BlockAt(x, y, z); ok && b.Type == Stone {
			c.PutBlock(x, y, z, ore.Type)
		}

		x = clampInt(x+walkStep(rng), 0, ChunkSize-1)
		y = clampInt(y+walkStep(rng), ore.MinY, ore.MaxY)
		z = clampInt(z+walkStep(rng), 0, ChunkSize-1)
	}
}

// walkStep возвращает шаг −1..1, изредка удвоенный
func walkStep(rng *rand.Rand) int {
	d := rng.Intn(3) - 1
	if rng.Intn(8) == 0 {
		d *= 2
	}
	return d
}

// generateTrees ставит деревья на столбцы с травой на вершине
func (g *Generator) generateTrees(c *Chunk) {
	if g.cfg.TreeChance < 1 {
		return
	}
	rng := util.ChunkRand(g.cfg.Seed, c.Coords.X, c.Coords.Z, util.PassTrees)

	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			top, ok := topBlock(c, x, z)
			if !ok || top.Type != Grass {
				continue
			}
			// Бросаем кости для каждого столбца, чтобы поток случайных чисел не зависел от исхода
			roll := rng.Intn(g.cfg.TreeChance)
			trunk := 4 + rng.Intn(3)
			if roll != 0 {
				continue
			}

			l, _ := c.LocalOf(top)
			placeTree(c, x, l.Y+1, z, trunk)
		}
	}
}

// placeTree ставит ствол высотой trunk и крону 3×3×3 вокруг его вершины
func placeTree(c *Chunk, x, baseY, z, trunk int) {
	topY := baseY + trunk - 1

	for y := baseY; y <= topY; y++ {
		if !c.IsBlockAt(x, y, z) {
			c.PutBlock(x, y, z, Wood)
		}
	}

	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				lx, ly, lz := x+dx, topY+dy, z+dz
				if !InBounds(lx, ly, lz) || c.IsBlockAt(lx, ly, lz) {
					continue
				}
				c.PutBlock(lx, ly, lz, Leaves)
			}
		}
	}
}

// topBlock возвращает самый верхний блок столбца
func topBlock(c *Chunk, x, z int) (Block, bool) {
	for y := ChunkHeight - 1; y >= 0; y-- {
		if b, ok := c.BlockAt(x, y, z); ok {
			return b, true
		}
	}
	return Block{}, false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

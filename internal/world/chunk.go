package world

import (
	"fmt"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
)

// Упаковка локальных координат в ключ индекса занятости: 11/10/11 бит.
// X и Z смещаются на половину диапазона, чтобы упаковывались и отрицательные значения.
const (
	xBits  = 11
	yBits  = 10
	zBits  = 11
	zShift = 0
	yShift = zBits
	xShift = yBits + zBits
	xMask  = (1 << xBits) - 1
	yMask  = (1 << yBits) - 1
	zMask  = (1 << zBits) - 1
	xBias  = 1 << (xBits - 1)
	zBias  = 1 << (zBits - 1)
)

// PackLocal упаковывает локальные координаты в ключ
func PackLocal(lx, ly, lz int) uint32 {
	px := uint32(lx+xBias) & xMask
	py := uint32(ly) & yMask
	pz := uint32(lz+zBias) & zMask
	return px<<xShift | py<<yShift | pz<<zShift
}

// UnpackLocal обратна PackLocal
func UnpackLocal(key uint32) (lx, ly, lz int) {
	lx = int((key>>xShift)&xMask) - xBias
	ly = int((key >> yShift) & yMask)
	lz = int((key>>zShift)&zMask) - zBias
	return lx, ly, lz
}

// Chunk представляет столбец мира S×S×Ymax блоков.
// Хранит упорядоченный список блоков (для мешинга и коллизий) и индекс
// упакованная координата → позиция в списке (для проверки занятости за O(1)).
// Чанк принадлежит одной горутине: воркеру до публикации в очереди готовых,
// затем главному потоку.
type Chunk struct {
	Coords vec.Vec2 // Координаты чанка в мире
	Mesh   *ChunkMesh

	blocks []Block
	index  map[uint32]int
}

// NewChunk создаёт пустой чанк с указанными координатами
func NewChunk(coords vec.Vec2) *Chunk {
	return &Chunk{
		Coords: coords,
		Mesh:   &ChunkMesh{},
		index:  make(map[uint32]int),
	}
}

// InBounds проверяет, что локальные координаты лежат внутри чанка
func InBounds(lx, ly, lz int) bool {
	return lx >= 0 && lx < ChunkSize && lz >= 0 && lz < ChunkSize && ly >= 0 && ly < ChunkHeight
}

// OriginCell возвращает глобальную ячейку локального (0, 0, 0)
func (c *Chunk) OriginCell() vec.Vec3 {
	return vec.Vec3{X: c.Coords.X * ChunkSize, Y: 0, Z: c.Coords.Z * ChunkSize}
}

// LocalPosition возвращает мировую позицию блока с локальными координатами
func (c *Chunk) LocalPosition(lx, ly, lz int) mgl32.Vec3 {
	return CellPosition(c.OriginCell().Add(vec.Vec3{X: lx, Y: ly, Z: lz}))
}

// LocalOf возвращает локальные координаты блока в этом чанке
func (c *Chunk) LocalOf(b Block) (vec.Vec3, bool) {
	cell := b.Cell()
	o := c.OriginCell()
	l := vec.Vec3{X: cell.X - o.X, Y: cell.Y, Z: cell.Z - o.Z}
	return l, InBounds(l.X, l.Y, l.Z)
}

// PutBlock ставит блок типа t в локальную ячейку, заменяя существующий на месте
func (c *Chunk) PutBlock(lx, ly, lz int, t BlockType) (Block, bool) {
	if !InBounds(lx, ly, lz) {
		return Block{}, false
	}

	b := Block{Type: t, Pos: c.LocalPosition(lx, ly, lz)}
	key := PackLocal(lx, ly, lz)

	if i, exists := c.index[key]; exists {
		c.blocks[i] = b
	} else {
		c.index[key] = len(c.blocks)
		c.blocks = append(c.blocks, b)
	}
	return b, true
}

// BlockAt возвращает блок в локальной ячейке
func (c *Chunk) BlockAt(lx, ly, lz int) (Block, bool) {
	if !InBounds(lx, ly, lz) {
		return Block{}, false
	}
	i, ok := c.index[PackLocal(lx, ly, lz)]
	if !ok {
		return Block{}, false
	}
	return c.blocks[i], true
}

// IsBlockAt сообщает, занята ли локальная ячейка
func (c *Chunk) IsBlockAt(lx, ly, lz int) bool {
	if !InBounds(lx, ly, lz) {
		return false
	}
	_, ok := c.index[PackLocal(lx, ly, lz)]
	return ok
}

// RemoveAt удаляет блок из обоих представлений с сохранением порядка списка
func (c *Chunk) RemoveAt(lx, ly, lz int) (Block, bool) {
	if !InBounds(lx, ly, lz) {
		return Block{}, false
	}
	key := PackLocal(lx, ly, lz)
	i, ok := c.index[key]
	if !ok {
		return Block{}, false
	}

	removed := c.blocks[i]
	delete(c.index, key)
	copy(c.blocks[i:], c.blocks[i+1:])
	c.blocks = c.blocks[:len(c.blocks)-1]

	for j := i; j < len(c.blocks); j++ {
		l, _ := c.LocalOf(c.blocks[j])
		c.index[PackLocal(l.X, l.Y, l.Z)] = j
	}
	return removed, true
}

// RemoveBlock удаляет именно этот блок; если ячейка пуста или занята другим блоком: false
func (c *Chunk) RemoveBlock(b Block) bool {
	l, ok := c.LocalOf(b)
	if !ok {
		return false
	}
	current, ok := c.BlockAt(l.X, l.Y, l.Z)
	if !ok || current != b {
		return false
	}
	_, removed := c.RemoveAt(l.X, l.Y, l.Z)
	return removed
}

// Blocks возвращает блоки в порядке хранения. Срез нельзя изменять.
func (c *Chunk) Blocks() []Block {
	return c.blocks
}

// Len возвращает количество блоков
func (c *Chunk) Len() int {
	return len(c.blocks)
}

// Rebuild пересобирает меш чанка с учётом соседей
func (c *Chunk) Rebuild(lookup NeighborLookup) {
	c.Mesh.SetVertices(BuildMesh(c, lookup))
}

// Validate проверяет согласованность списка и индекса
func (c *Chunk) Validate() error {
	if len(c.blocks) != len(c.index) {
		return fmt.Errorf("чанк %v: %d блоков в списке, %d в индексе", c.Coords, len(c.blocks), len(c.index))
	}
	for i, b := range c.blocks {
		l, ok := c.LocalOf(b)
		if !ok {
			return fmt.Errorf("чанк %v: блок %v вне границ чанка", c.Coords, b.Pos)
		}
		j, ok := c.index[PackLocal(l.X, l.Y, l.Z)]
		if !ok || j != i {
			return fmt.Errorf("чанк %v: блок %v отсутствует в индексе под своим ключом", c.Coords, b.Pos)
		}
	}
	return nil
}

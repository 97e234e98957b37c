package world

import (
	"fmt"
	"math"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
)

// Геометрия сетки блоков
const (
	BlockSize   float32 = 0.5           // B: ребро блока в мировых единицах
	HalfBlock           = BlockSize / 2 // H: половина ребра
	ChunkSize           = 16            // S: размер чанка по X и Z в блоках
	ChunkHeight         = 128           // Ymax: высота чанка в блоках
)

// BlockType тип блока
type BlockType uint8

const (
	Grass BlockType = iota + 1
	Dirt
	Stone
	Wood
	Leaves
	CoalOre
	IronOre
	Bedrock
)

// String возвращает имя типа блока
func (t BlockType) String() string {
	switch t {
	case Grass:
		return "GRASS"
	case Dirt:
		return "DIRT"
	case Stone:
		return "STONE"
	case Wood:
		return "WOOD"
	case Leaves:
		return "LEAVES"
	case CoalOre:
		return "COAL_ORE"
	case IronOre:
		return "IRON_ORE"
	case Bedrock:
		return "BEDROCK"
	default:
		return fmt.Sprintf("BlockType(%d)", uint8(t))
	}
}

// Block неизменяемое значение: тип и мировая позиция опорной точки.
// Блок занимает [x−H, x+H] × [y, y+B] × [z−H, z+H].
type Block struct {
	Type BlockType
	Pos  mgl32.Vec3
}

// Min возвращает нижний угол AABB блока
func (b Block) Min() mgl32.Vec3 {
	return mgl32.Vec3{b.Pos.X() - HalfBlock, b.Pos.Y(), b.Pos.Z() - HalfBlock}
}

// Max возвращает верхний угол AABB блока
func (b Block) Max() mgl32.Vec3 {
	return mgl32.Vec3{b.Pos.X() + HalfBlock, b.Pos.Y() + BlockSize, b.Pos.Z() + HalfBlock}
}

// Top возвращает высоту верхней грани
func (b Block) Top() float32 {
	return b.Pos.Y() + BlockSize
}

// Contains проверяет, лежит ли точка внутри AABB блока (границы включительно)
func (b Block) Contains(p mgl32.Vec3) bool {
	lo, hi := b.Min(), b.Max()
	return p.X() >= lo.X() && p.X() <= hi.X() &&
		p.Y() >= lo.Y() && p.Y() <= hi.Y() &&
		p.Z() >= lo.Z() && p.Z() <= hi.Z()
}

// Cell возвращает глобальные целочисленные координаты ячейки блока
func (b Block) Cell() vec.Vec3 {
	return vec.Vec3{
		X: int(math.Round(float64(b.Pos.X() / BlockSize))),
		Y: int(math.Round(float64(b.Pos.Y() / BlockSize))),
		Z: int(math.Round(float64(b.Pos.Z() / BlockSize))),
	}
}

// ChunkCoords возвращает координаты чанка, которому принадлежит блок
func (b Block) ChunkCoords() vec.Vec2 {
	c := b.Cell()
	return vec.Vec2{X: vec.FloorDiv(c.X, ChunkSize), Z: vec.FloorDiv(c.Z, ChunkSize)}
}

// CellPosition возвращает мировую позицию опорной точки ячейки
func CellPosition(cell vec.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(cell.X) * BlockSize,
		float32(cell.Y) * BlockSize,
		float32(cell.Z) * BlockSize,
	}
}

// CellAt возвращает ячейку, AABB которой содержит точку p
func CellAt(p mgl32.Vec3) vec.Vec3 {
	return vec.Vec3{
		X: int(math.Round(float64(p.X() / BlockSize))),
		Y: int(math.Floor(float64(p.Y() / BlockSize))),
		Z: int(math.Round(float64(p.Z() / BlockSize))),
	}
}

// ChunkCoordsAt переводит мировую позицию в координаты чанка делением с округлением вниз
func ChunkCoordsAt(p mgl32.Vec3) vec.Vec2 {
	const span = float64(ChunkSize) * float64(BlockSize)
	return vec.Vec2{
		X: int(math.Floor(float64(p.X()) / span)),
		Z: int(math.Floor(float64(p.Z()) / span)),
	}
}

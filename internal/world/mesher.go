package world

import (
	"github.com/annel0/voxel-sandbox/internal/vec"
)

// Формат вершины: [px, py, pz, r, g, b, u, v, layer]
const (
	FloatsPerVertex = 9
	VerticesPerFace = 6
	FloatsPerFace   = FloatsPerVertex * VerticesPerFace
)

// Face грань блока. Порядок констант совпадает с порядком выдачи граней в меше.
type Face int

const (
	FaceTop Face = iota
	FaceBottom
	FaceSouth // +Z
	FaceNorth // −Z
	FaceWest  // −X
	FaceEast  // +X
)

// faceOrder порядок обхода граней при сборке меша
var faceOrder = [6]Face{FaceTop, FaceBottom, FaceSouth, FaceNorth, FaceWest, FaceEast}

// Normal возвращает смещение к соседней ячейке, закрывающей грань
func (f Face) Normal() vec.Vec3 {
	switch f {
	case FaceTop:
		return vec.Vec3{Y: 1}
	case FaceBottom:
		return vec.Vec3{Y: -1}
	case FaceSouth:
		return vec.Vec3{Z: 1}
	case FaceNorth:
		return vec.Vec3{Z: -1}
	case FaceWest:
		return vec.Vec3{X: -1}
	default:
		return vec.Vec3{X: 1}
	}
}

// NeighborLookup возвращает резидентный чанк по координатам или nil
type NeighborLookup func(pos vec.Vec2) *Chunk

// TextureLayer возвращает слой текстурного массива для грани блока
func TextureLayer(t BlockType, f Face) float32 {
	switch t {
	case Grass:
		switch f {
		case FaceTop:
			return 0
		case FaceBottom:
			return 2
		default:
			return 1
		}
	case Dirt:
		return 2
	case Stone:
		return 3
	case Wood:
		if f == FaceTop || f == FaceBottom {
			return 4
		}
		return 5
	case Leaves:
		return 6
	case CoalOre:
		return 7
	case IronOre:
		return 8
	case Bedrock:
		return 9
	default:
		return 3
	}
}

// BuildMesh собирает вершины видимых граней чанка.
// Грань видима, если соседняя ячейка пуста; ячейка вне диапазона высот,
// а также ячейка в нерезидентном соседнем чанке считаются пустыми.
func BuildMesh(c *Chunk, lookup NeighborLookup) []float32 {
	out := make([]float32, 0, len(c.blocks)*FloatsPerFace)

	for _, b := range c.blocks {
		l, ok := c.LocalOf(b)
		if !ok {
			continue
		}
		for _, f := range faceOrder {
			if c.occupiedAround(l.Add(f.Normal()), lookup) {
				continue
			}
			out = appendFace(out, b, f)
		}
	}
	return out
}

// occupiedAround проверяет занятость локальной ячейки, которая может выходить за края чанка
func (c *Chunk) occupiedAround(l vec.Vec3, lookup NeighborLookup) bool {
	if l.Y < 0 || l.Y >= ChunkHeight {
		return false
	}
	if l.X >= 0 && l.X < ChunkSize && l.Z >= 0 && l.Z < ChunkSize {
		return c.IsBlockAt(l.X, l.Y, l.Z)
	}
	if lookup == nil {
		return false
	}

	pos := vec.Vec2{
		X: c.Coords.X + vec.FloorDiv(l.X, ChunkSize),
		Z: c.Coords.Z + vec.FloorDiv(l.Z, ChunkSize),
	}
	neighbor := lookup(pos)
	if neighbor == nil {
		return false
	}
	return neighbor.IsBlockAt(vec.Mod(l.X, ChunkSize), l.Y, vec.Mod(l.Z, ChunkSize))
}

// appendFace дописывает два треугольника грани (p1, p2, p3, p1, p3, p4).
// Обход против часовой стрелки при взгляде снаружи.
func appendFace(out []float32, b Block, f Face) []float32 {
	x, y, z := b.Pos.X(), b.Pos.Y(), b.Pos.Z()
	x0, x1 := x-HalfBlock, x+HalfBlock
	y0, y1 := y, y+BlockSize
	z0, z1 := z-HalfBlock, z+HalfBlock

	var q [4][3]float32
	switch f {
	case FaceTop:
		q = [4][3]float32{{x0, y1, z1}, {x1, y1, z1}, {x1, y1, z0}, {x0, y1, z0}}
	case FaceBottom:
		q = [4][3]float32{{x0, y0, z0}, {x1, y0, z0}, {x1, y0, z1}, {x0, y0, z1}}
	case FaceSouth:
		q = [4][3]float32{{x0, y0, z1}, {x1, y0, z1}, {x1, y1, z1}, {x0, y1, z1}}
	case FaceNorth:
		q = [4][3]float32{{x1, y0, z0}, {x0, y0, z0}, {x0, y1, z0}, {x1, y1, z0}}
	case FaceWest:
		q = [4][3]float32{{x0, y0, z0}, {x0, y0, z1}, {x0, y1, z1}, {x0, y1, z0}}
	case FaceEast:
		q = [4][3]float32{{x1, y0, z1}, {x1, y0, z0}, {x1, y1, z0}, {x1, y1, z1}}
	}

	uv := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	layer := TextureLayer(b.Type, f)

	for _, i := range [VerticesPerFace]int{0, 1, 2, 0, 2, 3} {
		out = append(out,
			q[i][0], q[i][1], q[i][2],
			1, 1, 1,
			uv[i][0], uv[i][1],
			layer,
		)
	}
	return out
}

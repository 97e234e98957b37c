package world

import (
	"math"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
)

// RaycastStep шаг выборки луча
const RaycastStep = HalfBlock / 2

// TargetBlock идёт по лучу от eye в направлении dir с шагом RaycastStep
// и возвращает первый блок, AABB которого содержит точку выборки.
func (w *World) TargetBlock(eye, dir mgl32.Vec3, reach float32) (Block, bool) {
	if dir.Len() == 0 || reach <= 0 {
		return Block{}, false
	}
	d := dir.Normalize()

	steps := int(reach / RaycastStep)
	for i := 0; i <= steps; i++ {
		p := eye.Add(d.Mul(float32(i) * RaycastStep))
		if b, ok := w.blockContaining(p); ok {
			return b, true
		}
	}
	return Block{}, false
}

// blockContaining ищет блок, замкнутый AABB которого содержит p.
// Точка на общей грани принадлежит обеим ячейкам, поэтому проверяются и соседние.
func (w *World) blockContaining(p mgl32.Vec3) (Block, bool) {
	base := CellAt(p)
	xs := axisCells(base.X, float64(p.X()/BlockSize)+0.5)
	ys := axisCells(base.Y, float64(p.Y()/BlockSize))
	zs := axisCells(base.Z, float64(p.Z()/BlockSize)+0.5)

	for _, x := range xs {
		for _, y := range ys {
			for _, z := range zs {
				b, ok := w.BlockAt(vec.Vec3{X: x, Y: y, Z: z})
				if ok && b.Contains(p) {
					return b, true
				}
			}
		}
	}
	return Block{}, false
}

// axisCells возвращает ячейку c и, если координата t (в долях ребра от нижней
// границы ячеек) лежит ровно на границе, соседнюю ячейку по этой оси
func axisCells(c int, t float64) []int {
	if t != math.Floor(t) {
		return []int{c}
	}
	lo := int(t)
	if lo == c {
		return []int{c, c - 1}
	}
	return []int{c, lo}
}

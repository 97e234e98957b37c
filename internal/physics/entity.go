package physics

import "github.com/go-gl/mathgl/mgl32"

// Entity физическое тело: вертикальный цилиндр, аппроксимированный AABB.
// Position: точка у ног, по центру основания.
type Entity struct {
	Position     mgl32.Vec3
	PrevPosition mgl32.Vec3 // позиция до последнего тика, для интерполяции
	Velocity     mgl32.Vec3
	Radius       float32
	Height       float32
	OnGround     bool
}

// NewEntity создаёт тело в указанной позиции
func NewEntity(pos mgl32.Vec3, radius, height float32) *Entity {
	return &Entity{
		Position:     pos,
		PrevPosition: pos,
		Radius:       radius,
		Height:       height,
	}
}

// Interpolated возвращает позицию между двумя тиками; alpha в [0, 1]
func (e *Entity) Interpolated(alpha float32) mgl32.Vec3 {
	return e.PrevPosition.Add(e.Position.Sub(e.PrevPosition).Mul(alpha))
}

// Feet возвращает высоту ног
func (e *Entity) Feet() float32 {
	return e.Position.Y()
}

package physics

import (
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/go-gl/mathgl/mgl32"
)

// Параметры симуляции
const (
	Gravity       float32 = -9.8
	StepHeight            = world.BlockSize // максимальная высота, на которую тело заступает без прыжка
	GroundEpsilon float32 = 0.05            // допуск при поиске опоры под ногами
)

// Tick продвигает тело на dt секунд: гравитация, удар головой, заступ.
// Не хранит состояния; blocks: блоки вокруг тела (обычно World.NearbyBlocks).
func Tick(e *Entity, dt float32, blocks []world.Block) {
	e.PrevPosition = e.Position

	applyGravity(e, dt, blocks)
	headBump(e, blocks)
	step(e, dt, blocks)
}

// applyGravity ускоряет тело вниз и ставит его на самый высокий блок под ногами
func applyGravity(e *Entity, dt float32, blocks []world.Block) {
	e.Velocity[1] += Gravity * dt
	newY := e.Position.Y() + e.Velocity.Y()*dt

	groundY, found := groundBelow(e, blocks)
	if found && newY <= groundY {
		e.Position[1] = groundY
		e.Velocity[1] = 0
		e.OnGround = true
		return
	}

	e.Position[1] = newY
	e.OnGround = false
}

// groundBelow ищет самую высокую верхнюю грань под основанием не выше ног
func groundBelow(e *Entity, blocks []world.Block) (float32, bool) {
	feet := e.Feet()
	var ground float32
	found := false

	for _, b := range blocks {
		if !overlapsXZ(e.Position.X(), e.Position.Z(), e.Radius, b) {
			continue
		}
		top := b.Top()
		if top <= feet+GroundEpsilon && (!found || top > ground) {
			ground = top
			found = true
		}
	}
	return ground, found
}

// headBump гасит вертикальную скорость, если голова упёрлась в низ блока
func headBump(e *Entity, blocks []world.Block) {
	if e.Velocity.Y() <= 0 {
		return
	}
	feet := e.Feet()
	head := feet + e.Height

	for _, b := range blocks {
		if !overlapsXZ(e.Position.X(), e.Position.Z(), e.Radius, b) {
			continue
		}
		bottom := b.Pos.Y()
		if bottom > feet && bottom <= head+GroundEpsilon {
			e.Velocity[1] = 0
			return
		}
	}
}

// step смещает тело по XZ на v·dt, заступая на невысокие блоки.
// Высокий блок, перекрывающий тело, отменяет горизонтальное смещение.
func step(e *Entity, dt float32, blocks []world.Block) {
	nextX := e.Position.X() + e.Velocity.X()*dt
	nextZ := e.Position.Z() + e.Velocity.Z()*dt
	feet := e.Feet()

	var lift float32
	for _, b := range blocks {
		if !overlapsXZ(nextX, nextZ, e.Radius, b) {
			continue
		}
		diff := b.Top() - feet
		switch {
		case diff > StepHeight:
			if b.Pos.Y() < feet+e.Height {
				return
			}
		case diff > 0 && diff > lift:
			lift = diff
		}
	}

	if lift > 0 {
		e.Position[1] = feet + lift
		e.OnGround = true
	}
	e.Position[0] = nextX
	e.Position[2] = nextZ
}

// MoveHorizontal сдвигает тело по X, затем по Z. При столкновении по оси
// пробует заступить на блок; если не выходит, смещение по оси откатывается.
func MoveHorizontal(dx, dz float32, e *Entity, blocks []world.Block) {
	moveAxis(0, dx, e, blocks)
	moveAxis(2, dz, e, blocks)
}

func moveAxis(axis int, d float32, e *Entity, blocks []world.Block) {
	if d == 0 {
		return
	}
	e.Position[axis] += d

	colliders := colliding(e, blocks)
	if len(colliders) == 0 {
		return
	}

	feet := e.Feet()
	var lift float32
	for _, b := range colliders {
		diff := b.Top() - feet
		if diff <= 0 || diff > StepHeight {
			e.Position[axis] -= d
			return
		}
		if diff > lift {
			lift = diff
		}
	}

	e.Position[1] = feet + lift
	if Collides(e, blocks) {
		e.Position[1] = feet
		e.Position[axis] -= d
		return
	}
	e.OnGround = true
}

// Jump придаёт вертикальную скорость, если тело стоит на опоре
func Jump(e *Entity, strength float32) bool {
	if !e.OnGround {
		return false
	}
	e.Velocity[1] = strength
	e.OnGround = false
	return true
}

// Collides проверяет пересечение тела хотя бы с одним блоком
func Collides(e *Entity, blocks []world.Block) bool {
	for _, b := range blocks {
		if intersects(e, b) {
			return true
		}
	}
	return false
}

func colliding(e *Entity, blocks []world.Block) []world.Block {
	var out []world.Block
	for _, b := range blocks {
		if intersects(e, b) {
			out = append(out, b)
		}
	}
	return out
}

// intersects строгая проверка пересечения AABB тела и блока; касание не считается
func intersects(e *Entity, b world.Block) bool {
	if !overlapsXZ(e.Position.X(), e.Position.Z(), e.Radius, b) {
		return false
	}
	y := e.Position.Y()
	return y < b.Top() && y+e.Height > b.Pos.Y()
}

func overlapsXZ(x, z, r float32, b world.Block) bool {
	bx, bz := b.Pos.X(), b.Pos.Z()
	return x+r > bx-world.HalfBlock && x-r < bx+world.HalfBlock &&
		z+r > bz-world.HalfBlock && z-r < bz+world.HalfBlock
}

// Bounds возвращает AABB тела
func Bounds(e *Entity) (mgl32.Vec3, mgl32.Vec3) {
	p := e.Position
	return mgl32.Vec3{p.X() - e.Radius, p.Y(), p.Z() - e.Radius},
		mgl32.Vec3{p.X() + e.Radius, p.Y() + e.Height, p.Z() + e.Radius}
}

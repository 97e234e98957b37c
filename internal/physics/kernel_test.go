package physics

import (
	"testing"

	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = float32(1.0 / 60.0)

func block(x, y, z float32) world.Block {
	return world.Block{Type: world.Stone, Pos: mgl32.Vec3{x, y, z}}
}

func TestStepUpOntoLowerBlock(t *testing.T) {
	e := NewEntity(mgl32.Vec3{0, 1.0, 0}, 0.18, 0.9)
	e.OnGround = true
	blocks := []world.Block{
		block(0, 0.5, 0),    // опора, верх на 1.0
		block(0.5, 0.75, 0), // ступенька, верх на 1.25
	}

	MoveHorizontal(0.1, 0, e, blocks)
	Tick(e, dt, blocks)

	assert.Equal(t, float32(1.25), e.Position.Y())
	assert.True(t, e.OnGround)
	assert.InDelta(t, 0.1, float64(e.Position.X()), 1e-6)
	assert.Equal(t, float32(0), e.Velocity.Y())
}

func TestGravitySettlesOnFloor(t *testing.T) {
	e := NewEntity(mgl32.Vec3{0, 5.0, 0}, 0.18, 0.9)
	blocks := []world.Block{block(0, 0.5, 0)}

	for i := 0; i < 120; i++ {
		Tick(e, dt, blocks)
	}

	assert.Equal(t, float32(1.0), e.Position.Y())
	assert.Equal(t, float32(0), e.Velocity.Y())
	assert.True(t, e.OnGround)
}

func TestTickWithoutBlocksIsFreeFlight(t *testing.T) {
	e := NewEntity(mgl32.Vec3{1, 10, -2}, 0.18, 0.9)
	e.Velocity = mgl32.Vec3{2, 1, -3}

	Tick(e, dt, nil)

	vy := float32(1) + Gravity*dt
	assert.InDelta(t, float64(vy), float64(e.Velocity.Y()), 1e-6)
	assert.InDelta(t, float64(10+vy*dt), float64(e.Position.Y()), 1e-6)
	assert.InDelta(t, float64(1+2*dt), float64(e.Position.X()), 1e-6)
	assert.InDelta(t, float64(-2-3*dt), float64(e.Position.Z()), 1e-6)
	assert.Equal(t, float32(2), e.Velocity.X())
	assert.False(t, e.OnGround)
	assert.Equal(t, mgl32.Vec3{1, 10, -2}, e.PrevPosition)
}

func TestHeadBumpStopsRising(t *testing.T) {
	e := NewEntity(mgl32.Vec3{0, 0, 0}, 0.18, 0.9)
	e.Velocity[1] = 5
	blocks := []world.Block{block(0, 1.0, 0)}

	Tick(e, dt, blocks)
	assert.Equal(t, float32(0), e.Velocity.Y())

	// Блок в стороне не мешает
	e = NewEntity(mgl32.Vec3{0, 0, 0}, 0.18, 0.9)
	e.Velocity[1] = 5
	Tick(e, dt, []world.Block{block(2, 1.0, 0)})
	assert.Greater(t, e.Velocity.Y(), float32(0))
}

func TestTallBlockCancelsHorizontalMove(t *testing.T) {
	e := NewEntity(mgl32.Vec3{0.05, 1.0, 0}, 0.18, 0.9)
	e.OnGround = true
	e.Velocity = mgl32.Vec3{3, 0, 0}
	blocks := []world.Block{
		block(0, 0.5, 0),
		block(0.5, 1.0, 0),
		block(0.5, 1.5, 0),
	}

	Tick(e, dt, blocks)

	assert.Equal(t, float32(0.05), e.Position.X())
	assert.Equal(t, float32(1.0), e.Position.Y())
}

func TestMoveHorizontalRollsBackIntoWall(t *testing.T) {
	e := NewEntity(mgl32.Vec3{0, 1.0, 0}, 0.18, 0.9)
	blocks := []world.Block{
		block(0, 0.5, 0),
		block(0.5, 1.0, 0),
		block(0.5, 1.5, 0),
	}

	MoveHorizontal(0.1, 0.05, e, blocks)

	assert.Equal(t, float32(0), e.Position.X(), "ось X откатывается")
	assert.InDelta(t, 0.05, float64(e.Position.Z()), 1e-6, "ось Z свободна")
	assert.Equal(t, float32(1.0), e.Position.Y())
	assert.False(t, Collides(e, blocks))
}

func TestMoveHorizontalNoStepUnderCeiling(t *testing.T) {
	e := NewEntity(mgl32.Vec3{0, 1.0, 0}, 0.18, 0.9)
	blocks := []world.Block{
		block(0, 0.5, 0),
		block(0.5, 0.75, 0), // ступенька
		block(0.5, 2.0, 0),  // потолок над ступенькой: после подъёма голова упрётся
	}

	MoveHorizontal(0.1, 0, e, blocks)
	assert.Equal(t, float32(0), e.Position.X())
	assert.Equal(t, float32(1.0), e.Position.Y())
}

func TestJumpOnlyFromGround(t *testing.T) {
	e := NewEntity(mgl32.Vec3{}, 0.18, 0.9)
	assert.False(t, Jump(e, 4))
	assert.Equal(t, float32(0), e.Velocity.Y())

	e.OnGround = true
	require.True(t, Jump(e, 4))
	assert.Equal(t, float32(4), e.Velocity.Y())
	assert.False(t, e.OnGround)
}

func TestInterpolated(t *testing.T) {
	e := NewEntity(mgl32.Vec3{0, 0, 0}, 0.18, 0.9)
	e.Position = mgl32.Vec3{2, 4, -2}

	assert.Equal(t, mgl32.Vec3{0, 0, 0}, e.Interpolated(0))
	assert.Equal(t, mgl32.Vec3{1, 2, -1}, e.Interpolated(0.5))
	assert.Equal(t, e.Position, e.Interpolated(1))
}

func TestCollidesIsStrict(t *testing.T) {
	e := NewEntity(mgl32.Vec3{0, 1.0, 0}, 0.18, 0.9)
	assert.False(t, Collides(e, []world.Block{block(0, 0.5, 0)}), "касание сверху не пересечение")
	assert.True(t, Collides(e, []world.Block{block(0, 0.75, 0)}))

	wide := NewEntity(mgl32.Vec3{0, 1.0, 0}, 0.25, 0.9)
	assert.False(t, Collides(wide, []world.Block{block(0.5, 1.0, 0)}), "касание сбоку не пересечение")
}

package entity

import (
	"testing"

	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = float32(1.0 / 60.0)

// fakeWorld отдаёт заранее заданный блок под прицелом
type fakeWorld struct {
	target    world.Block
	hasTarget bool
	destroyed []world.Block
	lastEye   mgl32.Vec3
	lastReach float32
}

func (w *fakeWorld) TargetBlock(eye, dir mgl32.Vec3, reach float32) (world.Block, bool) {
	w.lastEye = eye
	w.lastReach = reach
	return w.target, w.hasTarget
}

func (w *fakeWorld) DestroyBlock(b world.Block) bool {
	w.destroyed = append(w.destroyed, b)
	return true
}

// floor плоский пол из блоков вокруг начала координат, верх на y=1.0
func floor() []world.Block {
	var out []world.Block
	for x := -4; x <= 4; x++ {
		for z := -4; z <= 4; z++ {
			out = append(out, world.Block{Type: world.Grass, Pos: mgl32.Vec3{float32(x) * 0.5, 0.5, float32(z) * 0.5}})
		}
	}
	return out
}

func TestRotateClampsPitch(t *testing.T) {
	p := NewPlayer(mgl32.Vec3{}, DefaultPlayerConfig())

	p.Rotate(100, 2000)
	assert.Equal(t, float32(89), p.Pitch)
	assert.InDelta(t, -80.0, float64(p.Yaw), 1e-4)

	p.Rotate(0, -5000)
	assert.Equal(t, float32(-89), p.Pitch)
}

func TestLookVectors(t *testing.T) {
	p := NewPlayer(mgl32.Vec3{}, DefaultPlayerConfig())

	front := p.FrontXZ()
	assert.InDelta(t, 0, float64(front.X()), 1e-5)
	assert.InDelta(t, -1, float64(front.Z()), 1e-5)

	right := p.RightXZ()
	assert.InDelta(t, 1, float64(right.X()), 1e-5)
	assert.InDelta(t, 0, float64(right.Z()), 1e-5)

	assert.InDelta(t, 1, float64(p.Front().Len()), 1e-5)
}

func TestEyePosition(t *testing.T) {
	p := NewPlayer(mgl32.Vec3{1, 2, 3}, DefaultPlayerConfig())
	eye := p.EyePosition()
	assert.Equal(t, float32(1), eye.X())
	assert.InDelta(t, 2.8, float64(eye.Y()), 1e-5)
	assert.Equal(t, float32(3), eye.Z())
}

func TestPunchDestroysTarget(t *testing.T) {
	p := NewPlayer(mgl32.Vec3{0, 1, 0}, DefaultPlayerConfig())
	w := &fakeWorld{}

	assert.False(t, p.Punch(w))
	assert.Empty(t, w.destroyed)

	w.target = world.Block{Type: world.Stone, Pos: mgl32.Vec3{0, 0.5, -1}}
	w.hasTarget = true
	require.True(t, p.Punch(w))
	assert.Equal(t, []world.Block{w.target}, w.destroyed)
	assert.Equal(t, p.EyePosition(), w.lastEye)
	assert.Equal(t, float32(8), w.lastReach)
}

func TestWalkMovesAlongFacing(t *testing.T) {
	p := NewPlayer(mgl32.Vec3{0, 1, 0}, DefaultPlayerConfig())
	blocks := floor()

	p.Walk(1, 0, dt, blocks)
	assert.InDelta(t, -3.0*float64(dt), float64(p.Position().Z()), 1e-5)
	assert.InDelta(t, 0, float64(p.Position().X()), 1e-5)

	// Диагональ нормализуется
	p2 := NewPlayer(mgl32.Vec3{0, 1, 0}, DefaultPlayerConfig())
	p2.Walk(1, 1, dt, blocks)
	moved := p2.Position().Sub(mgl32.Vec3{0, 1, 0}).Len()
	assert.InDelta(t, 3.0*float64(dt), float64(moved), 1e-5)
}

func TestMovementStates(t *testing.T) {
	p := NewPlayer(mgl32.Vec3{0, 3, 0}, DefaultPlayerConfig())
	blocks := floor()
	require.Equal(t, "idle", p.CurrentState.Name())

	p.Update(dt, blocks)
	assert.Equal(t, "airborne", p.CurrentState.Name())

	for i := 0; i < 120 && !p.Body.OnGround; i++ {
		p.Update(dt, blocks)
	}
	require.True(t, p.Body.OnGround)
	assert.Equal(t, "idle", p.CurrentState.Name())
	assert.InDelta(t, 2.0, float64(p.LastFall()), 0.1)

	p.Walk(1, 0, dt, blocks)
	p.Update(dt, blocks)
	assert.Equal(t, "walk", p.CurrentState.Name())

	require.True(t, p.Jump())
	assert.False(t, p.Jump(), "в воздухе прыжок невозможен")
	p.Update(dt, blocks)
	assert.Equal(t, "airborne", p.CurrentState.Name())

	p.Stop()
	for i := 0; i < 120 && p.CurrentState.Name() == "airborne"; i++ {
		p.Update(dt, blocks)
	}
	assert.Equal(t, "idle", p.CurrentState.Name())
}

package entity

import (
	"math"

	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/go-gl/mathgl/mgl32"
)

// PlayerConfig параметры игрока
type PlayerConfig struct {
	Radius       float32
	Height       float32
	MoveSpeed    float32 // единиц в секунду
	JumpStrength float32
	Reach        float32 // дальность взаимодействия с блоками
	Sensitivity  float32 // множитель смещения мыши
}

// DefaultPlayerConfig возвращает параметры по умолчанию
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		Radius:       0.18,
		Height:       0.9,
		MoveSpeed:    3.0,
		JumpStrength: 4.0,
		Reach:        8.0,
		Sensitivity:  0.1,
	}
}

const (
	maxPitch   float32 = 89
	eyeOffset  float32 = 0.1 // глаза ниже макушки
	defaultYaw float32 = -90
)

// BlockInteractor мир, в котором игрок выбирает и разрушает блоки
type BlockInteractor interface {
	TargetBlock(eye, dir mgl32.Vec3, reach float32) (world.Block, bool)
	DestroyBlock(b world.Block) bool
}

// Player управляемое игроком тело с направлением взгляда
type Player struct {
	Body         *physics.Entity
	Yaw          float32 // градусы
	Pitch        float32 // градусы, [-89, 89]
	CurrentState State
	StateTime    float32

	cfg      PlayerConfig
	front    mgl32.Vec3
	right    mgl32.Vec3
	moving   bool
	lastStep float32
	lastFall float32
}

// NewPlayer создаёт игрока в точке pos
func NewPlayer(pos mgl32.Vec3, cfg PlayerConfig) *Player {
	p := &Player{
		Body: physics.NewEntity(pos, cfg.Radius, cfg.Height),
		Yaw:  defaultYaw,
		cfg:  cfg,
	}
	p.updateVectors()
	p.SetState(&IdleState{})
	return p
}

// Config возвращает параметры игрока
func (p *Player) Config() PlayerConfig {
	return p.cfg
}

// Position возвращает позицию ног
func (p *Player) Position() mgl32.Vec3 {
	return p.Body.Position
}

// Rotate поворачивает взгляд на смещение мыши
func (p *Player) Rotate(xOffset, yOffset float32) {
	p.Yaw += xOffset * p.cfg.Sensitivity
	p.Pitch += yOffset * p.cfg.Sensitivity

	if p.Pitch > maxPitch {
		p.Pitch = maxPitch
	}
	if p.Pitch < -maxPitch {
		p.Pitch = -maxPitch
	}
	p.updateVectors()
}

// FrontXZ направление взгляда в горизонтальной плоскости
func (p *Player) FrontXZ() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(p.Yaw))
	return mgl32.Vec3{float32(math.Cos(yaw)), 0, float32(math.Sin(yaw))}.Normalize()
}

// RightXZ направление вправо в горизонтальной плоскости
func (p *Player) RightXZ() mgl32.Vec3 {
	return p.FrontXZ().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

// Front направление взгляда с учётом наклона
func (p *Player) Front() mgl32.Vec3 {
	return p.front
}

// Right правый вектор камеры
func (p *Player) Right() mgl32.Vec3 {
	return p.right
}

// EyePosition позиция глаз
func (p *Player) EyePosition() mgl32.Vec3 {
	pos := p.Body.Position
	return mgl32.Vec3{pos.X(), pos.Y() + p.cfg.Height - eyeOffset, pos.Z()}
}

// ViewMatrix матрица вида из глаз игрока
func (p *Player) ViewMatrix() mgl32.Mat4 {
	eye := p.EyePosition()
	return mgl32.LookAtV(eye, eye.Add(p.front), mgl32.Vec3{0, 1, 0})
}

// Walk смещает игрока по вводу: forward вперёд/назад, strafe вправо/влево
func (p *Player) Walk(forward, strafe, dt float32, blocks []world.Block) {
	dir := p.FrontXZ().Mul(forward).Add(p.RightXZ().Mul(strafe))
	if dir.Len() == 0 {
		p.moving = false
		p.lastStep = 0
		return
	}

	move := dir.Normalize().Mul(p.cfg.MoveSpeed * dt)
	before := p.Body.Position
	physics.MoveHorizontal(move.X(), move.Z(), p.Body, blocks)

	delta := p.Body.Position.Sub(before)
	p.lastStep = mgl32.Vec2{delta.X(), delta.Z()}.Len()
	p.moving = true
}

// Stop сбрасывает ввод движения
func (p *Player) Stop() {
	p.moving = false
	p.lastStep = 0
}

// Update выполняет физический тик и обновляет автомат состояний
func (p *Player) Update(dt float32, blocks []world.Block) {
	physics.Tick(p.Body, dt, blocks)
	p.updateVectors()
	p.updateState(dt)
}

// Jump прыжок с опоры
func (p *Player) Jump() bool {
	return physics.Jump(p.Body, p.cfg.JumpStrength)
}

// LastFall высота последнего падения, измеренная при приземлении
func (p *Player) LastFall() float32 {
	return p.lastFall
}

// Target возвращает блок под прицелом
func (p *Player) Target(w BlockInteractor) (world.Block, bool) {
	return w.TargetBlock(p.EyePosition(), p.front, p.cfg.Reach)
}

// Punch разрушает блок под прицелом
func (p *Player) Punch(w BlockInteractor) bool {
	b, ok := p.Target(w)
	if !ok {
		return false
	}
	return w.DestroyBlock(b)
}

func (p *Player) updateVectors() {
	yaw := float64(mgl32.DegToRad(p.Yaw))
	pitch := float64(mgl32.DegToRad(p.Pitch))

	p.front = mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
	p.right = p.front.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

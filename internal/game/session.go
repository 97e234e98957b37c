package game

import (
	"fmt"
	"sync"

	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/annel0/voxel-sandbox/internal/entity"
	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
)

// Параметры кадра
const (
	FixedStep    float32 = 1.0 / 60.0 // шаг физики
	maxSubsteps          = 5          // защита от спирали при долгом кадре
	fieldOfView  float32 = 70
	aspectRatio  float32 = 16.0 / 9.0
	nearPlane    float32 = 0.05
	farPlane     float32 = 500
)

// Input ввод за кадр
type Input struct {
	Forward float32 // -1..1
	Strafe  float32 // -1..1
	MouseDX float32
	MouseDY float32
	Jump    bool
	Punch   bool
}

// Snapshot состояние сессии для чтения из других горутин
type Snapshot struct {
	Frames   int64       `json:"frames"`
	Position mgl32.Vec3  `json:"position"`
	Chunk    vec.Vec2    `json:"chunk"`
	State    string      `json:"state"`
	OnGround bool        `json:"on_ground"`
	Yaw      float32     `json:"yaw"`
	Pitch    float32     `json:"pitch"`
	Waiting  bool        `json:"waiting"` // чанк под игроком ещё не загружен
	World    world.Stats `json:"world"`
}

// Session верхнеуровневый контекст: владеет миром, игроком и приёмником мешей.
// Все методы, кроме Snapshot, вызываются из главного потока.
type Session struct {
	cfg    *config.Config
	world  *world.World
	player *entity.Player
	sink   world.MeshSink
	logger *logging.Logger
	proj   mgl32.Mat4

	accumulator float32
	frames      int64
	waiting     bool

	mu       sync.RWMutex
	snapshot Snapshot
}

// Option настраивает сессию
type Option func(*sessionOptions)

type sessionOptions struct {
	executor world.Executor
	registry prometheus.Registerer
	source   world.ChunkSource
	logger   *logging.Logger
	events   eventbus.EventBus
}

// WithExecutor задаёт исполнитель генерации вместо пула по конфигурации
func WithExecutor(e world.Executor) Option {
	return func(o *sessionOptions) { o.executor = e }
}

// WithRegisterer регистрирует метрики мира в reg
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *sessionOptions) { o.registry = reg }
}

// WithSource заменяет генератор ландшафта
func WithSource(src world.ChunkSource) Option {
	return func(o *sessionOptions) { o.source = src }
}

// WithEventBus подключает шину событий мира
func WithEventBus(bus eventbus.EventBus) Option {
	return func(o *sessionOptions) { o.events = bus }
}

// WithLogger задаёт логгер сессии
func WithLogger(l *logging.Logger) Option {
	return func(o *sessionOptions) { o.logger = l }
}

// GeneratorConfig переводит конфигурацию ландшафта в параметры генератора
func GeneratorConfig(cfg *config.Config) world.GeneratorConfig {
	gc := world.GeneratorConfig{
		Seed:       cfg.World.Seed,
		Frequency:  cfg.Terrain.Frequency,
		MinHeight:  cfg.Terrain.MinHeight,
		MaxHeight:  cfg.Terrain.MaxHeight,
		Ores:       cfg.Terrain.Ores,
		Trees:      cfg.Terrain.Trees,
		TreeChance: cfg.Terrain.TreeChance,
	}
	gc.Coal, gc.Iron = world.DefaultOres(cfg.Terrain.MaxHeight, cfg.Terrain.CoalVeins, cfg.Terrain.IronVeins)
	return gc
}

// PlayerConfig переводит конфигурацию игрока
func PlayerConfig(cfg *config.Config) entity.PlayerConfig {
	pc := entity.DefaultPlayerConfig()
	pc.Radius = cfg.Player.Radius
	pc.Height = cfg.Player.Height
	pc.MoveSpeed = cfg.Player.MoveSpeed
	pc.JumpStrength = cfg.Player.JumpSpeed
	pc.Reach = cfg.Player.Reach
	return pc
}

// NewSession создаёт мир, генерирует стартовый чанк и ставит игрока в точку появления
func NewSession(cfg *config.Config, sink world.MeshSink, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.GetGameLogger()
	}
	if o.source == nil {
		o.source = world.NewGenerator(GeneratorConfig(cfg))
	}
	if o.executor == nil {
		if cfg.World.Workers < 0 {
			o.executor = &world.InlineExecutor{}
		} else {
			side := 2*cfg.World.ViewRadius + 1
			o.executor = world.NewWorkerPool(cfg.World.Workers, side*side, nil)
		}
	}

	w, err := world.NewWorld(world.Options{
		ViewRadius:         cfg.World.ViewRadius,
		MaxSchedulePerCall: cfg.World.MaxSchedulePerCall,
		MaxDrainPerFrame:   cfg.World.MaxDrainPerFrame,
		MaxUploadsPerFrame: cfg.World.MaxUploadsPerFrame,
		ShutdownTimeout:    cfg.World.ShutdownTimeout,
		Source:             o.source,
		Executor:           o.executor,
		Sink:               sink,
		Metrics:            world.NewMetrics(o.registry),
		Events:             o.events,
	})
	if err != nil {
		o.executor.Shutdown(cfg.World.ShutdownTimeout)
		return nil, fmt.Errorf("не удалось создать мир: %w", err)
	}

	spawn, err := w.SpawnPoint(vec.Vec2{})
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("не удалось сгенерировать стартовый чанк: %w", err)
	}

	s := &Session{
		cfg:    cfg,
		world:  w,
		player: entity.NewPlayer(spawn, PlayerConfig(cfg)),
		sink:   sink,
		logger: o.logger,
		proj:   mgl32.Perspective(mgl32.DegToRad(fieldOfView), aspectRatio, nearPlane, farPlane),
	}
	s.world.UploadPending(0)
	s.publish()

	s.logger.Info("🌍 Сессия создана: seed=%d, радиус=%d, точка появления %v",
		cfg.World.Seed, cfg.World.ViewRadius, spawn)
	return s, nil
}

// World возвращает мир сессии
func (s *Session) World() *world.World {
	return s.world
}

// Player возвращает игрока
func (s *Session) Player() *entity.Player {
	return s.player
}

// Frame выполняет один кадр: ввод, фиксированные шаги физики, стриминг, загрузку мешей, отрисовку
func (s *Session) Frame(dt float32, in Input) {
	s.player.Rotate(in.MouseDX, in.MouseDY)
	if in.Punch {
		if s.player.Punch(s.world) {
			s.logger.Debug("Блок разрушен игроком")
		}
	}

	s.accumulator += dt
	steps := 0
	for s.accumulator >= FixedStep && steps < maxSubsteps {
		s.step(in)
		s.accumulator -= FixedStep
		steps++
	}
	if steps == maxSubsteps {
		s.accumulator = 0
	}

	s.world.TickWorld(dt, s.player.Position())
	s.world.UploadPending(0)
	s.sink.DrawFrame(s.player.ViewMatrix(), s.proj, s.world.MeshIDs())

	s.frames++
	s.publish()
}

// step один шаг физики игрока
func (s *Session) step(in Input) {
	pos := s.player.Position()

	// Пока чанк под игроком не загружен, тело замораживается, чтобы не провалиться
	s.waiting = !s.world.IsResident(world.ChunkCoordsAt(pos))
	if s.waiting {
		return
	}

	blocks := s.world.NearbyBlocks(pos)
	if in.Forward != 0 || in.Strafe != 0 {
		s.player.Walk(in.Forward, in.Strafe, FixedStep, blocks)
	} else {
		s.player.Stop()
	}
	if in.Jump {
		s.player.Jump()
	}
	s.player.Update(FixedStep, blocks)
}

// Interpolated позиция игрока для отрисовки между шагами физики
func (s *Session) Interpolated() mgl32.Vec3 {
	return s.player.Body.Interpolated(s.accumulator / FixedStep)
}

func (s *Session) publish() {
	pos := s.player.Position()
	snap := Snapshot{
		Frames:   s.frames,
		Position: pos,
		Chunk:    world.ChunkCoordsAt(pos),
		OnGround: s.player.Body.OnGround,
		Yaw:      s.player.Yaw,
		Pitch:    s.player.Pitch,
		Waiting:  s.waiting,
		World:    s.world.Stats(),
	}
	if s.player.CurrentState != nil {
		snap.State = s.player.CurrentState.Name()
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
}

// Snapshot возвращает состояние на конец последнего кадра. Безопасен из любой горутины.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Close останавливает воркеры и освобождает меши
func (s *Session) Close() {
	s.world.Close()
	s.logger.Info("Сессия закрыта после %d кадров", s.frames)
}

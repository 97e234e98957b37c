package world

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrGenerationPanic задача генерации завершилась паникой
	ErrGenerationPanic = errors.New("паника при генерации чанка")
	// ErrEmptyGeneration источник вернул nil вместо чанка
	ErrEmptyGeneration = errors.New("источник не вернул чанк")
	// ErrNoSource не задан источник чанков
	ErrNoSource = errors.New("не задан источник чанков")
	// ErrNoSink не задан приёмник мешей
	ErrNoSink = errors.New("не задан приёмник мешей")
	// ErrOutsideWindow чанк лежит вне окна резидентности
	ErrOutsideWindow = errors.New("чанк вне окна резидентности")
)

const tracerName = "github.com/annel0/voxel-sandbox/internal/world"

// Options параметры World
type Options struct {
	ViewRadius         int           // R: радиус окна резидентности в чанках
	MaxSchedulePerCall int           // M: новых задач генерации за вызов EnsureResident
	MaxDrainPerFrame   int           // готовых чанков за DrainCompleted; 0: все
	MaxUploadsPerFrame int           // U: загрузок мешей за UploadPending
	ShutdownTimeout    time.Duration // ожидание воркеров в Close

	Source   ChunkSource
	Executor Executor // nil: пул по числу CPU
	Sink     MeshSink
	Metrics  *Metrics
	Logger   *logging.Logger
	Tracer   trace.Tracer
	Events   eventbus.EventBus // nil: события не публикуются
}

// Stats снимок состояния мира для диагностики. Безопасен для чтения из любой горутины.
type Stats struct {
	Center         vec.Vec2 `json:"center"`
	Resident       int64    `json:"resident"`
	Pending        int64    `json:"pending"`
	UploadQueue    int64    `json:"upload_queue"`
	Generated      int64    `json:"generated"`
	Evicted        int64    `json:"evicted"`
	Discarded      int64    `json:"discarded"`
	Panics         int64    `json:"panics"`
	MeshBuilds     int64    `json:"mesh_builds"`
	Uploads        int64    `json:"uploads"`
	UploadFailures int64    `json:"upload_failures"`
	Destroyed      int64    `json:"destroyed"`
	Ticks          int64    `json:"ticks"`
}

type worldStats struct {
	centerX, centerZ atomic.Int64
	resident         atomic.Int64
	pending          atomic.Int64
	uploadQueue      atomic.Int64
	generated        atomic.Int64
	evicted          atomic.Int64
	discarded        atomic.Int64
	panics           atomic.Int64
	meshBuilds       atomic.Int64
	uploads          atomic.Int64
	uploadFailures   atomic.Int64
	destroyed        atomic.Int64
	ticks            atomic.Int64
}

// genResult результат задачи генерации, передаваемый воркером главному потоку
type genResult struct {
	pos   vec.Vec2
	chunk *Chunk
	err   error
}

// World хранилище резидентных чанков со скользящим окном вокруг игрока.
// Карта чанков, множество ожидающих задач и MeshSink принадлежат главному потоку;
// воркеры общаются с ним только через очередь готовых результатов.
type World struct {
	opts    Options
	source  ChunkSource
	exec    Executor
	sink    MeshSink
	metrics *Metrics
	logger  *logging.Logger
	tracer  trace.Tracer
	events  eventbus.EventBus

	chunks  map[vec.Vec2]*Chunk
	pending map[vec.Vec2]struct{}
	queued  map[*Chunk]struct{}
	center  vec.Vec2

	ready   *Queue[genResult]
	uploads *Queue[*Chunk]

	stats worldStats
}

// NewWorld создаёт мир. Пустые числовые параметры заменяются значениями по умолчанию.
func NewWorld(opts Options) (*World, error) {
	if opts.Source == nil {
		return nil, ErrNoSource
	}
	if opts.Sink == nil {
		return nil, ErrNoSink
	}
	if opts.ViewRadius <= 0 {
		opts.ViewRadius = 3
	}
	if opts.MaxSchedulePerCall <= 0 {
		opts.MaxSchedulePerCall = 4
	}
	if opts.MaxUploadsPerFrame <= 0 {
		opts.MaxUploadsPerFrame = 10
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetWorldLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}
	if opts.Executor == nil {
		side := 2*opts.ViewRadius + 1
		opts.Executor = NewWorkerPool(0, side*side, nil)
	}

	return &World{
		opts:    opts,
		source:  opts.Source,
		exec:    opts.Executor,
		sink:    opts.Sink,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		tracer:  opts.Tracer,
		events:  opts.Events,
		chunks:  make(map[vec.Vec2]*Chunk),
		pending: make(map[vec.Vec2]struct{}),
		queued:  make(map[*Chunk]struct{}),
		ready:   NewQueue[genResult](),
		uploads: NewQueue[*Chunk](),
	}, nil
}

// ViewRadius возвращает радиус окна резидентности
func (w *World) ViewRadius() int {
	return w.opts.ViewRadius
}

// Center возвращает чанк, вокруг которого построено текущее окно
func (w *World) Center() vec.Vec2 {
	return w.center
}

// TickWorld обновляет окно вокруг игрока и забирает готовые чанки
func (w *World) TickWorld(dt float32, playerPos mgl32.Vec3) {
	w.stats.ticks.Add(1)
	w.EnsureResident(playerPos)
	w.DrainCompleted(w.opts.MaxDrainPerFrame)
}

// EnsureResident выгружает чанки вне окна и ставит в генерацию недостающие,
// начиная с ближайших колец, но не более MaxSchedulePerCall за вызов
func (w *World) EnsureResident(playerPos mgl32.Vec3) int {
	w.setCenter(ChunkCoordsAt(playerPos))

	for pos, c := range w.chunks {
		if !pos.Within(w.center, w.opts.ViewRadius) {
			w.evict(pos, c)
		}
	}

	scheduled := 0
	for ring := 0; ring <= w.opts.ViewRadius && scheduled < w.opts.MaxSchedulePerCall; ring++ {
		for _, pos := range ringCoords(w.center, ring) {
			if scheduled >= w.opts.MaxSchedulePerCall {
				break
			}
			if _, ok := w.chunks[pos]; ok {
				continue
			}
			if _, ok := w.pending[pos]; ok {
				continue
			}
			if !w.schedule(pos) {
				// Исполнитель не принимает задачи, повторим в следующем кадре
				w.publishStats()
				return scheduled
			}
			scheduled++
		}
	}

	w.publishStats()
	return scheduled
}

// ringCoords возвращает координаты кольца на расстоянии Чебышёва ring от центра
func ringCoords(center vec.Vec2, ring int) []vec.Vec2 {
	if ring == 0 {
		return []vec.Vec2{center}
	}
	out := make([]vec.Vec2, 0, 8*ring)
	for dx := -ring; dx <= ring; dx++ {
		for dz := -ring; dz <= ring; dz++ {
			if vec.Abs(dx) != ring && vec.Abs(dz) != ring {
				continue
			}
			out = append(out, center.Add(vec.Vec2{X: dx, Z: dz}))
		}
	}
	return out
}

func (w *World) setCenter(c vec.Vec2) {
	w.center = c
	w.stats.centerX.Store(int64(c.X))
	w.stats.centerZ.Store(int64(c.Z))
}

// schedule помечает чанк ожидающим и отдаёт задачу исполнителю
func (w *World) schedule(pos vec.Vec2) bool {
	w.pending[pos] = struct{}{}

	ok := w.exec.Submit(func() {
		w.ready.Push(w.generate(pos))
	})
	if !ok {
		delete(w.pending, pos)
		w.logger.Warn("Исполнитель отклонил генерацию чанка %v", pos)
	}
	return ok
}

// generate выполняется в воркере: генерация и первичный меш без соседей
func (w *World) generate(pos vec.Vec2) (res genResult) {
	_, span := w.tracer.Start(context.Background(), "world.generate",
		trace.WithAttributes(attribute.Int("chunk.x", pos.X), attribute.Int("chunk.z", pos.Z)))
	defer span.End()

	res.pos = pos
	defer func() {
		if r := recover(); r != nil {
			res.chunk = nil
			res.err = fmt.Errorf("%w %v: %v", ErrGenerationPanic, pos, r)
			span.RecordError(res.err)
			span.SetStatus(codes.Error, "panic")
		}
	}()

	c := w.source.Generate(pos)
	if c == nil {
		res.err = fmt.Errorf("%w: %v", ErrEmptyGeneration, pos)
		span.SetStatus(codes.Error, res.err.Error())
		return res
	}
	c.Rebuild(nil)
	span.SetAttributes(attribute.Int("chunk.blocks", c.Len()))

	res.chunk = c
	return res
}

// DrainCompleted забирает до max готовых чанков (max <= 0: все) и вставляет их в мир.
// Возвращает количество вставленных чанков.
func (w *World) DrainCompleted(max int) int {
	inserted := 0

	for _, res := range w.ready.PopN(max) {
		delete(w.pending, res.pos)

		if res.err != nil {
			w.stats.panics.Add(1)
			w.metrics.panics.Inc()
			w.logger.Error("Генерация чанка %v не удалась: %v", res.pos, res.err)
			w.emit(EventGenerationFailed, eventbus.PriorityCritical, FailureEvent{Chunk: res.pos, Error: res.err.Error()})
			continue
		}
		if !res.pos.Within(w.center, w.opts.ViewRadius) {
			w.stats.discarded.Add(1)
			w.metrics.discarded.Inc()
			w.logger.Debug("Чанк %v вне окна, отброшен", res.pos)
			continue
		}
		if _, exists := w.chunks[res.pos]; exists {
			w.stats.discarded.Add(1)
			w.metrics.discarded.Inc()
			continue
		}

		w.insert(res.chunk)
		inserted++
	}

	w.publishStats()
	return inserted
}

// insert добавляет чанк и пересобирает меши его и резидентных соседей
func (w *World) insert(c *Chunk) {
	w.chunks[c.Coords] = c
	w.stats.generated.Add(1)
	w.metrics.generated.Inc()
	w.emit(EventChunkLoaded, eventbus.PriorityLow, ChunkEvent{Chunk: c.Coords, Blocks: c.Len()})

	w.rebuild(c)
	for _, n := range c.Coords.Neighbors8() {
		if nc, ok := w.chunks[n]; ok {
			w.rebuild(nc)
		}
	}
}

// rebuild пересобирает меш чанка с учётом соседей и ставит его в очередь загрузки
func (w *World) rebuild(c *Chunk) {
	c.Rebuild(w.lookup)
	w.stats.meshBuilds.Add(1)
	w.metrics.meshBuilds.Inc()

	if _, ok := w.queued[c]; ok {
		return
	}
	w.queued[c] = struct{}{}
	w.uploads.Push(c)
}

func (w *World) lookup(pos vec.Vec2) *Chunk {
	return w.chunks[pos]
}

// evict удаляет чанк из мира и освобождает его меш
func (w *World) evict(pos vec.Vec2, c *Chunk) {
	delete(w.chunks, pos)
	w.releaseMesh(c)
	w.stats.evicted.Add(1)
	w.metrics.evicted.Inc()
	w.logger.Debug("Чанк %v выгружен", pos)
	w.emit(EventChunkEvicted, eventbus.PriorityLow, ChunkEvent{Chunk: pos, Blocks: c.Len()})
}

func (w *World) releaseMesh(c *Chunk) {
	if c.Mesh.ID == "" {
		return
	}
	w.sink.ReleaseChunkMesh(c.Mesh.ID)
	w.metrics.releases.Inc()
	c.Mesh.ID = ""
	c.Mesh.Uploaded = false
}

// UploadPending передаёт в MeshSink не более max мешей (max <= 0: MaxUploadsPerFrame).
// Остаток очереди переносится на следующие кадры.
func (w *World) UploadPending(max int) int {
	if max <= 0 {
		max = w.opts.MaxUploadsPerFrame
	}

	processed := 0
	for processed < max {
		c, ok := w.uploads.Pop()
		if !ok {
			break
		}
		delete(w.queued, c)

		if w.chunks[c.Coords] != c || !c.Mesh.Dirty {
			continue
		}
		w.upload(c)
		processed++
	}

	w.publishStats()
	return processed
}

// upload загружает новую сборку, затем освобождает предыдущий дескриптор
func (w *World) upload(c *Chunk) {
	old := c.Mesh.ID

	id, err := w.sink.UploadChunkMesh(c.Coords, c.Mesh.Vertices, c.Mesh.VertexCount)
	if err != nil {
		w.stats.uploadFailures.Add(1)
		w.metrics.uploadFailures.Inc()
		w.logger.Error("MeshSink отверг меш чанка %v: %v", c.Coords, err)
		w.releaseMesh(c)
		c.Mesh.MarkDropped()
		return
	}

	c.Mesh.MarkUploaded(id)
	w.stats.uploads.Add(1)
	w.metrics.uploads.Inc()

	if old != "" && old != id {
		w.sink.ReleaseChunkMesh(old)
		w.metrics.releases.Inc()
	}
}

// NearbyBlocks возвращает копию блоков чанка, содержащего p, и его 8 соседей
func (w *World) NearbyBlocks(p mgl32.Vec3) []Block {
	center := ChunkCoordsAt(p)

	total := 0
	var found [9]*Chunk
	i := 0
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if c, ok := w.chunks[center.Add(vec.Vec2{X: dx, Z: dz})]; ok {
				found[i] = c
				total += c.Len()
			}
			i++
		}
	}

	out := make([]Block, 0, total)
	for _, c := range found {
		if c != nil {
			out = append(out, c.blocks...)
		}
	}
	return out
}

// DestroyBlock удаляет блок и пересобирает затронутые меши.
// false: чанк не резидентен или блока уже нет.
func (w *World) DestroyBlock(b Block) bool {
	c, ok := w.chunks[b.ChunkCoords()]
	if !ok {
		return false
	}
	l, _ := c.LocalOf(b)
	if !c.RemoveBlock(b) {
		return false
	}

	w.stats.destroyed.Add(1)
	w.metrics.destroyed.Inc()
	w.emit(EventBlockDestroyed, eventbus.PriorityNormal, BlockEvent{Chunk: c.Coords, Cell: b.Cell(), Type: b.Type.String()})
	w.rebuild(c)

	// Граничная ячейка открывает грань соседа; угловая касается двух соседей
	var edges []vec.Vec2
	if l.X == 0 {
		edges = append(edges, vec.Vec2{X: -1})
	}
	if l.X == ChunkSize-1 {
		edges = append(edges, vec.Vec2{X: 1})
	}
	if l.Z == 0 {
		edges = append(edges, vec.Vec2{Z: -1})
	}
	if l.Z == ChunkSize-1 {
		edges = append(edges, vec.Vec2{Z: 1})
	}
	for _, d := range edges {
		if nc, ok := w.chunks[c.Coords.Add(d)]; ok {
			w.rebuild(nc)
		}
	}

	w.publishStats()
	return true
}

// LoadSync генерирует чанк в вызывающем потоке и сразу вставляет его в мир.
// Чанк должен лежать в текущем окне.
func (w *World) LoadSync(pos vec.Vec2) (*Chunk, error) {
	if c, ok := w.chunks[pos]; ok {
		return c, nil
	}
	if !pos.Within(w.center, w.opts.ViewRadius) {
		return nil, fmt.Errorf("%w: %v, центр %v", ErrOutsideWindow, pos, w.center)
	}

	res := w.generate(pos)
	if res.err != nil {
		w.stats.panics.Add(1)
		w.metrics.panics.Inc()
		return nil, res.err
	}
	w.insert(res.chunk)
	w.publishStats()
	return res.chunk, nil
}

// SpawnPoint возвращает точку над самым высоким блоком чанка
func (w *World) SpawnPoint(pos vec.Vec2) (mgl32.Vec3, error) {
	c, err := w.LoadSync(pos)
	if err != nil {
		return mgl32.Vec3{}, err
	}

	var top *Block
	for i := range c.blocks {
		if top == nil || c.blocks[i].Pos.Y() > top.Pos.Y() {
			top = &c.blocks[i]
		}
	}
	if top == nil {
		return mgl32.Vec3{0, 5, 0}, nil
	}
	return mgl32.Vec3{top.Pos.X(), top.Top() + 0.01, top.Pos.Z()}, nil
}

// BlockAt возвращает блок в глобальной ячейке, если её чанк резидентен
func (w *World) BlockAt(cell vec.Vec3) (Block, bool) {
	pos := vec.Vec2{X: vec.FloorDiv(cell.X, ChunkSize), Z: vec.FloorDiv(cell.Z, ChunkSize)}
	c, ok := w.chunks[pos]
	if !ok {
		return Block{}, false
	}
	return c.BlockAt(vec.Mod(cell.X, ChunkSize), cell.Y, vec.Mod(cell.Z, ChunkSize))
}

// Chunk возвращает резидентный чанк
func (w *World) Chunk(pos vec.Vec2) (*Chunk, bool) {
	c, ok := w.chunks[pos]
	return c, ok
}

// IsResident сообщает, загружен ли чанк
func (w *World) IsResident(pos vec.Vec2) bool {
	_, ok := w.chunks[pos]
	return ok
}

// IsPending сообщает, генерируется ли чанк
func (w *World) IsPending(pos vec.Vec2) bool {
	_, ok := w.pending[pos]
	return ok
}

// Resident возвращает координаты резидентных чанков в порядке (X, Z)
func (w *World) Resident() []vec.Vec2 {
	out := make([]vec.Vec2, 0, len(w.chunks))
	for pos := range w.chunks {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Z < out[j].Z
	})
	return out
}

// MeshIDs возвращает дескрипторы мешей для DrawFrame. Пересобранный чанк
// рисуется прежним дескриптором, пока новая сборка не загружена.
func (w *World) MeshIDs() []MeshID {
	ids := make([]MeshID, 0, len(w.chunks))
	for _, pos := range w.Resident() {
		if c := w.chunks[pos]; c.Mesh.ID != "" {
			ids = append(ids, c.Mesh.ID)
		}
	}
	return ids
}

// Stats возвращает снимок счётчиков
func (w *World) Stats() Stats {
	s := &w.stats
	return Stats{
		Center:         vec.Vec2{X: int(s.centerX.Load()), Z: int(s.centerZ.Load())},
		Resident:       s.resident.Load(),
		Pending:        s.pending.Load(),
		UploadQueue:    s.uploadQueue.Load(),
		Generated:      s.generated.Load(),
		Evicted:        s.evicted.Load(),
		Discarded:      s.discarded.Load(),
		Panics:         s.panics.Load(),
		MeshBuilds:     s.meshBuilds.Load(),
		Uploads:        s.uploads.Load(),
		UploadFailures: s.uploadFailures.Load(),
		Destroyed:      s.destroyed.Load(),
		Ticks:          s.ticks.Load(),
	}
}

func (w *World) publishStats() {
	resident := int64(len(w.chunks))
	pending := int64(len(w.pending))
	queue := int64(w.uploads.Len())

	w.stats.resident.Store(resident)
	w.stats.pending.Store(pending)
	w.stats.uploadQueue.Store(queue)

	w.metrics.resident.Set(float64(resident))
	w.metrics.pending.Set(float64(pending))
	w.metrics.uploadQueue.Set(float64(queue))
}

// Close останавливает воркеры и освобождает все меши
func (w *World) Close() {
	if !w.exec.Shutdown(w.opts.ShutdownTimeout) {
		w.logger.Warn("Воркеры не завершились за %v", w.opts.ShutdownTimeout)
	}
	w.ready.PopN(0)

	for pos, c := range w.chunks {
		w.releaseMesh(c)
		delete(w.chunks, pos)
	}
	w.pending = make(map[vec.Vec2]struct{})
	w.queued = make(map[*Chunk]struct{})
	w.uploads.PopN(0)
	w.publishStats()
	w.logger.Info("🛑 Мир закрыт")
}

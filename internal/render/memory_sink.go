package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// ErrSinkClosed приёмник закрыт и не принимает меши
var ErrSinkClosed = errors.New("приёмник мешей закрыт")

// MeshBuffer загруженный меш: байтовый буфер в формате вершин
type MeshBuffer struct {
	ID          world.MeshID
	Pos         vec.Vec2
	Data        []byte
	VertexCount int
}

// FrameStats итоги последнего DrawFrame
type FrameStats struct {
	Frames    int64 `json:"frames"`
	DrawCalls int   `json:"draw_calls"`
	Vertices  int   `json:"vertices"`
	Missing   int   `json:"missing"` // дескрипторы, которых нет в приёмнике
}

// MemorySink хранит меши в памяти вместо GPU. Используется безголовым
// раннером и тестами; дескрипторы выдаются как UUID.
type MemorySink struct {
	mu      sync.RWMutex
	buffers map[world.MeshID]*MeshBuffer
	closed  bool
	frame   FrameStats
	logger  *logging.Logger

	// Fail, если задан, позволяет отвергнуть загрузку (для проверки обработки ошибок)
	Fail func(pos vec.Vec2, vertexCount int) error
}

// NewMemorySink создаёт пустой приёмник
func NewMemorySink(logger *logging.Logger) *MemorySink {
	if logger == nil {
		logger = logging.GetRenderLogger()
	}
	return &MemorySink{
		buffers: make(map[world.MeshID]*MeshBuffer),
		logger:  logger,
	}
}

// UploadChunkMesh копирует вершины в новый буфер и выдаёт дескриптор
func (s *MemorySink) UploadChunkMesh(pos vec.Vec2, vertices []float32, vertexCount int) (world.MeshID, error) {
	if vertexCount*world.FloatsPerVertex != len(vertices) {
		return "", fmt.Errorf("%w: %d вершин, %d чисел", ErrMisalignedBuffer, vertexCount, len(vertices))
	}
	if s.Fail != nil {
		if err := s.Fail(pos, vertexCount); err != nil {
			return "", err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrSinkClosed
	}

	id := world.MeshID(uuid.NewString())
	s.buffers[id] = &MeshBuffer{
		ID:          id,
		Pos:         pos,
		Data:        EncodeVertices(vertices),
		VertexCount: vertexCount,
	}
	s.logger.Trace("Меш чанка %v загружен: %s, %d вершин", pos, id, vertexCount)
	return id, nil
}

// ReleaseChunkMesh освобождает буфер; неизвестный дескриптор игнорируется
func (s *MemorySink) ReleaseChunkMesh(id world.MeshID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buffers[id]; !ok {
		s.logger.Warn("Освобождение неизвестного меша %s", id)
		return
	}
	delete(s.buffers, id)
}

// DrawFrame считает вызовы отрисовки для переданных дескрипторов
func (s *MemorySink) DrawFrame(view, proj mgl32.Mat4, ids []world.MeshID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := FrameStats{Frames: s.frame.Frames + 1}
	for _, id := range ids {
		buf, ok := s.buffers[id]
		if !ok {
			stats.Missing++
			continue
		}
		if buf.VertexCount == 0 {
			continue
		}
		stats.DrawCalls++
		stats.Vertices += buf.VertexCount
	}
	s.frame = stats
}

// FrameStats возвращает итоги последнего кадра
func (s *MemorySink) FrameStats() FrameStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// Len возвращает число живых буферов
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buffers)
}

// Buffer возвращает буфер по дескриптору
func (s *MemorySink) Buffer(id world.MeshID) (*MeshBuffer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, ok := s.buffers[id]
	return buf, ok
}

// Snapshot возвращает живые буферы, упорядоченные по координатам чанка
func (s *MemorySink) Snapshot() []*MeshBuffer {
	s.mu.RLock()
	out := make([]*MeshBuffer, 0, len(s.buffers))
	for _, buf := range s.buffers {
		out = append(out, buf)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Pos, out[j].Pos
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Close закрывает приёмник; живые буферы считаются утечкой
func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if n := len(s.buffers); n > 0 {
		return fmt.Errorf("при закрытии осталось %d неосвобождённых мешей", n)
	}
	return nil
}

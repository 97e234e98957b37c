package world

import (
	"context"
	"time"

	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/vec"
)

// EventSource источник событий мира в шине
const EventSource = "world"

// EventPublishTimeout сколько главный поток ждёт места в шине для важного события
const EventPublishTimeout = 5 * time.Millisecond

// Типы событий мира
const (
	EventChunkLoaded      = "ChunkLoaded"
	EventChunkEvicted     = "ChunkEvicted"
	EventBlockDestroyed   = "BlockDestroyed"
	EventGenerationFailed = "GenerationFailed"
)

// ChunkEvent полезная нагрузка ChunkLoaded/ChunkEvicted
type ChunkEvent struct {
	Chunk  vec.Vec2 `json:"chunk"`
	Blocks int      `json:"blocks"`
}

// BlockEvent полезная нагрузка BlockDestroyed
type BlockEvent struct {
	Chunk vec.Vec2 `json:"chunk"`
	Cell  vec.Vec3 `json:"cell"`
	Type  string   `json:"type"`
}

// FailureEvent полезная нагрузка GenerationFailed
type FailureEvent struct {
	Chunk vec.Vec2 `json:"chunk"`
	Error string   `json:"error"`
}

// emit публикует событие, если шина подключена. Ошибки шины только логируются;
// при заполненной шине событие теряется через EventPublishTimeout.
func (w *World) emit(eventType string, priority int, payload any) {
	if w.events == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(EventSource, eventType, priority, payload)
	if err != nil {
		w.logger.Warn("Событие %s не создано: %v", eventType, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), EventPublishTimeout)
	defer cancel()
	if err := w.events.Publish(ctx, ev); err != nil {
		w.logger.Warn("Событие %s не опубликовано: %v", eventType, err)
	}
}

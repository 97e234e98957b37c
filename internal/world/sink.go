package world

import (
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshID дескриптор меша, выданный MeshSink
type MeshID string

// MeshSink принимает собранные меши чанков. Владеет дескрипторами мешей;
// ядро обязано освободить каждый выданный дескриптор через ReleaseChunkMesh.
// Вызывается только из главного потока.
type MeshSink interface {
	UploadChunkMesh(pos vec.Vec2, vertices []float32, vertexCount int) (MeshID, error)
	ReleaseChunkMesh(id MeshID)
	// DrawFrame вызывается верхним уровнем, не ядром
	DrawFrame(view, proj mgl32.Mat4, ids []MeshID)
}

// ChunkSource производит заполненный чанк по координатам.
// Вызывается из воркеров, поэтому должен быть безопасен для параллельного использования.
type ChunkSource interface {
	Generate(pos vec.Vec2) *Chunk
}

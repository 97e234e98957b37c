package world

// ChunkMesh CPU-сторона меша чанка.
// Инвариант: Dirty ⇒ !Uploaded; каждая загрузка потребляет ровно одну сборку.
type ChunkMesh struct {
	Vertices    []float32
	VertexCount int
	Dirty       bool   // есть сборка, ещё не переданная в MeshSink
	Uploaded    bool   // текущая сборка находится в MeshSink
	ID          MeshID // последний загруженный меш; живёт до замены новой сборкой; пусто: ничего
	Builds      int
}

// SetVertices сохраняет новую сборку
func (m *ChunkMesh) SetVertices(vertices []float32) {
	m.Vertices = vertices
	m.VertexCount = len(vertices) / FloatsPerVertex
	m.Dirty = true
	m.Uploaded = false
	m.Builds++
}

// MarkUploaded отмечает, что сборка передана в MeshSink под дескриптором id
func (m *ChunkMesh) MarkUploaded(id MeshID) {
	m.ID = id
	m.Dirty = false
	m.Uploaded = true
}

// MarkDropped отмечает сборку, которую MeshSink отверг
func (m *ChunkMesh) MarkDropped() {
	m.ID = ""
	m.Dirty = false
	m.Uploaded = false
}

// FaceCount возвращает количество видимых граней в сборке
func (m *ChunkMesh) FaceCount() int {
	return m.VertexCount / VerticesPerFace
}

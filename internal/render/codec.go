package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/annel0/voxel-sandbox/internal/world"
)

// ErrMisalignedBuffer длина буфера не кратна размеру вершины
var ErrMisalignedBuffer = errors.New("буфер вершин не выровнен по размеру вершины")

// VertexStride размер вершины в байтах
const VertexStride = world.FloatsPerVertex * 4

// EncodeVertices сериализует вершины в little-endian IEEE-754 float32
func EncodeVertices(vertices []float32) []byte {
	out := make([]byte, len(vertices)*4)
	for i, v := range vertices {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// DecodeVertices обратна EncodeVertices
func DecodeVertices(data []byte) ([]float32, error) {
	if len(data)%VertexStride != 0 {
		return nil, fmt.Errorf("%w: %d байт", ErrMisalignedBuffer, len(data))
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/klauspost/compress/zstd"
)

// Формат дампа (до сжатия zstd):
//
//	magic "VXMD" | version u16 | count u32 | count × record
//	record: cx i32 | cz i32 | vertexCount u32 | vertexCount × VertexStride байт
const (
	dumpMagic   = "VXMD"
	dumpVersion = 1

	// MaxDumpVertices предел вершин одной записи: все грани всех ячеек чанка
	MaxDumpVertices = world.ChunkSize * world.ChunkSize * world.ChunkHeight * 6 * world.VerticesPerFace

	// записей заранее резервируется не больше, остальные растут по мере чтения
	dumpPrealloc = 1024
)

// ErrBadDump дамп повреждён или имеет неизвестный формат
var ErrBadDump = errors.New("некорректный дамп мешей")

// DumpRecord меш одного чанка в дампе
type DumpRecord struct {
	Pos         vec.Vec2
	VertexCount int
	Data        []byte
}

// WriteDump пишет меши в w, сжимая поток zstd
func WriteDump(w io.Writer, buffers []*MeshBuffer) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("не удалось создать zstd encoder: %w", err)
	}

	bw := bufio.NewWriter(enc)
	var hdr [10]byte
	copy(hdr[:4], dumpMagic)
	binary.LittleEndian.PutUint16(hdr[4:6], dumpVersion)
	binary.LittleEndian.PutUint32(hdr[6:10], uint32(len(buffers)))
	if _, err := bw.Write(hdr[:]); err != nil {
		enc.Close()
		return err
	}

	for _, buf := range buffers {
		var rec [12]byte
		binary.LittleEndian.PutUint32(rec[0:4], uint32(int32(buf.Pos.X)))
		binary.LittleEndian.PutUint32(rec[4:8], uint32(int32(buf.Pos.Z)))
		binary.LittleEndian.PutUint32(rec[8:12], uint32(buf.VertexCount))
		if _, err := bw.Write(rec[:]); err != nil {
			enc.Close()
			return err
		}
		if _, err := bw.Write(buf.Data); err != nil {
			enc.Close()
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadDump читает дамп, записанный WriteDump
func ReadDump(r io.Reader) ([]DumpRecord, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать zstd decoder: %w", err)
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	var hdr [10]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: заголовок: %v", ErrBadDump, err)
	}
	if string(hdr[:4]) != dumpMagic {
		return nil, fmt.Errorf("%w: неверная сигнатура", ErrBadDump)
	}
	if v := binary.LittleEndian.Uint16(hdr[4:6]); v != dumpVersion {
		return nil, fmt.Errorf("%w: версия %d", ErrBadDump, v)
	}

	count := binary.LittleEndian.Uint32(hdr[6:10])
	out := make([]DumpRecord, 0, min(count, dumpPrealloc))
	for i := uint32(0); i < count; i++ {
		var rec [12]byte
		if _, err := io.ReadFull(br, rec[:]); err != nil {
			return nil, fmt.Errorf("%w: запись %d: %v", ErrBadDump, i, err)
		}
		vertexCount := int(binary.LittleEndian.Uint32(rec[8:12]))
		if vertexCount > MaxDumpVertices {
			return nil, fmt.Errorf("%w: запись %d: %d вершин", ErrBadDump, i, vertexCount)
		}
		data := make([]byte, vertexCount*VertexStride)
		if _, err := io.ReadFull(br, data); err != nil {
			return nil, fmt.Errorf("%w: данные записи %d: %v", ErrBadDump, i, err)
		}
		out = append(out, DumpRecord{
			Pos: vec.Vec2{
				X: int(int32(binary.LittleEndian.Uint32(rec[0:4]))),
				Z: int(int32(binary.LittleEndian.Uint32(rec[4:8]))),
			},
			VertexCount: vertexCount,
			Data:        data,
		})
	}
	return out, nil
}

// DumpMeshes сохраняет все живые меши приёмника в файл
func DumpMeshes(path string, sink *MemorySink) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать файл дампа %s: %w", path, err)
	}

	buffers := sink.Snapshot()
	if err := WriteDump(f, buffers); err != nil {
		f.Close()
		return 0, fmt.Errorf("ошибка записи дампа %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	return len(buffers), nil
}

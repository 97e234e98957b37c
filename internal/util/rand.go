package util

import (
	"encoding/binary"
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// GenPass идентифицирует проход генерации, которому выдаётся собственный поток
// случайных чисел. Так изменение одного прохода не сдвигает другие.
type GenPass uint8

const (
	PassCoal GenPass = iota + 1
	PassIron
	PassTrees
)

// ChunkSeed выводит сид для (worldSeed, cx, cz, pass) через xxhash
func ChunkSeed(worldSeed int64, cx, cz int, pass GenPass) int64 {
	var buf [25]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(worldSeed))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(int64(cx)))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(int64(cz)))
	buf[24] = byte(pass)
	return int64(xxhash.Sum64(buf[:]))
}

// ChunkRand возвращает детерминированный генератор для прохода генерации чанка
func ChunkRand(worldSeed int64, cx, cz int, pass GenPass) *rand.Rand {
	return rand.New(rand.NewSource(ChunkSeed(worldSeed, cx, cz, pass)))
}

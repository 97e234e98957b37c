package util

import (
	"math"

	"github.com/aquilax/go-perlin"
)

const (
	noiseAlpha   = 2.0 // Сглаживание шума
	noiseBeta    = 2.0 // Множитель частоты между октавами
	noiseOctaves = 3   // Количество октав

	// Вторичный генератор сэмплируется на повёрнутой решётке с иррациональным
	// масштабом: период решётки основного генератора (256 ячеек) перестаёт
	// проявляться как повтор рельефа.
	detailScale  = math.Sqrt2 * 0.5
	detailAngle  = 0.5235987755982988 // 30°
	detailWeight = 0.35
)

// NoiseField детерминированное скалярное поле со значениями в [-1, 1].
// Не использует глобального состояния: два поля с одним сидом
// возвращают одинаковые значения для одинаковых координат.
type NoiseField struct {
	seed   int64
	base   *perlin.Perlin
	detail *perlin.Perlin
	sinA   float64
	cosA   float64
}

// NewNoiseField создаёт поле шума Перлина с указанным сидом
func NewNoiseField(seed int64) *NoiseField {
	return &NoiseField{
		seed:   seed,
		base:   perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
		detail: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed^0x5DEECE66D),
		sinA:   math.Sin(detailAngle),
		cosA:   math.Cos(detailAngle),
	}
}

// Seed возвращает сид поля
func (nf *NoiseField) Seed() int64 {
	return nf.seed
}

// Eval возвращает значение шума в точке (x, y, z), от -1 до 1
func (nf *NoiseField) Eval(x, y, z float64) float64 {
	u := (x*nf.cosA - z*nf.sinA) * detailScale
	w := (x*nf.sinA + z*nf.cosA) * detailScale

	v := (1-detailWeight)*nf.base.Noise3D(x, y, z) + detailWeight*nf.detail.Noise3D(u+0.5, y*detailScale, w+0.5)
	return clampUnit(v)
}

// Eval2D возвращает значение двумерного шума, от -1 до 1
func (nf *NoiseField) Eval2D(x, z float64) float64 {
	u := (x*nf.cosA - z*nf.sinA) * detailScale
	w := (x*nf.sinA + z*nf.cosA) * detailScale

	v := (1-detailWeight)*nf.base.Noise2D(x, z) + detailWeight*nf.detail.Noise2D(u+0.5, w+0.5)
	return clampUnit(v)
}

// Normalized переводит значение шума из [-1, 1] в [0, 1]
func Normalized(v float64) float64 {
	return (v + 1.0) / 2.0
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

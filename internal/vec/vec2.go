package vec

// Vec2 представляет целочисленные координаты на горизонтальной плоскости XZ.
// Используется как ключ чанка (cx, cz).
type Vec2 struct {
	X, Z int
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Z: v.Z + other.Z}
}

// Sub вычитает вектор
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Z: v.Z - other.Z}
}

// ChebyshevDistance возвращает max(|dx|, |dz|): "квадратное" расстояние в чанках
func (v Vec2) ChebyshevDistance(other Vec2) int {
	dx := Abs(v.X - other.X)
	dz := Abs(v.Z - other.Z)
	if dx > dz {
		return dx
	}
	return dz
}

// Within проверяет, что точка лежит в квадратном окне радиуса r вокруг center
func (v Vec2) Within(center Vec2, r int) bool {
	return v.ChebyshevDistance(center) <= r
}

// Neighbors8 возвращает 8 горизонтальных соседей в фиксированном порядке
func (v Vec2) Neighbors8() [8]Vec2 {
	var out [8]Vec2
	i := 0
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			out[i] = Vec2{X: v.X + dx, Z: v.Z + dz}
			i++
		}
	}
	return out
}

// FloorDiv: целочисленное деление с округлением к минус бесконечности
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod: неотрицательный остаток от деления
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// Abs возвращает модуль целого числа
func Abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

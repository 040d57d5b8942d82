// Package vecmath содержит операции над embedding-векторами.
package vecmath

import "math"

// Norm возвращает евклидову норму вектора.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize делит вектор на его евклидову норму (на месте).
// Возвращает false для нулевого вектора — такой вектор нормализовать нельзя.
func Normalize(v []float32) bool {
	n := Norm(v)
	if n == 0 {
		return false
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / n)
	}
	return true
}

// Cosine возвращает косинусную близость двух векторов одинаковой длины.
func Cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}

// Package vectordb ranks in-memory candidates against a query vector.
package vectordb

import "math"

// Cosine returns dot(a,b)/(|a|*|b|). It returns 0 when either vector is empty,
// has zero norm, or when the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	score := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(score) {
		return 0
	}
	return score
}

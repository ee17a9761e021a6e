// Package vecmath holds the primitive vector operations every ranking and
// projection path goes through. Keeping a single implementation here is what
// guarantees one zero-vector and one dimension-mismatch policy across callers.
package vecmath

import (
	"fmt"
	"math"

	"github.com/shelfmind/shelfmind/internal/domain"
)

// Dot returns the sum of elementwise products of a and b.
func Dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dot: %d vs %d: %w", len(a), len(b), domain.ErrDimensionMismatch)
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// Magnitude returns the Euclidean norm of v.
func Magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns the cosine of the angle between a and b, in [-1, 1].
// A zero vector on either side yields 0: upstream systems legitimately produce
// zero embeddings as a "no signal" state, and that must not rank as an error.
func CosineSimilarity(a, b []float32) (float64, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, fmt.Errorf("cosine similarity: %w", err)
	}
	magA := Magnitude(a)
	magB := Magnitude(b)
	if magA == 0 || magB == 0 {
		return 0, nil
	}
	return dot / (magA * magB), nil
}

// Centroid returns the elementwise arithmetic mean of a non-empty set of
// equal-length vectors.
func Centroid(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("centroid: %w", domain.ErrEmptyInput)
	}
	dim := len(vectors[0])
	sums := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("centroid: vector %d has %d dims, want %d: %w",
				i, len(v), dim, domain.ErrDimensionMismatch)
		}
		for j, x := range v {
			sums[j] += float64(x)
		}
	}
	n := float64(len(vectors))
	out := make([]float32, dim)
	for j, s := range sums {
		out[j] = float32(s / n)
	}
	return out, nil
}

package models

import (
	"errors"
	"fmt"
	"math"
)

// Vector is an embedding produced by a single embedder configuration.
// Vectors from different embedder configurations must never be compared.
type Vector []float32

// ZeroVector returns the all-zero vector with dim elements.
func ZeroVector(dim int) Vector {
	return make(Vector, dim)
}

// IsZero reports whether every element of v is zero.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// MeanVectors returns the element-wise arithmetic mean of vectors.
// All vectors must share the same dimensionality.
func MeanVectors(vectors []Vector) (Vector, error) {
	if len(vectors) == 0 {
		return nil, errors.New("mean of zero vectors")
	}

	dim := len(vectors[0])
	sums := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has %d dimensions, expected %d", i, len(v), dim)
		}
		for j, x := range v {
			sums[j] += float64(x)
		}
	}

	n := float64(len(vectors))
	mean := make(Vector, dim)
	for j, s := range sums {
		mean[j] = float32(s / n)
	}
	return mean, nil
}

// CosineDistance returns 1 - cos(a, b), in the range [0, 2].
//
// Two zero vectors are at distance 0 and a zero vector is at distance 1 from any
// non-zero vector, matching pie_cosine_distance in the database schema.
// Postgres-backed queries never call this; it backs the in-memory store.
func CosineDistance(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cannot compare vectors of %d and %d dimensions", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	switch {
	case normA == 0 && normB == 0:
		return 0, nil
	case normA == 0 || normB == 0:
		return 1, nil
	}

	similarity := dot / math.Sqrt(normA*normB)
	similarity = math.Max(-1, math.Min(1, similarity))
	return 1 - similarity, nil
}

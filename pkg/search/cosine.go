package search

import (
	"fmt"
	"math"
)

// Cosine returns the cosine similarity of two equal-length vectors, in
// [-1, 1]. Mismatched lengths and zero-magnitude vectors are reported as
// errors wrapping ErrComputation rather than producing NaN or a silent 0.
func Cosine(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: dimension mismatch %d vs %d", ErrComputation, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: empty vectors", ErrComputation)
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0, fmt.Errorf("%w: zero-magnitude vector", ErrComputation)
	}

	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB))), nil
}

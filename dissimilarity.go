package kmodes

// Dissimilarity measures how far apart two categorical records are.
// Implementations must be pure: the optimizers call them concurrently.
type Dissimilarity[T comparable] interface {
	Dissimilarity(a, b []T) float64
}

// DissimilarityFunc adapts a plain function into a Dissimilarity.
type DissimilarityFunc[T comparable] func(a, b []T) float64

func (f DissimilarityFunc[T]) Dissimilarity(a, b []T) float64 { return f(a, b) }

// MatchingDissimilarity counts the attribute positions where a and b hold
// different values (simple matching distance, the categorical analogue of
// Hamming distance).
type MatchingDissimilarity[T comparable] struct{}

func (MatchingDissimilarity[T]) Dissimilarity(a, b []T) float64 {
	var n int
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return float64(n)
}

// Dissimilarities writes the dissimilarity between x and every centroid into
// dst, growing it if needed, and returns it.
func Dissimilarities[T comparable](metric Dissimilarity[T], centroids [][]T, x []T, dst []float64) []float64 {
	if cap(dst) < len(centroids) {
		dst = make([]float64, len(centroids))
	}
	dst = dst[:len(centroids)]
	for c, cent := range centroids {
		dst[c] = metric.Dissimilarity(cent, x)
	}
	return dst
}

// nearest returns the index of the smallest value in d. Ties go to the
// lowest index.
func nearest(d []float64) int {
	best := 0
	for i := 1; i < len(d); i++ {
		if d[i] < d[best] {
			best = i
		}
	}
	return best
}

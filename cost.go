package kmodes

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Cost returns the clustering cost
//
//	Σ_c Σ_i d(x_i, centroid_c) · u_ci^alpha
//
// where u is the k×N membership matrix. With a hard (0/1) membership and
// alpha = 1 this is the sum of each record's dissimilarity to its assigned
// centroid. The summation order is fixed, so identical inputs give
// identical results.
func Cost[T comparable](data [][]T, centroids [][]T, membership mat.Matrix, alpha float64, metric Dissimilarity[T]) float64 {
	if metric == nil {
		metric = MatchingDissimilarity[T]{}
	}
	return weightedCost(len(data), len(centroids), membership, alpha, func(i, c int) float64 {
		return metric.Dissimilarity(centroids[c], data[i])
	})
}

// weightedCost sums dist(i, c) · u_ci^alpha over clusters, then records.
// Entries with zero membership are skipped without evaluating dist.
func weightedCost(n, k int, membership mat.Matrix, alpha float64, dist func(i, c int) float64) float64 {
	var cost float64
	for c := 0; c < k; c++ {
		for i := 0; i < n; i++ {
			u := membership.At(c, i)
			if u == 0 {
				continue
			}
			w := u
			if alpha != 1 {
				w = math.Pow(u, alpha)
			}
			cost += dist(i, c) * w
		}
	}
	return cost
}

// hardMembership builds the k×N 0/1 membership matrix for labels.
func hardMembership(labels []int, k int) *mat.Dense {
	m := mat.NewDense(k, len(labels), nil)
	for i, c := range labels {
		m.Set(c, i, 1)
	}
	return m
}

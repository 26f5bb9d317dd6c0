package kmodes

import (
	"cmp"
	"context"
	"math"
	"math/rand"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Initializer chooses k distinct starting centroids from data. The returned
// centroids are fresh slices the caller may mutate.
type Initializer[T comparable] interface {
	InitCentroids(ctx context.Context, data [][]T, k int) ([][]T, error)
}

// HuangInitializer draws k values per attribute with probability
// proportional to their frequency, then replaces each synthesized centroid
// with the nearest record (ties broken by data order) that differs from
// every centroid chosen before it.
type HuangInitializer[T comparable] struct {
	Metric Dissimilarity[T]
	Rand   *rand.Rand
}

func (h HuangInitializer[T]) InitCentroids(ctx context.Context, data [][]T, k int) ([][]T, error) {
	n, attrs := len(data), len(data[0])

	candidates := make([][]T, k)
	for c := range candidates {
		candidates[c] = make([]T, attrs)
	}
	for a := 0; a < attrs; a++ {
		// Sampling uniformly from the column grouped by value is sampling
		// each value with probability count/n.
		pool := columnMultiset(data, a)
		for c := range candidates {
			candidates[c][a] = pool[h.Rand.Intn(len(pool))]
		}
	}

	centroids := make([][]T, 0, k)
	order := make([]int, n)
	dist := make([]float64, n)
	for c, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i, x := range data {
			order[i] = i
			dist[i] = h.Metric.Dissimilarity(cand, x)
		}
		slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(dist[a], dist[b]) })

		chosen := -1
		for _, i := range order {
			if !containsRow(centroids, data[i]) {
				chosen = i
				break
			}
		}
		if chosen < 0 {
			return nil, errors.Wrapf(ErrDegenerateInit, "huang: no distinct record left for centroid %d of %d", c+1, k)
		}
		centroids = append(centroids, slices.Clone(data[chosen]))
	}
	return centroids, nil
}

// CaoInitializer implements the density-based initialization of Cao et al.
// (2009). The first centroid is the densest record; every further centroid
// is the record maximizing min over chosen centroids of
// dissimilarity × density.
//
// Evaluated naively that is O(N·A·k²). A running minimum per record brings
// it to O(N·A·k), but large k still dominates the cost.
type CaoInitializer[T comparable] struct {
	Metric  Dissimilarity[T]
	Workers int
}

func (ci CaoInitializer[T]) InitCentroids(ctx context.Context, data [][]T, k int) ([][]T, error) {
	n := len(data)
	dens, err := densities(ctx, data, ci.Workers)
	if err != nil {
		return nil, err
	}

	centroids := make([][]T, 0, k)
	centroids = append(centroids, slices.Clone(data[floats.MaxIdx(dens)]))

	score := make([]float64, n)
	for i := range score {
		score[i] = math.Inf(1)
	}
	for len(centroids) < k {
		last := centroids[len(centroids)-1]
		err := forEachStripe(ctx, n, ci.Workers, func(start, end int) error {
			for i := start; i < end; i++ {
				score[i] = min(score[i], ci.Metric.Dissimilarity(last, data[i])*dens[i])
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		best := floats.MaxIdx(score)
		if !(score[best] > 0) {
			return nil, errors.Wrapf(ErrDegenerateInit, "cao: no distinct record left for centroid %d of %d", len(centroids)+1, k)
		}
		centroids = append(centroids, slices.Clone(data[best]))
	}
	return centroids, nil
}

// densities returns, per record, the mean over attributes of the relative
// frequency of the record's value in that attribute.
func densities[T comparable](ctx context.Context, data [][]T, workers int) ([]float64, error) {
	n := len(data)
	dens := make([]float64, n)
	if n == 0 || len(data[0]) == 0 {
		return dens, nil
	}
	attrs := len(data[0])

	freqs := make([]map[T]int, attrs)
	for a := range freqs {
		freqs[a] = make(map[T]int)
		for _, x := range data {
			freqs[a][x[a]]++
		}
	}

	norm := float64(attrs) * float64(n)
	err := forEachStripe(ctx, n, workers, func(start, end int) error {
		for i := start; i < end; i++ {
			var sum int
			for a, v := range data[i] {
				sum += freqs[a][v]
			}
			dens[i] = float64(sum) / norm
		}
		return nil
	})
	return dens, err
}

// columnMultiset returns attribute a of every record, grouped by value in
// first-seen order.
func columnMultiset[T comparable](data [][]T, a int) []T {
	var order []T
	counts := make(map[T]int)
	for _, x := range data {
		v := x[a]
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	pool := make([]T, 0, len(data))
	for _, v := range order {
		for j := 0; j < counts[v]; j++ {
			pool = append(pool, v)
		}
	}
	return pool
}

func containsRow[T comparable](rows [][]T, x []T) bool {
	for _, r := range rows {
		if slices.Equal(r, x) {
			return true
		}
	}
	return false
}

// newInitializer resolves cfg.Init into a concrete Initializer.
func newInitializer[T comparable](cfg *Config[T]) (Initializer[T], error) {
	switch cfg.Init {
	case InitHuang:
		return HuangInitializer[T]{Metric: cfg.Metric, Rand: cfg.Rand}, nil
	case InitCao:
		return CaoInitializer[T]{Metric: cfg.Metric, Workers: cfg.Workers}, nil
	default:
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown Init %q", cfg.Init)
	}
}

package kmodes

import (
	"context"
	"math"
	"slices"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// membershipTolerance bounds how far a membership column may sum from 1.
const membershipTolerance = 1e-6

// ValueWeight pairs an observed attribute value with a weight.
type ValueWeight[T comparable] struct {
	Value  T
	Weight float64
}

// FuzzyCentroid is a centroid that holds, per attribute, a weighted
// distribution over observed values instead of a single value.
type FuzzyCentroid[T comparable] [][]ValueWeight[T]

// FuzzyCentroidModel defines what a fuzzy centroid is. The package ships no
// implementation: how aggregated memberships become a distribution, and how
// a record is compared with one, is a modelling decision left to the caller.
// Running the fuzzy optimizer with CentroidFuzzy and no model fails with
// ErrFuzzyCentroidUnresolved.
type FuzzyCentroidModel[T comparable] interface {
	// Fuzzify converts a hard initial centroid into a fuzzy one. domain
	// lists the observed values of every attribute in first-seen order.
	Fuzzify(centroid []T, domain [][]T) FuzzyCentroid[T]

	// Centroid builds one attribute of a fuzzy centroid. weights holds, for
	// every observed value of the attribute, the sum of membership^alpha of
	// the records holding that value.
	Centroid(weights []ValueWeight[T]) []ValueWeight[T]

	// Dissimilarity compares a record with a fuzzy centroid.
	Dissimilarity(x []T, c FuzzyCentroid[T]) float64
}

// attributeDomain indexes one attribute: its observed values in first-seen
// order and, per value, the records holding it.
type attributeDomain[T comparable] struct {
	values  []T
	members [][]int
}

func buildDomains[T comparable](data [][]T) []attributeDomain[T] {
	domains := make([]attributeDomain[T], len(data[0]))
	for a := range domains {
		index := make(map[T]int)
		d := &domains[a]
		for i, x := range data {
			j, ok := index[x[a]]
			if !ok {
				j = len(d.values)
				index[x[a]] = j
				d.values = append(d.values, x[a])
				d.members = append(d.members, nil)
			}
			d.members[j] = append(d.members[j], i)
		}
	}
	return domains
}

// fuzzyMembership writes the membership of one record in every cluster into
// dst, given its dissimilarities d to the centroids. A zero dissimilarity
// short-circuits the formula: the matching clusters share membership 1. It
// reports whether the uniform fallback had to replace a non-finite or
// unnormalized result.
func fuzzyMembership(d []float64, alpha float64, dst []float64) bool {
	zeros := 0
	for _, v := range d {
		if v == 0 {
			zeros++
		}
	}
	if zeros > 0 {
		for c, v := range d {
			if v == 0 {
				dst[c] = 1 / float64(zeros)
			} else {
				dst[c] = 0
			}
		}
		return false
	}

	exp := 1 / (alpha - 1)
	for c := range d {
		var sum float64
		for j := range d {
			sum += math.Pow(d[c]/d[j], exp)
		}
		dst[c] = 1 / sum
	}
	if validMembership(dst) {
		return false
	}
	uniformOverMinima(d, dst)
	return true
}

func validMembership(u []float64) bool {
	for _, v := range u {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return math.Abs(floats.Sum(u)-1) <= membershipTolerance
}

// uniformOverMinima spreads membership evenly over the clusters tied for the
// smallest dissimilarity, or over all clusters if none is comparable.
func uniformOverMinima(d []float64, dst []float64) {
	m := math.Inf(1)
	for _, v := range d {
		if v < m {
			m = v
		}
	}
	ties := 0
	for _, v := range d {
		if v == m {
			ties++
		}
	}
	for c, v := range d {
		switch {
		case ties == 0:
			dst[c] = 1 / float64(len(d))
		case v == m:
			dst[c] = 1 / float64(ties)
		default:
			dst[c] = 0
		}
	}
}

// fuzzyState is everything one fuzzy k-modes run mutates.
type fuzzyState[T comparable] struct {
	data       [][]T
	domains    []attributeDomain[T]
	k          int
	alpha      float64
	workers    int
	membership *mat.Dense // k × N

	centroids      [][]T
	fuzzyCentroids []FuzzyCentroid[T]
	model          FuzzyCentroidModel[T]
	dist           func(i, c int) float64
}

func newFuzzyState[T comparable](data [][]T, initial [][]T, cfg *Config[T]) (*fuzzyState[T], error) {
	s := &fuzzyState[T]{
		data:       data,
		domains:    buildDomains(data),
		k:          cfg.K,
		alpha:      cfg.Alpha,
		workers:    cfg.Workers,
		membership: mat.NewDense(cfg.K, len(data), nil),
	}

	switch cfg.CentroidType {
	case CentroidHard:
		s.centroids = make([][]T, len(initial))
		for c := range initial {
			s.centroids[c] = slices.Clone(initial[c])
		}
		metric := cfg.Metric
		s.dist = func(i, c int) float64 { return metric.Dissimilarity(s.centroids[c], s.data[i]) }
	case CentroidFuzzy:
		if cfg.FuzzyCentroids == nil {
			return nil, ErrFuzzyCentroidUnresolved
		}
		s.model = cfg.FuzzyCentroids
		domain := make([][]T, len(s.domains))
		for a := range s.domains {
			domain[a] = s.domains[a].values
		}
		s.fuzzyCentroids = make([]FuzzyCentroid[T], len(initial))
		for c := range initial {
			s.fuzzyCentroids[c] = s.model.Fuzzify(initial[c], domain)
		}
		s.dist = func(i, c int) float64 { return s.model.Dissimilarity(s.data[i], s.fuzzyCentroids[c]) }
	default:
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown CentroidType %q", cfg.CentroidType)
	}
	return s, nil
}

// updateMembership recomputes every membership column from the current
// centroids. Columns are independent, so records are processed in parallel.
// Returns how many columns needed the numerical fallback.
func (s *fuzzyState[T]) updateMembership(ctx context.Context) (int, error) {
	var fallbacks atomic.Int64
	err := forEachStripe(ctx, len(s.data), s.workers, func(start, end int) error {
		d := make([]float64, s.k)
		col := make([]float64, s.k)
		for i := start; i < end; i++ {
			for c := range d {
				d[c] = s.dist(i, c)
			}
			if fuzzyMembership(d, s.alpha, col) {
				fallbacks.Add(1)
			}
			s.membership.SetCol(i, col)
		}
		return nil
	})
	return int(fallbacks.Load()), err
}

// updateCentroids recomputes every centroid from the current memberships.
// For hard centroids each attribute takes the value maximizing
// Σ membership^alpha over the records holding it (first-seen value on ties).
// The new centroids are built aside and installed only when every cluster
// is done, so a cancelled update leaves the previous generation intact.
func (s *fuzzyState[T]) updateCentroids(ctx context.Context) error {
	var next [][]T
	var nextFuzzy []FuzzyCentroid[T]
	if s.model == nil {
		next = make([][]T, len(s.centroids))
		for c := range s.centroids {
			next[c] = slices.Clone(s.centroids[c])
		}
	} else {
		nextFuzzy = make([]FuzzyCentroid[T], len(s.fuzzyCentroids))
		for c := range s.fuzzyCentroids {
			nextFuzzy[c] = slices.Clone(s.fuzzyCentroids[c])
		}
	}

	err := forEachStripe(ctx, s.k, s.workers, func(start, end int) error {
		weighted := make([]float64, len(s.data))
		for c := start; c < end; c++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i, u := range s.membership.RawRowView(c) {
				weighted[i] = math.Pow(u, s.alpha)
			}
			for a := range s.domains {
				if s.model == nil {
					next[c][a] = s.weightedMode(a, weighted)
				} else {
					nextFuzzy[c][a] = s.model.Centroid(s.valueWeights(a, weighted))
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.model == nil {
		s.centroids = next
	} else {
		s.fuzzyCentroids = nextFuzzy
	}
	return nil
}

// valueSums returns, per observed value of attribute a, the summed weight of
// the records holding it.
func (s *fuzzyState[T]) valueSums(a int, weighted []float64) []float64 {
	dom := &s.domains[a]
	sums := make([]float64, len(dom.values))
	for j, members := range dom.members {
		for _, i := range members {
			sums[j] += weighted[i]
		}
	}
	return sums
}

func (s *fuzzyState[T]) weightedMode(a int, weighted []float64) T {
	return s.domains[a].values[floats.MaxIdx(s.valueSums(a, weighted))]
}

func (s *fuzzyState[T]) valueWeights(a int, weighted []float64) []ValueWeight[T] {
	sums := s.valueSums(a, weighted)
	weights := make([]ValueWeight[T], len(sums))
	for j, v := range s.domains[a].values {
		weights[j] = ValueWeight[T]{Value: v, Weight: sums[j]}
	}
	return weights
}

func (s *fuzzyState[T]) cost() float64 {
	return weightedCost(len(s.data), s.k, s.membership, s.alpha, s.dist)
}

// labels returns, per record, the cluster with the largest membership.
func (s *fuzzyState[T]) labels() []int {
	labels := make([]int, len(s.data))
	col := make([]float64, s.k)
	for i := range labels {
		mat.Col(col, i, s.membership)
		labels[i] = floats.MaxIdx(col)
	}
	return labels
}

// runFuzzy performs fuzzy k-modes from the given initial centroids. The cost
// is only evaluated every cfg.CostCheckInterval iterations; the run stops
// when a checked cost fails to improve on the previous one.
func runFuzzy[T comparable](ctx context.Context, data [][]T, initial [][]T, cfg *Config[T]) (*Result[T], error) {
	log := cfg.Logger
	s, err := newFuzzyState(data, initial, cfg)
	if err != nil {
		return nil, err
	}

	res := &Result[T]{}
	lastCost := math.Inf(1)
	fresh := false
	for res.Iterations < cfg.MaxIterations && !res.Converged {
		if ctx.Err() != nil {
			res.Interrupted = true
			break
		}
		n, err := s.updateMembership(ctx)
		if err != nil {
			res.Interrupted = true
			fresh = false
			break
		}
		fresh = true
		res.NumericalFallbacks += n

		if err := s.updateCentroids(ctx); err != nil {
			res.Interrupted = true
			break
		}
		res.Iterations++

		if (res.Iterations-1)%cfg.CostCheckInterval == 0 {
			cost := s.cost()
			res.Converged = cost >= lastCost
			lastCost = cost
			if cfg.Verbosity >= VerbositySummary {
				log.Info("fuzzy kmodes iteration",
					zap.Int("iter", res.Iterations),
					zap.Int("max_iter", cfg.MaxIterations),
					zap.Float64("cost", cost))
			}
		}
	}

	// A cancelled or empty run may leave columns unset; finish them from the
	// current centroids so the membership is always valid.
	if !fresh {
		n, err := s.updateMembership(context.Background())
		if err != nil {
			return nil, err
		}
		res.NumericalFallbacks += n
	}
	if cfg.Verbosity >= VerbositySummary && res.NumericalFallbacks > 0 {
		log.Warn("fuzzy membership fell back to uniform over tied clusters",
			zap.Int("columns", res.NumericalFallbacks))
	}

	res.Labels = s.labels()
	res.Centroids = s.centroids
	res.FuzzyCentroids = s.fuzzyCentroids
	res.Membership = s.membership
	res.Cost = s.cost()
	return res, nil
}

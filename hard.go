package kmodes

import (
	"context"
	"slices"

	"go.uber.org/zap"
)

// hardState is everything one hard k-modes run mutates. It is created per
// run and threaded through the assignment passes; nothing is shared between
// runs.
type hardState[T comparable] struct {
	data      [][]T
	centroids [][]T
	labels    []int
	ledger    *ledger[T]
	metric    Dissimilarity[T]
	scratch   []float64
}

func newHardState[T comparable](data [][]T, centroids [][]T, metric Dissimilarity[T]) *hardState[T] {
	cents := make([][]T, len(centroids))
	for c := range centroids {
		cents[c] = slices.Clone(centroids[c])
	}
	return &hardState[T]{
		data:      data,
		centroids: cents,
		labels:    make([]int, len(data)),
		ledger:    newLedger[T](len(centroids), len(data[0])),
		metric:    metric,
		scratch:   make([]float64, len(centroids)),
	}
}

// assignInitial puts every record in its nearest initial centroid, fills the
// ledger and replaces each centroid with the mode of its members. Nearest
// centroids only read the initial centroids, so that part runs in parallel.
func (s *hardState[T]) assignInitial(ctx context.Context, workers int) error {
	err := forEachStripe(ctx, len(s.data), workers, func(start, end int) error {
		dist := make([]float64, len(s.centroids))
		for i := start; i < end; i++ {
			dist = Dissimilarities(s.metric, s.centroids, s.data[i], dist)
			s.labels[i] = nearest(dist)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i, x := range s.data {
		s.ledger.add(s.labels[i], x)
	}
	for c := range s.centroids {
		s.ledger.refresh(c, s.centroids[c])
	}
	return nil
}

// reassign runs one pass over the records, moving each to its nearest
// centroid. A move updates the ledger and refreshes both affected centroids
// before the next record is examined, so the pass is order-sensitive and
// sequential. onMove, if non-nil, is called for every move. Returns the
// number of moves.
func (s *hardState[T]) reassign(onMove func(i, from, to int)) int {
	moves := 0
	for i, x := range s.data {
		s.scratch = Dissimilarities(s.metric, s.centroids, x, s.scratch)
		to := nearest(s.scratch)
		from := s.labels[i]
		if to == from {
			continue
		}

		moves++
		s.ledger.move(from, to, x)
		s.labels[i] = to
		s.ledger.refresh(from, s.centroids[from])
		s.ledger.refresh(to, s.centroids[to])
		if onMove != nil {
			onMove(i, from, to)
		}
	}
	return moves
}

// runHard performs hard k-modes from the given initial centroids.
func runHard[T comparable](ctx context.Context, data [][]T, initial [][]T, cfg *Config[T]) (*Result[T], error) {
	log := cfg.Logger
	s := newHardState(data, initial, cfg.Metric)
	if err := s.assignInitial(ctx, cfg.Workers); err != nil {
		return nil, err
	}

	var onMove func(i, from, to int)
	if cfg.Verbosity >= VerbosityMoves {
		onMove = func(i, from, to int) {
			log.Debug("kmodes move", zap.Int("point", i), zap.Int("from", from), zap.Int("to", to))
		}
	}

	res := &Result[T]{}
	for res.Iterations < cfg.MaxIterations {
		if ctx.Err() != nil {
			res.Interrupted = true
			break
		}
		res.Iterations++
		moves := s.reassign(onMove)
		if cfg.Verbosity >= VerbositySummary {
			log.Info("kmodes iteration",
				zap.Int("iter", res.Iterations),
				zap.Int("max_iter", cfg.MaxIterations),
				zap.Int("moves", moves))
		}
		if moves == 0 {
			res.Converged = true
			break
		}
	}

	res.Labels = s.labels
	res.Centroids = s.centroids
	res.Membership = hardMembership(s.labels, cfg.K)
	res.Cost = Cost(data, s.centroids, res.Membership, 1, cfg.Metric)
	return res, nil
}

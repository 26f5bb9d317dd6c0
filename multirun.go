package kmodes

import (
	"context"
	"math/rand"
	"runtime"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// MultiRunConfig controls SelectRun.
type MultiRunConfig struct {
	// PreRuns is the number of reference runs whose costs set the acceptance
	// threshold. Must be >= 1. Default: 10.
	PreRuns int

	// GoodPercentile is the percentile, in [0, 100], of the pre-run costs a
	// run must reach to be accepted. Default: 20.
	GoodPercentile float64

	// MaxAttempts caps the runs made after the pre-runs. 0 means unbounded:
	// SelectRun keeps trying until a run is accepted or ctx is done.
	// Default: 0.
	MaxAttempts int

	// Workers is the size of the goroutine pool running the pre-runs
	// concurrently. 0 means runtime.NumCPU(). Default: 0.
	Workers int
}

// DefaultMultiRunConfig returns a MultiRunConfig with reasonable defaults.
func DefaultMultiRunConfig() MultiRunConfig {
	return MultiRunConfig{
		PreRuns:        10,
		GoodPercentile: 20,
	}
}

// RunRecord identifies one optimizer run made by SelectRun.
type RunRecord struct {
	ID   uuid.UUID
	Seed int64
	Cost float64
}

// MultiRunResult is the output of SelectRun.
type MultiRunResult[T comparable] struct {
	// Result is the selected run.
	Result *Result[T]

	// Run identifies the selected run.
	Run RunRecord

	// PreRuns lists the completed reference runs in submission order. Runs
	// cut short by ctx are left out.
	PreRuns []RunRecord

	// Threshold is the GoodPercentile of the pre-run costs.
	Threshold float64

	// Attempts is the number of runs made after the pre-runs.
	Attempts int

	// Accepted reports whether Result.Cost <= Threshold. It is false when
	// MaxAttempts ran out or ctx was cancelled; Result is then the cheapest
	// run seen.
	Accepted bool

	// Skipped reports that the configuration is deterministic (Cao
	// initialization), so a single run was made and returned.
	Skipped bool
}

// runOutcome is one optimizer run made by SelectRun.
type runOutcome[T comparable] struct {
	res *Result[T]
	rec RunRecord
	err error
}

func validateMultiRunConfig(mcfg *MultiRunConfig) error {
	var errs error
	if mcfg.PreRuns < 1 {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidConfig, "PreRuns must be >= 1, got %d", mcfg.PreRuns))
	}
	if !(mcfg.GoodPercentile >= 0 && mcfg.GoodPercentile <= 100) {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidConfig, "GoodPercentile must be in [0, 100], got %f", mcfg.GoodPercentile))
	}
	if mcfg.MaxAttempts < 0 {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidConfig, "MaxAttempts must be >= 0, got %d", mcfg.MaxAttempts))
	}
	if mcfg.Workers < 0 {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidConfig, "Workers must be >= 0, got %d", mcfg.Workers))
	}
	return errs
}

// percentile returns the pct-th percentile of sorted, interpolating linearly
// between the closest ranks at position pct/100·(n-1). stat.LinInterp puts
// p at position p·n, so p is mapped onto that scale first.
func percentile(sorted []float64, pct float64) float64 {
	n := float64(len(sorted))
	p := min((1+pct/100*(n-1))/n, 1)
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// SelectRun guards against poor local optima from random initialization.
// It makes mcfg.PreRuns reference runs, takes the mcfg.GoodPercentile
// percentile of their costs as a threshold, then runs the optimizer again
// until a run's cost is at or below the threshold and returns that run.
//
// This is rejection sampling: with MaxAttempts 0 there is no bound on the
// number of runs. Cao initialization is deterministic, so every run would be
// identical; in that case SelectRun makes a single run and sets Skipped.
//
// Each run gets its own random source seeded from cfg's, so a fixed
// cfg.Seed makes the whole selection reproducible.
//
// Cancelling ctx returns the cheapest completed run so far with Accepted
// false. Only when no reference run completed is ctx's error returned.
func SelectRun[T comparable](ctx context.Context, data [][]T, cfg Config[T], mcfg MultiRunConfig) (*MultiRunResult[T], error) {
	applyDefaults(&cfg)
	if mcfg.Workers == 0 {
		mcfg.Workers = runtime.NumCPU()
	}
	if err := multierr.Combine(validateConfig(&cfg), validateMultiRunConfig(&mcfg)); err != nil {
		return nil, err
	}
	if err := validateData(data, cfg.K); err != nil {
		return nil, err
	}
	log := cfg.Logger
	verbose := cfg.Verbosity >= VerbositySummary

	if cfg.Init == InitCao {
		if verbose {
			log.Info("cao initialization is deterministic; making a single run instead of a multi-run selection")
		}
		res, err := ClusterContext(ctx, data, cfg)
		if err != nil {
			return nil, err
		}
		run := RunRecord{ID: uuid.New(), Cost: res.Cost}
		return &MultiRunResult[T]{
			Result:    res,
			Run:       run,
			Threshold: res.Cost,
			Accepted:  true,
			Skipped:   true,
		}, nil
	}

	base := cfg.Rand
	runOnce := func(seed int64, verbosity Verbosity, workers int) runOutcome[T] {
		runCfg := cfg
		runCfg.Rand = rand.New(rand.NewSource(seed))
		runCfg.Verbosity = verbosity
		runCfg.Workers = workers
		rec := RunRecord{ID: uuid.New(), Seed: seed}
		res, err := ClusterContext(ctx, data, runCfg)
		if err != nil {
			return runOutcome[T]{rec: rec, err: errors.WithMessagef(err, "run %s", rec.ID)}
		}
		rec.Cost = res.Cost
		return runOutcome[T]{res: res, rec: rec}
	}

	seeds := make([]int64, mcfg.PreRuns)
	for i := range seeds {
		seeds[i] = base.Int63()
	}
	outcomes, err := runPool(mcfg.Workers, seeds, func(seed int64) runOutcome[T] {
		return runOnce(seed, VerbositySilent, 1)
	})
	if err != nil {
		return nil, err
	}

	out := &MultiRunResult[T]{}
	costs := make([]float64, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			if ctx.Err() == nil {
				return nil, o.err
			}
			continue
		}
		if o.res.Interrupted {
			continue
		}
		out.PreRuns = append(out.PreRuns, o.rec)
		costs = append(costs, o.rec.Cost)
		if out.Result == nil || o.rec.Cost < out.Run.Cost {
			out.Result, out.Run = o.res, o.rec
		}
		if verbose {
			log.Info("kmodes pre-run",
				zap.Stringer("run", o.rec.ID),
				zap.Int64("seed", o.rec.Seed),
				zap.Float64("cost", o.rec.Cost))
		}
	}
	if out.Result == nil {
		return nil, errors.WithMessage(ctx.Err(), "kmodes: selection cancelled before any reference run completed")
	}

	slices.Sort(costs)
	out.Threshold = percentile(costs, mcfg.GoodPercentile)
	if verbose {
		log.Info("kmodes acceptance threshold",
			zap.Float64("percentile", mcfg.GoodPercentile),
			zap.Int("pre_runs", len(costs)),
			zap.Float64("threshold", out.Threshold))
	}

	cancelled := func() (*MultiRunResult[T], error) {
		if verbose {
			log.Warn("kmodes selection cancelled; returning cheapest run so far",
				zap.Int("attempts", out.Attempts))
		}
		return out, nil
	}

	for mcfg.MaxAttempts == 0 || out.Attempts < mcfg.MaxAttempts {
		if ctx.Err() != nil {
			return cancelled()
		}
		out.Attempts++
		o := runOnce(base.Int63(), cfg.Verbosity, cfg.Workers)
		if o.err != nil {
			if ctx.Err() != nil {
				return cancelled()
			}
			return nil, o.err
		}
		if o.res.Interrupted {
			// Cut short by ctx; keep it only if it beats what we have.
			if o.rec.Cost < out.Run.Cost {
				out.Result, out.Run = o.res, o.rec
			}
			continue
		}
		if o.rec.Cost <= out.Threshold {
			if verbose {
				log.Info("kmodes found a good clustering",
					zap.Stringer("run", o.rec.ID),
					zap.Int("attempts", out.Attempts),
					zap.Float64("cost", o.rec.Cost))
			}
			out.Result, out.Run, out.Accepted = o.res, o.rec, true
			return out, nil
		}
		if o.rec.Cost < out.Run.Cost {
			out.Result, out.Run = o.res, o.rec
		}
	}

	if verbose {
		log.Warn("kmodes gave up before reaching the threshold; returning cheapest run",
			zap.Int("attempts", out.Attempts),
			zap.Float64("cost", out.Run.Cost))
	}
	return out, nil
}

// runPool calls run once per seed on an ants goroutine pool and returns the
// outcomes in seed order.
func runPool[T comparable](workers int, seeds []int64, run func(seed int64) runOutcome[T]) ([]runOutcome[T], error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, errors.Wrap(err, "kmodes: create run pool")
	}
	defer pool.Release()

	outcomes := make([]runOutcome[T], len(seeds))
	var wg sync.WaitGroup
	for i, seed := range seeds {
		i, seed := i, seed
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			outcomes[i] = run(seed)
		})
		if err != nil {
			wg.Done()
			outcomes[i].err = errors.Wrap(err, "kmodes: submit run")
		}
	}
	wg.Wait()
	return outcomes, nil
}

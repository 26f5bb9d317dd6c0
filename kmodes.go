package kmodes

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

const (
	defaultHardMaxIterations  = 100
	defaultFuzzyMaxIterations = 200
)

// Config controls k-modes clustering behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config[T comparable] struct {
	// K is the number of clusters. Must satisfy 1 < K < number of records.
	// Default: 2.
	K int

	// Init selects the centroid initialization strategy: InitHuang
	// (randomized, frequency based) or InitCao (deterministic, density
	// based). Default: InitHuang.
	Init InitMethod

	// Variant selects hard k-modes or fuzzy k-modes. Default: VariantHard.
	Variant Variant

	// CentroidType selects the centroid representation of the fuzzy
	// optimizer. CentroidFuzzy requires FuzzyCentroids to be set. Ignored by
	// the hard optimizer. Default: CentroidHard.
	CentroidType CentroidType

	// Alpha is the fuzziness coefficient of the fuzzy optimizer. Values close
	// to 1 approach hard clustering; larger values increase overlap between
	// clusters. Must be > 1. Ignored by the hard optimizer. Default: 1.5.
	Alpha float64

	// MaxIterations caps the number of optimizer iterations. Reaching it is
	// not an error. 0 selects 100 for the hard variant and 200 for the fuzzy
	// one. Default: 0.
	MaxIterations int

	// CostCheckInterval is how often, in iterations, the fuzzy optimizer
	// evaluates the cost to test convergence. Default: 10.
	CostCheckInterval int

	// Seed seeds the random source of Huang initialization when Rand is nil.
	// 0 means seed from the clock. Default: 0.
	Seed int64

	// Rand is the random source of Huang initialization. When set, Seed is
	// ignored. Not safe for concurrent use across runs.
	Rand *rand.Rand

	// Verbosity controls progress logging. Default: VerbositySilent.
	Verbosity Verbosity

	// Logger receives progress output. nil means no logging.
	Logger *zap.Logger

	// Metric is the dissimilarity between records and centroids.
	// Default: MatchingDissimilarity.
	Metric Dissimilarity[T]

	// FuzzyCentroids defines fuzzy centroids for CentroidFuzzy.
	FuzzyCentroids FuzzyCentroidModel[T]

	// Workers controls the number of goroutines for the read-only batch
	// stages (Cao initialization, the initial assignment, fuzzy membership
	// and centroid updates). 0 means runtime.NumCPU(). Results do not depend
	// on it. Default: 0.
	Workers int
}

// Result contains the output of k-modes clustering.
type Result[T comparable] struct {
	// Labels assigns each record to a cluster in [0, K). For fuzzy runs it is
	// the cluster with the largest membership (lowest index on ties).
	Labels []int

	// Centroids holds the final K hard centroids. nil for fuzzy runs with
	// CentroidFuzzy.
	Centroids [][]T

	// FuzzyCentroids holds the final centroids of fuzzy runs with
	// CentroidFuzzy; nil otherwise.
	FuzzyCentroids []FuzzyCentroid[T]

	// Membership is the K×N membership matrix. Hard runs hold exactly one 1
	// per column; fuzzy runs hold values in [0, 1] whose columns sum to 1.
	Membership *mat.Dense

	// Cost is the final clustering cost (see [Cost]).
	Cost float64

	// Iterations is the number of optimizer iterations performed.
	Iterations int

	// Converged reports whether the optimizer stopped on its own criterion
	// rather than on MaxIterations or cancellation.
	Converged bool

	// Interrupted reports that the context was cancelled mid-run; the result
	// is the state reached at that point.
	Interrupted bool

	// NumericalFallbacks counts fuzzy membership columns that had to fall
	// back to uniform membership over the tied nearest clusters.
	NumericalFallbacks int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig[T comparable]() Config[T] {
	return Config[T]{
		K:                 2,
		Init:              InitHuang,
		Variant:           VariantHard,
		CentroidType:      CentroidHard,
		Alpha:             1.5,
		CostCheckInterval: 10,
		Metric:            MatchingDissimilarity[T]{},
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults[T comparable](cfg *Config[T]) {
	if cfg.Init == "" {
		cfg.Init = InitHuang
	}
	if cfg.Variant == "" {
		cfg.Variant = VariantHard
	}
	if cfg.CentroidType == "" {
		cfg.CentroidType = CentroidHard
	}
	if cfg.MaxIterations == 0 {
		if cfg.Variant == VariantFuzzy {
			cfg.MaxIterations = defaultFuzzyMaxIterations
		} else {
			cfg.MaxIterations = defaultHardMaxIterations
		}
	}
	if cfg.CostCheckInterval == 0 {
		cfg.CostCheckInterval = 10
	}
	if cfg.Metric == nil {
		cfg.Metric = MatchingDissimilarity[T]{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Rand == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		cfg.Rand = rand.New(rand.NewSource(seed))
	}
}

// validateConfig checks every cfg field and returns all violations at once.
func validateConfig[T comparable](cfg *Config[T]) error {
	var errs error
	invalid := func(format string, args ...any) {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidConfig, format, args...))
	}

	if cfg.K < 2 {
		invalid("K must be >= 2, got %d", cfg.K)
	}
	if !cfg.Init.valid() {
		invalid("Init must be %q or %q, got %q", InitHuang, InitCao, cfg.Init)
	}
	if !cfg.Variant.valid() {
		invalid("Variant must be %q or %q, got %q", VariantHard, VariantFuzzy, cfg.Variant)
	}
	if !cfg.CentroidType.valid() {
		invalid("CentroidType must be %q or %q, got %q", CentroidHard, CentroidFuzzy, cfg.CentroidType)
	}
	if cfg.MaxIterations < 1 {
		invalid("MaxIterations must be >= 1, got %d", cfg.MaxIterations)
	}
	if !cfg.Verbosity.valid() {
		invalid("invalid Verbosity %s", cfg.Verbosity)
	}
	if cfg.Workers < 0 {
		invalid("Workers must be >= 0, got %d", cfg.Workers)
	}
	if cfg.Variant == VariantFuzzy {
		if !(cfg.Alpha > 1) || math.IsInf(cfg.Alpha, 1) {
			invalid("Alpha must be > 1 and finite, got %f", cfg.Alpha)
		}
		if cfg.CostCheckInterval < 1 {
			invalid("CostCheckInterval must be >= 1, got %d", cfg.CostCheckInterval)
		}
		if cfg.CentroidType == CentroidFuzzy && cfg.FuzzyCentroids == nil {
			errs = multierr.Append(errs, ErrFuzzyCentroidUnresolved)
		}
	}
	return errs
}

// validateData checks that data is a non-empty rectangular matrix with more
// records than clusters.
func validateData[T comparable](data [][]T, k int) error {
	if len(data) == 0 {
		return errors.Wrap(ErrInvalidData, "empty dataset")
	}
	attrs := len(data[0])
	if attrs == 0 {
		return errors.Wrap(ErrInvalidData, "records have no attributes")
	}
	for i, x := range data {
		if len(x) != attrs {
			return errors.Wrapf(ErrInvalidData, "record %d has %d attributes, want %d", i, len(x), attrs)
		}
	}
	if k >= len(data) {
		return errors.Wrapf(ErrInvalidConfig, "K must be < number of records, got K=%d with %d records", k, len(data))
	}
	return nil
}

// Cluster performs k-modes clustering on data. Each element is a record;
// all records must have the same number of attributes. Returns an error if
// the config or the data is invalid, or if initialization degenerates.
func Cluster[T comparable](data [][]T, cfg Config[T]) (*Result[T], error) {
	return ClusterContext(context.Background(), data, cfg)
}

// ClusterContext is like Cluster but stops early when ctx is done. A run
// interrupted after initialization returns the state reached so far with
// Result.Interrupted set and a nil error; cancellation during
// initialization returns ctx's error.
func ClusterContext[T comparable](ctx context.Context, data [][]T, cfg Config[T]) (*Result[T], error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if err := validateData(data, cfg.K); err != nil {
		return nil, err
	}

	initializer, err := newInitializer(&cfg)
	if err != nil {
		return nil, err
	}
	centroids, err := initializer.InitCentroids(ctx, data, cfg.K)
	if err != nil {
		return nil, err
	}
	if cfg.Verbosity >= VerbositySummary {
		cfg.Logger.Info("kmodes initialized",
			zap.String("init", string(cfg.Init)),
			zap.String("variant", string(cfg.Variant)),
			zap.Int("records", len(data)),
			zap.Int("attributes", len(data[0])),
			zap.Int("k", cfg.K))
	}

	var res *Result[T]
	switch cfg.Variant {
	case VariantHard:
		res, err = runHard(ctx, data, centroids, &cfg)
	case VariantFuzzy:
		res, err = runFuzzy(ctx, data, centroids, &cfg)
	default:
		err = errors.Wrapf(ErrInvalidConfig, "unknown Variant %q", cfg.Variant)
	}
	if err != nil {
		return nil, err
	}
	if err := checkFinite(res); err != nil {
		return nil, err
	}

	if cfg.Verbosity >= VerbositySummary {
		cfg.Logger.Info("kmodes finished",
			zap.Int("iterations", res.Iterations),
			zap.Bool("converged", res.Converged),
			zap.Bool("interrupted", res.Interrupted),
			zap.Float64("cost", res.Cost))
	}
	return res, nil
}

// checkFinite rejects results containing NaN or Inf.
func checkFinite[T comparable](res *Result[T]) error {
	if math.IsNaN(res.Cost) || math.IsInf(res.Cost, 0) {
		return errors.Wrapf(ErrNumerical, "cost is %f", res.Cost)
	}
	for _, v := range res.Membership.RawMatrix().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrap(ErrNumerical, "membership matrix")
		}
	}
	return nil
}

// Predict assigns each record to its nearest centroid, lowest index on
// ties. A nil metric means MatchingDissimilarity.
func Predict[T comparable](data [][]T, centroids [][]T, metric Dissimilarity[T]) ([]int, error) {
	if len(centroids) == 0 {
		return nil, errors.Wrap(ErrInvalidData, "no centroids")
	}
	if metric == nil {
		metric = MatchingDissimilarity[T]{}
	}
	attrs := len(centroids[0])
	for c, cent := range centroids {
		if len(cent) != attrs {
			return nil, errors.Wrapf(ErrInvalidData, "centroid %d has %d attributes, want %d", c, len(cent), attrs)
		}
	}

	labels := make([]int, len(data))
	dist := make([]float64, len(centroids))
	for i, x := range data {
		if len(x) != attrs {
			return nil, errors.Wrapf(ErrInvalidData, "record %d has %d attributes, want %d", i, len(x), attrs)
		}
		dist = Dissimilarities(metric, centroids, x, dist)
		labels[i] = nearest(dist)
	}
	return labels, nil
}

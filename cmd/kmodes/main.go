// Command kmodes clusters the records of a categorical CSV file.
//
//	kmodes --k 4 --init cao --label-column 35 soybean.csv
//
// Every cell is treated as an opaque categorical value. With --label-column
// the named column is held out of clustering and a class × cluster table is
// printed instead of per-record assignments.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/TrevorS/kmodes"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configPath    string
	k             int
	init          string
	variant       string
	centroidType  string
	alpha         float64
	maxIterations int
	costInterval  int
	seed          int64
	verbose       int
	header        bool
	labelColumn   int
	dropConstant  bool
	multiRun      bool
	preRuns       int
	goodPctl      float64
	maxAttempts   int
}

func newRootCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "kmodes [flags] <csv-file>",
		Short:        "Cluster categorical CSV records with k-modes",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "TOML file with clustering settings; flags override it")
	f.IntVarP(&opts.k, "k", "k", 2, "number of clusters")
	f.StringVar(&opts.init, "init", string(kmodes.InitHuang), "initialization: huang or cao")
	f.StringVar(&opts.variant, "variant", string(kmodes.VariantHard), "optimizer: hard or fuzzy")
	f.StringVar(&opts.centroidType, "centroid-type", string(kmodes.CentroidHard), "fuzzy centroid type: hard or fuzzy")
	f.Float64Var(&opts.alpha, "alpha", 1.5, "fuzziness coefficient (> 1)")
	f.IntVar(&opts.maxIterations, "max-iter", 0, "iteration cap (0: 100 hard, 200 fuzzy)")
	f.IntVar(&opts.costInterval, "cost-interval", 10, "fuzzy cost check interval")
	f.Int64Var(&opts.seed, "seed", 0, "random seed for huang initialization (0: from clock)")
	f.CountVarP(&opts.verbose, "verbose", "v", "log per-iteration summaries (-v) or every move (-vv)")
	f.BoolVar(&opts.header, "header", false, "skip the first CSV row")
	f.IntVar(&opts.labelColumn, "label-column", -1, "0-based column holding known classes (-1: none)")
	f.BoolVar(&opts.dropConstant, "drop-constant", false, "drop attributes that hold a single value")
	f.BoolVar(&opts.multiRun, "multi-run", false, "select a good run among repeated runs")
	f.IntVar(&opts.preRuns, "pre-runs", 10, "reference runs for --multi-run")
	f.Float64Var(&opts.goodPctl, "good-pctl", 20, "cost percentile a run must reach for --multi-run")
	f.IntVar(&opts.maxAttempts, "max-attempts", 0, "cap on --multi-run attempts (0: unbounded)")
	return cmd
}

func run(cmd *cobra.Command, path string, opts *options) error {
	cfg := kmodes.DefaultConfig[string]()
	mcfg := kmodes.DefaultMultiRunConfig()
	multiRun := opts.multiRun
	if opts.configPath != "" {
		fc, err := loadFileConfig(opts.configPath)
		if err != nil {
			return err
		}
		fc.apply(&cfg, &mcfg)
		multiRun = multiRun || fc.MultiRun.Enabled
	}
	opts.apply(cmd, &cfg, &mcfg)

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	cfg.Logger = logger
	cfg.Verbosity = kmodes.Verbosity(min(opts.verbose, int(kmodes.VerbosityMoves)))

	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer file.Close()
	ds, err := loadCSV(file, opts.header, opts.labelColumn)
	if err != nil {
		return err
	}
	if opts.dropConstant {
		dropped := ds.dropConstantColumns()
		logger.Info("dropped constant attributes", zap.Ints("columns", dropped))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var res *kmodes.Result[string]
	if multiRun {
		sel, err := kmodes.SelectRun(ctx, ds.records, cfg, mcfg)
		if err != nil {
			return err
		}
		res = sel.Result
		logger.Info("multi-run selection",
			zap.Float64("threshold", sel.Threshold),
			zap.Int("attempts", sel.Attempts),
			zap.Bool("accepted", sel.Accepted),
			zap.Bool("skipped", sel.Skipped))
	} else {
		res, err = kmodes.ClusterContext(ctx, ds.records, cfg)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if ds.classes != nil {
		writeContingency(out, ds.classes, res.Labels, cfg.K)
	} else {
		writeAssignments(out, res.Labels)
	}
	fmt.Fprintf(out, "cost: %g (iterations: %d, converged: %t)\n", res.Cost, res.Iterations, res.Converged)
	return nil
}

// apply copies the flags the user set explicitly onto the configs.
func (o *options) apply(cmd *cobra.Command, cfg *kmodes.Config[string], mcfg *kmodes.MultiRunConfig) {
	changed := cmd.Flags().Changed
	if changed("k") {
		cfg.K = o.k
	}
	if changed("init") {
		cfg.Init = kmodes.InitMethod(o.init)
	}
	if changed("variant") {
		cfg.Variant = kmodes.Variant(o.variant)
	}
	if changed("centroid-type") {
		cfg.CentroidType = kmodes.CentroidType(o.centroidType)
	}
	if changed("alpha") {
		cfg.Alpha = o.alpha
	}
	if changed("max-iter") {
		cfg.MaxIterations = o.maxIterations
	}
	if changed("cost-interval") {
		cfg.CostCheckInterval = o.costInterval
	}
	if changed("seed") {
		cfg.Seed = o.seed
	}
	if changed("pre-runs") {
		mcfg.PreRuns = o.preRuns
	}
	if changed("good-pctl") {
		mcfg.GoodPercentile = o.goodPctl
	}
	if changed("max-attempts") {
		mcfg.MaxAttempts = o.maxAttempts
	}
}

func newLogger(verbose int) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	switch {
	case verbose >= 2:
		level = zapcore.DebugLevel
	case verbose == 1:
		level = zapcore.InfoLevel
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

package main

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/TrevorS/kmodes"
)

// fileConfig is the TOML settings file. Zero values leave the defaults in
// place.
//
//	k = 4
//	init = "cao"
//	variant = "fuzzy"
//	alpha = 1.1
//
//	[multi_run]
//	enabled = true
//	pre_runs = 10
//	good_percentile = 20
type fileConfig struct {
	K                 int     `toml:"k"`
	Init              string  `toml:"init"`
	Variant           string  `toml:"variant"`
	CentroidType      string  `toml:"centroid_type"`
	Alpha             float64 `toml:"alpha"`
	MaxIterations     int     `toml:"max_iterations"`
	CostCheckInterval int     `toml:"cost_check_interval"`
	Seed              int64   `toml:"seed"`

	MultiRun struct {
		Enabled        bool    `toml:"enabled"`
		PreRuns        int     `toml:"pre_runs"`
		GoodPercentile float64 `toml:"good_percentile"`
		MaxAttempts    int     `toml:"max_attempts"`
	} `toml:"multi_run"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fc, errors.Wrapf(err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fc, errors.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return fc, nil
}

func (fc fileConfig) apply(cfg *kmodes.Config[string], mcfg *kmodes.MultiRunConfig) {
	if fc.K != 0 {
		cfg.K = fc.K
	}
	if fc.Init != "" {
		cfg.Init = kmodes.InitMethod(fc.Init)
	}
	if fc.Variant != "" {
		cfg.Variant = kmodes.Variant(fc.Variant)
	}
	if fc.CentroidType != "" {
		cfg.CentroidType = kmodes.CentroidType(fc.CentroidType)
	}
	if fc.Alpha != 0 {
		cfg.Alpha = fc.Alpha
	}
	if fc.MaxIterations != 0 {
		cfg.MaxIterations = fc.MaxIterations
	}
	if fc.CostCheckInterval != 0 {
		cfg.CostCheckInterval = fc.CostCheckInterval
	}
	if fc.Seed != 0 {
		cfg.Seed = fc.Seed
	}
	if fc.MultiRun.PreRuns != 0 {
		mcfg.PreRuns = fc.MultiRun.PreRuns
	}
	if fc.MultiRun.GoodPercentile != 0 {
		mcfg.GoodPercentile = fc.MultiRun.GoodPercentile
	}
	if fc.MultiRun.MaxAttempts != 0 {
		mcfg.MaxAttempts = fc.MultiRun.MaxAttempts
	}
}

// Package kmodes implements k-modes clustering for categorical data.
//
// k-modes replaces the means of k-means with modes: a centroid holds, per
// attribute, the most frequent value among its members, and records are
// compared with a categorical dissimilarity (by default the number of
// attributes on which they differ). Records may hold any comparable value.
//
// Basic usage:
//
//	cfg := kmodes.DefaultConfig[string]()
//	cfg.K = 4
//	cfg.Init = kmodes.InitCao
//	result, err := kmodes.Cluster(records, cfg)
//	// result.Labels[i] is the cluster of record i
//	// result.Centroids[c] is the mode centroid of cluster c
//	// result.Cost is the summed dissimilarity to the assigned centroids
//
// # Initialization
//
// InitHuang samples attribute values by frequency and snaps each sample to
// the nearest distinct record; it is randomized, so set Config.Seed or
// Config.Rand for reproducible runs. InitCao picks dense, mutually distant
// records and is deterministic.
//
// # Fuzzy k-modes
//
// Set Config.Variant to VariantFuzzy for soft memberships:
//
//	cfg.Variant = kmodes.VariantFuzzy
//	cfg.Alpha = 1.5
//	result, err := kmodes.Cluster(records, cfg)
//	// result.Membership.At(c, i) is the membership of record i in cluster c
//
// Centroids are fuzziness-weighted modes. Fuzzy centroids (weighted value
// distributions) are available through a caller-supplied
// FuzzyCentroidModel.
//
// # Multiple runs
//
// Randomized initialization can land in a poor local optimum. SelectRun
// makes a number of reference runs and then returns the first run whose
// cost reaches a chosen percentile of the reference costs.
package kmodes

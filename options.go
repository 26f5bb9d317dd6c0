package kmodes

import "fmt"

// InitMethod selects how the starting centroids are chosen.
type InitMethod string

const (
	// InitHuang samples every attribute by observed frequency and then snaps
	// each synthesized centroid to the nearest distinct record. Randomized;
	// reproducible with a fixed Config.Seed or Config.Rand.
	InitHuang InitMethod = "huang"

	// InitCao picks records with a density-weighted farthest-point search.
	// Deterministic.
	InitCao InitMethod = "cao"
)

// Variant selects the optimizer.
type Variant string

const (
	VariantHard  Variant = "hard"
	VariantFuzzy Variant = "fuzzy"
)

// CentroidType selects the centroid representation used by the fuzzy
// optimizer. The hard optimizer always uses hard (mode) centroids.
type CentroidType string

const (
	// CentroidHard keeps one categorical value per attribute, chosen as the
	// fuzziness-weighted mode.
	CentroidHard CentroidType = "hard"

	// CentroidFuzzy keeps a weighted distribution over observed values per
	// attribute. The weighting scheme is supplied by a FuzzyCentroidModel.
	CentroidFuzzy CentroidType = "fuzzy"
)

// Verbosity controls how much progress the optimizers log.
type Verbosity int

const (
	// VerbositySilent logs nothing.
	VerbositySilent Verbosity = iota
	// VerbositySummary logs one line per iteration.
	VerbositySummary
	// VerbosityMoves additionally logs every point that changes cluster.
	VerbosityMoves
)

func (v Verbosity) String() string {
	switch v {
	case VerbositySilent:
		return "silent"
	case VerbositySummary:
		return "summary"
	case VerbosityMoves:
		return "moves"
	default:
		return fmt.Sprintf("Verbosity(%d)", int(v))
	}
}

func (m InitMethod) valid() bool {
	switch m {
	case InitHuang, InitCao:
		return true
	default:
		return false
	}
}

func (v Variant) valid() bool {
	switch v {
	case VariantHard, VariantFuzzy:
		return true
	default:
		return false
	}
}

func (c CentroidType) valid() bool {
	switch c {
	case CentroidHard, CentroidFuzzy:
		return true
	default:
		return false
	}
}

func (v Verbosity) valid() bool {
	return v >= VerbositySilent && v <= VerbosityMoves
}

package kmodes

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig is returned when a Config field is out of range.
	ErrInvalidConfig = errors.New("kmodes: invalid config")

	// ErrInvalidData is returned for empty, zero-width or ragged input.
	ErrInvalidData = errors.New("kmodes: invalid data")

	// ErrDegenerateInit is returned when an initializer cannot produce k
	// distinct centroids, e.g. because the data holds fewer than k distinct
	// records.
	ErrDegenerateInit = errors.New("kmodes: degenerate initialization")

	// ErrFuzzyCentroidUnresolved is returned when the fuzzy optimizer is asked
	// for fuzzy centroids without a FuzzyCentroidModel to define them.
	ErrFuzzyCentroidUnresolved = errors.New("kmodes: fuzzy centroids require a FuzzyCentroidModel")

	// ErrNumerical is returned if a result would contain NaN or Inf.
	ErrNumerical = errors.New("kmodes: non-finite value in result")
)

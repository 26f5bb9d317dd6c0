package kmodes

import (
	"fmt"
	"math/rand"
)

// scenarioData is a 6-record, 3-attribute binary dataset whose first
// attribute splits it into {p0, p1, p4} and {p2, p3, p5}.
func scenarioData() [][]string {
	return [][]string{
		{"A", "A", "A"},
		{"A", "A", "B"},
		{"B", "B", "A"},
		{"B", "B", "B"},
		{"A", "B", "A"},
		{"B", "A", "B"},
	}
}

// generateClustered builds n records around len(prototypes) prototypes.
// Each attribute is replaced by a random value from "v0".."v{levels-1}"
// with probability noise.
func generateClustered(rng *rand.Rand, n int, prototypes [][]string, levels int, noise float64) [][]string {
	data := make([][]string, n)
	for i := range data {
		proto := prototypes[i%len(prototypes)]
		rec := make([]string, len(proto))
		for a := range rec {
			if rng.Float64() < noise {
				rec[a] = fmt.Sprintf("v%d", rng.Intn(levels))
			} else {
				rec[a] = proto[a]
			}
		}
		data[i] = rec
	}
	return data
}

func threePrototypes() [][]string {
	return [][]string{
		{"x", "x", "x", "x", "x", "x"},
		{"y", "y", "y", "y", "y", "y"},
		{"z", "z", "z", "z", "z", "z"},
	}
}

// sameRows reports whether a and b hold the same rows in the same order.
func sameRows[T comparable](a, b [][]T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

package kmodes

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDensities(t *testing.T) {
	dens, err := densities(context.Background(), scenarioData(), 1)
	require.NoError(t, err)
	for i, d := range dens {
		assert.InDeltaf(t, 0.5, d, 1e-12, "density of record %d", i)
	}

	data := [][]string{{"a", "x"}, {"a", "y"}, {"a", "x"}, {"b", "x"}}
	dens, err = densities(context.Background(), data, 3)
	require.NoError(t, err)
	// Record 0: a occurs 3/4, x occurs 3/4.
	assert.InDelta(t, 0.75, dens[0], 1e-12)
	// Record 1: a 3/4, y 1/4.
	assert.InDelta(t, 0.5, dens[1], 1e-12)
	// Record 3: b 1/4, x 3/4.
	assert.InDelta(t, 0.5, dens[3], 1e-12)
}

func TestDensitiesEmpty(t *testing.T) {
	dens, err := densities[string](context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Empty(t, dens)
}

func TestCaoInitScenario(t *testing.T) {
	ci := CaoInitializer[string]{Metric: MatchingDissimilarity[string]{}, Workers: 2}
	cents, err := ci.InitCentroids(context.Background(), scenarioData(), 2)
	require.NoError(t, err)
	// All densities tie, so the first record is the densest; BBB is
	// farthest from it.
	assert.Equal(t, [][]string{{"A", "A", "A"}, {"B", "B", "B"}}, cents)
}

func TestCaoInitDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	data := generateClustered(rng, 150, threePrototypes(), 5, 0.3)

	var first [][]string
	for _, workers := range []int{1, 1, 4} {
		ci := CaoInitializer[string]{Metric: MatchingDissimilarity[string]{}, Workers: workers}
		cents, err := ci.InitCentroids(context.Background(), data, 4)
		require.NoError(t, err)
		if first == nil {
			first = cents
			continue
		}
		require.Equal(t, first, cents)
	}
	assertDistinctDataRows(t, data, first)
}

func TestCaoInitReturnsCopies(t *testing.T) {
	data := scenarioData()
	ci := CaoInitializer[string]{Metric: MatchingDissimilarity[string]{}, Workers: 1}
	cents, err := ci.InitCentroids(context.Background(), data, 2)
	require.NoError(t, err)
	cents[0][0] = "mutated"
	assert.Equal(t, "A", data[0][0])
}

func TestHuangInitSeedReproducible(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	data := generateClustered(rng, 100, threePrototypes(), 4, 0.3)

	initWith := func(seed int64) [][]string {
		h := HuangInitializer[string]{Metric: MatchingDissimilarity[string]{}, Rand: rand.New(rand.NewSource(seed))}
		cents, err := h.InitCentroids(context.Background(), data, 3)
		require.NoError(t, err)
		return cents
	}

	a, b := initWith(99), initWith(99)
	require.Equal(t, a, b)
	assertDistinctDataRows(t, data, a)
}

func TestHuangInitSkipsDuplicates(t *testing.T) {
	// Only two distinct records exist; every synthesized centroid is
	// snapped to one of them, and the second must differ from the first.
	data := [][]string{
		{"a", "a"}, {"a", "a"}, {"a", "a"}, {"a", "a"}, {"b", "b"},
	}
	for seed := int64(1); seed <= 20; seed++ {
		h := HuangInitializer[string]{Metric: MatchingDissimilarity[string]{}, Rand: rand.New(rand.NewSource(seed))}
		cents, err := h.InitCentroids(context.Background(), data, 2)
		require.NoError(t, err)
		assertDistinctDataRows(t, data, cents)
	}
}

func TestInitDegenerate(t *testing.T) {
	data := [][]string{{"a", "b"}, {"a", "b"}, {"a", "b"}, {"a", "b"}}
	inits := map[string]Initializer[string]{
		"huang": HuangInitializer[string]{Metric: MatchingDissimilarity[string]{}, Rand: rand.New(rand.NewSource(1))},
		"cao":   CaoInitializer[string]{Metric: MatchingDissimilarity[string]{}, Workers: 1},
	}
	for name, in := range inits {
		t.Run(name, func(t *testing.T) {
			_, err := in.InitCentroids(context.Background(), data, 2)
			require.ErrorIs(t, err, ErrDegenerateInit)
		})
	}
}

func TestColumnMultiset(t *testing.T) {
	data := [][]string{{"b"}, {"a"}, {"b"}, {"c"}, {"a"}, {"b"}}
	assert.Equal(t, []string{"b", "b", "b", "a", "a", "c"}, columnMultiset(data, 0))
}

func TestNewInitializer(t *testing.T) {
	cfg := DefaultConfig[string]()
	applyDefaults(&cfg)

	cfg.Init = InitHuang
	in, err := newInitializer(&cfg)
	require.NoError(t, err)
	assert.IsType(t, HuangInitializer[string]{}, in)

	cfg.Init = InitCao
	in, err = newInitializer(&cfg)
	require.NoError(t, err)
	assert.IsType(t, CaoInitializer[string]{}, in)

	cfg.Init = "random"
	_, err = newInitializer(&cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

// assertDistinctDataRows checks that the centroids are pairwise distinct
// and that each one is a record of data.
func assertDistinctDataRows(t *testing.T, data, cents [][]string) {
	t.Helper()
	for i := range cents {
		require.Truef(t, containsRow(data, cents[i]), "centroid %d %v is not a record", i, cents[i])
		require.Falsef(t, containsRow(cents[:i], cents[i]), "centroid %d %v duplicates an earlier one", i, cents[i])
	}
}

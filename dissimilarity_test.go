package kmodes

import "testing"

func TestMatchingDissimilarity(t *testing.T) {
	m := MatchingDissimilarity[string]{}
	tests := []struct {
		a, b []string
		want float64
	}{
		{[]string{"A", "A", "A"}, []string{"A", "A", "A"}, 0},
		{[]string{"A", "A", "A"}, []string{"A", "A", "B"}, 1},
		{[]string{"A", "A", "A"}, []string{"B", "B", "B"}, 3},
		{[]string{}, []string{}, 0},
	}
	for _, tt := range tests {
		if got := m.Dissimilarity(tt.a, tt.b); got != tt.want {
			t.Errorf("Dissimilarity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := m.Dissimilarity(tt.b, tt.a); got != tt.want {
			t.Errorf("Dissimilarity is not symmetric for %v, %v", tt.a, tt.b)
		}
	}
}

func TestMatchingDissimilarityInts(t *testing.T) {
	m := MatchingDissimilarity[int]{}
	if got := m.Dissimilarity([]int{1, 2, 3, 4}, []int{1, 0, 3, 0}); got != 2 {
		t.Errorf("got %v, want 2", got)
	}
}

func TestDissimilarityFunc(t *testing.T) {
	called := false
	f := DissimilarityFunc[string](func(a, b []string) float64 {
		called = true
		return 42
	})
	if got := f.Dissimilarity(nil, nil); got != 42 || !called {
		t.Errorf("DissimilarityFunc: got %v (called=%t), want 42", got, called)
	}
}

func TestDissimilarities(t *testing.T) {
	centroids := [][]string{{"A", "A", "A"}, {"B", "B", "B"}, {"A", "B", "A"}}
	x := []string{"A", "A", "B"}

	got := Dissimilarities[string](MatchingDissimilarity[string]{}, centroids, x, nil)
	want := []float64{1, 2, 2}
	if len(got) != len(want) {
		t.Fatalf("length: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("d[%d]: got %v, want %v", i, got[i], want[i])
		}
	}

	// A large enough dst is reused.
	dst := make([]float64, 8)
	got = Dissimilarities[string](MatchingDissimilarity[string]{}, centroids, x, dst)
	if &got[0] != &dst[0] || len(got) != 3 {
		t.Error("expected dst to be reused and resliced")
	}
}

func TestNearestTieBreak(t *testing.T) {
	tests := []struct {
		d    []float64
		want int
	}{
		{[]float64{3, 1, 2}, 1},
		{[]float64{2, 2, 2}, 0},
		{[]float64{5, 1, 1}, 1},
		{[]float64{7}, 0},
	}
	for _, tt := range tests {
		if got := nearest(tt.d); got != tt.want {
			t.Errorf("nearest(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}

package kmodes

import "fmt"

// tally is a multiset of the values one attribute takes inside one cluster.
// Values keep the order in which they were first seen; that order breaks
// ties when picking the mode. A value whose count drops to zero stays in
// the order.
type tally[T comparable] struct {
	order  []T
	counts map[T]int
}

func (t *tally[T]) add(v T) {
	if t.counts == nil {
		t.counts = make(map[T]int)
	}
	if _, ok := t.counts[v]; !ok {
		t.order = append(t.order, v)
	}
	t.counts[v]++
}

func (t *tally[T]) remove(v T) {
	n := t.counts[v]
	if n <= 0 {
		panic(fmt.Sprintf("kmodes: ledger count for %v would go negative", v))
	}
	t.counts[v] = n - 1
}

// mode returns the most frequent value. ok is false if no value was ever
// recorded.
func (t *tally[T]) mode() (v T, ok bool) {
	if len(t.order) == 0 {
		return v, false
	}
	best := t.order[0]
	bestN := t.counts[best]
	for _, cand := range t.order[1:] {
		if n := t.counts[cand]; n > bestN {
			best, bestN = cand, n
		}
	}
	return best, true
}

// ledger tracks, for every (cluster, attribute) pair, how many current
// members hold each value. It is owned by a single optimizer run and lets
// mode centroids be refreshed after a move without rescanning members.
type ledger[T comparable] struct {
	tallies [][]tally[T] // [cluster][attribute]
	sizes   []int
}

func newLedger[T comparable](k, attrs int) *ledger[T] {
	l := &ledger[T]{
		tallies: make([][]tally[T], k),
		sizes:   make([]int, k),
	}
	for c := range l.tallies {
		l.tallies[c] = make([]tally[T], attrs)
	}
	return l
}

func (l *ledger[T]) add(c int, x []T) {
	for a, v := range x {
		l.tallies[c][a].add(v)
	}
	l.sizes[c]++
}

func (l *ledger[T]) remove(c int, x []T) {
	for a, v := range x {
		l.tallies[c][a].remove(v)
	}
	l.sizes[c]--
}

// move transfers record x from cluster from to cluster to.
func (l *ledger[T]) move(from, to int, x []T) {
	l.remove(from, x)
	l.add(to, x)
}

func (l *ledger[T]) size(c int) int { return l.sizes[c] }

func (l *ledger[T]) count(c, attr int, v T) int { return l.tallies[c][attr].counts[v] }

func (l *ledger[T]) mode(c, attr int) (T, bool) { return l.tallies[c][attr].mode() }

// refresh overwrites centroid with the per-attribute modes of cluster c.
// Attributes the cluster never held keep their current value.
func (l *ledger[T]) refresh(c int, centroid []T) {
	for a := range centroid {
		if v, ok := l.mode(c, a); ok {
			centroid[a] = v
		}
	}
}

// internal/models/freq.go
package models

import "sort"

// FreqTable counts string occurrences while remembering first-seen order so
// that top-N selection is deterministic: ties break by first-seen position,
// never by map iteration order.
type FreqTable struct {
	counts map[string]int
	order  map[string]int
	next   int
}

func NewFreqTable() *FreqTable {
	return &FreqTable{
		counts: make(map[string]int),
		order:  make(map[string]int),
	}
}

func (t *FreqTable) Add(key string) {
	if key == "" {
		return
	}
	if _, seen := t.counts[key]; !seen {
		t.order[key] = t.next
		t.next++
	}
	t.counts[key]++
}

func (t *FreqTable) Len() int {
	return len(t.counts)
}

// Ranked returns all keys ordered by descending count, first-seen order on
// ties.
func (t *FreqTable) Ranked() []string {
	keys := make([]string, 0, len(t.counts))
	for k := range t.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := t.counts[keys[i]], t.counts[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return t.order[keys[i]] < t.order[keys[j]]
	})
	return keys
}

// Top returns up to n highest-frequency keys.
func (t *FreqTable) Top(n int) []string {
	ranked := t.Ranked()
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Slice returns keys from rank position from (inclusive) to to (exclusive).
func (t *FreqTable) Slice(from, to int) []string {
	ranked := t.Ranked()
	if from >= len(ranked) {
		return []string{}
	}
	if to > len(ranked) {
		to = len(ranked)
	}
	return ranked[from:to]
}

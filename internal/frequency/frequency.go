// Package frequency holds the corpus-wide token counts consulted by the
// context-insensitive detector. A Table is built once and never mutated.
package frequency

import (
	"sort"

	"github.com/Broconuts/TransSpell/internal/textnorm"
)

// Table maps a normalized surface form to its number of occurrences in the
// corpus. Missing entries count as zero.
type Table struct {
	counts    map[string]int
	normalize textnorm.Normalizer
}

// Entry is one row of a Table snapshot.
type Entry struct {
	Word  string
	Count int
}

// Build counts every token of every sentence. Tokens are passed through
// normalize first; a nil normalizer counts exact surface forms.
func Build(sentences [][]string, normalize textnorm.Normalizer) *Table {
	counts := make(map[string]int)
	for _, sent := range sentences {
		for _, tok := range sent {
			key := textnorm.Apply(normalize, tok)
			if key == "" {
				continue
			}
			counts[key]++
		}
	}
	return &Table{counts: counts, normalize: normalize}
}

// FromCounts restores a table from previously computed counts. Keys are
// expected to be normalized already; non-positive counts are dropped.
func FromCounts(counts map[string]int, normalize textnorm.Normalizer) *Table {
	c := make(map[string]int, len(counts))
	for w, n := range counts {
		if n > 0 {
			c[w] = n
		}
	}
	return &Table{counts: c, normalize: normalize}
}

// Empty returns a table in which every count is zero.
func Empty() *Table {
	return &Table{counts: map[string]int{}}
}

// Count reports how often surface occurred in the corpus.
func (t *Table) Count(surface string) int {
	if t == nil {
		return 0
	}
	return t.counts[textnorm.Apply(t.normalize, surface)]
}

// Normalizer returns the function applied to surfaces before lookup. It is
// nil for a table of exact forms.
func (t *Table) Normalizer() textnorm.Normalizer {
	if t == nil {
		return nil
	}
	return t.normalize
}

// Len is the number of distinct keys.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.counts)
}

// Entries returns the table sorted by descending count, then by word.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, 0, len(t.counts))
	for w, n := range t.counts {
		out = append(out, Entry{Word: w, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Word < out[j].Word
		}
		return out[i].Count > out[j].Count
	})
	return out
}

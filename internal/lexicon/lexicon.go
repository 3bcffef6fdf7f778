// Package lexicon answers whether a surface form is a valid word in any of a
// fixed set of dialect wordlists. An Index is read-only once constructed and
// safe for concurrent use.
package lexicon

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/Broconuts/TransSpell/internal/textnorm"
)

// Dialect is one named wordlist, e.g. "en_US" or "en_GB".
type Dialect struct {
	name      string
	words     mapset.Set[string]
	normalize textnorm.Normalizer
}

// NewDialect builds a dialect from words. Each word is stored under
// normalize(word); empty keys are skipped.
func NewDialect(name string, words []string, normalize textnorm.Normalizer) *Dialect {
	set := mapset.NewThreadUnsafeSetWithSize[string](len(words))
	for _, w := range words {
		if k := textnorm.Apply(normalize, w); k != "" {
			set.Add(k)
		}
	}
	return &Dialect{name: name, words: set, normalize: normalize}
}

// Name of the dialect.
func (d *Dialect) Name() string { return d.name }

// Normalizer returns the function applied to surfaces before lookup.
func (d *Dialect) Normalizer() textnorm.Normalizer { return d.normalize }

// Len is the number of distinct entries.
func (d *Dialect) Len() int { return d.words.Cardinality() }

// Contains reports whether surface is in this dialect.
func (d *Dialect) Contains(surface string) bool {
	k := textnorm.Apply(d.normalize, surface)
	if k == "" {
		return false
	}
	return d.words.Contains(k)
}

// Index is the union of several dialects.
type Index struct {
	dialects []*Dialect
}

// New returns an index over the given dialects. Nil dialects are ignored.
func New(dialects ...*Dialect) *Index {
	idx := &Index{}
	for _, d := range dialects {
		if d != nil {
			idx.dialects = append(idx.dialects, d)
		}
	}
	return idx
}

// Contains reports membership in any configured dialect.
func (x *Index) Contains(surface string) bool {
	if x == nil {
		return false
	}
	for _, d := range x.dialects {
		if d.Contains(surface) {
			return true
		}
	}
	return false
}

// Normalizer returns the first non-nil normalizer among the dialects.
func (x *Index) Normalizer() textnorm.Normalizer {
	if x == nil {
		return nil
	}
	for _, d := range x.dialects {
		if d.normalize != nil {
			return d.normalize
		}
	}
	return nil
}

// Dialects lists the dialect names in configuration order.
func (x *Index) Dialects() []string {
	names := make([]string, len(x.dialects))
	for i, d := range x.dialects {
		names[i] = d.name
	}
	return names
}

// Size sums the entries of every dialect; words present in more than one
// dialect are counted once per dialect.
func (x *Index) Size() int {
	n := 0
	for _, d := range x.dialects {
		n += d.Len()
	}
	return n
}

// With returns a new index that has d appended, or replaces the dialect of
// the same name.
func (x *Index) With(d *Dialect) *Index {
	if x == nil {
		return New(d)
	}
	out := &Index{}
	replaced := false
	for _, cur := range x.dialects {
		if cur.name == d.name {
			out.dialects = append(out.dialects, d)
			replaced = true
			continue
		}
		out.dialects = append(out.dialects, cur)
	}
	if !replaced {
		out.dialects = append(out.dialects, d)
	}
	return out
}

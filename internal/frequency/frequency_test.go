package frequency

import (
	"reflect"
	"testing"

	"github.com/Broconuts/TransSpell/internal/textnorm"
)

var corpus = [][]string{
	{"The", "cat", "sat."},
	{"the", "cat", "ran"},
	{"A", "dog", "ran,"},
}

func TestBuildCountsNormalizedTokens(t *testing.T) {
	tbl := Build(corpus, textnorm.Clean)
	cases := map[string]int{
		"the":   2,
		"The":   2,
		"cat":   2,
		"ran":   2,
		"ran!":  2,
		"sat":   1,
		"dog":   1,
		"zebra": 0,
	}
	for w, want := range cases {
		if got := tbl.Count(w); got != want {
			t.Errorf("Count(%q) = %d; want %d", w, got, want)
		}
	}
}

func TestBuildExactForms(t *testing.T) {
	tbl := Build(corpus, nil)
	if got := tbl.Count("The"); got != 1 {
		t.Fatalf("Count(The) = %d; want 1", got)
	}
	if got := tbl.Count("sat"); got != 0 {
		t.Fatalf("Count(sat) = %d; want 0 without normalization", got)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	a := Build(corpus, textnorm.Clean)
	b := Build(corpus, textnorm.Clean)
	if !reflect.DeepEqual(a.Entries(), b.Entries()) {
		t.Fatalf("two builds differ:\n%v\n%v", a.Entries(), b.Entries())
	}
}

func TestFromCountsRoundTrip(t *testing.T) {
	a := Build(corpus, textnorm.Clean)
	counts := map[string]int{}
	for _, e := range a.Entries() {
		counts[e.Word] = e.Count
	}
	counts["ghost"] = 0
	b := FromCounts(counts, textnorm.Clean)
	if a.Len() != b.Len() {
		t.Fatalf("Len = %d; want %d", b.Len(), a.Len())
	}
	if got := b.Count("Cat"); got != 2 {
		t.Fatalf("Count(Cat) = %d; want 2", got)
	}
}

func TestNilTable(t *testing.T) {
	var tbl *Table
	if tbl.Count("x") != 0 || tbl.Len() != 0 || tbl.Entries() != nil || tbl.Normalizer() != nil {
		t.Fatal("nil table should behave as empty")
	}
}

func TestNormalizer(t *testing.T) {
	if Empty().Normalizer() != nil {
		t.Fatal("Empty() should count exact forms")
	}
	n := Build(nil, textnorm.Clean).Normalizer()
	if n == nil || n("Cat,") != "cat" {
		t.Fatal("Build should expose its normalizer")
	}
}

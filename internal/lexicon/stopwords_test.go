package lexicon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStopwordsEnglish(t *testing.T) {
	words, err := LoadStopwords(" english ")
	if err != nil {
		t.Fatalf("LoadStopwords: %v", err)
	}
	if len(words) != 179 {
		t.Fatalf("expected 179 English stop words, got %d", len(words))
	}
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	for _, w := range []string{"the", "that", "don't", "wouldn't", "i"} {
		if !set[w] {
			t.Errorf("expected %q in the English list", w)
		}
	}
	if set["# NLTK English stop words"] {
		t.Error("comment line leaked into the list")
	}
}

func TestLoadStopwordsFileAndEmpty(t *testing.T) {
	words, err := LoadStopwords("")
	if err != nil || words != nil {
		t.Fatalf("empty list = %v, %v", words, err)
	}

	p := filepath.Join(t.TempDir(), "stop.txt")
	if err := os.WriteFile(p, []byte("# custom\nund\nder\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	words, err = LoadStopwords(p)
	if err != nil || len(words) != 2 || words[0] != "und" || words[1] != "der" {
		t.Fatalf("LoadStopwords(file) = %v, %v", words, err)
	}

	if _, err := LoadStopwords(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

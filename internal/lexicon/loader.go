package lexicon

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"

	"github.com/Broconuts/TransSpell/internal/customdict"
	"github.com/Broconuts/TransSpell/internal/textnorm"
)

// CustomDialect is the name given to the Redis-backed custom word dialect.
const CustomDialect = "custom"

// LoadWordlist maps a wordlist file into memory and builds a dialect from it.
// The file holds one word per line; blank lines and lines starting with '#'
// are skipped. Hunspell-style "word/FLAGS" entries keep only the word.
func LoadWordlist(name, path string, normalize textnorm.Normalizer) (*Dialect, error) {
	words, err := readWordlist(path)
	if err != nil {
		return nil, err
	}
	return NewDialect(name, words, normalize), nil
}

func readWordlist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wordlist %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat wordlist %s: %w", path, err)
	}
	if info.Size() == 0 {
		return nil, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap wordlist %s: %w", path, err)
	}
	defer m.Unmap()

	return parseWordlist(m), nil
}

// LoadWordlists builds an index from a comma separated list of
// "name=path" entries. A bare path is named after its file, minus the
// extension, so "dict/en_GB.dic" becomes dialect "en_GB".
func LoadWordlists(list string, normalize textnorm.Normalizer) (*Index, error) {
	idx := New()
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, path, ok := strings.Cut(entry, "=")
		if !ok {
			path = entry
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		d, err := LoadWordlist(strings.TrimSpace(name), strings.TrimSpace(path), normalize)
		if err != nil {
			return nil, err
		}
		idx = idx.With(d)
	}
	return idx, nil
}

func parseWordlist(data []byte) []string {
	var words []string
	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			data = nil
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if i := bytes.IndexByte(line, '/'); i > 0 {
			line = line[:i]
		}
		// string() copies, so nothing refers to the mapping after Unmap.
		words = append(words, string(line))
	}
	return words
}

// FromCustomDict snapshots the Redis custom word set into a dialect. Later
// changes in Redis are not visible until a new snapshot is taken.
func FromCustomDict(ctx context.Context, cd *customdict.CustomDict, normalize textnorm.Normalizer) (*Dialect, error) {
	words, err := cd.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load custom words: %w", err)
	}
	return NewDialect(CustomDialect, words, normalize), nil
}

// Package corpus reads the documents a frequency table is built from.
package corpus

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/Broconuts/TransSpell/internal/corrector"
)

// DefaultColumn is the CSV column holding free-text answers.
const DefaultColumn = "answers"

// ErrMissingColumn is returned when a CSV header lacks the requested column.
var ErrMissingColumn = errors.New("corpus: column not found")

// ReadText returns one document per non-empty line.
func ReadText(r io.Reader) ([]string, error) {
	var docs []string
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		docs = append(docs, line)
	}
	return docs, s.Err()
}

// ReadCSV returns the values of column, one document per row.
func ReadCSV(r io.Reader, column string) ([]string, error) {
	if column == "" {
		column = DefaultColumn
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := -1
	for i, h := range header {
		if strings.TrimSpace(h) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}
	var docs []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if idx >= len(rec) {
			continue
		}
		if v := strings.TrimSpace(rec[idx]); v != "" {
			docs = append(docs, v)
		}
	}
	return docs, nil
}

// ReadHTML extracts the readable article text of an HTML page.
func ReadHTML(r io.Reader, pageURL *url.URL) ([]string, error) {
	article, err := readability.FromReader(r, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return nil, nil
	}
	return []string{text}, nil
}

// ReadFile picks a reader by file extension: .csv, .html/.htm, anything else
// is plain text.
func ReadFile(path string) ([]string, error) {
	return ReadFileColumn(path, DefaultColumn)
}

// ReadFileColumn is ReadFile with the CSV column chosen by the caller.
func ReadFileColumn(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f, column)
	case ".html", ".htm":
		abs, _ := filepath.Abs(path)
		return ReadHTML(f, &url.URL{Scheme: "file", Path: abs})
	default:
		return ReadText(f)
	}
}

// Sentences segments documents into whitespace-tokenized sentences.
func Sentences(docs []string) [][]string {
	var out [][]string
	for _, d := range docs {
		for _, s := range corrector.SplitSentences(d) {
			if toks := corrector.Tokenize(s); len(toks) > 0 {
				out = append(out, toks)
			}
		}
	}
	return out
}

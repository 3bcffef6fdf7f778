package corrector

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/Broconuts/TransSpell/internal/oracle"
	"github.com/Broconuts/TransSpell/internal/textnorm"
	"github.com/Broconuts/TransSpell/pkg/options"
)

// Counter is the corpus frequency capability.
type Counter interface {
	Count(surface string) int
}

// Lexicon is the dictionary membership capability.
type Lexicon interface {
	Contains(surface string) bool
}

// normalizing is implemented by tables that clean a surface before lookup.
type normalizing interface {
	Normalizer() textnorm.Normalizer
}

// tableNormalizer returns the first non-nil normalizer exposed by tables.
func tableNormalizer(tables ...interface{}) textnorm.Normalizer {
	for _, t := range tables {
		if n, ok := t.(normalizing); ok {
			if f := n.Normalizer(); f != nil {
				return f
			}
		}
	}
	return nil
}

// InsensitiveDetector flags non-word errors from token-local signals only.
type InsensitiveDetector struct {
	MinTokenLength int
	MaxFrequency   int
	Frequencies    Counter
	Lexicon        Lexicon
	// Normalize is applied before the length rule so it sees the same key
	// the tables look up. nil measures the raw surface.
	Normalize textnorm.Normalizer
}

// Detect runs the rule chain in order, stopping at the first rule that
// fires:
//
//	len(surface) <= MinTokenLength      -> NotAnError
//	count(surface) > MaxFrequency       -> NotAnError
//	surface in lexicon                  -> NotAnError
//	otherwise                           -> NonWordError
//
// Length is measured in characters, not bytes, after Normalize, so "IBM,"
// counts as three and "...." as zero.
func (d InsensitiveDetector) Detect(tok Token) Verdict {
	if utf8.RuneCountInString(textnorm.Apply(d.Normalize, tok.Surface)) <= d.MinTokenLength {
		return NotAnError
	}
	if d.Frequencies != nil && d.Frequencies.Count(tok.Surface) > d.MaxFrequency {
		return NotAnError
	}
	if d.Lexicon != nil && d.Lexicon.Contains(tok.Surface) {
		return NotAnError
	}
	return NonWordError
}

// DetectNonWord applies the default thresholds to tok.
func DetectNonWord(tok Token, freq Counter, lex Lexicon) Verdict {
	return InsensitiveDetector{
		MinTokenLength: options.DefaultOptions.MinTokenLength,
		MaxFrequency:   options.DefaultOptions.MaxFrequency,
		Frequencies:    freq,
		Lexicon:        lex,
		Normalize:      tableNormalizer(freq, lex),
	}.Detect(tok)
}

// Detection is a context-sensitive verdict plus the candidate set that
// produced it. Candidates is nil when the oracle was not consulted.
type Detection struct {
	Verdict    Verdict
	Candidates []string
}

// ContextDetector flags word errors by asking the oracle what fits the
// masked position.
type ContextDetector struct {
	Oracle  oracle.Oracle
	TopK    int
	Timeout time.Duration
}

// Detect evaluates one position. First and last positions are Unsupported
// without consulting the oracle. Otherwise the token is NotAnError if its
// exact surface form appears anywhere among the top K candidates, and a
// WordError if it does not.
//
// The masked variant is always built from s itself, never from a partly
// corrected sentence, so an early error can make a later correct token look
// wrong. That is a known property of the approach.
//
// Tokens keep attached punctuation and the comparison is exact, so an
// interior "customers," is a WordError whenever the oracle offers only
// "customers", and its correction is the bare word. The oracle predicts
// words, not word-plus-punctuation; this is also a known property.
func (d *ContextDetector) Detect(ctx context.Context, s Sentence, position int) (Detection, error) {
	if position < 0 || position >= s.Len() {
		return Detection{}, fmt.Errorf("%w: %d of %d", ErrPositionOutOfRange, position, s.Len())
	}
	tok := s.At(position)
	if tok.Role != RoleInterior {
		return Detection{Verdict: Unsupported}, nil
	}
	cands, err := predict(ctx, d.Oracle, s, position, d.TopK, d.Timeout)
	if err != nil {
		return Detection{}, &OracleError{Position: position, Stage: "detect", Err: err}
	}
	for _, c := range cands {
		if c == tok.Surface {
			return Detection{Verdict: NotAnError, Candidates: cands}, nil
		}
	}
	return Detection{Verdict: WordError, Candidates: cands}, nil
}

func predict(ctx context.Context, o oracle.Oracle, s Sentence, position, topK int, timeout time.Duration) ([]string, error) {
	if topK <= 0 {
		topK = options.DefaultOptions.TopK
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return o.Predict(ctx, oracle.Masked(s.Surfaces(), position), position, topK)
}

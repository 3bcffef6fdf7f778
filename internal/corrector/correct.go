package corrector

import (
	"context"
	"fmt"
	"time"

	"github.com/Broconuts/TransSpell/internal/oracle"
)

// Engine proposes a replacement for a flagged interior token.
type Engine struct {
	Oracle  oracle.Oracle
	TopK    int
	Timeout time.Duration
}

// Correct masks position, asks the oracle once and returns the best
// candidate that differs from the original token. Edge positions and
// sentences shorter than three tokens get an absent correction without an
// oracle call. On oracle failure the correction is absent and the error is
// returned for the caller to report.
func (e *Engine) Correct(ctx context.Context, s Sentence, position int) (Correction, error) {
	if position < 0 || position >= s.Len() {
		return None(), fmt.Errorf("%w: %d of %d", ErrPositionOutOfRange, position, s.Len())
	}
	if !s.HasInterior() || s.At(position).Role != RoleInterior {
		return None(), nil
	}
	cands, err := predict(ctx, e.Oracle, s, position, e.TopK, e.Timeout)
	if err != nil {
		return None(), &OracleError{Position: position, Stage: "correct", Err: err}
	}
	return SelectCorrection(s.At(position).Surface, cands), nil
}

// SelectCorrection picks the highest-ranked candidate that is not the
// original surface form. Empty candidates are skipped.
func SelectCorrection(original string, candidates []string) Correction {
	for _, c := range candidates {
		if c == "" || c == original {
			continue
		}
		return Some(c)
	}
	return None()
}

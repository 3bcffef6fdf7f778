package corrector

import (
	"context"
	"errors"
	"fmt"

	"github.com/Broconuts/TransSpell/internal/oracle"
)

// ErrEmptySentence rejects a sentence with no tokens. It is fatal for that
// sentence only.
var ErrEmptySentence = errors.New("sentence has no tokens")

// ErrPositionOutOfRange is returned for a position outside the sentence.
var ErrPositionOutOfRange = errors.New("position out of range")

// OracleError reports a failed prediction for one masked position.
type OracleError struct {
	Position int
	Stage    string // "detect" or "correct"
	Err      error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s at position %d: %v", e.Stage, e.Position, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// Retryable reports whether the same request may succeed later.
func (e *OracleError) Retryable() bool {
	return errors.Is(e.Err, oracle.ErrUnavailable) || errors.Is(e.Err, context.DeadlineExceeded)
}

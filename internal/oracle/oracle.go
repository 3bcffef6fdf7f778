// Package oracle abstracts the masked-token prediction model. The correction
// pipeline only ever asks one question: given a sentence with one slot
// masked, which surface forms most likely fill it?
package oracle

import (
	"context"
	"errors"
)

// MaskToken marks the masked slot in a sequence handed to an Oracle.
// Implementations that talk to a real model translate it to the model's own
// mask token.
const MaskToken = "[MASK]"

// ErrUnavailable wraps failures that are worth retrying: transport errors,
// timeouts and server-side errors of a remote model.
var ErrUnavailable = errors.New("oracle unavailable")

// Oracle predicts fillers for a masked position.
//
// sequence[position] holds MaskToken. The result is ordered most likely
// first and has at most topK entries. It may contain the form that was
// masked out.
type Oracle interface {
	Predict(ctx context.Context, sequence []string, position, topK int) ([]string, error)
}

// Func adapts a plain function to the Oracle interface.
type Func func(ctx context.Context, sequence []string, position, topK int) ([]string, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, sequence []string, position, topK int) ([]string, error) {
	return f(ctx, sequence, position, topK)
}

// Masked returns a copy of tokens with tokens[position] replaced by
// MaskToken. The input slice is never modified.
func Masked(tokens []string, position int) []string {
	out := make([]string, len(tokens))
	copy(out, tokens)
	if position >= 0 && position < len(out) {
		out[position] = MaskToken
	}
	return out
}

func truncate(c []string, k int) []string {
	if k >= 0 && len(c) > k {
		c = c[:k]
	}
	out := make([]string, len(c))
	copy(out, c)
	return out
}

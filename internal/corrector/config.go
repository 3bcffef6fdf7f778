package corrector

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Verdict is the outcome of error detection for one token position.
type Verdict int

const (
	NotAnError Verdict = iota
	WordError
	NonWordError
	// Unsupported is a defined non-result: the position is at a sentence
	// edge, the sentence is too short, or the token was excluded.
	Unsupported
)

var verdictNames = [...]string{"not_an_error", "word_error", "non_word_error", "unsupported"}

func (v Verdict) String() string {
	if v < 0 || int(v) >= len(verdictNames) {
		return fmt.Sprintf("verdict(%d)", int(v))
	}
	return verdictNames[v]
}

// IsError reports whether v flags the token as wrong.
func (v Verdict) IsError() bool { return v == WordError || v == NonWordError }

func (v Verdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Verdict) UnmarshalText(b []byte) error {
	for i, n := range verdictNames {
		if n == string(b) {
			*v = Verdict(i)
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", b)
}

// Merge combines the context-insensitive and context-sensitive verdicts of
// an interior token. Either detector can flag the token; when the
// context-sensitive one fired, its WordError wins.
func Merge(insensitive, contextual Verdict) Verdict {
	switch {
	case contextual == WordError:
		return WordError
	case insensitive == NonWordError:
		return NonWordError
	default:
		return NotAnError
	}
}

// Correction is an optional replacement surface form.
type Correction struct {
	Surface string
	Present bool
}

// Some returns a present correction.
func Some(surface string) Correction { return Correction{Surface: surface, Present: true} }

// None is the absent correction.
func None() Correction { return Correction{} }

func (c Correction) String() string {
	if !c.Present {
		return "<none>"
	}
	return c.Surface
}

// MarshalJSON encodes an absent correction as null.
func (c Correction) MarshalJSON() ([]byte, error) {
	if !c.Present {
		return []byte("null"), nil
	}
	return json.Marshal(c.Surface)
}

func (c *Correction) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = None()
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*c = Some(s)
	return nil
}

// Annotation is the per-token output record. Insensitive and Contextual
// keep the verdict of each detector; Verdict is their combination.
type Annotation struct {
	Position    int        `json:"position"`
	Surface     string     `json:"surface"`
	Role        Role       `json:"role"`
	Verdict     Verdict    `json:"verdict"`
	Insensitive Verdict    `json:"insensitive"`
	Contextual  Verdict    `json:"contextual"`
	Correction  Correction `json:"correction"`
}

// Result annotates every token of one sentence, in order.
type Result struct {
	Annotations []Annotation `json:"annotations"`
	// Unsupported is set when the sentence has no interior position, so
	// neither context-sensitive detection nor correction could run.
	Unsupported bool `json:"unsupported"`
}

// Errors returns the annotations flagged as errors.
func (r Result) Errors() []Annotation {
	var out []Annotation
	for _, a := range r.Annotations {
		if a.Verdict.IsError() {
			out = append(out, a)
		}
	}
	return out
}

// Corrected returns the token stream with every present correction applied.
func (r Result) Corrected() []string {
	out := make([]string, len(r.Annotations))
	for i, a := range r.Annotations {
		out[i] = a.Surface
		if a.Verdict.IsError() && a.Correction.Present {
			out[i] = a.Correction.Surface
		}
	}
	return out
}

// Text joins Corrected with single spaces.
func (r Result) Text() string { return strings.Join(r.Corrected(), " ") }

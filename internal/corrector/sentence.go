package corrector

import "fmt"

// Role is a token's place in its sentence.
type Role int

const (
	RoleFirst Role = iota
	RoleInterior
	RoleLast
)

func (r Role) String() string {
	switch r {
	case RoleFirst:
		return "first"
	case RoleInterior:
		return "interior"
	case RoleLast:
		return "last"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Role) UnmarshalText(b []byte) error {
	switch string(b) {
	case "first":
		*r = RoleFirst
	case "interior":
		*r = RoleInterior
	case "last":
		*r = RoleLast
	default:
		return fmt.Errorf("unknown role %q", b)
	}
	return nil
}

// Token is one unit of a sentence. Tokens are values; nothing in this
// package changes a token after NewSentence creates it.
type Token struct {
	Surface  string
	Position int
	Role     Role
}

// Sentence is an immutable, non-empty token sequence.
type Sentence struct {
	tokens []Token
}

// NewSentence builds a sentence from surface forms. A single token counts as
// first; in longer sentences the last token is last and everything between
// is interior.
func NewSentence(surfaces []string) (Sentence, error) {
	if len(surfaces) == 0 {
		return Sentence{}, ErrEmptySentence
	}
	n := len(surfaces)
	toks := make([]Token, n)
	for i, s := range surfaces {
		role := RoleInterior
		switch {
		case i == 0:
			role = RoleFirst
		case i == n-1:
			role = RoleLast
		}
		toks[i] = Token{Surface: s, Position: i, Role: role}
	}
	return Sentence{tokens: toks}, nil
}

// ParseSentence tokenizes text on whitespace and builds a sentence.
func ParseSentence(text string) (Sentence, error) {
	return NewSentence(Tokenize(text))
}

// Len is the number of tokens.
func (s Sentence) Len() int { return len(s.tokens) }

// At returns the token at position i.
func (s Sentence) At(i int) Token { return s.tokens[i] }

// Tokens returns a copy of the tokens.
func (s Sentence) Tokens() []Token {
	out := make([]Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Surfaces returns a fresh slice of the surface forms.
func (s Sentence) Surfaces() []string {
	out := make([]string, len(s.tokens))
	for i, t := range s.tokens {
		out[i] = t.Surface
	}
	return out
}

// HasInterior reports whether any position can be evaluated in context.
func (s Sentence) HasInterior() bool { return len(s.tokens) >= 3 }

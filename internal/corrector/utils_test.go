package corrector

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"One two. Three four!", []string{"One two.", "Three four!"}},
		{"He said \"stop.\" Then left", []string{"He said \"stop.\"", "Then left"}},
		{"line one\nline two", []string{"line one", "line two"}},
		{"v1.2 is out", []string{"v1.2 is out"}},
		{"  ", nil},
	}
	for _, c := range cases {
		if got := SplitSentences(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("SplitSentences(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestTokenizeAndRoles(t *testing.T) {
	s, err := ParseSentence("  We made\tensure  ")
	if err != nil {
		t.Fatal(err)
	}
	want := []Role{RoleFirst, RoleInterior, RoleLast}
	for i, tok := range s.Tokens() {
		if tok.Position != i || tok.Role != want[i] {
			t.Errorf("token %d = %+v", i, tok)
		}
	}
	one, _ := NewSentence([]string{"Hi"})
	if one.At(0).Role != RoleFirst || one.HasInterior() {
		t.Fatalf("single token sentence: %+v", one.At(0))
	}
}

func TestSentenceIsNotAliased(t *testing.T) {
	in := []string{"a", "b", "c"}
	s, _ := NewSentence(in)
	in[1] = "x"
	surf := s.Surfaces()
	surf[0] = "y"
	if s.At(1).Surface != "b" || s.At(0).Surface != "a" {
		t.Fatal("sentence shares storage with caller")
	}
}

package textnorm

import "testing"

func TestClean(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello,", "hello"},
		{"don't", "don't"},
		{"'tis", "tis"},
		{"dogs'", "dogs"},
		{"well-known", "well-known"},
		{"(NASA)", "nasa"},
		{"thre.", "thre"},
		{"", ""},
		{"Café", "café"},
	}
	for _, c := range cases {
		if got := Clean(c.in); got != c.want {
			t.Errorf("Clean(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestApplyNil(t *testing.T) {
	if got := Apply(nil, "NASA"); got != "NASA" {
		t.Fatalf("Apply(nil, NASA) = %q; want NASA", got)
	}
	if got := Apply(Clean, "NASA"); got != "nasa" {
		t.Fatalf("Apply(Clean, NASA) = %q; want nasa", got)
	}
}

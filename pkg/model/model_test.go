package model

import "testing"

func TestGenerateSymbolID(t *testing.T) {
	got := GenerateSymbolID("a/b.go", "Foo", 12)
	want := "a/b.go:Foo:12"
	if got != want {
		t.Fatalf("GenerateSymbolID() = %q, want %q", got, want)
	}
}

func TestHashContentEmpty(t *testing.T) {
	got := HashContent(nil)
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Fatalf("HashContent(nil) = %q, want %q", got, want)
	}
}

func TestCountLines(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want int
	}{
		{"empty", nil, 1},
		{"no trailing newline", []byte("a"), 1},
		{"one newline", []byte("a\n"), 2},
		{"two lines no trailing", []byte("a\nb"), 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CountLines(c.in); got != c.want {
				t.Errorf("CountLines(%q) = %d, want %d", c.in, got, c.want)
			}
		})
	}
}

package utils

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "hello…"},
		{"x", 0, "x"},
		{"héllo wörld", 4, "héll…"},
		{"日本語テキスト", 3, "日本語…"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestHead(t *testing.T) {
	if got := Head("abcdef", 3); got != "abc" {
		t.Errorf("Head = %q", got)
	}
	if got := Head("ab", 3); got != "ab" {
		t.Errorf("Head short = %q", got)
	}
	if got := Head("ünï", 2); got != "ün" {
		t.Errorf("Head multibyte = %q", got)
	}
}

func TestCollapseSpace(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"  a  ", "a"},
		{"a\n\n b\t c", "a b c"},
	}
	for _, tt := range tests {
		if got := CollapseSpace(tt.in); got != tt.want {
			t.Errorf("CollapseSpace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

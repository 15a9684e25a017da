package keyword

import "testing"

func TestEditDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "vault", "vault", 0},
		{"both empty", "", "", 0},
		{"empty a", "", "notes", 5},
		{"empty b", "notes", "", 5},
		{"substitution", "propodal", "proposal", 1},
		{"insertion", "machne", "machine", 1},
		{"deletion", "lerning", "learning", 1},
		{"adjacent swap", "teh", "the", 1},
		{"swap inside word", "kuberentes", "kubernetes", 1},
		{"kitten sitting", "kitten", "sitting", 3},
		{"unicode", "café", "cafe", 1},
		{"case sensitive", "Go", "go", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EditDistance(tt.a, tt.b); got != tt.want {
				t.Errorf("EditDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := EditDistance(tt.b, tt.a); got != tt.want {
				t.Errorf("EditDistance(%q, %q) = %d, want %d (symmetric)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

package utils

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello world", 5, "hello..."},
		{"hello", 0, "hello"},
		{"héllo wörld", 4, "héll..."},
	}
	for _, tt := range tests {
		if got := Truncate(tt.s, tt.maxLen); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}

func TestPrefixRunes(t *testing.T) {
	if got := PrefixRunes("日本語テキスト", 3); got != "日本語" {
		t.Errorf("got %q", got)
	}
	if got := PrefixRunes("ab", 5); got != "ab" {
		t.Errorf("got %q", got)
	}
	if got := PrefixRunes("ab", 0); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeL2(t *testing.T) {
	x := []float32{3, 4}
	NormalizeL2(x)
	if x[0] < 0.599 || x[0] > 0.601 || x[1] < 0.799 || x[1] > 0.801 {
		t.Errorf("got %v", x)
	}
	zero := []float32{0, 0}
	NormalizeL2(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}

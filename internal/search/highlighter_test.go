package search

import (
	"strings"
	"testing"
)

func TestHighlight_ShortContentUnchanged(t *testing.T) {
	if got := Highlight("short text", "text", 100); got != "short text" {
		t.Errorf("got %q", got)
	}
}

func TestHighlight_CentersOnTerm(t *testing.T) {
	content := strings.Repeat("filler ", 50) + "gradient descent" + strings.Repeat(" tail", 50)
	got := Highlight(content, "Descent", 40)
	if !strings.Contains(got, "descent") {
		t.Errorf("snippet %q does not contain the term", got)
	}
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") {
		t.Errorf("snippet %q should be cut on both sides", got)
	}
}

func TestHighlight_NoTermTruncates(t *testing.T) {
	got := Highlight("ünïcödé "+strings.Repeat("x", 50), "missing", 5)
	if got != "ünïcö..." {
		t.Errorf("got %q", got)
	}
}

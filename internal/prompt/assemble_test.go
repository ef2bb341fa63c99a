package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/hyperjump/kiku/internal/models"
)

func TestAssembleChunks(t *testing.T) {
	chunks := []*models.Chunk{{Text: "C D E"}, {Text: "A B C"}}
	if got := AssembleChunks(chunks); got != "C D E A B C" {
		t.Errorf("got %q", got)
	}
	if got := AssembleChunks(nil); got != "" {
		t.Errorf("empty = %q", got)
	}
}

func TestTruncateTranscript(t *testing.T) {
	twenty := "abcdefghijklmnopqrst"
	got, cut := TruncateTranscript(twenty, 10)
	if got != "abcdefghij" || !cut {
		t.Errorf("got %q, %v", got, cut)
	}
	got, cut = TruncateTranscript(twenty, 30)
	if got != twenty || cut {
		t.Errorf("got %q, %v", got, cut)
	}
	got, cut = TruncateTranscript("héllo wörld", 5)
	if got != "héllo" || !cut {
		t.Errorf("runes: got %q, %v", got, cut)
	}
}

func TestAssembleWindow_Truncation(t *testing.T) {
	twenty := "abcdefghijklmnopqrst"
	out, err := AssembleWindow(twenty, nil, "what?", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Transcript:\nabcdefghij"+TruncationMarker+"\n\n") {
		t.Errorf("expected 10 chars plus marker in %q", out)
	}
	if strings.Contains(out, "abcdefghijk") {
		t.Error("transcript not cut at max_chars")
	}

	out, err = AssembleWindow(twenty, nil, "what?", 30)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Transcript:\n"+twenty+"\n\n") || strings.Contains(out, TruncationMarker) {
		t.Errorf("short transcript should be whole with no marker: %q", out)
	}
	if strings.Contains(out, "Previous conversation:") {
		t.Error("no history section expected without turns")
	}
}

func TestAssembleWindow_History(t *testing.T) {
	turns := []models.Turn{{Question: "first?", Answer: "one"}, {Question: "second?", Answer: "two"}}
	out, err := AssembleWindow("transcript", turns, "third?", 100)
	if err != nil {
		t.Fatal(err)
	}
	first := strings.Index(out, "Q: first?\nA: one\n\n")
	second := strings.Index(out, "Q: second?\nA: two\n\n")
	current := strings.Index(out, "Current question: third?")
	if first < 0 || second < 0 || current < 0 {
		t.Fatalf("missing sections in %q", out)
	}
	if !(first < second && second < current) {
		t.Error("turns should be oldest first and precede the current question")
	}
	if !strings.HasPrefix(out, "Based on the following YouTube video transcript") {
		t.Errorf("unexpected header: %q", out)
	}
}

func TestAssembleWindow_InvalidMaxChars(t *testing.T) {
	if _, err := AssembleWindow("t", nil, "q", 0); !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("err = %v", err)
	}
}

func TestRenderRetrieval(t *testing.T) {
	got := RenderRetrieval("why?", "because")
	if !strings.Contains(got, "why?") || !strings.HasSuffix(got, "because") {
		t.Errorf("got %q", got)
	}
}

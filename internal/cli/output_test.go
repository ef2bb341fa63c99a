package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/kiku/internal/models"
)

func TestWriteAnswer(t *testing.T) {
	ans := &models.Answer{
		Question: "what?",
		Answer:   "the answer",
		Strategy: "retrieval",
		Chunks:   []*models.Chunk{{ID: "vid_00001", Text: "C D\nE"}},
	}
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, ans, OutputText, true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "the answer\n") || !strings.Contains(out, "[vid_00001] C D E") {
		t.Errorf("text output:\n%s", out)
	}

	buf.Reset()
	if err := WriteAnswer(&buf, ans, OutputText, false); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "the answer\n" {
		t.Errorf("text output without chunks: %q", buf.String())
	}

	buf.Reset()
	if err := WriteAnswer(&buf, ans, OutputJSON, false); err != nil {
		t.Fatal(err)
	}
	var decoded models.Answer
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Answer != "the answer" || len(decoded.Chunks) != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteSearchResults(t *testing.T) {
	resp := &models.SearchResponse{
		Query:     "descent",
		Total:     1,
		QueryTime: 7,
		Hits: []*models.SearchHit{{
			Rank:    1,
			Score:   0.8,
			Chunk:   &models.Chunk{ID: "vid_00000", Text: "gradient descent", Start: 0, End: 16},
			Snippet: "gradient descent",
		}},
	}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Found 1 results in 7ms", "Rank: 1 | Score: 0.8000", "Chunk: vid_00000 (chars 0-16)", "gradient descent"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, nil, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No conversation yet.") {
		t.Errorf("empty history: %q", buf.String())
	}

	buf.Reset()
	if err := WriteHistory(&buf, nil, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty JSON history: %q", buf.String())
	}

	buf.Reset()
	turns := []models.Turn{{Question: "q1", Answer: "a1"}, {Question: "q2", Answer: "a2"}}
	if err := WriteHistory(&buf, turns, OutputText); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "Q: q1\nA: a1\n\nQ: q2\nA: a2\n\n" {
		t.Errorf("history: %q", buf.String())
	}
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	st := &models.Status{VideoID: "vid", Title: "Talk", LengthMinutes: 12, Views: 345, Chunks: 9, Dimensions: 384, Turns: 2, Strategy: "retrieval", StoredVideos: 3, StoredChunks: 27, DatabaseBytes: 2048}
	if err := WriteStatus(&buf, st, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Title: Talk", "Length: 12 minutes", "Views: 345", "Chunks: 9 (384 dimensions)", "Stored videos: 3, 27 chunks (2.0 KiB)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteStatus(&buf, &models.Status{Strategy: "windowed"}, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No video processed.") {
		t.Errorf("empty status: %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestTruncateAndFormatBytes(t *testing.T) {
	if got := Truncate("héllo world", 5); got != "héllo..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
	tests := map[int64]string{0: "0 B", 1023: "1023 B", 1024: "1.0 KiB", 5 << 20: "5.0 MiB"}
	for n, want := range tests {
		if got := FormatBytes(n); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

package video

import (
	"errors"
	"testing"

	"github.com/hyperjump/kiku/internal/models"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.youtube.com/watch?v=qAF1NjEVHhY&list=WL", "qAF1NjEVHhY"},
		{"https://youtu.be/qAF1NjEVHhY?t=42", "qAF1NjEVHhY"},
		{"https://www.youtube.com/embed/qAF1NjEVHhY", "qAF1NjEVHhY"},
		{"https://www.youtube.com/v/qAF1NjEVHhY#frag", "qAF1NjEVHhY"},
		{"https://www.youtube.com/watch?feature=share&v=qAF1NjEVHhY", "qAF1NjEVHhY"},
		{"  qAF1NjEVHhY ", "qAF1NjEVHhY"},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.in)
		if err != nil {
			t.Errorf("ParseID(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseID_Invalid(t *testing.T) {
	for _, in := range []string{"", "https://vimeo.com/123", "short"} {
		if _, err := ParseID(in); !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("ParseID(%q) err = %v", in, err)
		}
	}
}

func TestLocalID(t *testing.T) {
	a := LocalID("/videos/talk.srt")
	if a != LocalID("/videos/./talk.srt") {
		t.Error("cleaned paths should match")
	}
	if a == LocalID("/videos/other.srt") {
		t.Error("different paths should differ")
	}
	if !IsLocal(a) || IsLocal("qAF1NjEVHhY") {
		t.Error("IsLocal misclassified")
	}
	if len(a) != len(localPrefix)+16 {
		t.Errorf("unexpected length %d", len(a))
	}
}

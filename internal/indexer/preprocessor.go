package indexer

import (
	"strings"
	"unicode"
)

// Preprocess trims text and collapses every whitespace run to a single space.
func Preprocess(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}

// JoinSegments builds a transcript from caption segments: each segment is
// preprocessed, empty ones dropped, and the rest joined with single spaces.
func JoinSegments(segments []string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = Preprocess(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

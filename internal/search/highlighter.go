package search

import (
	"strings"
	"unicode"

	"github.com/hyperjump/kiku/pkg/utils"
)

// Highlight returns a snippet of at most maxLen runes around the first query
// term found in content, with an ellipsis on each cut side. Content with no
// matching term is truncated from the start.
func Highlight(content, query string, maxLen int) string {
	runes := []rune(content)
	if maxLen <= 0 || len(runes) <= maxLen {
		return content
	}
	pos := firstTermIndex(content, query)
	if pos < 0 {
		return utils.Truncate(content, maxLen)
	}
	start := pos - maxLen/4
	if start < 0 {
		start = 0
	}
	end := start + maxLen
	if end > len(runes) {
		end = len(runes)
		start = end - maxLen
	}
	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet += "..."
	}
	return snippet
}

// firstTermIndex returns the rune offset of the earliest query term in content, or -1.
func firstTermIndex(content, query string) int {
	lower := []rune(strings.ToLower(content))
	best := -1
	for _, term := range strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		if idx := runeIndex(lower, []rune(term)); idx >= 0 && (best < 0 || idx < best) {
			best = idx
		}
	}
	return best
}

func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if haystack[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}

package extract

import (
	"regexp"
	"strings"

	"github.com/hyperjump/kiku/internal/indexer"
)

// cueTag matches inline WebVTT markup such as <c>, <i> and <00:00:01.000>.
var cueTag = regexp.MustCompile(`<[^>]+>`)

// extractSubtitles returns the cue text of an .srt or .vtt file. Sequence
// numbers, timing lines, the WEBVTT header block and NOTE blocks are dropped.
// A cue line equal to the previous one is skipped, since rolling captions
// repeat each line.
func extractSubtitles(content []byte) (string, error) {
	text, err := extractPlain(content)
	if err != nil {
		return "", err
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var segments []string
	skipBlock := false
	prev := ""
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			skipBlock = false
			continue
		}
		if skipBlock {
			continue
		}
		switch {
		case strings.HasPrefix(line, "WEBVTT"), strings.HasPrefix(line, "NOTE"),
			strings.HasPrefix(line, "STYLE"), strings.HasPrefix(line, "REGION"):
			skipBlock = true
			continue
		case strings.Contains(line, "-->"), isDigitOnly(line):
			continue
		}
		line = strings.TrimSpace(cueTag.ReplaceAllString(line, ""))
		if line == "" || line == prev {
			continue
		}
		segments = append(segments, line)
		prev = line
	}
	return indexer.JoinSegments(segments), nil
}

func isDigitOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

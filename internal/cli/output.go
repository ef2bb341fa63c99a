// Package cli formats answers, search results, history and status for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat returns the format named by s, or an error for anything but text and json.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

const rule = "─────────────────────────────────────────────────────────"

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteAnswer writes an answer. In text mode the retrieved chunks are listed
// under the answer when showChunks is set.
func WriteAnswer(w io.Writer, ans *models.Answer, format OutputFormat, showChunks bool) error {
	if format == OutputJSON {
		return writeJSON(w, ans)
	}
	fmt.Fprintln(w, ans.Answer)
	if showChunks && len(ans.Chunks) > 0 {
		fmt.Fprintf(w, "\n%s\nSources (%s, %dms):\n", rule, ans.Strategy, ans.Took)
		for i, ch := range ans.Chunks {
			fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, ch.ID, Truncate(oneLine(ch.Text), 120))
		}
	}
	return nil
}

// WriteSearchResults writes chunk search hits to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d results in %dms\n\n", response.Total, response.QueryTime)
	for _, hit := range response.Hits {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "Rank: %d | Score: %.4f (Keyword: %.4f, Semantic: %.4f)\n",
			hit.Rank, hit.Score, hit.KeywordScore, hit.SemanticScore)
		fmt.Fprintf(w, "Chunk: %s (chars %d-%d)\n", hit.Chunk.ID, hit.Chunk.Start, hit.Chunk.End)
		text := hit.Snippet
		if text == "" {
			text = Truncate(hit.Chunk.Text, 200)
		}
		fmt.Fprintf(w, "\n%s\n\n", text)
	}
	return nil
}

// WriteHistory writes conversation turns, oldest first.
func WriteHistory(w io.Writer, turns []models.Turn, format OutputFormat) error {
	if format == OutputJSON {
		if turns == nil {
			turns = []models.Turn{}
		}
		return writeJSON(w, turns)
	}
	if len(turns) == 0 {
		fmt.Fprintln(w, "No conversation yet.")
		return nil
	}
	for _, t := range turns {
		fmt.Fprintf(w, "Q: %s\nA: %s\n\n", t.Question, t.Answer)
	}
	return nil
}

// WriteStatus writes the session status.
func WriteStatus(w io.Writer, st *models.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	if st.VideoID == "" {
		fmt.Fprintln(w, "No video processed.")
	} else {
		fmt.Fprintf(w, "Video: %s\n", st.VideoID)
		if st.Title != "" {
			fmt.Fprintf(w, "Title: %s\n", st.Title)
		}
		fmt.Fprintf(w, "Length: %d minutes\n", st.LengthMinutes)
		fmt.Fprintf(w, "Views: %d\n", st.Views)
		fmt.Fprintf(w, "Chunks: %d (%d dimensions)\n", st.Chunks, st.Dimensions)
		fmt.Fprintf(w, "Turns: %d\n", st.Turns)
	}
	fmt.Fprintf(w, "Strategy: %s\n", st.Strategy)
	if st.StoredVideos > 0 {
		fmt.Fprintf(w, "Stored videos: %d, %d chunks (%s)\n", st.StoredVideos, st.StoredChunks, FormatBytes(st.DatabaseBytes))
	}
	return nil
}

// WriteVideo writes a processed video summary.
func WriteVideo(w io.Writer, v *models.Video, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, v)
	}
	fmt.Fprintf(w, "Processed %s", v.ID)
	if v.Title != "" {
		fmt.Fprintf(w, " (%s)", v.Title)
	}
	fmt.Fprintln(w)
	return nil
}

// Truncate cuts s to maxLen runes and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	return utils.Truncate(s, maxLen)
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

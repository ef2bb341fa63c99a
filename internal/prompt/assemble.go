// Package prompt builds the bounded text sent to the answer model, either from
// retrieved chunks or from a truncated transcript plus recent conversation.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/pkg/utils"
)

// TruncationMarker is appended to a transcript cut at the window limit.
const TruncationMarker = "... [transcript truncated]"

// Instruction is the fixed system prompt for every answer.
const Instruction = "You are a helpful YouTube assistant that answers questions about videos " +
	"based on the video transcript. Only use the factual information from the transcript to " +
	"answer the question. If you don't have enough information to answer the question, " +
	"say \"I don't know\". Your answer should be detailed."

// AssembleChunks joins chunk texts with a single space, in the order given.
func AssembleChunks(chunks []*models.Chunk) string {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	return strings.Join(texts, " ")
}

// RenderRetrieval wraps retrieved transcript text and the question into the user message.
func RenderRetrieval(question, docs string) string {
	var b strings.Builder
	b.WriteString("Answer the following question: ")
	b.WriteString(question)
	b.WriteString("\n\nBy searching the following video transcript: ")
	b.WriteString(docs)
	return b.String()
}

// TruncateTranscript returns the first maxChars runes of transcript and whether
// anything was cut.
func TruncateTranscript(transcript string, maxChars int) (string, bool) {
	if utf8.RuneCountInString(transcript) <= maxChars {
		return transcript, false
	}
	return utils.PrefixRunes(transcript, maxChars), true
}

// AssembleWindow builds the windowed prompt: the transcript prefix, a truncation
// marker when the transcript is longer than maxChars, the given turns oldest first,
// then the current question. maxChars must be positive.
func AssembleWindow(transcript string, history []models.Turn, question string, maxChars int) (string, error) {
	if maxChars <= 0 {
		return "", fmt.Errorf("max_chars must be positive, got %d: %w", maxChars, models.ErrInvalidConfiguration)
	}
	excerpt, cut := TruncateTranscript(transcript, maxChars)

	var b strings.Builder
	b.WriteString("Based on the following YouTube video transcript, please answer the user's question.\n\n")
	b.WriteString("Transcript:\n")
	b.WriteString(excerpt)
	if cut {
		b.WriteString(TruncationMarker)
	}
	b.WriteString("\n\n")

	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", t.Question, t.Answer)
		}
	}

	fmt.Fprintf(&b, "Current question: %s\n\nPlease provide a comprehensive answer based on the transcript content.", question)
	return b.String(), nil
}

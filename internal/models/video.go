// Package models defines core data structures for videos, transcript chunks, and conversation turns.
package models

import "time"

// Video is a processed video and its transcript. The transcript is immutable once stored.
type Video struct {
	ID            string    `json:"id" db:"id"`
	URL           string    `json:"url,omitempty" db:"url"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description,omitempty" db:"description"`
	LengthSeconds int       `json:"length_seconds" db:"length_seconds"`
	Views         int64     `json:"views" db:"views"`
	Transcript    string    `json:"transcript,omitempty" db:"transcript"`
	ProcessedAt   time.Time `json:"processed_at" db:"processed_at"`
}

// LengthMinutes returns the video length in whole minutes.
func (v *Video) LengthMinutes() int {
	return v.LengthSeconds / 60
}

// VideoInput is the input for processing a video transcript.
// Either URL or ID identifies the video; Transcript or Segments carry the text.
type VideoInput struct {
	ID            string   `json:"id,omitempty"`
	URL           string   `json:"url,omitempty"`
	Title         string   `json:"title,omitempty"`
	Description   string   `json:"description,omitempty"`
	LengthSeconds int      `json:"length_seconds,omitempty"`
	Views         int64    `json:"views,omitempty"`
	Transcript    string   `json:"transcript,omitempty"`
	Segments      []string `json:"segments,omitempty"`
}

// Chunk is a contiguous piece of a transcript used as the unit of retrieval.
// Start and End are rune offsets into the transcript, End exclusive.
type Chunk struct {
	ID      string `json:"id" db:"id"`
	VideoID string `json:"video_id" db:"video_id"`
	Index   int    `json:"index" db:"chunk_index"`
	Text    string `json:"text" db:"content"`
	Start   int    `json:"start" db:"start_offset"`
	End     int    `json:"end" db:"end_offset"`
}

// Turn is one question and answer exchange.
type Turn struct {
	ID        string    `json:"id,omitempty"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Strategy  string    `json:"strategy,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

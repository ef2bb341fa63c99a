package models

import (
	"fmt"
	"strings"
)

// AskRequest is a question about the current video.
type AskRequest struct {
	Question string `json:"question"`
}

// Validate returns ErrInvalidArgument when the question is blank.
func (r *AskRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("question cannot be empty: %w", ErrInvalidArgument)
	}
	return nil
}

// Answer is the response to a question. Chunks lists the transcript chunks used
// in retrieval mode, in rank order.
type Answer struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Strategy string   `json:"strategy"`
	VideoID  string   `json:"video_id,omitempty"`
	Chunks   []*Chunk `json:"chunks,omitempty"`
	Failed   bool     `json:"failed,omitempty"`
	Took     int64    `json:"took_ms"`
}

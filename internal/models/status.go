package models

import "time"

// Status describes the session: the current video, if any, and index and log sizes.
type Status struct {
	VideoID       string    `json:"video_id,omitempty"`
	Title         string    `json:"title,omitempty"`
	LengthMinutes int       `json:"length_minutes,omitempty"`
	Views         int64     `json:"views,omitempty"`
	ProcessedAt   time.Time `json:"processed_at,omitempty"`
	Chunks        int       `json:"chunks"`
	Dimensions    int       `json:"dimensions"`
	Turns         int       `json:"turns"`
	Strategy      string    `json:"strategy"`
	StoredVideos  int64     `json:"stored_videos,omitempty"`
	StoredChunks  int64     `json:"stored_chunks,omitempty"`
	DatabaseBytes int64     `json:"database_bytes,omitempty"`
}

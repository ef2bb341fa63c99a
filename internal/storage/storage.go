// Package storage persists processed videos, their chunk vectors, and the
// conversation log, so a restart can restore the last video without re-embedding.
package storage

import (
	"context"

	"github.com/hyperjump/kiku/internal/models"
)

// Storage defines video, chunk and turn persistence operations.
type Storage interface {
	// SaveVideo stores video with its chunks and vectors, replacing any earlier
	// copy of the same video and its conversation log. vectors may be nil.
	SaveVideo(ctx context.Context, video *models.Video, chunks []*models.Chunk, vectors [][]float32) error
	// SaveChunks replaces a stored video's chunks and keeps its log.
	SaveChunks(ctx context.Context, videoID string, chunks []*models.Chunk, vectors [][]float32) error
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	LatestVideo(ctx context.Context) (*models.Video, error)
	GetChunks(ctx context.Context, videoID string) ([]*models.Chunk, [][]float32, error)

	AppendTurn(ctx context.Context, videoID string, turn *models.Turn) error
	ListTurns(ctx context.Context, videoID string) ([]models.Turn, error)
	ClearTurns(ctx context.Context, videoID string) error

	CountVideos(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/vector"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist. ":memory:" gives a private
// in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite has a single writer, and each :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		url TEXT,
		title TEXT,
		description TEXT,
		length_seconds INTEGER NOT NULL DEFAULT 0,
		views INTEGER NOT NULL DEFAULT 0,
		transcript TEXT NOT NULL,
		processed_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_videos_processed_at ON videos(processed_at);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		video_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		content TEXT NOT NULL,
		start_offset INTEGER NOT NULL,
		end_offset INTEGER NOT NULL,
		embedding BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_video ON chunks(video_id, chunk_index);

	CREATE TABLE IF NOT EXISTS turns (
		id TEXT PRIMARY KEY,
		video_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		strategy TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_turns_video ON turns(video_id, seq);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveVideo stores video with its chunks, replacing any earlier copy of the
// video together with its conversation log. vectors may be nil for a video
// indexed without embeddings; its chunks are stored with empty vectors.
func (s *SQLiteStorage) SaveVideo(ctx context.Context, video *models.Video, chunks []*models.Chunk, vectors [][]float32) error {
	if vectors != nil && len(chunks) != len(vectors) {
		return fmt.Errorf("%d chunks but %d vectors: %w", len(chunks), len(vectors), models.ErrDimensionMismatch)
	}
	if video.ProcessedAt.IsZero() {
		video.ProcessedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO videos (id, url, title, description, length_seconds, views, transcript, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET url = excluded.url, title = excluded.title,
		   description = excluded.description, length_seconds = excluded.length_seconds,
		   views = excluded.views, transcript = excluded.transcript, processed_at = excluded.processed_at`,
		video.ID, video.URL, video.Title, video.Description, video.LengthSeconds, video.Views,
		video.Transcript, video.ProcessedAt,
	); err != nil {
		return fmt.Errorf("failed to store video: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE video_id = ?`, video.ID); err != nil {
		return err
	}
	if err := writeChunks(ctx, tx, video.ID, chunks, vectors); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveChunks replaces the chunks of a stored video. The conversation log is kept.
func (s *SQLiteStorage) SaveChunks(ctx context.Context, videoID string, chunks []*models.Chunk, vectors [][]float32) error {
	if vectors != nil && len(chunks) != len(vectors) {
		return fmt.Errorf("%d chunks but %d vectors: %w", len(chunks), len(vectors), models.ErrDimensionMismatch)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos WHERE id = ?`, videoID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("video %s: %w", videoID, models.ErrNotFound)
	}
	if err := writeChunks(ctx, tx, videoID, chunks, vectors); err != nil {
		return err
	}
	return tx.Commit()
}

func writeChunks(ctx context.Context, tx *sql.Tx, videoID string, chunks []*models.Chunk, vectors [][]float32) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE video_id = ?`, videoID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, video_id, chunk_index, content, start_offset, end_offset, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, ch := range chunks {
		blob := []byte{}
		if vectors != nil {
			blob = vector.EncodeVector(vectors[i])
		}
		if _, err := stmt.ExecContext(ctx, ch.ID, videoID, ch.Index, ch.Text, ch.Start, ch.End, blob); err != nil {
			return fmt.Errorf("failed to store chunk %s: %w", ch.ID, err)
		}
	}
	return nil
}

const videoColumns = `id, url, title, description, length_seconds, views, transcript, processed_at`

func scanVideo(row *sql.Row) (*models.Video, error) {
	var v models.Video
	var url, title, description sql.NullString
	err := row.Scan(&v.ID, &url, &title, &description, &v.LengthSeconds, &v.Views, &v.Transcript, &v.ProcessedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	v.URL, v.Title, v.Description = url.String, title.String, description.String
	return &v, nil
}

// GetVideo returns a video by ID, or models.ErrNotFound.
func (s *SQLiteStorage) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	v, err := scanVideo(s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id))
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("video %s: %w", id, err)
	}
	return v, err
}

// LatestVideo returns the most recently processed video, or models.ErrNotFound.
func (s *SQLiteStorage) LatestVideo(ctx context.Context) (*models.Video, error) {
	return scanVideo(s.db.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos ORDER BY processed_at DESC LIMIT 1`))
}

// GetChunks returns a video's chunks in index order with their vectors.
func (s *SQLiteStorage) GetChunks(ctx context.Context, videoID string) ([]*models.Chunk, [][]float32, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, video_id, chunk_index, content, start_offset, end_offset, embedding
		 FROM chunks WHERE video_id = ? ORDER BY chunk_index`,
		videoID,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var chunks []*models.Chunk
	var vectors [][]float32
	for rows.Next() {
		var ch models.Chunk
		var blob []byte
		if err := rows.Scan(&ch.ID, &ch.VideoID, &ch.Index, &ch.Text, &ch.Start, &ch.End, &blob); err != nil {
			return nil, nil, err
		}
		vec, err := vector.DecodeVector(blob)
		if err != nil {
			return nil, nil, fmt.Errorf("chunk %s: %w", ch.ID, err)
		}
		chunks = append(chunks, &ch)
		vectors = append(vectors, vec)
	}
	return chunks, vectors, rows.Err()
}

// AppendTurn stores turn at the end of a video's log, assigning an ID when empty.
func (s *SQLiteStorage) AppendTurn(ctx context.Context, videoID string, turn *models.Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (id, video_id, seq, question, answer, strategy, created_at)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM turns WHERE video_id = ?), ?, ?, ?, ?)`,
		turn.ID, videoID, videoID, turn.Question, turn.Answer, turn.Strategy, turn.CreatedAt,
	)
	return err
}

// ListTurns returns a video's turns, oldest first.
func (s *SQLiteStorage) ListTurns(ctx context.Context, videoID string) ([]models.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, answer, strategy, created_at FROM turns WHERE video_id = ? ORDER BY seq`,
		videoID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []models.Turn{}
	for rows.Next() {
		var t models.Turn
		var strategy sql.NullString
		if err := rows.Scan(&t.ID, &t.Question, &t.Answer, &strategy, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Strategy = strategy.String
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// ClearTurns removes a video's conversation log.
func (s *SQLiteStorage) ClearTurns(ctx context.Context, videoID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM turns WHERE video_id = ?`, videoID)
	return err
}

// CountVideos returns the number of stored videos.
func (s *SQLiteStorage) CountVideos(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&count)
	return count, err
}

// CountChunks returns the number of stored chunks.
func (s *SQLiteStorage) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

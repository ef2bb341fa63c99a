// Package indexer splits transcripts into chunks and builds the per-video search indices.
package indexer

import (
	"fmt"
	"unicode"

	"github.com/hyperjump/kiku/internal/models"
)

// Chunking units.
const (
	UnitChars = "chars"
	UnitWords = "words"
)

// Chunker splits text into overlapping fixed-size windows, measured in runes or words.
type Chunker struct {
	size    int
	overlap int
	unit    string
}

// NewChunker creates a chunker. size must be positive and overlap in [0, size);
// unit is UnitChars or UnitWords (empty means UnitChars).
func NewChunker(size, overlap int, unit string) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d: %w", size, models.ErrInvalidConfiguration)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d: %w", size, overlap, models.ErrInvalidConfiguration)
	}
	if unit == "" {
		unit = UnitChars
	}
	if unit != UnitChars && unit != UnitWords {
		return nil, fmt.Errorf("unknown chunk unit %q: %w", unit, models.ErrInvalidConfiguration)
	}
	return &Chunker{size: size, overlap: overlap, unit: unit}, nil
}

// Size returns the window length.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the number of units shared by consecutive chunks.
func (c *Chunker) Overlap() int { return c.overlap }

// Unit returns the unit size and overlap are measured in.
func (c *Chunker) Unit() string { return c.unit }

// Split cuts text into chunks with stride size-overlap. The text inside each chunk is
// copied from the input unchanged. The final chunk holds the remainder and may be
// shorter than size. Empty text yields no chunks.
func (c *Chunker) Split(videoID, text string) []*models.Chunk {
	if c.unit == UnitWords {
		return c.splitWords(videoID, text)
	}
	return c.splitChars(videoID, text)
}

func (c *Chunker) splitChars(videoID, text string) []*models.Chunk {
	// offsets[i] is the byte offset of rune i; offsets[n] is len(text).
	offsets := make([]int, 0, len(text)+1)
	for pos := range text {
		offsets = append(offsets, pos)
	}
	n := len(offsets)
	if n == 0 {
		return nil
	}
	offsets = append(offsets, len(text))

	stride := c.size - c.overlap
	chunks := make([]*models.Chunk, 0, estimateCount(n, c.size, c.overlap))
	for start := 0; ; start += stride {
		end := start + c.size
		if end > n {
			end = n
		}
		chunks = append(chunks, newChunk(videoID, len(chunks), text[offsets[start]:offsets[end]], start, end))
		if end == n {
			break
		}
	}
	return chunks
}

// word is a whitespace-delimited token located by byte and rune offsets.
type word struct {
	byteStart, byteEnd int
	runeStart, runeEnd int
}

func (c *Chunker) splitWords(videoID, text string) []*models.Chunk {
	words := scanWords(text)
	n := len(words)
	if n == 0 {
		return nil
	}
	stride := c.size - c.overlap
	chunks := make([]*models.Chunk, 0, estimateCount(n, c.size, c.overlap))
	for start := 0; ; start += stride {
		end := start + c.size
		if end > n {
			end = n
		}
		first, last := words[start], words[end-1]
		chunks = append(chunks, newChunk(videoID, len(chunks), text[first.byteStart:last.byteEnd], first.runeStart, last.runeEnd))
		if end == n {
			break
		}
	}
	return chunks
}

func scanWords(text string) []word {
	var words []word
	in := false
	var cur word
	runeIdx := 0
	for pos, r := range text {
		if unicode.IsSpace(r) {
			if in {
				cur.byteEnd, cur.runeEnd = pos, runeIdx
				words = append(words, cur)
				in = false
			}
		} else if !in {
			cur = word{byteStart: pos, runeStart: runeIdx}
			in = true
		}
		runeIdx++
	}
	if in {
		cur.byteEnd, cur.runeEnd = len(text), runeIdx
		words = append(words, cur)
	}
	return words
}

func newChunk(videoID string, index int, text string, start, end int) *models.Chunk {
	return &models.Chunk{
		ID:      ChunkID(videoID, index),
		VideoID: videoID,
		Index:   index,
		Text:    text,
		Start:   start,
		End:     end,
	}
}

// ChunkID returns the stable ID of the chunk at index within a video.
func ChunkID(videoID string, index int) string {
	return fmt.Sprintf("%s_%05d", videoID, index)
}

// estimateCount returns ceil((n-overlap)/(size-overlap)) for n > size, else 1.
func estimateCount(n, size, overlap int) int {
	if n <= size {
		return 1
	}
	stride := size - overlap
	return (n - overlap + stride - 1) / stride
}

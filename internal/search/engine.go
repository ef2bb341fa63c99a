package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hyperjump/kiku/internal/indexer"
	"github.com/hyperjump/kiku/internal/keyword"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/vector"
)

// snippetLength is the maximum snippet size in runes.
const snippetLength = 200

// Engine runs hybrid (keyword + semantic) search over one snapshot's chunks.
type Engine struct {
	retriever  *Retriever
	candidates int
}

// NewEngine creates a search engine. candidates bounds how many results each
// side contributes before fusion; values below 1 default to 50.
func NewEngine(retriever *Retriever, candidates int) *Engine {
	if candidates <= 0 {
		candidates = 50
	}
	return &Engine{retriever: retriever, candidates: candidates}
}

// Search runs hybrid search against snap and returns ranked chunk hits.
func (e *Engine) Search(ctx context.Context, snap *indexer.Snapshot, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := ProcessQuery(query); err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("no video processed: %w", models.ErrNoTranscript)
	}

	var (
		keywordResults  []*keyword.KeywordResult
		semanticResults []*vector.VectorResult
		errChan         = make(chan error, 2)
		wg              sync.WaitGroup
	)

	if query.KeywordWeight > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			opts := &keyword.SearchOptions{PhraseBoost: 1.5, FuzzyEnabled: query.FuzzyEnabled, Fuzziness: 1}
			results, err := snap.KeywordIndex.Search(ctx, query.Query, e.candidates, opts)
			if err != nil {
				errChan <- fmt.Errorf("keyword search failed: %w", err)
				return
			}
			keywordResults = results
		}()
	}

	// Text-only snapshots fall back to keyword ranking.
	if query.SemanticWeight > 0 && snap.HasVectors() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := e.retriever.RetrieveScored(ctx, snap.VectorIndex, query.Query, e.candidates)
			if err != nil {
				errChan <- fmt.Errorf("semantic search failed: %w", err)
				return
			}
			semanticResults = results
		}()
	}

	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	fused := Fuse(NormalizeKeywordScores(keywordResults), NormalizeSemanticScores(semanticResults),
		query.KeywordWeight, query.SemanticWeight)

	if query.MinScore > 0 {
		filtered := fused[:0]
		for _, r := range fused {
			if r.Score >= query.MinScore {
				filtered = append(filtered, r)
			}
		}
		fused = filtered
	}

	total := len(fused)
	if len(fused) > query.Limit {
		fused = fused[:query.Limit]
	}

	response := &models.SearchResponse{
		Hits:    make([]*models.SearchHit, 0, len(fused)),
		Total:   total,
		Query:   query.Query,
		VideoID: snap.VideoID,
	}
	for _, r := range fused {
		chunk := snap.ChunkByID(r.ChunkID)
		if chunk == nil {
			continue
		}
		response.Hits = append(response.Hits, &models.SearchHit{
			Chunk:         chunk,
			Score:         r.Score,
			KeywordScore:  r.KeywordScore,
			SemanticScore: r.SemanticScore,
			Snippet:       Highlight(chunk.Text, query.Query, snippetLength),
			Rank:          len(response.Hits) + 1,
		})
	}
	response.QueryTime = time.Since(startTime).Milliseconds()
	return response, nil
}

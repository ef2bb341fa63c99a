package keyword

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/kiku/internal/models"
)

// BleveIndex implements KeywordIndex with an in-memory Bleve index.
// A new index is built for every processed video, so nothing is written to disk.
type BleveIndex struct {
	index bleve.Index
}

// chunkDoc is the document shape indexed per chunk.
type chunkDoc struct {
	Text    string `json:"text"`
	VideoID string `json:"video_id"`
}

// NewBleveIndex creates an empty in-memory index.
func NewBleveIndex() (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer lowercases and tokenizes without stemming, so spoken words match as said.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	docMapping.AddFieldMappingsAt("video_id", bleve.NewKeywordFieldMapping())
	im.AddDocumentMapping("chunk", docMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// IndexChunks adds chunks in one batch, keyed by chunk ID.
func (b *BleveIndex) IndexChunks(ctx context.Context, chunks []*models.Chunk) error {
	batch := b.index.NewBatch()
	for _, ch := range chunks {
		if err := batch.Index(ch.ID, chunkDoc{Text: ch.Text, VideoID: ch.VideoID}); err != nil {
			return fmt.Errorf("batch chunk %s: %w", ch.ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve batch failed: %w", err)
	}
	return nil
}

// Search runs a match (or fuzzy) query over chunk text and returns up to limit results.
// When opts.PhraseBoost > 1, chunks containing the whole query as a phrase are boosted.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error) {
	if limit <= 0 {
		limit = 10
	}
	phraseBoost := 1.0
	fuzzyEnabled := false
	fuzziness := 2
	if opts != nil {
		if opts.PhraseBoost > 0 {
			phraseBoost = opts.PhraseBoost
		}
		fuzzyEnabled = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}

	var q blevequery.Query
	if fuzzyEnabled {
		q = buildFuzzyQuery(query, fuzziness)
	} else {
		mq := bleve.NewMatchQuery(query)
		mq.SetField("text")
		q = mq
	}
	reqSize := limit
	if phraseBoost > 1 && reqSize < 50 {
		reqSize = 50
	}
	req := bleve.NewSearchRequestOptions(q, reqSize, 0, false)
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID, Score: hit.Score}
	}

	if phraseBoost > 1 && len(tokenizeQuery(query)) > 1 {
		phrases, err := b.phraseMatches(ctx, query, reqSize)
		if err != nil {
			return nil, err
		}
		for _, r := range out {
			if phrases[r.ID] {
				r.Score *= phraseBoost
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (b *BleveIndex) phraseMatches(ctx context.Context, query string, size int) (map[string]bool, error) {
	pq := bleve.NewMatchPhraseQuery(query)
	pq.SetField("text")
	res, err := b.index.SearchInContext(ctx, bleve.NewSearchRequestOptions(pq, size, 0, false))
	if err != nil {
		return nil, fmt.Errorf("Bleve phrase search failed: %w", err)
	}
	matches := make(map[string]bool, len(res.Hits))
	for _, hit := range res.Hits {
		matches[hit.ID] = true
	}
	return matches, nil
}

// DocCount returns the number of indexed chunks.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close releases the index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// tokenizeQuery splits query into lowercase terms.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// buildFuzzyQuery creates a disjunction of FuzzyQueries, one per query term.
func buildFuzzyQuery(queryStr string, fuzziness int) blevequery.Query {
	terms := tokenizeQuery(queryStr)
	if len(terms) == 0 {
		mq := bleve.NewMatchQuery(queryStr)
		mq.SetField("text")
		return mq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField("text")
		queries = append(queries, fq)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}

package search

import (
	"sort"

	"github.com/hyperjump/kiku/internal/keyword"
	"github.com/hyperjump/kiku/internal/vector"
)

// FusedResult holds a chunk ID and fused keyword/semantic scores.
type FusedResult struct {
	ChunkID       string
	Score         float64
	KeywordScore  float64
	SemanticScore float64
}

// NormalizeKeywordScores normalizes keyword scores to [0,1] by max.
func NormalizeKeywordScores(results []*keyword.KeywordResult) map[string]float64 {
	normalized := make(map[string]float64, len(results))
	if len(results) == 0 {
		return normalized
	}
	maxScore := results[0].Score
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	for _, r := range results {
		if maxScore > 0 {
			normalized[r.ID] = r.Score / maxScore
		} else {
			normalized[r.ID] = 0
		}
	}
	return normalized
}

// NormalizeSemanticScores maps cosine scores from [-1,1] onto [0,1], keyed by chunk ID.
func NormalizeSemanticScores(results []*vector.VectorResult) map[string]float64 {
	normalized := make(map[string]float64, len(results))
	for _, r := range results {
		normalized[r.Chunk.ID] = (r.Score + 1) / 2
	}
	return normalized
}

// Fuse merges keyword and semantic score maps with weights. Results are sorted
// by fused score, then by chunk ID so that equal scores keep transcript order.
func Fuse(keywordScores, semanticScores map[string]float64, keywordWeight, semanticWeight float64) []*FusedResult {
	scoreMap := make(map[string]*FusedResult)
	for id, score := range keywordScores {
		scoreMap[id] = &FusedResult{ChunkID: id, KeywordScore: score}
	}
	for id, score := range semanticScores {
		if result, exists := scoreMap[id]; exists {
			result.SemanticScore = score
		} else {
			scoreMap[id] = &FusedResult{ChunkID: id, SemanticScore: score}
		}
	}
	results := make([]*FusedResult, 0, len(scoreMap))
	for _, result := range scoreMap {
		result.Score = (keywordWeight * result.KeywordScore) + (semanticWeight * result.SemanticScore)
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})
	return results
}

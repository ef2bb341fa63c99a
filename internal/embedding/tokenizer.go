package embedding

import (
	"fmt"
	"hash/fnv"

	tokenizer "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask,
// token_type_ids). The returned slices have equal length, at most maxTokens, and
// are not padded.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error)
}

// PretrainedTokenizer loads a HuggingFace tokenizer.json.
type PretrainedTokenizer struct {
	tk *tokenizer.Tokenizer
}

// NewPretrainedTokenizer loads the tokenizer definition at path.
func NewPretrainedTokenizer(path string) (*PretrainedTokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}
	return &PretrainedTokenizer{tk: tk}, nil
}

// Tokenize encodes text with special tokens and truncates to maxTokens.
// A truncated sequence keeps its final [SEP] token.
func (t *PretrainedTokenizer) Tokenize(text string, maxTokens int) ([]int64, []int64, []int64, error) {
	input := tokenizer.NewSingleEncodeInput(tokenizer.NewInputSequence(text))
	encodings, err := t.tk.EncodeBatch([]tokenizer.EncodeInput{input}, true)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("tokenization failed: %w", err)
	}
	if len(encodings) == 0 {
		return nil, nil, nil, fmt.Errorf("tokenization returned no encoding")
	}
	enc := encodings[0]
	ids := enc.GetIds()
	mask := enc.GetAttentionMask()

	n := len(ids)
	truncated := maxTokens > 0 && n > maxTokens
	if truncated {
		n = maxTokens
	}
	inputIDs := make([]int64, n)
	attentionMask := make([]int64, n)
	// Single sequences use segment 0 throughout.
	tokenTypeIDs := make([]int64, n)
	for i := 0; i < n; i++ {
		inputIDs[i] = int64(ids[i])
		if i < len(mask) {
			attentionMask[i] = int64(mask[i])
		}
	}
	if truncated && n > 0 {
		inputIDs[n-1] = int64(ids[len(ids)-1])
	}
	return inputIDs, attentionMask, tokenTypeIDs, nil
}

// SimpleTokenizer is a word-split tokenizer with hash-based token IDs, used when
// no tokenizer.json is available.
type SimpleTokenizer struct{}

// Tokenize wraps the hashed words in [CLS] ... [SEP], up to maxTokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) ([]int64, []int64, []int64, error) {
	if maxTokens <= 2 {
		maxTokens = 256
	}
	words := wordTokens(text)
	if len(words) > maxTokens-2 {
		words = words[:maxTokens-2]
	}
	n := len(words) + 2
	inputIDs := make([]int64, n)
	attentionMask := make([]int64, n)
	tokenTypeIDs := make([]int64, n)

	inputIDs[0] = 101 // [CLS]
	for i, w := range words {
		inputIDs[i+1] = int64(1000 + HashString(w)%29000)
	}
	inputIDs[n-1] = 102 // [SEP]
	for i := range attentionMask {
		attentionMask[i] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs, nil
}

// HashString returns a deterministic non-negative hash of s.
func HashString(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() & 0x7fffffff)
}

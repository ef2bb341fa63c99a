//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/pkg/utils"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXOptions configures a local sentence-transformer model.
type ONNXOptions struct {
	ModelPath   string
	RuntimePath string
	Dimensions  int
	MaxTokens   int
	BatchSize   int
	Tokenizer   Tokenizer
}

// ONNXEmbedder runs a BERT-style model through ONNX Runtime and mean-pools the
// last hidden state over the attention mask. Requires CGO and the onnxruntime
// shared library.
type ONNXEmbedder struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  Tokenizer
	dimensions int
	maxTokens  int
	batchSize  int
	mu         sync.Mutex
}

var errSessionClosed = errors.New("onnx session is closed")

// NewONNXEmbedder initializes the runtime environment and loads the model.
func NewONNXEmbedder(opts ONNXOptions) (*ONNXEmbedder, error) {
	if opts.RuntimePath != "" {
		ort.SetSharedLibraryPath(opts.RuntimePath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
		}
	}

	so, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer so.Destroy()
	if err := so.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		return nil, fmt.Errorf("failed to set graph optimization: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		opts.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		so,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	tok := opts.Tokenizer
	if tok == nil {
		tok = &SimpleTokenizer{}
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 32
	}
	return &ONNXEmbedder{
		session:    session,
		tokenizer:  tok,
		dimensions: opts.Dimensions,
		maxTokens:  opts.MaxTokens,
		batchSize:  batch,
	}, nil
}

// Embed returns the embedding for a single text.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in batches of at most batchSize sequences.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.closed() {
		return nil, fmt.Errorf("%w: %w", models.ErrEmbeddingUnavailable, errSessionClosed)
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.embedBatch(texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrEmbeddingUnavailable, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *ONNXEmbedder) embedBatch(texts []string) ([][]float32, error) {
	type encoded struct{ ids, mask, types []int64 }
	encs := make([]encoded, len(texts))
	maxLen := 0
	for i, t := range texts {
		ids, mask, types, err := e.tokenizer.Tokenize(t, e.maxTokens)
		if err != nil {
			return nil, err
		}
		encs[i] = encoded{ids, mask, types}
		if len(ids) > maxLen {
			maxLen = len(ids)
		}
	}
	if maxLen == 0 {
		maxLen = 1
	}

	batchSize := len(texts)
	inputIDs := make([]int64, batchSize*maxLen)
	attentionMask := make([]int64, batchSize*maxLen)
	tokenTypeIDs := make([]int64, batchSize*maxLen)
	for i, enc := range encs {
		offset := i * maxLen
		copy(inputIDs[offset:], enc.ids)
		copy(attentionMask[offset:], enc.mask)
		copy(tokenTypeIDs[offset:], enc.types)
	}

	shape := ort.NewShape(int64(batchSize), int64(maxLen))
	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()
	typesTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	defer typesTensor.Destroy()

	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return nil, errSessionClosed
	}
	outputs := make([]ort.Value, 1)
	err = e.session.Run([]ort.Value{idsTensor, maskTensor, typesTensor}, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("output tensor is not float32")
	}
	outShape := hidden.GetShape()
	if len(outShape) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", outShape)
	}
	seqLen, dim := int(outShape[1]), int(outShape[2])
	if e.dimensions > 0 && dim != e.dimensions {
		return nil, fmt.Errorf("model hidden size %d, configured %d: %w", dim, e.dimensions, models.ErrDimensionMismatch)
	}
	data := hidden.GetData()

	// Mean pooling over tokens with attention 1, copied out before the tensor is destroyed.
	vecs := make([][]float32, batchSize)
	for i := 0; i < batchSize; i++ {
		vec := make([]float32, dim)
		var count float32
		for j := 0; j < seqLen && j < maxLen; j++ {
			if attentionMask[i*maxLen+j] == 0 {
				continue
			}
			row := data[(i*seqLen+j)*dim : (i*seqLen+j+1)*dim]
			for k, v := range row {
				vec[k] += v
			}
			count++
		}
		if count > 0 {
			for k := range vec {
				vec[k] /= count
			}
		}
		utils.NormalizeL2(vec)
		vecs[i] = vec
	}
	return vecs, nil
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *ONNXEmbedder) closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session == nil
}

// Close destroys the session. The runtime environment stays up for other sessions.
func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	return err
}

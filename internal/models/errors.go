package models

import "errors"

var (
	// ErrInvalidConfiguration reports bad chunking, retrieval or window parameters.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrEmbeddingUnavailable reports a failed call to the embedding model.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrDimensionMismatch reports chunks and vectors that do not pair up.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrIndexEmpty reports a search before build, or a build on zero chunks.
	ErrIndexEmpty = errors.New("index is empty")
	// ErrSynthesisFailure reports a failed call to the generative model.
	ErrSynthesisFailure = errors.New("synthesis failure")
	// ErrInvalidArgument reports a bad per-call argument such as k <= 0.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoTranscript reports that no video has been processed, or its transcript is empty.
	ErrNoTranscript = errors.New("no transcript available")
	// ErrNotFound reports a missing stored record.
	ErrNotFound = errors.New("not found")
)

package ai

import "errors"

var (
	// ErrEmbeddingFailed indicates the embedding service was unreachable or
	// returned malformed output. Fatal to the current request.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrShapeMismatch indicates the embedding service returned a different
	// number of vectors than texts were supplied.
	ErrShapeMismatch = errors.New("embedding result shape mismatch")
)

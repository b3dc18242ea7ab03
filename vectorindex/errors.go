package vectorindex

import "errors"

var (
	// ErrIndexNotFound indicates no persisted index exists at the given path.
	// Retrieval cannot proceed; callers should surface a hint to run the
	// indexing pipeline.
	ErrIndexNotFound = errors.New("vector index not found")

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// index dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrCorruptIndex indicates a persisted index or metadata file that
	// could not be decoded.
	ErrCorruptIndex = errors.New("corrupt index file")
)

package domain

import "errors"

var (
	// ErrNotFound signals a missing collection.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate collection.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidSchema signals an invalid document or collection definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrVectorDimMismatch signals an embedding whose size differs from the collection index.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file whose category cannot be handled.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrFileTooLarge indicates an upload exceeding the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyDocument indicates extraction produced no indexable text.
	ErrEmptyDocument = errors.New("document has no indexable content")

	// ErrConversionFailed indicates the rich document converter could not
	// produce a structured representation. Rich documents never degrade.
	ErrConversionFailed = errors.New("document conversion failed")

	// ErrSegmentationFailed indicates a segmentation strategy could not
	// produce spans. Callers fall back to the sliding window.
	ErrSegmentationFailed = errors.New("segmentation failed")

	// ErrIndexingFailed indicates embedding or vector writes failed.
	// No segments of the document are left in the index.
	ErrIndexingFailed = errors.New("indexing failed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answer generation is disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Ingestion and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrHistoryUnavailable indicates the conversation store is not configured.
	ErrHistoryUnavailable = errors.New("history store unavailable")
)

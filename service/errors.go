package service

import "errors"

var (
	ErrExtractionFailed   = errors.New("extraction failed")
	ErrEmbeddingFailed    = errors.New("failed to generate embedding")
	ErrReviewItemNotFound = errors.New("review item not found")
	ErrAlreadyReviewed    = errors.New("review item already reviewed")
	ErrGenerationFailed   = errors.New("failed to generate content")
)

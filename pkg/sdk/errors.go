package sdk

import "github.com/shelfmind/shelfmind/internal/domain"

// Sentinel errors surfaced by the SDK. Match with errors.Is.
var (
	ErrInvalidRequest               = domain.ErrInvalidRequest
	ErrBookNotFound                 = domain.ErrBookNotFound
	ErrMissingEmbedding             = domain.ErrMissingEmbedding
	ErrEmptyProfile                 = domain.ErrEmptyProfile
	ErrEmbeddingProviderUnavailable = domain.ErrEmbeddingProviderUnavailable
	ErrEmbeddingProviderTimeout     = domain.ErrEmbeddingProviderTimeout
	ErrDimensionMismatch            = domain.ErrDimensionMismatch
)

package domain

import "errors"

var (
	// ErrDimensionMismatch signals that two vectors of different lengths were compared or combined.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrEmptyInput signals that an operation requiring at least one element received zero.
	ErrEmptyInput = errors.New("empty input")
	// ErrInsufficientDimensions signals an embedding shorter than the projector's index set.
	ErrInsufficientDimensions = errors.New("insufficient embedding dimensions")
	// ErrMissingEmbedding signals a record that was expected to carry an embedding but does not.
	ErrMissingEmbedding = errors.New("missing embedding")
	// ErrEmptyProfile signals a taste profile that matched zero books with embeddings.
	ErrEmptyProfile = errors.New("empty taste profile")
	// ErrEmbeddingProviderUnavailable signals an embedding provider failure.
	ErrEmbeddingProviderUnavailable = errors.New("embedding provider unavailable")
	// ErrEmbeddingProviderTimeout signals an embedding call that exceeded its deadline.
	ErrEmbeddingProviderTimeout = errors.New("embedding provider timeout")
	// ErrKeywordIndexNotReady signals that the keyword vectorizer has not been fitted yet.
	ErrKeywordIndexNotReady = errors.New("keyword index not ready")
	// ErrLibraryNotLoaded signals that no library snapshot has been loaded.
	ErrLibraryNotLoaded = errors.New("library not loaded")
	// ErrBookNotFound signals a book ID absent from the library snapshot.
	ErrBookNotFound = errors.New("book not found")
	// ErrInvalidRequest signals a malformed recommendation request.
	ErrInvalidRequest = errors.New("invalid request")
)

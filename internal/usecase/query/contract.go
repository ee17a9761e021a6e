package query

import (
	"context"

	"github.com/shelfmind/shelfmind/internal/domain"
)

// Embedder vectorizes free text into the embedding space of the library.
// It is the single asynchronous collaborator of the whole core.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

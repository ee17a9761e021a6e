// Package query resolves a taste query into a single query vector.
//
// Three strategies target the embedding space (concept text, anchor books,
// taste profile); the fourth, explicitly degraded strategy targets the keyword
// space and is never substituted silently when the provider fails.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shelfmind/shelfmind/internal/domain"
	"github.com/shelfmind/shelfmind/internal/domain/book"
	"github.com/shelfmind/shelfmind/internal/domain/vecmath"
)

// DefaultEmbedTimeout bounds the single provider call inside concept search.
const DefaultEmbedTimeout = 15 * time.Second

// Service builds query vectors. Stateless: every call is idempotent for
// identical inputs.
type Service struct {
	embed    Embedder
	keywords *KeywordIndex
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates a query service. embed may be nil when no provider is
// configured; concept search then fails with ErrEmbeddingProviderUnavailable.
// keywords may be nil when the keyword fallback is not wired.
func New(embed Embedder, keywords *KeywordIndex, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultEmbedTimeout
	}
	return &Service{embed: embed, keywords: keywords, timeout: timeout, logger: logger}
}

// BuildConceptQuery embeds free text via the external provider. The call
// honors ctx cancellation (a caller abandoning a stale query) and is bounded
// by the service timeout, after which it fails with
// ErrEmbeddingProviderTimeout instead of hanging.
func (s *Service) BuildConceptQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("concept query: %w", domain.ErrEmptyInput)
	}
	if s.embed == nil {
		return nil, fmt.Errorf("concept query: no provider configured: %w",
			domain.ErrEmbeddingProviderUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	result, err := s.embed.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("Concept query timed out",
				zap.Duration("timeout", s.timeout),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil, fmt.Errorf("concept query: %w", domain.ErrEmbeddingProviderTimeout)
		}
		if errors.Is(err, context.Canceled) {
			// Caller abandoned the query; not a provider failure.
			return nil, fmt.Errorf("concept query: %w", err)
		}
		return nil, fmt.Errorf("concept query: %w: %w", domain.ErrEmbeddingProviderUnavailable, err)
	}

	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("concept query: provider returned empty vector: %w",
			domain.ErrEmbeddingProviderUnavailable)
	}
	return result.Embedding, nil
}

// BuildAnchorQuery returns the centroid of the anchor books' embeddings.
// Every anchor must carry an embedding.
func (s *Service) BuildAnchorQuery(anchors []book.Record) ([]float32, error) {
	if len(anchors) == 0 {
		return nil, fmt.Errorf("anchor query: %w", domain.ErrEmptyInput)
	}
	vectors := make([][]float32, 0, len(anchors))
	for i := range anchors {
		r := &anchors[i]
		if !r.HasEmbedding() {
			return nil, fmt.Errorf("anchor query: book %s: %w", r.ID(), domain.ErrMissingEmbedding)
		}
		vectors = append(vectors, r.Embedding())
	}
	centroid, err := vecmath.Centroid(vectors)
	if err != nil {
		return nil, fmt.Errorf("anchor query: %w", err)
	}
	return centroid, nil
}

// BuildTasteQuery returns the centroid over the user's read books whose rating
// falls in ratingSet. Fails with ErrEmptyProfile when the predicate matches
// zero books with embeddings — a zero-vector is never returned silently.
func (s *Service) BuildTasteQuery(books []book.Record, ratingSet []int) ([]float32, error) {
	set := make(map[int]struct{}, len(ratingSet))
	for _, v := range ratingSet {
		set[v] = struct{}{}
	}

	var vectors [][]float32
	for i := range books {
		r := &books[i]
		if !r.IsRead() || !r.HasEmbedding() {
			continue
		}
		if _, ok := set[r.Rating()]; !ok {
			continue
		}
		vectors = append(vectors, r.Embedding())
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("taste query: ratings %v: %w", ratingSet, domain.ErrEmptyProfile)
	}

	centroid, err := vecmath.Centroid(vectors)
	if err != nil {
		return nil, fmt.Errorf("taste query: %w", err)
	}
	return centroid, nil
}

// BuildKeywordQuery vectorizes text in the TF-IDF keyword space. This is the
// degraded strategy a host selects when the embedding provider is down; the
// resulting vector is only comparable against the keyword index, never against
// stored embeddings.
func (s *Service) BuildKeywordQuery(text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("keyword query: %w", domain.ErrEmptyInput)
	}
	if s.keywords == nil || !s.keywords.Ready() {
		return nil, fmt.Errorf("keyword query: %w", domain.ErrKeywordIndexNotReady)
	}
	return s.keywords.QueryVector(text), nil
}

// Keywords returns the keyword index backing the fallback strategy, or nil.
func (s *Service) Keywords() *KeywordIndex { return s.keywords }

// Package rank scores candidate books against a query vector and returns the
// top matches.
package rank

import (
	"fmt"
	"sort"

	"github.com/shelfmind/shelfmind/internal/domain/book"
	"github.com/shelfmind/shelfmind/internal/domain/recommend"
	"github.com/shelfmind/shelfmind/internal/domain/vecmath"
)

// Option tunes a single ranking call.
type Option func(*options)

type options struct {
	minSimilarity float64
	hasFloor      bool
}

// WithMinSimilarity rejects candidates scoring below floor. Without this
// option no floor is applied; call sites use different thresholds and the
// default must stay permissive.
func WithMinSimilarity(floor float64) Option {
	return func(o *options) {
		o.minSimilarity = floor
		o.hasFloor = true
	}
}

// Rank scores every embeddable candidate by cosine similarity to query, sorts
// descending and returns the first topK. Candidates with exactly equal
// similarity keep their relative input order, so output is deterministic for a
// deterministic input sequence. An empty candidate set or topK <= 0 yields an
// empty result, not an error. A dimension mismatch between query and any
// candidate surfaces immediately.
func Rank(
	query []float32, candidates []book.Record, topK int, opts ...Option,
) ([]recommend.ScoredBook, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if topK <= 0 || len(candidates) == 0 {
		return []recommend.ScoredBook{}, nil
	}

	scored := make([]recommend.ScoredBook, 0, len(candidates))
	for i := range candidates {
		r := &candidates[i]
		if !r.HasEmbedding() {
			continue
		}
		sim, err := vecmath.CosineSimilarity(query, r.Embedding())
		if err != nil {
			return nil, fmt.Errorf("score candidate %s: %w", r.ID(), err)
		}
		if o.hasFloor && sim < o.minSimilarity {
			continue
		}
		scored = append(scored, recommend.NewScoredBook(candidates[i], sim, ""))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity() > scored[j].Similarity()
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

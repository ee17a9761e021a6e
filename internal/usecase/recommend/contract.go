package recommend

import (
	"context"

	"github.com/shelfmind/shelfmind/internal/domain/book"
	domrec "github.com/shelfmind/shelfmind/internal/domain/recommend"
)

// Library is the read-only book store. The snapshot is loaded once per session
// and never refreshed mid-query.
type Library interface {
	Books() []book.Record
	Get(id string) (book.Record, error)
}

// QueryBuilder resolves taste queries into query vectors.
type QueryBuilder interface {
	BuildConceptQuery(ctx context.Context, text string) ([]float32, error)
	BuildAnchorQuery(anchors []book.Record) ([]float32, error)
	BuildTasteQuery(books []book.Record, ratingSet []int) ([]float32, error)
	BuildKeywordQuery(text string) ([]float32, error)
}

// KeywordRanker ranks candidates in the keyword (TF-IDF) space.
type KeywordRanker interface {
	Rank(query []float32, candidates []book.Record, topK int) ([]domrec.ScoredBook, error)
}

// Annotator maps similarity scores to explanation strings.
type Annotator interface {
	Explain(similarity float64, overlap string) string
}

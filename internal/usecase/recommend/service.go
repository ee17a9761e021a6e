// Package recommend orchestrates the recommendation pipeline: resolve the
// query vector, build the candidate pool, rank, annotate reasons.
package recommend

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shelfmind/shelfmind/internal/domain/book"
	domrec "github.com/shelfmind/shelfmind/internal/domain/recommend"
	"github.com/shelfmind/shelfmind/internal/metrics"
	"github.com/shelfmind/shelfmind/internal/usecase/pool"
	"github.com/shelfmind/shelfmind/internal/usecase/rank"
)

// keywordReason labels keyword-space matches; band labels describe embedding
// similarity and would overstate what a TF-IDF match means.
const keywordReason = "Matches your search terms"

// Result is a completed recommendation response.
type Result struct {
	Books []domrec.ScoredBook
	// Query is the resolved query vector in embedding space, for galaxy
	// placement of the query point. Nil for the keyword strategy, whose
	// vector lives in TF-IDF space.
	Query []float32
}

// Service runs recommendation queries against the library snapshot.
type Service struct {
	library  Library
	queries  QueryBuilder
	keywords KeywordRanker
	annotate Annotator
	logger   *zap.Logger
}

// New creates a recommendation service. keywords may be nil when the keyword
// strategy is not wired.
func New(
	library Library, queries QueryBuilder, keywords KeywordRanker,
	annotate Annotator, logger *zap.Logger,
) *Service {
	return &Service{
		library:  library,
		queries:  queries,
		keywords: keywords,
		annotate: annotate,
		logger:   logger,
	}
}

// Recommend executes a recommendation request.
func (s *Service) Recommend(ctx context.Context, req *Request) (Result, error) {
	start := time.Now()

	result, err := s.recommend(ctx, req)

	strategy := string(req.Strategy())
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecommendRequestsTotal.WithLabelValues(strategy, status).Inc()
	metrics.RecommendDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())

	if err != nil {
		return Result{}, err
	}

	s.logger.Debug("Recommendation complete",
		zap.String("strategy", strategy),
		zap.Int("results", len(result.Books)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (s *Service) recommend(ctx context.Context, req *Request) (Result, error) {
	books := s.library.Books()

	if req.Strategy() == StrategyKeyword {
		return s.recommendKeyword(req, books)
	}

	query, sources, err := s.resolveQuery(ctx, req, books)
	if err != nil {
		return Result{}, err
	}

	candidates := s.buildPool(req, books, sources)
	metrics.RecommendPoolSize.WithLabelValues(string(req.Strategy())).Observe(float64(len(candidates)))

	opts := []rank.Option{}
	if floor, ok := req.MinSimilarity(); ok {
		opts = append(opts, rank.WithMinSimilarity(floor))
	}
	scored, err := rank.Rank(query, candidates, req.TopK(), opts...)
	if err != nil {
		return Result{}, fmt.Errorf("rank: %w", err)
	}

	for i := range scored {
		rec := scored[i].Record()
		overlap := overlapReason(&rec, sources)
		scored[i] = scored[i].WithReason(s.annotate.Explain(scored[i].Similarity(), overlap))
	}
	return Result{Books: scored, Query: query}, nil
}

// resolveQuery dispatches on strategy and returns the query vector plus the
// source books the query was derived from (anchor books or the taste profile),
// used for self-exclusion and overlap reasons.
func (s *Service) resolveQuery(
	ctx context.Context, req *Request, books []book.Record,
) ([]float32, []book.Record, error) {
	switch req.Strategy() {
	case StrategyConcept:
		query, err := s.queries.BuildConceptQuery(ctx, req.Text())
		if err != nil {
			return nil, nil, err
		}
		return query, nil, nil

	case StrategyAnchors:
		anchors := make([]book.Record, 0, len(req.AnchorIDs()))
		for _, id := range req.AnchorIDs() {
			r, err := s.library.Get(id)
			if err != nil {
				return nil, nil, fmt.Errorf("anchor %s: %w", id, err)
			}
			anchors = append(anchors, r)
		}
		query, err := s.queries.BuildAnchorQuery(anchors)
		if err != nil {
			return nil, nil, err
		}
		return query, anchors, nil

	case StrategyTaste, StrategyDiscovery:
		query, err := s.queries.BuildTasteQuery(books, req.RatingSet())
		if err != nil {
			return nil, nil, err
		}
		profile := pool.Build(books, pool.ReadStatus(true), pool.RatingIn(req.RatingSet()...))
		return query, profile, nil

	default:
		return nil, nil, fmt.Errorf("unsupported strategy: %s", req.Strategy())
	}
}

// buildPool applies the request filters plus self-exclusion of query sources.
// The popularity limit runs last: it is a pool-shaping step and must precede
// ranking, never follow it.
func (s *Service) buildPool(req *Request, books, sources []book.Record) []book.Record {
	preds := make([]pool.Predicate, 0, 3)
	if req.UnreadOnly() || req.Strategy() == StrategyDiscovery {
		preds = append(preds, pool.ReadStatus(false))
	}
	if req.Genre() != "" {
		preds = append(preds, pool.GenreIs(req.Genre()))
	}
	if len(sources) > 0 {
		ids := make([]string, len(sources))
		for i := range sources {
			ids[i] = sources[i].ID()
		}
		preds = append(preds, pool.ExcludeIDs(ids...))
	}

	candidates := pool.Build(books, preds...)
	if limit := req.PoolLimit(); limit > 0 {
		candidates = pool.TopPopular(candidates, limit)
	}
	return candidates
}

func (s *Service) recommendKeyword(req *Request, books []book.Record) (Result, error) {
	if s.keywords == nil {
		return Result{}, fmt.Errorf("keyword strategy not configured")
	}

	query, err := s.queries.BuildKeywordQuery(req.Text())
	if err != nil {
		return Result{}, err
	}

	candidates := s.buildPool(req, books, nil)
	metrics.RecommendPoolSize.WithLabelValues(string(req.Strategy())).Observe(float64(len(candidates)))

	scored, err := s.keywords.Rank(query, candidates, req.TopK())
	if err != nil {
		return Result{}, fmt.Errorf("keyword rank: %w", err)
	}

	if floor, ok := req.MinSimilarity(); ok {
		kept := scored[:0]
		for _, sb := range scored {
			if sb.Similarity() >= floor {
				kept = append(kept, sb)
			}
		}
		scored = kept
	}
	for i := range scored {
		scored[i] = scored[i].WithReason(keywordReason)
	}
	return Result{Books: scored}, nil
}

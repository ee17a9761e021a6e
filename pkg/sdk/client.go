package sdk

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shelfmind/shelfmind/internal/domain"
	"github.com/shelfmind/shelfmind/internal/domain/book"
	librepo "github.com/shelfmind/shelfmind/internal/repository/library"
	galaxyuc "github.com/shelfmind/shelfmind/internal/usecase/galaxy"
	queryuc "github.com/shelfmind/shelfmind/internal/usecase/query"
	reasonuc "github.com/shelfmind/shelfmind/internal/usecase/reason"
	recommenduc "github.com/shelfmind/shelfmind/internal/usecase/recommend"
)

// Client is the shelfmind SDK entry point.
type Client struct {
	store     *librepo.Store
	queries   *queryuc.Service
	recommend *recommenduc.Service
	galaxy    *galaxyuc.Service
}

// New creates a Client over a library snapshot.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := createStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	return wireClient(store, cfg, logger)
}

func createStore(cfg *clientConfig, logger *zap.Logger) (*librepo.Store, error) {
	if len(cfg.books) > 0 {
		records := make([]book.Record, len(cfg.books))
		for i, b := range cfg.books {
			rec, err := book.New(book.Attrs{
				ID:           b.ID,
				Title:        b.Title,
				Author:       b.Author,
				Embedding:    b.Embedding,
				IsRead:       b.IsRead,
				Rating:       b.Rating,
				AvgRating:    b.AvgRating,
				GenrePrimary: b.GenrePrimary,
				Genres:       b.Genres,
				Popularity:   b.Popularity,
			})
			if err != nil {
				return nil, fmt.Errorf("shelfmind: book %q: %w", b.ID, err)
			}
			records[i] = rec
		}
		s, err := librepo.New(records)
		if err != nil {
			return nil, fmt.Errorf("shelfmind: build library: %w", err)
		}
		return s, nil
	}

	if cfg.snapshotPath != "" {
		s, err := librepo.Load(cfg.snapshotPath, logger)
		if err != nil {
			return nil, fmt.Errorf("shelfmind: load snapshot: %w", err)
		}
		return s, nil
	}

	return nil, errors.New("shelfmind: library source required (use WithSnapshotPath or WithBooks)")
}

func wireClient(store *librepo.Store, cfg *clientConfig, logger *zap.Logger) (*Client, error) {
	keywords := queryuc.NewKeywordIndex()
	if err := keywords.Fit(store.Books()); err != nil {
		return nil, fmt.Errorf("shelfmind: fit keyword index: %w", err)
	}

	// Pass nil interface when no embedder is configured; concept queries
	// then fail with ErrEmbeddingProviderUnavailable.
	var domEmb domain.Embedder
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}

	queries := queryuc.New(domEmb, keywords, cfg.embedTimeout, logger)
	recommend := recommenduc.New(store, queries, keywords, reasonuc.NewDefault(), logger)

	var projector galaxyuc.Projector
	if cfg.usePCA {
		p, err := galaxyuc.FitPCA(store.Embeddings(), cfg.galaxyScale)
		if err != nil {
			return nil, fmt.Errorf("shelfmind: fit pca projector: %w", err)
		}
		projector = p
	} else {
		projector = galaxyuc.NewAxisProjector(cfg.galaxyScale)
	}

	return &Client{
		store:     store,
		queries:   queries,
		recommend: recommend,
		galaxy:    galaxyuc.New(projector, logger),
	}, nil
}

// Recommend runs a recommendation query.
func (c *Client) Recommend(ctx context.Context, req RecommendRequest) ([]Recommendation, error) {
	domReq, err := recommenduc.NewRequest(recommenduc.Params{
		Strategy:      recommenduc.Strategy(req.Strategy),
		Text:          req.Query,
		AnchorIDs:     req.AnchorIDs,
		RatingSet:     req.RatingSet,
		Genre:         req.Genre,
		UnreadOnly:    req.UnreadOnly,
		TopK:          req.TopK,
		MinSimilarity: req.MinSimilarity,
	})
	if err != nil {
		return nil, err
	}

	result, err := c.recommend.Recommend(ctx, domReq)
	if err != nil {
		return nil, err
	}

	picks := make([]Recommendation, len(result.Books))
	for i := range result.Books {
		sb := &result.Books[i]
		rec := sb.Record()
		picks[i] = Recommendation{
			ID:           rec.ID(),
			Title:        rec.Title(),
			Author:       rec.Author(),
			GenrePrimary: rec.GenrePrimary(),
			Similarity:   sb.Similarity(),
			Reason:       sb.Reason(),
		}
	}
	return picks, nil
}

// Galaxy places every embedded book in 3D display space.
func (c *Client) Galaxy() ([]GalaxyPoint, error) {
	points, err := c.galaxy.Map(c.store.Books())
	if err != nil {
		return nil, err
	}

	out := make([]GalaxyPoint, len(points))
	for i, p := range points {
		out[i] = GalaxyPoint{
			ID:    p.ID,
			Title: p.Title,
			X:     p.Point.X,
			Y:     p.Point.Y,
			Z:     p.Point.Z,
		}
	}
	return out, nil
}

// Book looks up a single library entry by ID.
func (c *Client) Book(id string) (Book, error) {
	rec, err := c.store.Get(id)
	if err != nil {
		return Book{}, err
	}
	return Book{
		ID:           rec.ID(),
		Title:        rec.Title(),
		Author:       rec.Author(),
		Embedding:    rec.Embedding(),
		IsRead:       rec.IsRead(),
		Rating:       rec.Rating(),
		AvgRating:    rec.AvgRating(),
		GenrePrimary: rec.GenrePrimary(),
		Genres:       rec.Genres(),
		Popularity:   rec.Popularity(),
	}, nil
}

// Stats summarizes the loaded library.
func (c *Client) Stats() Stats {
	return Stats{
		Books:         c.store.Count(),
		EmbeddedBooks: c.store.CountEmbedded(),
		Dimensions:    c.store.Dimensions(),
	}
}

// embedderAdapter lifts the public Embedder into the domain contract.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vec, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

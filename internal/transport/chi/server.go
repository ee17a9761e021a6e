// Package chi exposes the shelfmind HTTP API.
package chi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shelfmind/shelfmind/internal/domain"
	domrec "github.com/shelfmind/shelfmind/internal/domain/recommend"
	librepo "github.com/shelfmind/shelfmind/internal/repository/library"
	galaxyuc "github.com/shelfmind/shelfmind/internal/usecase/galaxy"
	healthuc "github.com/shelfmind/shelfmind/internal/usecase/health"
	queryuc "github.com/shelfmind/shelfmind/internal/usecase/query"
	recommenduc "github.com/shelfmind/shelfmind/internal/usecase/recommend"
)

// errorCode is a machine-readable error code in API responses.
type errorCode string

const (
	codeBadRequest               errorCode = "bad_request"
	codeUnauthorized             errorCode = "unauthorized"
	codeBookNotFound             errorCode = "book_not_found"
	codeEmptyProfile             errorCode = "empty_profile"
	codeMissingEmbedding         errorCode = "missing_embedding"
	codeDimensionMismatch        errorCode = "dimension_mismatch"
	codeInsufficientDimensions   errorCode = "insufficient_dimensions"
	codeEmbeddingProviderError   errorCode = "embedding_provider_unavailable"
	codeEmbeddingProviderTimeout errorCode = "embedding_provider_timeout"
	codeKeywordIndexNotReady     errorCode = "keyword_index_not_ready"
	codeLibraryNotLoaded         errorCode = "library_not_loaded"
	codeInternalError            errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the use case services into chi handlers.
type Server struct {
	recommend     *recommenduc.Service
	queries       *queryuc.Service
	galaxy        *galaxyuc.Service
	library       *librepo.Store
	health        *healthuc.Service
	defaults      recommenduc.Defaults
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recommend *recommenduc.Service,
	queries *queryuc.Service,
	galaxy *galaxyuc.Service,
	library *librepo.Store,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommend: recommend,
		queries:   queries,
		galaxy:    galaxy,
		library:   library,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrEmptyInput, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrBookNotFound, http.StatusNotFound, codeBookNotFound),
		sentinelHandler(domain.ErrEmptyProfile, http.StatusUnprocessableEntity, codeEmptyProfile),
		sentinelHandler(domain.ErrMissingEmbedding, http.StatusUnprocessableEntity, codeMissingEmbedding),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusInternalServerError, codeDimensionMismatch),
		sentinelHandler(domain.ErrInsufficientDimensions,
			http.StatusInternalServerError, codeInsufficientDimensions),
		sentinelHandler(domain.ErrEmbeddingProviderUnavailable,
			http.StatusBadGateway, codeEmbeddingProviderError),
		sentinelHandler(domain.ErrEmbeddingProviderTimeout,
			http.StatusGatewayTimeout, codeEmbeddingProviderTimeout),
		sentinelHandler(domain.ErrKeywordIndexNotReady,
			http.StatusServiceUnavailable, codeKeywordIndexNotReady),
		sentinelHandler(domain.ErrLibraryNotLoaded, http.StatusServiceUnavailable, codeLibraryNotLoaded),
	}
	return s
}

// WithRecommendDefaults overrides the package fallbacks for unset
// recommendation parameters with configured values.
func (s *Server) WithRecommendDefaults(d recommenduc.Defaults) *Server {
	s.defaults = d
	return s
}

// Register mounts all API routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommendations", s.CreateRecommendations)
		r.Get("/galaxy", s.GetGalaxy)
		r.Post("/galaxy/query", s.PlaceGalaxyQuery)
		r.Get("/library/stats", s.GetLibraryStats)
		r.Get("/books/{bookID}", s.GetBook)
	})
}

type recommendRequest struct {
	Strategy      string   `json:"strategy"`
	Query         string   `json:"query,omitempty"`
	AnchorIDs     []string `json:"anchor_ids,omitempty"`
	RatingSet     []int    `json:"rating_set,omitempty"`
	Genre         string   `json:"genre,omitempty"`
	UnreadOnly    bool     `json:"unread_only,omitempty"`
	TopK          int      `json:"top_k,omitempty"`
	PoolLimit     int      `json:"pool_limit,omitempty"`
	MinSimilarity *float64 `json:"min_similarity,omitempty"`
}

type recommendedBook struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	GenrePrimary string  `json:"genre_primary,omitempty"`
	AvgRating    float64 `json:"avg_rating,omitempty"`
	Popularity   float64 `json:"popularity,omitempty"`
	CoverURL     string  `json:"cover_url,omitempty"`
	Description  string  `json:"description,omitempty"`
	Similarity   float64 `json:"similarity"`
	Reason       string  `json:"reason,omitempty"`
}

type recommendResponse struct {
	Strategy string            `json:"strategy"`
	Books    []recommendedBook `json:"books"`
	Count    int               `json:"count"`
}

// CreateRecommendations handles POST /api/v1/recommendations.
func (s *Server) CreateRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	domReq, err := recommenduc.NewRequestWithDefaults(recommenduc.Params{
		Strategy:      recommenduc.Strategy(req.Strategy),
		Text:          req.Query,
		AnchorIDs:     req.AnchorIDs,
		RatingSet:     req.RatingSet,
		Genre:         req.Genre,
		UnreadOnly:    req.UnreadOnly,
		TopK:          req.TopK,
		PoolLimit:     req.PoolLimit,
		MinSimilarity: req.MinSimilarity,
	}, s.defaults)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	result, err := s.recommend.Recommend(r.Context(), domReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	books := make([]recommendedBook, len(result.Books))
	for i := range result.Books {
		books[i] = scoredToResponse(&result.Books[i])
	}

	writeJSON(w, http.StatusOK, recommendResponse{
		Strategy: req.Strategy,
		Books:    books,
		Count:    len(books),
	})
}

type galaxyResponse struct {
	Points []galaxyuc.BookPoint `json:"points"`
	Count  int                  `json:"count"`
}

// GetGalaxy handles GET /api/v1/galaxy.
func (s *Server) GetGalaxy(w http.ResponseWriter, r *http.Request) {
	points, err := s.galaxy.Map(s.library.Books())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, galaxyResponse{Points: points, Count: len(points)})
}

type galaxyQueryRequest struct {
	Query string `json:"query"`
}

type galaxyQueryResponse struct {
	Point galaxyuc.Point `json:"point"`
}

// PlaceGalaxyQuery handles POST /api/v1/galaxy/query.
// Embeds the free text query and places it among the library points.
func (s *Server) PlaceGalaxyQuery(w http.ResponseWriter, r *http.Request) {
	var req galaxyQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	vec, err := s.queries.BuildConceptQuery(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	point, err := s.galaxy.MapQuery(vec)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, galaxyQueryResponse{Point: point})
}

type libraryStatsResponse struct {
	Books             int  `json:"books"`
	EmbeddedBooks     int  `json:"embedded_books"`
	Dimensions        int  `json:"dimensions"`
	KeywordIndexReady bool `json:"keyword_index_ready"`
}

// GetLibraryStats handles GET /api/v1/library/stats.
func (s *Server) GetLibraryStats(w http.ResponseWriter, r *http.Request) {
	ready := false
	if kw := s.queries.Keywords(); kw != nil {
		ready = kw.Ready()
	}

	writeJSON(w, http.StatusOK, libraryStatsResponse{
		Books:             s.library.Count(),
		EmbeddedBooks:     s.library.CountEmbedded(),
		Dimensions:        s.library.Dimensions(),
		KeywordIndexReady: ready,
	})
}

type bookResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	GenrePrimary string   `json:"genre_primary,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	IsRead       bool     `json:"is_read"`
	Rating       int      `json:"rating,omitempty"`
	AvgRating    float64  `json:"avg_rating,omitempty"`
	Popularity   float64  `json:"popularity,omitempty"`
	CoverURL     string   `json:"cover_url,omitempty"`
	Description  string   `json:"description,omitempty"`
	HasEmbedding bool     `json:"has_embedding"`
}

// GetBook handles GET /api/v1/books/{bookID}.
func (s *Server) GetBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookID")

	rec, err := s.library.Get(id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookResponse{
		ID:           rec.ID(),
		Title:        rec.Title(),
		Author:       rec.Author(),
		GenrePrimary: rec.GenrePrimary(),
		Genres:       rec.Genres(),
		IsRead:       rec.IsRead(),
		Rating:       rec.Rating(),
		AvgRating:    rec.AvgRating(),
		Popularity:   rec.Popularity(),
		CoverURL:     payloadString(rec.Payload(), "cover_url"),
		Description:  payloadString(rec.Payload(), "description"),
		HasEmbedding: rec.HasEmbedding(),
	})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func scoredToResponse(sb *domrec.ScoredBook) recommendedBook {
	rec := sb.Record()
	return recommendedBook{
		ID:           rec.ID(),
		Title:        rec.Title(),
		Author:       rec.Author(),
		GenrePrimary: rec.GenrePrimary(),
		AvgRating:    rec.AvgRating(),
		Popularity:   rec.Popularity(),
		CoverURL:     payloadString(rec.Payload(), "cover_url"),
		Description:  payloadString(rec.Payload(), "description"),
		Similarity:   sb.Similarity(),
		Reason:       sb.Reason(),
	}
}

func payloadString(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrEmptyInput,
		domain.ErrBookNotFound,
		domain.ErrEmptyProfile,
		domain.ErrMissingEmbedding,
		domain.ErrDimensionMismatch,
		domain.ErrInsufficientDimensions,
		domain.ErrEmbeddingProviderUnavailable,
		domain.ErrEmbeddingProviderTimeout,
		domain.ErrKeywordIndexNotReady,
		domain.ErrLibraryNotLoaded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// statusClientClosedRequest is the nginx convention for a request the client
// abandoned before a response was written.
const statusClientClosedRequest = 499

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	// The client went away; not a server error, keep it out of the error logs.
	if errors.Is(err, context.Canceled) {
		s.logger.Debug("request canceled", zap.Error(err))
		w.WriteHeader(statusClientClosedRequest)
		return
	}

	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

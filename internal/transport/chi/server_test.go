package chi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/shelfmind/shelfmind/internal/domain"
	"github.com/shelfmind/shelfmind/internal/domain/book"
	librepo "github.com/shelfmind/shelfmind/internal/repository/library"
	galaxyuc "github.com/shelfmind/shelfmind/internal/usecase/galaxy"
	healthuc "github.com/shelfmind/shelfmind/internal/usecase/health"
	queryuc "github.com/shelfmind/shelfmind/internal/usecase/query"
	reasonuc "github.com/shelfmind/shelfmind/internal/usecase/reason"
	recommenduc "github.com/shelfmind/shelfmind/internal/usecase/recommend"
)

// flatProjector maps the first three embedding components straight to display
// space so handler tests do not need full-width embeddings.
type flatProjector struct{}

func (flatProjector) Project(embedding []float32) (galaxyuc.Point, error) {
	return galaxyuc.Point{
		X: float64(embedding[0]),
		Y: float64(embedding[1]),
		Z: float64(embedding[2]),
	}, nil
}

func mustBook(t *testing.T, a book.Attrs) book.Record {
	t.Helper()
	rec, err := book.New(a)
	if err != nil {
		t.Fatalf("new book %s: %v", a.ID, err)
	}
	return rec
}

func testLibrary(t *testing.T) *librepo.Store {
	t.Helper()
	books := []book.Record{
		mustBook(t, book.Attrs{
			ID: "b1", Title: "Dune", Author: "Frank Herbert",
			Embedding: []float32{1, 0, 0}, IsRead: true, Rating: 5,
			GenrePrimary: "science-fiction", AvgRating: 4.3, Popularity: 0.9,
			Payload: map[string]any{"cover_url": "https://covers.example/dune.jpg"},
		}),
		mustBook(t, book.Attrs{
			ID: "b2", Title: "Dune Messiah", Author: "Frank Herbert",
			Embedding: []float32{0.9, 0.1, 0}, IsRead: false,
			GenrePrimary: "science-fiction", AvgRating: 3.9, Popularity: 0.7,
		}),
		mustBook(t, book.Attrs{
			ID: "b3", Title: "Gardening Basics", Author: "Lou Trowel",
			Embedding: []float32{0, 0, 1}, IsRead: false,
			GenrePrimary: "gardening", AvgRating: 4.0, Popularity: 0.2,
		}),
	}

	store, err := librepo.New(books)
	if err != nil {
		t.Fatalf("new library: %v", err)
	}
	return store
}

// errEmbedder fails every call with a fixed error.
type errEmbedder struct {
	err error
}

func (e *errEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, e.err
}

func buildTestRouter(t *testing.T, emb queryuc.Embedder, defaults recommenduc.Defaults) http.Handler {
	t.Helper()
	store := testLibrary(t)

	keywords := queryuc.NewKeywordIndex()
	if err := keywords.Fit(store.Books()); err != nil {
		t.Fatalf("fit keyword index: %v", err)
	}

	queries := queryuc.New(emb, keywords, 0, zap.NewNop())
	recSvc := recommenduc.New(store, queries, keywords, reasonuc.NewDefault(), zap.NewNop())
	galaxySvc := galaxyuc.New(flatProjector{}, zap.NewNop())
	healthSvc := healthuc.New(store, nil)

	srv := NewServer(recSvc, queries, galaxySvc, store, healthSvc, zap.NewNop()).
		WithRecommendDefaults(defaults)
	r := chirouter.NewRouter()
	srv.Register(r)
	return r
}

func newTestRouter(t *testing.T) http.Handler {
	return buildTestRouter(t, nil, recommenduc.Defaults{})
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRecommendations_Taste(t *testing.T) {
	h := newTestRouter(t)

	rr := postJSON(t, h, "/api/v1/recommendations", recommendRequest{Strategy: "taste"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp recommendResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count == 0 {
		t.Fatal("expected at least one recommendation")
	}
	for _, b := range resp.Books {
		if b.ID == "b1" {
			t.Error("taste profile book b1 must not be recommended to itself")
		}
	}
	if resp.Books[0].ID != "b2" {
		t.Errorf("top pick: got %s, want b2", resp.Books[0].ID)
	}
}

func TestRecommendations_UnknownStrategy_400(t *testing.T) {
	h := newTestRouter(t)

	rr := postJSON(t, h, "/api/v1/recommendations", recommendRequest{Strategy: "astrology"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != codeBadRequest {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeBadRequest)
	}
}

func TestRecommendations_ConceptWithoutProvider_502(t *testing.T) {
	h := newTestRouter(t)

	rr := postJSON(t, h, "/api/v1/recommendations",
		recommendRequest{Strategy: "concept", Query: "desert planets"})
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadGateway)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != codeEmbeddingProviderError {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeEmbeddingProviderError)
	}
}

func TestRecommendations_Keyword(t *testing.T) {
	h := newTestRouter(t)

	rr := postJSON(t, h, "/api/v1/recommendations",
		recommendRequest{Strategy: "keyword", Query: "dune"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp recommendResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count == 0 {
		t.Fatal("expected keyword matches for 'dune'")
	}
	for _, b := range resp.Books {
		if b.Reason != "Matches your search terms" {
			t.Errorf("book %s: unexpected reason %q", b.ID, b.Reason)
		}
	}
}

func TestRecommendations_ConfiguredTopKDefault(t *testing.T) {
	h := buildTestRouter(t, nil, recommenduc.Defaults{TopK: 1})

	rr := postJSON(t, h, "/api/v1/recommendations", recommendRequest{Strategy: "taste"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp recommendResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count: got %d, want 1 (configured default)", resp.Count)
	}

	// An explicit top_k on the request still wins over the configured default.
	rr = postJSON(t, h, "/api/v1/recommendations",
		recommendRequest{Strategy: "taste", TopK: 2})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp = recommendResponse{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count: got %d, want 2 (explicit top_k)", resp.Count)
	}
}

func TestRecommendations_ClientCanceled_499(t *testing.T) {
	h := buildTestRouter(t, &errEmbedder{err: context.Canceled}, recommenduc.Defaults{})

	rr := postJSON(t, h, "/api/v1/recommendations",
		recommendRequest{Strategy: "concept", Query: "desert planets"})
	if rr.Code != statusClientClosedRequest {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, statusClientClosedRequest, rr.Body.String())
	}
	if rr.Body.Len() != 0 {
		t.Errorf("expected empty body on canceled request, got %q", rr.Body.String())
	}
}

func TestGetBook_OK(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/books/b1", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp bookResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Title != "Dune" {
		t.Errorf("title: got %q, want Dune", resp.Title)
	}
	if resp.CoverURL != "https://covers.example/dune.jpg" {
		t.Errorf("cover url: got %q", resp.CoverURL)
	}
	if !resp.HasEmbedding {
		t.Error("expected has_embedding=true")
	}
}

func TestGetBook_NotFound_404(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/books/missing", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != codeBookNotFound {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeBookNotFound)
	}
}

func TestGetLibraryStats(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/library/stats", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp libraryStatsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Books != 3 {
		t.Errorf("books: got %d, want 3", resp.Books)
	}
	if resp.EmbeddedBooks != 3 {
		t.Errorf("embedded books: got %d, want 3", resp.EmbeddedBooks)
	}
	if resp.Dimensions != 3 {
		t.Errorf("dimensions: got %d, want 3", resp.Dimensions)
	}
	if !resp.KeywordIndexReady {
		t.Error("expected keyword index ready")
	}
}

func TestGetGalaxy(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/galaxy", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp galaxyResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 3 {
		t.Errorf("points: got %d, want 3", resp.Count)
	}
}

func TestHealthCheck_OK(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status: got %q, want ok", resp.Status)
	}
	if resp.Checks["library"] != "ok" {
		t.Errorf("library check: got %q, want ok", resp.Checks["library"])
	}
}

package sdk

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return s.vec, s.err
}

func testBooks() []Book {
	return []Book{
		{
			ID: "b1", Title: "Dune", Author: "Frank Herbert",
			Embedding: []float32{1, 0, 0}, IsRead: true, Rating: 5,
			GenrePrimary: "science-fiction", Popularity: 0.9,
		},
		{
			ID: "b2", Title: "Dune Messiah", Author: "Frank Herbert",
			Embedding: []float32{0.9, 0.1, 0},
			GenrePrimary: "science-fiction", Popularity: 0.7,
		},
		{
			ID: "b3", Title: "Gardening Basics", Author: "Lou Trowel",
			Embedding: []float32{0, 0, 1},
			GenrePrimary: "gardening", Popularity: 0.2,
		},
	}
}

func TestNew_NoSource(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no library source is given")
	}
}

func TestRecommend_Taste(t *testing.T) {
	client, err := New(WithBooks(testBooks()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	picks, err := client.Recommend(context.Background(), RecommendRequest{Strategy: StrategyTaste})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(picks) == 0 {
		t.Fatal("expected recommendations")
	}
	if picks[0].ID != "b2" {
		t.Errorf("top pick: got %s, want b2", picks[0].ID)
	}
	for _, p := range picks {
		if p.ID == "b1" {
			t.Error("profile book b1 must not appear in its own recommendations")
		}
	}
}

func TestRecommend_Concept(t *testing.T) {
	client, err := New(
		WithBooks(testBooks()),
		WithEmbedder(&stubEmbedder{vec: []float32{0, 0, 1}}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	picks, err := client.Recommend(context.Background(),
		RecommendRequest{Strategy: StrategyConcept, Query: "growing vegetables", TopK: 1})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(picks) != 1 {
		t.Fatalf("picks: got %d, want 1", len(picks))
	}
	if picks[0].ID != "b3" {
		t.Errorf("top pick: got %s, want b3", picks[0].ID)
	}
}

func TestRecommend_ConceptWithoutEmbedder(t *testing.T) {
	client, err := New(WithBooks(testBooks()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Recommend(context.Background(),
		RecommendRequest{Strategy: StrategyConcept, Query: "anything"})
	if !errors.Is(err, ErrEmbeddingProviderUnavailable) {
		t.Errorf("expected ErrEmbeddingProviderUnavailable, got %v", err)
	}
}

func TestRecommend_Keyword(t *testing.T) {
	client, err := New(WithBooks(testBooks()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	picks, err := client.Recommend(context.Background(),
		RecommendRequest{Strategy: StrategyKeyword, Query: "gardening"})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(picks) != 1 || picks[0].ID != "b3" {
		t.Fatalf("expected only b3 for 'gardening', got %v", picks)
	}
}

func TestRecommend_UnknownAnchor(t *testing.T) {
	client, err := New(WithBooks(testBooks()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Recommend(context.Background(),
		RecommendRequest{Strategy: StrategyAnchors, AnchorIDs: []string{"missing"}})
	if !errors.Is(err, ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound, got %v", err)
	}
}

func TestBook_Lookup(t *testing.T) {
	client, err := New(WithBooks(testBooks()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	b, err := client.Book("b1")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if b.Title != "Dune" {
		t.Errorf("title: got %q, want Dune", b.Title)
	}

	if _, err := client.Book("missing"); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound, got %v", err)
	}
}

func TestStats(t *testing.T) {
	client, err := New(WithBooks(testBooks()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	stats := client.Stats()
	if stats.Books != 3 || stats.EmbeddedBooks != 3 || stats.Dimensions != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestGalaxy_PCA(t *testing.T) {
	client, err := New(WithBooks(testBooks()), WithPCAGalaxy())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	points, err := client.Galaxy()
	if err != nil {
		t.Fatalf("galaxy: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("points: got %d, want 3", len(points))
	}
}

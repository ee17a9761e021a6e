package pool

import (
	"testing"

	"github.com/shelfmind/shelfmind/internal/domain/book"
)

func makeBook(t *testing.T, a book.Attrs) book.Record {
	t.Helper()
	if a.Embedding == nil {
		a.Embedding = []float32{0.1, 0.2, 0.3}
	}
	r, err := book.New(a)
	if err != nil {
		t.Fatalf("make book %q: %v", a.ID, err)
	}
	return r
}

func ids(books []book.Record) []string {
	out := make([]string, len(books))
	for i := range books {
		out[i] = books[i].ID()
	}
	return out
}

func TestBuild_DropsRecordsWithoutEmbeddings(t *testing.T) {
	noEmb, err := book.New(book.Attrs{ID: "no-emb"})
	if err != nil {
		t.Fatal(err)
	}
	books := []book.Record{
		makeBook(t, book.Attrs{ID: "a"}),
		noEmb,
		makeBook(t, book.Attrs{ID: "b"}),
	}

	got := Build(books)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	for _, r := range got {
		if !r.HasEmbedding() {
			t.Errorf("record %s has no embedding", r.ID())
		}
	}
}

func TestBuild_Conjunction(t *testing.T) {
	books := []book.Record{
		makeBook(t, book.Attrs{ID: "read5", IsRead: true, Rating: 5}),
		makeBook(t, book.Attrs{ID: "read3", IsRead: true, Rating: 3}),
		makeBook(t, book.Attrs{ID: "unread", IsRead: false, Rating: 5}),
	}

	got := Build(books, ReadStatus(true), RatingIn(5, 4))
	if len(got) != 1 || got[0].ID() != "read5" {
		t.Fatalf("expected [read5], got %v", ids(got))
	}
}

func TestBuild_GenreAndExclusion(t *testing.T) {
	books := []book.Record{
		makeBook(t, book.Attrs{ID: "a", GenrePrimary: "Fantasy"}),
		makeBook(t, book.Attrs{ID: "b", Genres: []string{"Fantasy", "Adventure"}}),
		makeBook(t, book.Attrs{ID: "c", GenrePrimary: "History"}),
	}

	got := Build(books, GenreIs("Fantasy"), ExcludeIDs("a"))
	if len(got) != 1 || got[0].ID() != "b" {
		t.Fatalf("expected [b], got %v", ids(got))
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	if got := Build(nil); len(got) != 0 {
		t.Fatalf("expected empty pool, got %d", len(got))
	}
}

func TestTopPopular(t *testing.T) {
	books := []book.Record{
		makeBook(t, book.Attrs{ID: "low", Popularity: 1}),
		makeBook(t, book.Attrs{ID: "high", Popularity: 10}),
		makeBook(t, book.Attrs{ID: "mid", Popularity: 5}),
	}

	got := TopPopular(books, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID() != "high" || got[1].ID() != "mid" {
		t.Errorf("expected [high mid], got %v", ids(got))
	}

	// Input order untouched
	if books[0].ID() != "low" {
		t.Error("TopPopular mutated its input")
	}
}

func TestTopPopular_Bounds(t *testing.T) {
	books := []book.Record{makeBook(t, book.Attrs{ID: "a"})}

	if got := TopPopular(books, 0); got != nil {
		t.Errorf("expected nil for n=0, got %v", ids(got))
	}
	if got := TopPopular(books, 5); len(got) != 1 {
		t.Errorf("expected all records when n exceeds len, got %d", len(got))
	}
}

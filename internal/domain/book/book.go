// Package book holds the immutable catalog record the recommender operates on.
package book

import "fmt"

// MaxRating is the upper bound of the personal rating scale (0 = unrated).
const MaxRating = 5

// Attrs carries the raw fields of a catalog entry into the Record constructor.
type Attrs struct {
	ID           string
	Title        string
	Author       string
	Embedding    []float32 // nil when no embedding was computed upstream
	IsRead       bool
	Rating       int
	AvgRating    float64
	GenrePrimary string
	Genres       []string
	Popularity   float64
	Payload      map[string]any // display-only fields, passed through untouched
}

// Record is one catalog entry (immutable value object).
// Display-only payload is carried through unchanged; the core never inspects it.
type Record struct {
	id           string
	title        string
	author       string
	embedding    []float32
	isRead       bool
	rating       int
	avgRating    float64
	genrePrimary string
	genres       []string
	popularity   float64
	payload      map[string]any
}

// New validates and creates a Record.
func New(a Attrs) (Record, error) {
	if a.ID == "" {
		return Record{}, fmt.Errorf("book ID is required")
	}
	if a.Rating < 0 || a.Rating > MaxRating {
		return Record{}, fmt.Errorf("rating must be between 0 and %d, got %d", MaxRating, a.Rating)
	}
	return Record{
		id:           a.ID,
		title:        a.Title,
		author:       a.Author,
		embedding:    a.Embedding,
		isRead:       a.IsRead,
		rating:       a.Rating,
		avgRating:    a.AvgRating,
		genrePrimary: a.GenrePrimary,
		genres:       a.Genres,
		popularity:   a.Popularity,
		payload:      a.Payload,
	}, nil
}

// ID returns the stable unique identifier.
func (r Record) ID() string { return r.id }

// Title returns the display title.
func (r Record) Title() string { return r.title }

// Author returns the display author.
func (r Record) Author() string { return r.author }

// Embedding returns the embedding vector, or nil if none was computed.
func (r Record) Embedding() []float32 { return r.embedding }

// HasEmbedding reports whether the record carries an embedding.
func (r Record) HasEmbedding() bool { return len(r.embedding) > 0 }

// IsRead reports whether the user has read this book.
func (r Record) IsRead() bool { return r.isRead }

// Rating returns the personal rating, 0-5 (0 = unrated).
func (r Record) Rating() int { return r.rating }

// AvgRating returns the public aggregate rating (0 if unknown).
func (r Record) AvgRating() float64 { return r.avgRating }

// GenrePrimary returns the coarse category, possibly empty.
func (r Record) GenrePrimary() string { return r.genrePrimary }

// Genres returns the genre list (may be empty).
func (r Record) Genres() []string { return r.genres }

// HasGenre reports whether g appears in the genre list or as the primary genre.
func (r Record) HasGenre(g string) bool {
	if g == "" {
		return false
	}
	if r.genrePrimary == g {
		return true
	}
	for _, x := range r.genres {
		if x == g {
			return true
		}
	}
	return false
}

// Popularity returns the popularity score used for pool pre-filtering.
func (r Record) Popularity() float64 { return r.popularity }

// Payload returns the opaque display-only fields.
func (r Record) Payload() map[string]any { return r.payload }

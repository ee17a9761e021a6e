package library

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/shelfmind/shelfmind/internal/domain/book"
)

// bookDTO matches one entry of the library_with_embeddings.json artifact
// produced by the offline enrichment pipeline.
type bookDTO struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	MyRating        int       `json:"my_rating"`
	AvgRating       float64   `json:"avg_rating"`
	Shelf           string    `json:"shelf"`
	IsRead          bool      `json:"is_read"`
	DateRead        *string   `json:"date_read"`
	Pages           *int      `json:"pages"`
	YearPublished   *int      `json:"year_published"`
	Description     string    `json:"description"`
	Genres          genreList `json:"genres"`
	GenrePrimary    string    `json:"genre_primary"`
	CoverURL        *string   `json:"cover_url"`
	PopularityScore float64   `json:"popularity_score"`
	Embedding       []float32 `json:"embedding"`
}

// genreList tolerates both encodings the pipeline has produced over time:
// a JSON array and a JSON string containing an encoded array.
type genreList []string

func (g *genreList) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*g = nil
		return nil
	}
	if data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("genres array: %w", err)
		}
		*g = list
		return nil
	}
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return fmt.Errorf("genres string: %w", err)
	}
	if encoded == "" || encoded == "[]" {
		*g = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(encoded), &list); err != nil {
		return fmt.Errorf("genres nested array: %w", err)
	}
	*g = list
	return nil
}

// toRecord converts a raw library entry into a domain record. Display-only
// fields travel in the payload untouched.
func (d *bookDTO) toRecord() (book.Record, error) {
	payload := map[string]any{
		"description": d.Description,
		"shelf":       d.Shelf,
	}
	if d.ISBN != "" {
		payload["isbn"] = d.ISBN
	}
	if d.CoverURL != nil {
		payload["cover_url"] = *d.CoverURL
	}
	if d.DateRead != nil {
		payload["date_read"] = *d.DateRead
	}
	if d.Pages != nil {
		payload["pages"] = *d.Pages
	}
	if d.YearPublished != nil {
		payload["year_published"] = *d.YearPublished
	}

	return book.New(book.Attrs{
		ID:           d.ID,
		Title:        d.Title,
		Author:       d.Author,
		Embedding:    d.Embedding,
		IsRead:       d.IsRead,
		Rating:       d.MyRating,
		AvgRating:    d.AvgRating,
		GenrePrimary: d.GenrePrimary,
		Genres:       d.Genres,
		Popularity:   d.PopularityScore,
		Payload:      payload,
	})
}

package galaxy

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/shelfmind/shelfmind/internal/domain/book"
)

// BookPoint is one placed book in the galaxy view.
type BookPoint struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	GenrePrimary string `json:"genre_primary,omitempty"`
	IsRead       bool   `json:"is_read"`
	Rating       int    `json:"rating"`
	Point        Point  `json:"point"`
}

// Service places library books and query points in display space.
type Service struct {
	projector Projector
	logger    *zap.Logger
}

// New creates a galaxy service around the given projector.
func New(projector Projector, logger *zap.Logger) *Service {
	return &Service{projector: projector, logger: logger}
}

// Map projects every embeddable book. Records without embeddings are excluded
// up front (they have no place in the galaxy); a projection failure on a
// present embedding is a data defect and surfaces immediately.
func (s *Service) Map(books []book.Record) ([]BookPoint, error) {
	points := make([]BookPoint, 0, len(books))
	for i := range books {
		r := &books[i]
		if !r.HasEmbedding() {
			continue
		}
		pt, err := s.projector.Project(r.Embedding())
		if err != nil {
			return nil, fmt.Errorf("project book %s: %w", r.ID(), err)
		}
		points = append(points, BookPoint{
			ID:           r.ID(),
			Title:        r.Title(),
			Author:       r.Author(),
			GenrePrimary: r.GenrePrimary(),
			IsRead:       r.IsRead(),
			Rating:       r.Rating(),
			Point:        pt,
		})
	}
	s.logger.Debug("Mapped galaxy", zap.Int("books", len(points)))
	return points, nil
}

// MapQuery projects a query vector into the same display space as the books.
func (s *Service) MapQuery(query []float32) (Point, error) {
	pt, err := s.projector.Project(query)
	if err != nil {
		return Point{}, fmt.Errorf("project query: %w", err)
	}
	return pt, nil
}

// Package recommend holds the result types produced by the ranking pipeline.
package recommend

import "github.com/shelfmind/shelfmind/internal/domain/book"

// ScoredBook is a single ranked recommendation. It references the source
// record, never a mutated copy.
type ScoredBook struct {
	record     book.Record
	similarity float64
	reason     string
}

// NewScoredBook creates a scored recommendation.
func NewScoredBook(record book.Record, similarity float64, reason string) ScoredBook {
	return ScoredBook{record: record, similarity: similarity, reason: reason}
}

// Record returns the underlying catalog record.
func (s *ScoredBook) Record() book.Record { return s.record }

// Similarity returns the cosine similarity to the query, in [-1, 1].
func (s *ScoredBook) Similarity() float64 { return s.similarity }

// Reason returns the human-readable explanation.
func (s *ScoredBook) Reason() string { return s.reason }

// WithReason returns a copy with the explanation attached.
func (s ScoredBook) WithReason(reason string) ScoredBook {
	s.reason = reason
	return s
}

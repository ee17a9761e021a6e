// Package library loads and serves the per-session book snapshot. The store
// is read-only after Load: every record is an immutable value and queries see
// the same snapshot for the whole session.
package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/shelfmind/shelfmind/internal/domain"
	"github.com/shelfmind/shelfmind/internal/domain/book"
)

// Store holds the immutable library snapshot.
type Store struct {
	books      []book.Record
	byID       map[string]int
	dimensions int
}

// Load reads the library_with_embeddings.json artifact produced by the
// offline pipeline. Embedding dimensionality is validated here, once, so the
// ranking path can assume a consistent D.
func Load(path string, logger *zap.Logger) (*Store, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read library snapshot %s: %w", path, err)
	}

	var dtos []bookDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("parse library snapshot: %w", err)
	}

	books := make([]book.Record, 0, len(dtos))
	for i := range dtos {
		r, err := dtos[i].toRecord()
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, dtos[i].ID, err)
		}
		books = append(books, r)
	}

	store, err := New(books)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded library snapshot",
		zap.String("path", path),
		zap.Int("books", store.Count()),
		zap.Int("with_embeddings", store.CountEmbedded()),
		zap.Int("dimensions", store.Dimensions()),
	)
	return store, nil
}

// New builds a store from pre-constructed records. All embeddings must share
// one dimensionality; a mismatch fails fast rather than producing undefined
// similarity scores later.
func New(books []book.Record) (*Store, error) {
	s := &Store{
		books: books,
		byID:  make(map[string]int, len(books)),
	}
	for i := range books {
		r := &books[i]
		if _, dup := s.byID[r.ID()]; dup {
			return nil, fmt.Errorf("duplicate book ID %q", r.ID())
		}
		s.byID[r.ID()] = i

		if !r.HasEmbedding() {
			continue
		}
		if s.dimensions == 0 {
			s.dimensions = len(r.Embedding())
		} else if len(r.Embedding()) != s.dimensions {
			return nil, fmt.Errorf("book %s has %d dims, library has %d: %w",
				r.ID(), len(r.Embedding()), s.dimensions, domain.ErrDimensionMismatch)
		}
	}
	return s, nil
}

// Books returns the snapshot as a fresh slice. Records are immutable values,
// so callers may reorder freely without affecting other consumers.
func (s *Store) Books() []book.Record {
	out := make([]book.Record, len(s.books))
	copy(out, s.books)
	return out
}

// Get returns one record by ID.
func (s *Store) Get(id string) (book.Record, error) {
	i, ok := s.byID[id]
	if !ok {
		return book.Record{}, fmt.Errorf("%s: %w", id, domain.ErrBookNotFound)
	}
	return s.books[i], nil
}

// Count returns the total number of records.
func (s *Store) Count() int { return len(s.books) }

// CountEmbedded returns the number of records carrying an embedding.
func (s *Store) CountEmbedded() int {
	n := 0
	for i := range s.books {
		if s.books[i].HasEmbedding() {
			n++
		}
	}
	return n
}

// Dimensions returns the embedding dimensionality (0 when no record has one).
func (s *Store) Dimensions() int { return s.dimensions }

// Embeddings returns the vectors of all embedded records, in snapshot order.
// Used to fit the PCA projector and the keyword index at startup.
func (s *Store) Embeddings() [][]float32 {
	out := make([][]float32, 0, len(s.books))
	for i := range s.books {
		if s.books[i].HasEmbedding() {
			out = append(out, s.books[i].Embedding())
		}
	}
	return out
}

// Ping implements the health check contract: a loaded snapshot with at least
// one embedded record is considered healthy.
func (s *Store) Ping(_ context.Context) error {
	if s == nil || len(s.books) == 0 {
		return domain.ErrLibraryNotLoaded
	}
	return nil
}

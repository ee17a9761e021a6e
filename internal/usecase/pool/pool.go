// Package pool builds the filtered candidate set a ranking operation runs against.
package pool

import (
	"sort"

	"github.com/shelfmind/shelfmind/internal/domain/book"
)

// Predicate is a single inclusion filter over a catalog record.
type Predicate func(r *book.Record) bool

// HasEmbedding keeps records that carry an embedding. Build applies it
// unconditionally; a record without an embedding must never reach the ranker.
func HasEmbedding() Predicate {
	return func(r *book.Record) bool { return r.HasEmbedding() }
}

// ReadStatus keeps records whose read flag equals read.
func ReadStatus(read bool) Predicate {
	return func(r *book.Record) bool { return r.IsRead() == read }
}

// RatingIn keeps records whose personal rating is in the given set.
func RatingIn(ratings ...int) Predicate {
	set := make(map[int]struct{}, len(ratings))
	for _, v := range ratings {
		set[v] = struct{}{}
	}
	return func(r *book.Record) bool {
		_, ok := set[r.Rating()]
		return ok
	}
}

// GenreIs keeps records tagged with the given genre (primary or listed).
func GenreIs(genre string) Predicate {
	return func(r *book.Record) bool { return r.HasGenre(genre) }
}

// ExcludeIDs drops records by ID. Used to remove anchor books the user selected
// as the query source, so they cannot recommend themselves.
func ExcludeIDs(ids ...string) Predicate {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(r *book.Record) bool {
		_, excluded := set[r.ID()]
		return !excluded
	}
}

// Build returns the records passing the embedding-presence filter and the
// conjunction of preds. No records are synthesized and relative input order is
// preserved, though callers must not rely on any particular ordering.
func Build(books []book.Record, preds ...Predicate) []book.Record {
	out := make([]book.Record, 0, len(books))
	for i := range books {
		r := &books[i]
		if !r.HasEmbedding() {
			continue
		}
		keep := true
		for _, p := range preds {
			if !p(r) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, books[i])
		}
	}
	return out
}

// TopPopular keeps the n records with the highest popularity score. This is a
// pool-shaping step and must run before similarity ranking, never after.
// The input slice is left untouched.
func TopPopular(books []book.Record, n int) []book.Record {
	if n <= 0 {
		return nil
	}
	if n >= len(books) {
		out := make([]book.Record, len(books))
		copy(out, books)
		return out
	}
	out := make([]book.Record, len(books))
	copy(out, books)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Popularity() > out[j].Popularity()
	})
	return out[:n]
}

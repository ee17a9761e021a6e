package query

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/shelfmind/shelfmind/internal/domain"
	"github.com/shelfmind/shelfmind/internal/domain/book"
	"github.com/shelfmind/shelfmind/internal/domain/recommend"
	"github.com/shelfmind/shelfmind/internal/domain/vecmath"
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// KeywordIndex is a TF-IDF vectorizer over book metadata (title, author,
// genres). It backs the explicitly degraded keyword strategy and ranks in its
// own space, never against stored embeddings.
type KeywordIndex struct {
	vocabulary map[string]int
	idf        []float64
	vectors    map[string][]float32
	ready      bool
}

// NewKeywordIndex creates an unfitted index.
func NewKeywordIndex() *KeywordIndex {
	return &KeywordIndex{vocabulary: make(map[string]int), vectors: make(map[string][]float32)}
}

// Fit builds the vocabulary, IDF table and per-book vectors from the library.
func (k *KeywordIndex) Fit(books []book.Record) error {
	if len(books) == 0 {
		return fmt.Errorf("keyword index fit: %w", domain.ErrEmptyInput)
	}

	// Document frequencies over a stable term ordering.
	df := make(map[string]int)
	docTokens := make([][]string, len(books))
	for i := range books {
		tokens := tokenize(bookText(&books[i]))
		docTokens[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	k.vocabulary = make(map[string]int, len(terms))
	k.idf = make([]float64, len(terms))
	n := float64(len(books))
	for i, term := range terms {
		k.vocabulary[term] = i
		k.idf[i] = math.Log((n+1)/(float64(df[term])+1)) + 1
	}

	k.vectors = make(map[string][]float32, len(books))
	for i := range books {
		k.vectors[books[i].ID()] = k.vectorize(docTokens[i])
	}
	k.ready = true
	return nil
}

// Ready reports whether Fit has run.
func (k *KeywordIndex) Ready() bool { return k != nil && k.ready }

// QueryVector vectorizes free text into the fitted TF-IDF space.
// Out-of-vocabulary terms contribute nothing; a fully unknown query yields a
// zero vector, which cosine similarity treats as "no signal".
func (k *KeywordIndex) QueryVector(text string) []float32 {
	return k.vectorize(tokenize(text))
}

// Rank scores candidates against a keyword-space query vector. Same contract
// as the embedding ranker: stable descending sort, topK truncation, empty
// result for an empty pool.
func (k *KeywordIndex) Rank(
	query []float32, candidates []book.Record, topK int,
) ([]recommend.ScoredBook, error) {
	if !k.Ready() {
		return nil, fmt.Errorf("keyword rank: %w", domain.ErrKeywordIndexNotReady)
	}
	if topK <= 0 || len(candidates) == 0 {
		return []recommend.ScoredBook{}, nil
	}

	scored := make([]recommend.ScoredBook, 0, len(candidates))
	for i := range candidates {
		vec, ok := k.vectors[candidates[i].ID()]
		if !ok {
			continue
		}
		sim, err := vecmath.CosineSimilarity(query, vec)
		if err != nil {
			return nil, fmt.Errorf("keyword rank %s: %w", candidates[i].ID(), err)
		}
		if sim <= 0 {
			// No shared terms — a keyword match needs at least one.
			continue
		}
		scored = append(scored, recommend.NewScoredBook(candidates[i], sim, ""))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity() > scored[j].Similarity()
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func (k *KeywordIndex) vectorize(tokens []string) []float32 {
	counts := make(map[int]int)
	for _, tok := range tokens {
		if idx, ok := k.vocabulary[tok]; ok {
			counts[idx]++
		}
	}

	vec := make([]float32, len(k.vocabulary))
	if len(tokens) == 0 {
		return vec
	}
	total := float64(len(tokens))
	var norm float64
	for idx, c := range counts {
		w := (float64(c) / total) * k.idf[idx]
		vec[idx] = float32(w)
		norm += w * w
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for idx := range counts {
			vec[idx] *= scale
		}
	}
	return vec
}

func bookText(r *book.Record) string {
	parts := []string{r.Title(), r.Author(), r.GenrePrimary()}
	parts = append(parts, r.Genres()...)
	return strings.Join(parts, " ")
}

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, isStop := stopwords[tok]; isStop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {},
	"on": {}, "or": {}, "the": {}, "to": {}, "with": {},
}

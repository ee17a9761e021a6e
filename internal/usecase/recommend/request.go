package recommend

import (
	"fmt"

	"github.com/shelfmind/shelfmind/internal/domain"
)

// Strategy names the query resolution mode.
type Strategy string

const (
	// StrategyConcept embeds free text via the external provider.
	StrategyConcept Strategy = "concept"
	// StrategyAnchors uses the centroid of selected anchor books.
	StrategyAnchors Strategy = "anchors"
	// StrategyTaste uses the centroid of the user's read books in a rating set.
	StrategyTaste Strategy = "taste"
	// StrategyDiscovery is taste ranking restricted to the most popular unread books.
	StrategyDiscovery Strategy = "discovery"
	// StrategyKeyword is the explicitly degraded TF-IDF mode; it is only ever
	// selected by the host, never substituted when the provider fails.
	StrategyKeyword Strategy = "keyword"
)

// IsValid reports whether s is a known strategy.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyConcept, StrategyAnchors, StrategyTaste, StrategyDiscovery, StrategyKeyword:
		return true
	}
	return false
}

// Request parameter limits.
const (
	DefaultTopK = 10
	MaxTopK     = 100

	// DefaultDiscoveryPool bounds the discovery pool to the most popular unread books.
	DefaultDiscoveryPool = 200

	MaxQueryLength = 2048
)

// Request is a validated recommendation query.
type Request struct {
	strategy      Strategy
	text          string
	anchorIDs     []string
	ratingSet     []int
	genre         string
	unreadOnly    bool
	topK          int
	poolLimit     int
	minSimilarity float64
	hasFloor      bool
}

// Params carries raw request parameters into New.
type Params struct {
	Strategy      Strategy
	Text          string
	AnchorIDs     []string
	RatingSet     []int
	Genre         string
	UnreadOnly    bool
	TopK          int
	PoolLimit     int
	MinSimilarity *float64 // nil = no floor
}

// Defaults are the fallbacks applied to unset request parameters. The zero
// value selects the package constants.
type Defaults struct {
	TopK          int
	DiscoveryPool int
}

func (d Defaults) withFallbacks() Defaults {
	if d.TopK <= 0 {
		d.TopK = DefaultTopK
	}
	if d.DiscoveryPool <= 0 {
		d.DiscoveryPool = DefaultDiscoveryPool
	}
	return d
}

// NewRequest validates and normalizes a recommendation request.
// Defaults: topK=10, rating set {5,4} for taste strategies, discovery pool 200.
func NewRequest(p Params) (*Request, error) {
	return NewRequestWithDefaults(p, Defaults{})
}

// NewRequestWithDefaults is NewRequest with configured fallbacks for topK and
// the discovery pool size, as wired from the recommend config section.
func NewRequestWithDefaults(p Params, d Defaults) (*Request, error) {
	d = d.withFallbacks()
	if !p.Strategy.IsValid() {
		return nil, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidRequest, p.Strategy)
	}

	switch p.Strategy {
	case StrategyConcept, StrategyKeyword:
		if p.Text == "" {
			return nil, fmt.Errorf("%w: %s strategy requires text", domain.ErrInvalidRequest, p.Strategy)
		}
		if len(p.Text) > MaxQueryLength {
			return nil, fmt.Errorf("%w: text too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
		}
	case StrategyAnchors:
		if len(p.AnchorIDs) == 0 {
			return nil, fmt.Errorf("%w: anchors strategy requires at least one book", domain.ErrInvalidRequest)
		}
	case StrategyTaste, StrategyDiscovery:
		if len(p.RatingSet) == 0 {
			p.RatingSet = []int{5, 4}
		}
		for _, r := range p.RatingSet {
			if r < 0 || r > 5 {
				return nil, fmt.Errorf("%w: rating %d out of range", domain.ErrInvalidRequest, r)
			}
		}
	}

	topK := p.TopK
	if topK <= 0 {
		topK = d.TopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	poolLimit := p.PoolLimit
	if p.Strategy == StrategyDiscovery && poolLimit <= 0 {
		poolLimit = d.DiscoveryPool
	}

	req := &Request{
		strategy:   p.Strategy,
		text:       p.Text,
		anchorIDs:  p.AnchorIDs,
		ratingSet:  p.RatingSet,
		genre:      p.Genre,
		unreadOnly: p.UnreadOnly,
		topK:       topK,
		poolLimit:  poolLimit,
	}
	if p.MinSimilarity != nil {
		if *p.MinSimilarity < -1 || *p.MinSimilarity > 1 {
			return nil, fmt.Errorf("%w: min_similarity must be in [-1, 1]", domain.ErrInvalidRequest)
		}
		req.minSimilarity = *p.MinSimilarity
		req.hasFloor = true
	}
	return req, nil
}

// Strategy returns the query resolution mode.
func (r *Request) Strategy() Strategy { return r.strategy }

// Text returns the free-text query (concept and keyword strategies).
func (r *Request) Text() string { return r.text }

// AnchorIDs returns the selected anchor book IDs.
func (r *Request) AnchorIDs() []string { return r.anchorIDs }

// RatingSet returns the rating set for taste strategies.
func (r *Request) RatingSet() []int { return r.ratingSet }

// Genre returns the genre filter, possibly empty.
func (r *Request) Genre() string { return r.genre }

// UnreadOnly reports whether the pool is restricted to unread books.
func (r *Request) UnreadOnly() bool { return r.unreadOnly }

// TopK returns the number of recommendations to return.
func (r *Request) TopK() int { return r.topK }

// PoolLimit returns the popularity pre-filter size (0 = unlimited).
func (r *Request) PoolLimit() int { return r.poolLimit }

// MinSimilarity returns the similarity floor and whether one is set.
func (r *Request) MinSimilarity() (float64, bool) { return r.minSimilarity, r.hasFloor }

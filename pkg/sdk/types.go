package sdk

// Book is a library entry supplied to WithBooks.
type Book struct {
	ID           string
	Title        string
	Author       string
	Embedding    []float32
	IsRead       bool
	Rating       int
	AvgRating    float64
	GenrePrimary string
	Genres       []string
	Popularity   float64
}

// Strategy selects how the query vector is resolved.
type Strategy string

const (
	// StrategyConcept embeds free text via the configured provider.
	StrategyConcept Strategy = "concept"
	// StrategyAnchors uses the centroid of the anchor books.
	StrategyAnchors Strategy = "anchors"
	// StrategyTaste uses the centroid of highly rated read books.
	StrategyTaste Strategy = "taste"
	// StrategyDiscovery is taste ranking over the most popular unread books.
	StrategyDiscovery Strategy = "discovery"
	// StrategyKeyword ranks by TF-IDF keyword match, no provider needed.
	StrategyKeyword Strategy = "keyword"
)

// RecommendRequest holds recommendation query parameters.
type RecommendRequest struct {
	Strategy      Strategy
	Query         string
	AnchorIDs     []string
	RatingSet     []int
	Genre         string
	UnreadOnly    bool
	TopK          int
	MinSimilarity *float64
}

// Recommendation is one ranked pick.
type Recommendation struct {
	ID           string
	Title        string
	Author       string
	GenrePrimary string
	Similarity   float64
	Reason       string
}

// GalaxyPoint is one book placed in 3D display space.
type GalaxyPoint struct {
	ID      string
	Title   string
	X, Y, Z float64
}

// Stats summarizes the loaded library.
type Stats struct {
	Books         int
	EmbeddedBooks int
	Dimensions    int
}

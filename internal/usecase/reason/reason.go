// Package reason maps similarity scores to human-readable explanations.
package reason

import "fmt"

// Band is one (threshold, label) pair. A score strictly above Threshold gets Label.
type Band struct {
	Threshold float64
	Label     string
}

// DefaultBands are the thresholds tuned against the library dataset.
func DefaultBands() []Band {
	return []Band{
		{Threshold: 0.85, Label: "Extremely close match to your taste"},
		{Threshold: 0.75, Label: "Very strong thematic overlap"},
		{Threshold: 0.65, Label: "Good match for this theme"},
	}
}

// DefaultFallback labels scores below every band.
const DefaultFallback = "An interesting connection"

// Annotator turns similarity scores into explanation strings via ordered
// threshold bands. Band boundaries are configuration, not constants baked into
// the ranking path.
type Annotator struct {
	bands    []Band
	fallback string
}

// New validates the band list and creates an Annotator. Bands must be ordered
// by strictly descending threshold so they cannot overlap.
func New(bands []Band, fallback string) (*Annotator, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("at least one band is required")
	}
	for i, b := range bands {
		if b.Label == "" {
			return nil, fmt.Errorf("band %d has an empty label", i)
		}
		if i > 0 && b.Threshold >= bands[i-1].Threshold {
			return nil, fmt.Errorf(
				"band thresholds must strictly descend: band %d (%.3f) >= band %d (%.3f)",
				i, b.Threshold, i-1, bands[i-1].Threshold,
			)
		}
	}
	if fallback == "" {
		return nil, fmt.Errorf("fallback label is required")
	}
	return &Annotator{bands: bands, fallback: fallback}, nil
}

// NewDefault creates an Annotator with the default bands.
func NewDefault() *Annotator {
	a, err := New(DefaultBands(), DefaultFallback)
	if err != nil {
		panic("reason: default bands invalid: " + err.Error())
	}
	return a
}

// Explain returns the explanation for a similarity score. A non-empty overlap
// reason (shared genre, shared author, shared series) is more specific than any
// band label and takes precedence.
func (a *Annotator) Explain(similarity float64, overlap string) string {
	if overlap != "" {
		return overlap
	}
	for _, b := range a.bands {
		if similarity > b.Threshold {
			return b.Label
		}
	}
	return a.fallback
}

// Package galaxy maps high-dimensional embeddings to 3D display coordinates
// for the library visualization. Projection never affects ranking order; the
// ranker and the projectors are independent consumers of the same vectors.
package galaxy

import (
	"fmt"

	"github.com/shelfmind/shelfmind/internal/domain"
)

// DefaultScale is the display scale applied to projected coordinates.
const DefaultScale = 2.0

// Point is a 3D display coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Projector maps one embedding to a 3D point. Implementations must be
// deterministic and independent of any other vector: the same embedding always
// lands on the same point across renders, regardless of the candidate pool.
type Projector interface {
	Project(embedding []float32) (Point, error)
}

// Axis index pairs and mixing weights for the heuristic projector.
// Not a faithful reduction — a cheap, repeatable placement that keeps
// semantically related books visually near each other often enough.
const (
	axisXPrimary   = 0
	axisXSecondary = 100
	axisYPrimary   = 50
	axisYSecondary = 150
	axisZPrimary   = 200
	axisZSecondary = 300

	primaryWeight   = 10
	secondaryWeight = 5
)

// MinAxisDimensions is the minimum embedding length the axis indices require.
const MinAxisDimensions = axisZSecondary + 1

// AxisProjector is the fixed-index heuristic projector.
type AxisProjector struct {
	scale float64
}

// NewAxisProjector creates an AxisProjector. scale <= 0 selects DefaultScale.
func NewAxisProjector(scale float64) *AxisProjector {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &AxisProjector{scale: scale}
}

// Project maps an embedding onto three fixed axis pairs.
func (p *AxisProjector) Project(embedding []float32) (Point, error) {
	if len(embedding) < MinAxisDimensions {
		return Point{}, fmt.Errorf("axis projector: %d dims, need at least %d: %w",
			len(embedding), MinAxisDimensions, domain.ErrInsufficientDimensions)
	}
	mix := func(primary, secondary int) float64 {
		return (float64(embedding[primary])*primaryWeight +
			float64(embedding[secondary])*secondaryWeight) * p.scale
	}
	return Point{
		X: mix(axisXPrimary, axisXSecondary),
		Y: mix(axisYPrimary, axisYSecondary),
		Z: mix(axisZPrimary, axisZSecondary),
	}, nil
}

package galaxy

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/shelfmind/shelfmind/internal/domain"
)

// pcaComponents is the number of principal axes kept for display.
const pcaComponents = 3

// PCAProjector projects embeddings onto the top three principal components of
// the library. The basis is fitted once at load time; after that Project is a
// pure function of its input, so the referential-stability contract of
// Projector holds — a query-time pool never shifts existing points.
type PCAProjector struct {
	mean       []float64
	components *mat.Dense // dim x 3
	dim        int
	scale      float64
}

// FitPCA computes a 3-component PCA basis from the given vectors via thin SVD
// of the centered data matrix. Needs at least pcaComponents vectors of equal,
// sufficient length. scale <= 0 selects DefaultScale.
func FitPCA(vectors [][]float32, scale float64) (*PCAProjector, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("fit pca: %w", domain.ErrEmptyInput)
	}
	dim := len(vectors[0])
	if dim < pcaComponents {
		return nil, fmt.Errorf("fit pca: %d dims, need at least %d: %w",
			dim, pcaComponents, domain.ErrInsufficientDimensions)
	}
	if len(vectors) < pcaComponents {
		return nil, fmt.Errorf("fit pca: %d vectors, need at least %d: %w",
			len(vectors), pcaComponents, domain.ErrEmptyInput)
	}
	if scale <= 0 {
		scale = DefaultScale
	}

	n := len(vectors)
	mean := make([]float64, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("fit pca: %w", domain.ErrDimensionMismatch)
		}
		for j, x := range v {
			mean[j] += float64(x)
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}

	data := mat.NewDense(n, dim, nil)
	for i, v := range vectors {
		for j, x := range v {
			data.Set(i, j, float64(x)-mean[j])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(data, mat.SVDThin); !ok {
		return nil, fmt.Errorf("fit pca: svd factorization failed")
	}
	var vt mat.Dense
	svd.VTo(&vt)

	components := mat.NewDense(dim, pcaComponents, nil)
	for c := 0; c < pcaComponents; c++ {
		for j := 0; j < dim; j++ {
			components.Set(j, c, vt.At(j, c))
		}
	}

	return &PCAProjector{mean: mean, components: components, dim: dim, scale: scale}, nil
}

// Project maps an embedding onto the fitted principal axes.
func (p *PCAProjector) Project(embedding []float32) (Point, error) {
	if len(embedding) != p.dim {
		return Point{}, fmt.Errorf("pca projector: %d dims, fitted on %d: %w",
			len(embedding), p.dim, domain.ErrDimensionMismatch)
	}
	var coords [pcaComponents]float64
	for c := 0; c < pcaComponents; c++ {
		var sum float64
		for j := 0; j < p.dim; j++ {
			sum += (float64(embedding[j]) - p.mean[j]) * p.components.At(j, c)
		}
		coords[c] = sum * p.scale
	}
	return Point{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

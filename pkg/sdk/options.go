package sdk

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Embedder turns free text into an embedding vector. Implementations call an
// external provider; the SDK adapts them into the concept query path.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	snapshotPath string
	books        []Book

	embedder     Embedder
	embedTimeout time.Duration

	usePCA      bool
	galaxyScale float64

	logger *zap.Logger
}

// WithSnapshotPath loads the library from a JSON snapshot file.
func WithSnapshotPath(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.snapshotPath = path
	})
}

// WithBooks loads the library from an in-memory slice instead of a file.
// Takes precedence over WithSnapshotPath.
func WithBooks(books []Book) Option {
	return optionFunc(func(c *clientConfig) {
		c.books = books
	})
}

// WithEmbedder enables the concept strategy via the given provider.
// Without it concept queries fail and the keyword strategy still works.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithEmbedTimeout bounds a single embedding call (default 15s).
func WithEmbedTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedTimeout = d
	})
}

// WithPCAGalaxy fits a PCA projection over the library instead of the
// default fixed-axis projection.
func WithPCAGalaxy() Option {
	return optionFunc(func(c *clientConfig) {
		c.usePCA = true
	})
}

// WithGalaxyScale overrides the projection display scale.
func WithGalaxyScale(scale float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.galaxyScale = scale
	})
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

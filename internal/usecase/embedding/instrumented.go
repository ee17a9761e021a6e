// Package embedding decorates the embedding provider with observability.
// Transport metrics (requests, duration, tokens) live in transport/openai;
// this layer owns request logging only.
package embedding

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shelfmind/shelfmind/internal/domain"
)

// InstrumentedEmbedder wraps a domain.Embedder with structured logging.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with logging.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{inner: inner, provider: provider, model: model, logger: logger}
}

// Embed delegates to the inner embedder and logs the outcome.
func (e *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	start := time.Now()

	result, err := e.inner.Embed(ctx, text)
	if err != nil {
		e.logger.Warn("Embedding request failed",
			zap.String("provider", e.provider),
			zap.String("model", e.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, err
	}

	e.logger.Debug("Embedding request complete",
		zap.String("provider", e.provider),
		zap.String("model", e.model),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// HealthCheck forwards to the inner embedder so the decorator stays
// transparent to health probes. Inner embedders without a health check are
// considered healthy.
func (e *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent delegation
	}
	return nil
}

var _ domain.HealthChecker = (*InstrumentedEmbedder)(nil)

package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/shelfmind/shelfmind/internal/domain"
)

type stubEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	s.calls++
	return s.result, s.err
}

func TestInstrumentedEmbedder_Delegates(t *testing.T) {
	inner := &stubEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1, 0.2}, TotalTokens: 7,
	}}
	emb := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	result, err := emb.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
	if len(result.Embedding) != 2 || result.TotalTokens != 7 {
		t.Errorf("result not passed through: %+v", result)
	}
}

type stubHealthEmbedder struct {
	stubEmbedder
	healthErr   error
	healthCalls int
}

func (s *stubHealthEmbedder) HealthCheck(_ context.Context) error {
	s.healthCalls++
	return s.healthErr
}

func TestInstrumentedEmbedder_ForwardsHealthCheck(t *testing.T) {
	wantErr := errors.New("provider unreachable")
	inner := &stubHealthEmbedder{healthErr: wantErr}
	emb := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	// The wrapper must stay visible as a HealthChecker; otherwise the
	// composition root's type assertion silently drops the provider check.
	var hc domain.HealthChecker = emb

	if err := hc.HealthCheck(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("expected inner health error, got %v", err)
	}
	if inner.healthCalls != 1 {
		t.Errorf("expected 1 inner health call, got %d", inner.healthCalls)
	}
}

func TestInstrumentedEmbedder_HealthCheckWithoutInnerChecker(t *testing.T) {
	emb := NewInstrumentedEmbedder(&stubEmbedder{}, "test", "test-model", zap.NewNop())

	if err := emb.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected nil for inner without health check, got %v", err)
	}
}

func TestInstrumentedEmbedder_PropagatesError(t *testing.T) {
	wantErr := errors.New("provider down")
	emb := NewInstrumentedEmbedder(&stubEmbedder{err: wantErr}, "test", "test-model", zap.NewNop())

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected inner error, got %v", err)
	}
}

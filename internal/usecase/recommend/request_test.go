package recommend

import (
	"errors"
	"testing"

	"github.com/shelfmind/shelfmind/internal/domain"
)

func TestNewRequest_Defaults(t *testing.T) {
	req, err := NewRequest(Params{Strategy: StrategyTaste})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.TopK() != DefaultTopK {
		t.Errorf("expected default topK %d, got %d", DefaultTopK, req.TopK())
	}
	if got := req.RatingSet(); len(got) != 2 || got[0] != 5 || got[1] != 4 {
		t.Errorf("expected default rating set [5 4], got %v", got)
	}
	if _, ok := req.MinSimilarity(); ok {
		t.Error("expected no similarity floor by default")
	}
}

func TestNewRequest_DiscoveryPoolDefault(t *testing.T) {
	req, err := NewRequest(Params{Strategy: StrategyDiscovery})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.PoolLimit() != DefaultDiscoveryPool {
		t.Errorf("expected discovery pool %d, got %d", DefaultDiscoveryPool, req.PoolLimit())
	}
}

func TestNewRequestWithDefaults_Configured(t *testing.T) {
	d := Defaults{TopK: 3, DiscoveryPool: 50}

	req, err := NewRequestWithDefaults(Params{Strategy: StrategyTaste}, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.TopK() != 3 {
		t.Errorf("expected configured topK 3, got %d", req.TopK())
	}

	req, err = NewRequestWithDefaults(Params{Strategy: StrategyDiscovery}, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.PoolLimit() != 50 {
		t.Errorf("expected configured discovery pool 50, got %d", req.PoolLimit())
	}
}

func TestNewRequestWithDefaults_ExplicitParamsWin(t *testing.T) {
	d := Defaults{TopK: 3, DiscoveryPool: 50}

	req, err := NewRequestWithDefaults(Params{Strategy: StrategyDiscovery, TopK: 7, PoolLimit: 120}, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.TopK() != 7 {
		t.Errorf("expected explicit topK 7, got %d", req.TopK())
	}
	if req.PoolLimit() != 120 {
		t.Errorf("expected explicit pool 120, got %d", req.PoolLimit())
	}
}

func TestNewRequestWithDefaults_ConfiguredTopKClamped(t *testing.T) {
	req, err := NewRequestWithDefaults(Params{Strategy: StrategyTaste}, Defaults{TopK: 10000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.TopK() != MaxTopK {
		t.Errorf("expected topK clamped to %d, got %d", MaxTopK, req.TopK())
	}
}

func TestNewRequest_TopKClamped(t *testing.T) {
	req, err := NewRequest(Params{Strategy: StrategyTaste, TopK: 10000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.TopK() != MaxTopK {
		t.Errorf("expected topK clamped to %d, got %d", MaxTopK, req.TopK())
	}
}

func TestNewRequest_Validation(t *testing.T) {
	badFloor := 1.5
	cases := []struct {
		name string
		p    Params
	}{
		{"unknown strategy", Params{Strategy: "psychic"}},
		{"concept without text", Params{Strategy: StrategyConcept}},
		{"keyword without text", Params{Strategy: StrategyKeyword}},
		{"anchors without ids", Params{Strategy: StrategyAnchors}},
		{"rating out of range", Params{Strategy: StrategyTaste, RatingSet: []int{7}}},
		{"floor out of range", Params{Strategy: StrategyTaste, MinSimilarity: &badFloor}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRequest(tc.p)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

package runhistory

import (
	"math"
	"testing"

	"github.com/copyleftdev/BOREAL/internal/optimization"
)

func TestEmptyHistory(t *testing.T) {
	h := New()

	if !h.Empty() {
		t.Error("new history should be empty")
	}
	if h.Len() != 0 {
		t.Errorf("expected length 0, got %d", h.Len())
	}
	if _, ok := h.Best(); ok {
		t.Error("empty history should have no best record")
	}
	if !math.IsInf(h.BestCost(), 1) {
		t.Errorf("expected +Inf best cost, got %v", h.BestCost())
	}
}

func TestAddAndQuery(t *testing.T) {
	h := New()
	h.Add(optimization.NewConfiguration([]float64{1, 2}), 5.0)
	h.Add(optimization.NewConfiguration([]float64{3, 4}), 2.0)
	h.Add(optimization.NewConfiguration([]float64{5, 6}), 9.0)

	if h.Empty() {
		t.Error("history with records should not be empty")
	}
	if h.Len() != 3 {
		t.Errorf("expected length 3, got %d", h.Len())
	}

	configs := h.Configurations()
	if len(configs) != 3 {
		t.Fatalf("expected 3 configurations, got %d", len(configs))
	}
	if configs[1].Value(0) != 3 {
		t.Error("configurations must preserve insertion order")
	}

	best, ok := h.Best()
	if !ok {
		t.Fatal("expected a best record")
	}
	if best.Cost != 2.0 {
		t.Errorf("expected best cost 2.0, got %v", best.Cost)
	}
	if best.Config.Value(0) != 3 {
		t.Errorf("unexpected best configuration %v", best.Config.Values())
	}
	if h.BestCost() != 2.0 {
		t.Errorf("expected best cost 2.0, got %v", h.BestCost())
	}
}

func TestRecordsAreCopied(t *testing.T) {
	h := New()
	h.Add(optimization.NewConfiguration([]float64{1}), 1.0)

	records := h.Records()
	records[0].Cost = 100

	if h.BestCost() != 1.0 {
		t.Error("mutating the returned records must not affect the history")
	}
}

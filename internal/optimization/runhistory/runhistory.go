// Package runhistory stores the evaluations the outer optimization loop has
// performed so far.
package runhistory

import (
	"math"

	"github.com/copyleftdev/BOREAL/internal/optimization"
)

// Record is one completed evaluation: a configuration and the cost the real
// objective reported for it (lower is better).
type Record struct {
	Config optimization.Configuration
	Cost   float64
}

// RunHistory is an append-only store of evaluation records. It implements
// optimization.History.
type RunHistory struct {
	records []Record
}

// New creates an empty run history.
func New() *RunHistory {
	return &RunHistory{}
}

// Add appends an evaluation record.
func (h *RunHistory) Add(config optimization.Configuration, cost float64) {
	h.records = append(h.records, Record{Config: config, Cost: cost})
}

// Empty reports whether no evaluation has been recorded.
func (h *RunHistory) Empty() bool {
	return len(h.records) == 0
}

// Len returns the number of recorded evaluations.
func (h *RunHistory) Len() int {
	return len(h.records)
}

// Configurations returns all evaluated configurations in insertion order.
func (h *RunHistory) Configurations() []optimization.Configuration {
	out := make([]optimization.Configuration, len(h.records))
	for i, r := range h.records {
		out[i] = r.Config
	}
	return out
}

// Records returns a copy of all evaluation records in insertion order.
func (h *RunHistory) Records() []Record {
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Best returns the record with the lowest cost. The second return value is
// false when the history is empty.
func (h *RunHistory) Best() (Record, bool) {
	if len(h.records) == 0 {
		return Record{}, false
	}
	best := h.records[0]
	for _, r := range h.records[1:] {
		if r.Cost < best.Cost {
			best = r
		}
	}
	return best, true
}

// BestCost returns the lowest recorded cost, or +Inf when the history is
// empty.
func (h *RunHistory) BestCost() float64 {
	best, ok := h.Best()
	if !ok {
		return math.Inf(1)
	}
	return best.Cost
}

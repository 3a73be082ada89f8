package optimization

import (
	"math"
	"time"
)

// AcquisitionFunction scores how promising untested configurations are.
// Evaluate returns one score per input configuration, in input order, and
// must accept batches of any size including a single configuration.
type AcquisitionFunction interface {
	Evaluate(configs []Configuration) ([]float64, error)
}

// ConfigurationSpace provides random configurations and discrete neighborhoods.
type ConfigurationSpace interface {
	// Sample draws size configurations uniformly at random.
	Sample(size int) []Configuration

	// Neighborhood returns the one-exchange neighborhood of c: all
	// configurations differing from c in exactly one coordinate. Order and
	// content are determined by seed.
	Neighborhood(c Configuration, seed int64) Neighborhood
}

// Neighborhood is a lazy, finite sequence of configurations. It is consumed
// at most once; Next returns false once the neighborhood is exhausted.
type Neighborhood interface {
	Next() (Configuration, bool)
}

// History exposes the configurations evaluated so far by the outer
// optimization loop.
type History interface {
	// Empty reports whether no configuration has been evaluated yet.
	Empty() bool

	// Configurations returns all previously evaluated configurations.
	Configurations() []Configuration
}

// Configuration is a point in the search space. Mixed continuous, integer
// and categorical parameters are encoded into a numeric vector by the
// configuration space that produced it. The coordinate vector is immutable.
type Configuration struct {
	values []float64
}

// NewConfiguration creates a configuration from a coordinate vector.
// The vector is copied.
func NewConfiguration(values []float64) Configuration {
	v := make([]float64, len(values))
	copy(v, values)
	return Configuration{values: v}
}

// Values returns a copy of the coordinate vector.
func (c Configuration) Values() []float64 {
	v := make([]float64, len(c.values))
	copy(v, c.values)
	return v
}

// Value returns the coordinate at index i.
func (c Configuration) Value(i int) float64 {
	return c.values[i]
}

// Len returns the number of coordinates.
func (c Configuration) Len() int {
	return len(c.values)
}

// Equal reports whether two configurations have identical coordinates.
// NaN coordinates compare equal to NaN, so inactive parameters match.
func (c Configuration) Equal(o Configuration) bool {
	if len(c.values) != len(o.values) {
		return false
	}
	for i, v := range c.values {
		w := o.values[i]
		if v != w && !(math.IsNaN(v) && math.IsNaN(w)) {
			return false
		}
	}
	return true
}

// Candidate pairs a configuration with the origin label of the strategy that
// produced it. Strategies return candidates instead of tagging a shared
// configuration in place, so a configuration referenced from the history and
// from a seed list can never disagree about its provenance.
type Candidate struct {
	Config Configuration
	Origin string
}

// ScoredCandidate pairs a candidate with its acquisition value. Within a
// ranked sequence scores are non-increasing.
type ScoredCandidate struct {
	Score     float64
	Candidate Candidate
}

// SearchBudget carries bookkeeping about the current optimization iteration.
// It is handed through to the search strategies but never inspected by them.
type SearchBudget struct {
	// StartTime is when the current optimization run began.
	StartTime time.Time

	// SubmittedChallengers counts challengers handed to the outer loop so far.
	SubmittedChallengers int
}

// NewSearchBudget creates a budget anchored at the current time.
func NewSearchBudget() *SearchBudget {
	return &SearchBudget{StartTime: time.Now()}
}

// Elapsed returns the time since the run began.
func (b *SearchBudget) Elapsed() time.Duration {
	return time.Since(b.StartTime)
}

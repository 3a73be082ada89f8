package maximizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/BOREAL/internal/optimization"
	"github.com/copyleftdev/BOREAL/internal/optimization/runhistory"
)

// conf builds a configuration from coordinates.
func conf(values ...float64) optimization.Configuration {
	return optimization.NewConfiguration(values)
}

// acqFunc adapts a plain scoring function to the acquisition contract.
type acqFunc func(optimization.Configuration) float64

func (f acqFunc) Evaluate(configs []optimization.Configuration) ([]float64, error) {
	out := make([]float64, len(configs))
	for i, c := range configs {
		out[i] = f(c)
	}
	return out, nil
}

// identityAcq scores a configuration by its first coordinate.
var identityAcq = acqFunc(func(c optimization.Configuration) float64 {
	return c.Value(0)
})

// flatAcq scores every configuration the same.
var flatAcq = acqFunc(func(optimization.Configuration) float64 {
	return 1
})

// failingAcq simulates a broken collaborator.
type failingAcq struct{ err error }

func (f failingAcq) Evaluate([]optimization.Configuration) ([]float64, error) {
	return nil, f.err
}

// miscountingAcq violates the one-score-per-configuration contract.
type miscountingAcq struct{}

func (miscountingAcq) Evaluate(configs []optimization.Configuration) ([]float64, error) {
	return make([]float64, len(configs)+1), nil
}

// lineSpace is a one-dimensional integer line from lo to hi. The neighborhood
// of x is x+1 then x-1, clipped to the bounds, which makes first-improvement
// climbs under identityAcq fully predictable.
type lineSpace struct {
	rng               *rand.Rand
	lo, hi            float64
	noNeighbors       bool
	sampleCalls       int
	neighborhoodCalls int
}

func newLineSpace(lo, hi float64, seed int64) *lineSpace {
	return &lineSpace{rng: rand.New(rand.NewSource(seed)), lo: lo, hi: hi}
}

func (s *lineSpace) Sample(size int) []optimization.Configuration {
	s.sampleCalls++
	out := make([]optimization.Configuration, size)
	for i := range out {
		out[i] = conf(s.lo + float64(s.rng.Int63n(int64(s.hi-s.lo)+1)))
	}
	return out
}

func (s *lineSpace) Neighborhood(c optimization.Configuration, seed int64) optimization.Neighborhood {
	s.neighborhoodCalls++
	var items []optimization.Configuration
	if !s.noNeighbors {
		x := c.Value(0)
		if x+1 <= s.hi {
			items = append(items, conf(x+1))
		}
		if x-1 >= s.lo {
			items = append(items, conf(x-1))
		}
	}
	return &sliceNeighborhood{items: items}
}

type sliceNeighborhood struct {
	items []optimization.Configuration
	index int
}

func (n *sliceNeighborhood) Next() (optimization.Configuration, bool) {
	if n.index >= len(n.items) {
		return optimization.Configuration{}, false
	}
	c := n.items[n.index]
	n.index++
	return c, true
}

// historyOf builds a run history from first coordinates, with zero costs.
func historyOf(values ...float64) *runhistory.RunHistory {
	h := runhistory.New()
	for _, v := range values {
		h.Add(conf(v), 0)
	}
	return h
}

func rankedOrder(ranked []optimization.ScoredCandidate) []float64 {
	out := make([]float64, len(ranked))
	for i, sc := range ranked {
		out[i] = sc.Candidate.Config.Value(0)
	}
	return out
}

func TestSortByAcqValueDescendingScores(t *testing.T) {
	s := newSearcher(identityAcq, newLineSpace(0, 100, 1), rand.New(rand.NewSource(7)), nil)

	configs := []optimization.Configuration{conf(3), conf(9), conf(1), conf(5)}
	ranked, err := s.sortByAcqValue(configs, OriginRandomSearchSorted)
	require.NoError(t, err)
	require.Len(t, ranked, len(configs))

	assert.Equal(t, []float64{9, 5, 3, 1}, rankedOrder(ranked))
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
	for _, sc := range ranked {
		assert.Equal(t, OriginRandomSearchSorted, sc.Candidate.Origin)
	}
}

func TestSortByAcqValueIsPermutation(t *testing.T) {
	s := newSearcher(identityAcq, newLineSpace(0, 100, 1), rand.New(rand.NewSource(7)), nil)

	configs := []optimization.Configuration{conf(2), conf(2), conf(8), conf(4), conf(8)}
	ranked, err := s.sortByAcqValue(configs, "")
	require.NoError(t, err)
	require.Len(t, ranked, len(configs))

	// Nothing added, nothing dropped.
	seen := map[float64]int{}
	for _, sc := range ranked {
		seen[sc.Candidate.Config.Value(0)]++
	}
	assert.Equal(t, map[float64]int{2: 2, 8: 2, 4: 1}, seen)
}

func TestSortByAcqValueTieBreakDeterminism(t *testing.T) {
	// Many equal-scoring configurations, distinguishable by second coordinate.
	configs := make([]optimization.Configuration, 8)
	for i := range configs {
		configs[i] = conf(1, float64(i))
	}
	secondCoords := func(ranked []optimization.ScoredCandidate) []float64 {
		out := make([]float64, len(ranked))
		for i, sc := range ranked {
			out[i] = sc.Candidate.Config.Value(1)
		}
		return out
	}
	rankWithSeed := func(seed int64) []float64 {
		s := newSearcher(flatAcq, newLineSpace(0, 100, 1), rand.New(rand.NewSource(seed)), nil)
		ranked, err := s.sortByAcqValue(configs, "")
		require.NoError(t, err)
		return secondCoords(ranked)
	}

	first := rankWithSeed(42)
	second := rankWithSeed(42)
	assert.Equal(t, first, second, "same seed must reproduce the tie order")

	other := rankWithSeed(43)
	assert.NotEqual(t, first, other, "a different seed should break ties differently")
}

func TestSortByAcqValuePropagatesEvaluationError(t *testing.T) {
	wantErr := optimization.NewError("surrogate unavailable")
	s := newSearcher(failingAcq{err: wantErr}, newLineSpace(0, 100, 1), rand.New(rand.NewSource(1)), nil)

	_, err := s.sortByAcqValue([]optimization.Configuration{conf(1)}, "")
	assert.ErrorIs(t, err, wantErr)
}

func TestSortByAcqValueRejectsScoreCountMismatch(t *testing.T) {
	s := newSearcher(miscountingAcq{}, newLineSpace(0, 100, 1), rand.New(rand.NewSource(1)), nil)

	_, err := s.sortByAcqValue([]optimization.Configuration{conf(1)}, "")
	require.Error(t, err)

	e, ok := optimization.IsOptimizationError(err)
	require.True(t, ok, "contract violations surface as optimization errors")
	assert.Equal(t, "maximizer", e.Component)
	assert.Equal(t, "sortByAcqValue", e.Op)
}

func TestRankNotSupportedCarriesComponent(t *testing.T) {
	e, ok := optimization.IsOptimizationError(ErrRankNotSupported)
	require.True(t, ok)
	assert.Equal(t, "maximizer", e.Component)
}

func TestCollectDrainsSequence(t *testing.T) {
	seq := &candidateList{items: []optimization.Candidate{
		{Config: conf(1), Origin: OriginRandomSearch},
		{Config: conf(2), Origin: OriginRandomSearch},
	}}

	out := Collect(seq)
	require.Len(t, out, 2)
	assert.Equal(t, 1.0, out[0].Config.Value(0))
	assert.Equal(t, 2.0, out[1].Config.Value(0))

	_, ok := seq.Next()
	assert.False(t, ok, "sequence must be exhausted after Collect")
}

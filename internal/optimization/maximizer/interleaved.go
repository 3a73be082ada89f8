package maximizer

import (
	"math/rand"
	"sort"

	"github.com/copyleftdev/BOREAL/internal/logging"
	"github.com/copyleftdev/BOREAL/internal/optimization"
)

// numLocalSearchSeeds is the number of local-search results the interleaved
// strategy requests, independent of the caller's numPoints.
const numLocalSearchSeeds = 10

// InterleavedSearch is the default top-level strategy. It runs local search
// from the best known configurations, fills the remainder of the request with
// sorted random draws, merges both by descending acquisition value, and
// returns the result as a ChallengerList that interleaves fresh random
// configurations between the ranked ones.
type InterleavedSearch struct {
	searcher
	local  *LocalSearch
	random *RandomSearch
}

// NewInterleavedSearch creates the composite strategy. Both sub-strategies
// share the parent's random number generator state, so one top-level seed
// reproduces the entire run.
func NewInterleavedSearch(acq optimization.AcquisitionFunction, space optimization.ConfigurationSpace, rng *rand.Rand, logger *logging.Logger, localCfg LocalSearchConfig) *InterleavedSearch {
	base := newSearcher(acq, space, rng, logger)
	return &InterleavedSearch{
		searcher: base,
		local:    NewLocalSearch(acq, space, base.rng, base.logger, localCfg),
		random:   NewRandomSearch(acq, space, base.rng, base.logger),
	}
}

// Maximize produces the challenger sequence for one optimization iteration.
func (is *InterleavedSearch) Maximize(hist optimization.History, budget *optimization.SearchBudget, numPoints int) (CandidateSequence, error) {
	local, err := is.local.Rank(hist, budget, numLocalSearchSeeds)
	if err != nil {
		return nil, err
	}

	random, err := is.random.rank(hist, budget, numPoints-len(local), true)
	if err != nil {
		return nil, err
	}

	// Random-search results go first. While the acquisition function is still
	// flat in the first iterations, the stable sort keeps them ahead of the
	// local-search results on equal scores, so random configurations are
	// tried before prematurely exploited ones.
	merged := make([]optimization.ScoredCandidate, 0, len(random)+len(local))
	merged = append(merged, random...)
	merged = append(merged, local...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	head := merged
	if len(head) > 10 {
		head = head[:10]
	}
	leading := make([][2]interface{}, len(head))
	for i, sc := range head {
		leading[i] = [2]interface{}{sc.Score, sc.Candidate.Origin}
	}
	is.logger.Debug("leading acquisition values of selected configurations", map[string]interface{}{
		"candidates": leading,
	})

	challengers := make([]optimization.Candidate, len(merged))
	for i, sc := range merged {
		challengers[i] = sc.Candidate
	}
	return NewChallengerList(challengers, is.space), nil
}

// Rank is not supported on the composite strategy; its output is only
// meaningful as the interleaved challenger sequence.
func (is *InterleavedSearch) Rank(hist optimization.History, budget *optimization.SearchBudget, numPoints int) ([]optimization.ScoredCandidate, error) {
	return nil, ErrRankNotSupported
}

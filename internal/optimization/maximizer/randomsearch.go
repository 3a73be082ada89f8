package maximizer

import (
	"math/rand"

	"github.com/copyleftdev/BOREAL/internal/logging"
	"github.com/copyleftdev/BOREAL/internal/optimization"
)

// RandomSearch proposes candidates by sampling the configuration space
// uniformly at random.
type RandomSearch struct {
	searcher
}

// NewRandomSearch creates a random sampling strategy.
func NewRandomSearch(acq optimization.AcquisitionFunction, space optimization.ConfigurationSpace, rng *rand.Rand, logger *logging.Logger) *RandomSearch {
	return &RandomSearch{searcher: newSearcher(acq, space, rng, logger)}
}

// Maximize returns numPoints random candidates in draw order.
func (rs *RandomSearch) Maximize(hist optimization.History, budget *optimization.SearchBudget, numPoints int) (CandidateSequence, error) {
	return maximize(rs, hist, budget, numPoints)
}

// Rank draws numPoints configurations and returns them unranked in draw
// order. The score is a placeholder zero, not an acquisition estimate.
func (rs *RandomSearch) Rank(hist optimization.History, budget *optimization.SearchBudget, numPoints int) ([]optimization.ScoredCandidate, error) {
	return rs.rank(hist, budget, numPoints, false)
}

// rank implements both the plain and the sorted variant. The sorted variant
// scores the draws and ranks them with the shared tie-break sort; it is what
// the interleaved strategy consumes.
func (rs *RandomSearch) rank(hist optimization.History, budget *optimization.SearchBudget, numPoints int, sorted bool) ([]optimization.ScoredCandidate, error) {
	var configs []optimization.Configuration
	if numPoints > 1 {
		configs = rs.space.Sample(numPoints)
	} else {
		configs = rs.space.Sample(1)
	}

	if sorted {
		return rs.sortByAcqValue(configs, OriginRandomSearchSorted)
	}

	out := make([]optimization.ScoredCandidate, len(configs))
	for i, c := range configs {
		out[i] = optimization.ScoredCandidate{
			Score: 0,
			Candidate: optimization.Candidate{
				Config: c,
				Origin: OriginRandomSearch,
			},
		}
	}
	return out, nil
}

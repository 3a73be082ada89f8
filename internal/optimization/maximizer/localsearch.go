package maximizer

import (
	"math/rand"
	"sort"

	"github.com/copyleftdev/BOREAL/internal/logging"
	"github.com/copyleftdev/BOREAL/internal/optimization"
)

// stuckWarnInterval is the number of climb steps between advisory warnings
// about a possibly stuck search. It never changes control flow.
const stuckWarnInterval = 1000

// LocalSearchConfig controls the per-seed hill climb.
type LocalSearchConfig struct {
	// MaxIterations caps the number of neighborhood expansions per climb.
	// Zero means no cap.
	MaxIterations int

	// PlateauWalkSteps is the number of moves to equal-scoring neighbors a
	// climb may take before giving up on a flat region.
	PlateauWalkSteps int
}

// DefaultLocalSearchConfig returns the standard climb parameters: no
// iteration cap and a plateau walk of 10 steps.
func DefaultLocalSearchConfig() LocalSearchConfig {
	return LocalSearchConfig{PlateauWalkSteps: 10}
}

// LocalSearch hill-climbs from multiple seed points through the one-exchange
// neighborhood graph toward locally maximal acquisition value. Once the
// history is non-empty, climbs restart from the best known configurations
// rather than from random points.
type LocalSearch struct {
	searcher
	cfg LocalSearchConfig
}

// NewLocalSearch creates a local search strategy. A nil rng falls back to the
// default seed, a nil logger to the default logger.
func NewLocalSearch(acq optimization.AcquisitionFunction, space optimization.ConfigurationSpace, rng *rand.Rand, logger *logging.Logger, cfg LocalSearchConfig) *LocalSearch {
	return &LocalSearch{
		searcher: newSearcher(acq, space, rng, logger),
		cfg:      cfg,
	}
}

// Maximize returns up to numPoints locally maximal candidates, best first.
func (ls *LocalSearch) Maximize(hist optimization.History, budget *optimization.SearchBudget, numPoints int) (CandidateSequence, error) {
	return maximize(ls, hist, budget, numPoints)
}

// Rank runs one climb per seed point, shuffles the results so later stable
// sorts do not favor any seed systematically, and sorts them by descending
// acquisition value.
func (ls *LocalSearch) Rank(hist optimization.History, budget *optimization.SearchBudget, numPoints int) ([]optimization.ScoredCandidate, error) {
	seeds, err := ls.initialPoints(hist, numPoints)
	if err != nil {
		return nil, err
	}

	results := make([]optimization.ScoredCandidate, 0, len(seeds))
	for _, seed := range seeds {
		score, incumbent, err := ls.climb(seed)
		if err != nil {
			return nil, err
		}
		results = append(results, optimization.ScoredCandidate{
			Score: score,
			Candidate: optimization.Candidate{
				Config: incumbent,
				Origin: OriginLocalSearch,
			},
		})
	}

	ls.rng.Shuffle(len(results), func(i, j int) {
		results[i], results[j] = results[j], results[i]
	})
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// initialPoints selects the climb seeds: random draws while the history is
// empty, afterwards the top-ranked previously evaluated configurations.
func (ls *LocalSearch) initialPoints(hist optimization.History, numPoints int) ([]optimization.Configuration, error) {
	if hist == nil || hist.Empty() {
		return ls.space.Sample(numPoints), nil
	}

	previous := hist.Configurations()
	ranked, err := ls.sortByAcqValue(previous, "")
	if err != nil {
		return nil, err
	}
	n := min(len(ranked), numPoints)
	seeds := make([]optimization.Configuration, n)
	for i := 0; i < n; i++ {
		seeds[i] = ranked[i].Candidate.Config
	}
	return seeds, nil
}

// climb performs one hill climb: scan the incumbent's neighborhood, adopt the
// first strictly improving neighbor (first-improvement, not best-improvement),
// and fall back to the first equal-scoring neighbor while plateau moves
// remain. Returns the final incumbent and its acquisition value.
func (ls *LocalSearch) climb(start optimization.Configuration) (float64, optimization.Configuration, error) {
	incumbent := start
	scores, err := ls.acq.Evaluate([]optimization.Configuration{incumbent})
	if err != nil {
		return 0, optimization.Configuration{}, err
	}
	incumbentScore := scores[0]

	steps := 0
	plateauMoves := 0
	neighborsSeen := 0
	for {
		steps++
		if steps%stuckWarnInterval == 0 {
			ls.logger.Warn("local search has taken many iterations, possibly stuck in a loop", map[string]interface{}{
				"steps": steps,
			})
		}

		improved := false
		var plateau []optimization.Configuration

		neighborhood := ls.space.Neighborhood(incumbent, ls.rng.Int63())
		for {
			neighbor, ok := neighborhood.Next()
			if !ok {
				break
			}
			scores, err := ls.acq.Evaluate([]optimization.Configuration{neighbor})
			if err != nil {
				return 0, optimization.Configuration{}, err
			}
			neighborsSeen++

			if scores[0] == incumbentScore {
				plateau = append(plateau, neighbor)
			}
			if scores[0] > incumbentScore {
				incumbent = neighbor
				incumbentScore = scores[0]
				improved = true
				break
			}
		}

		moved := improved
		if !improved && plateauMoves < ls.cfg.PlateauWalkSteps && len(plateau) > 0 {
			// First recorded plateau neighbor, not a random one: the bias is
			// part of the reproducibility contract.
			plateauMoves++
			incumbent = plateau[0]
			moved = true
		}

		if !moved || (ls.cfg.MaxIterations > 0 && steps == ls.cfg.MaxIterations) {
			ls.logger.Debug("local search finished", map[string]interface{}{
				"steps":     steps,
				"neighbors": neighborsSeen,
			})
			break
		}
	}

	return incumbentScore, incumbent, nil
}

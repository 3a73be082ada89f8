// Package maximizer selects the next candidate configurations to evaluate in
// a surrogate-guided optimization loop by maximizing an acquisition function
// over the configuration space.
package maximizer

import (
	"math/rand"
	"os"
	"sort"

	"github.com/copyleftdev/BOREAL/internal/logging"
	"github.com/copyleftdev/BOREAL/internal/optimization"
)

// Origin labels attached to candidates for diagnostics.
const (
	OriginLocalSearch        = "Local Search"
	OriginRandomSearch       = "Random Search"
	OriginRandomSearchSorted = "Random Search (sorted)"
)

// defaultSeed is used when no random number generator is supplied.
const defaultSeed = 1

// ErrRankNotSupported is returned by Rank on strategies that only support the
// full Maximize operation. It signals a contract violation by the caller, not
// a runtime fault, and must not be retried.
var ErrRankNotSupported = optimization.NewError("rank is not supported by this strategy").WithComponent("maximizer")

// Maximizer produces an ordered stream of candidate configurations, most
// promising first, according to the acquisition function.
type Maximizer interface {
	// Maximize returns up to numPoints candidates ordered by descending
	// acquisition value. The returned sequence is iterable exactly once.
	Maximize(hist optimization.History, budget *optimization.SearchBudget, numPoints int) (CandidateSequence, error)
}

// Ranker is the primitive a concrete search strategy implements: it returns
// scored candidates in descending score order. Maximize is derived from it.
type Ranker interface {
	Rank(hist optimization.History, budget *optimization.SearchBudget, numPoints int) ([]optimization.ScoredCandidate, error)
}

// CandidateSequence is a single-pass stream of candidates. Next returns false
// once the sequence is exhausted; the length is not known in advance.
type CandidateSequence interface {
	Next() (optimization.Candidate, bool)
}

// Collect drains a candidate sequence into a slice, exhausting it.
func Collect(seq CandidateSequence) []optimization.Candidate {
	var out []optimization.Candidate
	for {
		c, ok := seq.Next()
		if !ok {
			return out
		}
		out = append(out, c)
	}
}

// candidateList is the finite sequence returned by the plain strategies.
type candidateList struct {
	items []optimization.Candidate
	index int
}

func (l *candidateList) Next() (optimization.Candidate, bool) {
	if l.index >= len(l.items) {
		return optimization.Candidate{}, false
	}
	c := l.items[l.index]
	l.index++
	return c, true
}

// maximize derives the Maximize operation from a strategy's Rank primitive by
// stripping the scores off the ranked result.
func maximize(r Ranker, hist optimization.History, budget *optimization.SearchBudget, numPoints int) (CandidateSequence, error) {
	ranked, err := r.Rank(hist, budget, numPoints)
	if err != nil {
		return nil, err
	}
	items := make([]optimization.Candidate, len(ranked))
	for i, sc := range ranked {
		items[i] = sc.Candidate
	}
	return &candidateList{items: items}, nil
}

// searcher holds the collaborators shared by all strategies. Composed
// strategies hand the same *rand.Rand to their sub-strategies, so every draw
// in a run is reproducible from one top-level seed; the draw order across
// strategies is part of that contract.
type searcher struct {
	acq    optimization.AcquisitionFunction
	space  optimization.ConfigurationSpace
	rng    *rand.Rand
	logger *logging.Logger
}

// newSearcher wires the shared collaborators. A nil rng falls back to a fixed
// default seed; this is reported as a diagnostic, not an error.
func newSearcher(acq optimization.AcquisitionFunction, space optimization.ConfigurationSpace, rng *rand.Rand, logger *logging.Logger) searcher {
	if logger == nil {
		logger = logging.New(logging.InfoLevel, os.Stderr)
	}
	if rng == nil {
		logger.Debug("no rng given, using default seed", map[string]interface{}{
			"seed": defaultSeed,
		})
		rng = rand.New(rand.NewSource(defaultSeed))
	}
	return searcher{
		acq:    acq,
		space:  space,
		rng:    rng,
		logger: logger,
	}
}

// sortByAcqValue scores all configurations in one batch call and sorts them
// by descending acquisition value. Ties are broken by an independent random
// key per configuration, so equal-scoring configurations come back in a
// different, seed-reproducible order on each call. This is the only place
// randomness enters the ranking of a known configuration set.
func (s *searcher) sortByAcqValue(configs []optimization.Configuration, origin string) ([]optimization.ScoredCandidate, error) {
	scores, err := s.acq.Evaluate(configs)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(configs) {
		return nil, optimization.NewErrorf(
			"acquisition function returned %d scores for %d configurations",
			len(scores), len(configs)).WithComponent("maximizer").WithOperation("sortByAcqValue")
	}

	tiebreak := make([]float64, len(configs))
	for i := range tiebreak {
		tiebreak[i] = s.rng.Float64()
	}

	order := make([]int, len(configs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		return tiebreak[a] > tiebreak[b]
	})

	ranked := make([]optimization.ScoredCandidate, len(order))
	for i, idx := range order {
		ranked[i] = optimization.ScoredCandidate{
			Score: scores[idx],
			Candidate: optimization.Candidate{
				Config: configs[idx],
				Origin: origin,
			},
		}
	}
	return ranked, nil
}

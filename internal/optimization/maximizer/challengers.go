package maximizer

import (
	"github.com/copyleftdev/BOREAL/internal/optimization"
)

// ChallengerList interleaves fresh random configurations into a ranked list
// of challengers. Every second pull yields a newly sampled configuration, so
// the outer loop keeps exploring without the maximizer having to sample
// hundreds of random configurations up front that may never be looked at.
//
// For a ranked list of length N the sequence yields exactly 2N candidates,
// alternating list element and random draw, ending with one random draw after
// the final element. The list is held by reference and never modified; only
// the cursor and the next-is-random flag belong to the sequence. Restarting
// requires constructing a new instance.
type ChallengerList struct {
	challengers  []optimization.Candidate
	space        optimization.ConfigurationSpace
	index        int
	nextIsRandom bool
}

// NewChallengerList wraps a ranked candidate list.
func NewChallengerList(challengers []optimization.Candidate, space optimization.ConfigurationSpace) *ChallengerList {
	return &ChallengerList{
		challengers: challengers,
		space:       space,
	}
}

// Next returns the next challenger, or false once the sequence is exhausted.
func (cl *ChallengerList) Next() (optimization.Candidate, bool) {
	if cl.index == len(cl.challengers) && !cl.nextIsRandom {
		return optimization.Candidate{}, false
	}

	if cl.nextIsRandom {
		cl.nextIsRandom = false
		return optimization.Candidate{
			Config: cl.space.Sample(1)[0],
			Origin: OriginRandomSearch,
		}, true
	}

	cl.nextIsRandom = true
	c := cl.challengers[cl.index]
	cl.index++
	return c, true
}

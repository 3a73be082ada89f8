// Package space implements a bounded, mixed configuration space with uniform
// sampling and one-exchange neighborhood generation.
package space

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/copyleftdev/BOREAL/internal/optimization"
)

// ParameterType distinguishes the supported parameter kinds.
type ParameterType string

const (
	// Continuous is a real-valued parameter in [Lower, Upper].
	Continuous ParameterType = "continuous"
	// Integer is an integer-valued parameter in [Lower, Upper].
	Integer ParameterType = "integer"
	// Categorical is an unordered choice between Choices.
	Categorical ParameterType = "categorical"
)

// neighborSigma is the standard deviation, in normalized [0,1] coordinates,
// of the Gaussian perturbation used for numerical neighbors.
const neighborSigma = 0.2

// numNumericNeighbors is how many perturbed values a numerical parameter
// contributes to the one-exchange neighborhood.
const numNumericNeighbors = 4

// Parameter describes one dimension of the space. Continuous and integer
// parameters use Lower/Upper, categorical parameters use Choices.
type Parameter struct {
	Name    string        `json:"name"`
	Type    ParameterType `json:"type"`
	Lower   float64       `json:"lower,omitempty"`
	Upper   float64       `json:"upper,omitempty"`
	Choices []string      `json:"choices,omitempty"`
}

// Space is a bounded mixed search space. Configurations are encoded as
// numeric vectors: continuous and integer parameters carry their raw value,
// categorical parameters the index of the selected choice. The space owns
// its sampling rng; neighborhoods are seeded per call.
type Space struct {
	params []Parameter
	rng    *rand.Rand
}

// New validates the parameter definitions and creates a space seeded for
// sampling.
func New(params []Parameter, seed int64) (*Space, error) {
	const op = "New"
	if len(params) == 0 {
		return nil, optimization.NewError("space needs at least one parameter").WithComponent("space").WithOperation(op)
	}
	for i, p := range params {
		if p.Name == "" {
			return nil, optimization.NewErrorf("parameter %d has no name", i).WithComponent("space").WithOperation(op)
		}
		switch p.Type {
		case Continuous, Integer:
			if !(p.Lower < p.Upper) {
				return nil, optimization.NewErrorf("parameter %q: lower bound %v must be below upper bound %v", p.Name, p.Lower, p.Upper).WithComponent("space").WithOperation(op)
			}
			if p.Type == Integer && (p.Lower != math.Trunc(p.Lower) || p.Upper != math.Trunc(p.Upper)) {
				return nil, optimization.NewErrorf("parameter %q: integer bounds must be whole numbers", p.Name).WithComponent("space").WithOperation(op)
			}
		case Categorical:
			if len(p.Choices) < 2 {
				return nil, optimization.NewErrorf("parameter %q: categorical parameter needs at least two choices", p.Name).WithComponent("space").WithOperation(op)
			}
		default:
			return nil, optimization.NewErrorf("parameter %q: unknown type %q", p.Name, p.Type).WithComponent("space").WithOperation(op)
		}
	}

	copied := make([]Parameter, len(params))
	copy(copied, params)
	return &Space{
		params: copied,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Parameters returns the parameter definitions.
func (s *Space) Parameters() []Parameter {
	out := make([]Parameter, len(s.params))
	copy(out, s.params)
	return out
}

// Dim returns the number of parameters.
func (s *Space) Dim() int {
	return len(s.params)
}

// Sample draws size configurations uniformly at random.
func (s *Space) Sample(size int) []optimization.Configuration {
	out := make([]optimization.Configuration, size)
	for i := range out {
		values := make([]float64, len(s.params))
		for j, p := range s.params {
			switch p.Type {
			case Continuous:
				values[j] = p.Lower + s.rng.Float64()*(p.Upper-p.Lower)
			case Integer:
				span := int64(p.Upper-p.Lower) + 1
				values[j] = p.Lower + float64(s.rng.Int63n(span))
			case Categorical:
				values[j] = float64(s.rng.Intn(len(p.Choices)))
			}
		}
		out[i] = optimization.NewConfiguration(values)
	}
	return out
}

// Neighborhood returns the one-exchange neighborhood of c: configurations
// differing from c in exactly one parameter. Categorical parameters
// contribute every alternative choice once; numerical parameters contribute
// Gaussian perturbations of the current value. Both the neighbor order and
// the perturbations are determined by seed.
func (s *Space) Neighborhood(c optimization.Configuration, seed int64) optimization.Neighborhood {
	rng := rand.New(rand.NewSource(seed))

	// One slot per neighbor, identified by parameter index. Categorical
	// alternatives are precomputed and handed out one per slot; numerical
	// perturbations are drawn lazily when their slot is pulled.
	var slots []int
	alternatives := make([][]int, len(s.params))
	for i, p := range s.params {
		var n int
		switch p.Type {
		case Categorical:
			current := int(c.Value(i))
			for choice := range p.Choices {
				if choice != current {
					alternatives[i] = append(alternatives[i], choice)
				}
			}
			rng.Shuffle(len(alternatives[i]), func(a, b int) {
				alternatives[i][a], alternatives[i][b] = alternatives[i][b], alternatives[i][a]
			})
			n = len(alternatives[i])
		case Integer:
			// The range holds Upper-Lower+1 values, so Upper-Lower neighbors exist.
			n = min(numNumericNeighbors, int(p.Upper-p.Lower))
		case Continuous:
			n = numNumericNeighbors
		}
		for j := 0; j < n; j++ {
			slots = append(slots, i)
		}
	}
	rng.Shuffle(len(slots), func(a, b int) {
		slots[a], slots[b] = slots[b], slots[a]
	})

	return &neighborhood{
		space:        s,
		base:         c,
		rng:          rng,
		slots:        slots,
		alternatives: alternatives,
	}
}

// neighborhood is the lazy iterator over one-exchange neighbors.
type neighborhood struct {
	space        *Space
	base         optimization.Configuration
	rng          *rand.Rand
	slots        []int
	alternatives [][]int
	pos          int
}

// Next produces the next neighbor. Numerical slots that fail to produce a
// value distinct from the base after repeated draws are skipped.
func (n *neighborhood) Next() (optimization.Configuration, bool) {
	for n.pos < len(n.slots) {
		idx := n.slots[n.pos]
		n.pos++

		p := n.space.params[idx]
		values := n.base.Values()

		switch p.Type {
		case Categorical:
			alts := n.alternatives[idx]
			if len(alts) == 0 {
				continue
			}
			values[idx] = float64(alts[0])
			n.alternatives[idx] = alts[1:]
			return optimization.NewConfiguration(values), true
		case Continuous:
			v, ok := n.perturb(p, values[idx], false)
			if !ok {
				continue
			}
			values[idx] = v
			return optimization.NewConfiguration(values), true
		case Integer:
			v, ok := n.perturb(p, values[idx], true)
			if !ok {
				continue
			}
			values[idx] = v
			return optimization.NewConfiguration(values), true
		}
	}
	return optimization.Configuration{}, false
}

// perturb draws a Gaussian step around value in normalized coordinates and
// maps it back into the parameter's range, rounding for integers. It rejects
// draws outside the bounds or equal to the current value.
func (n *neighborhood) perturb(p Parameter, value float64, round bool) (float64, bool) {
	width := p.Upper - p.Lower
	normalized := (value - p.Lower) / width

	const maxTries = 100
	for try := 0; try < maxTries; try++ {
		u := n.rng.Float64()
		if u == 0 {
			continue
		}
		candidate := normalized + neighborSigma*distuv.UnitNormal.Quantile(u)
		if candidate < 0 || candidate > 1 {
			continue
		}
		v := p.Lower + candidate*width
		if round {
			v = math.Round(v)
		}
		if v != value {
			return v, true
		}
	}
	return 0, false
}

// Package acquisition implements acquisition functions that score untested
// configurations by how promising they are to evaluate next.
package acquisition

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/copyleftdev/BOREAL/internal/optimization"
)

// Predictor estimates the objective at an untested configuration. What sits
// behind it (a surrogate model, a lookup, a heuristic) is the caller's
// business; this package never fits one.
type Predictor interface {
	// Predict returns the predicted mean and standard deviation at c.
	Predict(c optimization.Configuration) (mu, sigma float64, err error)
}

// ExpectedImprovement scores configurations by the expected amount they
// improve on the best observed cost, under the predictor's estimate.
// Costs are minimized: lower observed values are better.
type ExpectedImprovement struct {
	predictor Predictor
	// Best observed cost so far.
	bestObserved float64
	// Exploration-exploitation trade-off parameter.
	xi float64
}

// NewExpectedImprovement creates an EI acquisition function over the given
// predictor.
func NewExpectedImprovement(predictor Predictor, bestObserved, xi float64) *ExpectedImprovement {
	return &ExpectedImprovement{
		predictor:    predictor,
		bestObserved: bestObserved,
		xi:           xi,
	}
}

// Evaluate implements optimization.AcquisitionFunction: one EI score per
// configuration, in input order.
func (ei *ExpectedImprovement) Evaluate(configs []optimization.Configuration) ([]float64, error) {
	scores := make([]float64, len(configs))
	for i, c := range configs {
		mu, sigma, err := ei.predictor.Predict(c)
		if err != nil {
			return nil, optimization.WrapErrorf(err, "predicting configuration %d", i).WithComponent("acquisition")
		}
		scores[i] = ei.Compute(mu, sigma)
	}
	return scores, nil
}

// Compute returns the expected improvement for a prediction with mean mu and
// standard deviation sigma. The result is non-negative.
func (ei *ExpectedImprovement) Compute(mu, sigma float64) float64 {
	improvement := ei.bestObserved - mu - ei.xi
	if improvement <= 0 {
		return 0
	}

	// With a near-certain prediction the improvement is taken at face value.
	if sigma <= 1e-10 {
		return improvement
	}

	// EI = improvement * Phi(z) + sigma * phi(z) with z = improvement / sigma,
	// where Phi and phi are the standard normal CDF and PDF.
	stdNormal := distuv.UnitNormal
	z := improvement / sigma
	return improvement*stdNormal.CDF(z) + sigma*stdNormal.Prob(z)
}

// UpdateBest updates the best observed cost.
func (ei *ExpectedImprovement) UpdateBest(best float64) {
	ei.bestObserved = best
}

// SetXi sets the exploration-exploitation trade-off parameter.
func (ei *ExpectedImprovement) SetXi(xi float64) {
	ei.xi = xi
}

// BestObserved returns the best observed cost.
func (ei *ExpectedImprovement) BestObserved() float64 {
	return ei.bestObserved
}

// Constant is a predictor returning the same estimate everywhere. It stands
// in before any evaluation exists, when nothing distinguishes one
// configuration from another.
type Constant struct {
	Mu    float64
	Sigma float64
}

// Predict implements Predictor.
func (p Constant) Predict(optimization.Configuration) (float64, float64, error) {
	return p.Mu, p.Sigma, nil
}

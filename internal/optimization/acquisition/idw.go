package acquisition

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/copyleftdev/BOREAL/internal/optimization"
)

// InverseDistance predicts the objective at an untested configuration by
// inverse-distance weighting over evaluated ones. It reads the observations
// directly at prediction time; there is no fitting step and no model state
// beyond the observations themselves.
type InverseDistance struct {
	// points holds one observed configuration per row.
	points *mat.Dense
	// costs holds the observed cost per row of points.
	costs *mat.VecDense
	power float64

	// Logger for structured logging
	logger *zap.Logger
}

// NewInverseDistance creates a predictor over the given observations.
// A power of 2 is the usual choice; higher powers localize the estimate.
func NewInverseDistance(configs []optimization.Configuration, costs []float64, power float64) (*InverseDistance, error) {
	const op = "NewInverseDistance"
	if len(configs) == 0 {
		return nil, optimization.NewError("inverse distance predictor needs at least one observation").WithComponent("inverse_distance").WithOperation(op)
	}
	if len(configs) != len(costs) {
		return nil, optimization.NewErrorf("got %d configurations but %d costs", len(configs), len(costs)).WithComponent("inverse_distance").WithOperation(op)
	}
	if power <= 0 {
		return nil, optimization.NewErrorf("power must be positive, got %v", power).WithComponent("inverse_distance").WithOperation(op)
	}

	dim := configs[0].Len()
	points := mat.NewDense(len(configs), dim, nil)
	for i, c := range configs {
		if c.Len() != dim {
			return nil, optimization.NewErrorf("configuration %d has %d coordinates, expected %d", i, c.Len(), dim).WithComponent("inverse_distance").WithOperation(op)
		}
		points.SetRow(i, c.Values())
	}

	// Default logger until the caller installs one
	logger, _ := zap.NewDevelopment()

	p := &InverseDistance{
		points: points,
		costs:  mat.NewVecDense(len(costs), append([]float64(nil), costs...)),
		power:  power,
		logger: logger.Named("inverse_distance"),
	}
	p.logger.Debug("Created inverse distance predictor",
		zap.Int("observations", len(configs)),
		zap.Int("dimensions", dim),
		zap.Float64("power", power),
	)
	return p, nil
}

// SetLogger replaces the predictor's logger.
func (p *InverseDistance) SetLogger(logger *zap.Logger) {
	if logger != nil {
		p.logger = logger.Named("inverse_distance")
	}
}

// Predict returns the weighted mean of the observed costs and the weighted
// standard deviation around it. A configuration coinciding with an
// observation returns that observation's cost with zero deviation.
func (p *InverseDistance) Predict(c optimization.Configuration) (float64, float64, error) {
	rows, cols := p.points.Dims()
	if c.Len() != cols {
		return 0, 0, optimization.NewErrorf("configuration has %d coordinates, expected %d", c.Len(), cols).WithComponent("inverse_distance").WithOperation("Predict")
	}

	x := mat.NewVecDense(cols, c.Values())
	weights := make([]float64, rows)
	var weightSum float64
	for i := 0; i < rows; i++ {
		var diff mat.VecDense
		diff.SubVec(x, p.points.RowView(i))
		d := mat.Norm(&diff, 2)
		if d == 0 {
			return p.costs.AtVec(i), 0, nil
		}
		weights[i] = 1 / math.Pow(d, p.power)
		weightSum += weights[i]
	}

	var mean float64
	for i := 0; i < rows; i++ {
		mean += weights[i] / weightSum * p.costs.AtVec(i)
	}

	var variance float64
	for i := 0; i < rows; i++ {
		dev := p.costs.AtVec(i) - mean
		variance += weights[i] / weightSum * dev * dev
	}

	return mean, math.Sqrt(variance), nil
}

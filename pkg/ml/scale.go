package ml

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers values on the mean and scales them to unit
// standard deviation, both learned at fit time.
type StandardScaler struct {
	Mean float64
	Std  float64
}

func (s *StandardScaler) Fit(values []float64) {
	mean, std := stat.MeanStdDev(values, nil)
	if math.IsNaN(mean) {
		mean = 0
	}
	if std == 0 || math.IsNaN(std) {
		// constant (or single-value) column; leave it centered only
		std = 1
	}
	s.Mean = mean
	s.Std = std
}

func (s *StandardScaler) Apply(v float64) float64 {
	return (v - s.Mean) / s.Std
}

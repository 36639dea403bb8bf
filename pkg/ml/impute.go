// Package ml implements the column-wise preprocessing transform, the
// logistic-regression estimator, cross-validated grid search and the
// evaluation metrics. A fitted preprocessing transform and estimator
// travel together as one Pipeline; they are never loaded or applied
// separately.
package ml

import (
	"sort"

	"github.com/leadscore/leadscore/pkg/dataset"
)

// MedianImputer fills missing numeric values with the median observed
// at fit time.
type MedianImputer struct {
	Median float64
}

func (m *MedianImputer) Fit(values []float64) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !dataset.IsMissingFloat(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		// nothing to learn from; impute to zero
		m.Median = 0
		return
	}
	sort.Float64s(present)
	mid := len(present) / 2
	if len(present)%2 == 1 {
		m.Median = present[mid]
	} else {
		m.Median = (present[mid-1] + present[mid]) / 2
	}
}

func (m *MedianImputer) Apply(v float64) float64 {
	if dataset.IsMissingFloat(v) {
		return m.Median
	}
	return v
}

// ModeImputer fills missing categorical values with the most frequent
// value observed at fit time.
//
// When every value is missing at fit time there is no mode; the
// imputer then leaves the missing marker in place and the encoder
// learns it as a category of its own, so an all-unknown column never
// fails.
type ModeImputer struct {
	Mode string
}

func (m *ModeImputer) Fit(values []string) {
	counts := map[string]int{}
	for _, v := range values {
		if !dataset.IsMissingString(v) {
			counts[v]++
		}
	}

	best, bestCount := dataset.MissingString, 0
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys) // ties resolve to the smallest value, deterministically
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	m.Mode = best
}

func (m *ModeImputer) Apply(v string) string {
	if dataset.IsMissingString(v) {
		return m.Mode
	}
	return v
}

// Package features builds the design matrix for the lag regression. Every
// feature of a point at index i is computed strictly from values before i,
// so rows stay valid during iterated forecasting.
package features

import (
	"errors"
	"math"

	"RateCast/internal/model"
)

// MinIndex returns the first series index for which a complete feature row
// can be built.
func MinIndex(spec model.FeatureSpec) int {
	min := spec.Lags
	if spec.SeasonalLag > min {
		min = spec.SeasonalLag
	}
	for _, w := range spec.RollingWindows {
		if w > min {
			min = w
		}
	}
	if min < 1 {
		min = 1
	}
	return min
}

// Count returns the feature-vector width for a spec: the lags, the optional
// seasonal lag, mean and std per rolling window, and the expanding mean.
func Count(spec model.FeatureSpec) int {
	n := spec.Lags + 2*len(spec.RollingWindows) + 1
	if spec.SeasonalLag > 0 {
		n++
	}
	return n
}

// Row builds the feature vector for predicting history[idx].
func Row(history []float64, idx int, spec model.FeatureSpec) ([]float64, error) {
	if idx < MinIndex(spec) || idx > len(history) {
		return nil, errors.New("not enough history for feature row")
	}

	row := make([]float64, 0, Count(spec))
	for lag := 1; lag <= spec.Lags; lag++ {
		row = append(row, history[idx-lag])
	}
	if spec.SeasonalLag > 0 {
		row = append(row, history[idx-spec.SeasonalLag])
	}
	for _, w := range spec.RollingWindows {
		mean, std := rollingStats(history[idx-w : idx])
		row = append(row, mean, std)
	}
	row = append(row, mean(history[:idx]))
	return row, nil
}

// Matrix builds the feature rows and targets for series indices [from, to).
func Matrix(history []float64, from, to int, spec model.FeatureSpec) ([][]float64, []float64, error) {
	if from < MinIndex(spec) {
		from = MinIndex(spec)
	}
	if to > len(history) {
		return nil, nil, errors.New("matrix range exceeds history")
	}
	if to <= from {
		return nil, nil, errors.New("empty matrix range")
	}

	rows := make([][]float64, 0, to-from)
	targets := make([]float64, 0, to-from)
	for i := from; i < to; i++ {
		row, err := Row(history, i, spec)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
		targets = append(targets, history[i])
	}
	return rows, targets, nil
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// rollingStats returns the mean and sample standard deviation of a window.
func rollingStats(window []float64) (float64, float64) {
	m := mean(window)
	ss := 0.0
	for _, v := range window {
		d := v - m
		ss += d * d
	}
	return m, math.Sqrt(ss / float64(len(window)-1))
}

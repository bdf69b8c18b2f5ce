// Package risk converts a model's held-out prediction errors into the
// bounded risk indicator that drives recommendation ranking.
package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"RateCast/internal/model"
)

// Score computes the RMAPE of the out-of-sample residuals: the mean of
// |actual - predicted| / |actual| over points with a non-zero, observed
// actual, as a ratio. Gap-filled actuals and zero actuals are excluded;
// zero actuals are counted on the result.
//
// It fails with model.ErrUndefinedRisk when no point qualifies, which leaves
// the currency's forecast publishable but unscored.
func Score(residuals []model.Residual) (model.RiskResult, error) {
	ratios := make([]float64, 0, len(residuals))
	zeroActual := 0

	for _, r := range residuals {
		if r.Filled {
			continue
		}
		if r.Actual == 0 {
			zeroActual++
			continue
		}
		ratios = append(ratios, math.Abs(r.Actual-r.Predicted)/math.Abs(r.Actual))
	}

	if len(ratios) == 0 {
		return model.RiskResult{ZeroActual: zeroActual},
			fmt.Errorf("no scorable held-out points: %w", model.ErrUndefinedRisk)
	}

	return model.RiskResult{
		Indicator:  stat.Mean(ratios, nil),
		Included:   len(ratios),
		ZeroActual: zeroActual,
	}, nil
}
